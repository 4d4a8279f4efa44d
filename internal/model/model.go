// Package model holds the documents persisted in the store: tours, users
// and reviews.
//
// Each document validates itself explicitly (Validate) instead of relying
// on store-side schema hooks; failures come back as
// validation.CustomValidationErrors listing every offending field.
package model

import (
	"strings"
)

// trimAll trims each string in place.
func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
