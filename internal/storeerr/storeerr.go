// Package storeerr normalizes document store failures.
//
// Repositories convert driver errors into the typed errors below with
// FromMongo; the central error handler turns them into operational
// errors with HandleError. Nothing outside the repository layer needs to
// know which driver produced a failure.
package storeerr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is matched with errors.Is on every not-found failure.
var ErrNotFound = errors.New("document not found")

// NotFoundError names the collection that had no matching document.
type NotFoundError struct {
	Collection string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Collection, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// DuplicateError is a unique index violation.
type DuplicateError struct {
	Collection string
	Field      string
	Value      string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: duplicate %s %q", e.Collection, e.Field, e.Value)
}

// InvalidIDError is an identifier that is not a valid ObjectID.
type InvalidIDError struct {
	Value string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid id %q", e.Value)
}

// ParseID parses a hex ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, &InvalidIDError{Value: hex}
	}
	return id, nil
}

var (
	dupIndex = regexp.MustCompile(`index: (\S+?)(?:_-?1)+ dup key`)
	dupKey   = regexp.MustCompile(`dup key: \{ ?([^:]+): (.*?) ?\}`)
	quoted   = regexp.MustCompile(`["']([^"']*)["']`)
)

// FromMongo converts a driver error from an operation on collection.
// Unknown errors are wrapped with the collection name.
func FromMongo(collection string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return &NotFoundError{Collection: collection}
	case mongo.IsDuplicateKeyError(err):
		return parseDuplicate(collection, err.Error())
	default:
		return fmt.Errorf("%s: %w", collection, err)
	}
}

// parseDuplicate extracts the field and value from an E11000 message:
//
//	E11000 duplicate key error collection: tours.tours index: name_1 dup key: { name: "The Forest Hiker" }
func parseDuplicate(collection, msg string) *DuplicateError {
	dup := &DuplicateError{Collection: collection}

	if m := dupIndex.FindStringSubmatch(msg); m != nil {
		dup.Field = strings.ReplaceAll(strings.ReplaceAll(m[1], "_1_", "_"), "_-1_", "_")
	}
	if m := dupKey.FindStringSubmatch(msg); m != nil {
		if dup.Field == "" {
			dup.Field = strings.TrimSpace(m[1])
		}
		dup.Value = strings.TrimSpace(m[2])
		if q := quoted.FindStringSubmatch(m[2]); q != nil {
			dup.Value = q[1]
		}
	}
	if dup.Field == "" {
		dup.Field = "field"
	}
	return dup
}
