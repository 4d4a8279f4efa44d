// Package validation binds and validates request data.
//
// It uses go-playground/validator for rules declared in struct tags and
// aggregates every failure into a list of field-level errors, the same
// shape used for document validation failures.
package validation
