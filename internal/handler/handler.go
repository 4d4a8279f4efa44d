// Package handler is the HTTP layer: the first entry point for business
// logic after the router.
//
// It binds and validates requests with the validation package, calls the
// service layer and writes the success envelope. Errors are returned to
// the global error handler untouched.
package handler
