// Package handler is the HTTP layer.
//
// Handlers bind and validate requests through the validation package, call
// the service layer and write JSON responses. Errors are returned to the
// global error handler untouched.
package handler
