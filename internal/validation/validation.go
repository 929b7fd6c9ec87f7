// Package validation binds and validates request data.
//
// It uses the validator library to enforce rules defined in struct tags
// and turns failures into field errors the client can act on.
package validation
