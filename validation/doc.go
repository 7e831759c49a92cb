// Package validation checks request input and reports failures as
// errors.AppError values with per-field details.
//
// Struct tags cover JSON bodies:
//
//	type TokenRequest struct {
//	    Username string `json:"username" validate:"required,max=64"`
//	}
//	if err := validation.Validate(req); err != nil { ... }
//
// Checks collects programmatic checks for query parameters:
//
//	err := validation.New().Min("page", page, 1).Range("limit", limit, 1, 100).Err()
package validation
