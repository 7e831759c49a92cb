// Package auth validates bearer tokens.
//
// A Chain tries the admin key first and then falls back to JWT validation.
// Validators return the authenticated User; handlers read it back through
// authctx.
package auth
