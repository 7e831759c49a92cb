// Package errors provides the service-wide error type. Every handler error
// ends up as an AppError carrying a machine-readable code, an HTTP status
// and a retryable hint, and is rendered as {"error": {...}}.
package errors
