// Package server runs the voicegate HTTP API on gin.
//
// The engine sits behind a net/http middleware chain (recovery, request IDs,
// CORS, rate limiting, body limits and request logging) and is served over
// h2c, or over TLS when server.tls is enabled. Handlers report failures with
// RespondWithError, which renders errors.AppError bodies.
package server
