// Package security builds crypto/tls configurations for the HTTP server
// and the outbound clients.
package security
