// Package component defines lifecycle-managed infrastructure pieces such as
// the ASR client, the database and the HTTP server, and a Registry that
// starts them in order and stops them in reverse.
package component
