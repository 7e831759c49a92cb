// Package resilience has the retry and circuit breaker helpers used around
// outbound calls: ASR recognition retries and the breaker guarding the
// ElevenLabs and Ollama HTTP clients.
package resilience
