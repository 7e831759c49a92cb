// Package provider holds the base interface shared by pluggable backends
// (transcription engines, TTS services) and a generic named registry.
package provider
