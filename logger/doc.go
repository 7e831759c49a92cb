// Package logger is a thin zerolog wrapper used across voicegate.
//
// Loggers are scoped with WithComponent and take optional field maps:
//
//	log := logger.WithComponent("asr")
//	log.Info("recognize done", logger.Fields("format", "wav", "bytes", n))
package logger
