// Package storage keeps uploaded audio. Names are flat: a stored file is
// addressed by its base name only, and names with separators or ".." are
// rejected.
//
// Backends register a factory under a provider name on import. storage/local
// keeps files in a directory:
//
//	import _ "github.com/kbukum/voicegate/storage/local"
//
//	store, err := storage.New(storage.Config{Path: "./uploads"}, log)
package storage
