// Package version reports the build version of the voicegate binaries.
//
// Release builds set the values through -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/voicegate/version.Version=1.2.0" ./cmd/voicegate
//
// Development builds fall back to the VCS stamp in the binary's build info.
package version
