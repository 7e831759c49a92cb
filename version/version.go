package version

import (
	"runtime/debug"
	"strings"
	"sync"
)

// Set at build time.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty,omitempty"`
}

var (
	buildInfo     func() (*debug.BuildInfo, bool) = debug.ReadBuildInfo
	cachedInfo    *Info
	cachedInfoMux sync.Mutex
)

// Get returns the build information. The result is computed once.
func Get() Info {
	cachedInfoMux.Lock()
	defer cachedInfoMux.Unlock()
	if cachedInfo == nil {
		info := read()
		cachedInfo = &info
	}
	return *cachedInfo
}

func read() Info {
	info := Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
	bi, ok := buildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// Short returns "<version>" or "<version>-<commit>[-dirty]".
func (i Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	parts := []string{i.Version, i.GitCommit}
	if i.Dirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}

// String includes the build time when known.
func (i Info) String() string {
	if i.BuildTime == "" {
		return i.Short()
	}
	return i.Short() + " (built " + i.BuildTime + ")"
}

// Banner is the greeting served at the API root, e.g. "voicegate API 1.2.0".
func Banner(service string) string {
	return service + " API " + Get().Version
}
