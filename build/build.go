// Package build reports version information of the running binary. Release builds
// inject it as JSON with
//
//	-ldflags "-X github.com/amp-labs/secflow/build.infoJSON=..."
//
// and other builds fall back to what the Go toolchain embedded.
package build

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

const unknownVersion = "(devel)"

var infoJSON string //nolint:gochecknoglobals

// Info contains build metadata.
type Info struct {
	Version      string            `json:"version"`
	GitCommit    string            `json:"git_commit"` //nolint:tagliatelle
	GitDate      string            `json:"git_date"`   //nolint:tagliatelle
	BuildTime    string            `json:"build_time"` //nolint:tagliatelle
	GoVersion    string            `json:"go_version"` //nolint:tagliatelle
	Dependencies map[string]string `json:"dependencies"`
}

// Parse deserializes a JSON string into build Info.
// Returns (nil, false) if the input is empty, "{}", or fails to parse.
func Parse(js string) (*Info, bool) {
	if len(js) == 0 || js == "{}" {
		return nil, false
	}

	var info Info

	if err := json.Unmarshal([]byte(js), &info); err != nil {
		slog.Warn("Failed to parse build info from JSON",
			"data", js,
			"error", err)

		return nil, false
	}

	return &info, true
}

// FromBuildInfo extracts Info from what the toolchain embedded in the binary.
func FromBuildInfo(bi *debug.BuildInfo) Info {
	info := Info{
		Version:      bi.Main.Version,
		GoVersion:    bi.GoVersion,
		Dependencies: make(map[string]string, len(bi.Deps)),
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.GitCommit = s.Value
		case "vcs.time":
			info.GitDate = s.Value
		}
	}

	for _, dep := range bi.Deps {
		if dep.Replace != nil {
			dep = dep.Replace
		}

		info.Dependencies[dep.Path] = dep.Version
	}

	if info.Version == "" {
		info.Version = unknownVersion
	}

	return info
}

var current = sync.OnceValue(func() Info { //nolint:gochecknoglobals
	if info, ok := Parse(infoJSON); ok {
		return *info
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		return FromBuildInfo(bi)
	}

	return Info{Version: unknownVersion}
})

// Current returns the Info of the running binary.
func Current() Info {
	return current()
}

func (i Info) String() string {
	s := "secflow " + i.Version
	if i.GitCommit != "" {
		s += fmt.Sprintf(" (%.12s", i.GitCommit)
		if i.GitDate != "" {
			s += ", " + i.GitDate
		}

		s += ")"
	}

	if i.GoVersion != "" {
		s += " " + i.GoVersion
	}

	return s
}
