// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     version
// Description: Central version information for the CLI and its components
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version constants for hivemind components
const (
	// Platform version
	Platform = "1.0.0"

	// Component versions
	Parser   = "1.0.0"
	Executor = "1.0.0"
	History  = "1.0.0"
	REPL     = "1.0.0"

	// HistorySchema is the version of the run history table layout
	HistorySchema = 1
)

// Set by the linker: -X github.com/msto63/hivemind/pkg/core/version.Commit=...
var (
	Commit    = ""
	BuildDate = ""
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "parser":
		return Parser
	case "executor":
		return Executor
	case "history":
		return History
	case "repl":
		return REPL
	default:
		return Platform
	}
}

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information. A missing Commit falls back to the
// VCS revision recorded by the Go toolchain.
func Get() Info {
	info := Info{
		Version:   Platform,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					info.Commit = s.Value[:7]
				}
			}
		}
	}
	return info
}

// String formats the info as a single line
func (i Info) String() string {
	s := fmt.Sprintf("hivemind %s (%s, %s)", i.Version, i.GoVersion, i.Platform)
	if i.Commit != "" {
		s += " commit " + i.Commit
	}
	if i.BuildDate != "" {
		s += " built " + i.BuildDate
	}
	return s
}
