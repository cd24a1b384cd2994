package version

import (
	"regexp"
	"strings"
	"testing"
)

// semverRegex validates semantic versioning format
var semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func TestVersionConstants(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"Platform", Platform},
		{"Parser", Parser},
		{"Executor", Executor},
		{"History", History},
		{"REPL", REPL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.version == "" {
				t.Errorf("%s version is empty", tt.name)
			}
			if !semverRegex.MatchString(tt.version) {
				t.Errorf("%s version %q does not match semver format (x.y.z)", tt.name, tt.version)
			}
		})
	}
}

func TestComponentVersion(t *testing.T) {
	tests := []struct {
		name      string
		component string
		expected  string
	}{
		{"parser", "parser", Parser},
		{"executor", "executor", Executor},
		{"history", "history", History},
		{"repl", "repl", REPL},
		{"unknown component", "unknown", Platform},
		{"empty component", "", Platform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComponentVersion(tt.component)
			if result != tt.expected {
				t.Errorf("ComponentVersion(%q) = %q, want %q", tt.component, result, tt.expected)
			}
		})
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Platform {
		t.Errorf("Version = %q, want %q", info.Version, Platform)
	}
	if info.GoVersion == "" {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if !strings.Contains(info.String(), "hivemind "+Platform) {
		t.Errorf("String() = %q", info.String())
	}
}

func TestInfoString_WithBuildData(t *testing.T) {
	info := Info{Version: "1.2.3", Commit: "abc1234", BuildDate: "2026-10-18", GoVersion: "go1.24.0", Platform: "linux/amd64"}
	want := "hivemind 1.2.3 (go1.24.0, linux/amd64) commit abc1234 built 2026-10-18"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
