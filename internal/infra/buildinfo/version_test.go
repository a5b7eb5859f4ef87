package buildinfo

import (
	"runtime"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	tests := []struct {
		name  string
		value string
	}{
		{"Version", info.Version},
		{"Commit", info.Commit},
		{"BuildTime", info.BuildTime},
		{"GoVersion", info.GoVersion},
		{"Platform", info.Platform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Errorf("%s field should not be empty", tt.name)
			}
		})
	}
}

func TestGet_GoVersionFallback(t *testing.T) {
	saved := GoVersion
	defer func() { GoVersion = saved }()

	GoVersion = ""
	if got := Get().GoVersion; got != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", got, runtime.Version())
	}

	GoVersion = "go1.0"
	if got := Get().GoVersion; got != "go1.0" {
		t.Errorf("GoVersion = %q, want go1.0", got)
	}
}

func TestString(t *testing.T) {
	expected := "smctl " + Version + " (" + Commit + ") built at " + BuildTime
	if s := String(); s != expected {
		t.Errorf("String() = %q, want %q", s, expected)
	}
}

func TestUserAgent(t *testing.T) {
	saved := Version
	defer func() { Version = saved }()

	Version = "v1.2.3"
	if got := UserAgent(); got != "smctl/v1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
}
