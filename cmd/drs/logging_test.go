package main

import (
	"log/slog"
	"testing"
)

func TestSelectedLogLevelPrecedence(t *testing.T) {
	cases := []struct {
		flag, env, config string
		wantLevel         string
		wantSource        string
	}{
		{"debug", "info", "warn", "debug", "flag"},
		{"", "info", "warn", "info", "env"},
		{"", "", "warn", "warn", "config"},
		{"", "", "", "", "default"},
	}
	for _, tc := range cases {
		level, source := selectedLogLevel(tc.flag, tc.env, tc.config)
		if level != tc.wantLevel || source != tc.wantSource {
			t.Fatalf("selectedLogLevel(%q,%q,%q) = %q,%q; want %q,%q",
				tc.flag, tc.env, tc.config, level, source, tc.wantLevel, tc.wantSource)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := parseLogLevel("")
	if err != nil {
		t.Fatalf("empty level: %v", err)
	}
	if level != slog.LevelInfo {
		t.Fatalf("expected default info level, got %v", level)
	}

	level, err = parseLogLevel("warning")
	if err != nil {
		t.Fatalf("warning alias: %v", err)
	}
	if level != slog.LevelWarn {
		t.Fatalf("expected warn level, got %v", level)
	}

	if _, err := parseLogLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
