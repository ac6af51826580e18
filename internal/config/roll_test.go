package config

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadRollDefaults(t *testing.T) {
	cfg, err := LoadRoll()
	if err != nil {
		t.Fatalf("LoadRoll: %v", err)
	}
	want := Roll{
		MaxDice:       1 << 20,
		MaxExplosions: 10000,
		LogLevel:      slog.LevelWarn,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadRoll mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRollOverrides(t *testing.T) {
	t.Setenv("GODICE_MAX_DICE", "50")
	t.Setenv("GODICE_MAX_EXPLOSIONS", "7")
	t.Setenv("GODICE_SEED", "42")
	t.Setenv("GODICE_LOG_LEVEL", "debug")

	cfg, err := LoadRoll()
	if err != nil {
		t.Fatalf("LoadRoll: %v", err)
	}
	want := Roll{
		MaxDice:       50,
		MaxExplosions: 7,
		Seed:          42,
		LogLevel:      slog.LevelDebug,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadRoll mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRollErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative dice", "GODICE_MAX_DICE", "-1"},
		{"negative explosions", "GODICE_MAX_EXPLOSIONS", "-1"},
		{"bad seed", "GODICE_SEED", "abc"},
		{"bad level", "GODICE_LOG_LEVEL", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadRoll(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadRollParseErrorNamesField(t *testing.T) {
	t.Setenv("GODICE_MAX_DICE", "lots")

	_, err := LoadRoll()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "load roll config:") {
		t.Fatalf("expected load roll config prefix, got %v", err)
	}
	if !strings.Contains(err.Error(), `"MaxDice"`) {
		t.Fatalf("expected field name in %v", err)
	}
}
