package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	settings, err := loadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if settings.BaseURL != "https://what-if.xkcd.com" {
		t.Errorf("BaseURL = %q", settings.BaseURL)
	}
	if settings.TimezoneOffsetHours != 3 {
		t.Errorf("TimezoneOffsetHours = %d, want 3", settings.TimezoneOffsetHours)
	}
	if settings.FootnoteIndent != "<-->" {
		t.Errorf("FootnoteIndent = %q, want %q", settings.FootnoteIndent, "<-->")
	}
}

func TestLoadSettingsPartialFileNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "output_directory: dumps\ntimezone_offset_hours: 0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := loadSettings(path)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if settings.OutputDirectory != "dumps" {
		t.Errorf("OutputDirectory = %q, want %q", settings.OutputDirectory, "dumps")
	}
	if settings.BaseURL != "https://what-if.xkcd.com" {
		t.Errorf("BaseURL = %q, want default filled in", settings.BaseURL)
	}
	if settings.TimezoneOffsetHours != 0 {
		t.Errorf("TimezoneOffsetHours = %d, want 0", settings.TimezoneOffsetHours)
	}
}

func TestLoadSettingsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not yaml ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadSettings(path); err == nil {
		t.Error("loadSettings() expected error for malformed YAML")
	}
}

func TestLoadSettingsRequiredMissingFile(t *testing.T) {
	if _, err := loadSettingsRequired(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("loadSettingsRequired() expected error for missing file")
	}
}

func TestEnsureConfigExists(t *testing.T) {
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatal(err)
		}
	})

	if err := ensureConfigExists(); err != nil {
		t.Fatalf("ensureConfigExists() error = %v", err)
	}

	settingsPath := filepath.Join(defaultConfigDir, "settings.yaml")
	settings, err := loadSettings(settingsPath)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if settings.BaseURL != "https://what-if.xkcd.com" {
		t.Errorf("BaseURL = %q", settings.BaseURL)
	}
	if settings.FootnoteIndent != "<-->" {
		t.Errorf("FootnoteIndent = %q, want %q", settings.FootnoteIndent, "<-->")
	}

	// A second run must leave the existing file alone.
	if err := os.WriteFile(settingsPath, []byte("output_directory: custom\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ensureConfigExists(); err != nil {
		t.Fatalf("ensureConfigExists() second run error = %v", err)
	}
	settings, err = loadSettings(settingsPath)
	if err != nil {
		t.Fatal(err)
	}
	if settings.OutputDirectory != "custom" {
		t.Errorf("ensureConfigExists() overwrote user settings: OutputDirectory = %q", settings.OutputDirectory)
	}
}

func TestResolveSettingsExplicitPathRequired(t *testing.T) {
	if _, err := resolveSettings(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("resolveSettings() expected error for missing explicit settings file")
	}
}
