package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".whatif-md"

//go:embed config/settings.yaml
var defaultSettings string

// Settings is the YAML configuration. Every field has a usable default
// so the tool works on a clean checkout.
type Settings struct {
	BaseURL             string `yaml:"base_url"`
	OutputDirectory     string `yaml:"output_directory"`
	TimezoneOffsetHours int    `yaml:"timezone_offset_hours"`
	FootnoteIndent      string `yaml:"footnote_indent"`
}

func defaultSettingsValues() *Settings {
	return &Settings{
		BaseURL:             "https://what-if.xkcd.com",
		OutputDirectory:     ".",
		TimezoneOffsetHours: 3,
		FootnoteIndent:      "<-->",
	}
}

// normalize fills string fields the settings file left empty.
func (s *Settings) normalize() {
	defaults := defaultSettingsValues()
	if s.BaseURL == "" {
		s.BaseURL = defaults.BaseURL
	}
	if s.OutputDirectory == "" {
		s.OutputDirectory = defaults.OutputDirectory
	}
	if s.FootnoteIndent == "" {
		s.FootnoteIndent = defaults.FootnoteIndent
	}
}

// loadSettings loads settings from a YAML file, falling back to the
// defaults when the file does not exist.
func loadSettings(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSettingsValues(), nil
		}
		return nil, fmt.Errorf("reading settings file %s: %w", settingsPath, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}
	settings.normalize()
	return &settings, nil
}

// loadSettingsRequired loads settings from an explicitly requested
// file, failing if the file is missing.
func loadSettingsRequired(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("reading settings file %s: %w", settingsPath, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}
	settings.normalize()
	return &settings, nil
}

// ensureConfigExists creates the config directory and writes the
// default settings file on first run.
func ensureConfigExists() error {
	if err := os.MkdirAll(defaultConfigDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	settingsPath := filepath.Join(defaultConfigDir, "settings.yaml")
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(settingsPath, []byte(defaultSettings), 0644); err != nil {
			return fmt.Errorf("writing default settings: %w", err)
		}
	}
	return nil
}

// resolveSettings picks the settings source: an explicit path when
// given, the config-dir file (created on demand) otherwise.
func resolveSettings(explicitPath string) (*Settings, error) {
	if explicitPath != "" {
		return loadSettingsRequired(explicitPath)
	}
	if err := ensureConfigExists(); err != nil {
		return nil, err
	}
	return loadSettings(filepath.Join(defaultConfigDir, "settings.yaml"))
}
