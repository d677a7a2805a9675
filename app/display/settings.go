package display

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings control how embedders render quotes. They are served alongside
// every display response so all surfaces stay consistent.
type Settings struct {
	Template      string `yaml:"template" json:"template"`
	ShowAuthor    bool   `yaml:"show_author" json:"show_author"`
	ShowSource    bool   `yaml:"show_source" json:"show_source"`
	EnableRefresh bool   `yaml:"enable_refresh" json:"enable_refresh"`
	Animation     string `yaml:"animation" json:"animation"`
}

var allowedAnimations = map[string]bool{
	"fade":  true,
	"slide": true,
	"none":  true,
}

func DefaultSettings() Settings {
	return Settings{
		Template:      "default",
		ShowAuthor:    true,
		ShowSource:    false,
		EnableRefresh: true,
		Animation:     "fade",
	}
}

// LoadSettings reads the optional YAML settings file. An empty path yields
// the defaults; keys absent from the file keep their default values.
func LoadSettings(settingsFile string) (Settings, error) {
	settings := DefaultSettings()

	if settingsFile == "" {
		return settings, nil
	}

	data, err := os.ReadFile(settingsFile)
	if err != nil {
		return settings, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings YAML: %w", err)
	}

	if err := validateSettings(settings); err != nil {
		return settings, fmt.Errorf("invalid settings %s: %w", settingsFile, err)
	}

	slog.Debug("Display settings loaded", "file", settingsFile, "template", settings.Template, "animation", settings.Animation)

	return settings, nil
}

func validateSettings(settings Settings) error {
	if settings.Template == "" {
		return fmt.Errorf("template must not be empty")
	}
	if !allowedAnimations[settings.Animation] {
		return fmt.Errorf("unknown animation '%s'", settings.Animation)
	}
	return nil
}
