package config

import (
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// Settings are per-user knobs that do not belong in a project manifest.
// Precedence: flags, then ZYN_* environment variables, then defaults.
type Settings struct {
	Root        string `mapstructure:"root"`
	Jobs        int    `mapstructure:"jobs"`
	LogLevel    string `mapstructure:"log_level"`
	NoColor     bool   `mapstructure:"no_color"`
	FailOnError bool   `mapstructure:"fail_on_error"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Root:     ".zyn",
		Jobs:     runtime.NumCPU(),
		LogLevel: "info",
	}
}

// NewViper returns a viper instance primed with defaults and bound to the
// ZYN_ environment prefix.
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultSettings()
	v.SetDefault("root", d.Root)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("no_color", d.NoColor)
	v.SetDefault("fail_on_error", d.FailOnError)
	v.SetEnvPrefix("ZYN")
	v.AutomaticEnv()
	return v
}

// LoadSettings decodes and checks settings from v.
func LoadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.Jobs < 1 {
		return Settings{}, fmt.Errorf("jobs must be at least 1, got %d", s.Jobs)
	}
	if s.Root == "" {
		s.Root = DefaultSettings().Root
	}
	return s, nil
}
