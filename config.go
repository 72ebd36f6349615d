package rft

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the persisted engine configuration. It is loaded from the
// YAML config file in the engine's configuration directory and written back
// whenever one of the mutators runs.
type Config struct {
	viper                 *viper.Viper
	ConfigDir             string  `mapstructure:"config_dir"`              // Current config dir
	CoherenceThreshold    float64 `mapstructure:"coherence_threshold"`     // Damping threshold for the consciousness factor
	MinChallengeRunes     int     `mapstructure:"min_challenge_runes"`     // Admission lower bound
	MaxChallengeRunes     int     `mapstructure:"max_challenge_runes"`     // Admission upper bound
	RenderingCap          int     `mapstructure:"rendering_cap"`           // Retention cap for the render log
	RejectionLogCap       int     `mapstructure:"rejection_log_cap"`       // Retention cap for validation rejections
	FingerprintCap        int     `mapstructure:"fingerprint_cap"`         // Retention cap for fingerprints per observer
	SessionTimeoutMinutes int     `mapstructure:"session_timeout_minutes"` // Idle minutes before a session expires
	InterferenceWindow    int     `mapstructure:"interference_window"`     // Number of recent frames in the rolling phase mean
}

// SetValidationBounds updates the admission length bounds and persists them.
func (cfg *Config) SetValidationBounds(minRunes, maxRunes int) error {
	if minRunes < 0 || maxRunes <= minRunes {
		return fmt.Errorf("invalid validation bounds %d..%d", minRunes, maxRunes)
	}
	cfg.viper.Set("min_challenge_runes", minRunes)
	cfg.viper.Set("max_challenge_runes", maxRunes)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := cfg.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}

// SetRetention updates the retention caps and persists them.
func (cfg *Config) SetRetention(renderings, rejections, fingerprints int) error {
	if renderings <= 0 || rejections <= 0 || fingerprints <= 0 {
		return fmt.Errorf("retention caps must be positive")
	}
	cfg.viper.Set("rendering_cap", renderings)
	cfg.viper.Set("rejection_log_cap", rejections)
	cfg.viper.Set("fingerprint_cap", fingerprints)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := cfg.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}

// SetSessionTimeout updates the session idle timeout and persists it.
func (cfg *Config) SetSessionTimeout(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("session timeout must be positive")
	}
	cfg.viper.Set("session_timeout_minutes", minutes)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := cfg.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}
