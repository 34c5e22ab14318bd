package simdevice

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile describes the simulated device.
type Profile struct {
	// Enabled is whether location services start switched on.
	Enabled bool `yaml:"enabled"`
	// Authorization is the initial authorization status.
	Authorization string `yaml:"authorization"`
	// RequestResult is what the authorization dialog answers.
	RequestResult string `yaml:"request_result"`
	// Position is the fix returned by fetches.
	Position PositionProfile `yaml:"position"`
	// FetchError, when set, makes every fetch fail with this native message.
	FetchError string `yaml:"fetch_error,omitempty"`
	// Settings is what the user does on the settings screens.
	Settings SettingsProfile `yaml:"settings"`
}

// PositionProfile is a fixed location fix.
type PositionProfile struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Accuracy  float64 `yaml:"accuracy,omitempty"`
}

// SettingsProfile scripts the settings round trips.
type SettingsProfile struct {
	// EnableLocation is the enablement after visiting the location settings.
	// Nil leaves it unchanged.
	EnableLocation *bool `yaml:"enable_location,omitempty"`
	// Authorization is the status after visiting the app settings. Empty
	// leaves it unchanged.
	Authorization string `yaml:"authorization,omitempty"`
	// Delay is how long the user stays on a settings screen.
	Delay time.Duration `yaml:"delay,omitempty"`
}

// DefaultProfile is an enabled device that grants access when asked and sits
// in Paris.
func DefaultProfile() Profile {
	return Profile{
		Enabled:       true,
		Authorization: "not_determined",
		RequestResult: "granted_when_in_use",
		Position:      PositionProfile{Latitude: 48.85, Longitude: 2.35, Accuracy: 5},
	}
}

// LoadProfile reads a YAML profile. A missing file yields DefaultProfile;
// fields absent from the file keep their default values.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return profile, nil
		}
		return Profile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := profile.validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return profile, nil
}

var knownStatuses = map[string]bool{
	"always":              true,
	"when_in_use":         true,
	"granted":             true,
	"granted_when_in_use": true,
	"restricted":          true,
	"denied":              true,
	"denied_always":       true,
	"not_determined":      true,
	"unknown":             true,
}

func (p Profile) validate() error {
	for field, status := range map[string]string{
		"authorization":          p.Authorization,
		"request_result":         p.RequestResult,
		"settings.authorization": p.Settings.Authorization,
	} {
		if status != "" && !knownStatuses[status] {
			return fmt.Errorf("%s: unknown authorization status %q", field, status)
		}
	}
	if p.Settings.Delay < 0 {
		return fmt.Errorf("settings.delay: must not be negative")
	}
	return nil
}
