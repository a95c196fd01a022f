package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WakeWindow is one weekday's wake window in the defaults file.
type WakeWindow struct {
	Enabled bool   `yaml:"enabled"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
}

// WakeDefaults holds the wake scheduling values seeded into the database when
// no configuration row exists yet.
type WakeDefaults struct {
	WakeIntervalMinutes int                   `yaml:"wake_interval_minutes"`
	LeadMinutes         int                   `yaml:"lead_minutes"`
	FollowUpMinutes     int                   `yaml:"follow_up_minutes"`
	DeleteAfterDays     int                   `yaml:"delete_after_days"`
	WeekdayTimes        map[string]WakeWindow `yaml:"weekday_times"`
}

// DefaultWakeDefaults mirrors the factory settings of the panels: half hour
// wake interval, weekday windows from 07:00 to 19:00, weekends off.
func DefaultWakeDefaults() WakeDefaults {
	windows := make(map[string]WakeWindow, 7)
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		windows[day] = WakeWindow{Enabled: true, Start: "07:00", End: "19:00"}
	}
	for _, day := range []string{"saturday", "sunday"} {
		windows[day] = WakeWindow{Start: "07:00", End: "19:00"}
	}
	return WakeDefaults{
		WakeIntervalMinutes: 30,
		LeadMinutes:         10,
		FollowUpMinutes:     10,
		DeleteAfterDays:     30,
		WeekdayTimes:        windows,
	}
}

// LoadWakeDefaults reads a YAML defaults file. Values missing from the file
// keep their factory defaults.
func LoadWakeDefaults(path string) (WakeDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WakeDefaults{}, err
	}

	defaults := DefaultWakeDefaults()
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return WakeDefaults{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if defaults.WakeIntervalMinutes <= 0 {
		return WakeDefaults{}, fmt.Errorf("parse %s: wake_interval_minutes must be positive", path)
	}
	return defaults, nil
}
