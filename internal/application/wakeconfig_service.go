package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/tablohm/internal/datetime"
	"github.com/example/tablohm/internal/persistence"
)

// WakeConfigService manages the platform-wide wake and retention settings.
type WakeConfigService struct {
	configs persistence.WakeConfigRepository
	logger  *slog.Logger
}

// NewWakeConfigService constructs a wake config service.
func NewWakeConfigService(configs persistence.WakeConfigRepository) *WakeConfigService {
	return NewWakeConfigServiceWithLogger(configs, nil)
}

// NewWakeConfigServiceWithLogger constructs a wake config service with a specified logger.
func NewWakeConfigServiceWithLogger(configs persistence.WakeConfigRepository, logger *slog.Logger) *WakeConfigService {
	return &WakeConfigService{configs: configs, logger: defaultLogger(logger)}
}

func (s *WakeConfigService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "WakeConfigService", operation, attrs...)
}

// DefaultWakeSettings are used until an administrator saves a configuration.
func DefaultWakeSettings() WakeSettings {
	windows := make(map[time.Weekday]WeekdayWindow, 7)
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		enabled := weekday != time.Saturday && weekday != time.Sunday
		windows[weekday] = WeekdayWindow{Enabled: enabled, Start: "07:00", End: "19:00"}
	}
	return WakeSettings{
		WakeIntervalMinutes: 30,
		LeadMinutes:         10,
		FollowUpMinutes:     10,
		DeleteAfterDays:     30,
		WeekdayTimes:        windows,
	}
}

// Get returns the stored settings, falling back to the defaults when none
// were saved yet.
func (s *WakeConfigService) Get(ctx context.Context) (WakeSettings, error) {
	record, err := s.configs.GetWakeConfig(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return DefaultWakeSettings(), nil
		}
		return WakeSettings{}, err
	}
	return settingsFromRecord(record), nil
}

// Save validates and stores the settings for administrators.
func (s *WakeConfigService) Save(ctx context.Context, params SaveWakeSettingsParams) (err error) {
	if s == nil {
		return fmt.Errorf("WakeConfigService is nil")
	}

	logger := s.loggerWith(ctx, "SaveWakeSettings", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save wake settings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "wake settings saved")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if vErr := validateWakeSettings(params.Settings); vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.configs.SaveWakeConfig(ctx, recordFromSettings(params.Settings))
	return
}

func validateWakeSettings(settings WakeSettings) *ValidationError {
	vErr := &ValidationError{}
	if settings.WakeIntervalMinutes <= 0 {
		vErr.add("wakeInterval", "Aufwachintervall muss größer als 0 sein.")
	}
	if settings.LeadMinutes < 0 {
		vErr.add("leadTime", "Vorlaufzeit darf nicht negativ sein.")
	}
	if settings.FollowUpMinutes < 0 {
		vErr.add("followUpTime", "Nachlaufzeit darf nicht negativ sein.")
	}
	if settings.DeleteAfterDays < 0 {
		vErr.add("deleteAfterDays", "Aufbewahrungsdauer darf nicht negativ sein.")
	}
	for weekday, window := range settings.WeekdayTimes {
		if !window.Enabled {
			continue
		}
		start, startOK := datetime.ParseClock(window.Start)
		end, endOK := datetime.ParseClock(window.End)
		if !startOK || !endOK {
			vErr.add("weekdayTimes", fmt.Sprintf("Ungültige Uhrzeit für Wochentag %d.", int(weekday)))
			continue
		}
		if !start.Before(end) {
			vErr.add("weekdayTimes", fmt.Sprintf("Ende muss nach dem Beginn liegen (Wochentag %d).", int(weekday)))
		}
	}
	return vErr
}

func settingsFromRecord(record persistence.WakeConfig) WakeSettings {
	windows := make(map[time.Weekday]WeekdayWindow, len(record.WeekdayTimes))
	for weekday, wt := range record.WeekdayTimes {
		windows[weekday] = WeekdayWindow{Enabled: wt.Enabled, Start: wt.Start, End: wt.End}
	}
	return WakeSettings{
		WakeIntervalMinutes: record.WakeIntervalMinutes,
		LeadMinutes:         record.LeadMinutes,
		FollowUpMinutes:     record.FollowUpMinutes,
		DeleteAfterDays:     record.DeleteAfterDays,
		WeekdayTimes:        windows,
	}
}

func recordFromSettings(settings WakeSettings) persistence.WakeConfig {
	times := make(map[time.Weekday]persistence.WeekdayTime, len(settings.WeekdayTimes))
	for weekday, window := range settings.WeekdayTimes {
		times[weekday] = persistence.WeekdayTime{Enabled: window.Enabled, Start: window.Start, End: window.End}
	}
	return persistence.WakeConfig{
		WakeIntervalMinutes: settings.WakeIntervalMinutes,
		LeadMinutes:         settings.LeadMinutes,
		FollowUpMinutes:     settings.FollowUpMinutes,
		DeleteAfterDays:     settings.DeleteAfterDays,
		WeekdayTimes:        times,
	}
}
