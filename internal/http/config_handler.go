package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/tablohm/internal/application"
)

type wakeConfigService interface {
	Get(ctx context.Context) (application.WakeSettings, error)
	Save(ctx context.Context, params application.SaveWakeSettingsParams) error
}

type ConfigHandler struct {
	service   wakeConfigService
	responder responder
	logger    *slog.Logger
}

func NewConfigHandler(service wakeConfigService, logger *slog.Logger) *ConfigHandler {
	base := defaultLogger(logger)
	return &ConfigHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ConfigHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ConfigHandler", operation, attrs...)
}

func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Get")
	settings, err := h.service.Get(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "config read failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toConfigDTO(settings))
}

func (h *ConfigHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req configDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Save", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode config request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Save", "principal_id", principal.UserID)

	if err := h.service.Save(r.Context(), application.SaveWakeSettingsParams{
		Principal: principal,
		Settings:  req.toSettings(),
	}); err != nil {
		logger.ErrorContext(r.Context(), "config save failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "config saved")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type weekdayWindowDTO struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type configDTO struct {
	WakeIntervalMinutes int                         `json:"wakeIntervalMinutes"`
	LeadMinutes         int                         `json:"leadMinutes"`
	FollowUpMinutes     int                         `json:"followUpMinutes"`
	DeleteAfterDays     int                         `json:"deleteAfterDays"`
	WeekdayTimes        map[string]weekdayWindowDTO `json:"weekdayTimes"`
}

// weekdayNames maps the JSON keys to time.Weekday values. Keys are the
// lowercase English day names.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func (dto configDTO) toSettings() application.WakeSettings {
	settings := application.WakeSettings{
		WakeIntervalMinutes: dto.WakeIntervalMinutes,
		LeadMinutes:         dto.LeadMinutes,
		FollowUpMinutes:     dto.FollowUpMinutes,
		DeleteAfterDays:     dto.DeleteAfterDays,
		WeekdayTimes:        make(map[time.Weekday]application.WeekdayWindow, len(dto.WeekdayTimes)),
	}
	for name, window := range dto.WeekdayTimes {
		day, ok := weekdayNames[name]
		if !ok {
			continue
		}
		settings.WeekdayTimes[day] = application.WeekdayWindow{
			Enabled: window.Enabled,
			Start:   window.Start,
			End:     window.End,
		}
	}
	return settings
}

func toConfigDTO(settings application.WakeSettings) configDTO {
	dto := configDTO{
		WakeIntervalMinutes: settings.WakeIntervalMinutes,
		LeadMinutes:         settings.LeadMinutes,
		FollowUpMinutes:     settings.FollowUpMinutes,
		DeleteAfterDays:     settings.DeleteAfterDays,
		WeekdayTimes:        make(map[string]weekdayWindowDTO, len(settings.WeekdayTimes)),
	}
	for name, day := range weekdayNames {
		window, ok := settings.WeekdayTimes[day]
		if !ok {
			continue
		}
		dto.WeekdayTimes[name] = weekdayWindowDTO{
			Enabled: window.Enabled,
			Start:   window.Start,
			End:     window.End,
		}
	}
	return dto
}
