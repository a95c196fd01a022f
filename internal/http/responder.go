package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/example/tablohm/internal/application"
)

// Private status codes the console recognizes on event submissions. Collision
// means the event was rejected, wakeup timing means the event was saved but
// the display will not show it in time.
const (
	StatusEventCollision = 569
	StatusWakeupTiming   = 541
)

var (
	errBadRequestBody      = errors.New("Ungültiger Anfrageinhalt.")
	errInvalidEventID      = errors.New("Ungültige Termin-ID.")
	errInvalidGroupID      = errors.New("Ungültige Serien-ID.")
	errInvalidDisplayMAC   = errors.New("Ungültige MAC-Adresse.")
	errInvalidImageName    = errors.New("Ungültiger Bildname.")
	errInvalidUserID       = errors.New("Ungültige Benutzer-ID.")
	errMissingSessionToken = errors.New("Anmeldung erforderlich.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeText emits a plain text body. The event endpoints speak this dialect
// because the console reads failure bodies verbatim into its dialogs.
func (r responder) writeText(ctx context.Context, w http.ResponseWriter, status int, message string) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to write response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "Keine Berechtigung für diese Aktion.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: statusMessage(http.StatusNotFound)})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: statusMessage(http.StatusConflict)})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: statusMessage(http.StatusUnprocessableEntity),
				Errors:  vErr.FieldErrors,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: statusMessage(http.StatusInternalServerError)})
	}
}

// handleEventError is the plain text variant of handleServiceError used by the
// event and recurring event endpoints. Collisions map to the private status
// code the console treats as "keep the dialog open".
func (r responder) handleEventError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeText(ctx, w, http.StatusInternalServerError, statusMessage(http.StatusInternalServerError))
		return
	}

	var cErr *application.CollisionError
	if errors.As(err, &cErr) {
		r.writeText(ctx, w, StatusEventCollision, cErr.Message())
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeText(ctx, w, http.StatusUnprocessableEntity, joinFieldErrors(vErr))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeText(ctx, w, http.StatusForbidden, "Keine Berechtigung für diese Aktion.")
	case errors.Is(err, application.ErrNotFound):
		r.writeText(ctx, w, http.StatusNotFound, statusMessage(http.StatusNotFound))
	default:
		r.writeText(ctx, w, http.StatusInternalServerError, statusMessage(http.StatusInternalServerError))
	}
}

// writeWakeupWarning reports a saved event whose display wakes too late. The
// console surfaces the body as a notice rather than an error.
func (r responder) writeWakeupWarning(ctx context.Context, w http.ResponseWriter, warning *application.WakeupWarning) {
	if warning == nil {
		return
	}
	r.writeText(ctx, w, StatusWakeupTiming, warning.Text)
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Die Anfrage ist fehlerhaft."
	case http.StatusUnauthorized:
		return "Anmeldung erforderlich."
	case http.StatusForbidden:
		return "Keine Berechtigung für diese Aktion."
	case http.StatusNotFound:
		return "Die angeforderte Ressource wurde nicht gefunden."
	case http.StatusConflict:
		return "Die Ressource existiert bereits."
	case http.StatusUnprocessableEntity:
		return "Die Eingaben sind ungültig."
	default:
		return "Interner Serverfehler."
	}
}

// joinFieldErrors flattens field errors into one line per message, ordered by
// field name so the body is stable.
func joinFieldErrors(vErr *application.ValidationError) string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return statusMessage(http.StatusUnprocessableEntity)
	}

	fields := make([]string, 0, len(vErr.FieldErrors))
	for field := range vErr.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		lines = append(lines, vErr.FieldErrors[field])
	}
	return strings.Join(lines, "\n")
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
