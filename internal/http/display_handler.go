package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/tablohm/internal/application"
)

type displayService interface {
	Create(ctx context.Context, params application.CreateDisplayParams) (application.Display, error)
	Update(ctx context.Context, params application.UpdateDisplayParams) (application.Display, error)
	Delete(ctx context.Context, params application.DeleteDisplayParams) error
	List(ctx context.Context) ([]application.Display, error)
	Touch(ctx context.Context, mac string) error
}

type DisplayHandler struct {
	service   displayService
	responder responder
	logger    *slog.Logger
}

func NewDisplayHandler(service displayService, logger *slog.Logger) *DisplayHandler {
	base := defaultLogger(logger)
	return &DisplayHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DisplayHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DisplayHandler", operation, attrs...)
}

func (h *DisplayHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req displayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode display request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "mac", req.MAC)

	display, err := h.service.Create(r.Context(), application.CreateDisplayParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "display registration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "display registered")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, displayResponse{Display: toDisplayDTO(display)})
}

func (h *DisplayHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mac, ok := DisplayMACFromContext(r.Context())
	if !ok || strings.TrimSpace(mac) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing display address for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDisplayMAC)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req displayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "mac", mac, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode display update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	req.MAC = mac
	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "mac", mac)

	display, err := h.service.Update(r.Context(), application.UpdateDisplayParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "display update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "display updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, displayResponse{Display: toDisplayDTO(display)})
}

func (h *DisplayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mac, ok := DisplayMACFromContext(r.Context())
	if !ok || strings.TrimSpace(mac) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing display address for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDisplayMAC)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "mac", mac)

	if err := h.service.Delete(r.Context(), application.DeleteDisplayParams{Principal: principal, MAC: mac}); err != nil {
		logger.ErrorContext(r.Context(), "display delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "display deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *DisplayHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	displays, err := h.service.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "display list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]displayDTO, 0, len(displays))
	for _, display := range displays {
		dtos = append(dtos, toDisplayDTO(display))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, displayListResponse{Displays: dtos})
}

// Checkin records a display heartbeat. Displays call this when they wake, so
// the endpoint stays cheap and returns no body.
func (h *DisplayHandler) Checkin(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mac, ok := DisplayMACFromContext(r.Context())
	if !ok || strings.TrimSpace(mac) == "" {
		h.log(r.Context(), "Checkin", "error_kind", "bad_request").ErrorContext(r.Context(), "missing display address for checkin")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDisplayMAC)
		return
	}

	logger := h.log(r.Context(), "Checkin", "mac", mac)
	if err := h.service.Touch(r.Context(), mac); err != nil {
		logger.ErrorContext(r.Context(), "display checkin failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type displayRequest struct {
	MAC    string `json:"mac"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (req displayRequest) toInput() application.DisplayInput {
	return application.DisplayInput{
		MAC:    req.MAC,
		Name:   req.Name,
		Width:  req.Width,
		Height: req.Height,
	}
}

type displayDTO struct {
	MAC      string `json:"mac"`
	Name     string `json:"name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	LastSeen string `json:"lastSeen,omitempty"`
}

type displayResponse struct {
	Display displayDTO `json:"display"`
}

type displayListResponse struct {
	Displays []displayDTO `json:"displays"`
}

func toDisplayDTO(display application.Display) displayDTO {
	dto := displayDTO{
		MAC:    display.MAC,
		Name:   display.Name,
		Width:  display.Width,
		Height: display.Height,
	}
	if display.LastSeen != nil {
		dto.LastSeen = display.LastSeen.UTC().Format(time.RFC3339)
	}
	return dto
}
