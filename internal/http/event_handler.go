package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/tablohm/internal/application"
	"github.com/example/tablohm/internal/datetime"
)

type eventService interface {
	Create(ctx context.Context, params application.CreateEventParams) (application.Event, *application.WakeupWarning, error)
	Update(ctx context.Context, params application.UpdateEventParams) (application.Event, *application.WakeupWarning, error)
	Delete(ctx context.Context, params application.DeleteEventParams) error
	List(ctx context.Context) ([]application.Event, error)
	ListForDisplay(ctx context.Context, mac string) ([]application.Event, error)
}

type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeText(r.Context(), w, http.StatusBadRequest, errBadRequestBody.Error())
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	event, warning, err := h.service.Create(r.Context(), application.CreateEventParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleEventError(r.Context(), w, err)
		return
	}

	logger = logger.With("event_id", event.ID)
	if warning != nil {
		logger.InfoContext(r.Context(), "event created with wakeup warning", "warning", warning.Text)
		h.responder.writeWakeupWarning(r.Context(), w, warning)
		return
	}

	logger.InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := eventIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing or invalid event id for update")
		h.responder.writeText(r.Context(), w, http.StatusBadRequest, errInvalidEventID.Error())
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event update", "error", err)
		h.responder.writeText(r.Context(), w, http.StatusBadRequest, errBadRequestBody.Error())
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "event_id", eventID)

	event, warning, err := h.service.Update(r.Context(), application.UpdateEventParams{
		Principal: principal,
		EventID:   eventID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleEventError(r.Context(), w, err)
		return
	}

	if warning != nil {
		logger.InfoContext(r.Context(), "event updated with wakeup warning", "warning", warning.Text)
		h.responder.writeWakeupWarning(r.Context(), w, warning)
		return
	}

	logger.InfoContext(r.Context(), "event updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := eventIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing or invalid event id for delete")
		h.responder.writeText(r.Context(), w, http.StatusBadRequest, errInvalidEventID.Error())
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "event_id", eventID)

	if err := h.service.Delete(r.Context(), application.DeleteEventParams{Principal: principal, EventID: eventID}); err != nil {
		logger.ErrorContext(r.Context(), "event delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleEventError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	events, err := h.service.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "event list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventListResponse{Events: toEventDTOs(events)})
}

func (h *EventHandler) ListForDisplay(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mac, ok := DisplayMACFromContext(r.Context())
	if !ok || strings.TrimSpace(mac) == "" {
		h.log(r.Context(), "ListForDisplay", "error_kind", "bad_request").ErrorContext(r.Context(), "missing display address")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDisplayMAC)
		return
	}

	logger := h.log(r.Context(), "ListForDisplay", "display", mac)
	events, err := h.service.ListForDisplay(r.Context(), mac)
	if err != nil {
		logger.ErrorContext(r.Context(), "event list for display failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventListResponse{Events: toEventDTOs(events)})
}

func eventIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := EventIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// localDateTime is the wire spelling of event timestamps. The console sends
// and expects wall clock values without a zone designator.
const localDateTime = "2006-01-02T15:04:05"

type eventRequest struct {
	Title         string            `json:"title"`
	Start         string            `json:"start"`
	End           string            `json:"end"`
	AllDay        bool              `json:"allDay"`
	DisplayImages []displayImageDTO `json:"displayImages"`
}

// displayImageDTO is one display-to-image pairing on the wire.
type displayImageDTO struct {
	DisplayMAC string `json:"displayMac"`
	Image      string `json:"image"`
}

// toInput parses the wire timestamps. Unparsable values become zero times,
// which the service rejects with a field error.
func (req eventRequest) toInput() application.EventInput {
	start, _ := datetime.ParseDate(req.Start)
	end, _ := datetime.ParseDate(req.End)
	return application.EventInput{
		Title:         req.Title,
		Start:         start,
		End:           end,
		AllDay:        req.AllDay,
		DisplayImages: pairsFromWire(req.DisplayImages),
	}
}

func pairsFromWire(pairs []displayImageDTO) []application.DisplayImage {
	out := make([]application.DisplayImage, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, application.DisplayImage{DisplayMAC: pair.DisplayMAC, Image: pair.Image})
	}
	return out
}

func pairsToWire(pairs []application.DisplayImage) []displayImageDTO {
	out := make([]displayImageDTO, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, displayImageDTO{DisplayMAC: pair.DisplayMAC, Image: pair.Image})
	}
	return out
}

type eventDTO struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	GroupID       string            `json:"groupId,omitempty"`
	Start         string            `json:"start"`
	End           string            `json:"end"`
	AllDay        bool              `json:"allDay"`
	DisplayImages []displayImageDTO `json:"displayImages"`
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

type eventListResponse struct {
	Events []eventDTO `json:"events"`
}

func toEventDTO(event application.Event) eventDTO {
	return eventDTO{
		ID:            event.ID,
		Title:         event.Title,
		GroupID:       event.GroupID,
		Start:         event.Start.Format(localDateTime),
		End:           event.End.Format(localDateTime),
		AllDay:        event.AllDay,
		DisplayImages: pairsToWire(event.DisplayImages),
	}
}

func toEventDTOs(events []application.Event) []eventDTO {
	dtos := make([]eventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, toEventDTO(event))
	}
	return dtos
}
