package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/tablohm/internal/application"
	"github.com/example/tablohm/internal/datetime"
)

type recurringEventService interface {
	Create(ctx context.Context, params application.CreateRecurringEventParams) (application.RecurringEvent, *application.WakeupWarning, error)
	Delete(ctx context.Context, params application.DeleteRecurringEventParams) error
	List(ctx context.Context) ([]application.RecurringEvent, error)
}

type RecurringEventHandler struct {
	service   recurringEventService
	responder responder
	logger    *slog.Logger
}

func NewRecurringEventHandler(service recurringEventService, logger *slog.Logger) *RecurringEventHandler {
	base := defaultLogger(logger)
	return &RecurringEventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RecurringEventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RecurringEventHandler", operation, attrs...)
}

func (h *RecurringEventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req recurringEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode recurring event request", "error", err)
		h.responder.writeText(r.Context(), w, http.StatusBadRequest, errBadRequestBody.Error())
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "rrule", req.Rule)

	series, warning, err := h.service.Create(r.Context(), application.CreateRecurringEventParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "recurring event creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleEventError(r.Context(), w, err)
		return
	}

	logger = logger.With("group_id", series.GroupID, "occurrences", series.Occurrences)
	if warning != nil {
		logger.InfoContext(r.Context(), "recurring event created with wakeup warning", "warning", warning.Text)
		h.responder.writeWakeupWarning(r.Context(), w, warning)
		return
	}

	logger.InfoContext(r.Context(), "recurring event created")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, recurringEventResponse{Series: toRecurringEventDTO(series)})
}

func (h *RecurringEventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	groupID, ok := GroupIDFromContext(r.Context())
	if !ok || strings.TrimSpace(groupID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing group id for delete")
		h.responder.writeText(r.Context(), w, http.StatusBadRequest, errInvalidGroupID.Error())
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "group_id", groupID)

	if err := h.service.Delete(r.Context(), application.DeleteRecurringEventParams{Principal: principal, GroupID: groupID}); err != nil {
		logger.ErrorContext(r.Context(), "recurring event delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleEventError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "recurring event deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RecurringEventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	series, err := h.service.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "recurring event list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]recurringEventDTO, 0, len(series))
	for _, s := range series {
		dtos = append(dtos, toRecurringEventDTO(s))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, recurringEventListResponse{Series: dtos})
}

type recurringEventRequest struct {
	Title         string            `json:"title"`
	Start         string            `json:"start"`
	End           string            `json:"end"`
	AllDay        bool              `json:"allDay"`
	DisplayImages []displayImageDTO `json:"displayImages"`
	Rule          string            `json:"rrule"`
}

func (req recurringEventRequest) toInput() application.RecurringEventInput {
	start, _ := datetime.ParseDate(req.Start)
	end, _ := datetime.ParseDate(req.End)
	return application.RecurringEventInput{
		Title:         req.Title,
		Start:         start,
		End:           end,
		AllDay:        req.AllDay,
		DisplayImages: pairsFromWire(req.DisplayImages),
		Rule:          req.Rule,
	}
}

type recurringEventDTO struct {
	GroupID       string            `json:"groupId"`
	Title         string            `json:"title"`
	Rule          string            `json:"rrule"`
	First         string            `json:"first"`
	Occurrences   int               `json:"occurrences"`
	DisplayImages []displayImageDTO `json:"displayImages"`
}

type recurringEventResponse struct {
	Series recurringEventDTO `json:"series"`
}

type recurringEventListResponse struct {
	Series []recurringEventDTO `json:"series"`
}

func toRecurringEventDTO(series application.RecurringEvent) recurringEventDTO {
	return recurringEventDTO{
		GroupID:       series.GroupID,
		Title:         series.Title,
		Rule:          series.Rule,
		First:         series.First.Format(localDateTime),
		Occurrences:   series.Occurrences,
		DisplayImages: pairsToWire(series.DisplayImages),
	}
}
