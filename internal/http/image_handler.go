package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/tablohm/internal/application"
)

// maxImageBytes bounds uploads; a full frame for the largest panel stays well
// under this.
const maxImageBytes = 8 << 20

type imageService interface {
	Save(ctx context.Context, params application.SaveImageParams) (application.Image, error)
	Get(ctx context.Context, name string) (application.Image, error)
	List(ctx context.Context) ([]application.Image, error)
	Delete(ctx context.Context, params application.DeleteImageParams) error
}

type ImageHandler struct {
	service   imageService
	responder responder
	logger    *slog.Logger
}

func NewImageHandler(service imageService, logger *slog.Logger) *ImageHandler {
	base := defaultLogger(logger)
	return &ImageHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ImageHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ImageHandler", operation, attrs...)
}

// Upload stores a rendered frame. The body is the raw image, the content type
// comes from the Content-Type header and the target display from the
// `display` query parameter.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	mac := strings.TrimSpace(r.URL.Query().Get("display"))
	contentType := strings.TrimSpace(r.Header.Get("Content-Type"))

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes+1))
	if err != nil {
		h.log(r.Context(), "Upload", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to read image body", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if len(data) > maxImageBytes {
		h.log(r.Context(), "Upload", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "image upload exceeds size limit", "size", len(data))
		h.responder.writeError(r.Context(), w, http.StatusRequestEntityTooLarge, nil)
		return
	}

	logger := h.log(r.Context(), "Upload", "principal_id", principal.UserID, "display", mac, "content_type", contentType)

	image, err := h.service.Save(r.Context(), application.SaveImageParams{
		Principal: principal,
		Input: application.ImageInput{
			DisplayMAC:  mac,
			ContentType: contentType,
			Data:        data,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "image save failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("name", image.Name).InfoContext(r.Context(), "image stored")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, imageResponse{Image: toImageDTO(image)})
}

// Fetch serves the stored image bytes with the recorded content type.
func (h *ImageHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	name, ok := ImageNameFromContext(r.Context())
	if !ok || strings.TrimSpace(name) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidImageName)
		return
	}

	logger := h.log(r.Context(), "Fetch", "name", name)
	image, err := h.service.Get(r.Context(), name)
	if err != nil {
		logger.ErrorContext(r.Context(), "image read failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", image.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(image.Data); err != nil {
		logger.ErrorContext(r.Context(), "failed to write image body", "error", err)
	}
}

func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	images, err := h.service.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "image list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]imageDTO, 0, len(images))
	for _, image := range images {
		dtos = append(dtos, toImageDTO(image))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, imageListResponse{Images: dtos})
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	name, ok := ImageNameFromContext(r.Context())
	if !ok || strings.TrimSpace(name) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidImageName)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "name", name)

	if err := h.service.Delete(r.Context(), application.DeleteImageParams{Principal: principal, Name: name}); err != nil {
		logger.ErrorContext(r.Context(), "image delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "image deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type imageDTO struct {
	Name        string `json:"name"`
	DisplayMAC  string `json:"displayMac,omitempty"`
	ContentType string `json:"contentType"`
	CreatedAt   string `json:"createdAt"`
}

type imageResponse struct {
	Image imageDTO `json:"image"`
}

type imageListResponse struct {
	Images []imageDTO `json:"images"`
}

func toImageDTO(image application.Image) imageDTO {
	return imageDTO{
		Name:        image.Name,
		DisplayMAC:  image.DisplayMAC,
		ContentType: image.ContentType,
		CreatedAt:   image.CreatedAt.UTC().Format(time.RFC3339),
	}
}
