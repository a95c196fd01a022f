package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/tablohm/internal/persistence"
)

// allowedImageTypes are the content types the e-ink renderer produces.
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/bmp":  ".bmp",
}

// ImageService stores rendered template images under generated names.
type ImageService struct {
	images      persistence.ImageRepository
	idGenerator func() string
	logger      *slog.Logger
}

// NewImageService constructs an image service.
func NewImageService(images persistence.ImageRepository, idGenerator func() string) *ImageService {
	return NewImageServiceWithLogger(images, idGenerator, nil)
}

// NewImageServiceWithLogger constructs an image service with a specified logger.
func NewImageServiceWithLogger(images persistence.ImageRepository, idGenerator func() string, logger *slog.Logger) *ImageService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &ImageService{images: images, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *ImageService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ImageService", operation, attrs...)
}

// Save validates and stores an uploaded image under a generated name.
func (s *ImageService) Save(ctx context.Context, params SaveImageParams) (image Image, err error) {
	if s == nil {
		err = fmt.Errorf("ImageService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SaveImage", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save image", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("name", image.Name).InfoContext(ctx, "image saved")
	}()

	ext, ok := allowedImageTypes[params.Input.ContentType]
	if !ok {
		vErr := &ValidationError{}
		vErr.add("contentType", "Nicht unterstütztes Bildformat.")
		err = vErr
		return
	}
	if len(params.Input.Data) == 0 {
		vErr := &ValidationError{}
		vErr.add("data", "Bilddaten sind erforderlich.")
		err = vErr
		return
	}

	record := persistence.Image{
		Name:        s.idGenerator() + ext,
		DisplayMAC:  normalizeMAC(params.Input.DisplayMAC),
		ContentType: params.Input.ContentType,
		Data:        params.Input.Data,
	}
	if saveErr := s.images.SaveImage(ctx, record); saveErr != nil {
		err = mapEventRepoError(saveErr)
		return
	}
	image = imageFromRecord(record)
	return
}

// Get returns a stored image including its payload.
func (s *ImageService) Get(ctx context.Context, name string) (Image, error) {
	record, err := s.images.GetImage(ctx, name)
	if err != nil {
		return Image{}, mapEventRepoError(err)
	}
	return imageFromRecord(record), nil
}

// List returns image metadata without payloads.
func (s *ImageService) List(ctx context.Context) ([]Image, error) {
	records, err := s.images.ListImages(ctx)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	images := make([]Image, 0, len(records))
	for _, record := range records {
		images = append(images, imageFromRecord(record))
	}
	return images, nil
}

// Delete removes a stored image.
func (s *ImageService) Delete(ctx context.Context, params DeleteImageParams) (err error) {
	if s == nil {
		return fmt.Errorf("ImageService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteImage",
		"principal_id", params.Principal.UserID,
		"name", params.Name,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete image", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "image deleted")
	}()

	err = mapEventRepoError(s.images.DeleteImage(ctx, params.Name))
	return
}

func imageFromRecord(record persistence.Image) Image {
	return Image{
		Name:        record.Name,
		DisplayMAC:  record.DisplayMAC,
		ContentType: record.ContentType,
		Data:        record.Data,
		CreatedAt:   record.CreatedAt,
	}
}
