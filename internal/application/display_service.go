package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/example/tablohm/internal/persistence"
)

var macPattern = regexp.MustCompile(`^([0-9a-f]{2}:){5}[0-9a-f]{2}$`)

// DisplayService manages the display registry.
type DisplayService struct {
	displays persistence.DisplayRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewDisplayService constructs a display service with the provided dependencies.
func NewDisplayService(displays persistence.DisplayRepository, now func() time.Time) *DisplayService {
	return NewDisplayServiceWithLogger(displays, now, nil)
}

// NewDisplayServiceWithLogger constructs a display service with a specified logger.
func NewDisplayServiceWithLogger(displays persistence.DisplayRepository, now func() time.Time, logger *slog.Logger) *DisplayService {
	if now == nil {
		now = time.Now
	}
	return &DisplayService{displays: displays, now: now, logger: defaultLogger(logger)}
}

func (s *DisplayService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DisplayService", operation, attrs...)
}

// Create registers a new display for administrators.
func (s *DisplayService) Create(ctx context.Context, params CreateDisplayParams) (display Display, err error) {
	if s == nil {
		err = fmt.Errorf("DisplayService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateDisplay", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create display", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("mac", display.MAC).InfoContext(ctx, "display created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input := normalizeDisplayInput(params.Input)
	if vErr := validateDisplayInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	record := persistence.Display{
		MAC:    input.MAC,
		Name:   input.Name,
		Width:  input.Width,
		Height: input.Height,
	}
	if createErr := s.displays.CreateDisplay(ctx, record); createErr != nil {
		err = mapEventRepoError(createErr)
		return
	}
	display = displayFromRecord(record)
	return
}

// Update rewrites a display's name and dimensions for administrators.
func (s *DisplayService) Update(ctx context.Context, params UpdateDisplayParams) (display Display, err error) {
	if s == nil {
		err = fmt.Errorf("DisplayService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateDisplay",
		"principal_id", params.Principal.UserID,
		"mac", params.Input.MAC,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update display", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "display updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input := normalizeDisplayInput(params.Input)
	if vErr := validateDisplayInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	record := persistence.Display{
		MAC:    input.MAC,
		Name:   input.Name,
		Width:  input.Width,
		Height: input.Height,
	}
	if updateErr := s.displays.UpdateDisplay(ctx, record); updateErr != nil {
		err = mapEventRepoError(updateErr)
		return
	}
	display = displayFromRecord(record)
	return
}

// Delete removes a display for administrators. Event assignments on the
// display are removed with it.
func (s *DisplayService) Delete(ctx context.Context, params DeleteDisplayParams) (err error) {
	if s == nil {
		return fmt.Errorf("DisplayService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteDisplay",
		"principal_id", params.Principal.UserID,
		"mac", params.MAC,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete display", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "display deleted")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	err = mapEventRepoError(s.displays.DeleteDisplay(ctx, normalizeMAC(params.MAC)))
	return
}

// Get returns one display by MAC address.
func (s *DisplayService) Get(ctx context.Context, mac string) (Display, error) {
	record, err := s.displays.GetDisplay(ctx, normalizeMAC(mac))
	if err != nil {
		return Display{}, mapEventRepoError(err)
	}
	return displayFromRecord(record), nil
}

// List returns every registered display.
func (s *DisplayService) List(ctx context.Context) ([]Display, error) {
	records, err := s.displays.ListDisplays(ctx)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	displays := make([]Display, 0, len(records))
	for _, record := range records {
		displays = append(displays, displayFromRecord(record))
	}
	return displays, nil
}

// Touch records a content fetch by the display itself.
func (s *DisplayService) Touch(ctx context.Context, mac string) error {
	err := s.displays.TouchDisplay(ctx, normalizeMAC(mac), s.now())
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func normalizeMAC(mac string) string {
	return strings.ToLower(strings.TrimSpace(mac))
}

func normalizeDisplayInput(input DisplayInput) DisplayInput {
	input.MAC = normalizeMAC(input.MAC)
	input.Name = strings.TrimSpace(input.Name)
	return input
}

func validateDisplayInput(input DisplayInput) *ValidationError {
	vErr := &ValidationError{}
	if !macPattern.MatchString(input.MAC) {
		vErr.add("mac", "Ungültige MAC-Adresse.")
	}
	if input.Name == "" {
		vErr.add("name", "Name ist erforderlich.")
	}
	if input.Width < 0 || input.Height < 0 {
		vErr.add("dimensions", "Abmessungen dürfen nicht negativ sein.")
	}
	return vErr
}

func displayFromRecord(record persistence.Display) Display {
	return Display{
		MAC:       record.MAC,
		Name:      record.Name,
		Width:     record.Width,
		Height:    record.Height,
		LastSeen:  record.LastSeen,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
