package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/tablohm/internal/datetime"
	"github.com/example/tablohm/internal/persistence"
	"github.com/example/tablohm/internal/scheduler"
)

const (
	// MinEventTitleLength and MaxEventTitleLength bound event titles.
	MinEventTitleLength = 3
	MaxEventTitleLength = 30
)

// EventService orchestrates validation, collision detection, and the wakeup
// timing check for single events.
type EventService struct {
	events      persistence.EventRepository
	displays    persistence.DisplayRepository
	wakeConfigs persistence.WakeConfigRepository
	cache       *listCache
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService constructs an event service with the provided dependencies.
func NewEventService(events persistence.EventRepository, displays persistence.DisplayRepository, wakeConfigs persistence.WakeConfigRepository, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, displays, wakeConfigs, now, nil)
}

// NewEventServiceWithLogger constructs an event service with a specified logger.
func NewEventServiceWithLogger(events persistence.EventRepository, displays persistence.DisplayRepository, wakeConfigs persistence.WakeConfigRepository, now func() time.Time, logger *slog.Logger) *EventService {
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:      events,
		displays:    displays,
		wakeConfigs: wakeConfigs,
		cache:       newListCache(30*time.Second, 64, now),
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// Create validates and persists a single event. On success the stored event
// is returned, together with a wakeup warning when the assigned displays
// will not wake in time; the event is saved either way. A collision with an
// existing event on any display aborts the save with a CollisionError.
func (s *EventService) Create(ctx context.Context, params CreateEventParams) (event Event, warning *WakeupWarning, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateEvent", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	input := normalizeEventInput(params.Input)
	if vErr := s.validateEventInput(ctx, input); vErr.HasErrors() {
		err = vErr
		return
	}
	if err = s.checkCollisions(ctx, 0, input); err != nil {
		return
	}

	stored, createErr := s.events.CreateEvent(ctx, persistence.Event{
		Title:         input.Title,
		Start:         input.Start,
		End:           input.End,
		AllDay:        input.AllDay,
		DisplayImages: pairsToRecords(input.DisplayImages),
	})
	if createErr != nil {
		err = mapEventRepoError(createErr)
		return
	}
	s.cache.InvalidateAll()

	event = eventFromRecord(stored)
	warning = s.checkWakeup(ctx, input)
	return
}

// Update validates and rewrites an existing event. Collision detection
// ignores the event itself, so shifting an event within its own window is
// always allowed.
func (s *EventService) Update(ctx context.Context, params UpdateEventParams) (event Event, warning *WakeupWarning, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateEvent",
		"principal_id", params.Principal.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event updated")
	}()

	current, getErr := s.events.GetEvent(ctx, params.EventID)
	if getErr != nil {
		err = mapEventRepoError(getErr)
		return
	}

	input := normalizeEventInput(params.Input)
	if vErr := s.validateEventInput(ctx, input); vErr.HasErrors() {
		err = vErr
		return
	}
	if err = s.checkCollisions(ctx, params.EventID, input); err != nil {
		return
	}

	record := current
	record.Title = input.Title
	record.Start = input.Start
	record.End = input.End
	record.AllDay = input.AllDay
	record.DisplayImages = pairsToRecords(input.DisplayImages)
	if updateErr := s.events.UpdateEvent(ctx, record); updateErr != nil {
		err = mapEventRepoError(updateErr)
		return
	}
	s.cache.InvalidateAll()

	record.UpdatedAt = s.now()
	event = eventFromRecord(record)
	warning = s.checkWakeup(ctx, input)
	return
}

// Delete removes a single event.
func (s *EventService) Delete(ctx context.Context, params DeleteEventParams) (err error) {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteEvent",
		"principal_id", params.Principal.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event deleted")
	}()

	if err = mapEventRepoError(s.events.DeleteEvent(ctx, params.EventID)); err != nil {
		return
	}
	s.cache.InvalidateAll()
	return
}

// List returns every stored event ordered by start time.
func (s *EventService) List(ctx context.Context) ([]Event, error) {
	records, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	return eventsFromRecords(records), nil
}

// ListForDisplay returns the events assigned to one display. Results are
// cached briefly because displays poll this on every wake.
func (s *EventService) ListForDisplay(ctx context.Context, mac string) ([]Event, error) {
	if cached, ok := s.cache.Get(mac); ok {
		return cached, nil
	}
	if _, err := s.displays.GetDisplay(ctx, mac); err != nil {
		return nil, mapEventRepoError(err)
	}
	records, err := s.events.ListEventsForDisplay(ctx, mac)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	events := eventsFromRecords(records)
	s.cache.Put(mac, events)
	return events, nil
}

// Get returns one event by ID.
func (s *EventService) Get(ctx context.Context, id int64) (Event, error) {
	record, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}
	return eventFromRecord(record), nil
}

// normalizeEventInput trims the title and widens all-day events to the full
// day bounds, 00:00:00 through 23:59:59.
func normalizeEventInput(input EventInput) EventInput {
	input.Title = strings.TrimSpace(input.Title)
	if input.AllDay {
		input.Start = datetime.StartOfDay(input.Start)
		end := datetime.StartOfDay(input.End)
		input.End = end.Add(24*time.Hour - time.Second)
	}
	return input
}

func (s *EventService) validateEventInput(ctx context.Context, input EventInput) *ValidationError {
	vErr := &ValidationError{}

	length := len([]rune(input.Title))
	if length < MinEventTitleLength || length > MaxEventTitleLength {
		vErr.add("title", fmt.Sprintf("Titel muss zwischen %d und %d Zeichen lang sein.", MinEventTitleLength, MaxEventTitleLength))
	}
	if input.Start.IsZero() || input.End.IsZero() {
		vErr.add("time", "Beginn und Ende sind erforderlich.")
	} else if !input.Start.Before(input.End) {
		vErr.add("time", "Ende muss nach dem Beginn liegen.")
	}
	if len(input.DisplayImages) == 0 {
		vErr.add("displays", "Mindestens ein Display auswählen.")
	}
	seen := make(map[string]bool, len(input.DisplayImages))
	for _, pair := range input.DisplayImages {
		if pair.DisplayMAC == "" {
			vErr.add("displays", "Display-Zuordnung ohne MAC-Adresse.")
			continue
		}
		if seen[pair.DisplayMAC] {
			vErr.add("displays", fmt.Sprintf("Display doppelt zugeordnet: %s", pair.DisplayMAC))
			continue
		}
		seen[pair.DisplayMAC] = true
		if pair.Image == "" {
			vErr.add("displays", fmt.Sprintf("Kein Bild für Display %s gewählt.", pair.DisplayMAC))
		}
		if _, err := s.displays.GetDisplay(ctx, pair.DisplayMAC); err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				vErr.add("displays", fmt.Sprintf("Unbekanntes Display: %s", pair.DisplayMAC))
				continue
			}
			vErr.add("displays", "Displays konnten nicht geprüft werden.")
		}
	}
	return vErr
}

// checkCollisions queries the overlap window per display and aggregates the
// affected MACs into a CollisionError. selfID excludes the event being
// updated.
func (s *EventService) checkCollisions(ctx context.Context, selfID int64, input EventInput) error {
	candidate := scheduler.Booking{
		ID:       selfID,
		Title:    input.Title,
		Displays: make([]string, 0, len(input.DisplayImages)),
		Start:    input.Start,
		End:      input.End,
	}
	var existing []scheduler.Booking
	for _, pair := range input.DisplayImages {
		candidate.Displays = append(candidate.Displays, pair.DisplayMAC)
		overlapping, err := s.events.ListOverlapping(ctx, pair.DisplayMAC, input.Start, input.End)
		if err != nil {
			return mapEventRepoError(err)
		}
		for _, other := range overlapping {
			existing = append(existing, bookingFromRecord(other))
		}
	}
	collisions := scheduler.DetectCollisions(existing, candidate)
	if len(collisions) == 0 {
		return nil
	}
	var affected []string
	seen := make(map[string]bool, len(collisions))
	for _, collision := range collisions {
		if seen[collision.Display] {
			continue
		}
		seen[collision.Display] = true
		affected = append(affected, collision.Display)
	}
	return &CollisionError{Displays: affected}
}

func bookingFromRecord(event persistence.Event) scheduler.Booking {
	return scheduler.Booking{
		ID:       event.ID,
		Title:    event.Title,
		Displays: event.DisplayMACs(),
		Start:    event.Start,
		End:      event.End,
	}
}

// checkWakeup inspects the wake configuration for each assigned display. A
// missing configuration disables the check. Errors here never fail the
// operation; the event is already saved.
func (s *EventService) checkWakeup(ctx context.Context, input EventInput) *WakeupWarning {
	config, err := s.wakeConfigs.GetWakeConfig(ctx)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			s.loggerWith(ctx, "CheckWakeup").WarnContext(ctx, "wake config unavailable", "error", err)
		}
		return nil
	}
	plan := WakePlanFromConfig(config)
	wakeErr := scheduler.CheckWakeup(plan, input.Start)
	if wakeErr == nil {
		return nil
	}
	display := ""
	if len(input.DisplayImages) > 0 {
		display = input.DisplayImages[0].DisplayMAC
	}
	return &WakeupWarning{Display: display, Text: wakeErr.Error()}
}

// WakePlanFromConfig converts stored wake settings into a scheduler plan.
// Unparseable window times disable the affected weekday.
func WakePlanFromConfig(config persistence.WakeConfig) scheduler.WakePlan {
	plan := scheduler.WakePlan{
		Interval: time.Duration(config.WakeIntervalMinutes) * time.Minute,
		Lead:     time.Duration(config.LeadMinutes) * time.Minute,
		Windows:  make(map[time.Weekday]scheduler.WakeWindow, len(config.WeekdayTimes)),
	}
	for weekday, wt := range config.WeekdayTimes {
		start, startOK := datetime.ParseClock(wt.Start)
		end, endOK := datetime.ParseClock(wt.End)
		plan.Windows[weekday] = scheduler.WakeWindow{
			Enabled: wt.Enabled && startOK && endOK,
			Start:   start,
			End:     end,
		}
	}
	return plan
}

func mapEventRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	default:
		return err
	}
}

func eventFromRecord(record persistence.Event) Event {
	return Event{
		ID:            record.ID,
		Title:         record.Title,
		GroupID:       record.GroupID,
		Start:         record.Start,
		End:           record.End,
		AllDay:        record.AllDay,
		DisplayImages: pairsFromRecords(record.DisplayImages),
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

func pairsToRecords(pairs []DisplayImage) []persistence.DisplayImage {
	out := make([]persistence.DisplayImage, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, persistence.DisplayImage{DisplayMAC: pair.DisplayMAC, Image: pair.Image})
	}
	return out
}

func pairsFromRecords(records []persistence.DisplayImage) []DisplayImage {
	out := make([]DisplayImage, 0, len(records))
	for _, record := range records {
		out = append(out, DisplayImage{DisplayMAC: record.DisplayMAC, Image: record.Image})
	}
	return out
}

func eventsFromRecords(records []persistence.Event) []Event {
	events := make([]Event, 0, len(records))
	for _, record := range records {
		events = append(events, eventFromRecord(record))
	}
	return events
}
