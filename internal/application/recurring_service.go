package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/tablohm/internal/persistence"
	"github.com/example/tablohm/internal/recurrence"
	"github.com/example/tablohm/internal/scheduler"
)

// RecurringEventService materializes recurrence rules into stored event
// groups. Every occurrence of a series shares a generated group ID so the
// series can be deleted as one unit.
type RecurringEventService struct {
	events      persistence.EventRepository
	displays    persistence.DisplayRepository
	wakeConfigs persistence.WakeConfigRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRecurringEventService constructs a recurring event service.
func NewRecurringEventService(events persistence.EventRepository, displays persistence.DisplayRepository, wakeConfigs persistence.WakeConfigRepository, idGenerator func() string, now func() time.Time) *RecurringEventService {
	return NewRecurringEventServiceWithLogger(events, displays, wakeConfigs, idGenerator, now, nil)
}

// NewRecurringEventServiceWithLogger constructs a recurring event service with a specified logger.
func NewRecurringEventServiceWithLogger(events persistence.EventRepository, displays persistence.DisplayRepository, wakeConfigs persistence.WakeConfigRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RecurringEventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RecurringEventService{
		events:      events,
		displays:    displays,
		wakeConfigs: wakeConfigs,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RecurringEventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RecurringEventService", operation, attrs...)
}

// Create expands the rule into occurrences, checks every occurrence for
// collisions, and stores the series atomically. Expansion is capped so a
// runaway rule cannot flood the database.
func (s *RecurringEventService) Create(ctx context.Context, params CreateRecurringEventParams) (series RecurringEvent, warning *WakeupWarning, err error) {
	if s == nil {
		err = fmt.Errorf("RecurringEventService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRecurringEvent", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create recurring event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("group_id", series.GroupID, "occurrences", series.Occurrences).InfoContext(ctx, "recurring event created")
	}()

	input := params.Input
	base := normalizeEventInput(EventInput{
		Title:         input.Title,
		Start:         input.Start,
		End:           input.End,
		AllDay:        input.AllDay,
		DisplayImages: input.DisplayImages,
	})

	vErr := s.validateInput(ctx, base, input.Rule)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	spans, expandErr := recurrence.Materialize(input.Rule, base.Start, base.End, recurrence.DefaultOccurrenceCap)
	if expandErr != nil {
		vErr = &ValidationError{}
		vErr.add("rule", "Ungültige Wiederholungsregel.")
		err = vErr
		return
	}
	if len(spans) == 0 {
		vErr = &ValidationError{}
		vErr.add("rule", "Die Wiederholungsregel ergibt keine Termine.")
		err = vErr
		return
	}

	if err = s.checkOccurrenceCollisions(ctx, base.DisplayImages, spans); err != nil {
		return
	}

	groupID := s.idGenerator()
	records := make([]persistence.Event, 0, len(spans))
	for _, span := range spans {
		records = append(records, persistence.Event{
			Title:         base.Title,
			GroupID:       groupID,
			Rule:          input.Rule,
			Start:         span.Start,
			End:           span.End,
			AllDay:        base.AllDay,
			DisplayImages: pairsToRecords(base.DisplayImages),
		})
	}
	stored, storeErr := s.events.CreateEventGroup(ctx, records)
	if storeErr != nil {
		err = mapEventRepoError(storeErr)
		return
	}

	series = RecurringEvent{
		GroupID:       groupID,
		Title:         base.Title,
		Rule:          input.Rule,
		First:         stored[0].Start,
		Occurrences:   len(stored),
		DisplayImages: base.DisplayImages,
	}
	warning = s.checkFirstWakeup(ctx, base.DisplayImages, stored[0].Start)
	return
}

// Delete removes every occurrence of a series.
func (s *RecurringEventService) Delete(ctx context.Context, params DeleteRecurringEventParams) (err error) {
	if s == nil {
		return fmt.Errorf("RecurringEventService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteRecurringEvent",
		"principal_id", params.Principal.UserID,
		"group_id", params.GroupID,
	)
	var deleted int64
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete recurring event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("occurrences", deleted).InfoContext(ctx, "recurring event deleted")
	}()

	deleted, err = s.events.DeleteEventGroup(ctx, params.GroupID)
	err = mapEventRepoError(err)
	return
}

// List summarizes every stored series: its first occurrence, rule, and
// occurrence count.
func (s *RecurringEventService) List(ctx context.Context) ([]RecurringEvent, error) {
	heads, err := s.events.ListEventGroups(ctx)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	if len(heads) == 0 {
		return nil, nil
	}

	all, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	counts := make(map[string]int)
	for _, event := range all {
		if event.GroupID != "" {
			counts[event.GroupID]++
		}
	}

	series := make([]RecurringEvent, 0, len(heads))
	for _, head := range heads {
		series = append(series, RecurringEvent{
			GroupID:       head.GroupID,
			Title:         head.Title,
			Rule:          head.Rule,
			First:         head.Start,
			Occurrences:   counts[head.GroupID],
			DisplayImages: pairsFromRecords(head.DisplayImages),
		})
	}
	return series, nil
}

func (s *RecurringEventService) validateInput(ctx context.Context, base EventInput, rule string) *ValidationError {
	vErr := &ValidationError{}

	length := len([]rune(base.Title))
	if length < MinEventTitleLength || length > MaxEventTitleLength {
		vErr.add("title", fmt.Sprintf("Titel muss zwischen %d und %d Zeichen lang sein.", MinEventTitleLength, MaxEventTitleLength))
	}
	if base.Start.IsZero() || base.End.IsZero() {
		vErr.add("time", "Beginn und Ende sind erforderlich.")
	} else if !base.Start.Before(base.End) {
		vErr.add("time", "Ende muss nach dem Beginn liegen.")
	}
	if strings.TrimSpace(rule) == "" {
		vErr.add("rule", "Wiederholungsregel ist erforderlich.")
	}
	if len(base.DisplayImages) == 0 {
		vErr.add("displays", "Mindestens ein Display auswählen.")
	}
	seen := make(map[string]bool, len(base.DisplayImages))
	for _, pair := range base.DisplayImages {
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

// checkOccurrenceCollisions queries every occurrence window on every display
// and aggregates the affected MACs. One colliding occurrence rejects the
// whole series.
func (s *RecurringEventService) checkOccurrenceCollisions(ctx context.Context, pairs []DisplayImage, spans []recurrence.Span) error {
	var affected []string
	seen := make(map[string]bool)
	for _, pair := range pairs {
		mac := pair.DisplayMAC
		for _, span := range spans {
			overlapping, err := s.events.ListOverlapping(ctx, mac, span.Start, span.End)
			if err != nil {
				return mapEventRepoError(err)
			}
			if len(overlapping) > 0 && !seen[mac] {
				seen[mac] = true
				affected = append(affected, mac)
				break
			}
		}
	}
	if len(affected) > 0 {
		return &CollisionError{Displays: affected}
	}
	return nil
}

func (s *RecurringEventService) checkFirstWakeup(ctx context.Context, pairs []DisplayImage, firstStart time.Time) *WakeupWarning {
	config, err := s.wakeConfigs.GetWakeConfig(ctx)
	if err != nil {
		return nil
	}
	plan := WakePlanFromConfig(config)
	if wakeErr := scheduler.CheckWakeup(plan, firstStart); wakeErr != nil {
		display := ""
		if len(pairs) > 0 {
			display = pairs[0].DisplayMAC
		}
		return &WakeupWarning{Display: display, Text: wakeErr.Error()}
	}
	return nil
}
