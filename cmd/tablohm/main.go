package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/tablohm/internal/application"
	"github.com/example/tablohm/internal/config"
	httptransport "github.com/example/tablohm/internal/http"
	"github.com/example/tablohm/internal/persistence"
	"github.com/example/tablohm/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	eventService := application.NewEventServiceWithLogger(store, store, store, now, logger)
	recurringService := application.NewRecurringEventServiceWithLogger(store, store, store, idGenerator, now, logger)
	displayService := application.NewDisplayServiceWithLogger(store, now, logger)
	wakeConfigService := application.NewWakeConfigServiceWithLogger(store, logger)
	imageService := application.NewImageServiceWithLogger(store, idGenerator, logger)
	userService := application.NewUserServiceWithLogger(store, nil, idGenerator, logger)
	authService := application.NewAuthServiceWithLogger(store, store, nil, tokenGenerator, now, cfg.SessionTTL, logger)
	retention := application.NewRetentionService(store, store, store, now, logger)

	if err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Error("failed to ensure admin account", "error", err)
		os.Exit(1)
	}
	if err := seedWakeConfig(ctx, store, cfg.Wake, now()); err != nil {
		logger.Error("failed to seed wake configuration", "error", err)
		os.Exit(1)
	}

	if err := retention.Start(cfg.RetentionSchedule); err != nil {
		logger.Error("failed to start retention job", "error", err)
		os.Exit(1)
	}
	defer retention.Stop()

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:            httptransport.NewAuthHandler(authService, logger),
		Events:          httptransport.NewEventHandler(eventService, logger),
		RecurringEvents: httptransport.NewRecurringEventHandler(recurringService, logger),
		Displays:        httptransport.NewDisplayHandler(displayService, logger),
		Config:          httptransport.NewConfigHandler(wakeConfigService, logger),
		Images:          httptransport.NewImageHandler(imageService, logger),
		Users:           httptransport.NewUserHandler(userService, logger),
		Sessions:        httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("tablohm API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

var weekdayByName = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// seedWakeConfig writes the factory wake settings on first start. An existing
// configuration row is never overwritten.
func seedWakeConfig(ctx context.Context, configs persistence.WakeConfigRepository, defaults config.WakeDefaults, now time.Time) error {
	if _, err := configs.GetWakeConfig(ctx); err == nil {
		return nil
	} else if !errors.Is(err, persistence.ErrNotFound) {
		return err
	}

	times := make(map[time.Weekday]persistence.WeekdayTime, len(defaults.WeekdayTimes))
	for name, window := range defaults.WeekdayTimes {
		weekday, ok := weekdayByName[strings.ToLower(name)]
		if !ok {
			continue
		}
		times[weekday] = persistence.WeekdayTime{Enabled: window.Enabled, Start: window.Start, End: window.End}
	}
	return configs.SaveWakeConfig(ctx, persistence.WakeConfig{
		WakeIntervalMinutes: defaults.WakeIntervalMinutes,
		LeadMinutes:         defaults.LeadMinutes,
		FollowUpMinutes:     defaults.FollowUpMinutes,
		DeleteAfterDays:     defaults.DeleteAfterDays,
		WeekdayTimes:        times,
		UpdatedAt:           now,
	})
}
