package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aelexs/timeconverter/internal/converter/app"
	"github.com/aelexs/timeconverter/internal/converter/port"
	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/aelexs/timeconverter/internal/server"
)

// setup is the timeconvd composition root. It resolves the display zone,
// creates the converter service and registers the HTTP routes.
func setup(ctx context.Context, deps server.SetupDeps) (func(context.Context) error, error) {
	cfg := deps.Config
	logger := deps.Logger

	loc, err := domain.ResolveLocation(cfg.Display.Location)
	if err != nil {
		return nil, fmt.Errorf("timeconvd setup: %w", err)
	}

	svc := app.NewService(app.ServiceConfig{
		Clock:    domain.RealClock{},
		Location: loc,
		Logger:   logger,
	})

	// Streams end with ctx, which is cancelled when shutdown begins.
	handler := port.NewHandler(port.HandlerConfig{
		Service:            svc,
		DefaultOffsetHours: cfg.Display.OffsetHours,
		RefreshInterval:    cfg.Display.RefreshInterval,
		StreamContext:      ctx,
		Logger:             logger,
	})
	handler.Register(deps.Router)

	logger.InfoContext(ctx, "converter initialized",
		slog.String("location", loc.String()),
		slog.Int("offset_hours", cfg.Display.OffsetHours),
		slog.Duration("refresh_interval", cfg.Display.RefreshInterval),
	)

	return nil, nil
}
