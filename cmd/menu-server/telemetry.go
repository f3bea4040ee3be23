package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/zphrs/ucsc-menu/lib/serviceutil"
	"github.com/zphrs/ucsc-menu/lib/telemetry"
)

const perfStatsInterval = 30 * time.Second

// initTelemetry installs the logger and the otel providers, the returned
// function flushes the exporters.
func initTelemetry(ctx context.Context, verbose bool) func() {
	telemetry.InitSlog(verbose)

	t, err := telemetry.SetupFromEnv(ctx, "menu-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	telemetry.InstrumentPerfStats(ctx, perfStatsInterval)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := t.Shutdown(shutdownCtx)
		if err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}
}
