package main

import (
	"context"
	"log/slog"
	"os"

	"collegenet-backend/cmd/r25/commands"
	"collegenet-backend/internal/components/telemetry"
	"collegenet-backend/lib/util/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	defer cancel()

	otel, err := telemetry.SetupFromEnv(ctx, "r25")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}

	err = commands.ExecuteContext(ctx)

	shutdownErr := otel.Shutdown(context.Background())
	if shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr.Error())
	}
	if err != nil {
		cancel()
		os.Exit(1)
	}
}
