//go:build !protogen

package main

import (
	"context"
	"log/slog"

	"github.com/example/slotwise/services/availability-service/internal/engine"
)

func startGrpcServer(_ context.Context, _ *slog.Logger, _ *engine.Engine, _ engine.BlockedPeriodStore, _ engine.BookingStore) error {
	return nil
}
