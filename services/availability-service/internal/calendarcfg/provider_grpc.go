//go:build protogen

package calendarcfg

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/slotwise/libs/grpcx"
	calendarv1 "github.com/example/slotwise/protos/gen/calendar/v1"
	"github.com/example/slotwise/services/availability-service/internal/slots"
)

type grpcProvider struct {
	client   calendarv1.CalendarServiceClient
	fallback Settings
}

func NewOwnerSettingsProvider(logger *slog.Logger, fallback Settings, addr string) (Provider, error) {
	if addr == "" {
		return NewStaticProvider(fallback), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpcx.Dial(ctx, addr, grpcx.DialOptions{Timeout: 5 * time.Second})
	if err != nil {
		logger.Warn("grpc calendar provider unavailable, using fallback", "err", err)
		return NewStaticProvider(fallback), nil
	}

	logger.Info("grpc calendar provider enabled", "addr", addr)
	return &grpcProvider{client: calendarv1.NewCalendarServiceClient(conn), fallback: fallback}, nil
}

func (p *grpcProvider) OwnerSettings(ctx context.Context, ownerID string) (Settings, error) {
	resp, err := p.client.GetOwnerSettings(ctx, &calendarv1.OwnerSettingsRequest{OwnerId: ownerID})
	if err != nil {
		return Settings{}, err
	}
	s := Settings{
		Timezone:    resp.GetTimezone(),
		SlotMinutes: int(resp.GetSlotMinutes()),
	}
	if s.Timezone == "" {
		s.Timezone = p.fallback.Timezone
	}
	if s.SlotMinutes <= 0 {
		s.SlotMinutes = p.fallback.SlotMinutes
	}
	if resp.GetHasBusinessHours() {
		s.Hours = &slots.BusinessHours{
			StartHour: int(resp.GetStartHour()),
			EndHour:   int(resp.GetEndHour()),
		}
	}
	return s, nil
}
