package calendarcfg

import (
	"context"

	"github.com/example/slotwise/services/availability-service/internal/slots"
)

// Settings is an owner's calendar configuration: the zone their wall-clock
// hours are stated in, optional business hours, and the default slot length.
type Settings struct {
	Timezone    string
	Hours       *slots.BusinessHours
	SlotMinutes int
}

type Provider interface {
	OwnerSettings(ctx context.Context, ownerID string) (Settings, error)
}

type staticProvider struct {
	settings Settings
}

func NewStaticProvider(settings Settings) Provider {
	return &staticProvider{settings: settings}
}

func (p *staticProvider) OwnerSettings(_ context.Context, _ string) (Settings, error) {
	return p.settings, nil
}
