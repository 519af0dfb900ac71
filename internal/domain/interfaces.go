package domain

import (
	"context"

	"skyhub/internal/models"
)

// SnapshotStore is the persistence port. Collections are serialized wholesale
// under well-known keys; the store's business logic does not know where the
// bytes live.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Tracker is the surface the API needs from the position simulator.
type Tracker interface {
	Snapshot() []models.TrackerFlight
	AddFlight(flight models.TrackerFlight)
	UpdateFlight(id string, patch models.TrackerFlightPatch) bool
	RemoveFlight(id string) bool
	Subscribe(fn func([]models.TrackerFlight)) func()
	StartSimulation(intervalMS int)
	StopSimulation()
}
