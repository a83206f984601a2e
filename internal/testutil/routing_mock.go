package testutil

import (
	"context"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/routing"
)

// StaticProvider is a distance provider returning a fixed leg or error.
// Useful for testing cost estimation without a maps API key.
type StaticProvider struct {
	Leg routing.Leg
	Err error
}

// Lookup returns the configured leg or error regardless of the journey.
func (p *StaticProvider) Lookup(_ context.Context, _, _ string) (routing.Leg, error) {
	if p.Err != nil {
		return routing.Leg{}, p.Err
	}
	return p.Leg, nil
}

// NewStaticProvider returns a provider yielding the given distance and
// duration for every lookup.
func NewStaticProvider(distanceMeters, durationSeconds int) *StaticProvider {
	return &StaticProvider{
		Leg: routing.Leg{
			DistanceMeters:  distanceMeters,
			DurationSeconds: durationSeconds,
		},
	}
}
