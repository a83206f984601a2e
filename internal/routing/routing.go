// Package routing wraps the external distance/duration provider used by the
// cost estimator. The provider is opaque to the rest of the system: callers
// receive a Leg or an error, and the cost estimator degrades to static
// fallback values on any error.
package routing

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the provider could not produce a result for the
// requested origin/destination pair. Callers fall back to static estimates.
var ErrUnavailable = errors.New("distance provider unavailable")

// Leg is a single origin-to-destination measurement.
type Leg struct {
	DistanceMeters  int
	DurationSeconds int
}

// Miles converts the leg distance to miles.
func (l Leg) Miles() float64 {
	return float64(l.DistanceMeters) / 1609.344
}

// Hours converts the leg duration to hours.
func (l Leg) Hours() float64 {
	return float64(l.DurationSeconds) / 3600
}

// Provider resolves driving distance and duration between two addresses.
type Provider interface {
	Lookup(ctx context.Context, origin, destination string) (Leg, error)
}
