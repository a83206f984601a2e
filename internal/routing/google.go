package routing

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// GoogleProvider resolves legs through the Google Distance Matrix API.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a provider backed by the Google Maps API.
// Returns an error if the API key is empty or rejected by the client.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("maps API key is required")
	}

	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	return &GoogleProvider{client: client}, nil
}

// Lookup resolves driving distance and duration for a single
// origin/destination pair. Any API failure or non-OK element status is
// reported as ErrUnavailable so callers can apply their fallback path.
func (p *GoogleProvider) Lookup(ctx context.Context, origin, destination string) (Leg, error) {
	req := &maps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{destination},
		Mode:         maps.TravelModeDriving,
	}

	resp, err := p.client.DistanceMatrix(ctx, req)
	if err != nil {
		return Leg{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return Leg{}, fmt.Errorf("%w: empty distance matrix response", ErrUnavailable)
	}

	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		return Leg{}, fmt.Errorf("%w: element status %s", ErrUnavailable, element.Status)
	}

	return Leg{
		DistanceMeters:  element.Distance.Meters,
		DurationSeconds: int(element.Duration.Seconds()),
	}, nil
}
