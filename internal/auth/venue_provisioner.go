package auth

import "context"

// VenueProvisioner creates the venue document for a newly registered owner.
// It keeps auth free of a dependency on the venues package.
type VenueProvisioner interface {
	ProvisionVenue(ctx context.Context, venueKey, venueName string) error
}

// ProvisionerFunc adapts a function to VenueProvisioner
type ProvisionerFunc func(ctx context.Context, venueKey, venueName string) error

func (f ProvisionerFunc) ProvisionVenue(ctx context.Context, venueKey, venueName string) error {
	return f(ctx, venueKey, venueName)
}
