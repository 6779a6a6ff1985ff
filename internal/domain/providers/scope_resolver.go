package providers

import "context"

// ScopeResolver maps a facility to the permission scope a caller must hold
// to act on it.
type ScopeResolver interface {
	Resolve(ctx context.Context, facilityID string) (string, error)
}
