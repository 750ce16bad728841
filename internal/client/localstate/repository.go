// Package localstate persists the small pieces of non-secret device state
// the app needs before any network call: the anonymous device identifier,
// the guest/quick-start tier flags, and the cached birth profile.
package localstate

import "context"

// Repository is the raw key-value store underneath Settings. A missing key
// reads as (nil, nil).
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
