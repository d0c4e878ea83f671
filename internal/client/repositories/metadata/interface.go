package metadata

import (
	"context"
)

// Repository is the small key-value area of the client database used for
// durable scalars that live outside the collections' transactional scope,
// chiefly the sync epoch watermark.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error

	// Epoch returns the persisted watermark, 0 when never synchronized.
	Epoch(ctx context.Context) (int64, error)

	// SetEpoch persists the watermark. The value must never decrease;
	// callers are expected to write only confirmed, committed state.
	SetEpoch(ctx context.Context, epoch int64) error
}
