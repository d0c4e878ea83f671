package services

import (
	"context"

	"github.com/mazensapp/visitlog/internal/client/client"
)

// advanceEpoch moves the persisted watermark forward to timestamp, never
// backward. Single-record online mutations call it with the server's
// authoritative stamp; offline mutations never call it at all.
func advanceEpoch(ctx context.Context, repos *client.Repositories, timestamp int64) error {
	current, err := repos.Metadata.Epoch(ctx)
	if err != nil {
		return err
	}
	if timestamp <= current {
		return nil
	}
	return repos.Metadata.SetEpoch(ctx, timestamp)
}
