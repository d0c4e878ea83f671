// Package netx contains small networking helpers shared by the client.
package netx

import (
	"context"
	"net/http"
	"time"
)

// DefaultProbeTimeout bounds a single reachability probe.
const DefaultProbeTimeout = 3 * time.Second

// Probe reports whether url answers an HTTP request within timeout.
// Any 2xx-5xx response counts as reachable; only connection-level failures
// count as offline. A zero timeout falls back to DefaultProbeTimeout.
func Probe(ctx context.Context, url string, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return true
}
