// Package common defines shared sentinel errors used across the visitlog
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store lifecycle errors.
	ErrNotReady = errors.New("store not ready")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Remote client errors. ErrTransport covers request construction,
	// connection and non-2xx failures; ErrParse covers malformed payloads.
	ErrTransport = errors.New("transport error")
	ErrParse     = errors.New("parse error")
)
