// Package services contains the client's application layer: the sync
// orchestrator and the single-record mutation paths for both collections.
// It is the only layer that performs local transactions and remote calls
// together.
package services

// ModeProvider is the offline mode switch the services consult before any
// remote call. It is fed externally (reachability probe, user choice); the
// services never probe the network themselves.
type ModeProvider interface {
	Offline() bool
}

// ModeFunc adapts a plain function to ModeProvider.
type ModeFunc func() bool

func (f ModeFunc) Offline() bool { return f() }

// AlwaysOnline is a ModeProvider for callers without connectivity concerns.
var AlwaysOnline = ModeFunc(func() bool { return false })

// AlwaysOffline forces local-only behavior.
var AlwaysOffline = ModeFunc(func() bool { return true })
