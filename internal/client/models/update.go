// Package models defines the record types synchronized by the visitlog
// client and the contract they share with the merge engine.
package models

import "time"

// Update is the unit exchanged between the local store, the merge engine and
// the remote client: either a full record or a tombstone. A tombstone and a
// live record are mutually exclusive states for one identifier; which one is
// current is decided purely by comparing stamps.
type Update[K comparable] interface {
	// Key returns the record identifier.
	Key() K

	// Stamp returns updatedAt in milliseconds since the Unix epoch. It is
	// the sole source of truth for ordering and conflict resolution.
	Stamp() int64

	// Tombstone reports whether this update marks a deletion.
	Tombstone() bool
}

// NowMillis returns the current wall-clock time in milliseconds, the stamp
// applied to offline mutations.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
