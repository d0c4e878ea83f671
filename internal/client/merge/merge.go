// Package merge reconciles two divergent change sets against a known-common
// baseline epoch using last-writer-wins on the updatedAt stamp.
//
// Merge is pure: same inputs always produce the same outputs, nothing is
// mutated, and no error paths exist for well-formed inputs.
package merge

import (
	"github.com/mazensapp/visitlog/internal/client/models"
)

// Result partitions the reconciled updates by destination. Upstream* sets
// must be pushed to the server, Local* sets must be applied to the local
// store. Delete sets carry identifiers only; the payload died with the
// tombstone.
type Result[K comparable, U models.Update[K]] struct {
	NewEpoch        int64
	UpstreamUpserts []U
	UpstreamDeletes []K
	LocalUpserts    []U
	LocalDeletes    []K
}

// Merge resolves local against upstream changes observed since epoch.
//
// For every upstream update the local change with the same identifier (if
// any) is compared by stamp: the upstream side needs a strictly greater
// stamp to displace the local one, so a tie keeps the local entry and pushes
// it back. The winner's stamp advances NewEpoch. Local changes the server
// never mentioned are already the newest for their identifier; they are
// classified into the upstream-bound sets untouched and do not advance the
// epoch (only confirmed server-relative state may).
func Merge[K comparable, U models.Update[K]](epoch int64, localUpdates, upstreamUpdates []U) Result[K, U] {
	pending := make(map[K]U, len(localUpdates))
	for _, lu := range localUpdates {
		pending[lu.Key()] = lu
	}

	res := Result[K, U]{NewEpoch: epoch}

	for _, uu := range upstreamUpdates {
		lu, contested := pending[uu.Key()]

		if !contested || uu.Stamp() > lu.Stamp() {
			// upstream wins, apply locally
			if uu.Tombstone() {
				res.LocalDeletes = append(res.LocalDeletes, uu.Key())
			} else {
				res.LocalUpserts = append(res.LocalUpserts, uu)
			}
			if uu.Stamp() > res.NewEpoch {
				res.NewEpoch = uu.Stamp()
			}
		} else {
			// local wins, push to the server
			if lu.Tombstone() {
				res.UpstreamDeletes = append(res.UpstreamDeletes, lu.Key())
			} else {
				res.UpstreamUpserts = append(res.UpstreamUpserts, lu)
			}
			if lu.Stamp() > res.NewEpoch {
				res.NewEpoch = lu.Stamp()
			}
		}

		delete(pending, uu.Key())
	}

	// Iterate the input slice, not the map, so output order is deterministic.
	for _, lu := range localUpdates {
		if _, ok := pending[lu.Key()]; !ok {
			continue
		}
		delete(pending, lu.Key())
		if lu.Tombstone() {
			res.UpstreamDeletes = append(res.UpstreamDeletes, lu.Key())
		} else {
			res.UpstreamUpserts = append(res.UpstreamUpserts, lu)
		}
	}

	return res
}
