// Package reconcile merges fetched market snapshots into the state store.
package reconcile

import (
	"sort"
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
)

// Snapshot is the result of one fetch cycle keyed by token id.
type Snapshot map[domain.TokenID]domain.MarketFields

// Target is the part of the store the reconciler writes to.
type Target interface {
	IDs() []domain.TokenID
	ApplyMarket(id domain.TokenID, fields domain.MarketFields, at time.Time) bool
}

// Result describes what one reconciliation did.
type Result struct {
	Updated []domain.TokenID
	// Missing lists tracked tokens absent from the snapshot. They keep their
	// previous market fields.
	Missing []domain.TokenID
	// Ignored lists snapshot entries that are not tracked.
	Ignored []domain.TokenID
	At      time.Time
}

// Reconcile replaces the market fields of every tracked token present in
// snap. Holdings and membership flags are never touched, and tokens missing
// from snap keep their stale quote.
func Reconcile(target Target, snap Snapshot, at time.Time) Result {
	res := Result{At: at}
	tracked := make(map[domain.TokenID]struct{})

	for _, id := range target.IDs() {
		tracked[id] = struct{}{}
		fields, ok := snap[id]
		if !ok {
			res.Missing = append(res.Missing, id)
			continue
		}
		// The token may have been removed since IDs was read.
		if target.ApplyMarket(id, fields, at) {
			res.Updated = append(res.Updated, id)
		}
	}

	for id := range snap {
		if _, ok := tracked[id]; !ok {
			res.Ignored = append(res.Ignored, id)
		}
	}
	sort.Slice(res.Ignored, func(i, j int) bool { return res.Ignored[i] < res.Ignored[j] })
	return res
}

// Partial reports whether some tracked tokens were not in the snapshot.
func (r Result) Partial() bool { return len(r.Missing) > 0 }
