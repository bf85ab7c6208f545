package leveling

import (
	"sort"
	"time"
)

// rankable is the minimal view leveling needs of one task to order it for
// the standard serial heuristic (spec.md §4.7, step 1).
type rankable struct {
	ID         string
	IsCritical bool
	TotalSlack int
	ES         time.Time
}

// canonicalOrder sorts tasks by (is_critical desc, total_slack asc, es asc,
// id asc) — tie-broken by id for determinism, the same multi-key pattern
// used elsewhere in this codebase for deterministic ranking.
func canonicalOrder(tasks []rankable) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]

		if a.IsCritical != b.IsCritical {
			return a.IsCritical // true (critical) sorts first
		}
		if a.TotalSlack != b.TotalSlack {
			return a.TotalSlack < b.TotalSlack
		}
		if !a.ES.Equal(b.ES) {
			return a.ES.Before(b.ES)
		}
		return a.ID < b.ID
	})
}
