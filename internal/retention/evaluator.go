// Package retention decides which tags survive a cleanup pass.
package retention

import (
	"slices"
	"strings"
	"time"

	"github.com/regsweep/regsweep/internal/policy"
	"github.com/regsweep/regsweep/internal/registry"
	"github.com/regsweep/regsweep/pkg/duration"
)

// Result is the keep/delete partition of one image's tag inventory.
// Both slices are ordered most recent first; together they cover the full
// inventory with no overlap.
type Result struct {
	Target  policy.ImageTarget
	Policy  policy.RetentionPolicy
	Kept    []registry.Tag
	Deleted []registry.Tag
}

// ReclaimableBytes sums the sizes of the tags marked for deletion.
func (r Result) ReclaimableBytes() int64 {
	var total int64
	for _, t := range r.Deleted {
		total += t.Size
	}
	return total
}

// Evaluate partitions an inventory into kept and deleted tags.
//
// Tags are ordered by last-modified descending; identical timestamps fall back
// to name ascending so the partition is reproducible across runs. The first
// KeepMinimum tags are kept unconditionally. Beyond that floor, a tag is
// deleted when it was last modified before now minus DaysOld days; a tag with
// no timestamp counts as infinitely old.
func Evaluate(eff policy.EffectivePolicy, inventory []registry.Tag, now time.Time) Result {
	result := Result{Target: eff.Target, Policy: eff.Policy}
	if len(inventory) == 0 {
		return result
	}

	sorted := slices.Clone(inventory)
	slices.SortFunc(sorted, func(a, b registry.Tag) int {
		if c := b.LastModified.Compare(a.LastModified); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	floor := min(eff.Policy.KeepMinimum, len(sorted))
	result.Kept = append(result.Kept, sorted[:floor]...)

	cutoff := now.Add(-time.Duration(eff.Policy.DaysOld) * duration.Day)
	for _, tag := range sorted[floor:] {
		if tag.LastModified.Before(cutoff) {
			result.Deleted = append(result.Deleted, tag)
		} else {
			result.Kept = append(result.Kept, tag)
		}
	}

	return result
}
