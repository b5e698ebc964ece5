package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regsweep/regsweep/internal/policy"
	"github.com/regsweep/regsweep/internal/registry"
	"github.com/regsweep/regsweep/pkg/duration"
)

var testTarget = policy.ImageTarget{Repository: "docker-local", Image: "myapp"}

func effective(daysOld, keepMinimum int) policy.EffectivePolicy {
	return policy.EffectivePolicy{
		Target: testTarget,
		Policy: policy.RetentionPolicy{DaysOld: daysOld, KeepMinimum: keepMinimum},
	}
}

// tagAged builds a tag last modified the given number of days before now.
func tagAged(name string, now time.Time, days int) registry.Tag {
	return registry.Tag{Name: name, LastModified: now.Add(-time.Duration(days) * duration.Day)}
}

func names(tags []registry.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Name)
	}
	return out
}

func TestEvaluate_EmptyInventory(t *testing.T) {
	res := Evaluate(effective(30, 3), nil, time.Now())
	assert.Empty(t, res.Kept)
	assert.Empty(t, res.Deleted)
}

func TestEvaluate_FloorThenAge(t *testing.T) {
	// Five tags aged 1, 2, 40, 50, 60 days; keep the 3 newest unconditionally,
	// then delete the remainder older than 30 days.
	now := time.Now()
	inventory := []registry.Tag{
		tagAged("v5", now, 1),
		tagAged("v4", now, 2),
		tagAged("v3", now, 40),
		tagAged("v2", now, 50),
		tagAged("v1", now, 60),
	}

	res := Evaluate(effective(30, 3), inventory, now)
	assert.Equal(t, []string{"v5", "v4", "v3"}, names(res.Kept))
	assert.Equal(t, []string{"v2", "v1"}, names(res.Deleted))
}

func TestEvaluate_NoFloorZeroDays(t *testing.T) {
	// keep_minimum=0, days_old=0: everything older than right now goes.
	now := time.Now()
	inventory := []registry.Tag{
		tagAged("a", now, 1),
		tagAged("b", now, 2),
		tagAged("c", now, 3),
		tagAged("d", now, 4),
	}

	res := Evaluate(effective(0, 0), inventory, now)
	assert.Empty(t, res.Kept)
	assert.Len(t, res.Deleted, 4)
}

func TestEvaluate_FloorLargerThanInventory(t *testing.T) {
	now := time.Now()
	inventory := []registry.Tag{
		tagAged("a", now, 100),
		tagAged("b", now, 200),
		tagAged("c", now, 300),
		tagAged("d", now, 400),
	}

	res := Evaluate(effective(30, 10), inventory, now)
	assert.Len(t, res.Kept, 4)
	assert.Empty(t, res.Deleted)
}

func TestEvaluate_YoungTagsBeyondFloorSurvive(t *testing.T) {
	now := time.Now()
	inventory := []registry.Tag{
		tagAged("v3", now, 1),
		tagAged("v2", now, 10),
		tagAged("v1", now, 40),
	}

	res := Evaluate(effective(30, 1), inventory, now)
	assert.Equal(t, []string{"v3", "v2"}, names(res.Kept))
	assert.Equal(t, []string{"v1"}, names(res.Deleted))
}

func TestEvaluate_MissingTimestampIsInfinitelyOld(t *testing.T) {
	now := time.Now()
	inventory := []registry.Tag{
		tagAged("fresh", now, 1),
		{Name: "no-timestamp"},
		tagAged("recent", now, 2),
	}

	res := Evaluate(effective(30, 2), inventory, now)
	assert.Equal(t, []string{"fresh", "recent"}, names(res.Kept))
	assert.Equal(t, []string{"no-timestamp"}, names(res.Deleted))
}

func TestEvaluate_MissingTimestampProtectedByFloor(t *testing.T) {
	res := Evaluate(effective(0, 5), []registry.Tag{{Name: "no-timestamp"}}, time.Now())
	assert.Equal(t, []string{"no-timestamp"}, names(res.Kept))
	assert.Empty(t, res.Deleted)
}

func TestEvaluate_TieBreakByNameAscending(t *testing.T) {
	now := time.Now()
	ts := now.Add(-50 * duration.Day)
	inventory := []registry.Tag{
		{Name: "beta", LastModified: ts},
		{Name: "alpha", LastModified: ts},
		{Name: "gamma", LastModified: ts},
	}

	res := Evaluate(effective(30, 2), inventory, now)
	assert.Equal(t, []string{"alpha", "beta"}, names(res.Kept))
	assert.Equal(t, []string{"gamma"}, names(res.Deleted))
}

func TestEvaluate_Deterministic(t *testing.T) {
	now := time.Now()
	ts := now.Add(-50 * duration.Day)
	a := []registry.Tag{
		{Name: "beta", LastModified: ts},
		{Name: "alpha", LastModified: ts},
		tagAged("old", now, 90),
	}
	b := []registry.Tag{a[2], a[0], a[1]} // same inventory, different input order

	first := Evaluate(effective(30, 1), a, now)
	second := Evaluate(effective(30, 1), b, now)
	assert.Equal(t, names(first.Kept), names(second.Kept))
	assert.Equal(t, names(first.Deleted), names(second.Deleted))
}

func TestEvaluate_PartitionInvariants(t *testing.T) {
	now := time.Now()
	inventory := []registry.Tag{
		tagAged("a", now, 5),
		tagAged("b", now, 45),
		tagAged("c", now, 100),
		{Name: "d"},
		tagAged("e", now, 0),
	}

	for _, keep := range []int{0, 1, 3, 10} {
		res := Evaluate(effective(30, keep), inventory, now)

		assert.GreaterOrEqual(t, len(res.Kept), min(keep, len(inventory)),
			"keep floor violated for keep_minimum=%d", keep)
		assert.Len(t, append(names(res.Kept), names(res.Deleted)...), len(inventory),
			"partition lost or duplicated tags for keep_minimum=%d", keep)

		seen := make(map[string]bool)
		for _, n := range append(names(res.Kept), names(res.Deleted)...) {
			assert.False(t, seen[n], "tag %s appears twice", n)
			seen[n] = true
		}
		for _, tag := range inventory {
			assert.True(t, seen[tag.Name], "tag %s missing from partition", tag.Name)
		}
	}
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	now := time.Now()
	inventory := []registry.Tag{
		tagAged("old", now, 90),
		tagAged("new", now, 1),
	}

	Evaluate(effective(30, 0), inventory, now)
	assert.Equal(t, "old", inventory[0].Name, "input inventory must keep its order")
}

func TestResult_ReclaimableBytes(t *testing.T) {
	now := time.Now()
	inventory := []registry.Tag{
		{Name: "a", LastModified: now.Add(-90 * duration.Day), Size: 100},
		{Name: "b", LastModified: now.Add(-80 * duration.Day), Size: 250},
		{Name: "c", LastModified: now, Size: 999},
	}

	res := Evaluate(effective(30, 1), inventory, now)
	require.Len(t, res.Deleted, 2)
	assert.Equal(t, int64(350), res.ReclaimableBytes())
}
