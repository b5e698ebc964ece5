// Package summary accumulates per-target cleanup results into a run report.
package summary

import (
	"sync"

	"github.com/regsweep/regsweep/internal/policy"
)

// Counts are the accumulated totals for one bucket (image, repository or run).
type Counts struct {
	Considered     int // tags examined beyond no-op skips
	Kept           int
	Deleted        int // confirmed deletions, or would-be deletions in dry-run
	FailedDeletes  int // delete requests the registry rejected
	Errors         int // targets that could not be fetched or expanded
	ReclaimedBytes int64
}

func (c *Counts) add(o Counts) {
	c.Considered += o.Considered
	c.Kept += o.Kept
	c.Deleted += o.Deleted
	c.FailedDeletes += o.FailedDeletes
	c.Errors += o.Errors
	c.ReclaimedBytes += o.ReclaimedBytes
}

// Outcome is the result of processing one target.
type Outcome struct {
	Kept           int
	Deleted        int
	FailedDeletes  int
	ReclaimedBytes int64
}

// ImageReport is the per-target slice of the final report.
type ImageReport struct {
	Target policy.ImageTarget
	Counts Counts
}

// RepositoryReport groups image counts under one repository.
type RepositoryReport struct {
	Repository string
	Counts     Counts
}

// Report is the immutable snapshot of a finished run.
type Report struct {
	DryRun       bool
	Images       []ImageReport
	Repositories []RepositoryReport
	Total        Counts
}

// Failed reports whether anything went wrong during the run.
func (r Report) Failed() bool {
	return r.Total.Errors > 0 || r.Total.FailedDeletes > 0
}

// RunSummary accumulates outcomes during a run. Record and RecordError are
// safe for concurrent use; accumulation is commutative so recording order does
// not change the final counts.
type RunSummary struct {
	mu        sync.Mutex
	dryRun    bool
	images    []ImageReport
	repoOrder []string
	repos     map[string]*Counts
	total     Counts
}

// New creates an empty summary for a run in the given mode.
func New(dryRun bool) *RunSummary {
	return &RunSummary{dryRun: dryRun, repos: make(map[string]*Counts)}
}

// Record adds one target's outcome to its image, repository and global buckets.
func (s *RunSummary) Record(target policy.ImageTarget, o Outcome) {
	s.record(target, Counts{
		Considered:     o.Kept + o.Deleted + o.FailedDeletes,
		Kept:           o.Kept,
		Deleted:        o.Deleted,
		FailedDeletes:  o.FailedDeletes,
		ReclaimedBytes: o.ReclaimedBytes,
	})
}

// RecordError counts a target that could not be processed at all.
func (s *RunSummary) RecordError(target policy.ImageTarget) {
	s.record(target, Counts{Errors: 1})
}

func (s *RunSummary) record(target policy.ImageTarget, c Counts) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.images = append(s.images, ImageReport{Target: target, Counts: c})

	bucket, ok := s.repos[target.Repository]
	if !ok {
		bucket = &Counts{}
		s.repos[target.Repository] = bucket
		s.repoOrder = append(s.repoOrder, target.Repository)
	}
	bucket.add(c)
	s.total.add(c)
}

// Snapshot produces the final report. The summary may keep accumulating
// afterwards; the snapshot is detached.
func (s *RunSummary) Snapshot() Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := Report{
		DryRun: s.dryRun,
		Images: make([]ImageReport, len(s.images)),
		Total:  s.total,
	}
	copy(report.Images, s.images)

	for _, repo := range s.repoOrder {
		report.Repositories = append(report.Repositories, RepositoryReport{
			Repository: repo,
			Counts:     *s.repos[repo],
		})
	}

	return report
}
