// Package cleanup drives a full retention run across all configured targets.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/regsweep/regsweep/internal/policy"
	"github.com/regsweep/regsweep/internal/registry"
	"github.com/regsweep/regsweep/internal/retention"
	"github.com/regsweep/regsweep/internal/summary"
	"github.com/regsweep/regsweep/pkg/duration"
	"github.com/regsweep/regsweep/pkg/logger"
)

// Options configure a Runner.
type Options struct {
	// Images are explicit "repository/image" specifiers, processed first in
	// declaration order.
	Images []string
	// Repositories are expanded through image discovery, in declaration order.
	Repositories []string
	DryRun       bool
	// Now overrides the evaluation clock; nil means time.Now.
	Now func() time.Time
}

// Runner walks every configured target: fetch inventory, evaluate retention,
// delete (unless dry-run) and record the outcome. Targets are processed one at
// a time; a failing target never aborts the run.
type Runner struct {
	client   registry.Client
	resolver *policy.Resolver
	opts     Options
}

// NewRunner creates a runner over the given registry client and resolver.
func NewRunner(client registry.Client, resolver *policy.Resolver, opts Options) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{client: client, resolver: resolver, opts: opts}
}

// Run executes the cleanup and returns the final report. Deletion is skipped
// in dry-run mode but the partition is computed and recorded identically.
func (r *Runner) Run(ctx context.Context) summary.Report {
	sum := summary.New(r.opts.DryRun)
	now := r.opts.Now()

	targets := r.expandTargets(ctx, func(repo string, err error) {
		logger.Error("Failed to list images", "repository", repo, "error", err)
		sum.RecordError(policy.ImageTarget{Repository: repo})
	})

	for _, target := range targets {
		r.processTarget(ctx, target, now, sum)
	}

	return sum.Snapshot()
}

// EffectivePolicies resolves the policy for every target, for review before a
// run. Discovery failures are joined into the returned error; targets from
// reachable repositories are still returned.
func (r *Runner) EffectivePolicies(ctx context.Context) ([]policy.EffectivePolicy, error) {
	var errs []error
	targets := r.expandTargets(ctx, func(repo string, err error) {
		errs = append(errs, fmt.Errorf("repository %s: %w", repo, err))
	})

	policies := make([]policy.EffectivePolicy, 0, len(targets))
	for _, target := range targets {
		policies = append(policies, r.resolver.Resolve(target))
	}
	return policies, errors.Join(errs...)
}

// expandTargets flattens the configured specifiers into a deduplicated,
// ordered target list. onRepoError is called for each repository whose image
// discovery failed; expansion continues with the rest.
func (r *Runner) expandTargets(ctx context.Context, onRepoError func(repo string, err error)) []policy.ImageTarget {
	var targets []policy.ImageTarget
	seen := make(map[policy.ImageTarget]bool)
	add := func(t policy.ImageTarget) {
		if !seen[t] {
			seen[t] = true
			targets = append(targets, t)
		}
	}

	for _, spec := range r.opts.Images {
		target, err := policy.ParseTarget(spec)
		if err != nil {
			// Config validation rejects malformed specs before a run starts
			logger.Warn("Skipping malformed image spec", "spec", spec, "error", err)
			continue
		}
		add(target)
	}

	for _, repo := range r.opts.Repositories {
		images, err := r.client.ListImages(ctx, repo)
		if err != nil {
			onRepoError(repo, err)
			continue
		}
		for _, image := range images {
			add(policy.ImageTarget{Repository: repo, Image: image})
		}
	}

	return targets
}

func (r *Runner) processTarget(ctx context.Context, target policy.ImageTarget, now time.Time, sum *summary.RunSummary) {
	eff := r.resolver.Resolve(target)
	logger.Info("Processing image", "target", target.String(),
		"days_old", eff.Policy.DaysOld, "keep_minimum", eff.Policy.KeepMinimum)

	tags, err := r.client.ListTags(ctx, target.Repository, target.Image)
	if err != nil {
		logger.Error("Failed to list tags", "target", target.String(), "error", err)
		sum.RecordError(target)
		return
	}
	if len(tags) == 0 {
		logger.Info("No tags found", "target", target.String())
		sum.Record(target, summary.Outcome{})
		return
	}

	result := retention.Evaluate(eff, tags, now)
	logger.Debug("Evaluated inventory", "target", target.String(),
		"total", len(tags), "kept", len(result.Kept), "delete_candidates", len(result.Deleted))

	outcome := summary.Outcome{Kept: len(result.Kept)}
	for _, tag := range result.Deleted {
		age := duration.Format(now.Sub(tag.LastModified))
		if tag.LastModified.IsZero() {
			age = "unknown"
		}

		if r.opts.DryRun {
			logger.Info("Would delete tag", "target", target.String(), "tag", tag.Name, "age", age)
			outcome.Deleted++
			outcome.ReclaimedBytes += tag.Size
			continue
		}

		if err := r.client.DeleteTag(ctx, target.Repository, target.Image, tag.Name); err != nil {
			logger.Error("Failed to delete tag", "target", target.String(), "tag", tag.Name, "error", err)
			outcome.FailedDeletes++
			continue
		}
		logger.Info("Deleted tag", "target", target.String(), "tag", tag.Name, "age", age)
		outcome.Deleted++
		outcome.ReclaimedBytes += tag.Size
	}

	sum.Record(target, outcome)
}
