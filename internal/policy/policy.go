// Package policy resolves retention policies for image targets.
package policy

import (
	"fmt"
	"strings"
)

// RetentionPolicy is a fully resolved rule pair: delete tags older than DaysOld
// days, but always keep the KeepMinimum most recent tags.
type RetentionPolicy struct {
	DaysOld     int
	KeepMinimum int
}

// Override is a partial per-image policy. Nil fields fall back to the default.
type Override struct {
	Image       string
	DaysOld     *int
	KeepMinimum *int
}

// ImageTarget identifies one image inventory inside a repository.
type ImageTarget struct {
	Repository string
	Image      string
}

func (t ImageTarget) String() string {
	return t.Repository + "/" + t.Image
}

// ParseTarget splits a "repository/image" specifier into an ImageTarget.
func ParseTarget(spec string) (ImageTarget, error) {
	repo, image, ok := strings.Cut(spec, "/")
	if !ok || repo == "" || image == "" {
		return ImageTarget{}, fmt.Errorf("invalid image spec %q: expected repository/image-name", spec)
	}
	return ImageTarget{Repository: repo, Image: image}, nil
}

// EffectivePolicy is the resolved policy for one target.
type EffectivePolicy struct {
	Target ImageTarget
	Policy RetentionPolicy
}

// Resolver merges a default policy with per-image overrides.
//
// Overrides are keyed by image name only; an override for "myapp" applies to
// myapp in every repository it appears in.
type Resolver struct {
	defaults  RetentionPolicy
	overrides map[string]Override
}

// NewResolver validates the default policy and indexes the overrides.
func NewResolver(defaults RetentionPolicy, overrides []Override) (*Resolver, error) {
	if defaults.DaysOld < 0 {
		return nil, fmt.Errorf("default days_old must be non-negative, got %d", defaults.DaysOld)
	}
	if defaults.KeepMinimum < 0 {
		return nil, fmt.Errorf("default keep_minimum must be non-negative, got %d", defaults.KeepMinimum)
	}

	byImage := make(map[string]Override, len(overrides))
	for _, o := range overrides {
		if o.DaysOld != nil && *o.DaysOld < 0 {
			return nil, fmt.Errorf("override for %q: days_old must be non-negative, got %d", o.Image, *o.DaysOld)
		}
		if o.KeepMinimum != nil && *o.KeepMinimum < 0 {
			return nil, fmt.Errorf("override for %q: keep_minimum must be non-negative, got %d", o.Image, *o.KeepMinimum)
		}
		byImage[o.Image] = o
	}

	return &Resolver{defaults: defaults, overrides: byImage}, nil
}

// Resolve returns the effective policy for a target. Each override field is
// applied independently; an absent override means the default applies.
func (r *Resolver) Resolve(target ImageTarget) EffectivePolicy {
	resolved := r.defaults
	if o, ok := r.overrides[target.Image]; ok {
		if o.DaysOld != nil {
			resolved.DaysOld = *o.DaysOld
		}
		if o.KeepMinimum != nil {
			resolved.KeepMinimum = *o.KeepMinimum
		}
	}
	return EffectivePolicy{Target: target, Policy: resolved}
}
