// Package registry talks to an Artifactory-compatible container registry.
package registry

import (
	"context"
	"time"
)

// Tag is one named version of an image, as reported by the registry.
type Tag struct {
	Name         string
	LastModified time.Time // zero when the registry reported no timestamp
	Size         int64     // total bytes of the tag's files, 0 when unknown
}

// Client is the registry surface the cleanup run depends on.
type Client interface {
	// ListImages returns the image names present in a repository.
	ListImages(ctx context.Context, repository string) ([]string, error)
	// ListTags returns the tag inventory of one image.
	ListTags(ctx context.Context, repository, image string) ([]Tag, error)
	// DeleteTag removes a single tag from an image.
	DeleteTag(ctx context.Context, repository, image, tag string) error
}
