package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/regsweep/regsweep/pkg/logger"
)

// Artifactory is a Client backed by the JFrog Artifactory REST API.
type Artifactory struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

// NewArtifactory creates a client for the registry at baseURL using basic auth.
func NewArtifactory(baseURL, username, password string) *Artifactory {
	return &Artifactory{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type catalogResponse struct {
	Repositories []string `json:"repositories"`
}

type storageFile struct {
	URI          string `json:"uri"`
	LastModified string `json:"lastModified"`
	Size         int64  `json:"size"`
}

type storageResponse struct {
	Files []storageFile `json:"files"`
}

// ListImages returns all image names in the repository via the docker catalog endpoint.
func (a *Artifactory) ListImages(ctx context.Context, repository string) ([]string, error) {
	url := fmt.Sprintf("%s/api/docker/%s/v2/_catalog", a.baseURL, repository)

	var catalog catalogResponse
	if err := a.getJSON(ctx, url, &catalog); err != nil {
		return nil, fmt.Errorf("failed to list images in %s: %w", repository, err)
	}

	return catalog.Repositories, nil
}

// ListTags returns the tag inventory of an image with last-modified timestamps
// and on-disk sizes, derived from the deep storage listing. A tag is every
// directory containing a manifest.json; its size is the sum of all files under
// that directory.
func (a *Artifactory) ListTags(ctx context.Context, repository, image string) ([]Tag, error) {
	url := fmt.Sprintf("%s/api/storage/%s/%s?list&deep=1", a.baseURL, repository, image)

	var listing storageResponse
	if err := a.getJSON(ctx, url, &listing); err != nil {
		return nil, fmt.Errorf("failed to list tags for %s/%s: %w", repository, image, err)
	}

	byName := make(map[string]*Tag)
	sizes := make(map[string]int64)
	for _, file := range listing.Files {
		name, rest, ok := strings.Cut(strings.Trim(file.URI, "/"), "/")
		if !ok {
			continue
		}
		sizes[name] += file.Size
		if rest != "manifest.json" && !strings.HasSuffix(rest, "/manifest.json") {
			continue
		}
		byName[name] = &Tag{
			Name:         name,
			LastModified: parseTimestamp(file.LastModified, repository, image, name),
		}
	}

	tags := make([]Tag, 0, len(byName))
	for name, tag := range byName {
		tag.Size = sizes[name]
		tags = append(tags, *tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	return tags, nil
}

// DeleteTag removes one tag path from the repository.
func (a *Artifactory) DeleteTag(ctx context.Context, repository, image, tag string) error {
	url := fmt.Sprintf("%s/%s/%s/%s", a.baseURL, repository, image, tag)

	req, err := a.newRequest(ctx, http.MethodDelete, url)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s:%s: %w", repository, image, tag, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to delete %s/%s:%s: registry returned %s", repository, image, tag, resp.Status)
	}

	return nil
}

func (a *Artifactory) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(a.username, a.password)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (a *Artifactory) getJSON(ctx context.Context, url string, out any) error {
	req, err := a.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("registry returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// parseTimestamp parses an Artifactory lastModified value. A missing or
// malformed timestamp yields the zero time, which downstream treats as
// infinitely old.
func parseTimestamp(s, repository, image, tag string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		logger.Warn("Unparseable tag timestamp, treating as infinitely old",
			"repository", repository, "image", image, "tag", tag, "lastModified", s)
		return time.Time{}
	}
	return ts
}
