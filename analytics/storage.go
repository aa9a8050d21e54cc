package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Errors returned by profile and bucket resolution.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrBucketNotFound  = errors.New("storage bucket not found")
)

// Profile describes a user as published in the profile directory.
type Profile struct {
	Username    string `json:"username"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatarUrl"`
	BucketURL   string `json:"bucketUrl"`
}

// StoryRef is one entry of a user's public-story index.
type StoryRef struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
}

// ProfileResolver resolves a username to its profile and storage location.
type ProfileResolver interface {
	Resolve(ctx context.Context, username string) (Profile, error)
}

// StoryLister fetches the list of published stories from a storage bucket.
type StoryLister interface {
	ListPublic(ctx context.Context, bucketURL string) ([]StoryRef, error)
}

// DirectoryClient resolves profiles against an HTTP profile directory.
type DirectoryClient struct {
	baseURL string
	http    *http.Client
}

// NewDirectoryClient creates a resolver for the directory at baseURL.
func NewDirectoryClient(baseURL string, httpClient *http.Client) *DirectoryClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &DirectoryClient{baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}
}

// Resolve looks up username in the directory. A directory miss or a profile
// without a storage bucket yield typed errors so callers can distinguish them.
func (d *DirectoryClient) Resolve(ctx context.Context, username string) (Profile, error) {
	endpoint := d.baseURL + "/v1/users/" + url.PathEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("build profile request: %w", err)
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("resolve profile %s: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Profile{}, ErrProfileNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("resolve profile %s: directory returned %d", username, resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile %s: %w", username, err)
	}
	if p.Username == "" {
		p.Username = username
	}
	if p.BucketURL == "" {
		return Profile{}, ErrBucketNotFound
	}
	return p, nil
}

// publicStoriesFile is the well-known index file inside every user bucket.
const publicStoriesFile = "publicStories.json"

// BucketClient fetches public-story indexes from user storage buckets.
type BucketClient struct {
	http *http.Client
}

// NewBucketClient creates a story lister. If httpClient is nil a client with
// a 10s timeout is used.
func NewBucketClient(httpClient *http.Client) *BucketClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &BucketClient{http: httpClient}
}

// ListPublic downloads and decodes the bucket's public-story index. A bucket
// without an index file is treated as having no published stories.
func (b *BucketClient) ListPublic(ctx context.Context, bucketURL string) ([]StoryRef, error) {
	endpoint := strings.TrimSuffix(bucketURL, "/") + "/" + publicStoriesFile
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build story index request: %w", err)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch story index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch story index: bucket returned %d", resp.StatusCode)
	}

	var index struct {
		Stories []StoryRef `json:"stories"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, fmt.Errorf("decode story index: %w", err)
	}
	return index.Stories, nil
}
