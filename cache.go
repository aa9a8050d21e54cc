package inkwell

import (
	"database/sql"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested story does not exist in the cache.
var ErrNotFound = sql.ErrNoRows

// StoryCache is an in-memory, per-user cache of story metadata with TTL,
// backed by the SQLite store.
type StoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	store   *Store
}

type cacheEntry struct {
	stories []StoryMeta
	fetched time.Time
}

// NewStoryCache creates a StoryCache backed by the given Store.
func NewStoryCache(s *Store, ttl time.Duration) *StoryCache {
	return &StoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		store:   s,
	}
}

// Invalidate clears a user's in-memory entry so the next read reloads from
// the store.
func (c *StoryCache) Invalidate(username string) {
	c.mu.Lock()
	delete(c.entries, username)
	c.mu.Unlock()
}

// InvalidateAll drops every in-memory entry.
func (c *StoryCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Stories returns a user's cached stories. It tries a read lock first; only
// takes a write lock when a reload from the store is needed.
func (c *StoryCache) Stories(username string) ([]StoryMeta, error) {
	c.mu.RLock()
	if e, ok := c.entries[username]; ok && time.Since(e.fetched) < c.ttl {
		stories := e.stories
		c.mu.RUnlock()
		return stories, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[username]; ok && time.Since(e.fetched) < c.ttl {
		return e.stories, nil
	}
	stories, err := c.store.ListStories(username)
	if err != nil {
		return nil, err
	}
	c.entries[username] = cacheEntry{stories: stories, fetched: time.Now()}
	return stories, nil
}

// GetStory returns a single story by user and id from the cache.
func (c *StoryCache) GetStory(username, id string) (StoryMeta, error) {
	stories, err := c.Stories(username)
	if err != nil {
		return StoryMeta{}, err
	}
	for _, s := range stories {
		if s.ID == id {
			return s, nil
		}
	}
	return StoryMeta{}, ErrNotFound
}
