package inkwell

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "inkwell.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReplaceAndListStories(t *testing.T) {
	s := setupTestStore(t)

	stories := []StoryMeta{
		{ID: "s1", Username: "ada", Title: "First", Slug: "first", CreatedAt: "2024-01-01"},
		{ID: "s2", Username: "ada", Title: "Second", Slug: "second", CreatedAt: "2024-02-01"},
	}
	if err := s.ReplaceStories("ada", stories); err != nil {
		t.Fatalf("ReplaceStories failed: %v", err)
	}

	got, err := s.ListStories("ada")
	if err != nil {
		t.Fatalf("ListStories failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d stories, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != "s2" || got[1].ID != "s1" {
		t.Errorf("order = [%s %s], want [s2 s1]", got[0].ID, got[1].ID)
	}
	if got[0].Link != "/ada/s2" {
		t.Errorf("Link = %q, want /ada/s2", got[0].Link)
	}
	if got[0].Username != "ada" {
		t.Errorf("Username = %q, want ada", got[0].Username)
	}
}

func TestReplaceStoriesSwapsListing(t *testing.T) {
	s := setupTestStore(t)

	if err := s.ReplaceStories("ada", []StoryMeta{{ID: "s1", Title: "First", CreatedAt: "2024-01-01"}}); err != nil {
		t.Fatalf("ReplaceStories failed: %v", err)
	}
	// An unpublished story disappears from the index; the cache follows.
	if err := s.ReplaceStories("ada", []StoryMeta{{ID: "s2", Title: "Second", CreatedAt: "2024-02-01"}}); err != nil {
		t.Fatalf("ReplaceStories failed: %v", err)
	}

	got, err := s.ListStories("ada")
	if err != nil {
		t.Fatalf("ListStories failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s2" {
		t.Fatalf("stories = %+v, want just s2", got)
	}
}

func TestReplaceStoriesIdempotent(t *testing.T) {
	s := setupTestStore(t)

	stories := []StoryMeta{{ID: "s1", Title: "First", CreatedAt: "2024-01-01"}}
	for i := 0; i < 2; i++ {
		if err := s.ReplaceStories("ada", stories); err != nil {
			t.Fatalf("ReplaceStories run %d failed: %v", i, err)
		}
	}
	got, err := s.ListStories("ada")
	if err != nil {
		t.Fatalf("ListStories failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d stories after repeat refresh, want 1", len(got))
	}
}

func TestListUsers(t *testing.T) {
	s := setupTestStore(t)

	s.ReplaceStories("ada", []StoryMeta{{ID: "s1", CreatedAt: "2024-01-01"}, {ID: "s2", CreatedAt: "2024-01-02"}})
	s.ReplaceStories("bob", []StoryMeta{{ID: "s3", CreatedAt: "2024-01-03"}})

	users, err := s.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].Username != "ada" || users[0].StoryCount != 2 {
		t.Errorf("users[0] = %+v", users[0])
	}
	if users[1].Username != "bob" || users[1].StoryCount != 1 {
		t.Errorf("users[1] = %+v", users[1])
	}
	if users[0].FetchedAt == "" {
		t.Error("FetchedAt not recorded")
	}
}

func TestDeleteUser(t *testing.T) {
	s := setupTestStore(t)

	s.ReplaceStories("ada", []StoryMeta{{ID: "s1", CreatedAt: "2024-01-01"}})
	s.SaveAvatar(Avatar{Username: "ada", Filename: "ada.jpg", Width: 100, Height: 100, Size: 1234, FetchedAt: "2024-01-01T00:00:00Z"})

	if err := s.DeleteUser("ada"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	stories, err := s.ListStories("ada")
	if err != nil {
		t.Fatalf("ListStories failed: %v", err)
	}
	if len(stories) != 0 {
		t.Errorf("stories remain after eviction: %+v", stories)
	}
	if _, err := s.GetAvatar("ada"); err != sql.ErrNoRows {
		t.Errorf("GetAvatar error = %v, want sql.ErrNoRows", err)
	}
}

func TestSaveAndGetAvatar(t *testing.T) {
	s := setupTestStore(t)

	av := Avatar{Username: "ada", Filename: "ada.jpg", Width: 256, Height: 256, Size: 9000, FetchedAt: "2024-01-01T00:00:00Z"}
	if err := s.SaveAvatar(av); err != nil {
		t.Fatalf("SaveAvatar failed: %v", err)
	}
	got, err := s.GetAvatar("ada")
	if err != nil {
		t.Fatalf("GetAvatar failed: %v", err)
	}
	if got != av {
		t.Errorf("avatar = %+v, want %+v", got, av)
	}
}
