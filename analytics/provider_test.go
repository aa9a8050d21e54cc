package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientParsesStringNumerics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		q := r.URL.Query()
		if q.Get("date_grouping") != "day" || q.Get("date_from") != "2024-01-01" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"date":"2024-01-01","visits":"3","pageviews":"5"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "site-1", "secret", srv.Client())
	stats, err := client.Aggregate(context.Background(), "/ada/s1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), GroupingDay)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d rows, want 1", len(stats))
	}
	if stats[0].Visits != 3 || stats[0].Pageviews != 5 {
		t.Errorf("parsed (%d, %d), want (3, 5)", stats[0].Visits, stats[0].Pageviews)
	}
}

func TestClientRejectsUnparsableNumerics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"date":"2024-01-01","visits":"lots","pageviews":"5"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "site-1", "secret", srv.Client())
	_, err := client.Aggregate(context.Background(), "/ada", time.Now(), GroupingDay)
	if err == nil {
		t.Fatal("expected a parse error, not a silent zero")
	}
}

func TestClientRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "site-1", "secret", srv.Client())
	if _, err := client.Aggregate(context.Background(), "/ada", time.Now(), GroupingDay); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestDirectoryClientResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/users/ada":
			w.Write([]byte(`{"username":"ada","name":"Ada","bucketUrl":"https://bucket.example/ada"}`))
		case "/v1/users/nobucket":
			w.Write([]byte(`{"username":"nobucket"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := NewDirectoryClient(srv.URL, srv.Client())

	p, err := dir.Resolve(context.Background(), "ada")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p.BucketURL != "https://bucket.example/ada" {
		t.Errorf("BucketURL = %q", p.BucketURL)
	}

	if _, err := dir.Resolve(context.Background(), "ghost"); err != ErrProfileNotFound {
		t.Errorf("unknown user error = %v, want ErrProfileNotFound", err)
	}
	if _, err := dir.Resolve(context.Background(), "nobucket"); err != ErrBucketNotFound {
		t.Errorf("bucketless user error = %v, want ErrBucketNotFound", err)
	}
}

func TestBucketClientListPublic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ada/publicStories.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"stories":[{"id":"s1","title":"First","createdAt":"2024-01-01"}]}`))
	}))
	defer srv.Close()

	bucket := NewBucketClient(srv.Client())

	refs, err := bucket.ListPublic(context.Background(), srv.URL+"/ada/")
	if err != nil {
		t.Fatalf("ListPublic failed: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "s1" {
		t.Fatalf("refs = %+v", refs)
	}

	// A bucket without an index simply has no published stories.
	refs, err = bucket.ListPublic(context.Background(), srv.URL+"/empty")
	if err != nil {
		t.Fatalf("ListPublic on empty bucket failed: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("refs = %+v, want none", refs)
	}
}
