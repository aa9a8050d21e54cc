package inkwell

// StoryMeta is the cached metadata of one published story. The story body
// itself lives in the author's remote bucket; only metadata is persisted.
type StoryMeta struct {
	ID        string
	Username  string
	Title     string
	Slug      string
	CreatedAt string // YYYY-MM-DD
	Link      string
}

// CachedUser summarizes one user's cache state for the operator dashboard.
type CachedUser struct {
	Username   string
	StoryCount int
	FetchedAt  string // RFC 3339
}

// Avatar is the metadata of a locally cached, downscaled profile avatar.
type Avatar struct {
	Username  string
	Filename  string
	Width     int
	Height    int
	Size      int
	FetchedAt string // RFC 3339
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
