package inkwell

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	GUID    string `xml:"guid"`
}

// renderFeed writes a per-user RSS feed over the cached story metadata.
func (a *App) renderFeed(c echo.Context, username string, stories []StoryMeta) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(stories))
	for _, s := range stories {
		pubDate := ""
		if t, err := time.Parse("2006-01-02", s.CreatedAt); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		storyURL := BuildURL(base, username, s.ID)
		items = append(items, rssItem{
			Title:   s.Title,
			Link:    storyURL,
			PubDate: pubDate,
			GUID:    storyURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       username + " — " + a.Config.Name,
			Link:        BuildURL(base, username),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
