package inkwell

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkwell/analytics"
)

func (a *App) handleHome(c echo.Context) error {
	return Render(c, a.Views.Home(a.Config.URL))
}

// handleUserPage serves a user's public page, with HTMX partial support.
// A user not seen before is fetched from the directory and their story index
// cached on first visit.
func (a *App) handleUserPage(c echo.Context) error {
	username := c.Param("username")
	profile, err := a.resolver.Resolve(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, analytics.ErrProfileNotFound) || errors.Is(err, analytics.ErrBucketNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	stories, err := a.Cache.Stories(username)
	if err != nil {
		return err
	}
	if len(stories) == 0 {
		if stories, err = a.refreshUser(c.Request().Context(), profile); err != nil {
			return err
		}
	}
	avatar := a.avatarPath(username)
	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "user" {
		return Render(c, a.Views.UserPagePartial(profile, stories, avatar, a.Config.URL))
	}
	return Render(c, a.Views.UserPage(profile, stories, avatar, a.Config.URL))
}

// handleStory serves a single story page. Story bodies live in the author's
// bucket; the view receives the cached metadata and loads content client-side.
func (a *App) handleStory(c echo.Context) error {
	username := c.Param("username")
	storyID := c.Param("story")

	profile, err := a.resolver.Resolve(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, analytics.ErrProfileNotFound) || errors.Is(err, analytics.ErrBucketNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}

	story, err := a.Cache.GetStory(username, storyID)
	if err == ErrNotFound {
		// The index may simply be stale; refresh once before giving up.
		if _, err := a.refreshUser(c.Request().Context(), profile); err != nil {
			return err
		}
		story, err = a.Cache.GetStory(username, storyID)
		if err == ErrNotFound {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
	}
	if err != nil {
		return err
	}

	stories, err := a.Cache.Stories(username)
	if err != nil {
		return err
	}
	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "story" {
		return Render(c, a.Views.StoryPartial(profile, story, stories, a.Config.URL))
	}
	return Render(c, a.Views.Story(profile, story, stories, a.Config.URL))
}

func (a *App) handleSitemap(c echo.Context) error {
	users, err := a.Store.ListUsers()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, users)
}

func (a *App) handleFeed(c echo.Context) error {
	username := c.Param("username")
	stories, err := a.Cache.Stories(username)
	if err != nil {
		return err
	}
	return a.renderFeed(c, username, stories)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// avatarPath returns the local path of a user's cached avatar, or "" when no
// avatar is cached.
func (a *App) avatarPath(username string) string {
	av, err := a.Store.GetAvatar(username)
	if err == sql.ErrNoRows {
		return ""
	}
	if err != nil {
		return ""
	}
	return "/public/" + avatarsSubdir + "/" + av.Filename
}
