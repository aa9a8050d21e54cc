package inkwell

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/inkwell/analytics"
)

// setDefaults fills unset view funcs with plain built-in components so an App
// is runnable before the user brings their own templ templates.
func (v *ViewFuncs) setDefaults() {
	if v.Home == nil {
		v.Home = func(siteURL string) templ.Component {
			return page("Home", "<p>inkwell is running.</p>")
		}
	}
	if v.UserPage == nil {
		v.UserPage = defaultUserPage
	}
	if v.UserPagePartial == nil {
		v.UserPagePartial = v.UserPage
	}
	if v.Story == nil {
		v.Story = defaultStory
	}
	if v.StoryPartial == nil {
		v.StoryPartial = v.Story
	}
	if v.AdminLogin == nil {
		v.AdminLogin = func(showError bool, csrfToken string) templ.Component {
			body := fmt.Sprintf(`<form method="post" action="/admin/login/"><input type="hidden" name="_csrf" value="%s"><input type="password" name="password"><button>Log in</button></form>`, html.EscapeString(csrfToken))
			if showError {
				body = "<p>Wrong password.</p>" + body
			}
			return page("Admin", body)
		}
	}
	if v.AdminDashboard == nil {
		v.AdminDashboard = func(users []CachedUser, message, csrfToken string) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				fmt.Fprintf(w, "<!doctype html><title>Cache</title><p>%s</p><ul>", html.EscapeString(message))
				for _, u := range users {
					fmt.Fprintf(w, "<li>%s — %d stories (fetched %s)</li>",
						html.EscapeString(u.Username), u.StoryCount, html.EscapeString(u.FetchedAt))
				}
				_, err := io.WriteString(w, "</ul>")
				return err
			})
		}
	}
	if v.NotFound == nil {
		v.NotFound = func() templ.Component { return page("Not Found", "<p>Page not found.</p>") }
	}
	if v.ServerError == nil {
		v.ServerError = func() templ.Component { return page("Error", "<p>Something went wrong.</p>") }
	}
}

func defaultUserPage(profile analytics.Profile, stories []StoryMeta, avatarPath, siteURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, "<!doctype html><title>%s</title>", html.EscapeString(profile.Username))
		if avatarPath != "" {
			fmt.Fprintf(w, `<img src="%s" alt="">`, html.EscapeString(avatarPath))
		}
		fmt.Fprintf(w, "<h1>%s</h1><ul>", html.EscapeString(profile.Name))
		for _, s := range stories {
			fmt.Fprintf(w, `<li><a href="%s">%s</a></li>`, html.EscapeString(s.Link), html.EscapeString(s.Title))
		}
		_, err := io.WriteString(w, "</ul>")
		return err
	})
}

func defaultStory(profile analytics.Profile, story StoryMeta, stories []StoryMeta, siteURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<!doctype html><title>%s</title><h1>%s</h1><p>by %s, %s</p>",
			html.EscapeString(story.Title), html.EscapeString(story.Title),
			html.EscapeString(profile.Username), html.EscapeString(story.CreatedAt))
		return err
	})
}

// page builds a minimal HTML component with a title and raw body markup.
func page(title, body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<!doctype html><title>%s</title>%s", html.EscapeString(title), body)
		return err
	})
}
