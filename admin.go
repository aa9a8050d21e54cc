package inkwell

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkwell/analytics"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminRefresh forces a re-fetch of one user's public-story index.
func (a *App) handleAdminRefresh(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	username := c.Param("username")
	profile, err := a.resolver.Resolve(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, analytics.ErrProfileNotFound) || errors.Is(err, analytics.ErrBucketNotFound) {
			return a.renderAdminDashboard(c, "unknown user")
		}
		return err
	}
	if _, err := a.refreshUser(c.Request().Context(), profile); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "refreshed")
}

// handleAdminEvict removes a user's cached metadata entirely.
func (a *App) handleAdminEvict(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	username := c.Param("username")
	if err := a.Store.DeleteUser(username); err != nil {
		return err
	}
	a.Cache.Invalidate(username)
	return a.renderAdminDashboard(c, "evicted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	users, err := a.Store.ListUsers()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(users, msg, CsrfToken(c)))
}
