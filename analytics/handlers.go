package analytics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler serves the analytics API endpoints.
type Handler struct {
	agg     *Aggregator
	limiter *ipLimiter
}

// NewHandler creates an analytics handler. The historical endpoint is
// rate-limited to 60 requests per IP per minute.
func NewHandler(agg *Aggregator) *Handler {
	return &Handler{
		agg:     agg,
		limiter: newIPLimiter(60, time.Minute),
	}
}

// Historical returns the merged visit/pageview series for a user.
//
// GET /api/analytics/:username/historical?dateFrom=YYYY-MM-DD&dateGrouping=day|month
func (h *Handler) Historical(c echo.Context) error {
	if !h.limiter.allow(c.RealIP()) {
		return c.NoContent(http.StatusTooManyRequests)
	}

	// Captured exactly once; anchors both the scaffold and the merge.
	now := time.Now().UTC()

	q, err := ValidateQuery(c.QueryParam("dateFrom"), c.QueryParam("dateGrouping"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	username := c.Param("username")
	buckets, err := h.agg.Historical(c.Request().Context(), username, q, now)
	if err != nil {
		var aggErr *AggregationError
		if errors.As(err, &aggErr) {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": fmt.Sprintf("internal error (ref %s)", aggErr.CorrelationID),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, buckets)
}

// RegisterRoutes mounts the analytics API on the Echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/analytics")
	api.GET("/:username/historical", h.Historical)
}
