// Package api serves the latest layout over HTTP.
package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"companymap/internal/layout"
	"companymap/internal/models"
)

// LayoutSource returns the layout to serve. *layout.Holder implements it.
type LayoutSource interface {
	Latest() (*models.Layout, error)
}

type handlers struct {
	layouts LayoutSource
	logger  zerolog.Logger
}

// NewRouter builds the gin engine. metrics may be nil, in which case
// /metrics is not registered.
func NewRouter(layouts LayoutSource, metrics http.Handler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger, "/healthz", "/metrics"))

	h := &handlers{layouts: layouts, logger: logger}
	r.GET("/healthz", h.health)
	r.GET("/api/points", h.points)
	r.GET("/api/points.geojson", h.geoJSON)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
	return r
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) points(c *gin.Context) {
	l, ok := h.latest(c)
	if !ok {
		return
	}
	c.Header("ETag", `"`+l.ID+`"`)
	c.JSON(http.StatusOK, l)
}

func (h *handlers) geoJSON(c *gin.Context) {
	l, ok := h.latest(c)
	if !ok {
		return
	}
	c.Header("ETag", `"`+l.ID+`"`)
	c.Render(http.StatusOK, geoJSONRender{data: toFeatureCollection(l)})
}

func (h *handlers) latest(c *gin.Context) (*models.Layout, bool) {
	l, err := h.layouts.Latest()
	switch {
	case errors.Is(err, layout.ErrNoLayout):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "layout not ready"})
		return nil, false
	case err != nil:
		h.logger.Error().Err(err).Msg("Failed to read layout")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	if etagMatches(c.GetHeader("If-None-Match"), l.ID) {
		c.Header("ETag", `"`+l.ID+`"`)
		c.Status(http.StatusNotModified)
		return nil, false
	}
	return l, true
}

// etagMatches applies the weak comparison of If-None-Match (RFC 9110
// 13.1.2): any listed tag, weak or strong, or "*" matches.
func etagMatches(header, id string) bool {
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" {
			return true
		}
		if strings.TrimPrefix(tag, "W/") == `"`+id+`"` {
			return true
		}
	}
	return false
}

func requestLogger(logger zerolog.Logger, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if _, ok := skipped[c.Request.URL.Path]; ok {
			return
		}
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("HTTP request")
	}
}
