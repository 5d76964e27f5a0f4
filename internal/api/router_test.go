package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companymap/internal/layout"
	"companymap/internal/metrics"
	"companymap/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type brokenSource struct{}

func (brokenSource) Latest() (*models.Layout, error) { return nil, errors.New("disk on fire") }

func publishedHolder(t *testing.T) *layout.Holder {
	t.Helper()
	h := layout.NewHolder()
	require.NoError(t, h.Publish(context.Background(), &models.Layout{
		ID:        "abc",
		CreatedAt: time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC),
		Points: []models.MapPoint{
			{
				Name: "Alpha", Lat: 52.370456, Lon: 4.895168,
				Original:    models.Coordinates{Lat: 52.370216, Lon: 4.895168},
				Jittered:    true,
				CompanyInfo: models.CompanyInfo{City: "Amsterdam", Country: "Netherlands"},
			},
			{Name: "Solo", Lat: 10, Lon: 20, Original: models.Coordinates{Lat: 10, Lon: 20}},
		},
		Stats: models.LayoutStats{Companies: 2, Points: 2, PointsJittered: 1, GroupsJittered: 1},
	}))
	return h
}

func serve(r http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	w := serve(NewRouter(layout.NewHolder(), nil, zerolog.Nop()), "/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_NoLayout(t *testing.T) {
	tests := []struct {
		name   string
		source LayoutSource
		path   string
		want   int
	}{
		{name: "points before first layout", source: layout.NewHolder(), path: "/api/points", want: http.StatusServiceUnavailable},
		{name: "geojson before first layout", source: layout.NewHolder(), path: "/api/points.geojson", want: http.StatusServiceUnavailable},
		{name: "source error", source: brokenSource{}, path: "/api/points", want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(NewRouter(tt.source, nil, zerolog.Nop()), tt.path)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRouter_Points(t *testing.T) {
	r := NewRouter(publishedHolder(t), nil, zerolog.Nop())

	w := serve(r, "/api/points")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"abc"`, w.Header().Get("ETag"))

	var got models.Layout
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "abc", got.ID)
	require.Len(t, got.Points, 2)
	assert.Equal(t, "Alpha", got.Points[0].Name)
	assert.True(t, got.Points[0].Jittered)
	assert.Equal(t, "Amsterdam", got.Points[0].City)

	w = serve(r, "/api/points", "If-None-Match", `"abc"`)
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestRouter_ConditionalRequests(t *testing.T) {
	r := NewRouter(publishedHolder(t), nil, zerolog.Nop())

	tests := []struct {
		name        string
		ifNoneMatch string
		want        int
	}{
		{name: "strong tag", ifNoneMatch: `"abc"`, want: http.StatusNotModified},
		{name: "weak tag", ifNoneMatch: `W/"abc"`, want: http.StatusNotModified},
		{name: "tag in list", ifNoneMatch: `"old", W/"abc" , "older"`, want: http.StatusNotModified},
		{name: "wildcard", ifNoneMatch: `*`, want: http.StatusNotModified},
		{name: "other tags", ifNoneMatch: `"old", W/"older"`, want: http.StatusOK},
		{name: "unquoted id", ifNoneMatch: `abc`, want: http.StatusOK},
		{name: "empty header", ifNoneMatch: ``, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/api/points", "/api/points.geojson"} {
				var w *httptest.ResponseRecorder
				if tt.ifNoneMatch == "" {
					w = serve(r, path)
				} else {
					w = serve(r, path, "If-None-Match", tt.ifNoneMatch)
				}
				assert.Equal(t, tt.want, w.Code, path)
				assert.Equal(t, `"abc"`, w.Header().Get("ETag"), path)
				if tt.want == http.StatusNotModified {
					assert.Empty(t, w.Body.String(), path)
				}
			}
		})
	}
}

func TestRouter_GeoJSON(t *testing.T) {
	w := serve(NewRouter(publishedHolder(t), nil, zerolog.Nop()), "/api/points.geojson")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	alpha := fc.Features[0]
	assert.Equal(t, "Point", alpha.Geometry.Type)
	assert.Equal(t, [2]float64{4.895168, 52.370456}, alpha.Geometry.Coordinates, "coordinates are [lon, lat]")
	assert.Equal(t, "Alpha", alpha.Properties.Name)
	assert.Equal(t, "Netherlands", alpha.Properties.Country)
	assert.Equal(t, models.Coordinates{Lat: 52.370216, Lon: 4.895168}, alpha.Properties.Original)
}

func TestRouter_Metrics(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.ObserveLayout(3, 2, 1, nil, time.Millisecond)

	w := serve(NewRouter(layout.NewHolder(), rec.Handler(), zerolog.Nop()), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "companymap_layout_points 3")

	w = serve(NewRouter(layout.NewHolder(), nil, zerolog.Nop()), "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewRouter(layout.NewHolder(), nil, zerolog.Nop()), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
