package api

import (
	"encoding/json"
	"net/http"
)

const geoJSONContentType = "application/geo+json"

// geoJSONRender writes data with the GeoJSON media type.
type geoJSONRender struct {
	data any
}

func (r geoJSONRender) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	return json.NewEncoder(w).Encode(r.data)
}

func (r geoJSONRender) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{geoJSONContentType}
	}
}
