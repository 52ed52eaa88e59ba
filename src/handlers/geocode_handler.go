package handlers

import (
	"context"
	"net/http"
	"strings"

	"tally-server/src/models"
	"tally-server/src/util"
)

type Geocoder interface {
	Search(ctx context.Context, query string) ([]models.Place, error)
	Reverse(ctx context.Context, lat, lng float64) (*models.Place, error)
}

func GeocodeSearch(geo Geocoder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			writeJSON(w, http.StatusOK, map[string]any{"results": []models.Place{}})
			return
		}
		places, err := geo.Search(r.Context(), q)
		if err != nil {
			writeError(w, r, err, "geocode", "Place")
			return
		}
		if places == nil {
			places = []models.Place{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": places})
	}
}

func ReverseGeocode(geo Geocoder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if strings.TrimSpace(q.Get("lat")) == "" || strings.TrimSpace(q.Get("lon")) == "" {
			writeJSON(w, http.StatusOK, map[string]any{"result": nil})
			return
		}
		lat, err := util.ParseCoordinate(q.Get("lat"), 90)
		if err != nil {
			writeError(w, r, err, "reverse geocode", "Place")
			return
		}
		lng, err := util.ParseCoordinate(q.Get("lon"), 180)
		if err != nil {
			writeError(w, r, err, "reverse geocode", "Place")
			return
		}
		place, err := geo.Reverse(r.Context(), lat, lng)
		if err != nil {
			writeError(w, r, err, "reverse geocode", "Place")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"result": place})
	}
}
