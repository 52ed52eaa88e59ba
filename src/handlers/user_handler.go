package handlers

import (
	"net/http"

	"tally-server/src/logging"
	"tally-server/src/middleware"
)

// CacheClearer drops cached lookups and reports how many were removed.
type CacheClearer interface {
	ClearCache() int
}

// GetMe returns the identity carried by the caller's access token.
func GetMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":    userID,
			"email": middleware.EmailFromContext(r.Context()),
			"role":  middleware.RoleFromContext(r.Context()),
		})
	}
}

func ClearGeocodeCache(cache CacheClearer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := cache.ClearCache()
		logging.FromContext(r.Context()).Info("cleared geocode cache", "entries", n)
		writeJSON(w, http.StatusOK, map[string]any{"message": "Cache cleared", "entries": n})
	}
}
