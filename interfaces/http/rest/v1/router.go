// Package v1 keeps the legacy graph-data endpoint alive for old clients.
package v1

import (
	"net/http"

	"versegraph/interfaces/http/rest/handlers"

	"github.com/gorilla/mux"
)

// SunsetDate is announced on every v1 response
const SunsetDate = "2027-06-30"

// NewRouter creates the v1 API router. Authentication is applied by the
// router that mounts it.
func NewRouter(graphHandler *handlers.GraphHandler) *mux.Router {
	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.Use(deprecationHeaders)

	v1.HandleFunc("/graph-data", graphHandler.GetGraph).Methods(http.MethodGet)

	return router
}

// deprecationHeaders points v1 callers at the v2 route
func deprecationHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		w.Header().Set("X-API-Deprecated", "true")
		w.Header().Set("Deprecation", "true")
		w.Header().Set("Sunset", SunsetDate)
		w.Header().Set("Link", `</api/v2/graph>; rel="successor-version"`)
		next.ServeHTTP(w, r)
	})
}
