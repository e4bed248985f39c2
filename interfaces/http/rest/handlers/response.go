// Package handlers adapts HTTP requests to commands and queries.
package handlers

import (
	"encoding/json"
	"net/http"

	"versegraph/pkg/auth"
	pkgerrors "versegraph/pkg/errors"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func userIDFrom(r *http.Request) (string, error) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		return "", pkgerrors.NewUnauthorizedError("authentication required")
	}
	return user.UserID, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return pkgerrors.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}
