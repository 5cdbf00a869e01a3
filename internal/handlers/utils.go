// internal/handlers/utils.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jason-s-yu/unluckysevens/internal/game"
	"github.com/jason-s-yu/unluckysevens/internal/room"
)

// authCookie carries the seat token for browsers.
const authCookie = "auth_token"

// requestToken finds the seat token in the Authorization header, the
// auth_token cookie or the token query parameter, in that order.
func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(authCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps a service error onto an HTTP status and client message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, room.ErrNotFound):
		return http.StatusNotFound, "room not found"
	case errors.Is(err, game.ErrNameRequired):
		return http.StatusBadRequest, err.Error()
	case game.IsRejection(err):
		return http.StatusConflict, err.Error()
	case errors.Is(err, room.ErrConflict):
		return http.StatusServiceUnavailable, "room is busy, try again"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
