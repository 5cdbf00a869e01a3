// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/jason-s-yu/unluckysevens/internal/room"
)

type seatRequest struct {
	Name string `json:"name"`
}

// SeatResponse is returned by create and join.
type SeatResponse struct {
	Code     string   `json:"code"`
	PlayerID string   `json:"playerId"`
	Token    string   `json:"token"`
	Room     RoomView `json:"room"`
}

const (
	defaultHistoryLimit = 200
	maxHistoryLimit     = 1000
)

// CreateRoomHandler opens a room with the caller as host.
func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req seatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request payload")
		return
	}

	row, playerID, err := s.rooms.CreateRoom(r.Context(), req.Name)
	if err != nil {
		s.serviceError(w, err, "create room")
		return
	}
	s.seat(w, http.StatusCreated, row, playerID)
}

// JoinRoomHandler seats the caller. A caller already holding a token for
// this room keeps their seat.
func (s *Server) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	code := room.NormalizeCode(r.PathValue("code"))
	if !room.ValidCode(code) {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	var req seatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad request payload")
		return
	}

	var playerID string
	if token := requestToken(r); token != "" {
		if id, err := s.signer.Verify(token, code); err == nil {
			playerID = id
		}
	}

	row, playerID, err := s.rooms.JoinRoom(r.Context(), code, req.Name, playerID)
	if err != nil {
		s.serviceError(w, err, "join room")
		return
	}
	s.seat(w, http.StatusOK, row, playerID)
}

// GetRoomHandler returns the room as the caller sees it.
func (s *Server) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	code := room.NormalizeCode(r.PathValue("code"))
	row, err := s.rooms.Get(r.Context(), code)
	if err != nil {
		s.serviceError(w, err, "get room")
		return
	}
	writeJSON(w, http.StatusOK, NewRoomView(row, s.viewer(r, code)))
}

// HistoryHandler lists the recorded actions of a room, oldest first.
func (s *Server) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}
	code := room.NormalizeCode(r.PathValue("code"))
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	recs, err := s.history.ListActions(r.Context(), code, limit)
	if err != nil {
		s.serviceError(w, err, "list history")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// seat issues a token for playerID and writes the seat response.
func (s *Server) seat(w http.ResponseWriter, status int, row models.RoomRow, playerID string) {
	token, err := s.signer.Issue(playerID, row.Code)
	if err != nil {
		s.logger.WithError(err).Error("issue seat token")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, status, SeatResponse{
		Code:     row.Code,
		PlayerID: playerID,
		Token:    token,
		Room:     NewRoomView(row, playerID),
	})
}

// viewer returns the player id behind the request's token, or "".
func (s *Server) viewer(r *http.Request, code string) string {
	token := requestToken(r)
	if token == "" {
		return ""
	}
	id, err := s.signer.Verify(token, code)
	if err != nil {
		return ""
	}
	return id
}

func (s *Server) serviceError(w http.ResponseWriter, err error, op string) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Errorf("%s failed", op)
	}
	writeError(w, status, msg)
}
