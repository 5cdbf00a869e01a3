// internal/handlers/server.go
package handlers

import (
	"context"
	"net/http"

	"github.com/jason-s-yu/unluckysevens/internal/auth"
	"github.com/jason-s-yu/unluckysevens/internal/middleware"
	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/jason-s-yu/unluckysevens/internal/room"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HistoryLister reads the persisted action history of a room.
type HistoryLister interface {
	ListActions(ctx context.Context, code string, limit int) ([]models.ActionRecord, error)
}

// Options configures a Server.
type Options struct {
	Rooms  *room.Service
	Signer *auth.Signer
	Logger *logrus.Logger
	// History is optional; without it the history route answers 404.
	History HistoryLister

	ActionsPerSecond float64
	ActionBurst      int
	// OriginPatterns are the allowed websocket origins. Empty allows all.
	OriginPatterns []string
}

// Server holds the HTTP and websocket handlers of the room service.
type Server struct {
	rooms   *room.Service
	signer  *auth.Signer
	logger  *logrus.Logger
	history HistoryLister

	actionRate  rate.Limit
	actionBurst int
	origins     []string
}

// NewServer builds a Server from opts.
func NewServer(opts Options) *Server {
	s := &Server{
		rooms:       opts.Rooms,
		signer:      opts.Signer,
		logger:      opts.Logger,
		history:     opts.History,
		actionRate:  rate.Limit(opts.ActionsPerSecond),
		actionBurst: opts.ActionBurst,
		origins:     opts.OriginPatterns,
	}
	if s.logger == nil {
		s.logger = logrus.New()
	}
	if s.actionRate <= 0 {
		s.actionRate = rate.Inf
	}
	if s.actionBurst <= 0 {
		s.actionBurst = 1
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	return s
}

// Routes returns the mux with request logging applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rooms", s.CreateRoomHandler)
	mux.HandleFunc("POST /rooms/{code}/join", s.JoinRoomHandler)
	mux.HandleFunc("GET /rooms/{code}", s.GetRoomHandler)
	mux.HandleFunc("GET /rooms/{code}/history", s.HistoryHandler)
	mux.HandleFunc("GET /rooms/{code}/ws", s.RoomWSHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return middleware.LogMiddleware(s.logger)(mux)
}
