// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/unluckysevens/internal/game"
	"github.com/jason-s-yu/unluckysevens/internal/middleware"
	"github.com/jason-s-yu/unluckysevens/internal/models"
	"github.com/jason-s-yu/unluckysevens/internal/room"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Subprotocol is the websocket subprotocol clients must request.
const Subprotocol = "unlucky"

const writeTimeout = 5 * time.Second

// RoomWSHandler upgrades to a websocket for one seat of a room. The socket
// streams a RoomView after every committed change and takes actions from
// the seat. Actions are executed by the room service; the client never
// sends state.
func (s *Server) RoomWSHandler(w http.ResponseWriter, r *http.Request) {
	code := room.NormalizeCode(r.PathValue("code"))
	row, err := s.rooms.Get(r.Context(), code)
	if err != nil {
		s.serviceError(w, err, "open room socket")
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{Subprotocol},
		OriginPatterns: s.origins,
	})
	if err != nil {
		s.logger.Warnf("WebSocket accept error for room %s: %v", code, err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

	if c.Subprotocol() != Subprotocol {
		s.logger.Warnf("Client for room %s connected with invalid subprotocol: %q", code, c.Subprotocol())
		c.Close(BadSubprotocolError, "Client must use the '"+Subprotocol+"' subprotocol.")
		return
	}

	playerID, err := s.signer.Verify(requestToken(r), code)
	if err != nil {
		s.logger.WithError(err).WithField("room", code).Warn("room socket auth failed")
		c.Close(InvalidAuthTokenError, "Invalid seat token.")
		return
	}
	if row.State.PlayerByID(playerID) < 0 {
		c.Close(NotSeatedError, "Join the room first.")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	middleware.LogWebSocketConnect(s.logger, r.RemoteAddr, r.URL.Path)
	log := s.logger.WithFields(logrus.Fields{"room": code, "player": playerID})

	// Subscribe before the first snapshot so no change is lost in between.
	rows, unsubscribe, err := s.rooms.Subscribe(ctx, code)
	if err != nil {
		log.WithError(err).Error("subscribe failed")
		c.Close(websocket.StatusInternalError, "Could not subscribe to room.")
		return
	}
	defer unsubscribe()

	sock := &seatConn{c: c, log: log, playerID: playerID}
	if row, err = s.rooms.Get(ctx, code); err != nil {
		c.Close(RoomGoneError, "Room no longer exists.")
		return
	}
	sock.sendState(ctx, row)

	go func(last int64) {
		for row := range rows {
			// Rows can arrive out of order across instances; never go back.
			if row.Version <= last {
				continue
			}
			last = row.Version
			sock.sendState(ctx, row)
		}
	}(row.Version)

	limiter := rate.NewLimiter(s.actionRate, s.actionBurst)
	err = s.readRoomMessages(ctx, sock, code, limiter)
	middleware.LogWebSocketDisconnect(s.logger, r.RemoteAddr, r.URL.Path, err)
	c.Close(websocket.StatusNormalClosure, "")
}

// readRoomMessages reads actions until the socket closes.
func (s *Server) readRoomMessages(ctx context.Context, sock *seatConn, code string, limiter *rate.Limiter) error {
	for {
		msgType, data, err := sock.c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			sock.log.Warnf("Ignoring non-text message type %d", msgType)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sock.send(ctx, ServerMessage{Type: MsgError, Message: "Invalid JSON format."})
			continue
		}
		if msg.Type == "ping" {
			sock.send(ctx, ServerMessage{Type: MsgPong})
			continue
		}
		if !limiter.Allow() {
			sock.send(ctx, ServerMessage{Type: MsgError, Action: msg.Type, Message: "Slow down."})
			continue
		}

		action, err := toAction(msg)
		if err != nil {
			sock.send(ctx, ServerMessage{Type: MsgError, Action: msg.Type, Message: err.Error()})
			continue
		}
		sock.log.Debugf("Received action '%s'", msg.Type)

		_, err = s.rooms.Do(ctx, code, sock.playerID, action)
		switch {
		case err == nil:
			// The new state arrives through the subscription.
		case game.IsRejection(err):
			sock.send(ctx, ServerMessage{Type: MsgRejected, Action: msg.Type, Message: err.Error()})
		case errors.Is(err, room.ErrNotFound):
			sock.c.Close(RoomGoneError, "Room no longer exists.")
			return nil
		default:
			_, text := statusFor(err)
			sock.send(ctx, ServerMessage{Type: MsgError, Action: msg.Type, Message: text})
		}
	}
}

// seatConn is one seat's socket.
type seatConn struct {
	c        *websocket.Conn
	log      *logrus.Entry
	playerID string
}

func (sc *seatConn) sendState(ctx context.Context, row models.RoomRow) {
	view := NewRoomView(row, sc.playerID)
	sc.send(ctx, ServerMessage{Type: MsgState, Room: &view})
}

// send writes one message with a write timeout. Write failures are left to
// the read loop to notice.
func (sc *seatConn) send(ctx context.Context, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		sc.log.WithError(err).Error("marshal websocket message")
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := sc.c.Write(writeCtx, websocket.MessageText, data); err != nil {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !strings.Contains(err.Error(), "context canceled") {
			sc.log.Warnf("Error writing WebSocket message: %v (Status: %d)", err, status)
		}
	}
}
