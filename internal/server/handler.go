package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/soar/padview/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local viewer, overlays load it from other origins
	},
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := hub.NewClient(s.hub, conn)
	if !s.hub.Register(client) {
		conn.Close()
		return
	}
	s.broadcaster.SendInitialState(client)

	go client.WritePump()
	go client.ReadPumpWithHandler(s.baseCtx, s.players, s.broadcaster.SendInitialState)
}

func (s *Server) handlePlayers(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(s.players.Frames()); err != nil {
		s.logger.Debug("write players response", "error", err)
	}
}
