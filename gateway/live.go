package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/c360/telemetrix/snapshot"
)

// handleLive upgrades the request to a WebSocket and streams snapshots.
// Each client gets its own push loop so a slow consumer only stalls
// itself.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.limiter.Allow() {
		atomic.AddUint64(&s.requestsShed, 1)
		s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		atomic.AddUint64(&s.requestsFailed, 1)
		s.logger.Error("WebSocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	s.addClient(conn)
	atomic.AddUint64(&s.requestsServed, 1)
	s.logger.Debug("Live client connected", "remote", conn.RemoteAddr().String())

	s.clientWG.Add(2)
	go s.readLoop(conn)
	go s.pushLoop(s.runCtx, conn)
}

// readLoop drains inbound frames so close messages from the client are
// processed. Live clients only listen, so payloads are discarded.
func (s *Server) readLoop(conn *websocket.Conn) {
	defer s.clientWG.Done()
	conn.SetReadLimit(maxClientMessage)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.removeClient(conn)
			return
		}
	}
}

// pushLoop sends the current snapshot immediately, then pushes each new
// tree as the source caches it. Trees are compared by identity since
// the driver stores a fresh tree per snapshot.
func (s *Server) pushLoop(ctx context.Context, conn *websocket.Conn) {
	defer s.clientWG.Done()
	defer s.removeClient(conn)

	ticker := time.NewTicker(s.pushInterval)
	defer ticker.Stop()

	var last *snapshot.Tree
	if err := s.push(conn, &last); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(writeDeadline)
			message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, message, deadline)
			return
		case <-ticker.C:
			if err := s.push(conn, &last); err != nil {
				return
			}
		}
	}
}

func (s *Server) push(conn *websocket.Conn, last **snapshot.Tree) error {
	tree := s.source.Latest()
	if tree == nil || tree == *last {
		return nil
	}
	data, err := json.Marshal(tree)
	if err != nil {
		s.logger.Error("Snapshot encoding failed", "error", err)
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("Live client write failed", "error", err, "remote", conn.RemoteAddr().String())
		return err
	}
	*last = tree
	return nil
}

func (s *Server) addClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	s.clientsMu.Unlock()
}

// removeClient closes the connection exactly once, no matter whether
// the read loop, the push loop, or shutdown gets there first.
func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	_, present := s.clients[conn]
	delete(s.clients, conn)
	s.clientsMu.Unlock()
	if present {
		_ = conn.Close()
		s.logger.Debug("Live client disconnected", "remote", conn.RemoteAddr().String())
	}
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.clients = make(map[*websocket.Conn]struct{})
	s.clientsMu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}
