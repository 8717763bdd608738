package gateway

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/c360/telemetrix/health"
	"github.com/c360/telemetrix/snapshot"
)

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.limiter.Allow() {
		atomic.AddUint64(&s.requestsShed, 1)
		s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var tree *snapshot.Tree
	if queryFlag(r, "descriptive") {
		tree = s.source.Snapshot(true)
	} else {
		tree = s.source.Latest()
	}

	var (
		data []byte
		err  error
	)
	if queryFlag(r, "pretty") {
		data, err = json.MarshalIndent(tree, "", "  ")
	} else {
		data, err = json.Marshal(tree)
	}
	if err != nil {
		atomic.AddUint64(&s.requestsFailed, 1)
		s.logger.Error("Snapshot encoding failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "snapshot encoding failed")
		return
	}

	atomic.AddUint64(&s.requestsServed, 1)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var status health.Status
	if s.monitor != nil {
		status = s.monitor.AggregateWithMaxAge(systemName, s.staleAfter)
	} else {
		status = health.NewHealthy(systemName, "no monitor configured")
	}

	code := http.StatusOK
	if status.IsUnhealthy() {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error("Health status encoding failed", "error", err)
	}
}

// writeError sends a JSON error envelope with the given status code.
func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":  message,
		"status": code,
	})
}

func queryFlag(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}
