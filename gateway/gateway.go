package gateway

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/c360/telemetrix/errors"
	"github.com/c360/telemetrix/health"
	"github.com/c360/telemetrix/snapshot"
)

const (
	defaultAddress      = ":9600"
	defaultRateLimit    = 10
	defaultRateBurst    = 20
	defaultPushInterval = time.Second
	defaultReadTimeout  = 5 * time.Second
	defaultWriteTimeout = 10 * time.Second

	// writeDeadline bounds every WebSocket write so a stalled client
	// cannot pin a push loop.
	writeDeadline = 10 * time.Second

	// maxClientMessage caps inbound WebSocket frames. Clients only
	// listen, so anything larger than a control payload is abuse.
	maxClientMessage = 512

	monitorComponent = "gateway"
	systemName       = "telemetrix"
)

// SnapshotSource provides rendered snapshot trees for serving. The
// driver satisfies this interface.
type SnapshotSource interface {
	// Latest returns the most recently cached snapshot. Implementations
	// must never return nil.
	Latest() *snapshot.Tree

	// Snapshot performs a fresh walk over the registered processors.
	Snapshot(descriptive bool) *snapshot.Tree
}

// Server exposes a SnapshotSource over HTTP and WebSocket.
type Server struct {
	addr           string
	logger         *slog.Logger
	source         SnapshotSource
	monitor        *health.Monitor
	staleAfter     time.Duration
	pushInterval   time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	rateLimit      float64
	rateBurst      int
	metricsHandler http.Handler

	limiter  *rate.Limiter
	upgrader websocket.Upgrader

	server   *http.Server
	listener net.Listener
	runCtx   context.Context

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
	clientWG  sync.WaitGroup

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool
	cancel      context.CancelFunc
	group       *errgroup.Group

	requestsServed uint64
	requestsShed   uint64
	requestsFailed uint64
}

// Option configures a Server.
type Option func(*Server)

// WithAddress sets the listen address. Empty keeps the default.
func WithAddress(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithLogger sets the logger used for request and lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHealthMonitor wires the monitor consulted by the health endpoint.
// The gateway also reports its own liveness into it.
func WithHealthMonitor(monitor *health.Monitor) Option {
	return func(s *Server) {
		s.monitor = monitor
	}
}

// WithStaleAfter demotes components whose last heartbeat is older than
// the given age when answering health probes. Zero disables the check.
func WithStaleAfter(age time.Duration) Option {
	return func(s *Server) {
		if age > 0 {
			s.staleAfter = age
		}
	}
}

// WithRateLimit sets the shared token bucket for snapshot and live
// requests. Non-positive values keep the defaults.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond > 0 {
			s.rateLimit = perSecond
		}
		if burst > 0 {
			s.rateBurst = burst
		}
	}
}

// WithPushInterval sets how often live clients are checked for a new
// snapshot to push. Non-positive values keep the default.
func WithPushInterval(interval time.Duration) Option {
	return func(s *Server) {
		if interval > 0 {
			s.pushInterval = interval
		}
	}
}

// WithReadTimeout sets the HTTP server read timeout.
func WithReadTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.readTimeout = timeout
		}
	}
}

// WithWriteTimeout sets the HTTP server write timeout. Upgraded
// WebSocket connections are not affected.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.writeTimeout = timeout
		}
	}
}

// WithMetricsHandler mounts the given handler at /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) {
		if handler != nil {
			s.metricsHandler = handler
		}
	}
}

// New creates a gateway server for the given snapshot source.
func New(source SnapshotSource, opts ...Option) (*Server, error) {
	if source == nil {
		return nil, errors.WrapInvalid(errors.ErrNilComponent, "Server", "New", "validate snapshot source")
	}

	s := &Server{
		addr:         defaultAddress,
		logger:       slog.Default(),
		source:       source,
		pushInterval: defaultPushInterval,
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
		rateLimit:    defaultRateLimit,
		rateBurst:    defaultRateBurst,
		clients:      make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiter = rate.NewLimiter(rate.Limit(s.rateLimit), s.rateBurst)
	return s, nil
}

// Start binds the listen address and begins serving. The context bounds
// the serving lifetime: cancelling it stops the push loops.
func (s *Server) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.stopped {
		return errors.WrapInvalid(errors.ErrAlreadyStopped, "Server", "Start", "restart gateway")
	}
	if s.started {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Server", "Start", "start gateway")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.WrapTransient(err, "Server", "Start", "listen on "+s.addr)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.runCtx = runCtx
	s.cancel = cancel
	s.group = &errgroup.Group{}
	s.group.Go(func() error {
		if err := s.server.Serve(listener); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Gateway server failed", "error", err)
			return err
		}
		return nil
	})
	s.started = true

	if s.monitor != nil {
		s.monitor.UpdateHealthy(monitorComponent, "serving on "+listener.Addr().String())
	}
	s.logger.Info("Gateway started",
		"address", listener.Addr().String(),
		"rate_limit", s.rateLimit,
		"push_interval", s.pushInterval)
	return nil
}

// Stop shuts the listener down, disconnects live clients, and waits up
// to timeout for everything to drain. A timed-out Stop can be retried.
func (s *Server) Stop(timeout time.Duration) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if !s.started {
		return errors.WrapInvalid(errors.ErrNotStarted, "Server", "Stop", "stop gateway")
	}
	if s.stopped {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdownErr := s.server.Shutdown(ctx)
	s.cancel()
	s.closeClients()

	done := make(chan struct{})
	go func() {
		s.clientWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Gateway stop timed out waiting for clients", "timeout", timeout)
		return errors.WrapTransient(ctx.Err(), "Server", "Stop", "drain live clients")
	}

	if err := s.group.Wait(); err != nil && shutdownErr == nil {
		shutdownErr = err
	}
	s.stopped = true

	if s.monitor != nil {
		s.monitor.Remove(monitorComponent)
	}
	s.logger.Info("Gateway stopped",
		"requests_served", atomic.LoadUint64(&s.requestsServed),
		"requests_shed", atomic.LoadUint64(&s.requestsShed),
		"requests_failed", atomic.LoadUint64(&s.requestsFailed))

	if shutdownErr != nil {
		return errors.WrapTransient(shutdownErr, "Server", "Stop", "shut down listener")
	}
	return nil
}

// Addr returns the bound listen address, including the actual port when
// the kernel chose one. Before Start it returns the configured address.
func (s *Server) Addr() string {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/live", s.handleLive)
	if s.metricsHandler != nil {
		mux.Handle("/metrics", s.metricsHandler)
	}
	return mux
}
