package natsexport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"k8s.io/utils/clock"

	"github.com/c360/telemetrix/driver"
	"github.com/c360/telemetrix/errors"
	"github.com/c360/telemetrix/health"
	"github.com/c360/telemetrix/pkg/retry"
	"github.com/c360/telemetrix/snapshot"
)

const (
	defaultName          = "telemetrix-publisher"
	defaultMaxReconnects = -1
	defaultReconnectWait = 2 * time.Second

	monitorComponent = "nats"
)

// envelope is the wire format for a published snapshot.
type envelope struct {
	Source    string         `json:"source"`
	Published time.Time      `json:"published"`
	Snapshot  *snapshot.Tree `json:"snapshot"`
}

// natsConn is the part of nats.Conn the publisher uses. Tests swap in
// a fake.
type natsConn interface {
	Publish(subject string, data []byte) error
	IsConnected() bool
	Drain() error
	Close()
}

// Publisher sends snapshot trees to a NATS subject as JSON. It
// satisfies the driver's Reporter interface.
type Publisher struct {
	url     string
	subject string
	name    string
	logger  *slog.Logger
	clock   clock.PassiveClock
	monitor *health.Monitor

	username string
	password string
	token    string

	maxReconnects int
	reconnectWait time.Duration
	connectRetry  retry.Config
	publishRetry  retry.Config

	mu   sync.RWMutex
	conn natsConn

	published atomic.Uint64
	failed    atomic.Uint64
}

var _ driver.Reporter = (*Publisher)(nil)

// Option configures a Publisher.
type Option func(*Publisher)

// WithName sets the NATS client name, which is also the reporter name
// and the envelope source.
func WithName(name string) Option {
	return func(p *Publisher) {
		if name != "" {
			p.name = name
		}
	}
}

// WithLogger sets the logger for connection and publish events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock sets the clock used to stamp envelopes.
func WithClock(c clock.PassiveClock) Option {
	return func(p *Publisher) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithHealthMonitor wires connection state changes into the monitor.
func WithHealthMonitor(monitor *health.Monitor) Option {
	return func(p *Publisher) {
		p.monitor = monitor
	}
}

// WithCredentials sets username and password authentication.
func WithCredentials(username, password string) Option {
	return func(p *Publisher) {
		p.username = username
		p.password = password
	}
}

// WithToken sets token authentication.
func WithToken(token string) Option {
	return func(p *Publisher) {
		p.token = token
	}
}

// WithMaxReconnects bounds the client's automatic reconnect attempts.
// Negative means unlimited.
func WithMaxReconnects(n int) Option {
	return func(p *Publisher) {
		p.maxReconnects = n
	}
}

// WithReconnectWait sets the pause between automatic reconnects.
func WithReconnectWait(wait time.Duration) Option {
	return func(p *Publisher) {
		if wait > 0 {
			p.reconnectWait = wait
		}
	}
}

// WithConnectRetry overrides the backoff used by Connect.
func WithConnectRetry(cfg retry.Config) Option {
	return func(p *Publisher) {
		p.connectRetry = cfg
	}
}

// WithPublishRetry overrides the backoff used per published snapshot.
func WithPublishRetry(cfg retry.Config) Option {
	return func(p *Publisher) {
		p.publishRetry = cfg
	}
}

// New creates a publisher for the given server URL and subject.
func New(serverURL, subject string, opts ...Option) (*Publisher, error) {
	if serverURL == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Publisher", "New", "validate server URL")
	}
	if err := validateSubject(subject); err != nil {
		return nil, err
	}

	p := &Publisher{
		url:           serverURL,
		subject:       subject,
		name:          defaultName,
		logger:        slog.Default(),
		clock:         clock.RealClock{},
		maxReconnects: defaultMaxReconnects,
		reconnectWait: defaultReconnectWait,
		connectRetry:  retry.Connect(),
		publishRetry:  retry.Publish(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name identifies this reporter to the driver.
func (p *Publisher) Name() string {
	return p.name
}

// Connect dials the NATS server, retrying with backoff until the
// context is cancelled or the retry budget runs out.
func (p *Publisher) Connect(ctx context.Context) error {
	if p.connection() != nil {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Publisher", "Connect", "connect publisher")
	}

	opts := p.connectionOptions()
	var conn *nats.Conn
	err := retry.Do(ctx, p.connectRetry, func() error {
		c, err := nats.Connect(p.url, opts...)
		if err != nil {
			p.logger.Warn("NATS connection attempt failed", "url", redactURL(p.url), "error", err)
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		if p.monitor != nil {
			p.monitor.UpdateUnhealthy(monitorComponent, "connect failed: "+err.Error())
		}
		return errors.WrapTransient(err, "Publisher", "Connect", "connect to "+redactURL(p.url))
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	if p.monitor != nil {
		p.monitor.UpdateHealthy(monitorComponent, "connected to "+redactURL(p.url))
	}
	p.logger.Info("NATS publisher connected",
		"url", redactURL(p.url),
		"subject", p.subject,
		"name", p.name)
	return nil
}

// Report publishes the tree to the configured subject. Failures are
// transient: the driver's report pool counts them and the loop carries
// on.
func (p *Publisher) Report(ctx context.Context, tree *snapshot.Tree) error {
	conn := p.connection()
	if conn == nil || !conn.IsConnected() {
		p.failed.Add(1)
		return errors.WrapTransient(errors.ErrNotConnected, "Publisher", "Report", "publish snapshot")
	}

	env := envelope{
		Source:    p.name,
		Published: p.clock.Now().UTC(),
		Snapshot:  tree,
	}
	data, err := json.Marshal(env)
	if err != nil {
		p.failed.Add(1)
		return errors.WrapInvalid(err, "Publisher", "Report", "encode snapshot")
	}

	err = retry.Do(ctx, p.publishRetry, func() error {
		return conn.Publish(p.subject, data)
	})
	if err != nil {
		p.failed.Add(1)
		return errors.WrapTransient(
			stderrors.Join(errors.ErrPublishFailed, err),
			"Publisher", "Report", "publish snapshot to "+p.subject)
	}

	p.published.Add(1)
	return nil
}

// Close drains the connection so queued publishes flush, falling back
// to a hard close when the context runs out first. Close is idempotent.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	conn := p.conn
	p.conn = nil
	p.mu.Unlock()
	if conn == nil {
		return nil
	}

	if p.monitor != nil {
		defer p.monitor.Remove(monitorComponent)
	}
	defer p.logger.Info("NATS publisher closed",
		"published", p.published.Load(),
		"failed", p.failed.Load())

	drainDone := make(chan error, 1)
	go func() {
		drainDone <- conn.Drain()
	}()
	select {
	case err := <-drainDone:
		if err != nil {
			conn.Close()
			return errors.WrapTransient(err, "Publisher", "Close", "drain connection")
		}
	case <-ctx.Done():
		conn.Close()
		return errors.WrapTransient(ctx.Err(), "Publisher", "Close", "drain connection")
	}
	return nil
}

// Published returns the number of snapshots delivered.
func (p *Publisher) Published() uint64 {
	return p.published.Load()
}

// Failed returns the number of snapshots that could not be delivered.
func (p *Publisher) Failed() uint64 {
	return p.failed.Load()
}

func (p *Publisher) connection() natsConn {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.conn
}

func (p *Publisher) connectionOptions() []nats.Option {
	opts := []nats.Option{
		nats.Name(p.name),
		nats.MaxReconnects(p.maxReconnects),
		nats.ReconnectWait(p.reconnectWait),
		nats.DisconnectErrHandler(p.handleDisconnect),
		nats.ReconnectHandler(p.handleReconnect),
		nats.ClosedHandler(p.handleClosed),
	}
	if p.username != "" && p.password != "" {
		opts = append(opts, nats.UserInfo(p.username, p.password))
	}
	if p.token != "" {
		opts = append(opts, nats.Token(p.token))
	}
	return opts
}

func (p *Publisher) handleDisconnect(_ *nats.Conn, err error) {
	if err != nil {
		p.logger.Warn("NATS disconnected", "error", err)
	} else {
		p.logger.Info("NATS disconnected")
	}
	if p.monitor != nil {
		p.monitor.UpdateDegraded(monitorComponent, "disconnected")
	}
}

func (p *Publisher) handleReconnect(conn *nats.Conn) {
	p.logger.Info("NATS reconnected", "url", redactURL(conn.ConnectedUrl()))
	if p.monitor != nil {
		p.monitor.UpdateHealthy(monitorComponent, "reconnected")
	}
}

func (p *Publisher) handleClosed(_ *nats.Conn) {
	// Close takes the connection before draining, so a nil connection
	// here means the closure was ours.
	if p.connection() == nil {
		return
	}
	p.logger.Info("NATS connection closed")
	if p.monitor != nil {
		p.monitor.UpdateUnhealthy(monitorComponent, "connection closed")
	}
}

// validateSubject rejects empty subjects and publish-side wildcards.
func validateSubject(subject string) error {
	if subject == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Publisher", "New", "validate subject")
	}
	if strings.ContainsAny(subject, "*> \t") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Publisher", "New", "validate subject "+subject)
	}
	return nil
}

// redactURL strips credentials before a URL reaches a log line.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
