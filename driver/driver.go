package driver

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/c360/telemetrix/errors"
	"github.com/c360/telemetrix/health"
	"github.com/c360/telemetrix/pkg/worker"
	"github.com/c360/telemetrix/processor"
	"github.com/c360/telemetrix/snapshot"
)

const (
	defaultCycleInterval    = 5 * time.Millisecond
	defaultSnapshotInterval = time.Second
	defaultMaxPerCycle      = 1000

	defaultReportWorkers = 2
	defaultReportQueue   = 16
)

// Driver owns registered processors and drives the drain/snapshot cycle
// from a single background goroutine.
type Driver struct {
	id     string
	name   string
	logger *slog.Logger
	clock  clock.WithTicker
	health *health.Monitor

	cycleInterval    time.Duration
	snapshotInterval time.Duration
	maxPerCycle      int
	descriptive      bool

	mu         sync.Mutex
	processors []processor.MessageProcessor
	reporters  []Reporter

	latest atomic.Pointer[snapshot.Tree]
	pool   *worker.Pool[reportTask]

	lifecycleMu sync.Mutex
	initialized bool
	started     bool
	stopped     bool
	cancel      context.CancelFunc
	group       *errgroup.Group
	startedAt   time.Time

	// Written by the loop goroutine only.
	lastSnapshotAt time.Time

	cycles         atomic.Uint64
	messages       atomic.Uint64
	snapshots      atomic.Uint64
	lastCycleNanos atomic.Int64
}

// Option configures a driver.
type Option func(*Driver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock substitutes the clock driving the loop and the timestamps.
func WithClock(c clock.WithTicker) Option {
	return func(d *Driver) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithCycleInterval sets the minimum time between drain cycles.
// Non-positive intervals keep the default.
func WithCycleInterval(interval time.Duration) Option {
	return func(d *Driver) {
		if interval > 0 {
			d.cycleInterval = interval
		}
	}
}

// WithSnapshotInterval sets how often the loop assembles and reports a
// snapshot. Non-positive intervals keep the default.
func WithSnapshotInterval(interval time.Duration) Option {
	return func(d *Driver) {
		if interval > 0 {
			d.snapshotInterval = interval
		}
	}
}

// WithMaxPerCycle bounds how many messages one processor may drain per
// cycle. Non-positive values keep the default.
func WithMaxPerCycle(limit int) Option {
	return func(d *Driver) {
		if limit > 0 {
			d.maxPerCycle = limit
		}
	}
}

// WithHealthMonitor makes the loop heartbeat into the monitor at every
// assembled snapshot.
func WithHealthMonitor(m *health.Monitor) Option {
	return func(d *Driver) {
		d.health = m
	}
}

// WithDescriptiveSnapshots controls whether loop-assembled snapshots
// carry titles and descriptions.
func WithDescriptiveSnapshots(enabled bool) Option {
	return func(d *Driver) {
		d.descriptive = enabled
	}
}

// New creates a driver. An empty name falls back to "driver"; the name
// keys the loop statistics subtree in every snapshot.
func New(name string, opts ...Option) *Driver {
	if name == "" {
		name = "driver"
	}
	d := &Driver{
		id:               uuid.New().String(),
		name:             name,
		logger:           slog.Default(),
		clock:            clock.RealClock{},
		cycleInterval:    defaultCycleInterval,
		snapshotInterval: defaultSnapshotInterval,
		maxPerCycle:      defaultMaxPerCycle,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.latest.Store(snapshot.NewTree())
	return d
}

// Name returns the driver name.
func (d *Driver) Name() string { return d.name }

// ID returns the instance id assigned at construction.
func (d *Driver) ID() string { return d.id }

// Register adds a processor to the drain/snapshot walk. Registration is
// allowed while the loop runs; non-empty names must be unique.
func (d *Driver) Register(mp processor.MessageProcessor) error {
	if mp == nil {
		return errors.WrapInvalid(errors.ErrNilComponent, "Driver", "Register", "processor check")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	name := mp.Name()
	if name != "" {
		for _, existing := range d.processors {
			if existing.Name() == name {
				return errors.WrapInvalid(errors.ErrDuplicateName, "Driver", "Register", "name "+name)
			}
		}
	}
	d.processors = append(d.processors, mp)
	d.logger.Debug("Processor registered", "driver", d.name, "processor", name)
	return nil
}

// ProcessorCount returns the number of registered processors.
func (d *Driver) ProcessorCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.processors)
}

// AddReporter adds a snapshot reporter. Reporter names must be unique.
func (d *Driver) AddReporter(r Reporter) error {
	if r == nil {
		return errors.WrapInvalid(errors.ErrNilComponent, "Driver", "AddReporter", "reporter check")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.reporters {
		if existing.Name() == r.Name() {
			return errors.WrapInvalid(errors.ErrDuplicateName, "Driver", "AddReporter", "name "+r.Name())
		}
	}
	d.reporters = append(d.reporters, r)
	return nil
}

// Initialize prepares the reporter pool. Calling it again is a no-op;
// Start initializes implicitly when needed.
func (d *Driver) Initialize() error {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()
	return d.initLocked()
}

func (d *Driver) initLocked() error {
	if d.initialized {
		return nil
	}
	pool, err := worker.NewPool(defaultReportWorkers, defaultReportQueue, d.deliver)
	if err != nil {
		return errors.Wrap(err, "Driver", "Initialize", "reporter pool construction")
	}
	d.pool = pool
	d.initialized = true
	return nil
}

// Start launches the background loop. The loop stops when ctx is
// cancelled or Stop is called.
func (d *Driver) Start(ctx context.Context) error {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()

	if d.stopped {
		return errors.WrapInvalid(errors.ErrAlreadyStopped, "Driver", "Start", "lifecycle check")
	}
	if d.started {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Driver", "Start", "lifecycle check")
	}
	if err := d.initLocked(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.pool.Start(runCtx); err != nil {
		cancel()
		return errors.Wrap(err, "Driver", "Start", "reporter pool launch")
	}

	d.cancel = cancel
	d.startedAt = d.clock.Now()

	g, gctx := errgroup.WithContext(runCtx)
	d.group = g
	g.Go(func() error {
		return d.run(gctx)
	})

	d.started = true
	d.logger.Info("Telemetry driver started",
		"instance_id", d.id,
		"name", d.name,
		"cycle_interval", d.cycleInterval,
		"snapshot_interval", d.snapshotInterval,
		"processors", d.ProcessorCount())
	return nil
}

// Stop signals the loop, waits for it to exit, then shuts down the
// reporter pool. Stopping twice is a no-op.
func (d *Driver) Stop(timeout time.Duration) error {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()

	if !d.started {
		return errors.WrapInvalid(errors.ErrNotStarted, "Driver", "Stop", "lifecycle check")
	}
	if d.stopped {
		return nil
	}

	d.cancel()

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		return errors.WrapTransient(ErrStopTimeout, "Driver", "Stop", "loop join")
	}

	d.stopped = true
	if err := d.pool.Stop(timeout); err != nil {
		return errors.Wrap(err, "Driver", "Stop", "reporter pool shutdown")
	}

	d.logger.Info("Telemetry driver stopped",
		"instance_id", d.id,
		"cycles", d.cycles.Load(),
		"messages", d.messages.Load())
	return nil
}

func (d *Driver) run(ctx context.Context) error {
	ticker := d.clock.NewTicker(d.cycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			d.cycle()
		}
	}
}

// cycle drains every processor once and, when the snapshot interval has
// elapsed, assembles and distributes a fresh tree.
func (d *Driver) cycle() {
	start := d.clock.Now()
	d.ProcessOnce()
	d.cycles.Add(1)

	if start.Sub(d.lastSnapshotAt) >= d.snapshotInterval {
		d.lastSnapshotAt = start
		tree := d.Snapshot(d.descriptive)
		d.latest.Store(tree)
		d.report(tree)
		d.heartbeat(start)
	}

	d.lastCycleNanos.Store(int64(d.clock.Since(start)))
}

// ProcessOnce drains one bounded batch from every registered processor
// and returns the number of messages applied. It can be called without
// the loop running.
func (d *Driver) ProcessOnce() int {
	d.mu.Lock()
	total := 0
	for _, p := range d.processors {
		total += p.ProcessPending(d.maxPerCycle)
	}
	d.mu.Unlock()

	d.messages.Add(uint64(total))
	return total
}

// Snapshot walks the registry and assembles a fresh tree, independent of
// the loop. The driver's loop statistics sit in a subtree under its name.
func (d *Driver) Snapshot(descriptive bool) *snapshot.Tree {
	d.snapshots.Add(1)

	tree := snapshot.NewTree()
	d.mu.Lock()
	for _, p := range d.processors {
		p.PutSnapshot(tree, descriptive)
	}
	d.mu.Unlock()

	d.putStats(tree)
	return tree
}

// Latest returns the most recently assembled snapshot. It never returns
// nil; before the first cycle the tree is empty.
func (d *Driver) Latest() *snapshot.Tree {
	return d.latest.Load()
}

func (d *Driver) report(tree *snapshot.Tree) {
	d.mu.Lock()
	reporters := make([]Reporter, len(d.reporters))
	copy(reporters, d.reporters)
	d.mu.Unlock()

	for _, r := range reporters {
		if err := d.pool.Submit(reportTask{reporter: r, tree: tree}); err != nil {
			d.logger.Debug("Snapshot report dropped", "reporter", r.Name(), "error", err)
		}
	}
}

func (d *Driver) deliver(ctx context.Context, task reportTask) error {
	if err := task.reporter.Report(ctx, task.tree); err != nil {
		d.logger.Warn("Snapshot report failed", "reporter", task.reporter.Name(), "error", err)
		return err
	}
	return nil
}

func (d *Driver) heartbeat(now time.Time) {
	if d.health == nil {
		return
	}

	metrics := &health.Metrics{
		Uptime:            now.Sub(d.startedAt),
		MessagesProcessed: int64(d.messages.Load()),
		LastActivity:      now,
	}
	if d.pool != nil {
		metrics.ErrorCount = int(d.pool.Stats().Failed)
	}
	d.health.Update(d.name, health.Status{
		Healthy: true,
		Status:  "healthy",
		Message: "cycling",
		Metrics: metrics,
	})
}

func (d *Driver) putStats(tree *snapshot.Tree) {
	stats := snapshot.NewTree()
	stats.SetText("instance_id", d.id)
	stats.SetUint("cycles", d.cycles.Load())
	stats.SetUint("messages_processed", d.messages.Load())
	stats.SetUint("snapshots", d.snapshots.Load())
	stats.SetInt("last_cycle_micros", d.lastCycleNanos.Load()/int64(time.Microsecond))
	if d.pool != nil {
		ps := d.pool.Stats()
		reports := snapshot.NewTree()
		reports.SetInt("submitted", ps.Submitted)
		reports.SetInt("processed", ps.Processed)
		reports.SetInt("failed", ps.Failed)
		reports.SetInt("dropped", ps.Dropped)
		stats.SetTree("reports", reports)
	}
	tree.SetTree(d.name, stats)
}
