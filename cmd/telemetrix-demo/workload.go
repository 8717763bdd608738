package main

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/telemetrix/cockpit"
	"github.com/c360/telemetrix/driver"
	"github.com/c360/telemetrix/instrument"
	"github.com/c360/telemetrix/observation"
	"github.com/c360/telemetrix/pkg/timeunit"
	"github.com/c360/telemetrix/processor"
)

// Traffic labels routed through the workload's cockpits.
const (
	labelRequest   = "request"
	labelError     = "error"
	labelEnqueued  = "enqueued"
	labelCompleted = "completed"
)

// workload drives synthetic traffic through two instrumented
// processors so every snapshot surface has something to show.
type workload struct {
	logger *slog.Logger
	web    *processor.Transmitter[string]
	jobs   *processor.Transmitter[string]
	cancel context.CancelFunc
	group  *errgroup.Group
}

// buildWorkload assembles the instrument tree and registers it with the
// driver:
//
//	app/
//	  web/http/requests/{total,per_second,latency_us,...}
//	  web/http/errors/{total,per_second,red_light}
//	  jobs/queue/depth/value
//	  jobs/queue/completed/{total,per_second,stalled}
func buildWorkload(drv *driver.Driver, logger *slog.Logger) (*workload, error) {
	app := processor.NewMount("app")
	app.SetTitle("Demo application")

	webTx, webProc := buildWebProcessor()
	jobsTx, jobsProc := buildJobsProcessor()

	if err := app.Attach(webProc); err != nil {
		return nil, err
	}
	if err := app.Attach(jobsProc); err != nil {
		return nil, err
	}
	if err := drv.Register(app); err != nil {
		return nil, err
	}

	return &workload{logger: logger, web: webTx, jobs: jobsTx}, nil
}

func buildWebProcessor() (*processor.Transmitter[string], *processor.Processor[string]) {
	tx, proc := processor.NewPair[string]("web")
	proc.SetTitle("Synthetic HTTP traffic")

	requests := cockpit.NewPanel[string]("requests")
	requests.SetTitle("Handled requests")
	requests.AcceptLabels(labelRequest)
	requests.SetCounter(instrument.NewCounter("total"))
	requests.SetMeter(instrument.NewMeter("per_second"))
	latency := instrument.NewHistogram("latency_us")
	latency.SetDisplayUnit(timeunit.Microseconds)
	requests.SetHistogram(latency)

	failures := cockpit.NewPanel[string]("errors")
	failures.SetTitle("Failed requests")
	failures.AcceptLabels(labelError)
	failures.SetCounter(instrument.NewCounter("total"))
	failures.SetMeter(instrument.NewMeter("per_second"))
	failures.AddInstrument(instrument.NewOccurrenceIndicator("red_light", 10*time.Second))

	ck := cockpit.New[string]("http")
	// Panel names are fresh on a new cockpit, so these cannot collide.
	_ = ck.AddPanel(requests)
	_ = ck.AddPanel(failures)
	_ = proc.AddCockpit(ck)
	return tx, proc
}

func buildJobsProcessor() (*processor.Transmitter[string], *processor.Processor[string]) {
	tx, proc := processor.NewPair[string]("jobs")
	proc.SetTitle("Background job queue")

	depth := cockpit.NewPanel[string]("depth")
	depth.SetTitle("Jobs waiting")
	depth.AcceptLabels(labelEnqueued, labelCompleted)
	gauge := instrument.NewGauge("value")
	_ = gauge.Track(60)
	depth.SetGauge(gauge)

	completed := cockpit.NewPanel[string]("completed")
	completed.SetTitle("Jobs finished")
	completed.AcceptLabels(labelCompleted)
	completed.SetCounter(instrument.NewCounter("total"))
	completed.SetMeter(instrument.NewMeter("per_second"))
	completed.AddInstrument(instrument.NewNonOccurrenceIndicator("stalled", 5*time.Second))

	ck := cockpit.New[string]("queue")
	_ = ck.AddPanel(depth)
	_ = ck.AddPanel(completed)
	_ = proc.AddCockpit(ck)
	return tx, proc
}

// start launches the traffic generators. They stop when ctx is
// cancelled.
func (w *workload) start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.group = &errgroup.Group{}
	w.group.Go(func() error {
		w.serveTraffic(runCtx)
		return nil
	})
	w.group.Go(func() error {
		w.churnJobs(runCtx)
		return nil
	})
	w.logger.Info("Workload started")
}

// stop halts the generators and closes the observation streams.
func (w *workload) stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	_ = w.group.Wait()
	w.web.Close()
	w.jobs.Close()
	w.logger.Info("Workload stopped",
		"dropped_web", w.web.Dropped(),
		"dropped_jobs", w.jobs.Dropped())
}

// serveTraffic simulates request handling: a short burst of work per
// tick, latency measured end to end, and the occasional failure.
func (w *workload) serveTraffic(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for i := 0; i < 1+rand.Intn(3); i++ {
			start := time.Now()
			busy := time.Duration(50+rand.Intn(4950)) * time.Microsecond
			time.Sleep(busy)
			w.web.MeasureTime(labelRequest, start)

			if rand.Intn(100) < 5 {
				w.web.ObservedOneNow(labelError)
			}
		}
	}
}

// churnJobs keeps a synthetic queue moving. The gauge needs a baseline
// before deltas apply, so the depth is seeded to zero up front.
func (w *workload) churnJobs(ctx context.Context) {
	w.jobs.ObservedOneValueNow(labelEnqueued, observation.SignedValue(0))

	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	depth := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for i := 0; i < rand.Intn(4); i++ {
			depth++
			w.jobs.ObservedOneValueNow(labelEnqueued, observation.ChangedBy(1))
		}
		done := rand.Intn(4)
		if done > depth {
			done = depth
		}
		for i := 0; i < done; i++ {
			depth--
			w.jobs.ObservedOneValueNow(labelCompleted, observation.ChangedBy(-1))
		}
	}
}
