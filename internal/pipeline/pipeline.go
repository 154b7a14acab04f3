package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/metar-entity-sync/internal/domain"
	"github.com/couchcryptid/metar-entity-sync/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// ObservationSource fetches the current observation for each requested station.
// Per-station problems are reported in the result map; a returned error means
// nothing could be fetched and should wrap domain.ErrCycleFetch.
type ObservationSource interface {
	Fetch(ctx context.Context, stationIDs []string) (map[string]domain.ObservationResult, error)
}

// EntitySink publishes one station entity to the entity directory.
type EntitySink interface {
	Publish(ctx context.Context, entity domain.StationEntity) error
}

// State is the loop's current phase.
type State string

const (
	StateIdle       State = "IDLE"
	StateFetching   State = "FETCHING"
	StateProcessing State = "PROCESSING"
)

// Options tunes the reconciliation loop. Zero values take the defaults.
type Options struct {
	Interval       time.Duration // between cycles; default 30m
	RecoveryWait   time.Duration // after an unexpected failure; default 5m
	EntityTTL      time.Duration // default domain.DefaultEntityTTL
	PublishTimeout time.Duration // per publish call; default 10s
	Concurrency    int           // concurrent publishes per cycle; default 4
	Clock          clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 30 * time.Minute
	}
	if o.RecoveryWait <= 0 {
		o.RecoveryWait = 5 * time.Minute
	}
	if o.EntityTTL <= 0 {
		o.EntityTTL = domain.DefaultEntityTTL
	}
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = 10 * time.Second
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// CycleReport tallies the outcome of one cycle.
type CycleReport struct {
	StartedAt  time.Time                     `json:"started_at"`
	Duration   time.Duration                 `json:"duration_ns"`
	Stations   int                           `json:"stations"`
	Published  int                           `json:"published"`
	Failed     int                           `json:"failed"`
	Skipped    int                           `json:"skipped"`
	Categories map[domain.FlightCategory]int `json:"categories"`
}

// Status is a point-in-time view of the loop for the ops endpoint.
type Status struct {
	State     State        `json:"state"`
	Ready     bool         `json:"ready"`
	LastCycle *CycleReport `json:"last_cycle,omitempty"`
}

// Pipeline is the reconciliation loop: every interval it fetches observations
// for all stations, synthesizes their entities, and publishes them.
type Pipeline struct {
	source   ObservationSource
	sink     EntitySink
	stations domain.StationTable
	opts     Options
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
	state    atomic.Value
	last     atomic.Pointer[CycleReport]
}

// New creates a Pipeline over an immutable station table.
func New(source ObservationSource, sink EntitySink, stations domain.StationTable, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	p := &Pipeline{
		source:   source,
		sink:     sink,
		stations: stations,
		opts:     opts.withDefaults(),
		logger:   logger,
		metrics:  metrics,
	}
	p.state.Store(StateIdle)
	return p
}

// CheckReadiness returns nil once a cycle has published at least one entity.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no entities published yet")
	}
	return nil
}

// State reports the loop's current phase.
func (p *Pipeline) State() State {
	return p.state.Load().(State)
}

// Status reports the current phase and the outcome of the last completed cycle.
func (p *Pipeline) Status() Status {
	return Status{
		State:     p.State(),
		Ready:     p.ready.Load(),
		LastCycle: p.last.Load(),
	}
}

// StatusSnapshot returns Status for callers that only need it serialized.
func (p *Pipeline) StatusSnapshot() any {
	return p.Status()
}

// Run executes cycles until the context is cancelled. A cycle whose fetch
// fails waits the normal interval; any other failure waits the shorter
// recovery period. Run only returns on cancellation.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"stations", p.stations.Len(),
		"interval", p.opts.Interval,
		"entity_ttl", p.opts.EntityTTL,
	)
	p.metrics.LoopRunning.Set(1)
	defer p.metrics.LoopRunning.Set(0)

	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		wait := p.opts.Interval
		if _, err := p.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			if errors.Is(err, domain.ErrCycleFetch) {
				p.logger.Error("cycle fetch failed, skipping cycle", "error", err)
				p.metrics.CyclesTotal.WithLabelValues("fetch_error").Inc()
			} else {
				wait = p.opts.RecoveryWait
				p.logger.Error("cycle failed unexpectedly, entering recovery wait", "error", err, "wait", wait)
				p.metrics.CyclesTotal.WithLabelValues("unexpected").Inc()
			}
		}

		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		p.logger.Info("waiting for next cycle", "wait", wait)
		if !sleepWithClock(ctx, p.opts.Clock, wait) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunCycle performs a single fetch-synthesize-publish pass. Per-station
// failures are tallied in the report; the returned error is reserved for
// failures of the cycle as a whole, including recovered panics.
func (p *Pipeline) RunCycle(ctx context.Context) (report CycleReport, err error) {
	var g errgroup.Group
	defer func() {
		if r := recover(); r != nil {
			// Publishes already dispatched must finish before the cycle ends.
			_ = g.Wait()
			err = fmt.Errorf("cycle panic: %v", r)
		}
		p.state.Store(StateIdle)
	}()

	start := p.opts.Clock.Now().UTC()
	ids := p.stations.IDs()
	report = CycleReport{
		StartedAt:  start,
		Stations:   len(ids),
		Categories: make(map[domain.FlightCategory]int, len(domain.FlightCategories)),
	}

	p.state.Store(StateFetching)
	p.logger.Debug("fetching observations", "stations", len(ids))
	results, err := p.source.Fetch(ctx, ids)
	if err != nil {
		return report, fmt.Errorf("fetch observations: %w", err)
	}

	p.state.Store(StateProcessing)
	var (
		published atomic.Int64
		failed    atomic.Int64
	)
	g.SetLimit(p.opts.Concurrency)

	for _, id := range ids {
		station, _ := p.stations.Get(id)
		obs, obsErr := observationFor(results, id)
		if obsErr != nil {
			p.logger.Warn("skipping station", "station", id, "error", obsErr)
			p.metrics.ObservationErrors.Inc()
			report.Skipped++
			continue
		}

		entity := domain.Synthesize(station, obs, start, p.opts.EntityTTL)
		report.Categories[entity.FlightCategory]++

		g.Go(func() error {
			// A panicking sink fails this station only.
			defer func() {
				if r := recover(); r != nil {
					failed.Add(1)
					p.metrics.PublishErrors.Inc()
					p.logger.Error("publish entity panicked",
						"station", id,
						"entity_id", entity.EntityID,
						"panic", r,
					)
				}
			}()

			if perr := p.publish(ctx, entity); perr != nil {
				failed.Add(1)
				p.metrics.PublishErrors.Inc()
				p.logger.Error("publish entity failed",
					"station", id,
					"entity_id", entity.EntityID,
					"error", perr,
				)
				return nil
			}
			published.Add(1)
			p.metrics.EntitiesPublished.Inc()
			p.logger.Debug("published entity",
				"station", id,
				"entity_id", entity.EntityID,
				"flight_category", entity.FlightCategory,
				"disposition", entity.Disposition,
			)
			return nil
		})
	}

	_ = g.Wait() // publish goroutines report through the tally, never an error
	report.Published = int(published.Load())
	report.Failed = int(failed.Load())
	report.Duration = p.opts.Clock.Since(start)

	p.recordCycle(report)
	return report, nil
}

// publish bounds a single publish call by the per-call timeout. The call is
// detached from ctx so shutdown does not abort a request mid-flight.
func (p *Pipeline) publish(ctx context.Context, entity domain.StationEntity) error {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.opts.PublishTimeout)
	defer cancel()
	return p.sink.Publish(pubCtx, entity)
}

func (p *Pipeline) recordCycle(report CycleReport) {
	p.last.Store(&report)
	p.metrics.CyclesTotal.WithLabelValues("ok").Inc()
	p.metrics.CycleDuration.Observe(report.Duration.Seconds())
	for _, c := range domain.FlightCategories {
		p.metrics.StationsByCategory.WithLabelValues(string(c)).Set(float64(report.Categories[c]))
	}
	if report.Published > 0 {
		p.metrics.LastCycleSuccess.Set(float64(report.StartedAt.Unix()))
		p.ready.Store(true)
	}

	p.logger.Info("cycle complete",
		"published", report.Published,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"stations", report.Stations,
		"duration", report.Duration,
	)
}

// observationFor extracts a station's observation from a fetch result,
// treating a missing entry as domain.ErrNoObservation.
func observationFor(results map[string]domain.ObservationResult, id string) (domain.Observation, error) {
	res, ok := results[id]
	if !ok {
		return domain.Observation{}, domain.ErrNoObservation
	}
	if res.Err != nil {
		return domain.Observation{}, res.Err
	}
	if res.Observation == nil {
		return domain.Observation{}, domain.ErrNoObservation
	}
	return *res.Observation, nil
}

func sleepWithClock(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
