// Package worker runs view settlements off the request path. The view
// gateway redirects the browser immediately and hands the billing
// decision to a pool of settlement workers.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/adledger/internal/domain"
	"github.com/iho/adledger/internal/infrastructure/metrics"
)

// SettlementService is the part of the settlement use case the workers need.
type SettlementService interface {
	SettleView(ctx context.Context, adID, viewerID, deviceID string) (*domain.Settlement, error)
}

// Job is one queued settlement attempt.
type Job struct {
	AdID     string
	ViewerID string
	DeviceID string
}

// Dispatcher fans queued settlement jobs out to a fixed pool of workers.
// Jobs run on a detached context so a closed browser connection never
// aborts a billing decision mid-flight.
type Dispatcher struct {
	svc     SettlementService
	logger  zerolog.Logger
	metrics *metrics.Metrics
	jobs    chan Job
	timeout time.Duration
	workers int
	wg      sync.WaitGroup
}

// Config for Dispatcher.
type Config struct {
	Service   SettlementService
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// NewDispatcher creates a dispatcher. Start must be called before Enqueue.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Dispatcher{
		svc:     cfg.Service,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		jobs:    make(chan Job, cfg.QueueSize),
		timeout: cfg.Timeout,
		workers: cfg.Workers,
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	d.logger.Info().
		Int("workers", d.workers).
		Int("queue_size", cap(d.jobs)).
		Msg("settlement dispatcher started")

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
}

// Enqueue queues a settlement job without blocking. It reports false
// when the queue is full; the view is lost for billing but the redirect
// already happened, which is the cheaper failure.
func (d *Dispatcher) Enqueue(job Job) bool {
	select {
	case d.jobs <- job:
		if d.metrics != nil {
			d.metrics.SettlementQueue.Set(float64(len(d.jobs)))
		}
		return true
	default:
		if d.metrics != nil {
			d.metrics.SettlementDropped.Inc()
		}
		d.logger.Warn().
			Str("ad_id", job.AdID).
			Str("device_id", job.DeviceID).
			Msg("settlement queue full, dropping view")
		return false
	}
}

// Stop drains the queue and waits for in-flight settlements to finish.
func (d *Dispatcher) Stop() {
	close(d.jobs)
	d.wg.Wait()
	d.logger.Info().Msg("settlement dispatcher stopped")
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for job := range d.jobs {
		d.settle(job)
		if d.metrics != nil {
			d.metrics.SettlementQueue.Set(float64(len(d.jobs)))
		}
	}
}

func (d *Dispatcher) settle(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	settlement, err := d.svc.SettleView(ctx, job.AdID, job.ViewerID, job.DeviceID)
	elapsed := time.Since(start)

	if err != nil {
		if d.metrics != nil {
			d.metrics.SettlementErrors.WithLabelValues("settle").Inc()
		}
		d.logger.Error().Err(err).
			Str("ad_id", job.AdID).
			Str("viewer_id", job.ViewerID).
			Str("device_id", job.DeviceID).
			Msg("settlement failed")
		return
	}

	if d.metrics != nil {
		d.metrics.SettlementOutcomes.WithLabelValues(string(settlement.Outcome)).Inc()
		d.metrics.SettlementDuration.Observe(elapsed.Seconds())
		if settlement.Outcome.Billable() {
			amount, _ := settlement.Amount.Float64()
			d.metrics.SettlementAmount.Observe(amount)
			d.metrics.ViewerCredits.Inc()
			if !settlement.AdStillActive {
				d.metrics.AdsExhausted.Inc()
			}
		}
	}

	d.logger.Debug().
		Str("ad_id", job.AdID).
		Str("viewer_id", job.ViewerID).
		Str("device_id", job.DeviceID).
		Str("outcome", string(settlement.Outcome)).
		Dur("elapsed", elapsed).
		Msg("settlement completed")
}
