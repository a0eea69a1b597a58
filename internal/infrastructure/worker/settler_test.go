package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/adledger/internal/domain"
)

type recordingService struct {
	mu      sync.Mutex
	jobs    []Job
	settled atomic.Int64
	block   chan struct{}
}

func (s *recordingService) SettleView(ctx context.Context, adID, viewerID, deviceID string) (*domain.Settlement, error) {
	if s.block != nil {
		<-s.block
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, Job{AdID: adID, ViewerID: viewerID, DeviceID: deviceID})
	s.mu.Unlock()
	s.settled.Add(1)

	return &domain.Settlement{
		Outcome:  domain.OutcomeSettled,
		AdID:     adID,
		ViewerID: viewerID,
		DeviceID: deviceID,
	}, nil
}

func newTestDispatcher(svc SettlementService, workers, queueSize int) *Dispatcher {
	return NewDispatcher(Config{
		Service:   svc,
		Logger:    zerolog.Nop(),
		Workers:   workers,
		QueueSize: queueSize,
		Timeout:   time.Second,
	})
}

func TestDispatcherProcessesQueuedJobs(t *testing.T) {
	svc := &recordingService{}
	d := newTestDispatcher(svc, 4, 64)
	d.Start()

	for i := 0; i < 50; i++ {
		require.True(t, d.Enqueue(Job{AdID: "ad-1", ViewerID: "viewer-1", DeviceID: "dev"}))
	}

	d.Stop()

	assert.Equal(t, int64(50), svc.settled.Load())
}

func TestDispatcherStopWaitsForInFlightJobs(t *testing.T) {
	svc := &recordingService{block: make(chan struct{})}
	d := newTestDispatcher(svc, 1, 8)
	d.Start()

	require.True(t, d.Enqueue(Job{AdID: "ad-1", ViewerID: "viewer-1", DeviceID: "dev"}))

	done := make(chan struct{})
	go func() {
		d.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stop returned while a job was still in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(svc.block)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after jobs drained")
	}

	assert.Equal(t, int64(1), svc.settled.Load())
}

func TestDispatcherEnqueueRejectsWhenFull(t *testing.T) {
	svc := &recordingService{block: make(chan struct{})}
	d := newTestDispatcher(svc, 1, 1)
	d.Start()

	// First job occupies the single worker, second fills the queue.
	require.True(t, d.Enqueue(Job{AdID: "ad-1", ViewerID: "v", DeviceID: "d1"}))

	deadline := time.After(time.Second)
	for {
		if d.Enqueue(Job{AdID: "ad-1", ViewerID: "v", DeviceID: "d2"}) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("queue never accepted the second job")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	assert.False(t, d.Enqueue(Job{AdID: "ad-1", ViewerID: "v", DeviceID: "d3"}))

	close(svc.block)
	d.Stop()
}
