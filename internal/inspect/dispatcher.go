package inspect

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rmello/clamtap/pkg/types"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

// dispatcher runs scans on a bounded worker pool so the coordinator's
// entry point never waits on a slow or hung daemon. Intake is a buffered
// queue; a full queue drops the submission rather than blocking.
type dispatcher struct {
	mu     sync.RWMutex
	closed bool
	queue  chan types.Exchange

	group   *errgroup.Group
	dropped atomic.Uint64
	log     zerolog.Logger
}

func newDispatcher(workers, queueSize int, scan func(context.Context, types.Exchange), log zerolog.Logger) *dispatcher {
	if workers < 1 {
		workers = defaultWorkers
	}
	if queueSize < 1 {
		queueSize = defaultQueueSize
	}

	d := &dispatcher{
		queue: make(chan types.Exchange, queueSize),
		group: &errgroup.Group{},
		log:   log,
	}

	for i := 0; i < workers; i++ {
		d.group.Go(func() error {
			for ex := range d.queue {
				scan(context.Background(), ex)
			}
			return nil
		})
	}
	return d
}

// submit enqueues an exchange for scanning. It returns false when the
// queue is full or intake is already closed.
func (d *dispatcher) submit(ex types.Exchange) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}
	select {
	case d.queue <- ex:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// drain closes intake and waits for the workers to finish the queued
// scans, or for ctx to expire. Safe to call more than once.
func (d *dispatcher) drain(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.log.Warn().Msg("drain deadline hit, abandoning outstanding scans")
		return ctx.Err()
	}
}

func (d *dispatcher) droppedCount() uint64 { return d.dropped.Load() }
