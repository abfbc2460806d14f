package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/teranga/client-registry/internal/api/metrics"
	"github.com/teranga/client-registry/internal/core/domain"
	"github.com/teranga/client-registry/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// subscription is one handler with its own set of sharded worker channels.
// Giving every handler a private queue keeps a slow or failing handler from
// delaying the others.
type subscription struct {
	handler ports.RegistrationHandler
	shards  []chan domain.RegistrationEvent
}

// Bus is the in-process registration event bus. Publish enqueues the event
// onto every subscriber's queue and returns immediately; worker goroutines
// invoke the handlers off the request path. Events for the same client always
// land on the same shard, preserving per-client ordering.
type Bus struct {
	subs       []subscription
	numWorkers int
	log        zerolog.Logger
	wg         sync.WaitGroup
}

// NewBus creates a Bus with numWorkers sharded workers per subscriber.
// If numWorkers <= 0, defaultWorkers is used.
func NewBus(numWorkers int, log zerolog.Logger) *Bus {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Bus{numWorkers: numWorkers, log: log}
}

// Subscribe registers a handler. Must be called before Start.
func (b *Bus) Subscribe(handler ports.RegistrationHandler) {
	shards := make([]chan domain.RegistrationEvent, b.numWorkers)
	for i := range shards {
		shards[i] = make(chan domain.RegistrationEvent, channelBuffer)
	}
	b.subs = append(b.subs, subscription{handler: handler, shards: shards})
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// when Stop closes their queues. ctx should outlive the HTTP server: cancelling
// it abandons whatever is still buffered, use Stop for a clean drain.
func (b *Bus) Start(ctx context.Context) {
	for _, sub := range b.subs {
		for i, ch := range sub.shards {
			b.wg.Add(1)
			go b.runWorker(ctx, sub.handler, i, ch)
		}
	}
}

// Stop closes every queue and blocks until the workers have drained them.
// Publish must not be called after Stop.
func (b *Bus) Stop() {
	for _, sub := range b.subs {
		for _, ch := range sub.shards {
			close(ch)
		}
	}
	b.wg.Wait()
}

// Publish fans the event out to every subscriber. Non-blocking up to
// channelBuffer capacity per shard.
func (b *Bus) Publish(event domain.RegistrationEvent) {
	idx := shardIndex(event.Client.ID, b.numWorkers)
	for _, sub := range b.subs {
		sub.shards[idx] <- event
		metrics.EventQueueDepth.WithLabelValues(sub.handler.Name()).Set(float64(len(sub.shards[idx])))
	}
}

// shardIndex maps a client id deterministically to a worker index.
func shardIndex(clientID string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(clientID))
	return int(h.Sum32()) % n
}

func (b *Bus) runWorker(ctx context.Context, handler ports.RegistrationHandler, id int, ch <-chan domain.RegistrationEvent) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.EventQueueDepth.WithLabelValues(handler.Name()).Set(float64(len(ch)))
			b.dispatch(ctx, handler, id, event)
		}
	}
}

// dispatch runs a single handler invocation. Failures are terminal for the
// invocation: logged, counted, never retried, and never allowed to touch the
// already-committed registration or the other handlers.
func (b *Bus) dispatch(ctx context.Context, handler ports.RegistrationHandler, workerID int, event domain.RegistrationEvent) {
	start := time.Now()
	err := handler.Handle(ctx, event)
	metrics.HandlerDuration.WithLabelValues(handler.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.HandlerFailuresTotal.WithLabelValues(handler.Name()).Inc()
		b.log.Error().Err(err).
			Str("handler", handler.Name()).
			Str("client_id", event.Client.ID).
			Str("worker_id", strconv.Itoa(workerID)).
			Msg("registration handler failed")
	}
}
