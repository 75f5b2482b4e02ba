// Package activity drains domain events into the append-only audit trail.
// Writes are best-effort: a slow or failing sink never blocks or fails the
// operation that emitted the event.
package activity

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/campus-hub/support-service/internal/domain"
	"github.com/campus-hub/support-service/internal/events"
	"github.com/campus-hub/support-service/internal/repository"
)

// Recorder buffers events on a bounded queue and persists them from a single
// background goroutine. When the queue is full the record is dropped.
type Recorder struct {
	repo   repository.ActivityRepository
	logger *zap.Logger
	queue  chan events.Event
	done   chan struct{}
	once   sync.Once
}

// NewRecorder creates a recorder with the given queue capacity.
func NewRecorder(repo repository.ActivityRepository, logger *zap.Logger, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Recorder{
		repo:   repo,
		logger: logger,
		queue:  make(chan events.Event, queueSize),
		done:   make(chan struct{}),
	}
}

// Start subscribes the recorder to audit-relevant events and launches the
// drain goroutine.
func (r *Recorder) Start(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketUpdated,
		events.EventTicketReopened,
		events.EventTicketDeleted,
		events.EventMessageAdded,
	} {
		dispatcher.Subscribe(eventType, r.enqueue)
	}
	go r.drain()
}

// Stop closes the queue and waits for buffered records to flush.
func (r *Recorder) Stop() {
	r.once.Do(func() {
		close(r.queue)
	})
	<-r.done
}

func (r *Recorder) enqueue(_ context.Context, event events.Event) error {
	select {
	case r.queue <- event:
	default:
		r.logger.Warn("activity queue full, dropping record",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID))
	}
	return nil
}

func (r *Recorder) drain() {
	defer close(r.done)
	for event := range r.queue {
		record := &domain.ActivityRecord{
			ID:          event.ID,
			Action:      event.Action,
			Description: event.Description,
			Actor:       event.Actor.Tag(),
		}
		// Detached from the request context: the request may already be done.
		if err := r.repo.Create(context.Background(), record); err != nil {
			r.logger.Warn("activity write failed",
				zap.String("action", record.Action),
				zap.Error(err))
		}
	}
}
