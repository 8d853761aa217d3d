package hub

import (
	"sync"

	"sagetracker/backend/internal/events"

	"go.uber.org/zap"
)

// DropRecorder counts jobs rejected by a full queue.
type DropRecorder interface {
	DispatchDropped(event events.Name)
}

type job struct {
	userID string
	event  events.Event
}

// Queue runs emits on a bounded pool of background workers so producers never
// wait for delivery. When the buffer is full the job is dropped.
type Queue struct {
	emitter  Emitter
	jobs     chan job
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	recorder DropRecorder
	logger   *zap.Logger
}

// NewQueue starts workers goroutines draining a buffer of size capacity.
func NewQueue(emitter Emitter, workers, capacity int, recorder DropRecorder, logger *zap.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	if capacity < 0 {
		capacity = 0
	}
	q := &Queue{
		emitter:  emitter,
		jobs:     make(chan job, capacity),
		recorder: recorder,
		logger:   logger.With(zap.String("component", "dispatch_queue")),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	return q
}

var _ Emitter = (*Queue)(nil)

// EmitToUser enqueues the emit without blocking.
func (q *Queue) EmitToUser(userID string, event events.Event) {
	q.Submit(userID, event)
}

// Submit enqueues an emit and reports whether it was accepted.
func (q *Queue) Submit(userID string, event events.Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.drop(userID, event, "queue closed")
		return false
	}
	select {
	case q.jobs <- job{userID: userID, event: event}:
		return true
	default:
		q.drop(userID, event, "queue full")
		return false
	}
}

// Close stops accepting jobs, drains what is buffered and waits for the workers.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) work() {
	defer q.wg.Done()
	for j := range q.jobs {
		q.run(j)
	}
}

func (q *Queue) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("recovered from panic in emit",
				zap.Any("panic", r),
				zap.String("userId", j.userID),
				zap.String("event", string(j.event.Name())))
		}
	}()
	q.emitter.EmitToUser(j.userID, j.event)
}

func (q *Queue) drop(userID string, event events.Event, reason string) {
	if q.recorder != nil {
		q.recorder.DispatchDropped(event.Name())
	}
	q.logger.Warn("dropping event",
		zap.String("reason", reason),
		zap.String("userId", userID),
		zap.String("event", string(event.Name())))
}
