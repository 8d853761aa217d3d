package hub

import (
	"errors"
	"fmt"

	"sagetracker/backend/internal/events"

	"go.uber.org/zap"
)

// ErrDeliveryFailure wraps a failed hand-off to a single connection.
var ErrDeliveryFailure = errors.New("delivery failure")

// Transport hands a frame to one live connection. Send must not block on
// network I/O.
type Transport interface {
	Send(connID string, frame []byte) error
}

// Emitter is the write-side API used by domain event producers.
type Emitter interface {
	EmitToUser(userID string, event events.Event)
}

// DeliveryRecorder counts delivery attempts by outcome.
type DeliveryRecorder interface {
	DeliveryAttempted(event events.Name, ok bool)
}

// Dispatcher pushes events to every live connection of a user, best-effort.
type Dispatcher struct {
	registry  *Registry
	transport Transport
	recorder  DeliveryRecorder
	logger    *zap.Logger
}

// NewDispatcher creates a Dispatcher. recorder may be nil.
func NewDispatcher(registry *Registry, transport Transport, recorder DeliveryRecorder, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		transport: transport,
		recorder:  recorder,
		logger:    logger.With(zap.String("component", "dispatcher")),
	}
}

var _ Emitter = (*Dispatcher)(nil)

// EmitToUser delivers event to each of userID's connections. An offline user
// is a silent no-op. A failure on one connection never stops the others and is
// never returned to the caller.
func (d *Dispatcher) EmitToUser(userID string, event events.Event) {
	conns := d.registry.ListConnections(userID)
	if len(conns) == 0 {
		d.logger.Debug("user offline, skipping emit",
			zap.String("userId", userID),
			zap.String("event", string(event.Name())))
		return
	}

	frame, err := events.Encode(event)
	if err != nil {
		d.logger.Error("failed to encode event",
			zap.String("event", string(event.Name())),
			zap.Error(err))
		return
	}

	delivered := 0
	for _, connID := range conns {
		err := d.transport.Send(connID, frame)
		if d.recorder != nil {
			d.recorder.DeliveryAttempted(event.Name(), err == nil)
		}
		if err != nil {
			d.logger.Warn("failed to deliver event",
				zap.String("userId", userID),
				zap.String("connId", connID),
				zap.String("event", string(event.Name())),
				zap.Error(fmt.Errorf("%w: %v", ErrDeliveryFailure, err)))
			continue
		}
		delivered++
	}

	d.logger.Debug("emitted event",
		zap.String("userId", userID),
		zap.String("event", string(event.Name())),
		zap.Int("connections", len(conns)),
		zap.Int("delivered", delivered))
}
