package workers

import (
	"context"
	"log/slog"
	"time"

	"personal-chat/contract"
	"personal-chat/domain/event"
)

// EventFanout delivers domain events to the live members of the event's
// room. It resolves membership at delivery time through the registry,
// so a connection that left between publish and delivery is simply
// skipped.
//
// Fan-out is best effort: no queuing, no retries, no cross-room
// ordering. Within one room, events are delivered in the order their
// store commits completed, which is the order they were published.
type EventFanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	domainEvent chan event.DomainEvent
	telemetry   chan event.DomainEvent
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	domainEvent, telemetry chan event.DomainEvent, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:         log,
		registry:    registry,
		domainEvent: domainEvent,
		telemetry:   telemetry,
		sinkTimeout: sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.domainEvent:
			w.Fanout(ctx, evt)
			select {
			case w.telemetry <- evt:
			default:
				w.log.Debug("Observability telemetry event lost")
			}
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fan-out")
			return nil
		}
	}
}

// Fanout pushes one event to every sink currently in its room. A slow
// sink only burns its own timeout; it cannot block the others.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	sinks := w.registry.SinksForRoom(evt.RoomKey())
	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("sink delivery failed", "room", evt.RoomKey(), "error", err)
		}
		cancel()
	}
}
