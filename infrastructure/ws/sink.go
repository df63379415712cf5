package ws

import (
	"context"
	"log/slog"

	"personal-chat/domain/event"
)

// Sink is the per-connection delivery target registered in the room
// registry. Consume hands events to the connection's write pump
// through a buffered channel; a full buffer means the client is too
// slow and the event is dropped for that connection only.
type Sink struct {
	log    *slog.Logger
	events chan event.DomainEvent
}

func NewSink(log *slog.Logger, bufferSize int) *Sink {
	return &Sink{
		log:    log,
		events: make(chan event.DomainEvent, bufferSize),
	}
}

// Events exposes the channel drained by the write pump.
func (s *Sink) Events() <-chan event.DomainEvent {
	return s.events
}

func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		s.log.Debug("sink consume timed out, dropping event", "room", e.RoomKey())
		return ctx.Err()
	}
}
