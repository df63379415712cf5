package workers

import (
	"context"
	"log/slog"

	"github.com/abadojack/whatlanggo"

	"personal-chat/domain/event"
)

// MessageStatsWorker consumes the telemetry copy of domain events and
// logs lightweight per-message statistics: body length and detected
// language. Purely observational; it never touches domain state.
type MessageStatsWorker struct {
	log       *slog.Logger
	telemetry chan event.DomainEvent
}

func NewMessageStatsWorker(log *slog.Logger, telemetry chan event.DomainEvent) *MessageStatsWorker {
	return &MessageStatsWorker{log: log, telemetry: telemetry}
}

func (w *MessageStatsWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping message stats")
			return nil
		case evt := <-w.telemetry:
			w.handle(evt)
		}
	}
}

func (w *MessageStatsWorker) handle(evt event.DomainEvent) {
	received, ok := evt.(event.MessageReceived)
	if !ok || received.Message.Body == "" {
		return
	}
	info := whatlanggo.Detect(received.Message.Body)
	w.log.Info("telemetry: message stats",
		"room", received.Room,
		"sender", received.Message.Sender,
		"length", len(received.Message.Body),
		"lang", info.Lang.String(),
		"lang_confidence", info.Confidence,
	)
}
