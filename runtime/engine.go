// Package runtime hosts the presence registry, room membership and the
// delivery engine. It orchestrates event flow between the transport,
// the conversation store and the connected clients without containing
// domain rules itself.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"personal-chat/contract"
	"personal-chat/domain"
	"personal-chat/domain/event"
	"personal-chat/errors"
	"personal-chat/moderation"
	"personal-chat/repositories"
	"personal-chat/runtime/workers"
)

// Engine validates inbound transport events, persists messages through
// the conversation store, and fans persisted events out to the right
// room. Fan-out happens strictly after the store commit, so receivers
// only ever see what is durably persisted, in commit order.
type Engine struct {
	log           *slog.Logger
	presence      contract.IPresenceRegistry
	registry      contract.IRegistry
	conversations repositories.IConversationRepository
	moderator     *moderation.Moderator
	supervisor    contract.ISupervisor
	domainEvents  chan event.DomainEvent
	telemetry     chan event.DomainEvent
	sinkTimeout   time.Duration
}

func NewEngine(log *slog.Logger, supervisor contract.ISupervisor,
	presence contract.IPresenceRegistry, registry contract.IRegistry,
	conversations repositories.IConversationRepository,
	moderator *moderation.Moderator,
	bufferSize int, sinkTimeout time.Duration) *Engine {
	return &Engine{
		log:           log,
		presence:      presence,
		registry:      registry,
		conversations: conversations,
		moderator:     moderator,
		supervisor:    supervisor,
		domainEvents:  make(chan event.DomainEvent, bufferSize),
		telemetry:     make(chan event.DomainEvent, bufferSize),
		sinkTimeout:   sinkTimeout,
	}
}

// Start registers the fan-out and telemetry workers and blocks inside
// the supervisor until ctx is canceled.
func (e *Engine) Start(ctx context.Context, metricInterval time.Duration, lowCapacityThreshold int) {
	fanout := workers.NewEventFanout(e.log, e.registry, e.domainEvents, e.telemetry, e.sinkTimeout)
	stats := workers.NewMessageStatsWorker(e.log, e.telemetry)
	capacity := workers.NewChannelCapacityWorker(e.log, []workers.NamedChannel{
		{Name: "domainEvents", Channel: e.domainEvents},
		{Name: "telemetry", Channel: e.telemetry},
	}, metricInterval, lowCapacityThreshold)

	e.supervisor.Add(fanout, stats, capacity)

	e.log.Info("Starting delivery engine and supervised workers")
	e.supervisor.Run(ctx)
}

// AnnouncePresence records the identity for a connection, joins it to
// the broadcast room and publishes a fresh snapshot. An anonymous
// announce is silently ignored; presence is never tracked for
// connections that have not identified themselves.
func (e *Engine) AnnouncePresence(connID domain.ConnectionID, identity domain.Identity, displayName string, sink contract.EventSink) {
	if !e.presence.Announce(connID, identity, displayName) {
		e.log.Debug("ignoring anonymous presence announce", "connection", connID)
		return
	}
	e.registry.Subscribe(connID, domain.BroadcastRoom(), sink)
	e.publishSnapshot()
}

// WatchPresence joins a connection to the broadcast room without
// announcing an identity, and returns the current snapshot so the
// transport can hand it to the new watcher immediately.
func (e *Engine) WatchPresence(connID domain.ConnectionID, sink contract.EventSink) []domain.PresenceEntry {
	e.registry.Subscribe(connID, domain.BroadcastRoom(), sink)
	return e.presence.Snapshot()
}

// Logout removes the connection's presence entry while leaving the
// transport session open. Publishing is skipped when the entry was
// already gone, so a logout followed by the disconnect broadcasts only
// once.
func (e *Engine) Logout(connID domain.ConnectionID) {
	if e.presence.Remove(connID) {
		e.publishSnapshot()
	}
}

// Disconnect is the transport-close path: presence entry and all room
// memberships are cleaned up atomically with the connection's
// destruction, regardless of any persistence operation still in
// flight for it.
func (e *Engine) Disconnect(connID domain.ConnectionID) {
	changed := e.presence.Remove(connID)
	e.registry.Drop(connID)
	if changed {
		e.publishSnapshot()
	}
}

// JoinConversation puts the connection into the pairwise room for the
// two identities. Both ends derive the identical key whichever order
// they pass the participants in.
func (e *Engine) JoinConversation(connID domain.ConnectionID, a, b domain.Identity, sink contract.EventSink) domain.RoomKey {
	roomKey := domain.PairwiseRoom(a, b)
	e.registry.Subscribe(connID, roomKey, sink)
	return roomKey
}

// Send validates, persists and fans out one message. The fan-out
// carries the persisted message (store-assigned id and timestamp), and
// goes to the pairwise room only, never to the broadcast channel. When
// persistence fails nothing is delivered at all.
func (e *Engine) Send(ctx context.Context, sender, recipient domain.Identity, body string, file *domain.FileDescriptor) (domain.Message, error) {
	if sender == "" || recipient == "" || (body == "" && file == nil) {
		e.log.Warn("dropping invalid send event", "sender", sender, "recipient", recipient)
		return domain.Message{}, errors.ErrInvalidMessage
	}

	if e.moderator != nil && body != "" {
		body = e.moderator.Censor(body)
	}

	persisted, err := e.conversations.Append(sender, recipient, domain.Message{
		Sender: sender,
		Body:   body,
		File:   file,
	})
	if err != nil {
		e.log.Error("message append failed", "sender", sender, "error", err)
		return domain.Message{}, err
	}

	e.publish(ctx, event.MessageReceived{
		Room:    domain.PairwiseRoom(sender, recipient),
		Message: persisted,
	})
	return persisted, nil
}

// Delete removes a message by id on behalf of the requester. The store
// enforces the sender-must-match rule; on NotFound or Forbidden no
// notice is fanned out and other clients learn nothing, not even
// whether the message existed.
func (e *Engine) Delete(ctx context.Context, messageID uuid.UUID, requester domain.Identity) error {
	roomKey, err := e.conversations.Remove(messageID, requester)
	if err != nil {
		e.log.Warn("message delete rejected", "message", messageID, "error", err)
		return err
	}

	e.publish(ctx, event.MessageDeleted{Room: roomKey, MessageID: messageID})
	return nil
}

// FetchConversation is the synchronous query path used by the HTTP
// layer.
func (e *Engine) FetchConversation(a, b domain.Identity) (domain.Conversation, error) {
	return e.conversations.Fetch(a, b)
}

func (e *Engine) publishSnapshot() {
	e.publish(context.Background(), event.PresenceChanged{Entries: e.presence.Snapshot()})
}

func (e *Engine) publish(_ context.Context, evt event.DomainEvent) {
	select {
	case e.domainEvents <- evt:
	default:
		e.log.Warn(fmt.Sprintf("Domain event channel full, dropping event for room %s", evt.RoomKey()))
	}
}
