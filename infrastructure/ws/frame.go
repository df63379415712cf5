// Package ws is the push transport: one websocket connection per
// client, JSON frames both ways. Inbound frames name the logical chat
// events; outbound frames carry presence snapshots and persisted
// messages.
package ws

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"personal-chat/domain"
	"personal-chat/domain/event"
)

// Inbound event names.
const (
	EventAnnouncePresence = "announce_presence"
	EventWatchPresence    = "watch_presence"
	EventLogout           = "logout"
	EventJoinConversation = "join_conversation"
	EventSendMessage      = "send_message"
	EventDeleteMessage    = "delete_message"
)

// Outbound event names.
const (
	EventPresenceSnapshot = "presence_snapshot"
	EventMessageReceived  = "message_received"
	EventMessageDeleted   = "message_deleted"
)

// Frame is the wire envelope in both directions.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type announcePayload struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
}

type joinPayload struct {
	IdentityA string `json:"identityA"`
	IdentityB string `json:"identityB"`
}

type sendPayload struct {
	Sender    string                 `json:"sender"`
	Recipient string                 `json:"recipient"`
	Body      string                 `json:"body,omitempty"`
	File      *domain.FileDescriptor `json:"file,omitempty"`
}

type deletePayload struct {
	MessageID         string `json:"messageId"`
	RequesterIdentity string `json:"requesterIdentity"`
}

type presenceEntryPayload struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
}

type deletedPayload struct {
	MessageID string `json:"messageId"`
}

// EncodeEvent turns a domain event into its outbound wire frame.
func EncodeEvent(evt event.DomainEvent) ([]byte, error) {
	switch e := evt.(type) {
	case event.PresenceChanged:
		return marshalFrame(EventPresenceSnapshot, lo.Map(e.Entries,
			func(entry domain.PresenceEntry, _ int) presenceEntryPayload {
				return presenceEntryPayload{
					Identity:    entry.Identity,
					DisplayName: entry.DisplayName,
				}
			}))
	case event.MessageReceived:
		return marshalFrame(EventMessageReceived, e.Message)
	case event.MessageDeleted:
		return marshalFrame(EventMessageDeleted, deletedPayload{MessageID: e.MessageID.String()})
	default:
		return nil, fmt.Errorf("unknown domain event %T", evt)
	}
}

func marshalFrame(name string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: name, Payload: data})
}
