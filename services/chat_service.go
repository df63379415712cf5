package services

import (
	"context"

	"github.com/google/uuid"

	"personal-chat/contract"
	"personal-chat/domain"
	"personal-chat/runtime"
)

type IChatService interface {
	Send(ctx context.Context, sender, recipient domain.Identity, body string, file *domain.FileDescriptor) (domain.Message, error)
	Delete(ctx context.Context, messageID uuid.UUID, requester domain.Identity) error
	FetchConversation(a, b domain.Identity) (domain.Conversation, error)
	AnnouncePresence(connID domain.ConnectionID, identity domain.Identity, displayName string, sink contract.EventSink)
	WatchPresence(connID domain.ConnectionID, sink contract.EventSink) []domain.PresenceEntry
	Logout(connID domain.ConnectionID)
	Disconnect(connID domain.ConnectionID)
	JoinConversation(connID domain.ConnectionID, a, b domain.Identity, sink contract.EventSink) domain.RoomKey
}

// ChatService is the thin facade the transport and HTTP layers talk
// to; all behavior lives in the engine.
type ChatService struct {
	engine *runtime.Engine
}

func NewChatService(engine *runtime.Engine) *ChatService {
	return &ChatService{engine: engine}
}

func (s *ChatService) Send(ctx context.Context, sender, recipient domain.Identity, body string, file *domain.FileDescriptor) (domain.Message, error) {
	return s.engine.Send(ctx, sender, recipient, body, file)
}

func (s *ChatService) Delete(ctx context.Context, messageID uuid.UUID, requester domain.Identity) error {
	return s.engine.Delete(ctx, messageID, requester)
}

func (s *ChatService) FetchConversation(a, b domain.Identity) (domain.Conversation, error) {
	return s.engine.FetchConversation(a, b)
}

func (s *ChatService) AnnouncePresence(connID domain.ConnectionID, identity domain.Identity, displayName string, sink contract.EventSink) {
	s.engine.AnnouncePresence(connID, identity, displayName, sink)
}

func (s *ChatService) WatchPresence(connID domain.ConnectionID, sink contract.EventSink) []domain.PresenceEntry {
	return s.engine.WatchPresence(connID, sink)
}

func (s *ChatService) Logout(connID domain.ConnectionID) {
	s.engine.Logout(connID)
}

func (s *ChatService) Disconnect(connID domain.ConnectionID) {
	s.engine.Disconnect(connID)
}

func (s *ChatService) JoinConversation(connID domain.ConnectionID, a, b domain.Identity, sink contract.EventSink) domain.RoomKey {
	return s.engine.JoinConversation(connID, a, b, sink)
}
