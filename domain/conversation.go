package domain

import "time"

// Conversation is the durable per-pair message thread. There is at most
// one conversation per unordered pair of identities; it is created
// lazily on first message and never deleted as a whole. Deleting the
// last message leaves an active, empty conversation.
type Conversation struct {
	Participants [2]Identity `json:"participants"`
	Messages     []Message   `json:"messages"`
	LastActivity time.Time   `json:"lastActivity"`
}

// EmptyConversation returns the placeholder served when no conversation
// exists yet for a pair. Callers must not distinguish it from a stored
// conversation with zero messages; both render identically.
func EmptyConversation(a, b Identity) Conversation {
	return Conversation{Participants: SortedPair(a, b)}
}

// RoomKey derives the pairwise room for this conversation's
// participants.
func (c Conversation) RoomKey() RoomKey {
	return PairwiseRoom(c.Participants[0], c.Participants[1])
}
