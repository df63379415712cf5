//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"personal-chat/domain"
	"personal-chat/errors"
)

type IConversationRepository interface {
	Append(a, b domain.Identity, message domain.Message) (domain.Message, error)
	Remove(messageID uuid.UUID, requester domain.Identity) (domain.RoomKey, error)
	Fetch(a, b domain.Identity) (domain.Conversation, error)
}

// ConversationRepository persists one document per unordered pair of
// identities. The find-or-create and append happen inside a single
// Badger transaction, so two first-message races for a brand-new pair
// can never produce two documents: the losing transaction conflicts
// and is retried against the winner's document.
type ConversationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewConversationRepository(db *badger.DB, log *slog.Logger) *ConversationRepository {
	return &ConversationRepository{db: db, log: log}
}

const appendRetries = 5

// Keys are laid out as:
//
//	conv:{a}|{b}      the conversation document (participants sorted)
//	msgref:{uuid}     message id -> owning pair, so delete-by-id
//	                  resolves its conversation without a full scan
func conversationKey(a, b domain.Identity) []byte {
	pair := domain.SortedPair(a, b)
	return []byte(fmt.Sprintf("conv:%s|%s", pair[0], pair[1]))
}

func messageRefKey(id uuid.UUID) []byte {
	return []byte("msgref:" + id.String())
}

// Append validates the message, assigns the canonical id and timestamp
// when absent, and appends it to the pair's conversation, creating the
// document lazily. The returned Message is the persisted one; callers
// must use it for fan-out, not their input.
func (r *ConversationRepository) Append(a, b domain.Identity, message domain.Message) (domain.Message, error) {
	if !message.HasContent() {
		return domain.Message{}, errors.ErrInvalidMessage
	}
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.At.IsZero() {
		message.At = time.Now().UTC()
	}
	message.Kind = message.ResolveKind()

	key := conversationKey(a, b)
	var err error
	for attempt := 0; attempt < appendRetries; attempt++ {
		err = r.db.Update(func(txn *badger.Txn) error {
			conversation, err := readConversation(txn, key, a, b)
			if err != nil {
				return err
			}
			conversation.Messages = append(conversation.Messages, message)
			conversation.LastActivity = message.At
			if err = writeConversation(txn, key, conversation); err != nil {
				return err
			}
			return txn.Set(messageRefKey(message.ID), pairValue(conversation.Participants))
		})
		if !stderrors.Is(err, badger.ErrConflict) {
			break
		}
		r.log.Debug("append conflicted, retrying", "attempt", attempt+1)
	}
	if stderrors.Is(err, errors.ErrStoreUnavailable) {
		return domain.Message{}, err
	}
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return message, nil
}

// Remove deletes a message by id after checking the requester is its
// sender. The check happens here, against the stored document, so the
// transport layer is never trusted with authorization data. It returns
// the conversation's room key so the caller can notify the right room.
func (r *ConversationRepository) Remove(messageID uuid.UUID, requester domain.Identity) (domain.RoomKey, error) {
	var roomKey domain.RoomKey
	err := r.db.Update(func(txn *badger.Txn) error {
		refItem, err := txn.Get(messageRefKey(messageID))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrMessageNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
		}

		var pair [2]domain.Identity
		if err = refItem.Value(func(val []byte) error {
			return json.Unmarshal(val, &pair)
		}); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
		}

		key := conversationKey(pair[0], pair[1])
		conversation, err := readConversation(txn, key, pair[0], pair[1])
		if err != nil {
			return err
		}

		idx := -1
		for i, m := range conversation.Messages {
			if m.ID == messageID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errors.ErrMessageNotFound
		}
		if conversation.Messages[idx].Sender != requester {
			return errors.ErrDeleteForbidden
		}

		conversation.Messages = append(conversation.Messages[:idx], conversation.Messages[idx+1:]...)
		if err = writeConversation(txn, key, conversation); err != nil {
			return err
		}
		if err = txn.Delete(messageRefKey(messageID)); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
		}
		roomKey = conversation.RoomKey()
		return nil
	})
	if err != nil {
		return "", err
	}
	return roomKey, nil
}

// Fetch returns the conversation for the pair, or an empty placeholder
// with the same shape when none exists yet. Callers cannot distinguish
// the two; both render identically.
func (r *ConversationRepository) Fetch(a, b domain.Identity) (domain.Conversation, error) {
	conversation := domain.EmptyConversation(a, b)
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(conversationKey(a, b))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &conversation)
		})
	})
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return conversation, nil
}

func readConversation(txn *badger.Txn, key []byte, a, b domain.Identity) (domain.Conversation, error) {
	item, err := txn.Get(key)
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.EmptyConversation(a, b), nil
	}
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	var conversation domain.Conversation
	if err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &conversation)
	}); err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return conversation, nil
}

func writeConversation(txn *badger.Txn, key []byte, conversation domain.Conversation) error {
	data, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return txn.Set(key, data)
}

func pairValue(pair [2]domain.Identity) []byte {
	data, _ := json.Marshal(pair)
	return data
}
