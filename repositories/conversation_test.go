package repositories

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"personal-chat/domain"
	"personal-chat/errors"
)

func setupDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestConversationRepository_Append_Then_Fetch(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(setupDB(t), slog.Default())

	// Given alice and bob never having chatted
	// When alice sends a message
	persisted, err := repo.Append("alice", "bob", domain.Message{Sender: "alice", Body: "hi"})
	req.NoError(err)

	// Then the store assigned id, timestamp and kind
	req.NotEqual(uuid.Nil, persisted.ID)
	req.False(persisted.At.IsZero())
	req.Equal(domain.KindText, persisted.Kind)

	// And fetching in either participant order returns it as the last message
	conversation, err := repo.Fetch("bob", "alice")
	req.NoError(err)
	req.Len(conversation.Messages, 1)
	req.Equal(persisted, conversation.Messages[len(conversation.Messages)-1])
	req.Equal(persisted.At, conversation.LastActivity)
	req.Equal([2]domain.Identity{"alice", "bob"}, conversation.Participants)
}

func TestConversationRepository_Append_Empty_Message_Rejected(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(setupDB(t), slog.Default())

	_, err := repo.Append("alice", "bob", domain.Message{Sender: "alice"})
	req.ErrorIs(err, errors.ErrInvalidMessage)

	// Nothing was created for the pair
	conversation, err := repo.Fetch("alice", "bob")
	req.NoError(err)
	req.Empty(conversation.Messages)
}

func TestConversationRepository_Append_File_Message(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(setupDB(t), slog.Default())

	file := &domain.FileDescriptor{URL: "/uploads/report.pdf", Name: "report.pdf", Size: 2048}
	persisted, err := repo.Append("alice", "bob", domain.Message{Sender: "alice", File: file})
	req.NoError(err)
	req.Equal(domain.KindFile, persisted.Kind)

	conversation, err := repo.Fetch("alice", "bob")
	req.NoError(err)
	req.Equal(file, conversation.Messages[0].File)
}

func TestConversationRepository_Fetch_Absent_Pair_Is_Empty_Placeholder(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(setupDB(t), slog.Default())

	// Callers cannot distinguish "no conversation" from "empty conversation"
	conversation, err := repo.Fetch("nobody", "anybody")
	req.NoError(err)
	req.Empty(conversation.Messages)
	req.Equal([2]domain.Identity{"anybody", "nobody"}, conversation.Participants)
}

func TestConversationRepository_Concurrent_First_Messages_Single_Document(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(setupDB(t), slog.Default())

	// Given a brand-new pair with both ends sending at once
	var wg sync.WaitGroup
	for _, sender := range []domain.Identity{"alice", "bob"} {
		wg.Add(1)
		go func(sender domain.Identity) {
			defer wg.Done()
			_, err := repo.Append("alice", "bob", domain.Message{Sender: sender, Body: "first!"})
			require.NoError(t, err)
		}(sender)
	}
	wg.Wait()

	// Then exactly one conversation holds both messages
	conversation, err := repo.Fetch("alice", "bob")
	req.NoError(err)
	req.Len(conversation.Messages, 2)
}

func TestConversationRepository_Remove_By_Sender(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(setupDB(t), slog.Default())
	persisted, err := repo.Append("alice", "bob", domain.Message{Sender: "alice", Body: "hi"})
	req.NoError(err)

	// When the sender deletes their own message
	roomKey, err := repo.Remove(persisted.ID, "alice")

	// Then the conversation stays active but empty, and the caller
	// gets the room to notify
	req.NoError(err)
	req.Equal(domain.RoomKey("alice-bob"), roomKey)

	conversation, err := repo.Fetch("alice", "bob")
	req.NoError(err)
	req.Empty(conversation.Messages)
}

func TestConversationRepository_Remove_By_NonSender_Forbidden(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(setupDB(t), slog.Default())
	persisted, err := repo.Append("alice", "bob", domain.Message{Sender: "alice", Body: "hi"})
	req.NoError(err)

	// When bob tries to delete alice's message
	_, err = repo.Remove(persisted.ID, "bob")

	// Then the delete is forbidden and the sequence unchanged
	req.ErrorIs(err, errors.ErrDeleteForbidden)

	conversation, err := repo.Fetch("alice", "bob")
	req.NoError(err)
	req.Len(conversation.Messages, 1)
}

func TestConversationRepository_Remove_Unknown_Message(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(setupDB(t), slog.Default())

	_, err := repo.Remove(uuid.New(), "alice")
	req.ErrorIs(err, errors.ErrMessageNotFound)
}

func TestConversationRepository_Remove_Twice(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(setupDB(t), slog.Default())
	persisted, err := repo.Append("alice", "bob", domain.Message{Sender: "alice", Body: "hi"})
	req.NoError(err)

	_, err = repo.Remove(persisted.ID, "alice")
	req.NoError(err)

	// The second delete finds nothing; the index entry is gone too
	_, err = repo.Remove(persisted.ID, "alice")
	req.ErrorIs(err, errors.ErrMessageNotFound)
}
