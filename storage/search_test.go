package storage

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"parley/domain"
)

func openTestIndex(t *testing.T) *MessageIndex {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewMessageIndex(writer, slog.Default(), 10)
}

func indexedMsg(conv domain.ConversationID, sender, body string) domain.Message {
	return domain.Message{
		ID:           uuid.New(),
		Conversation: conv,
		SenderID:     "U1",
		SenderName:   sender,
		Body:         body,
		Type:         domain.TypeText,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestMessageIndex_Search_Scoped_To_Conversation(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)
	ctx := context.Background()

	req.NoError(index.Index(indexedMsg("G1", "Alice", "the homework deadline moved to Friday")))
	req.NoError(index.Index(indexedMsg("G1", "Bob", "thanks for the deadline reminder")))
	req.NoError(index.Index(indexedMsg("G2", "Clara", "deadline talk in another group")))

	hits, total, err := index.SearchPaginated(ctx, "deadline", "G1", 0)
	req.NoError(err)
	req.EqualValues(2, total)
	req.Len(hits, 2)
	for _, hit := range hits {
		req.Equal("G1", hit.Conversation)
	}
}

func TestMessageIndex_Redelivered_Message_Indexed_Once(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	m := indexedMsg("G1", "Alice", "only once please")
	req.NoError(index.Index(m))
	req.NoError(index.Index(m))

	hits, total, err := index.SearchPaginated(context.Background(), "once", "G1", 0)
	req.NoError(err)
	req.EqualValues(1, total)
	req.Len(hits, 1)
	req.Equal(m.ID.String(), hits[0].MessageID)
}

func TestMessageIndex_No_Match(t *testing.T) {
	req := require.New(t)
	index := openTestIndex(t)

	req.NoError(index.Index(indexedMsg("G1", "Alice", "nothing relevant here")))

	hits, total, err := index.SearchPaginated(context.Background(), "quaternion", "G1", 0)
	req.NoError(err)
	req.Zero(total)
	req.Empty(hits)
}
