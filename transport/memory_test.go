package transport

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"parley/contract"
	"parley/domain"
)

func drain(t *testing.T, ch contract.PresenceChannel) contract.PresenceEvent {
	t.Helper()
	select {
	case occ := <-ch.Events():
		return occ
	case <-time.After(time.Second):
		t.Fatal("expected a presence occurrence")
		return nil
	}
}

func TestHub_Join_Delivers_Snapshot_And_Broadcasts_Join(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), 16)
	ctx := context.Background()

	alice := hub.Connect(domain.PresenceEntry{ID: "U1", Name: "Alice"})
	bob := hub.Connect(domain.PresenceEntry{ID: "U2", Name: "Bob"})

	chanAlice, err := alice.SubscribePresence(ctx, "G1")
	req.NoError(err)
	snapshot, ok := drain(t, chanAlice).(contract.RosterSnapshot)
	req.True(ok)
	req.Len(snapshot.Members, 1)

	chanBob, err := bob.SubscribePresence(ctx, "G1")
	req.NoError(err)

	// Bob gets the full set, Alice sees the join.
	snapshot, ok = drain(t, chanBob).(contract.RosterSnapshot)
	req.True(ok)
	req.Len(snapshot.Members, 2)

	joined, ok := drain(t, chanAlice).(contract.MemberJoined)
	req.True(ok)
	req.Equal("U2", joined.Member.ID)

	// Bob leaves; Alice sees it.
	req.NoError(chanBob.Close())
	left, ok := drain(t, chanAlice).(contract.MemberLeft)
	req.True(ok)
	req.Equal("U2", left.MemberID)
}

func TestHub_Send_Appends_History_And_Fans_Out(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), 16)
	ctx := context.Background()

	alice := hub.Connect(domain.PresenceEntry{ID: "U1", Name: "Alice"})
	channel, err := alice.SubscribePresence(ctx, "G1")
	req.NoError(err)
	drain(t, channel) // roster snapshot

	req.NoError(alice.SendMessage(ctx, contract.SendRequest{
		Conversation: "G1",
		SenderID:     "U1",
		SenderName:   "Alice",
		Content:      "hello there",
	}))

	// The sender receives their own message on the live stream.
	broadcast, ok := drain(t, channel).(contract.MessageBroadcast)
	req.True(ok)
	req.Equal("hello there", broadcast.Message.Body)
	req.Equal(domain.TypeText, broadcast.Message.Type)

	history, err := alice.FetchHistory(ctx, "G1")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(broadcast.Message.ID, history[0].ID)
}

func TestHub_Attachments_Get_Descriptors(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), 16)
	alice := hub.Connect(domain.PresenceEntry{ID: "U1", Name: "Alice"})

	req.NoError(alice.SendMessage(context.Background(), contract.SendRequest{
		Conversation: "G1",
		SenderID:     "U1",
		Type:         domain.TypeImage,
		Attachments: []contract.Upload{
			{Name: "a.png", Mime: "image/png", Data: []byte{1, 2, 3}},
		},
	}))

	history, err := alice.FetchHistory(context.Background(), "G1")
	req.NoError(err)
	req.Len(history, 1)
	req.Len(history[0].Attachments, 1)
	req.Equal(int64(3), history[0].Attachments[0].Size)
	req.NotEmpty(history[0].Attachments[0].URL)
}

func TestHub_Double_Close_Is_Safe(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), 16)
	alice := hub.Connect(domain.PresenceEntry{ID: "U1", Name: "Alice"})

	channel, err := alice.SubscribePresence(context.Background(), "G1")
	req.NoError(err)
	req.NoError(channel.Close())
	req.NoError(channel.Close())
}
