package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"parley/contract"
	"parley/domain"
)

type stubChannel struct {
	events chan contract.PresenceEvent
}

func (s *stubChannel) Events() <-chan contract.PresenceEvent { return s.events }
func (s *stubChannel) Close() error                          { close(s.events); return nil }

func TestPresencePump_Delivers_Until_Channel_Closes(t *testing.T) {
	req := require.New(t)
	channel := &stubChannel{events: make(chan contract.PresenceEvent, 4)}

	var delivered []contract.PresenceEvent
	pump := NewPresencePumpWorker(slog.Default(), channel, func(occ contract.PresenceEvent) {
		delivered = append(delivered, occ)
	})

	channel.events <- contract.MemberJoined{Conversation: "G1", Member: domain.PresenceEntry{ID: "U1"}}
	channel.events <- contract.MemberLeft{Conversation: "G1", MemberID: "U1"}
	req.NoError(channel.Close())

	done := make(chan error, 1)
	go func() { done <- pump.Run(context.Background()) }()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(500 * time.Millisecond):
		req.Fail("pump should finish once the channel closes")
	}
	req.Len(delivered, 2)
}

func TestPresencePump_Stops_On_Cancel(t *testing.T) {
	req := require.New(t)
	channel := &stubChannel{events: make(chan contract.PresenceEvent)}
	pump := NewPresencePumpWorker(slog.Default(), channel, func(contract.PresenceEvent) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pump.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(500 * time.Millisecond):
		req.Fail("pump should stop when cancelled")
	}
}
