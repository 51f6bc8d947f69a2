// Package transport provides an in-memory implementation of the backend
// collaborator contract: a loopback hub with per-conversation histories,
// presence rosters and message fanout. It backs the console client and the
// end-to-end scenarios; a wire transport would implement the same contract.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"parley/contract"
	"parley/domain"
)

// Hub is the shared backend state. Individual clients attach through
// Connect, which binds a transport to their identity the way a wire session
// would carry it in connection metadata.
type Hub struct {
	mu         sync.RWMutex
	log        *slog.Logger
	bufferSize int
	histories  map[domain.ConversationID][]domain.Message
	rosters    map[domain.ConversationID]map[string]domain.PresenceEntry
	subs       map[domain.ConversationID]map[*subscription]struct{}
}

func NewHub(log *slog.Logger, bufferSize int) *Hub {
	return &Hub{
		log:        log,
		bufferSize: bufferSize,
		histories:  make(map[domain.ConversationID][]domain.Message),
		rosters:    make(map[domain.ConversationID]map[string]domain.PresenceEntry),
		subs:       make(map[domain.ConversationID]map[*subscription]struct{}),
	}
}

// SeedHistory installs prior messages for a conversation.
func (h *Hub) SeedHistory(id domain.ConversationID, messages []domain.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.histories[id] = append([]domain.Message(nil), messages...)
}

// Connect returns a transport bound to one participant identity.
func (h *Hub) Connect(who domain.PresenceEntry) contract.Transport {
	return &conn{hub: h, who: who}
}

type conn struct {
	hub *Hub
	who domain.PresenceEntry
}

func (c *conn) FetchHistory(_ context.Context, id domain.ConversationID) ([]domain.Message, error) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	history := c.hub.histories[id]
	out := make([]domain.Message, len(history))
	copy(out, history)
	return out, nil
}

func (c *conn) SendMessage(_ context.Context, req contract.SendRequest) error {
	message := domain.Message{
		ID:           uuid.New(),
		Conversation: req.Conversation,
		SenderID:     req.SenderID,
		SenderName:   req.SenderName,
		Body:         req.Content,
		Type:         req.Type,
		Parent:       req.Parent,
		CreatedAt:    time.Now().UTC(),
	}
	if message.Type == "" {
		message.Type = domain.TypeText
	}
	message.Attachments = lo.Map(req.Attachments, func(u contract.Upload, _ int) domain.AttachmentMeta {
		return domain.AttachmentMeta{
			Name: u.Name,
			Mime: u.Mime,
			Size: int64(len(u.Data)),
			URL:  fmt.Sprintf("memory://%s/%s", uuid.NewString(), u.Name),
		}
	})

	h := c.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	h.histories[req.Conversation] = append(h.histories[req.Conversation], message)
	h.broadcastLocked(req.Conversation, contract.MessageBroadcast{
		Conversation: req.Conversation,
		Message:      message,
	}, nil)
	return nil
}

func (c *conn) SubscribePresence(_ context.Context, id domain.ConversationID) (contract.PresenceChannel, error) {
	h := c.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscription{
		hub:    h,
		conv:   id,
		who:    c.who,
		events: make(chan contract.PresenceEvent, h.bufferSize),
	}
	if h.subs[id] == nil {
		h.subs[id] = make(map[*subscription]struct{})
	}
	h.subs[id][sub] = struct{}{}
	if h.rosters[id] == nil {
		h.rosters[id] = make(map[string]domain.PresenceEntry)
	}
	h.rosters[id][c.who.ID] = c.who

	// The joiner gets the full current set; everyone else sees the join.
	sub.push(contract.RosterSnapshot{Conversation: id, Members: lo.Values(h.rosters[id])})
	h.broadcastLocked(id, contract.MemberJoined{Conversation: id, Member: c.who}, sub)
	return sub, nil
}

// broadcastLocked fans one occurrence out to every subscriber of the
// conversation except the one given. Best-effort: a full buffer drops the
// occurrence for that subscriber, it is not a message broker.
func (h *Hub) broadcastLocked(id domain.ConversationID, occ contract.PresenceEvent, except *subscription) {
	for sub := range h.subs[id] {
		if sub == except {
			continue
		}
		sub.push(occ)
	}
}

type subscription struct {
	hub    *Hub
	conv   domain.ConversationID
	who    domain.PresenceEntry
	events chan contract.PresenceEvent
	once   sync.Once
}

func (s *subscription) Events() <-chan contract.PresenceEvent { return s.events }

func (s *subscription) push(occ contract.PresenceEvent) {
	select {
	case s.events <- occ:
	default:
		s.hub.log.Debug("Presence occurrence lost, subscriber buffer full",
			"conversation", s.conv, "participant", s.who.ID)
	}
}

// Close releases the subscription: the participant leaves the roster, the
// remaining subscribers learn about it and the event channel is closed.
func (s *subscription) Close() error {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[s.conv], s)

		// The participant stays in the roster while another of their
		// subscriptions to this conversation is still open.
		stillHere := false
		for other := range h.subs[s.conv] {
			if other.who.ID == s.who.ID {
				stillHere = true
				break
			}
		}
		if !stillHere {
			delete(h.rosters[s.conv], s.who.ID)
			h.broadcastLocked(s.conv, contract.MemberLeft{Conversation: s.conv, MemberID: s.who.ID}, s)
		}
		close(s.events)
	})
	return nil
}
