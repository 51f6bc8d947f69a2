// Package timeline merges historical and live message sources into one
// ordered timeline per conversation. Handles ordering and deduplication.
// Does not emit events or interact with UI directly.
package timeline

import (
	"log/slog"
	"sync"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"parley/domain"
)

// Reconciler keeps one append-only sequence of messages per conversation.
// History fetches overwrite a conversation's sequence wholesale; live
// occurrences append to whichever conversation they belong to, even when
// that conversation is not the one currently displayed. Arrival order is
// display order; no merge or sort step exists.
type Reconciler struct {
	mu        sync.RWMutex
	log       *slog.Logger
	timelines map[domain.ConversationID][]domain.Message
	seen      map[domain.ConversationID]map[uuid.UUID]struct{}
}

func NewReconciler(log *slog.Logger) *Reconciler {
	return &Reconciler{
		log:       log,
		timelines: make(map[domain.ConversationID][]domain.Message),
		seen:      make(map[domain.ConversationID]map[uuid.UUID]struct{}),
	}
}

// ReplaceHistory installs a freshly fetched history page as the timeline of
// a conversation. It is a full overwrite, never a merge: a refetch always
// supersedes live appends received before the fetch resolved.
func (r *Reconciler) ReplaceHistory(id domain.ConversationID, messages []domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timeline := make([]domain.Message, 0, len(messages))
	seen := make(map[uuid.UUID]struct{}, len(messages))
	for _, m := range messages {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		timeline = append(timeline, tagLanguage(m))
	}
	r.timelines[id] = timeline
	r.seen[id] = seen
}

// AppendLive appends one live message to the timeline of the conversation
// it belongs to. Redelivered messages (at-least-once transport) are dropped
// by id; the return value reports whether the message was appended.
func (r *Reconciler) AppendLive(m domain.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen, ok := r.seen[m.Conversation]
	if !ok {
		seen = make(map[uuid.UUID]struct{})
		r.seen[m.Conversation] = seen
	}
	if _, dup := seen[m.ID]; dup {
		r.log.Debug("Dropping redelivered message", "message_id", m.ID)
		return false
	}
	seen[m.ID] = struct{}{}
	r.timelines[m.Conversation] = append(r.timelines[m.Conversation], tagLanguage(m))
	return true
}

// Timeline returns a copy of a conversation's ordered message sequence.
func (r *Reconciler) Timeline(id domain.ConversationID) []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	timeline := r.timelines[id]
	out := make([]domain.Message, len(timeline))
	copy(out, timeline)
	return out
}

// Len returns the number of messages held for a conversation.
func (r *Reconciler) Len(id domain.ConversationID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.timelines[id])
}

// langConfidenceFloor keeps noisy short bodies untagged.
const langConfidenceFloor = 0.8

// tagLanguage attaches an ISO 639-3 hint to text messages. The portal pairs
// learners and instructors across languages, so the UI offers translation
// on messages whose language differs from the viewer's.
func tagLanguage(m domain.Message) domain.Message {
	if m.Lang != "" || m.Type != domain.TypeText || m.Body == "" {
		return m
	}
	info := whatlanggo.Detect(m.Body)
	if !info.IsReliable() || info.Confidence < langConfidenceFloor {
		return m
	}
	m.Lang = whatlanggo.LangToString(info.Lang)
	return m
}
