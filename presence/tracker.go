// Package presence maintains the live roster of subscribers to a
// conversation channel. State is scoped to exactly one active subscription
// at a time; leaving discards everything.
package presence

import (
	"log/slog"
	"sync"

	"parley/contract"
	"parley/domain"
)

// Tracker folds roster occurrences into a set de-duplicated by participant
// identifier. "Is this participant online" is a plain membership lookup.
type Tracker struct {
	mu      sync.RWMutex
	log     *slog.Logger
	scope   domain.ConversationID
	members map[string]domain.PresenceEntry
}

func NewTracker(log *slog.Logger) *Tracker {
	return &Tracker{
		log:     log,
		members: make(map[string]domain.PresenceEntry),
	}
}

// Bind scopes the tracker to one conversation channel, discarding any roster
// carried over from a previous subscription.
func (t *Tracker) Bind(id domain.ConversationID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scope = id
	t.members = make(map[string]domain.PresenceEntry)
}

// Reset discards all presence state. Invoked whenever the active
// conversation changes or the view is torn down.
func (t *Tracker) Reset() {
	t.Bind("")
}

// Apply folds one occurrence into the roster. Occurrences for a
// conversation other than the bound one are ignored: they belong to a
// subscription that has already been released.
func (t *Tracker) Apply(occ contract.PresenceEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if occ.ConversationID() != t.scope {
		t.log.Debug("Dropping presence occurrence for released channel",
			"conversation", occ.ConversationID())
		return
	}

	switch e := occ.(type) {
	case contract.RosterSnapshot:
		t.members = make(map[string]domain.PresenceEntry, len(e.Members))
		for _, m := range e.Members {
			t.members[m.ID] = m
		}
	case contract.MemberJoined:
		// Idempotent add: a participant already present stays as-is.
		if _, ok := t.members[e.Member.ID]; !ok {
			t.members[e.Member.ID] = e.Member
		}
	case contract.MemberLeft:
		delete(t.members, e.MemberID)
	}
}

// IsOnline reports membership against the latest roster.
func (t *Tracker) IsOnline(participantID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.members[participantID]
	return ok
}

// Roster returns a copy of the current member set.
func (t *Tracker) Roster() []domain.PresenceEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	roster := make([]domain.PresenceEntry, 0, len(t.members))
	for _, m := range t.members {
		roster = append(roster, m)
	}
	return roster
}

// Size returns the current roster size.
func (t *Tracker) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.members)
}
