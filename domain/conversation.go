// Package domain contains core concepts of the conversation system.
// This file defines Conversation entities and their rosters.
// No runtime, network, or UI logic should be added here.
package domain

// ConversationID identifies a realtime topic scoping one direct or group chat.
type ConversationID string

// Kind distinguishes one-to-one chats from group chats.
// Group conversations carry a block model, direct ones do not.
type Kind string

const (
	KindDirect Kind = "direct"
	KindGroup  Kind = "group"
)

// Conversation is created externally (selection list) and held as "active"
// by the session controller for as long as it is displayed. Switching
// conversations replaces the whole value, never patches it.
type Conversation struct {
	ID           ConversationID
	Name         string
	Kind         Kind
	Avatar       string
	Participants []Participant
}

// Member returns the roster entry for the given participant, if present.
func (c Conversation) Member(participantID string) (Participant, bool) {
	for _, p := range c.Participants {
		if p.ID == participantID {
			return p, true
		}
	}
	return Participant{}, false
}
