// Package domain contains core concepts of the conversation system.
// This file defines Participant entities and related invariants.
package domain

// Participant is supplied by the Conversation object. The access gate reads
// it but never mutates it; Blocked is scoped to the owning group.
type Participant struct {
	ID      string
	Name    string
	Avatar  string
	Blocked bool
}

// PresenceEntry is one member of the live roster of a channel subscription,
// de-duplicated by participant identifier.
type PresenceEntry struct {
	ID   string
	Name string
}
