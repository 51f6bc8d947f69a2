package domain

// CanInteract decides whether a participant may perform mutating actions
// (send, attach, reply) in a conversation. Group conversations deny blocked
// roster members; direct conversations have no block model and always allow.
//
// Every mutating entry point re-checks this predicate itself: a visually
// disabled control can still be reached programmatically (keyboard submit),
// so the UI state is never trusted as enforcement.
func CanInteract(c Conversation, participantID string) bool {
	if c.Kind != KindGroup {
		return true
	}
	member, ok := c.Member(participantID)
	if !ok {
		return true
	}
	return !member.Blocked
}
