//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"parley/domain"
)

// Transport is the capability contract the core expects from the backend
// collaborator. A concrete implementation (wire client, loopback hub,
// generated mock) is passed in explicitly; the core never reaches for a
// shared realtime singleton.
type Transport interface {
	// FetchHistory returns the point-in-time page of prior messages for a
	// conversation, newest-last. The result replaces the local timeline.
	FetchHistory(ctx context.Context, id domain.ConversationID) ([]domain.Message, error)
	// SendMessage delivers one message-send request. Failures are
	// transport errors surfaced synchronously to the caller.
	SendMessage(ctx context.Context, req SendRequest) error
	// SubscribePresence opens the presence channel of a conversation. The
	// returned channel emits an initial roster, join/leave occurrences and
	// message broadcasts until Close is called.
	SubscribePresence(ctx context.Context, id domain.ConversationID) (PresenceChannel, error)
}

// SendRequest carries everything the backend needs to accept a message.
type SendRequest struct {
	Conversation domain.ConversationID `validate:"required"`
	SenderID     string                `validate:"required"`
	SenderName   string
	Content      string `validate:"required_without=Attachments,max=4000"`
	Type         domain.MessageType
	Parent       *domain.ParentSnapshot
	Attachments  []Upload
}

// Upload is one attachment payload leaving the staging area at send time.
type Upload struct {
	Name string
	Mime string
	Data []byte
}

// PresenceChannel is the explicit subscription handle returned by a
// presence join. Close releases the subscription; Events is closed after.
type PresenceChannel interface {
	Events() <-chan PresenceEvent
	Close() error
}

// PresenceEvent is a typed occurrence delivered on a presence channel.
type PresenceEvent interface {
	ConversationID() domain.ConversationID
}

// RosterSnapshot replaces any prior roster with the full current set.
type RosterSnapshot struct {
	Conversation domain.ConversationID
	Members      []domain.PresenceEntry
}

func (e RosterSnapshot) ConversationID() domain.ConversationID { return e.Conversation }

// MemberJoined is an idempotent roster add.
type MemberJoined struct {
	Conversation domain.ConversationID
	Member       domain.PresenceEntry
}

func (e MemberJoined) ConversationID() domain.ConversationID { return e.Conversation }

// MemberLeft removes by identifier; removing an absent one is a no-op.
type MemberLeft struct {
	Conversation domain.ConversationID
	MemberID     string
}

func (e MemberLeft) ConversationID() domain.ConversationID { return e.Conversation }

// MessageBroadcast carries one live message for the conversation's timeline,
// delivered to every subscriber including the sender.
type MessageBroadcast struct {
	Conversation domain.ConversationID
	Message      domain.Message
}

func (e MessageBroadcast) ConversationID() domain.ConversationID { return e.Conversation }

// Notice is a dismissable, user-facing notification. Nothing in the core is
// fatal; every failure either recovers locally or becomes a Notice.
type Notice struct {
	Severity string // "info" | "warning" | "error"
	Text     string
}

// NoticeSink receives notices for the surrounding UI.
type NoticeSink interface {
	Notify(notice Notice)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
