// Package session orchestrates one conversation view: it owns the active
// conversation selection, wires presence, timeline, staging and the access
// gate together, and exposes the action surface to the surrounding UI.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"parley/contract"
	"parley/domain"
	"parley/errors"
	"parley/observability"
	"parley/presence"
	"parley/runtime/workers"
	"parley/staging"
	"parley/storage"
	"parley/timeline"
)

// Phase is the controller's position in the selection state machine.
type Phase string

const (
	// PhaseIdle means no conversation is selected.
	PhaseIdle Phase = "idle"
	// PhaseLoading means a history fetch and presence join are in flight.
	PhaseLoading Phase = "loading"
	// PhaseActive means history has resolved; the roster may still be
	// populating independently.
	PhaseActive Phase = "active"
)

// Identity is the session identity supplied by the surrounding portal.
type Identity struct {
	ParticipantID string
	Name          string
}

// Controller lives for the lifetime of the containing view. There is no
// terminal state: Deselect returns to Idle, Close only releases resources.
type Controller struct {
	mu       sync.Mutex
	log      *slog.Logger
	tp       contract.Transport
	sup      contract.ISupervisor
	identity Identity
	notices  contract.NoticeSink
	stats    *observability.SessionStats
	validate *validator.Validate

	tracker    *presence.Tracker
	reconciler *timeline.Reconciler
	stager     *staging.Stager

	// Optional local persistence; both are nil-safe.
	cache storage.ITimelineCache
	index *storage.MessageIndex

	phase          Phase
	active         *domain.Conversation
	epoch          uint64
	sub            contract.PresenceChannel
	replyDraft     *domain.Message
	lastFailedSend *contract.SendRequest
}

func NewController(log *slog.Logger, tp contract.Transport, sup contract.ISupervisor,
	identity Identity, notices contract.NoticeSink, stats *observability.SessionStats,
	cache storage.ITimelineCache, index *storage.MessageIndex) *Controller {
	// Like the notice sink, stats are optional when no UI is attached.
	if stats == nil {
		stats = observability.NewSessionStats()
	}
	return &Controller{
		log:        log,
		tp:         tp,
		sup:        sup,
		identity:   identity,
		notices:    notices,
		stats:      stats,
		validate:   validator.New(),
		tracker:    presence.NewTracker(log),
		reconciler: timeline.NewReconciler(log),
		stager:     staging.NewStager(log, staging.NewLocalAllocator()),
		cache:      cache,
		index:      index,
		phase:      PhaseIdle,
	}
}

// Select makes a conversation the active one: the previous presence handle
// is released first, then the history fetch and the presence join are both
// issued. History resolving moves the controller to Active; the roster
// populates independently. A history result landing after another Select
// is discarded because it targets a conversation that is no longer active.
func (c *Controller) Select(ctx context.Context, conv domain.Conversation) error {
	c.mu.Lock()
	c.releasePresenceLocked()
	c.active = lo.ToPtr(conv)
	c.phase = PhaseLoading
	c.replyDraft = nil
	c.epoch++
	epoch := c.epoch
	c.tracker.Bind(conv.ID)
	c.mu.Unlock()

	c.joinPresence(ctx, conv.ID, epoch)

	c.stats.IncrHistoryFetches()
	messages, err := c.tp.FetchHistory(ctx, conv.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		// The user switched again while this fetch was in flight.
		c.stats.IncrStaleFetchDrops()
		c.log.Debug("Discarding stale history result", "conversation", conv.ID)
		return nil
	}
	if err != nil {
		// Degraded but usable: the previously known timeline stays.
		c.phase = PhaseActive
		c.notify(contract.Notice{Severity: "warning", Text: "Could not load message history"})
		return &errors.TransportError{Op: "fetch history", Err: err}
	}
	c.reconciler.ReplaceHistory(conv.ID, messages)
	c.phase = PhaseActive
	return nil
}

// Deselect returns to Idle from any state.
func (c *Controller) Deselect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releasePresenceLocked()
	c.active = nil
	c.replyDraft = nil
	c.phase = PhaseIdle
	c.epoch++
}

// Close tears the view down: presence is released and every staged
// attachment handle is revoked.
func (c *Controller) Close() {
	c.Deselect()
	c.stager.ClearAll()
}

// releasePresenceLocked drops the current subscription and roster. Closing
// the channel ends its pump worker; there is no exit path that skips this.
func (c *Controller) releasePresenceLocked() {
	if c.sub != nil {
		if err := c.sub.Close(); err != nil {
			c.log.Warn("Closing presence channel failed", "error", err)
		}
		c.sub = nil
	}
	c.tracker.Reset()
}

// joinPresence subscribes to a conversation's presence channel and starts a
// supervised pump for it. Failure is non-fatal: participants render as
// offline and the join is retried on the next selection.
func (c *Controller) joinPresence(ctx context.Context, id domain.ConversationID, epoch uint64) {
	channel, err := c.tp.SubscribePresence(ctx, id)
	if err != nil {
		subErr := &errors.SubscriptionError{Conversation: string(id), Err: err}
		c.log.Warn("Presence join failed", "error", subErr)
		c.notify(contract.Notice{Severity: "info", Text: "Presence unavailable for this conversation"})
		return
	}

	c.mu.Lock()
	if c.epoch != epoch {
		// Raced with another selection, even one of the same conversation;
		// this subscription already lost, whatever replaced it owns c.sub.
		c.mu.Unlock()
		_ = channel.Close()
		return
	}
	c.sub = channel
	c.mu.Unlock()

	c.sup.Start(ctx, workers.NewPresencePumpWorker(c.log, channel, c.Deliver))
}

// Deliver folds one transport occurrence into local state. Message
// broadcasts land on the timeline of whichever conversation they belong to,
// even if that conversation is not the one currently displayed.
func (c *Controller) Deliver(occ contract.PresenceEvent) {
	c.stats.IncrPresenceEvents()
	switch e := occ.(type) {
	case contract.MessageBroadcast:
		if c.reconciler.AppendLive(e.Message) {
			c.stats.IncrMessagesAppended()
			c.persist(e.Message)
		}
	default:
		c.tracker.Apply(occ)
	}
}

// persist mirrors an accepted message into the local cache and index.
// Best-effort: a failing cache never blocks the timeline.
func (c *Controller) persist(message domain.Message) {
	if c.cache != nil {
		if err := c.cache.Store(message); err != nil {
			c.log.Error("Caching message failed", "message_id", message.ID, "error", err)
		}
	}
	if c.index != nil {
		if err := c.index.Index(message); err != nil {
			c.log.Error("Indexing message failed", "message_id", message.ID, "error", err)
		}
	}
}

// Send builds a message-send request from the compose state and delivers
// it. On success the compose state (reply draft, staged attachments) is
// cleared; on transport failure it is preserved and the request is retained
// for RetryLastSend. The sender sees their own message come back on the
// live stream, the single source of truth for order and timestamps.
func (c *Controller) Send(ctx context.Context, content string) error {
	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return errors.ErrNoActiveConversation
	}
	conv := *c.active
	if !domain.CanInteract(conv, c.identity.ParticipantID) {
		c.mu.Unlock()
		c.notify(contract.Notice{Severity: "error", Text: "You cannot send messages in this conversation"})
		return errors.ErrBlockedParticipant
	}

	req := contract.SendRequest{
		Conversation: conv.ID,
		SenderID:     c.identity.ParticipantID,
		SenderName:   c.identity.Name,
		Content:      strings.TrimSpace(content),
		Type:         domain.TypeText,
	}
	if c.replyDraft != nil {
		req.Parent = lo.ToPtr(domain.ComposeSnapshot(*c.replyDraft))
	}
	previews := c.stager.Previews()
	if len(previews) > 0 {
		req.Type = previews[0].Kind.MessageType()
		req.Attachments = lo.Map(previews, func(p domain.AttachmentPreview, _ int) contract.Upload {
			return contract.Upload{Name: p.Name, Mime: p.Mime, Data: p.Payload}
		})
	}
	c.mu.Unlock()

	if req.Content == "" && len(req.Attachments) == 0 {
		return &errors.ValidationError{Reason: errors.ErrEmptyMessage.Error()}
	}
	if err := c.validate.Struct(req); err != nil {
		c.notify(contract.Notice{Severity: "warning", Text: "Message could not be validated"})
		return &errors.ValidationError{Reason: err.Error()}
	}

	return c.deliverSend(ctx, req)
}

// RetryLastSend re-attempts the most recent failed send, if any. Best
// effort only; there is no queue behind it.
func (c *Controller) RetryLastSend(ctx context.Context) error {
	c.mu.Lock()
	if c.lastFailedSend == nil {
		c.mu.Unlock()
		return errors.ErrNothingToRetry
	}
	req := *c.lastFailedSend
	c.mu.Unlock()

	return c.deliverSend(ctx, req)
}

func (c *Controller) deliverSend(ctx context.Context, req contract.SendRequest) error {
	// The gate is re-checked on every delivery, not only in Send: the
	// participant may have become blocked between composing and a retry.
	c.mu.Lock()
	if c.active != nil && c.active.ID == req.Conversation &&
		!domain.CanInteract(*c.active, c.identity.ParticipantID) {
		c.mu.Unlock()
		c.notify(contract.Notice{Severity: "error", Text: "You cannot send messages in this conversation"})
		return errors.ErrBlockedParticipant
	}
	c.mu.Unlock()

	err := c.tp.SendMessage(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.stats.IncrSendFailures()
		c.lastFailedSend = &req
		c.notify(contract.Notice{Severity: "error", Text: "Message could not be sent"})
		return &errors.TransportError{Op: "send message", Err: err}
	}
	c.stats.IncrSends()
	c.lastFailedSend = nil
	c.replyDraft = nil
	c.stager.ClearAll()
	return nil
}

// BeginReply sets the single reply draft of the active conversation.
// Selecting a new target silently replaces the previous draft.
func (c *Controller) BeginReply(parent domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return errors.ErrNoActiveConversation
	}
	if !domain.CanInteract(*c.active, c.identity.ParticipantID) {
		return errors.ErrBlockedParticipant
	}
	if parent.Conversation != c.active.ID {
		return &errors.ValidationError{
			Reason: fmt.Sprintf("message %s does not belong to the active conversation", parent.ID),
		}
	}
	c.replyDraft = lo.ToPtr(parent)
	return nil
}

// ClearReply cancels the reply draft.
func (c *Controller) ClearReply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replyDraft = nil
}

// ReplyDraft returns the message currently being replied to, if any.
func (c *Controller) ReplyDraft() (domain.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.replyDraft == nil {
		return domain.Message{}, false
	}
	return *c.replyDraft, true
}

// StageFiles validates and stages selected files. The gate is re-checked
// here: attaching is a mutating action even before anything is sent.
func (c *Controller) StageFiles(files []staging.File, kind domain.AttachmentKind) ([]domain.AttachmentPreview, error) {
	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return nil, errors.ErrNoActiveConversation
	}
	if !domain.CanInteract(*c.active, c.identity.ParticipantID) {
		c.mu.Unlock()
		return nil, errors.ErrBlockedParticipant
	}
	c.mu.Unlock()

	staged, err := c.stager.Stage(files, kind)
	if err != nil {
		c.notify(contract.Notice{Severity: "warning", Text: err.Error()})
	}
	return staged, err
}

// UnstageFile revokes one staged preview and removes it.
func (c *Controller) UnstageFile(index int) error {
	return c.stager.Unstage(index)
}

// StagedPreviews returns the current staged attachments.
func (c *Controller) StagedPreviews() []domain.AttachmentPreview {
	return c.stager.Previews()
}

// Search queries the local full-text index, scoped to the active
// conversation. Without an index every query is empty, not an error.
func (c *Controller) Search(ctx context.Context, terms string, page int) ([]storage.Hit, uint64, error) {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active == nil {
		return nil, 0, errors.ErrNoActiveConversation
	}
	if c.index == nil {
		return nil, 0, nil
	}
	return c.index.SearchPaginated(ctx, terms, active.ID, page)
}

// Timeline returns the active conversation's ordered message sequence.
func (c *Controller) Timeline() []domain.Message {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active == nil {
		return nil
	}
	return c.reconciler.Timeline(active.ID)
}

// Roster returns the live roster of the active presence channel.
func (c *Controller) Roster() []domain.PresenceEntry {
	return c.tracker.Roster()
}

// IsOnline reports presence of a participant on the active channel.
func (c *Controller) IsOnline(participantID string) bool {
	return c.tracker.IsOnline(participantID)
}

// CanInteract reports whether the session identity may mutate the active
// conversation. False while nothing is selected.
func (c *Controller) CanInteract() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return false
	}
	return domain.CanInteract(*c.active, c.identity.ParticipantID)
}

// Phase returns the current selection phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Active returns a copy of the active conversation.
func (c *Controller) Active() (domain.Conversation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return domain.Conversation{}, false
	}
	return *c.active, true
}

func (c *Controller) notify(notice contract.Notice) {
	if c.notices != nil {
		c.notices.Notify(notice)
	}
}
