//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=../mocks/mock_cache.go -package=mocks
// Package storage persists the client-local copy of conversation timelines
// and keeps them searchable. Nothing here is the backend's source of truth:
// the cache only ever mirrors what the reconciler has already accepted.
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"parley/domain"
)

type ITimelineCache interface {
	Store(message domain.Message) error
	Messages(id domain.ConversationID, cursor *string) ([]domain.Message, *string, error)
}

// TimelineCache stores messages in BadgerDB.
type TimelineCache struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewTimelineCache(db *badger.DB, log *slog.Logger, limitMessages *int) TimelineCache {
	return TimelineCache{db: db, log: log, limitMessages: limitMessages}
}

// cachedMessage is the stored shape; the payload is JSON since the cache is
// private to this client and never crosses a wire.
type cachedMessage struct {
	ID           string                  `json:"id"`
	Conversation string                  `json:"conversation"`
	SenderID     string                  `json:"sender_id"`
	SenderName   string                  `json:"sender_name,omitempty"`
	SenderAvatar string                  `json:"sender_avatar,omitempty"`
	Body         string                  `json:"body"`
	Type         string                  `json:"type"`
	Lang         string                  `json:"lang,omitempty"`
	Attachments  []domain.AttachmentMeta `json:"attachments,omitempty"`
	Parent       *cachedParent           `json:"parent,omitempty"`
	At           int64                   `json:"at"`
}

type cachedParent struct {
	ID           string `json:"id"`
	SenderID     string `json:"sender_id"`
	SenderName   string `json:"sender_name,omitempty"`
	SenderAvatar string `json:"sender_avatar,omitempty"`
	Body         string `json:"body"`
}

// Store persists a message.
// The key is formatted as "msg:{conversation}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (c TimelineCache) Store(message domain.Message) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.Conversation,
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// Messages retrieves cached messages for a conversation using a prefix scan,
// newest first. Thanks to the padded timestamp in the key the reverse
// iteration is naturally sorted by time; the returned cursor continues the
// scan into older messages. Collection stops at the configured limit.
func (c TimelineCache) Messages(id domain.ConversationID, cursor *string) ([]domain.Message, *string, error) {
	var rawMessages [][]byte
	var lastKey string
	err := c.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", id)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible key, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if c.limitMessages != nil && len(rawMessages) == *c.limitMessages {
				c.log.Debug(fmt.Sprintf("Maximum of %d cached messages reached", *c.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				rawMessages = append(rawMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if len(rawMessages) == 0 {
		// End of history; a cursor here would point at the empty string.
		return nil, nil, nil
	}

	messages := make([]domain.Message, 0, len(rawMessages))
	for _, raw := range rawMessages {
		var cached cachedMessage
		if err = json.Unmarshal(raw, &cached); err != nil {
			return nil, nil, err
		}
		message, err := toMessage(cached)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	return messages, &lastKey, nil
}

func fromMessage(message domain.Message) cachedMessage {
	cached := cachedMessage{
		ID:           message.ID.String(),
		Conversation: string(message.Conversation),
		SenderID:     message.SenderID,
		SenderName:   message.SenderName,
		SenderAvatar: message.SenderAvatar,
		Body:         message.Body,
		Type:         string(message.Type),
		Lang:         message.Lang,
		Attachments:  message.Attachments,
		At:           message.CreatedAt.UnixNano(),
	}
	if message.Parent != nil {
		cached.Parent = &cachedParent{
			ID:           message.Parent.ID.String(),
			SenderID:     message.Parent.SenderID,
			SenderName:   message.Parent.SenderName,
			SenderAvatar: message.Parent.SenderAvatar,
			Body:         message.Parent.Body,
		}
	}
	return cached
}

func toMessage(cached cachedMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(cached.ID)
	if err != nil {
		return domain.Message{}, err
	}
	message := domain.Message{
		ID:           parsedID,
		Conversation: domain.ConversationID(cached.Conversation),
		SenderID:     cached.SenderID,
		SenderName:   cached.SenderName,
		SenderAvatar: cached.SenderAvatar,
		Body:         cached.Body,
		Type:         domain.MessageType(cached.Type),
		Lang:         cached.Lang,
		Attachments:  cached.Attachments,
		CreatedAt:    time.Unix(0, cached.At).UTC(),
	}
	if cached.Parent != nil {
		parentID, err := uuid.Parse(cached.Parent.ID)
		if err != nil {
			return domain.Message{}, err
		}
		message.Parent = &domain.ParentSnapshot{
			ID:           parentID,
			SenderID:     cached.Parent.SenderID,
			SenderName:   cached.Parent.SenderName,
			SenderAvatar: cached.Parent.SenderAvatar,
			Body:         cached.Parent.Body,
		}
	}
	return message, nil
}
