package storage

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"

	"parley/domain"
)

// Hit is one search result, rebuilt from stored fields.
type Hit struct {
	MessageID    string
	Conversation string
	Sender       string
	Body         string
}

// MessageIndex keeps cached message bodies searchable with Bluge. Indexing
// is keyed by message id, so redelivered messages overwrite instead of
// duplicating.
type MessageIndex struct {
	writer   *bluge.Writer
	log      *slog.Logger
	pageSize int
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger, pageSize int) *MessageIndex {
	return &MessageIndex{writer: writer, log: log, pageSize: pageSize}
}

// Index adds one message to the full-text index. Non-text bodies are still
// indexed: filenames in file messages are worth finding too.
func (i *MessageIndex) Index(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewKeywordField("conversation", string(message.Conversation)).StoreValue()).
		AddField(bluge.NewTextField("sender", message.SenderName).StoreValue()).
		AddField(bluge.NewTextField("body", message.Body).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// SearchPaginated runs a match query over message bodies, scoped to one
// conversation, and returns the requested page plus the total hit count.
func (i *MessageIndex) SearchPaginated(ctx context.Context, terms string, id domain.ConversationID, page int) ([]Hit, uint64, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = reader.Close()
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("body")).
		AddMust(bluge.NewTermQuery(string(id)).SetField("conversation"))

	request := bluge.NewTopNSearch(i.pageSize, query).
		SetFrom(page * i.pageSize).
		WithStandardAggregations()

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, err
	}

	var hits []Hit
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit Hit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "conversation":
				hit.Conversation = string(value)
			case "sender":
				hit.Sender = string(value)
			case "body":
				hit.Body = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, 0, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, 0, err
	}
	return hits, iterator.Aggregations().Count(), nil
}
