//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_message_index.go -package=mocks
package repositories

import (
	"batepapo/domain"
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

type IMessageIndex interface {
	Index(message domain.Message) error
	Search(ctx context.Context, user, terms string, limit int) ([]domain.Message, error)
}

// MessageIndex maintains a Bluge full-text index next to the Badger log.
// Indexing is best-effort: the Badger record is the source of truth and a
// failed index write only degrades search results.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// Index upserts the message document keyed by its UUID.
func (i *MessageIndex) Index(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("text", message.Text).StoreValue()).
		AddField(bluge.NewKeywordField("from", message.From).StoreValue()).
		AddField(bluge.NewKeywordField("to", message.To).StoreValue()).
		AddField(bluge.NewKeywordField("type", string(message.Type)).StoreValue()).
		AddField(bluge.NewDateTimeField("at", message.At).Sortable()).
		AddField(bluge.NewStoredOnlyField("at_ns", []byte(strconv.FormatInt(message.At.UnixNano(), 10))))

	return i.writer.Update(doc.ID(), doc)
}

// Search runs a match query over message text, restricted to the documents
// the user is allowed to read (broadcasts, addressed to them, sent by them).
// Results come back in chronological order, at most limit of them.
func (i *MessageIndex) Search(ctx context.Context, user, terms string, limit int) ([]domain.Message, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Failed to close index reader", "err", err)
		}
	}()

	visibility := bluge.NewBooleanQuery().
		AddShould(bluge.NewTermQuery(domain.BroadcastTarget).SetField("to")).
		AddShould(bluge.NewTermQuery(user).SetField("to")).
		AddShould(bluge.NewTermQuery(user).SetField("from")).
		SetMinShould(1)

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("text")).
		AddMust(visibility)

	request := bluge.NewTopNSearch(limit, query).SortBy([]string{"at"})

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		var message domain.Message
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				if id, err := uuid.Parse(string(value)); err == nil {
					message.ID = id
				}
			case "from":
				message.From = string(value)
			case "to":
				message.To = string(value)
			case "text":
				message.Text = string(value)
			case "type":
				message.Type = domain.MessageType(string(value))
			case "at_ns":
				if ns, err := strconv.ParseInt(string(value), 10, 64); err == nil {
					message.At = time.Unix(0, ns).UTC()
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}
