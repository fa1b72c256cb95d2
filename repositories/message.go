//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"batepapo/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const messagePrefix = "msg:"

type IMessageRepository interface {
	Store(message domain.Message) error
	GetVisibleTo(user string, limit *int) ([]domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

// NewMessageRepository builds the message log. limitMessages, when set, caps
// reads that do not carry their own limit.
func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

type diskMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	At   int64  `json:"at"`
}

// Store persists a message in BadgerDB.
// The key is formatted as "msg:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
//
// Messages are append-only; no update or delete path exists.
func (m MessageRepository) Store(message domain.Message) error {
	key := fmt.Sprintf("%s%019d:%s",
		messagePrefix,
		message.At.UnixNano(),
		message.ID,
	)
	data, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// GetVisibleTo retrieves the messages the given user may read: broadcasts,
// messages addressed to them, and messages they sent themselves.
// Thanks to the padded timestamp in the key, messages are naturally sorted by time.
// The scan runs in reverse so a limit keeps the most recent visible messages;
// the collected slice is reversed back to chronological order before returning.
func (m MessageRepository) GetVisibleTo(user string, limit *int) ([]domain.Message, error) {
	if limit == nil {
		limit = m.limitMessages
	}
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key, then walk backwards.
		seekKey := append([]byte(messagePrefix), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit != nil && len(messages) == *limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d visible messages reached", *limit))
				break
			}
			err := it.Item().Value(func(val []byte) error {
				var disk diskMessage
				if err := json.Unmarshal(val, &disk); err != nil {
					return err
				}
				message, err := toMessage(disk)
				if err != nil {
					return err
				}
				if message.VisibleTo(user) {
					messages = append(messages, message)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lo.Reverse(messages), nil
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:   message.ID.String(),
		From: message.From,
		To:   message.To,
		Text: message.Text,
		Type: string(message.Type),
		At:   message.At.UnixNano(),
	}
}

func toMessage(disk diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:   parsedID,
		From: disk.From,
		To:   disk.To,
		Text: disk.Text,
		Type: domain.MessageType(disk.Type),
		At:   time.Unix(0, disk.At).UTC(),
	}, nil
}
