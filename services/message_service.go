//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_message_service.go -package=mocks
package services

import (
	"batepapo/domain"
	"batepapo/errors"
	"batepapo/moderation"
	"batepapo/repositories"
	"batepapo/requests"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

type IMessageService interface {
	Post(user string, req requests.PostMessageRequest) (domain.Message, error)
	History(user string, limit *int) ([]domain.Message, error)
	Search(ctx context.Context, user, terms string, limit int) ([]domain.Message, error)
}

type MessageService struct {
	messages  repositories.IMessageRepository
	index     repositories.IMessageIndex
	moderator *moderation.Moderator
	log       *slog.Logger
}

func NewMessageService(
	messages repositories.IMessageRepository,
	index repositories.IMessageIndex,
	moderator *moderation.Moderator,
	log *slog.Logger,
) *MessageService {
	return &MessageService{messages: messages, index: index, moderator: moderator, log: log}
}

// Post stamps the sender and the wall clock onto the message, censors the
// text, and appends the result to the store. Messages are never mutated or
// deleted afterwards.
func (s *MessageService) Post(user string, req requests.PostMessageRequest) (domain.Message, error) {
	text, censored := s.moderate(user, req.Text)

	message := domain.Message{
		ID:   uuid.New(),
		From: user,
		To:   req.To,
		Text: text,
		Type: domain.MessageType(req.Type),
		At:   time.Now().UTC(),
	}

	if err := s.messages.Store(message); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	// The Badger record is the source of truth; a failed index write only
	// degrades search results, so it is logged rather than surfaced.
	if err := s.index.Index(message); err != nil {
		s.log.Warn("Failed to index message", "id", message.ID, "err", err)
	}

	if censored {
		s.log.Info("Message censored before storage", "from", user)
	}
	return message, nil
}

// History returns the messages visible to the user in chronological order.
// A limit keeps only the most recent ones, still oldest first.
func (s *MessageService) History(user string, limit *int) ([]domain.Message, error) {
	messages, err := s.messages.GetVisibleTo(user, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return messages, nil
}

// Search runs a full-text query over the messages visible to the user.
func (s *MessageService) Search(ctx context.Context, user, terms string, limit int) ([]domain.Message, error) {
	messages, err := s.index.Search(ctx, user, terms, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return messages, nil
}

func (s *MessageService) moderate(user, text string) (string, bool) {
	info := whatlanggo.Detect(text)

	sanitized, foundWords := s.moderator.Censor(text)
	if len(foundWords) > 0 {
		s.log.Warn("Banned words detected",
			"from", user,
			"lang", info.Lang.Iso6391(),
			"matches", len(foundWords))
		return sanitized, true
	}
	return text, false
}
