package services

import (
	"batepapo/domain"
	"batepapo/errors"
	"batepapo/mocks"
	"batepapo/moderation"
	"batepapo/requests"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestModerator(t *testing.T) *moderation.Moderator {
	t.Helper()
	mod, err := moderation.NewModerator([]string{"badger"}, '*', slog.Default())
	require.NoError(t, err)
	return &mod
}

func TestMessageService_Post(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIMessageRepository(ctrl)
	mockIndex := mocks.NewMockIMessageIndex(ctrl)
	svc := NewMessageService(mockRepo, mockIndex, newTestModerator(t), slog.Default())

	t.Run("should stamp sender and clock server-side", func(t *testing.T) {
		req := require.New(t)
		var stored domain.Message

		mockRepo.EXPECT().
			Store(gomock.Any()).
			DoAndReturn(func(m domain.Message) error {
				stored = m
				return nil
			}).
			Times(1)
		mockIndex.EXPECT().Index(gomock.Any()).Return(nil).Times(1)

		before := time.Now().UTC()
		message, err := svc.Post("alice", requests.PostMessageRequest{
			To:   domain.BroadcastTarget,
			Text: "hi",
			Type: "broadcast",
		})

		req.NoError(err)
		req.Equal("alice", message.From)
		req.Equal(domain.Broadcast, message.Type)
		req.False(message.At.Before(before))
		req.Equal(stored, message)
	})

	t.Run("should censor banned words before storing", func(t *testing.T) {
		req := require.New(t)
		var stored domain.Message

		mockRepo.EXPECT().
			Store(gomock.Any()).
			DoAndReturn(func(m domain.Message) error {
				stored = m
				return nil
			}).
			Times(1)
		mockIndex.EXPECT().Index(gomock.Any()).Return(nil).Times(1)

		_, err := svc.Post("alice", requests.PostMessageRequest{
			To:   "bob",
			Text: "you badger",
			Type: "private",
		})

		req.NoError(err)
		req.Equal("you ******", stored.Text)
	})

	t.Run("should tolerate index failures", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().Store(gomock.Any()).Return(nil).Times(1)
		mockIndex.EXPECT().Index(gomock.Any()).Return(fmt.Errorf("index broken")).Times(1)

		_, err := svc.Post("alice", requests.PostMessageRequest{
			To:   domain.BroadcastTarget,
			Text: "hi",
			Type: "broadcast",
		})

		req.NoError(err)
	})

	t.Run("should wrap store failures", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().Store(gomock.Any()).Return(fmt.Errorf("disk on fire")).Times(1)

		_, err := svc.Post("alice", requests.PostMessageRequest{
			To:   domain.BroadcastTarget,
			Text: "hi",
			Type: "broadcast",
		})

		req.ErrorIs(err, errors.ErrStoreUnavailable)
	})
}

func TestMessageService_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIMessageRepository(ctrl)
	mockIndex := mocks.NewMockIMessageIndex(ctrl)
	svc := NewMessageService(mockRepo, mockIndex, newTestModerator(t), slog.Default())

	t.Run("should pass the limit through", func(t *testing.T) {
		req := require.New(t)
		limit := 2
		expected := []domain.Message{{From: "alice", To: domain.BroadcastTarget}}

		mockRepo.EXPECT().
			GetVisibleTo("bob", &limit).
			Return(expected, nil).
			Times(1)

		messages, err := svc.History("bob", &limit)

		req.NoError(err)
		req.Equal(expected, messages)
	})

	t.Run("should wrap store failures", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetVisibleTo("bob", nil).
			Return(nil, fmt.Errorf("unreachable")).
			Times(1)

		_, err := svc.History("bob", nil)

		req.ErrorIs(err, errors.ErrStoreUnavailable)
	})
}
