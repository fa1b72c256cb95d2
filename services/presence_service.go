//go:generate go run go.uber.org/mock/mockgen -source=presence_service.go -destination=../mocks/mock_presence_service.go -package=mocks
package services

import (
	"batepapo/domain"
	"batepapo/errors"
	"batepapo/repositories"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"
)

type IPresenceService interface {
	Register(name string) (domain.Participant, error)
	List() ([]domain.Participant, error)
	Heartbeat(name string) (domain.Participant, error)
	EvictInactive(threshold time.Duration) (int, error)
}

type PresenceService struct {
	participants repositories.IParticipantRepository
	log          *slog.Logger
}

func NewPresenceService(participants repositories.IParticipantRepository, log *slog.Logger) *PresenceService {
	return &PresenceService{participants: participants, log: log}
}

// Register creates a participant with a fresh heartbeat.
// ErrDuplicateName is returned while a participant with the same name is
// still live; the name frees up once the sweeper evicts the stale record.
func (s *PresenceService) Register(name string) (domain.Participant, error) {
	participant, err := s.participants.Create(name, time.Now().UTC())
	if err != nil {
		if stderrors.Is(err, errors.ErrDuplicateName) {
			return domain.Participant{}, err
		}
		return domain.Participant{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	s.log.Info("Participant registered", "name", name)
	return participant, nil
}

func (s *PresenceService) List() ([]domain.Participant, error) {
	participants, err := s.participants.List()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return participants, nil
}

// Heartbeat refreshes the caller's liveness timestamp.
func (s *PresenceService) Heartbeat(name string) (domain.Participant, error) {
	participant, err := s.participants.Heartbeat(name, time.Now().UTC())
	if err != nil {
		if stderrors.Is(err, errors.ErrParticipantNotFound) {
			return domain.Participant{}, err
		}
		return domain.Participant{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return participant, nil
}

// EvictInactive removes participants whose heartbeat is older than the
// threshold and returns how many were evicted. Called by the sweeper only;
// no request waits on it.
func (s *PresenceService) EvictInactive(threshold time.Duration) (int, error) {
	count, err := s.participants.DeleteInactive(time.Now().UTC(), threshold)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	if count > 0 {
		s.log.Info("Evicted inactive participants", "count", count)
	}
	return count, nil
}
