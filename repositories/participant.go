//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"batepapo/domain"
	"batepapo/errors"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const participantPrefix = "participant:"

type IParticipantRepository interface {
	Create(name string, now time.Time) (domain.Participant, error)
	List() ([]domain.Participant, error)
	Heartbeat(name string, now time.Time) (domain.Participant, error)
	DeleteInactive(now time.Time, threshold time.Duration) (int, error)
}

type ParticipantRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewParticipantRepository(db *badger.DB, log *slog.Logger) ParticipantRepository {
	return ParticipantRepository{db: db, log: log}
}

// diskParticipant is the persisted document.
// LastHeartbeat is stored as nanoseconds since epoch.
type diskParticipant struct {
	Name          string `json:"name"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
}

// Create persists a new participant keyed by name.
// The existence check and the insert run in a single Badger transaction,
// so two concurrent registrations of the same name cannot both succeed.
func (p ParticipantRepository) Create(name string, now time.Time) (domain.Participant, error) {
	participant := domain.Participant{Name: name, LastHeartbeat: now}

	data, err := json.Marshal(fromParticipant(participant))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = p.db.Update(func(txn *badger.Txn) error {
		key := []byte(participantPrefix + name)
		if _, err = txn.Get(key); err == nil {
			return errors.ErrDuplicateName
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return domain.Participant{}, err
	}
	return participant, nil
}

// List returns every currently stored participant in key order.
func (p ParticipantRepository) List() ([]domain.Participant, error) {
	var participants []domain.Participant
	err := p.db.View(func(txn *badger.Txn) error {
		prefix := []byte(participantPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var disk diskParticipant
				if err := json.Unmarshal(val, &disk); err != nil {
					return err
				}
				participants = append(participants, toParticipant(disk))
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
	return participants, nil
}

// Heartbeat refreshes the liveness timestamp of the named participant.
// Returns ErrParticipantNotFound if no record exists, e.g. after eviction.
func (p ParticipantRepository) Heartbeat(name string, now time.Time) (domain.Participant, error) {
	participant := domain.Participant{Name: name, LastHeartbeat: now}

	err := p.db.Update(func(txn *badger.Txn) error {
		key := []byte(participantPrefix + name)
		if _, err := txn.Get(key); err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrParticipantNotFound
			}
			return err
		}
		data, err := json.Marshal(fromParticipant(participant))
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return domain.Participant{}, err
	}
	return participant, nil
}

// DeleteInactive removes every participant whose heartbeat is strictly older
// than the threshold. A heartbeat exactly at the threshold is retained.
// Returns the number of evicted participants.
func (p ParticipantRepository) DeleteInactive(now time.Time, threshold time.Duration) (int, error) {
	count := 0
	err := p.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(participantPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		var stale [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var disk diskParticipant
				if err := json.Unmarshal(val, &disk); err != nil {
					return err
				}
				if !toParticipant(disk).Alive(now, threshold) {
					stale = append(stale, item.KeyCopy(nil))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func fromParticipant(participant domain.Participant) diskParticipant {
	return diskParticipant{
		Name:          participant.Name,
		LastHeartbeat: participant.LastHeartbeat.UnixNano(),
	}
}

func toParticipant(disk diskParticipant) domain.Participant {
	return domain.Participant{
		Name:          disk.Name,
		LastHeartbeat: time.Unix(0, disk.LastHeartbeat).UTC(),
	}
}
