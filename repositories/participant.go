//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"sala-chat/domain"
	"sala-chat/errors"
)

const participantPrefix = "participant:"

type IParticipantRepository interface {
	Create(p domain.Participant) error
	Get(name string) (domain.Participant, error)
	List() ([]domain.Participant, error)
	Touch(name string, at time.Time) error
	ListStaleBefore(threshold time.Time) ([]domain.Participant, error)
}

type ParticipantRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewParticipantRepository(db *badger.DB, log *slog.Logger) *ParticipantRepository {
	return &ParticipantRepository{db: db, log: log}
}

// diskParticipant is the stored shape. LastStatus travels as epoch millis,
// matching the wire format clients consume.
type diskParticipant struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

// participantKey folds the name so that two spellings differing only in case
// map to the same key. A single record per folded name is what enforces the
// case-insensitive uniqueness invariant.
func participantKey(name string) []byte {
	return []byte(participantPrefix + strings.ToLower(name))
}

// Create inserts the participant if no case-insensitive match exists. The
// existence check and the insert run in one transaction, so two concurrent
// registrations of the same name cannot both succeed.
func (r ParticipantRepository) Create(p domain.Participant) error {
	data, err := json.Marshal(fromParticipant(p))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(p.Name)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrNameTaken
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, data)
	})
}

// Get returns the participant matching name exactly. A record stored under
// the same folded key but a different spelling does not match.
func (r ParticipantRepository) Get(name string) (domain.Participant, error) {
	var disk diskParticipant

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(participantKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Participant{}, errors.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, err
	}
	if disk.Name != name {
		return domain.Participant{}, errors.ErrParticipantNotFound
	}
	return toParticipant(disk), nil
}

// List scans every participant record. Order follows the folded-name keys
// and is not part of the contract.
func (r ParticipantRepository) List() ([]domain.Participant, error) {
	var participants []domain.Participant
	err := r.db.View(func(txn *badger.Txn) error {
		return r.scan(txn, func(p domain.Participant) {
			participants = append(participants, p)
		})
	})
	return participants, err
}

// Touch moves LastStatus forward for an exact-name match. Read and write
// share one transaction.
func (r ParticipantRepository) Touch(name string, at time.Time) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(name)
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		var disk diskParticipant
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		}); err != nil {
			return err
		}
		if disk.Name != name {
			return badger.ErrKeyNotFound
		}

		disk.LastStatus = at.UnixMilli()
		data, err := json.Marshal(disk)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err == badger.ErrKeyNotFound {
		return errors.ErrParticipantNotFound
	}
	return err
}

// ListStaleBefore returns every participant whose LastStatus predates
// threshold. The reaper consumes this each cycle.
func (r ParticipantRepository) ListStaleBefore(threshold time.Time) ([]domain.Participant, error) {
	var stale []domain.Participant
	err := r.db.View(func(txn *badger.Txn) error {
		return r.scan(txn, func(p domain.Participant) {
			if p.StaleBefore(threshold) {
				stale = append(stale, p)
			}
		})
	})
	return stale, err
}

func (r ParticipantRepository) scan(txn *badger.Txn, visit func(domain.Participant)) error {
	prefix := []byte(participantPrefix)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var disk diskParticipant
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
		if err != nil {
			return err
		}
		visit(toParticipant(disk))
	}
	return nil
}

func fromParticipant(p domain.Participant) diskParticipant {
	return diskParticipant{Name: p.Name, LastStatus: p.LastStatus.UnixMilli()}
}

func toParticipant(disk diskParticipant) domain.Participant {
	return domain.Participant{
		Name:       disk.Name,
		LastStatus: time.UnixMilli(disk.LastStatus).UTC(),
	}
}
