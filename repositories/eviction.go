//go:generate go run go.uber.org/mock/mockgen -source=eviction.go -destination=../mocks/mock_eviction_repository.go -package=mocks
package repositories

import (
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"sala-chat/domain"
)

type IEvictionRepository interface {
	Evict(names []string, notices []domain.Message) error
}

// EvictionRepository removes participants and writes their departure notices
// in one transaction. Participants and messages live in the same store, so a
// crash can never leave a participant gone with the notice missing.
type EvictionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewEvictionRepository(db *badger.DB, log *slog.Logger) *EvictionRepository {
	return &EvictionRepository{db: db, log: log}
}

func (r EvictionRepository) Evict(names []string, notices []domain.Message) error {
	return r.db.Update(func(txn *badger.Txn) error {
		for _, name := range names {
			if err := txn.Delete(participantKey(name)); err != nil {
				return err
			}
		}
		for _, m := range notices {
			if err := storeIn(txn, m); err != nil {
				return err
			}
		}
		return nil
	})
}
