//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"sala-chat/domain"
	"sala-chat/errors"
)

const (
	messagePrefix    = "msg:"
	messageIdxPrefix = "idx:msg:"
)

type IMessageRepository interface {
	Store(m domain.Message) error
	List() ([]domain.Message, error)
	GetByID(id uuid.UUID) (domain.Message, error)
	Replace(m domain.Message) error
	Delete(id uuid.UUID) error
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

type diskMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	At   int64  `json:"at"`
}

// messageKey formats "msg:{timestamp_padded}:{uuid}" so a prefix scan walks
// messages in insertion order. The 19-digit zero padding keeps the
// lexicographic and chronological orders identical; the uuid disambiguates
// two messages written in the same nanosecond.
func messageKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", messagePrefix, m.At.UnixNano(), m.ID))
}

func messageIdxKey(id uuid.UUID) []byte {
	return []byte(messageIdxPrefix + id.String())
}

// Store persists the message and its id index entry in one transaction. The
// index maps the id to the chronological key, so later edits and deletes can
// find the record without scanning.
func (r MessageRepository) Store(m domain.Message) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return storeIn(txn, m)
	})
}

// List returns every message in insertion order, oldest first.
func (r MessageRepository) List() ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var disk diskMessage
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &disk)
			})
			if err != nil {
				return err
			}
			m, err := toMessage(disk)
			if err != nil {
				return err
			}
			messages = append(messages, m)
		}
		return nil
	})
	return messages, err
}

func (r MessageRepository) GetByID(id uuid.UUID) (domain.Message, error) {
	var disk diskMessage
	err := r.db.View(func(txn *badger.Txn) error {
		key, err := resolveKey(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &disk)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Message{}, errors.ErrMessageNotFound
	}
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(disk)
}

// Replace overwrites the stored record in place. The chronological key is
// resolved through the index and kept, so an edited message never changes
// its position in the room history even though its At stamp moves.
func (r MessageRepository) Replace(m domain.Message) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		key, err := resolveKey(txn, m.ID)
		if err != nil {
			return err
		}
		data, err := json.Marshal(fromMessage(m))
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err == badger.ErrKeyNotFound {
		return errors.ErrMessageNotFound
	}
	return err
}

// Delete removes the record and its index entry.
func (r MessageRepository) Delete(id uuid.UUID) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		key, err := resolveKey(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageIdxKey(id))
	})
	if err == badger.ErrKeyNotFound {
		return errors.ErrMessageNotFound
	}
	return err
}

func storeIn(txn *badger.Txn, m domain.Message) error {
	data, err := json.Marshal(fromMessage(m))
	if err != nil {
		return err
	}
	key := messageKey(m)
	if err := txn.Set(key, data); err != nil {
		return err
	}
	return txn.Set(messageIdxKey(m.ID), key)
}

func resolveKey(txn *badger.Txn, id uuid.UUID) ([]byte, error) {
	item, err := txn.Get(messageIdxKey(id))
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func fromMessage(m domain.Message) diskMessage {
	return diskMessage{
		ID:   m.ID.String(),
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: m.Type,
		At:   m.At.UnixNano(),
	}
}

func toMessage(disk diskMessage) (domain.Message, error) {
	id, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:   id,
		From: disk.From,
		To:   disk.To,
		Text: disk.Text,
		Type: disk.Type,
		At:   time.Unix(0, disk.At).UTC(),
	}, nil
}
