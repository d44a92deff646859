//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_search_repository.go -package=mocks
package repositories

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"

	"sala-chat/domain"
)

type ISearchRepository interface {
	Index(m domain.Message) error
	Remove(id uuid.UUID) error
	Search(ctx context.Context, terms string, limit int) ([]uuid.UUID, error)
}

// SearchRepository maintains a Bluge full-text index over message text. The
// Badger store stays the source of truth; the index only yields ids.
type SearchRepository struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchRepository(writer *bluge.Writer, log *slog.Logger) *SearchRepository {
	return &SearchRepository{writer: writer, log: log}
}

// Index upserts the message text under its id. Called on every store and
// edit, so the index always reflects the latest text.
func (r SearchRepository) Index(m domain.Message) error {
	doc := bluge.NewDocument(m.ID.String()).
		AddField(bluge.NewTextField("text", m.Text)).
		AddField(bluge.NewKeywordField("from", m.From))
	return r.writer.Update(doc.ID(), doc)
}

func (r SearchRepository) Remove(id uuid.UUID) error {
	return r.writer.Delete(bluge.Identifier(id.String()))
}

// Search runs a match query over message text and returns up to limit ids,
// best match first.
func (r SearchRepository) Search(ctx context.Context, terms string, limit int) ([]uuid.UUID, error) {
	reader, err := r.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewMatchQuery(terms).SetField("text")
	request := bluge.NewTopNSearch(limit, query)

	it, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for {
		match, err := it.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field != "_id" {
				return true
			}
			id, parseErr := uuid.Parse(string(value))
			if parseErr != nil {
				r.log.Warn("Skipping index entry with malformed id", "raw", string(value))
				return true
			}
			ids = append(ids, id)
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}
