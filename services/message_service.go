package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"sala-chat/domain"
	"sala-chat/errors"
	"sala-chat/moderation"
	"sala-chat/repositories"
	"sala-chat/sanitize"
)

type IMessageService interface {
	Post(from, to, text, kind string) (uuid.UUID, error)
	ListFor(user string, limit int) ([]domain.Message, error)
	Edit(id uuid.UUID, requester, to, text, kind string) error
	Delete(id uuid.UUID, requester string) error
	Search(ctx context.Context, user, terms string, limit int) ([]domain.Message, error)
}

type MessageService struct {
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	search       repositories.ISearchRepository
	moderator    *moderation.Moderator
	log          *slog.Logger
	now          func() time.Time
	searchLimit  int
}

func NewMessageService(
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	search repositories.ISearchRepository,
	moderator *moderation.Moderator,
	log *slog.Logger,
	searchLimit int,
) *MessageService {
	return &MessageService{
		participants: participants,
		messages:     messages,
		search:       search,
		moderator:    moderator,
		log:          log,
		now:          time.Now,
		searchLimit:  searchLimit,
	}
}

// Post stores a message from a registered sender. The sender identity comes
// from the request header, never from the body.
func (s *MessageService) Post(from, to, text, kind string) (uuid.UUID, error) {
	from = sanitize.Clean(from)
	if _, err := s.participants.Get(from); err != nil {
		return uuid.Nil, err
	}

	payload, err := s.cleanPayload(to, text, kind)
	if err != nil {
		return uuid.Nil, err
	}

	m := domain.Message{
		ID:   uuid.New(),
		From: from,
		To:   payload.To,
		Text: payload.Text,
		Type: payload.Type,
		At:   s.now().UTC(),
	}
	if err := s.messages.Store(m); err != nil {
		return uuid.Nil, err
	}
	s.index(m)
	return m.ID, nil
}

// index mirrors a stored message into the search index. The store is the
// source of truth; a failed index write costs search recall, not the
// message, so it is logged and the request still succeeds.
func (s *MessageService) index(m domain.Message) {
	if err := s.search.Index(m); err != nil {
		s.log.Error("Search index update failed", "id", m.ID, "error", err)
	}
}

// ListFor returns the messages visible to user, oldest first. A positive
// limit keeps only the most recent entries of the visible set, still in
// chronological order.
func (s *MessageService) ListFor(user string, limit int) ([]domain.Message, error) {
	user = sanitize.Clean(user)
	if _, err := s.participants.Get(user); err != nil {
		return nil, err
	}

	all, err := s.messages.List()
	if err != nil {
		return nil, err
	}

	visible := lo.Filter(all, func(m domain.Message, _ int) bool {
		return m.VisibleTo(user)
	})
	if limit > 0 && len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}
	return visible, nil
}

// Edit replaces to/text/type and re-stamps the wall-clock time. Sender
// identity and the message's position in the history never change.
func (s *MessageService) Edit(id uuid.UUID, requester, to, text, kind string) error {
	requester = sanitize.Clean(requester)

	m, err := s.messages.GetByID(id)
	if err != nil {
		return err
	}
	if _, err := s.participants.Get(requester); err != nil {
		return err
	}
	if m.From != requester {
		return errors.ErrNotMessageOwner
	}

	payload, err := s.cleanPayload(to, text, kind)
	if err != nil {
		return err
	}

	m.To = payload.To
	m.Text = payload.Text
	m.Type = payload.Type
	m.At = s.now().UTC()
	if err := s.messages.Replace(m); err != nil {
		return err
	}
	s.index(m)
	return nil
}

// Delete removes a message owned by requester.
func (s *MessageService) Delete(id uuid.UUID, requester string) error {
	requester = sanitize.Clean(requester)

	m, err := s.messages.GetByID(id)
	if err != nil {
		return err
	}
	if m.From != requester {
		return errors.ErrNotMessageOwner
	}

	if err := s.messages.Delete(id); err != nil {
		return err
	}
	if err := s.search.Remove(id); err != nil {
		s.log.Error("Search index removal failed", "id", id, "error", err)
	}
	return nil
}

// Search runs a full-text query over message text and filters the hits with
// the same visibility rule as ListFor. Hits are ordered by walking the
// stored history, so a search result sits exactly where ListFor would show
// it, edited messages included.
func (s *MessageService) Search(ctx context.Context, user, terms string, limit int) ([]domain.Message, error) {
	user = sanitize.Clean(user)
	if _, err := s.participants.Get(user); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.searchLimit
	}

	ids, err := s.search.Search(ctx, sanitize.Clean(terms), limit)
	if err != nil {
		return nil, err
	}
	hits := lo.SliceToMap(ids, func(id uuid.UUID) (uuid.UUID, struct{}) {
		return id, struct{}{}
	})

	all, err := s.messages.List()
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(m domain.Message, _ int) bool {
		_, hit := hits[m.ID]
		return hit && m.VisibleTo(user)
	}), nil
}

// cleanPayload sanitizes, validates, and censors the client-editable fields.
func (s *MessageService) cleanPayload(to, text, kind string) (messagePayload, error) {
	payload := messagePayload{
		To:   sanitize.Clean(to),
		Text: sanitize.Clean(text),
		Type: sanitize.Clean(kind),
	}
	if err := validate.Struct(payload); err != nil {
		return messagePayload{}, err
	}

	censored, found := s.moderator.Censor(payload.Text)
	if len(found) > 0 {
		info := whatlanggo.Detect(payload.Text)
		s.log.Warn("Censored message text",
			"words", len(found),
			"lang", info.Lang.Iso6391())
		payload.Text = censored
	}
	return payload, nil
}
