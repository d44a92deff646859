package services

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sala-chat/domain"
	"sala-chat/repositories"
	"sala-chat/sanitize"
)

type IParticipantService interface {
	Register(name string) error
	List() ([]domain.Participant, error)
	Ping(name string) error
}

type ParticipantService struct {
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	search       repositories.ISearchRepository
	log          *slog.Logger
	now          func() time.Time
}

func NewParticipantService(
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	search repositories.ISearchRepository,
	log *slog.Logger,
) *ParticipantService {
	return &ParticipantService{
		participants: participants,
		messages:     messages,
		search:       search,
		log:          log,
		now:          time.Now,
	}
}

// Register validates and sanitizes the name, claims it if no
// case-insensitive match exists, and announces the arrival with a broadcast
// status notice. Names are unique under case-insensitive equality; the
// containment matching some chat backends inherit from regex lookups is
// deliberately not reproduced, so "ann" and "Anna" may coexist.
func (s *ParticipantService) Register(name string) error {
	name = sanitize.Clean(name)
	if err := validate.Struct(namePayload{Name: name}); err != nil {
		return err
	}

	now := s.now().UTC()
	if err := s.participants.Create(domain.Participant{Name: name, LastStatus: now}); err != nil {
		return err
	}
	s.log.Info("Participant joined", "name", name)

	notice := domain.Message{
		ID:   uuid.New(),
		From: name,
		To:   domain.Broadcast,
		Text: domain.JoinedRoomText,
		Type: domain.KindStatus,
		At:   now,
	}
	if err := s.messages.Store(notice); err != nil {
		return err
	}
	if err := s.search.Index(notice); err != nil {
		s.log.Error("Search index update failed", "id", notice.ID, "error", err)
	}
	return nil
}

func (s *ParticipantService) List() ([]domain.Participant, error) {
	return s.participants.List()
}

// Ping moves the participant's liveness stamp to now. Exact-name match only.
func (s *ParticipantService) Ping(name string) error {
	return s.participants.Touch(sanitize.Clean(name), s.now().UTC())
}
