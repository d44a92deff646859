package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"sala-chat/domain"
	"sala-chat/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestParticipantRepository_Create_And_Get(t *testing.T) {
	req := require.New(t)
	repo := NewParticipantRepository(openTestDB(t), slog.Default())

	now := time.Now().UTC().Truncate(time.Millisecond)
	req.NoError(repo.Create(domain.Participant{Name: "Maria", LastStatus: now}))

	fetched, err := repo.Get("Maria")
	req.NoError(err)
	req.Equal("Maria", fetched.Name)
	req.Equal(now.UnixMilli(), fetched.LastStatus.UnixMilli())

	// Exact-name contract: the stored spelling is the only one that matches.
	_, err = repo.Get("maria")
	req.ErrorIs(err, errors.ErrParticipantNotFound)
}

func TestParticipantRepository_CaseInsensitiveUniqueness(t *testing.T) {
	req := require.New(t)
	repo := NewParticipantRepository(openTestDB(t), slog.Default())
	now := time.Now().UTC()

	req.NoError(repo.Create(domain.Participant{Name: "Anna", LastStatus: now}))
	req.ErrorIs(repo.Create(domain.Participant{Name: "anna", LastStatus: now}), errors.ErrNameTaken)
	req.ErrorIs(repo.Create(domain.Participant{Name: "ANNA", LastStatus: now}), errors.ErrNameTaken)

	// Containment is not collision: "ann" lives alongside "Anna".
	req.NoError(repo.Create(domain.Participant{Name: "ann", LastStatus: now}))
}

func TestParticipantRepository_Touch(t *testing.T) {
	req := require.New(t)
	repo := NewParticipantRepository(openTestDB(t), slog.Default())

	start := time.Now().UTC().Truncate(time.Millisecond)
	req.NoError(repo.Create(domain.Participant{Name: "Bruno", LastStatus: start}))

	later := start.Add(30 * time.Second)
	req.NoError(repo.Touch("Bruno", later))

	fetched, err := repo.Get("Bruno")
	req.NoError(err)
	req.Equal(later.UnixMilli(), fetched.LastStatus.UnixMilli())

	req.ErrorIs(repo.Touch("bruno", later), errors.ErrParticipantNotFound)
	req.ErrorIs(repo.Touch("Carla", later), errors.ErrParticipantNotFound)
}

func TestParticipantRepository_List(t *testing.T) {
	req := require.New(t)
	repo := NewParticipantRepository(openTestDB(t), slog.Default())
	now := time.Now().UTC()

	names := []string{"Ana", "Bia", "Caio"}
	for _, name := range names {
		req.NoError(repo.Create(domain.Participant{Name: name, LastStatus: now}))
	}

	listed, err := repo.List()
	req.NoError(err)
	req.Len(listed, len(names))
}

func TestParticipantRepository_StaleScan(t *testing.T) {
	req := require.New(t)
	repo := NewParticipantRepository(openTestDB(t), slog.Default())

	now := time.Now().UTC().Truncate(time.Millisecond)
	stale := now.Add(-time.Minute)

	req.NoError(repo.Create(domain.Participant{Name: "Dormindo", LastStatus: stale}))
	req.NoError(repo.Create(domain.Participant{Name: "Sumido", LastStatus: stale}))
	req.NoError(repo.Create(domain.Participant{Name: "Acordado", LastStatus: now}))

	threshold := now.Add(-10 * time.Second)
	found, err := repo.ListStaleBefore(threshold)
	req.NoError(err)
	req.Len(found, 2)
}
