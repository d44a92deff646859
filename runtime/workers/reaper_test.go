package workers

import (
	"log/slog"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"sala-chat/domain"
	"sala-chat/repositories"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type reaperFixture struct {
	participants *repositories.ParticipantRepository
	messages     *repositories.MessageRepository
	reaper       *Reaper
}

func newReaperFixture(t *testing.T, now time.Time) *reaperFixture {
	t.Helper()
	db := openTestDB(t)
	log := slog.Default()
	participants := repositories.NewParticipantRepository(db, log)
	messages := repositories.NewMessageRepository(db, log)
	evictions := repositories.NewEvictionRepository(db, log)

	reaper := NewReaper(participants, evictions, 15*time.Second, 10*time.Second, log)
	reaper.now = func() time.Time { return now }
	return &reaperFixture{participants: participants, messages: messages, reaper: reaper}
}

func TestReaper_Sweep(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := newReaperFixture(t, now)

	req.NoError(f.participants.Create(domain.Participant{Name: "Alice", LastStatus: now.Add(-30 * time.Second)}))
	req.NoError(f.participants.Create(domain.Participant{Name: "Bob", LastStatus: now.Add(-11 * time.Second)}))
	req.NoError(f.participants.Create(domain.Participant{Name: "Carol", LastStatus: now.Add(-2 * time.Second)}))

	req.NoError(f.reaper.Sweep())

	remaining, err := f.participants.List()
	req.NoError(err)
	req.Len(remaining, 1)
	req.Equal("Carol", remaining[0].Name)

	history, err := f.messages.List()
	req.NoError(err)
	req.Len(history, 2)
	departed := map[string]bool{}
	for _, m := range history {
		departed[m.From] = true
		req.Equal(domain.Broadcast, m.To)
		req.Equal(domain.LeftRoomText, m.Text)
		req.Equal(domain.KindStatus, m.Type)
	}
	req.True(departed["Alice"])
	req.True(departed["Bob"])
}

func TestReaper_Sweep_NothingStale(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := newReaperFixture(t, now)

	req.NoError(f.participants.Create(domain.Participant{Name: "Alice", LastStatus: now}))

	req.NoError(f.reaper.Sweep())

	remaining, err := f.participants.List()
	req.NoError(err)
	req.Len(remaining, 1)

	history, err := f.messages.List()
	req.NoError(err)
	req.Empty(history)
}

func TestReaper_Sweep_BoundaryIsNotStale(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := newReaperFixture(t, now)

	req.NoError(f.participants.Create(domain.Participant{Name: "Alice", LastStatus: now.Add(-10 * time.Second)}))

	req.NoError(f.reaper.Sweep())

	remaining, err := f.participants.List()
	req.NoError(err)
	req.Len(remaining, 1, "a stamp exactly at the threshold survives")
}

// failingEvictions rejects every eviction, standing in for a store write
// that cannot commit.
type failingEvictions struct{ err error }

func (f failingEvictions) Evict([]string, []domain.Message) error { return f.err }

func TestReaper_Sweep_FailureLeavesRoomUntouched(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	log := slog.Default()
	participants := repositories.NewParticipantRepository(db, log)
	messages := repositories.NewMessageRepository(db, log)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	req.NoError(participants.Create(domain.Participant{Name: "Alice", LastStatus: now.Add(-30 * time.Second)}))

	boom := badger.ErrConflict
	reaper := NewReaper(participants, failingEvictions{err: boom}, 15*time.Second, 10*time.Second, log)
	reaper.now = func() time.Time { return now }

	req.ErrorIs(reaper.Sweep(), boom)

	// The participant is still there and still stale, so the next sweep
	// can retry the whole eviction, notice included.
	stale, err := participants.ListStaleBefore(now.Add(-10 * time.Second))
	req.NoError(err)
	req.Len(stale, 1)

	history, err := messages.List()
	req.NoError(err)
	req.Empty(history)
}
