package store

import (
	"path/filepath"
	"testing"

	"github.com/hpungsan/diary/internal/errors"
	"github.com/hpungsan/diary/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns a constructor per implementation so contract tests run
// against both.
func backends() map[string]func(*testing.T) Store {
	return map[string]func(*testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemory() },
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLite(filepath.Join(t.TempDir(), "records.db"))
			require.NoError(t, err)
			return s
		},
	}
}

func dates(records []record.Record) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.Date)
	}
	return out
}

func TestStore_CreateAndList(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)

			id, err := s.Create("Monday", "slept badly", 3, "Headache,Cough", "2023-09-21")
			require.NoError(t, err)
			assert.Positive(t, id)

			records, err := s.List()
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, record.Record{
				ID: id, Title: "Monday", Text: "slept badly", Mood: 3,
				Symptoms: "Headache,Cough", Date: "2023-09-21",
			}, records[0])
		})
	}
}

func TestStore_CreateAcceptsMalformedDate(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			_, err := s.Create("t", "", 11, "", "not a date")
			require.NoError(t, err)

			records, err := s.List()
			require.NoError(t, err)
			assert.Equal(t, []string{"not a date"}, dates(records))
		})
	}
}

func TestStore_UniqueIDs(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			seen := map[int64]bool{}
			for i := 0; i < 10; i++ {
				id, err := s.Create("t", "", 5, "", "2023-09-21")
				require.NoError(t, err)
				assert.False(t, seen[id], "id %d reused", id)
				seen[id] = true
			}
		})
	}
}

func TestMemory_IDsAreMaxPlusOne(t *testing.T) {
	s := NewMemory()
	var prev int64
	for i := 0; i < 5; i++ {
		id, err := s.Create("t", "", 5, "", "2023-09-21")
		require.NoError(t, err)
		assert.Equal(t, prev+1, id)
		prev = id
	}
}

func TestMemory_IDsNotReusedAfterDelete(t *testing.T) {
	s := NewMemory()
	_, _ = s.Create("a", "", 5, "", "2023-09-21")
	last, _ := s.Create("b", "", 5, "", "2023-09-21")

	require.NoError(t, s.Delete(last))

	id, err := s.Create("c", "", 5, "", "2023-09-21")
	require.NoError(t, err)
	assert.Equal(t, last+1, id)
}

func TestStore_DeleteMissingDiverges(t *testing.T) {
	t.Run("memory reports not found", func(t *testing.T) {
		s := NewMemory()
		notified := 0
		s.Subscribe(func() { notified++ })

		err := s.Delete(99)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
		assert.Zero(t, notified)
	})

	t.Run("sqlite succeeds and notifies", func(t *testing.T) {
		s, err := NewSQLite(filepath.Join(t.TempDir(), "records.db"))
		require.NoError(t, err)
		notified := 0
		s.Subscribe(func() { notified++ })

		require.NoError(t, s.Delete(99))
		assert.Equal(t, 1, notified)
	})
}

func TestStore_Delete(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			keep, _ := s.Create("keep", "", 5, "", "2023-09-21")
			drop, _ := s.Create("drop", "", 5, "", "2023-09-22")

			require.NoError(t, s.Delete(drop))

			records, err := s.List()
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, keep, records[0].ID)
		})
	}
}

func TestStore_ListKeepsInsertionOrder(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			in := []string{"2023-09-24", "2023-09-21", "2023-09-23"}
			for _, d := range in {
				_, err := s.Create("t", "", 5, "", d)
				require.NoError(t, err)
			}

			records, err := s.List()
			require.NoError(t, err)
			assert.Equal(t, in, dates(records))
		})
	}
}

func TestStore_ListBetween(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			for _, d := range []string{"2023-09-21", "2023-09-22", "2023-09-23", "2023-09-24"} {
				_, err := s.Create("t", "", 5, "", d)
				require.NoError(t, err)
			}

			got, err := s.ListBetween("2023-09-22", "2023-09-24")
			require.NoError(t, err)
			assert.Equal(t, []string{"2023-09-22", "2023-09-23", "2023-09-24"}, dates(got))

			reversed, err := s.ListBetween("2023-09-24", "2023-09-21")
			require.NoError(t, err)
			assert.Empty(t, reversed)
		})
	}
}

func TestStore_SnapshotsAreDetached(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			_, err := s.Create("original", "", 5, "", "2023-09-21")
			require.NoError(t, err)

			first, err := s.List()
			require.NoError(t, err)
			first[0].Title = "mutated"

			second, err := s.List()
			require.NoError(t, err)
			assert.Equal(t, "original", second[0].Title)
		})
	}
}

func TestStore_NotificationFanOut(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			var calls []string

			first := s.Subscribe(func() { calls = append(calls, "first") })
			s.Subscribe(func() { calls = append(calls, "second") })

			_, err := s.Create("t", "", 5, "", "2023-09-21")
			require.NoError(t, err)
			assert.Equal(t, []string{"first", "second"}, calls)

			require.True(t, s.Unsubscribe(first))
			calls = nil

			_, err = s.Create("t", "", 5, "", "2023-09-22")
			require.NoError(t, err)
			assert.Equal(t, []string{"second"}, calls)
		})
	}
}

func TestStore_SubscriberSeesCommittedRecord(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			var seen int
			s.Subscribe(func() {
				records, err := s.List()
				require.NoError(t, err)
				seen = len(records)
			})

			_, err := s.Create("t", "", 5, "", "2023-09-21")
			require.NoError(t, err)
			assert.Equal(t, 1, seen)
		})
	}
}

func TestStore_PanickingSubscriber(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			later := false
			s.Subscribe(func() { panic("subscriber failed") })
			s.Subscribe(func() { later = true })

			assert.Panics(t, func() {
				_, _ = s.Create("kept", "", 5, "", "2023-09-21")
			})
			assert.False(t, later, "subscribers after a panic are skipped")

			records, err := s.List()
			require.NoError(t, err)
			require.Len(t, records, 1, "record must survive a panicking subscriber")
			assert.Equal(t, "kept", records[0].Title)
		})
	}
}

func TestStore_CloseDropsSubscribers(t *testing.T) {
	for name, newStore := range backends() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			notified := 0
			s.Subscribe(func() { notified++ })

			require.NoError(t, s.Close())
			_, err := s.Create("t", "", 5, "", "2023-09-21")
			require.NoError(t, err)
			assert.Zero(t, notified)
		})
	}
}

func TestSQLite_Durable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	id, err := s.Create("persisted", "body", 7, "Nausea or vomiting", "2023-09-21")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	records, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, "persisted", records[0].Title)
	assert.Equal(t, 7, records[0].Mood)
}

func TestOpen(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		s, err := Open(Config{Backend: BackendMemory})
		require.NoError(t, err)
		assert.IsType(t, &Memory{}, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "records.db")
		s, err := Open(Config{Backend: BackendSQLite, Path: path})
		require.NoError(t, err)
		require.IsType(t, &SQLite{}, s)
		assert.Equal(t, path, s.(*SQLite).Path())
	})

	t.Run("sqlite without path", func(t *testing.T) {
		_, err := Open(Config{Backend: BackendSQLite})
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Open(Config{Backend: "sheets"})
		assert.Error(t, err)
	})
}

func TestBackend_IsValid(t *testing.T) {
	assert.True(t, BackendMemory.IsValid())
	assert.True(t, BackendSQLite.IsValid())
	assert.False(t, Backend("").IsValid())
	assert.False(t, Backend("sheets").IsValid())
}
