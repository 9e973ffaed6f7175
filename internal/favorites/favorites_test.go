package favorites

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arcanaland/flashcards/internal/card"
	"github.com/arcanaland/flashcards/internal/kv"
)

var hello = Ref{SetName: "Greetings", Level: card.L1, SetIndex: 0, CardIndex: 0}

func fixedClock() func() time.Time {
	t := time.UnixMilli(1700000000000)
	return func() time.Time { return t }
}

func TestIDIsComposite(t *testing.T) {
	assert.Equal(t, "Greetings_L1_0", hello.ID())
	assert.Equal(t, "Weather_L3_12", ID("Weather", card.L3, 12))
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	s := Open(kv.NewMemoryStore(), nil, WithClock(fixedClock()))

	added, err := s.Toggle(hello)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, s.IsFavorite(hello.ID()))
	require.Len(t, s.List(), 1)
	assert.Equal(t, Entry{ID: "Greetings_L1_0", SetName: "Greetings", Level: card.L1, Timestamp: 1700000000000}, s.List()[0])

	added, err = s.Toggle(hello)
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, s.IsFavorite(hello.ID()))
	assert.Empty(t, s.List())
}

func TestInsertionOrderIsPreserved(t *testing.T) {
	s := Open(kv.NewMemoryStore(), nil)
	refs := []Ref{
		{SetName: "B", Level: card.L2, CardIndex: 3},
		{SetName: "A", Level: card.L1, CardIndex: 1},
		{SetName: "C", Level: card.L1, CardIndex: 0},
	}
	for _, r := range refs {
		_, err := s.Toggle(r)
		require.NoError(t, err)
	}

	// Removing the middle one keeps the others in order
	_, err := s.Toggle(refs[1])
	require.NoError(t, err)

	ids := []string{}
	for _, e := range s.List() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"B_L2_3", "C_L1_0"}, ids)

	l1 := s.Filter(card.LevelFilter(card.L1))
	require.Len(t, l1, 1)
	assert.Equal(t, "C_L1_0", l1[0].ID)
	assert.Len(t, s.Filter(card.FilterAll), 2)
}

func TestPersistsAcrossOpen(t *testing.T) {
	store := kv.NewMemoryStore()
	s := Open(store, nil)
	_, err := s.Toggle(hello)
	require.NoError(t, err)

	raw, ok, err := store.Read(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"setName":"Greetings"`)

	reopened := Open(store, nil)
	assert.True(t, reopened.IsFavorite(hello.ID()))

	_, err = reopened.Toggle(hello)
	require.NoError(t, err)
	raw, _, _ = store.Read(StorageKey)
	assert.Equal(t, "[]", string(raw))
}

func TestCorruptStorageYieldsEmptyList(t *testing.T) {
	store := kv.NewMemoryStore()
	require.NoError(t, store.Write(StorageKey, []byte(`{not json`)))
	core, logs := observer.New(zapcore.WarnLevel)

	s := Open(store, zap.New(core))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, logs.FilterMessage("favorites storage corrupt, starting empty").Len())

	_, err := s.Toggle(hello)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestDuplicateStoredIDsAreDropped(t *testing.T) {
	store := kv.NewMemoryStore()
	require.NoError(t, store.Write(StorageKey, []byte(
		`[{"id":"A_L1_0","setName":"A","level":"L1","cardIndex":0,"timestamp":1},
		  {"id":"A_L1_0","setName":"A","level":"L1","cardIndex":0,"timestamp":2}]`)))

	s := Open(store, nil)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, int64(1), s.List()[0].Timestamp)
}

func TestClear(t *testing.T) {
	store := kv.NewMemoryStore()
	s := Open(store, nil)
	_, _ = s.Toggle(hello)

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
	_, ok, _ := store.Read(StorageKey)
	assert.False(t, ok)
}

type failingStore struct{ *kv.MemoryStore }

func (f *failingStore) Write(string, []byte) error { return errors.New("disk full") }

func TestToggleReportsWriteFailure(t *testing.T) {
	s := Open(&failingStore{MemoryStore: kv.NewMemoryStore()}, nil)

	added, err := s.Toggle(hello)
	assert.True(t, added)
	assert.Error(t, err)
	assert.True(t, s.IsFavorite(hello.ID()), "memory state still changes")
}
