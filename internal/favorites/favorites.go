// Package favorites keeps the user's bookmarked cards. The whole list is persisted as a
// single JSON array on every mutation.
package favorites

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arcanaland/flashcards/internal/card"
	"github.com/arcanaland/flashcards/internal/kv"
)

// StorageKey is the key the list is stored under
const StorageKey = "flashcard-favorites"

// Entry is one bookmarked card
type Entry struct {
	ID        string     `json:"id"`
	SetName   string     `json:"setName"`
	Level     card.Level `json:"level"`
	SetIndex  int        `json:"setIndex"`
	CardIndex int        `json:"cardIndex"`
	Timestamp int64      `json:"timestamp"` // Unix milliseconds
}

// Ref identifies a card that can be bookmarked
type Ref struct {
	SetName   string
	Level     card.Level
	SetIndex  int
	CardIndex int
}

// ID returns the composite favorite id of the card
func (r Ref) ID() string {
	return ID(r.SetName, r.Level, r.CardIndex)
}

// ID builds the composite id for (setName, level, cardIndex)
func ID(setName string, level card.Level, cardIndex int) string {
	return fmt.Sprintf("%s_%s_%d", setName, level, cardIndex)
}

// Store is the in-memory favorites list backed by a kv.Store
type Store struct {
	kv      kv.Store
	logger  *zap.Logger
	now     func() time.Time
	entries []Entry
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads the list from store. Missing, unreadable or corrupt data yields an empty list.
func Open(store kv.Store, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{kv: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.entries = s.load()
	return s
}

func (s *Store) load() []Entry {
	data, ok, err := s.kv.Read(StorageKey)
	if err != nil {
		s.logger.Warn("favorites storage unreadable", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("favorites storage corrupt, starting empty", zap.Error(err))
		return nil
	}

	// Drop duplicate ids, keeping the earliest
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if e.ID == "" || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

func (s *Store) save() error {
	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := s.kv.Write(StorageKey, data); err != nil {
		s.logger.Error("failed to persist favorites", zap.Error(err))
		return fmt.Errorf("failed to persist favorites: %w", err)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Toggle removes the card if it is a favorite and appends it otherwise.
// It reports whether the card is a favorite afterwards. The in-memory list changes even
// when persisting fails.
func (s *Store) Toggle(ref Ref) (bool, error) {
	id := ref.ID()
	added := false
	if i := s.indexOf(id); i >= 0 {
		s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	} else {
		s.entries = append(s.entries, Entry{
			ID:        id,
			SetName:   ref.SetName,
			Level:     ref.Level,
			SetIndex:  ref.SetIndex,
			CardIndex: ref.CardIndex,
			Timestamp: s.now().UnixMilli(),
		})
		added = true
	}
	s.logger.Debug("favorite toggled", zap.String("id", id), zap.Bool("favorite", added))
	return added, s.save()
}

// IsFavorite reports whether id is bookmarked
func (s *Store) IsFavorite(id string) bool {
	return s.indexOf(id) >= 0
}

// Len returns the number of favorites
func (s *Store) Len() int {
	return len(s.entries)
}

// List returns the favorites in insertion order
func (s *Store) List() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Filter returns the favorites whose level passes f, in insertion order
func (s *Store) Filter(f card.LevelFilter) []Entry {
	var out []Entry
	for _, e := range s.entries {
		if f.Matches(e.Level) {
			out = append(out, e)
		}
	}
	return out
}

// Clear removes every favorite
func (s *Store) Clear() error {
	s.entries = nil
	if err := s.kv.Clear(StorageKey); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}
	return nil
}
