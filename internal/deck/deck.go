package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/arcanaland/flashcards/internal/card"
)

// SetDir is the resource directory holding per-set card bodies
const SetDir = "card-sets"

var (
	ErrCatalogLoad = errors.New("catalog load failure")
	ErrSetLoad     = errors.New("set load failure")
	ErrSetNotFound = errors.New("set not found")
)

var validate = validator.New()

// CardCounts holds the number of cards per level, as advertised by the catalog
type CardCounts struct {
	L1 int `json:"L1" validate:"gte=0"`
	L2 int `json:"L2" validate:"gte=0"`
	L3 int `json:"L3" validate:"gte=0"`
}

// Get returns the count for one level
func (c CardCounts) Get(l card.Level) int {
	switch l {
	case card.L1:
		return c.L1
	case card.L2:
		return c.L2
	case card.L3:
		return c.L3
	}
	return 0
}

// Total returns the number of cards over all levels
func (c CardCounts) Total() int {
	return c.L1 + c.L2 + c.L3
}

// CardSet is a named collection of phrase cards partitioned into levels.
// Card bodies stay absent until the catalog loads them.
type CardSet struct {
	Filename string `json:"filename" validate:"required"`
	Name     string `json:"name" validate:"required"`
	// ThemeID and SequenceNumber order sets within a theme for related-set navigation
	ThemeID        string     `json:"themeId,omitempty"`
	SequenceNumber int        `json:"sequenceNumber,omitempty" validate:"gte=0"`
	CardCounts     CardCounts `json:"cardCounts"`

	mu     sync.RWMutex
	levels map[card.Level][]card.Card
}

// Loaded reports whether the card body has been fetched
func (s *CardSet) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levels != nil
}

// Cards returns the loaded cards of one level, nil when not loaded
func (s *CardSet) Cards(level card.Level) []card.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levels[level]
}

// Count returns the loaded card count for a level, or the advertised count before loading
func (s *CardSet) Count(level card.Level) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.levels != nil {
		return len(s.levels[level])
	}
	return s.CardCounts.Get(level)
}

func (s *CardSet) setLevels(levels map[card.Level][]card.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = levels
}

// NewCardSet builds a set with its body already loaded
func NewCardSet(name, filename string, levels map[card.Level][]card.Card) *CardSet {
	s := &CardSet{Name: name, Filename: filename}
	s.CardCounts = CardCounts{L1: len(levels[card.L1]), L2: len(levels[card.L2]), L3: len(levels[card.L3])}
	s.levels = levels
	return s
}

// ValidateSet checks the metadata fields of a catalog entry
func ValidateSet(s *CardSet) error {
	return validate.Struct(s)
}

// Catalog is the ordered sequence of known sets. Its order is the index space used by
// favorites and navigation links, so it is never re-sorted.
type Catalog struct {
	source Source
	logger *zap.Logger
	sets   []*CardSet
}

// NewCatalog wraps already decoded sets
func NewCatalog(source Source, sets []*CardSet, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{source: source, sets: sets, logger: logger}
}

type catalogFile struct {
	Sets []*CardSet `json:"sets"`
}

type setFile struct {
	Levels map[card.Level][]card.Card `json:"levels"`
}

// DecodeCatalog parses a catalog resource
func DecodeCatalog(data []byte) ([]*CardSet, error) {
	var doc catalogFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Sets == nil {
		return nil, errors.New(`catalog has no "sets" array`)
	}
	for i, s := range doc.Sets {
		if s == nil {
			return nil, fmt.Errorf("catalog entry %d is null", i)
		}
	}
	return doc.Sets, nil
}

// DecodeLevels parses a per-set resource. Unknown level keys are reported as an error.
func DecodeLevels(data []byte) (map[card.Level][]card.Card, error) {
	var doc setFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Levels == nil {
		return nil, errors.New(`set has no "levels" object`)
	}
	for l := range doc.Levels {
		switch l {
		case card.L1, card.L2, card.L3:
		default:
			return nil, fmt.Errorf("unknown level key %q", l)
		}
	}
	return doc.Levels, nil
}

// EncodeCatalog renders sets in the catalog resource format
func EncodeCatalog(sets []*CardSet) ([]byte, error) {
	if sets == nil {
		sets = []*CardSet{}
	}
	return json.MarshalIndent(catalogFile{Sets: sets}, "", "  ")
}

// EncodeLevels renders a set body in the per-set resource format
func EncodeLevels(levels map[card.Level][]card.Card) ([]byte, error) {
	out := make(map[card.Level][]card.Card, len(card.Levels))
	for _, l := range card.Levels {
		out[l] = levels[l]
		if out[l] == nil {
			out[l] = []card.Card{}
		}
	}
	return json.MarshalIndent(setFile{Levels: out}, "", "  ")
}

// SetPath returns the resource name of a set body
func SetPath(filename string) string {
	return path.Join(SetDir, filename)
}

// LoadCatalog fetches the catalog metadata. On failure the error is logged and an empty,
// usable catalog is returned along with the error. No retry is attempted.
func LoadCatalog(ctx context.Context, source Source, name string, logger *zap.Logger) (*Catalog, error) {
	c := NewCatalog(source, nil, logger)

	data, err := source.Fetch(ctx, name)
	if err == nil {
		c.sets, err = DecodeCatalog(data)
	}
	if err != nil {
		c.logger.Error("catalog load failure",
			zap.String("source", source.Location()),
			zap.String("resource", name),
			zap.Error(err))
		return c, fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}

	// Invalid entries stay in place so indexes keep their meaning
	for i, s := range c.sets {
		if err := ValidateSet(s); err != nil {
			c.logger.Warn("invalid catalog entry", zap.Int("index", i), zap.String("name", s.Name), zap.Error(err))
		}
	}

	c.logger.Debug("catalog loaded", zap.String("source", source.Location()), zap.Int("sets", len(c.sets)))
	return c, nil
}

// Len returns the number of sets
func (c *Catalog) Len() int {
	return len(c.sets)
}

// Sets returns the sets in catalog order
func (c *Catalog) Sets() []*CardSet {
	out := make([]*CardSet, len(c.sets))
	copy(out, c.sets)
	return out
}

// Set returns the set at index i
func (c *Catalog) Set(i int) (*CardSet, error) {
	if i < 0 || i >= len(c.sets) {
		return nil, fmt.Errorf("%w: index %d", ErrSetNotFound, i)
	}
	return c.sets[i], nil
}

// IndexOf returns the index of the first set named name, or -1
func (c *Catalog) IndexOf(name string) int {
	for i, s := range c.sets {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// EnsureLoaded fetches the card body of a set unless it is already present.
// A failed load leaves the set unloaded; other sets are unaffected.
// Concurrent loads of one set are not deduplicated; the last write wins.
func (c *Catalog) EnsureLoaded(ctx context.Context, i int) error {
	s, err := c.Set(i)
	if err != nil {
		return err
	}
	if s.Loaded() {
		return nil
	}

	resource := SetPath(s.Filename)
	data, err := c.source.Fetch(ctx, resource)
	var levels map[card.Level][]card.Card
	if err == nil {
		levels, err = DecodeLevels(data)
	}
	if err != nil {
		c.logger.Error("set load failure",
			zap.String("set", s.Name),
			zap.String("resource", resource),
			zap.Error(err))
		return fmt.Errorf("%w: %s: %v", ErrSetLoad, s.Name, err)
	}

	for _, l := range card.Levels {
		if got, want := len(levels[l]), s.CardCounts.Get(l); got != want {
			c.logger.Warn("card count mismatch",
				zap.String("set", s.Name),
				zap.String("level", string(l)),
				zap.Int("catalog", want),
				zap.Int("loaded", got))
		}
	}

	s.setLevels(levels)
	c.logger.Debug("set loaded", zap.String("set", s.Name))
	return nil
}

// ThemeNeighbours returns the catalog indexes of the sets just before and after set i
// within its theme, ordered by sequence number. Missing neighbours are -1.
func (c *Catalog) ThemeNeighbours(i int) (prev, next int) {
	prev, next = -1, -1
	s, err := c.Set(i)
	if err != nil || s.ThemeID == "" {
		return prev, next
	}

	for j, o := range c.sets {
		if j == i || o.ThemeID != s.ThemeID {
			continue
		}
		switch {
		case o.SequenceNumber < s.SequenceNumber:
			if prev == -1 || o.SequenceNumber > c.sets[prev].SequenceNumber {
				prev = j
			}
		case o.SequenceNumber > s.SequenceNumber:
			if next == -1 || o.SequenceNumber < c.sets[next].SequenceNumber {
				next = j
			}
		}
	}
	return prev, next
}
