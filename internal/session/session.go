// Package session implements the study navigation state machine: which screen is shown,
// which card is under the cursor, and whether it is flipped. A Navigator is owned by one
// render layer and is not safe for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arcanaland/flashcards/internal/card"
	"github.com/arcanaland/flashcards/internal/deck"
	"github.com/arcanaland/flashcards/internal/favorites"
)

// Screen is one state of the navigation machine
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenStudying
	ScreenComplete
	ScreenFavorites
	ScreenFavoriteCard
)

func (s Screen) String() string {
	switch s {
	case ScreenMenu:
		return "menu"
	case ScreenStudying:
		return "studying"
	case ScreenComplete:
		return "complete"
	case ScreenFavorites:
		return "favorites"
	case ScreenFavoriteCard:
		return "favorite-card"
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

var (
	ErrEmptyLevel          = errors.New("level has no cards")
	ErrFavoriteUnavailable = errors.New("favorite unavailable")
	ErrNoCard              = errors.New("no card is displayed")
)

// State is a snapshot of the transient session state
type State struct {
	Screen      Screen
	SetIndex    int
	Level       card.Level
	CardIndex   int
	Flipped     bool
	LevelFilter card.LevelFilter
	// FavIndex is the cursor into the favorites list on the favorite card screen
	FavIndex int
}

// Navigator drives a study session over a catalog and a favorites store
type Navigator struct {
	catalog   *deck.Catalog
	favorites *favorites.Store
	logger    *zap.Logger
	front     card.Face

	state State
	// favList is captured when the favorites screen opens so toggling a star never
	// shifts the traversal under the cursor
	favList []favorites.Entry
}

// Option configures a Navigator
type Option func(*Navigator)

// WithFrontFace selects the face shown before flipping
func WithFrontFace(f card.Face) Option {
	return func(n *Navigator) { n.front = f }
}

// WithLevelFilter sets the initial menu filter
func WithLevelFilter(f card.LevelFilter) Option {
	return func(n *Navigator) { n.state.LevelFilter = f }
}

// New returns a navigator on the menu screen
func New(catalog *deck.Catalog, favs *favorites.Store, logger *zap.Logger, opts ...Option) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Navigator{
		catalog:   catalog,
		favorites: favs,
		logger:    logger,
		front:     card.FaceJapanese,
		state:     State{Screen: ScreenMenu, LevelFilter: card.FilterAll},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Catalog returns the catalog being navigated
func (n *Navigator) Catalog() *deck.Catalog { return n.catalog }

// Screen returns the current screen
func (n *Navigator) Screen() Screen { return n.state.Screen }

// State returns a copy of the session state
func (n *Navigator) State() State { return n.state }

func (n *Navigator) cards(setIndex int, level card.Level) []card.Card {
	s, err := n.catalog.Set(setIndex)
	if err != nil {
		return nil
	}
	return s.Cards(level)
}

// SelectSet starts studying a set at one level, from the first card, unflipped.
// When the set cannot be loaded or the level is empty the screen does not change.
func (n *Navigator) SelectSet(ctx context.Context, setIndex int, level card.Level) error {
	if err := n.catalog.EnsureLoaded(ctx, setIndex); err != nil {
		return err
	}
	if len(n.cards(setIndex, level)) == 0 {
		return fmt.Errorf("%w: set %d level %s", ErrEmptyLevel, setIndex, level)
	}

	n.state.Screen = ScreenStudying
	n.state.SetIndex = setIndex
	n.state.Level = level
	n.state.CardIndex = 0
	n.state.Flipped = false
	n.logger.Debug("study started", zap.Int("set", setIndex), zap.String("level", string(level)))
	return nil
}

// Next advances the cursor. Past the last card of a set it shows the completion screen;
// past the last favorite it returns to the favorites list.
func (n *Navigator) Next(ctx context.Context) error {
	switch n.state.Screen {
	case ScreenStudying:
		if n.state.CardIndex < len(n.cards(n.state.SetIndex, n.state.Level))-1 {
			n.state.CardIndex++
		} else {
			n.state.Screen = ScreenComplete
		}
		n.state.Flipped = false
	case ScreenFavoriteCard:
		for i := n.state.FavIndex + 1; i < len(n.favList); i++ {
			if err := n.openFavorite(ctx, i); err == nil {
				return nil
			}
		}
		n.ShowFavorites()
	}
	return nil
}

// Prev moves the cursor back by one. On the first card it does nothing.
func (n *Navigator) Prev(ctx context.Context) error {
	switch n.state.Screen {
	case ScreenStudying:
		if n.state.CardIndex > 0 {
			n.state.CardIndex--
			n.state.Flipped = false
		}
	case ScreenFavoriteCard:
		for i := n.state.FavIndex - 1; i >= 0; i-- {
			if err := n.openFavorite(ctx, i); err == nil {
				return nil
			}
		}
	}
	return nil
}

// Flip swaps the displayed face without moving the cursor
func (n *Navigator) Flip() {
	switch n.state.Screen {
	case ScreenStudying, ScreenFavoriteCard:
		n.state.Flipped = !n.state.Flipped
	}
}

// BackToCards returns from the completion screen to the last card of the set
func (n *Navigator) BackToCards() {
	if n.state.Screen != ScreenComplete {
		return
	}
	last := len(n.cards(n.state.SetIndex, n.state.Level)) - 1
	if last < 0 {
		n.ShowMenu()
		return
	}
	n.state.Screen = ScreenStudying
	n.state.CardIndex = last
	n.state.Flipped = false
}

// ShowMenu returns to the set list
func (n *Navigator) ShowMenu() {
	n.state.Screen = ScreenMenu
	n.state.Flipped = false
}

// ShowFavorites opens the favorites list, filtered by the current level filter
func (n *Navigator) ShowFavorites() {
	n.favList = n.favorites.Filter(n.state.LevelFilter)
	n.state.Screen = ScreenFavorites
	n.state.FavIndex = 0
	n.state.Flipped = false
}

// OpenFavorite shows the card behind entry i of the favorites list
func (n *Navigator) OpenFavorite(ctx context.Context, i int) error {
	if n.state.Screen != ScreenFavorites && n.state.Screen != ScreenFavoriteCard {
		n.ShowFavorites()
	}
	return n.openFavorite(ctx, i)
}

func (n *Navigator) openFavorite(ctx context.Context, i int) error {
	setIndex, e, err := n.resolveFavorite(ctx, i)
	if err != nil {
		n.logger.Warn("favorite unavailable", zap.Int("index", i), zap.Error(err))
		return err
	}

	n.state.Screen = ScreenFavoriteCard
	n.state.FavIndex = i
	n.state.SetIndex = setIndex
	n.state.Level = e.Level
	n.state.CardIndex = e.CardIndex
	n.state.Flipped = false
	return nil
}

// resolveFavorite finds the set by name, since favorites are keyed by set name
func (n *Navigator) resolveFavorite(ctx context.Context, i int) (int, favorites.Entry, error) {
	if i < 0 || i >= len(n.favList) {
		return -1, favorites.Entry{}, fmt.Errorf("%w: index %d", ErrFavoriteUnavailable, i)
	}
	e := n.favList[i]

	setIndex := n.catalog.IndexOf(e.SetName)
	if setIndex < 0 {
		return -1, e, fmt.Errorf("%w: set %q not in catalog", ErrFavoriteUnavailable, e.SetName)
	}
	if err := n.catalog.EnsureLoaded(ctx, setIndex); err != nil {
		return -1, e, fmt.Errorf("%w: %v", ErrFavoriteUnavailable, err)
	}
	if e.CardIndex < 0 || e.CardIndex >= len(n.cards(setIndex, e.Level)) {
		return -1, e, fmt.Errorf("%w: %s has no card %d", ErrFavoriteUnavailable, e.ID, e.CardIndex)
	}
	return setIndex, e, nil
}

// SetLevelFilter changes the filter applied to the set list and the favorites list
func (n *Navigator) SetLevelFilter(f card.LevelFilter) {
	n.state.LevelFilter = f
	if n.state.Screen == ScreenFavorites {
		n.ShowFavorites()
	}
}

// CycleLevelFilter steps all -> L1 -> L2 -> L3 -> all
func (n *Navigator) CycleLevelFilter() card.LevelFilter {
	n.SetLevelFilter(n.state.LevelFilter.Next())
	return n.state.LevelFilter
}

// CurrentSet returns the set being studied
func (n *Navigator) CurrentSet() (*deck.CardSet, bool) {
	switch n.state.Screen {
	case ScreenStudying, ScreenComplete, ScreenFavoriteCard:
		s, err := n.catalog.Set(n.state.SetIndex)
		return s, err == nil
	}
	return nil, false
}

// CurrentCard returns the displayed card
func (n *Navigator) CurrentCard() (card.Card, bool) {
	switch n.state.Screen {
	case ScreenStudying, ScreenFavoriteCard:
		cards := n.cards(n.state.SetIndex, n.state.Level)
		if n.state.CardIndex >= 0 && n.state.CardIndex < len(cards) {
			return cards[n.state.CardIndex], true
		}
	}
	return card.Card{}, false
}

// Face returns the face currently shown
func (n *Navigator) Face() card.Face {
	if n.state.Flipped {
		return n.front.Other()
	}
	return n.front
}

// FaceText returns the text on the displayed face, empty when no card is shown
func (n *Navigator) FaceText() string {
	c, ok := n.CurrentCard()
	if !ok {
		return ""
	}
	return c.Text(n.Face())
}

// Progress returns the 1-based position and length of the active list
func (n *Navigator) Progress() (current, total int) {
	switch n.state.Screen {
	case ScreenStudying:
		return n.state.CardIndex + 1, len(n.cards(n.state.SetIndex, n.state.Level))
	case ScreenComplete:
		total = len(n.cards(n.state.SetIndex, n.state.Level))
		return total, total
	case ScreenFavoriteCard:
		return n.state.FavIndex + 1, len(n.favList)
	}
	return 0, 0
}

func (n *Navigator) currentRef() (favorites.Ref, error) {
	if _, ok := n.CurrentCard(); !ok {
		return favorites.Ref{}, ErrNoCard
	}
	s, err := n.catalog.Set(n.state.SetIndex)
	if err != nil {
		return favorites.Ref{}, err
	}
	return favorites.Ref{
		SetName:   s.Name,
		Level:     n.state.Level,
		SetIndex:  n.state.SetIndex,
		CardIndex: n.state.CardIndex,
	}, nil
}

// ToggleFavorite stars or unstars the displayed card and reports the new state
func (n *Navigator) ToggleFavorite() (bool, error) {
	ref, err := n.currentRef()
	if err != nil {
		return false, err
	}
	return n.favorites.Toggle(ref)
}

// IsCurrentFavorite reports whether the displayed card is starred
func (n *Navigator) IsCurrentFavorite() bool {
	ref, err := n.currentRef()
	if err != nil {
		return false
	}
	return n.favorites.IsFavorite(ref.ID())
}

// SetView is one row of the menu
type SetView struct {
	Index int
	Set   *deck.CardSet
}

// VisibleSets lists the sets that have cards at the filtered level, in catalog order
func (n *Navigator) VisibleSets() []SetView {
	var out []SetView
	level, filtered := n.state.LevelFilter.Level()
	for i, s := range n.catalog.Sets() {
		if filtered && s.Count(level) == 0 {
			continue
		}
		out = append(out, SetView{Index: i, Set: s})
	}
	return out
}

// FavoriteView is one row of the favorites screen. Card is only filled in when the set is
// loaded and still holds the bookmarked card.
type FavoriteView struct {
	Entry    favorites.Entry
	Card     card.Card
	Resolved bool
}

// FavoritesList returns the rows of the favorites screen
func (n *Navigator) FavoritesList() []FavoriteView {
	out := make([]FavoriteView, 0, len(n.favList))
	for _, e := range n.favList {
		v := FavoriteView{Entry: e}
		if i := n.catalog.IndexOf(e.SetName); i >= 0 {
			if cards := n.cards(i, e.Level); e.CardIndex >= 0 && e.CardIndex < len(cards) {
				v.Card = cards[e.CardIndex]
				v.Resolved = true
			}
		}
		out = append(out, v)
	}
	return out
}

// FavoriteSetIndexes returns the catalog indexes of every set referenced by the favorites list
func (n *Navigator) FavoriteSetIndexes() []int {
	seen := map[int]bool{}
	var out []int
	for _, e := range n.favList {
		if i := n.catalog.IndexOf(e.SetName); i >= 0 && !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out
}
