// Package ui renders a study session in the terminal. The bubbletea model only translates
// key presses into Navigator transitions and projects the Navigator state into text.
package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/arcanaland/flashcards/internal/card"
	"github.com/arcanaland/flashcards/internal/session"
)

// loadedMsg reports that the sets requested by a load command are fetched.
// then runs on the Update goroutine so the Navigator is never touched concurrently.
type loadedMsg struct {
	err  error
	then func() error
}

// Model is the bubbletea model of the study UI
type Model struct {
	ctx    context.Context
	nav    *session.Navigator
	logger *zap.Logger
	keys   keyMap
	styles Styles

	cursor  int
	loading bool
	status  string
	width   int
	height  int
}

// New returns a model bound to nav
func New(ctx context.Context, nav *session.Navigator, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Model{
		ctx:    ctx,
		nav:    nav,
		logger: logger,
		keys:   defaultKeyMap(),
		styles: DefaultStyles(),
	}
}

// Run starts a full-screen program and blocks until the user quits
func Run(ctx context.Context, nav *session.Navigator, logger *zap.Logger) error {
	p := tea.NewProgram(New(ctx, nav, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	if m.nav.Screen() == session.ScreenFavorites {
		return m.load(m.nav.FavoriteSetIndexes(), nil)
	}
	return nil
}

// load fetches sets off the Update goroutine, then runs then in Update
func (m Model) load(indices []int, then func() error) tea.Cmd {
	catalog := m.nav.Catalog()
	ctx := m.ctx
	return func() tea.Msg {
		var err error
		for _, i := range indices {
			if e := catalog.EnsureLoaded(ctx, i); e != nil && err == nil {
				err = e
			}
		}
		return loadedMsg{err: err, then: then}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.then != nil {
			m.setStatus(msg.then())
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.loading {
			return m, nil
		}
		m.status = ""

		var cmd tea.Cmd
		switch m.nav.Screen() {
		case session.ScreenMenu:
			cmd = m.updateMenu(msg)
		case session.ScreenStudying, session.ScreenFavoriteCard:
			cmd = m.updateCard(msg)
		case session.ScreenComplete:
			cmd = m.updateComplete(msg)
		case session.ScreenFavorites:
			cmd = m.updateFavorites(msg)
		}
		if cmd != nil {
			m.loading = true
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) setStatus(err error) {
	if err == nil {
		return
	}
	m.logger.Debug("action failed", zap.Error(err))
	switch {
	case errors.Is(err, session.ErrEmptyLevel):
		m.status = "No cards at this level."
	case errors.Is(err, session.ErrFavoriteUnavailable):
		m.status = "This card is no longer available."
	default:
		m.status = "This set could not be loaded."
	}
}

func (m *Model) clampCursor() {
	n := m.rows()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) rows() int {
	switch m.nav.Screen() {
	case session.ScreenMenu:
		return len(m.nav.VisibleSets())
	case session.ScreenFavorites:
		return len(m.nav.FavoritesList())
	}
	return 0
}

func (m *Model) moveCursor(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return true
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
		return true
	}
	return false
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	if m.moveCursor(msg) {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Filter):
		m.nav.CycleLevelFilter()
		m.clampCursor()
		return nil
	case key.Matches(msg, m.keys.Favorites):
		m.nav.ShowFavorites()
		m.cursor = 0
		return m.load(m.nav.FavoriteSetIndexes(), nil)
	}

	sets := m.nav.VisibleSets()
	if len(sets) == 0 {
		return nil
	}
	row := sets[m.cursor]

	var level card.Level
	switch {
	case key.Matches(msg, m.keys.Level1):
		level = card.L1
	case key.Matches(msg, m.keys.Level2):
		level = card.L2
	case key.Matches(msg, m.keys.Level3):
		level = card.L3
	case key.Matches(msg, m.keys.Select):
		level = m.defaultLevel(row)
	default:
		return nil
	}
	return m.study(row.Index, level)
}

// defaultLevel is the filtered level, or the lowest level with cards
func (m Model) defaultLevel(row session.SetView) card.Level {
	if l, ok := m.nav.State().LevelFilter.Level(); ok {
		return l
	}
	for _, l := range card.Levels {
		if row.Set.Count(l) > 0 {
			return l
		}
	}
	return card.L1
}

func (m Model) study(setIndex int, level card.Level) tea.Cmd {
	nav, ctx := m.nav, m.ctx
	return m.load([]int{setIndex}, func() error {
		return nav.SelectSet(ctx, setIndex, level)
	})
}

func (m *Model) updateCard(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Flip):
		m.nav.Flip()
	case key.Matches(msg, m.keys.Prev):
		m.setStatus(m.nav.Prev(m.ctx))
	case key.Matches(msg, m.keys.Next):
		m.setStatus(m.nav.Next(m.ctx))
		if m.nav.Screen() == session.ScreenFavorites {
			m.cursor = m.nav.State().FavIndex
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.Star):
		if _, err := m.nav.ToggleFavorite(); err != nil {
			m.logger.Warn("toggle favorite failed", zap.Error(err))
		}
	case key.Matches(msg, m.keys.Menu):
		if m.nav.Screen() == session.ScreenFavoriteCard {
			fav := m.nav.State().FavIndex
			m.nav.ShowFavorites()
			m.cursor = fav
			m.clampCursor()
			return nil
		}
		m.nav.ShowMenu()
		m.clampCursor()
	}
	return nil
}

func (m *Model) updateComplete(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.nav.BackToCards()
		return nil
	case key.Matches(msg, m.keys.Menu):
		m.nav.ShowMenu()
		m.clampCursor()
		return nil
	}

	if len(msg.Runes) != 1 {
		return nil
	}
	links := m.nav.CompletionLinks()
	i := int(msg.Runes[0] - '1')
	if i < 0 || i >= len(links) {
		return nil
	}
	link := links[i]
	if link.Kind == session.LinkMenu {
		m.nav.ShowMenu()
		m.clampCursor()
		return nil
	}

	nav, ctx := m.nav, m.ctx
	return m.load([]int{link.SetIndex}, func() error {
		return nav.Follow(ctx, link)
	})
}

func (m *Model) updateFavorites(msg tea.KeyMsg) tea.Cmd {
	if m.moveCursor(msg) {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Menu):
		m.nav.ShowMenu()
		m.cursor = 0
	case key.Matches(msg, m.keys.Filter):
		m.nav.CycleLevelFilter()
		m.clampCursor()
		return m.load(m.nav.FavoriteSetIndexes(), nil)
	case key.Matches(msg, m.keys.Select):
		rows := m.nav.FavoritesList()
		if len(rows) == 0 {
			return nil
		}
		i := m.cursor
		nav, ctx := m.nav, m.ctx
		return m.load(m.nav.FavoriteSetIndexes(), func() error {
			return nav.OpenFavorite(ctx, i)
		})
	}
	return nil
}
