package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/arcanaland/flashcards/internal/card"
	"github.com/arcanaland/flashcards/internal/session"
)

const barWidth = 30

// View implements tea.Model
func (m Model) View() string {
	var body string
	switch m.nav.Screen() {
	case session.ScreenMenu:
		body = m.viewMenu()
	case session.ScreenStudying, session.ScreenFavoriteCard:
		body = m.viewCard()
	case session.ScreenComplete:
		body = m.viewComplete()
	case session.ScreenFavorites:
		body = m.viewFavorites()
	}

	var sb strings.Builder
	sb.WriteString(body)
	sb.WriteString("\n")
	if m.loading {
		sb.WriteString(m.styles.Muted.Render("Loading…"))
		sb.WriteString("\n")
	}
	if m.status != "" {
		sb.WriteString(m.styles.Status.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString(m.viewHelp())
	return sb.String()
}

func (m Model) viewMenu() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Flashcards"))
	sb.WriteString("  ")
	sb.WriteString(m.styles.Subtitle.Render("level: " + m.nav.State().LevelFilter.String()))
	sb.WriteString("\n\n")

	sets := m.nav.VisibleSets()
	if len(sets) == 0 {
		sb.WriteString(m.styles.Muted.Render("No card sets available."))
		sb.WriteString("\n")
		return sb.String()
	}

	for i, row := range sets {
		counts := make([]string, 0, len(card.Levels))
		for _, l := range card.Levels {
			counts = append(counts, fmt.Sprintf("%s:%d", l, row.Set.Count(l)))
		}
		line := fmt.Sprintf("%-28s %s", row.Set.Name, m.styles.Muted.Render(strings.Join(counts, " ")))
		if i == m.cursor {
			sb.WriteString(m.styles.Selected.Render("> " + line))
		} else {
			sb.WriteString(m.styles.Normal.Render("  " + line))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) viewCard() string {
	st := m.nav.State()
	var sb strings.Builder

	if s, ok := m.nav.CurrentSet(); ok {
		title := fmt.Sprintf("%s · %s", s.Name, st.Level.Label())
		if st.Screen == session.ScreenFavoriteCard {
			title = "★ Favorites · " + title
		}
		sb.WriteString(m.styles.Title.Render(title))
		sb.WriteString("\n")
	}

	cur, total := m.nav.Progress()
	sb.WriteString(fmt.Sprintf("%s %d / %d\n\n", progressBar(cur, total, barWidth), cur, total))

	star := "☆"
	if m.nav.IsCurrentFavorite() {
		star = "★"
	}
	face := m.nav.Face()
	box := m.styles.Card.Width(m.cardWidth()).Render(
		m.styles.Muted.Render(string(face)) + "\n\n" + m.nav.FaceText())
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, box, " ", m.styles.Star.Render(star)))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) cardWidth() int {
	w := 40
	if m.width > 0 && m.width-6 < w {
		w = m.width - 6
	}
	if w < 10 {
		w = 10
	}
	return w
}

func (m Model) viewComplete() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Set complete!"))
	sb.WriteString("\n")
	if s, ok := m.nav.CurrentSet(); ok {
		_, total := m.nav.Progress()
		sb.WriteString(m.styles.Subtitle.Render(
			fmt.Sprintf("%s · %s · %d cards", s.Name, m.nav.State().Level.Label(), total)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	for i, link := range m.nav.CompletionLinks() {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, link.Label))
	}
	return sb.String()
}

func (m Model) viewFavorites() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("★ Favorites"))
	sb.WriteString("  ")
	sb.WriteString(m.styles.Subtitle.Render("level: " + m.nav.State().LevelFilter.String()))
	sb.WriteString("\n\n")

	rows := m.nav.FavoritesList()
	if len(rows) == 0 {
		sb.WriteString(m.styles.Muted.Render("No favorites yet. Press s while studying to star a card."))
		sb.WriteString("\n")
		return sb.String()
	}

	for i, row := range rows {
		text := m.styles.Muted.Render("(unavailable)")
		if row.Resolved {
			text = row.Card.Japanese
		}
		line := fmt.Sprintf("%s  %s", text,
			m.styles.Muted.Render(fmt.Sprintf("%s · %s #%d", row.Entry.SetName, row.Entry.Level, row.Entry.CardIndex+1)))
		if i == m.cursor {
			sb.WriteString(m.styles.Selected.Render("> ") + line)
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) viewHelp() string {
	var bindings []key.Binding
	switch m.nav.Screen() {
	case session.ScreenMenu:
		bindings = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Level1, m.keys.Level2, m.keys.Level3, m.keys.Filter, m.keys.Favorites}
	case session.ScreenStudying, session.ScreenFavoriteCard:
		bindings = []key.Binding{m.keys.Flip, m.keys.Prev, m.keys.Next, m.keys.Star, m.keys.Menu}
	case session.ScreenComplete:
		bindings = []key.Binding{m.keys.Back, m.keys.Menu}
	case session.ScreenFavorites:
		bindings = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Filter, m.keys.Menu}
	}
	bindings = append(bindings, m.keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.Help.Render(strings.Join(parts, " · "))
}
