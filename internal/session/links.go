package session

import (
	"context"
	"fmt"

	"github.com/arcanaland/flashcards/internal/card"
	"github.com/arcanaland/flashcards/internal/deck"
)

// LinkKind classifies a completion-screen link
type LinkKind int

const (
	LinkNextLevel LinkKind = iota
	LinkPrevInTheme
	LinkNextInTheme
	LinkMenu
)

// Link is a navigation target offered after finishing a set
type Link struct {
	Kind     LinkKind
	Label    string
	SetIndex int
	Level    card.Level
}

// CompletionLinks lists the related sets reachable from the completion screen: the next
// level of the same set, the neighbouring sets of the same theme, and the menu.
func (n *Navigator) CompletionLinks() []Link {
	if n.state.Screen != ScreenComplete {
		return nil
	}
	cur, err := n.catalog.Set(n.state.SetIndex)
	if err != nil {
		return []Link{{Kind: LinkMenu, Label: "Back to menu"}}
	}

	var links []Link
	for l, ok := n.state.Level.Next(); ok; l, ok = l.Next() {
		if cur.Count(l) > 0 {
			links = append(links, Link{
				Kind:     LinkNextLevel,
				Label:    fmt.Sprintf("%s · %s", cur.Name, l.Label()),
				SetIndex: n.state.SetIndex,
				Level:    l,
			})
			break
		}
	}

	prev, next := n.catalog.ThemeNeighbours(n.state.SetIndex)
	if link, ok := n.themeLink(LinkPrevInTheme, prev); ok {
		links = append(links, link)
	}
	if link, ok := n.themeLink(LinkNextInTheme, next); ok {
		links = append(links, link)
	}

	return append(links, Link{Kind: LinkMenu, Label: "Back to menu"})
}

// themeLink targets set i at the current level, or its lowest level with cards
func (n *Navigator) themeLink(kind LinkKind, i int) (Link, bool) {
	if i < 0 {
		return Link{}, false
	}
	s, err := n.catalog.Set(i)
	if err != nil {
		return Link{}, false
	}
	level, ok := pickLevel(s, n.state.Level)
	if !ok {
		return Link{}, false
	}

	prefix := "Next"
	if kind == LinkPrevInTheme {
		prefix = "Previous"
	}
	return Link{
		Kind:     kind,
		Label:    fmt.Sprintf("%s: %s · %s", prefix, s.Name, level.Label()),
		SetIndex: i,
		Level:    level,
	}, true
}

func pickLevel(s *deck.CardSet, preferred card.Level) (card.Level, bool) {
	if s.Count(preferred) > 0 {
		return preferred, true
	}
	for _, l := range card.Levels {
		if s.Count(l) > 0 {
			return l, true
		}
	}
	return "", false
}

// Follow performs the transition named by a completion link
func (n *Navigator) Follow(ctx context.Context, link Link) error {
	if link.Kind == LinkMenu {
		n.ShowMenu()
		return nil
	}
	return n.SelectSet(ctx, link.SetIndex, link.Level)
}
