package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Level1    key.Binding
	Level2    key.Binding
	Level3    key.Binding
	Filter    key.Binding
	Favorites key.Binding
	Flip      key.Binding
	Prev      key.Binding
	Next      key.Binding
	Star      key.Binding
	Menu      key.Binding
	Back      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Level1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "beginner")),
		Level2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "intermediate")),
		Level3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "advanced")),
		Filter:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "level filter")),
		Favorites: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorites")),
		Flip:      key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "flip")),
		Prev:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		Next:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Star:      key.NewBinding(key.WithKeys("s", "*"), key.WithHelp("s", "star")),
		Menu:      key.NewBinding(key.WithKeys("m", "esc"), key.WithHelp("m", "menu")),
		Back:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "back to cards")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
