package card

import (
	"fmt"
	"strings"
)

// Card represents a single Japanese/English phrase pair
type Card struct {
	Japanese string `json:"japanese" validate:"required"`
	English  string `json:"english" validate:"required"`
}

// Face selects which side of a card is shown first
type Face string

const (
	FaceJapanese Face = "japanese"
	FaceEnglish  Face = "english"
)

// Text returns the text printed on the given face
func (c Card) Text(f Face) string {
	if f == FaceEnglish {
		return c.English
	}
	return c.Japanese
}

// Other returns the opposite face
func (f Face) Other() Face {
	if f == FaceEnglish {
		return FaceJapanese
	}
	return FaceEnglish
}

// ParseFace parses a face name, defaulting to Japanese on empty input
func ParseFace(s string) (Face, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "japanese", "ja", "jp":
		return FaceJapanese, nil
	case "english", "en":
		return FaceEnglish, nil
	}
	return "", fmt.Errorf("unknown card face: %s", s)
}

// Level is a proficiency tier partitioning the cards of a set
type Level string

const (
	L1 Level = "L1" // beginner
	L2 Level = "L2" // intermediate
	L3 Level = "L3" // advanced
)

// Levels lists every level in ascending order
var Levels = []Level{L1, L2, L3}

// Label returns the human readable name of a level
func (l Level) Label() string {
	switch l {
	case L1:
		return "Beginner"
	case L2:
		return "Intermediate"
	case L3:
		return "Advanced"
	}
	return string(l)
}

// Next returns the level above l, if any
func (l Level) Next() (Level, bool) {
	for i, lv := range Levels {
		if lv == l && i+1 < len(Levels) {
			return Levels[i+1], true
		}
	}
	return "", false
}

// ParseLevel accepts L1/L2/L3, 1/2/3 and the level labels
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l1", "1", "beginner":
		return L1, nil
	case "l2", "2", "intermediate":
		return L2, nil
	case "l3", "3", "advanced":
		return L3, nil
	}
	return "", fmt.Errorf("unknown level: %s", s)
}

// LevelFilter restricts rendered lists to a single level. The zero value matches all levels.
type LevelFilter string

// FilterAll matches every level
const FilterAll LevelFilter = "all"

// Matches reports whether l passes the filter
func (f LevelFilter) Matches(l Level) bool {
	if f == "" || f == FilterAll {
		return true
	}
	return Level(f) == l
}

// Level returns the single level selected by the filter
func (f LevelFilter) Level() (Level, bool) {
	if f == "" || f == FilterAll {
		return "", false
	}
	return Level(f), true
}

// Next cycles all -> L1 -> L2 -> L3 -> all
func (f LevelFilter) Next() LevelFilter {
	switch f {
	case "", FilterAll:
		return LevelFilter(L1)
	case LevelFilter(L1):
		return LevelFilter(L2)
	case LevelFilter(L2):
		return LevelFilter(L3)
	}
	return FilterAll
}

func (f LevelFilter) String() string {
	if f == "" {
		return string(FilterAll)
	}
	return string(f)
}

// ParseLevelFilter parses "all" or any form accepted by ParseLevel
func ParseLevelFilter(s string) (LevelFilter, error) {
	if t := strings.ToLower(strings.TrimSpace(s)); t == "" || t == "all" {
		return FilterAll, nil
	}
	l, err := ParseLevel(s)
	if err != nil {
		return "", err
	}
	return LevelFilter(l), nil
}
