// Package validator checks a resource location: the catalog and every card set it lists
package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/arcanaland/flashcards/internal/card"
	"github.com/arcanaland/flashcards/internal/deck"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether no errors were found
func (r ValidationResults) Valid() bool {
	return len(r.Errors) == 0
}

type Validator struct {
	Source      deck.Source
	CatalogName string
	Results     ValidationResults

	validate *validator.Validate
}

func NewValidator(source deck.Source, catalogName string) *Validator {
	return &Validator{
		Source:      source,
		CatalogName: catalogName,
		Results:     ValidationResults{},
		validate:    validator.New(),
	}
}

// Validate returns an error only when the catalog itself cannot be read.
// Problems inside the resources are collected in the results.
func (v *Validator) Validate(ctx context.Context) (ValidationResults, error) {
	data, err := v.Source.Fetch(ctx, v.CatalogName)
	if err != nil {
		return v.Results, fmt.Errorf("error reading %s: %w", v.CatalogName, err)
	}

	sets, err := deck.DecodeCatalog(data)
	if err != nil {
		return v.Results, fmt.Errorf("error parsing %s: %w", v.CatalogName, err)
	}
	if len(sets) == 0 {
		v.warnf("catalog lists no card sets")
	}

	v.validateEntries(sets)
	v.validateThemes(sets)
	for i, s := range sets {
		if s.Filename == "" {
			continue
		}
		v.validateSetFile(ctx, i, s)
	}

	return v.Results, nil
}

func (v *Validator) errorf(format string, args ...any) {
	v.Results.Errors = append(v.Results.Errors, fmt.Sprintf(format, args...))
}

func (v *Validator) warnf(format string, args ...any) {
	v.Results.Warnings = append(v.Results.Warnings, fmt.Sprintf(format, args...))
}

// validateEntries checks the metadata of each catalog entry and name/filename uniqueness
func (v *Validator) validateEntries(sets []*deck.CardSet) {
	names := map[string]int{}
	files := map[string]int{}

	for i, s := range sets {
		label := entryLabel(i, s)
		for _, msg := range v.fieldErrors(s) {
			v.errorf("%s: %s", label, msg)
		}

		if s.Name != "" {
			if j, ok := names[s.Name]; ok {
				v.errorf("%s: duplicate name, also used by set %d", label, j)
			} else {
				names[s.Name] = i
			}
		}
		if s.Filename != "" {
			if j, ok := files[s.Filename]; ok {
				v.warnf("%s: filename %s is shared with set %d", label, s.Filename, j)
			} else {
				files[s.Filename] = i
			}
		}
	}
}

// validateThemes warns when two sets of a theme claim the same sequence number
func (v *Validator) validateThemes(sets []*deck.CardSet) {
	type slot struct {
		theme string
		seq   int
	}
	seen := map[slot]int{}

	for i, s := range sets {
		if s.ThemeID == "" {
			continue
		}
		k := slot{s.ThemeID, s.SequenceNumber}
		if j, ok := seen[k]; ok {
			v.warnf("%s: sequence number %d of theme %s is also used by set %d",
				entryLabel(i, s), s.SequenceNumber, s.ThemeID, j)
			continue
		}
		seen[k] = i
	}
}

// validateSetFile fetches one set body and checks it against its catalog entry
func (v *Validator) validateSetFile(ctx context.Context, i int, s *deck.CardSet) {
	label := entryLabel(i, s)
	resource := deck.SetPath(s.Filename)

	data, err := v.Source.Fetch(ctx, resource)
	if errors.Is(err, deck.ErrResourceNotFound) {
		v.errorf("%s: %s not found", label, resource)
		return
	}
	if err != nil {
		v.errorf("%s: error reading %s: %v", label, resource, err)
		return
	}

	levels, err := deck.DecodeLevels(data)
	if err != nil {
		v.errorf("%s: error parsing %s: %v", label, resource, err)
		return
	}

	total := 0
	for _, l := range card.Levels {
		cards := levels[l]
		total += len(cards)
		if want := s.CardCounts.Get(l); len(cards) != want {
			v.warnf("%s: %s has %d cards, catalog says %d", label, l, len(cards), want)
		}
		for j, c := range cards {
			for _, msg := range v.fieldErrors(c) {
				v.errorf("%s: %s card %d: %s", label, l, j+1, msg)
			}
		}
	}
	if total == 0 {
		v.warnf("%s: set has no cards", label)
	}
}

// fieldErrors renders struct tag failures as short messages
func (v *Validator) fieldErrors(obj any) []string {
	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			out = append(out, field+" is required")
		default:
			out = append(out, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
		}
	}
	return out
}

func entryLabel(i int, s *deck.CardSet) string {
	if s.Name == "" {
		return fmt.Sprintf("set %d", i)
	}
	return fmt.Sprintf("set %d (%s)", i, s.Name)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
