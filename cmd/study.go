package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/flashcards/internal/card"
	"github.com/arcanaland/flashcards/internal/deck"
	"github.com/arcanaland/flashcards/internal/session"
	"github.com/arcanaland/flashcards/internal/ui"
)

var studyCmd = &cobra.Command{
	Use:   "study [set]",
	Short: "Open the full-screen study UI",
	Long: `Study opens the interactive flashcard UI on the set menu.
Pass a set name or number to start studying it right away, and --level to pick the level.
Logs are written to the cache directory while the UI owns the terminal.

Examples:
  flashcards study
  flashcards study Greetings --level L2
  flashcards study --favorites`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{logToFile: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		levelFlag, _ := cmd.Flags().GetString("level")
		if levelFlag == "" {
			levelFlag = cfg.DefaultLevel
		}
		filter, err := card.ParseLevelFilter(levelFlag)
		if err != nil {
			return err
		}
		front, err := card.ParseFace(cfg.FrontFace)
		if err != nil {
			return err
		}

		// A failed catalog load still opens the UI, which shows an empty menu
		catalog, err := loadCatalog(ctx)
		if err != nil {
			logger.Warn("starting with an empty catalog", zap.Error(err))
		}

		favs, store, err := openFavorites()
		if err != nil {
			return err
		}
		defer store.Close()

		nav := session.New(catalog, favs, logger,
			session.WithFrontFace(front),
			session.WithLevelFilter(filter))

		showFavorites, _ := cmd.Flags().GetBool("favorites")
		switch {
		case showFavorites:
			nav.ShowFavorites()
		case len(args) == 1:
			i, err := resolveSet(catalog, args[0])
			if err != nil {
				return err
			}
			level, ok := filter.Level()
			if !ok {
				s, _ := catalog.Set(i)
				level = firstLevel(s)
			}
			if err := nav.SelectSet(ctx, i, level); err != nil {
				return fmt.Errorf("cannot study %s: %w", args[0], err)
			}
		}

		return ui.Run(ctx, nav, logger)
	},
}

func init() {
	RootCmd.AddCommand(studyCmd)

	studyCmd.Flags().StringP("level", "l", "", "Level to study or filter by (L1, L2, L3 or all)")
	studyCmd.Flags().BoolP("favorites", "f", false, "Open the favorites list")
}

// firstLevel returns the lowest level the catalog advertises cards for
func firstLevel(s *deck.CardSet) card.Level {
	for _, l := range card.Levels {
		if s.Count(l) > 0 {
			return l
		}
	}
	return card.L1
}
