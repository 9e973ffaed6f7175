package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/flashcards/internal/card"
	"github.com/arcanaland/flashcards/internal/favorites"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage starred cards",
}

var favoritesListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List starred cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		levelFlag, _ := cmd.Flags().GetString("level")
		filter, err := card.ParseLevelFilter(levelFlag)
		if err != nil {
			return err
		}

		favs, store, err := openFavorites()
		if err != nil {
			return err
		}
		defer store.Close()

		entries := favs.Filter(filter)
		if len(entries) == 0 {
			fmt.Println("No favorites yet.")
			return nil
		}

		// Card text is best-effort; entries whose set is gone are still listed
		catalog, _ := loadCatalog(cmd.Context())
		for i, e := range entries {
			text := color.HiBlackString("(unavailable)")
			if si := catalog.IndexOf(e.SetName); si >= 0 && catalog.EnsureLoaded(cmd.Context(), si) == nil {
				s, _ := catalog.Set(si)
				if cards := s.Cards(e.Level); e.CardIndex >= 0 && e.CardIndex < len(cards) {
					text = color.HiWhiteString("%s", cards[e.CardIndex].Japanese) + "  " + cards[e.CardIndex].English
				}
			}
			fmt.Printf("%3d  %s\n     %s\n", i+1, text,
				color.CyanString("%s · %s #%d · %s", e.SetName, e.Level, e.CardIndex+1,
					time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04")))
		}
		return nil
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle [set] [level] [card_number]",
	Short: "Star or unstar a card",
	Long: `Toggle adds the card to the favorites, or removes it when it is already starred.

Examples:
  flashcards favorites toggle Greetings L1 2`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := card.ParseLevel(args[1])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid card number: %s", args[2])
		}

		catalog, err := loadCatalog(cmd.Context())
		if err != nil {
			return err
		}
		si, err := resolveSet(catalog, args[0])
		if err != nil {
			return err
		}
		if err := catalog.EnsureLoaded(cmd.Context(), si); err != nil {
			return err
		}
		s, _ := catalog.Set(si)
		if n > len(s.Cards(level)) {
			return fmt.Errorf("%s %s has %d cards", s.Name, level, len(s.Cards(level)))
		}

		favs, store, err := openFavorites()
		if err != nil {
			return err
		}
		defer store.Close()

		added, err := favs.Toggle(favorites.Ref{SetName: s.Name, Level: level, SetIndex: si, CardIndex: n - 1})
		if err != nil {
			return fmt.Errorf("error saving favorites: %w", err)
		}
		if added {
			fmt.Printf("★ Starred %s %s #%d\n", s.Name, level, n)
		} else {
			fmt.Printf("☆ Unstarred %s %s #%d\n", s.Name, level, n)
		}
		return nil
	},
}

var favoritesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every favorite",
	RunE: func(cmd *cobra.Command, args []string) error {
		favs, store, err := openFavorites()
		if err != nil {
			return err
		}
		defer store.Close()

		count := favs.Len()
		if err := favs.Clear(); err != nil {
			return fmt.Errorf("error clearing favorites: %w", err)
		}
		fmt.Printf("Removed %d favorites.\n", count)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(favoritesCmd)
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesToggleCmd)
	favoritesCmd.AddCommand(favoritesClearCmd)

	favoritesListCmd.Flags().StringP("level", "l", "all", "Only list one level (L1, L2, L3 or all)")
}
