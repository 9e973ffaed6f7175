package cmd

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/flashcards/internal/card"
	"github.com/arcanaland/flashcards/internal/config"
	"github.com/arcanaland/flashcards/internal/deck"
	"github.com/arcanaland/flashcards/internal/importer"
)

//go:embed starter
var starter embed.FS

// setsCmd represents the sets command group
var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Manage the card sets in your library",
	Long:  `Commands for inspecting the catalog of card sets and pointing the tool at a library.`,
}

// setsInitCmd represents the sets init command
var setsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the card set library with a starter catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryPath := cfg.Resources
		if isURL(libraryPath) {
			return fmt.Errorf("resources point at %s, init only works on a local directory", libraryPath)
		}

		// Create the library directory if it doesn't exist
		if err := os.MkdirAll(filepath.Join(libraryPath, deck.SetDir), 0755); err != nil {
			return fmt.Errorf("error creating card set library: %w", err)
		}

		written, err := writeStarter(libraryPath, cfg.Catalog)
		if err != nil {
			return err
		}

		fmt.Println("Card set library initialized at:", libraryPath)
		if written {
			fmt.Println("A starter catalog was written. Add sets by editing", cfg.Catalog)
		} else {
			fmt.Println("Existing catalog kept.")
		}
		fmt.Println("Config file initialized at:", config.GetConfigFilePath())
		return nil
	},
}

// setsUseCmd represents the sets use command
var setsUseCmd = &cobra.Command{
	Use:   "use [path_or_url]",
	Short: "Point the config at another resource directory or URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resources := args[0]
		if !isURL(resources) {
			abs, err := filepath.Abs(resources)
			if err != nil {
				return err
			}
			if _, err := os.Stat(abs); err != nil {
				return fmt.Errorf("resource directory not found: %s", abs)
			}
			resources = abs
		}

		if err := config.SetResources(resources); err != nil {
			return fmt.Errorf("error saving config: %w", err)
		}
		fmt.Printf("Resources set to: %s\n", resources)
		return nil
	},
}

// setsListCmd represents the sets ls command
var setsListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the card sets in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(cmd.Context())
		if err != nil {
			fmt.Printf("Catalog at %s could not be loaded.\n", cfg.Resources)
			fmt.Println("Run 'flashcards sets init' to create one.")
			return err
		}

		if catalog.Len() == 0 {
			fmt.Println("No card sets found in the catalog.")
			return nil
		}

		for i, s := range catalog.Sets() {
			counts := make([]string, 0, len(card.Levels))
			for _, l := range card.Levels {
				counts = append(counts, fmt.Sprintf("%s:%d", l, s.CardCounts.Get(l)))
			}
			line := fmt.Sprintf("%3d  %s  %s", i+1, color.HiWhiteString("%-28s", s.Name),
				color.CyanString("%s", strings.Join(counts, " ")))
			if s.ThemeID != "" {
				line += color.HiBlackString("  %s #%d", s.ThemeID, s.SequenceNumber)
			}
			fmt.Println(line)
		}
		return nil
	},
}

// setsShowCmd represents the sets show command
var setsShowCmd = &cobra.Command{
	Use:   "show [set]",
	Short: "Print the cards of a set",
	Long: `Show prints every card of a set, grouped by level.
The set is given by name or by its number in 'flashcards sets ls'.

Examples:
  flashcards sets show Greetings
  flashcards sets show 2 --level L1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		levelFlag, _ := cmd.Flags().GetString("level")
		filter, err := card.ParseLevelFilter(levelFlag)
		if err != nil {
			return err
		}

		catalog, err := loadCatalog(cmd.Context())
		if err != nil {
			return err
		}
		i, err := resolveSet(catalog, args[0])
		if err != nil {
			return err
		}
		if err := catalog.EnsureLoaded(cmd.Context(), i); err != nil {
			return err
		}

		s, _ := catalog.Set(i)
		displaySet(s, filter)
		return nil
	},
}

// setsImportCmd represents the sets import command
var setsImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a card set from an Excel or CSV file",
	Long: `Import reads Japanese/English pairs from an .xlsx or .csv file and adds them to the library
as a new card set, or replaces the set with the same name.
By default column A holds the Japanese text, B the English text and C the level.

Examples:
  flashcards sets import weather.xlsx --name Weather
  flashcards sets import food.csv --name Food --theme daily --seq 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if isURL(cfg.Resources) {
			return fmt.Errorf("resources point at %s, import only works on a local directory", cfg.Resources)
		}

		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		theme, _ := flags.GetString("theme")
		seq, _ := flags.GetInt("seq")

		icfg := importer.DefaultConfig()
		icfg.FilePath = args[0]
		icfg.SheetName, _ = flags.GetString("sheet")
		icfg.JapaneseColumn, _ = flags.GetString("japanese-col")
		icfg.EnglishColumn, _ = flags.GetString("english-col")
		icfg.LevelColumn, _ = flags.GetString("level-col")
		icfg.StartRow, _ = flags.GetInt("start-row")

		result, err := importer.Read(icfg)
		if err != nil {
			return err
		}
		for _, msg := range result.Errors {
			fmt.Println(color.YellowString("skipped %s", msg))
		}
		if result.Count() == 0 {
			return fmt.Errorf("no cards found in %s", args[0])
		}

		entry := importer.Entry{Name: name, ThemeID: theme, SequenceNumber: seq}
		if err := importer.AddToLibrary(cfg.Resources, cfg.Catalog, entry, result.Levels); err != nil {
			return err
		}

		fmt.Printf("Imported %d cards into %s (%d rows skipped)\n",
			result.Count(), color.HiWhiteString("%s", name), result.Skipped)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(setsCmd)
	setsCmd.AddCommand(setsInitCmd)
	setsCmd.AddCommand(setsUseCmd)
	setsCmd.AddCommand(setsListCmd)
	setsCmd.AddCommand(setsShowCmd)
	setsCmd.AddCommand(setsImportCmd)

	setsShowCmd.Flags().StringP("level", "l", "all", "Only show one level (L1, L2, L3 or all)")

	defaults := importer.DefaultConfig()
	setsImportCmd.Flags().StringP("name", "n", "", "Set name (defaults to the file name)")
	setsImportCmd.Flags().String("theme", "", "Theme id linking related sets")
	setsImportCmd.Flags().Int("seq", 0, "Sequence number within the theme")
	setsImportCmd.Flags().String("sheet", "", "Sheet to read (defaults to the first sheet)")
	setsImportCmd.Flags().String("japanese-col", defaults.JapaneseColumn, "Column holding the Japanese text")
	setsImportCmd.Flags().String("english-col", defaults.EnglishColumn, "Column holding the English text")
	setsImportCmd.Flags().String("level-col", defaults.LevelColumn, "Column holding the level, empty for all L1")
	setsImportCmd.Flags().Int("start-row", defaults.StartRow, "First row to import")
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// writeStarter copies the embedded starter library unless a catalog already exists
func writeStarter(libraryPath, catalogName string) (bool, error) {
	if _, err := os.Stat(filepath.Join(libraryPath, catalogName)); err == nil {
		return false, nil
	}

	err := fs.WalkDir(starter, "starter", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := strings.TrimPrefix(p, "starter/")
		if rel == "catalog.json" {
			rel = catalogName
		}
		data, err := starter.ReadFile(p)
		if err != nil {
			return err
		}
		target := filepath.Join(libraryPath, filepath.FromSlash(rel))
		if _, err := os.Stat(target); err == nil {
			return nil
		}
		return os.WriteFile(target, data, 0644)
	})
	if err != nil {
		return false, fmt.Errorf("error writing starter catalog: %w", err)
	}
	return true, nil
}

// resolveSet finds a set by exact name, then by its 1-based number
func resolveSet(catalog *deck.Catalog, arg string) (int, error) {
	if i := catalog.IndexOf(arg); i >= 0 {
		return i, nil
	}
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= catalog.Len() {
		return n - 1, nil
	}
	return -1, fmt.Errorf("%w: %s", deck.ErrSetNotFound, arg)
}

// wrapText wraps text to a specified width
func wrapText(text string, width int) []string {
	// Ensure width is reasonable
	if width < 10 {
		width = 40
	}

	var result []string
	var currentLine string
	words := strings.Fields(text)

	if len(words) == 0 {
		return []string{""}
	}

	for _, word := range words {
		switch {
		case currentLine == "":
			currentLine = word
		case len([]rune(currentLine))+1+len([]rune(word)) <= width:
			currentLine += " " + word
		default:
			result = append(result, currentLine)
			currentLine = word
		}
	}

	if currentLine != "" {
		result = append(result, currentLine)
	}

	return result
}

// displaySet prints the cards of a loaded set, one block per level
func displaySet(s *deck.CardSet, filter card.LevelFilter) {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	textWidth := width - 8

	fmt.Println()
	fmt.Println(color.CyanString("Set:  ") + color.HiWhiteString("%s", s.Name))
	if s.ThemeID != "" {
		fmt.Println(color.CyanString("Theme: ") + color.HiWhiteString("%s #%d", s.ThemeID, s.SequenceNumber))
	}

	for _, l := range card.Levels {
		if !filter.Matches(l) {
			continue
		}
		cards := s.Cards(l)
		fmt.Println()
		fmt.Println(color.CyanString("%s · %s", l, l.Label()) + color.HiBlackString(" (%d)", len(cards)))
		if len(cards) == 0 {
			fmt.Println(color.HiBlackString("    no cards"))
			continue
		}
		for j, c := range cards {
			fmt.Printf("%4d. %s\n", j+1, color.HiWhiteString("%s", c.Japanese))
			for _, line := range wrapText(c.English, textWidth) {
				fmt.Printf("      %s\n", line)
			}
		}
	}
	fmt.Println()
}
