package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/flashcards/internal/config"
	"github.com/arcanaland/flashcards/internal/logging"
)

// logToFile marks commands that own the terminal and must keep log output off it
const logToFile = "log-to-file"

var (
	resourcesFlag string
	verboseFlag   bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "flashcards",
	Short: "Study Japanese phrase flashcards in the terminal",
	Long: `Flashcards is a terminal study tool for Japanese/English phrase cards.
Card sets are read from a resource directory or URL holding catalog.json and card-sets/,
studied level by level, and individual cards can be starred as favorites.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading .env: %w", err)
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}
		if resourcesFlag != "" {
			cfg.Resources = resourcesFlag
		}

		opts := logging.Options{Level: cfg.LogLevel, Verbose: verboseFlag}
		if _, ok := cmd.Annotations[logToFile]; ok {
			opts.File = config.GetLogFilePath()
		}
		logger, err = logging.New(opts)
		if err != nil {
			return err
		}
		logger.Debug("config loaded",
			zap.String("resources", cfg.Resources),
			zap.String("storage", cfg.Storage))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&resourcesFlag, "resources", "r", "",
		"Resource directory or http(s) URL holding the catalog (overrides config)")
	RootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}
