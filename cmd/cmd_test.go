package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/flashcards/internal/config"
	"github.com/arcanaland/flashcards/internal/deck"
	"github.com/arcanaland/flashcards/internal/favorites"
)

func setupXDG(t *testing.T) {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "cache"))
	t.Setenv(config.EnvResources, "")
	t.Setenv(config.EnvStorage, "")
	t.Setenv(config.EnvLogLevel, "")
	resourcesFlag = ""
	verboseFlag = false
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	RootCmd.SetArgs(args)
	return RootCmd.Execute()
}

func readFavorites(t *testing.T) []favorites.Entry {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(config.GetStorageDir(), favorites.StorageKey+".json"))
	require.NoError(t, err)
	var entries []favorites.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	return entries
}

func TestInitWritesStarterLibrary(t *testing.T) {
	setupXDG(t)
	require.NoError(t, run(t, "sets", "init"))

	library := config.GetLibraryPath()
	assert.FileExists(t, filepath.Join(library, "catalog.json"))
	assert.FileExists(t, filepath.Join(library, deck.SetDir, "greetings.json"))
	assert.FileExists(t, config.GetConfigFilePath())

	require.NoError(t, run(t, "validate"))
	require.NoError(t, run(t, "sets", "ls"))
	require.NoError(t, run(t, "sets", "show", "Greetings", "--level", "L1"))
}

func TestInitKeepsExistingCatalog(t *testing.T) {
	setupXDG(t)
	library := config.GetLibraryPath()
	require.NoError(t, os.MkdirAll(library, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(library, "catalog.json"), []byte(`{"sets":[]}`), 0644))

	require.NoError(t, run(t, "sets", "init"))
	data, err := os.ReadFile(filepath.Join(library, "catalog.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sets":[]}`, string(data))
}

func TestFavoritesToggleAndClear(t *testing.T) {
	setupXDG(t)
	require.NoError(t, run(t, "sets", "init"))

	require.NoError(t, run(t, "favorites", "toggle", "Greetings", "L1", "2"))
	entries := readFavorites(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "Greetings_L1_1", entries[0].ID)
	assert.Equal(t, 1, entries[0].CardIndex)

	require.NoError(t, run(t, "favorites", "toggle", "2", "L2", "1"))
	assert.Len(t, readFavorites(t), 2)
	require.NoError(t, run(t, "favorites", "ls"))

	require.NoError(t, run(t, "favorites", "toggle", "Greetings", "L1", "2"))
	entries = readFavorites(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "Shopping_L2_0", entries[0].ID)

	require.NoError(t, run(t, "favorites", "clear"))
	_, err := os.Stat(filepath.Join(config.GetStorageDir(), favorites.StorageKey+".json"))
	assert.True(t, os.IsNotExist(err))
}

func TestFavoritesToggleRejectsMissingCard(t *testing.T) {
	setupXDG(t)
	require.NoError(t, run(t, "sets", "init"))

	assert.Error(t, run(t, "favorites", "toggle", "Greetings", "L1", "9"))
	assert.Error(t, run(t, "favorites", "toggle", "Greetings", "L4", "1"))
	assert.ErrorIs(t, run(t, "favorites", "toggle", "Nope", "L1", "1"), deck.ErrSetNotFound)
}

func TestResourcesFlag(t *testing.T) {
	setupXDG(t)
	empty := t.TempDir()

	err := run(t, "--resources", empty, "sets", "ls")
	assert.ErrorIs(t, err, deck.ErrCatalogLoad)
	assert.Error(t, run(t, "validate", empty))
}

func TestSetsUsePersistsResources(t *testing.T) {
	setupXDG(t)
	dir := t.TempDir()

	require.NoError(t, run(t, "sets", "use", dir))
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Resources)

	assert.Error(t, run(t, "sets", "use", filepath.Join(dir, "missing")))
}

func TestResolveSet(t *testing.T) {
	catalog := deck.NewCatalog(nil, []*deck.CardSet{
		deck.NewCardSet("A", "a.json", nil),
		deck.NewCardSet("3", "b.json", nil),
	}, nil)

	i, err := resolveSet(catalog, "A")
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	i, err = resolveSet(catalog, "2")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	// names win over numbers
	i, err = resolveSet(catalog, "3")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = resolveSet(catalog, "0")
	assert.ErrorIs(t, err, deck.ErrSetNotFound)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{""}, wrapText("", 20))
	assert.Equal(t, []string{"Thank you for your", "continued support"},
		wrapText("Thank you for your continued support", 20))
	assert.Equal(t, []string{"supercalifragilistic"}, wrapText("supercalifragilistic", 10))
}

func TestImportAddsSet(t *testing.T) {
	setupXDG(t)
	require.NoError(t, run(t, "sets", "init"))

	csvPath := filepath.Join(t.TempDir(), "weather.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("japanese,english,level\n晴れ,Sunny,L1\n曇り,Cloudy,L2\n"), 0644))
	require.NoError(t, run(t, "sets", "import", csvPath, "--theme", "daily", "--seq", "3"))

	library := config.GetLibraryPath()
	assert.FileExists(t, filepath.Join(library, deck.SetDir, "weather.json"))

	catalog, err := deck.LoadCatalog(context.Background(), &deck.DirSource{Root: library}, "catalog.json", nil)
	require.NoError(t, err)
	i := catalog.IndexOf("weather")
	require.Equal(t, 2, i)
	s, _ := catalog.Set(i)
	assert.Equal(t, deck.CardCounts{L1: 1, L2: 1}, s.CardCounts)
	assert.Equal(t, "daily", s.ThemeID)

	require.NoError(t, run(t, "validate"))
}
