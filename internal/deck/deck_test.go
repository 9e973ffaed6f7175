package deck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arcanaland/flashcards/internal/card"
)

const testCatalog = `{"sets":[
	{"filename":"greetings-1.json","name":"Greetings","themeId":"greetings","sequenceNumber":1,"cardCounts":{"L1":2,"L2":0,"L3":0}},
	{"filename":"weather.json","name":"Weather","cardCounts":{"L1":1,"L2":1,"L3":0}},
	{"filename":"greetings-2.json","name":"Greetings 2","themeId":"greetings","sequenceNumber":2,"cardCounts":{"L1":1,"L2":0,"L3":0}},
	{"filename":"missing.json","name":"Missing","cardCounts":{"L1":3,"L2":0,"L3":0}}
]}`

const testGreetings = `{"levels":{"L1":[
	{"japanese":"こんにちは","english":"Hello"},
	{"japanese":"さようなら","english":"Goodbye"}
]}}`

func writeLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, SetDir), 0755))
	files := map[string]string{
		"catalog.json":                 testCatalog,
		"card-sets/greetings-1.json":   testGreetings,
		"card-sets/greetings-2.json":   `{"levels":{"L1":[{"japanese":"おはよう","english":"Good morning"}]}}`,
		"card-sets/weather.json":       `{"levels":{"L1":[{"japanese":"晴れ","english":"Sunny"}],"L2":[{"japanese":"曇り","english":"Cloudy"},{"japanese":"雨","english":"Rain"}]}}`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, filepath.FromSlash(name)), []byte(body), 0644))
	}
	return root
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestLoadCatalogKeepsOrderAndLeavesBodiesAbsent(t *testing.T) {
	c, err := LoadCatalog(context.Background(), &DirSource{Root: writeLibrary(t)}, "catalog.json", nil)
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())

	names := []string{}
	for _, s := range c.Sets() {
		names = append(names, s.Name)
		assert.False(t, s.Loaded(), s.Name)
	}
	assert.Equal(t, []string{"Greetings", "Weather", "Greetings 2", "Missing"}, names)
	assert.Equal(t, 2, c.IndexOf("Greetings 2"))
	assert.Equal(t, -1, c.IndexOf("Nope"))
}

func TestLoadCatalogFailureYieldsEmptyCatalog(t *testing.T) {
	logger, logs := observedLogger()

	c, err := LoadCatalog(context.Background(), &DirSource{Root: t.TempDir()}, "catalog.json", logger)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCatalogLoad))
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1, logs.FilterMessage("catalog load failure").Len())
}

func TestLoadCatalogMalformed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "catalog.json"), []byte(`{"sets": [`), 0644))

	c, err := LoadCatalog(context.Background(), &DirSource{Root: root}, "catalog.json", nil)
	assert.ErrorIs(t, err, ErrCatalogLoad)
	assert.Equal(t, 0, c.Len())
}

func TestLoadCatalogWarnsOnInvalidEntryButKeepsIt(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "catalog.json"),
		[]byte(`{"sets":[{"filename":"","name":"Broken","cardCounts":{"L1":1}},{"filename":"a.json","name":"A","cardCounts":{"L1":1}}]}`), 0644))
	logger, logs := observedLogger()

	c, err := LoadCatalog(context.Background(), &DirSource{Root: root}, "catalog.json", logger)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.IndexOf("A"))
	assert.Equal(t, 1, logs.FilterMessage("invalid catalog entry").Len())
}

func TestEnsureLoadedIsLazyAndIdempotent(t *testing.T) {
	root := writeLibrary(t)
	c, err := LoadCatalog(context.Background(), &DirSource{Root: root}, "catalog.json", nil)
	require.NoError(t, err)

	require.NoError(t, c.EnsureLoaded(context.Background(), 0))
	s, err := c.Set(0)
	require.NoError(t, err)
	require.True(t, s.Loaded())
	assert.Equal(t, []card.Card{
		{Japanese: "こんにちは", English: "Hello"},
		{Japanese: "さようなら", English: "Goodbye"},
	}, s.Cards(card.L1))

	// The body is cached: removing the file does not matter any more
	require.NoError(t, os.Remove(filepath.Join(root, SetDir, "greetings-1.json")))
	require.NoError(t, c.EnsureLoaded(context.Background(), 0))
	assert.Len(t, s.Cards(card.L1), 2)

	other, _ := c.Set(1)
	assert.False(t, other.Loaded(), "loading one set must not load others")
}

func TestEnsureLoadedFailureLeavesSetUnusable(t *testing.T) {
	logger, logs := observedLogger()
	c, err := LoadCatalog(context.Background(), &DirSource{Root: writeLibrary(t)}, "catalog.json", logger)
	require.NoError(t, err)

	err = c.EnsureLoaded(context.Background(), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSetLoad)

	s, _ := c.Set(3)
	assert.False(t, s.Loaded())
	assert.Equal(t, 1, logs.FilterMessage("set load failure").Len())

	require.NoError(t, c.EnsureLoaded(context.Background(), 1), "other sets stay usable")
}

func TestEnsureLoadedOutOfRange(t *testing.T) {
	c := NewCatalog(&DirSource{Root: t.TempDir()}, nil, nil)
	assert.ErrorIs(t, c.EnsureLoaded(context.Background(), 0), ErrSetNotFound)
	assert.ErrorIs(t, c.EnsureLoaded(context.Background(), -1), ErrSetNotFound)
}

func TestEnsureLoadedWarnsOnCountMismatch(t *testing.T) {
	root := writeLibrary(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, SetDir, "greetings-2.json"),
		[]byte(`{"levels":{"L1":[{"japanese":"a","english":"b"},{"japanese":"c","english":"d"}]}}`), 0644))
	logger, logs := observedLogger()

	c, err := LoadCatalog(context.Background(), &DirSource{Root: root}, "catalog.json", logger)
	require.NoError(t, err)
	require.NoError(t, c.EnsureLoaded(context.Background(), 2))

	s, _ := c.Set(2)
	assert.Equal(t, 2, s.Count(card.L1), "loaded body wins over catalog counts")
	assert.Equal(t, 1, logs.FilterMessage("card count mismatch").Len())
}

func TestEnsureLoadedConcurrentLoadsAreSafe(t *testing.T) {
	c, err := LoadCatalog(context.Background(), &DirSource{Root: writeLibrary(t)}, "catalog.json", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.EnsureLoaded(context.Background(), 1))
		}()
	}
	wg.Wait()

	s, _ := c.Set(1)
	assert.Len(t, s.Cards(card.L2), 2)
}

func TestDecodeLevelsRejectsUnknownLevel(t *testing.T) {
	_, err := DecodeLevels([]byte(`{"levels":{"L4":[]}}`))
	assert.Error(t, err)

	_, err = DecodeLevels([]byte(`{"cards":[]}`))
	assert.Error(t, err)
}

func TestThemeNeighbours(t *testing.T) {
	c, err := LoadCatalog(context.Background(), &DirSource{Root: writeLibrary(t)}, "catalog.json", nil)
	require.NoError(t, err)

	prev, next := c.ThemeNeighbours(0)
	assert.Equal(t, -1, prev)
	assert.Equal(t, 2, next)

	prev, next = c.ThemeNeighbours(2)
	assert.Equal(t, 0, prev)
	assert.Equal(t, -1, next)

	prev, next = c.ThemeNeighbours(1)
	assert.Equal(t, -1, prev)
	assert.Equal(t, -1, next)
}

func TestEncodedResourcesDecode(t *testing.T) {
	data, err := EncodeLevels(map[card.Level][]card.Card{card.L2: {{Japanese: "雨", English: "Rain"}}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"L1": []`)
	levels, err := DecodeLevels(data)
	require.NoError(t, err)
	assert.Len(t, levels[card.L2], 1)

	set := NewCardSet("Weather", "weather.json", levels)
	data, err = EncodeCatalog([]*CardSet{set})
	require.NoError(t, err)
	sets, err := DecodeCatalog(data)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, CardCounts{L2: 1}, sets[0].CardCounts)
	assert.False(t, sets[0].Loaded())

	data, err = EncodeCatalog(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sets":[]}`, string(data))
}
