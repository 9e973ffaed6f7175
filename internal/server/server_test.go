package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/flashcards/internal/card"
	"github.com/arcanaland/flashcards/internal/deck"
)

const catalogBody = `{"sets":[{"filename":"greetings.json","name":"Greetings","themeId":"greetings","sequenceNumber":1,"cardCounts":{"L1":1,"L2":0,"L3":0}}]}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, deck.SetDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "catalog.json"), []byte(catalogBody), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, deck.SetDir, "greetings.json"),
		[]byte(`{"levels":{"L1":[{"japanese":"こんにちは","english":"Hello"}]}}`), 0644))

	srv := httptest.NewServer(New(&deck.DirSource{Root: root}, "catalog.json", nil))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	code, body := get(t, srv.URL+"/api/health")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestServesCatalogAndSets(t *testing.T) {
	srv := newTestServer(t)

	code, body := get(t, srv.URL+"/catalog.json")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, catalogBody, string(body))

	code, body = get(t, srv.URL+"/card-sets/greetings.json")
	assert.Equal(t, http.StatusOK, code)
	levels, err := deck.DecodeLevels(body)
	require.NoError(t, err)
	assert.Equal(t, "Hello", levels[card.L1][0].English)

	code, _ = get(t, srv.URL+"/card-sets/missing.json")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSetsSummary(t *testing.T) {
	srv := newTestServer(t)
	code, body := get(t, srv.URL+"/api/sets")
	require.Equal(t, http.StatusOK, code)

	var out struct {
		Count int          `json:"count"`
		Sets  []setSummary `json:"sets"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "Greetings", out.Sets[0].Name)
	assert.Equal(t, 1, out.Sets[0].CardCounts.L1)
}

func TestHTTPSourceReadsFromServer(t *testing.T) {
	srv := newTestServer(t)
	src := deck.NewSource(srv.URL, 0)

	catalog, err := deck.LoadCatalog(context.Background(), src, "catalog.json", nil)
	require.NoError(t, err)
	require.Equal(t, 1, catalog.Len())
	require.NoError(t, catalog.EnsureLoaded(context.Background(), 0))

	s, err := catalog.Set(0)
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", s.Cards(card.L1)[0].Japanese)
}

func TestServesNestedSetFiles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, deck.SetDir, "jp"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "catalog.json"),
		[]byte(`{"sets":[{"filename":"jp/weather.json","name":"Weather","cardCounts":{"L1":1,"L2":0,"L3":0}}]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, deck.SetDir, "jp", "weather.json"),
		[]byte(`{"levels":{"L1":[{"japanese":"晴れ","english":"Sunny"}]}}`), 0644))
	srv := httptest.NewServer(New(&deck.DirSource{Root: root}, "catalog.json", nil))
	defer srv.Close()

	code, _ := get(t, srv.URL+"/card-sets/jp/weather.json")
	assert.Equal(t, http.StatusOK, code)

	catalog, err := deck.LoadCatalog(context.Background(), deck.NewSource(srv.URL, 0), "catalog.json", nil)
	require.NoError(t, err)
	require.NoError(t, catalog.EnsureLoaded(context.Background(), 0))
	s, err := catalog.Set(0)
	require.NoError(t, err)
	assert.Equal(t, "Sunny", s.Cards(card.L1)[0].English)
}
