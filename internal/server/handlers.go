package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arcanaland/flashcards/internal/deck"
)

type handlers struct {
	source      deck.Source
	catalogName string
	logger      *zap.Logger
}

// setSummary is one row of /api/sets
type setSummary struct {
	Index          int             `json:"index"`
	Name           string          `json:"name"`
	Filename       string          `json:"filename"`
	ThemeID        string          `json:"themeId,omitempty"`
	SequenceNumber int             `json:"sequenceNumber,omitempty"`
	CardCounts     deck.CardCounts `json:"cardCounts"`
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) catalog(c *gin.Context) {
	h.serve(c, h.catalogName)
}

func (h *handlers) cardSet(c *gin.Context) {
	// filenames may be nested below the set directory
	h.serve(c, deck.SetPath(strings.TrimPrefix(c.Param("filename"), "/")))
}

// serve writes a raw JSON resource
func (h *handlers) serve(c *gin.Context, name string) {
	data, err := h.source.Fetch(c.Request.Context(), name)
	if errors.Is(err, deck.ErrResourceNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		h.logger.Warn("resource fetch failed", zap.String("name", name), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *handlers) sets(c *gin.Context) {
	catalog, err := deck.LoadCatalog(c.Request.Context(), h.source, h.catalogName, h.logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]setSummary, 0, catalog.Len())
	for i, s := range catalog.Sets() {
		out = append(out, setSummary{
			Index:          i,
			Name:           s.Name,
			Filename:       s.Filename,
			ThemeID:        s.ThemeID,
			SequenceNumber: s.SequenceNumber,
			CardCounts:     s.CardCounts,
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "sets": out})
}
