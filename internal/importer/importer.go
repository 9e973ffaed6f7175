// Package importer builds card sets from spreadsheets (xlsx) or CSV files and adds them to
// a local library.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/arcanaland/flashcards/internal/card"
	"github.com/arcanaland/flashcards/internal/deck"
)

// Config defines the import configuration
type Config struct {
	FilePath       string // Path to the Excel or CSV file
	SheetName      string // Sheet to import, the first sheet when empty
	JapaneseColumn string // Column with the Japanese text
	EnglishColumn  string // Column with the English text
	LevelColumn    string // Column with L1/L2/L3; rows default to L1 when empty or unset
	StartRow       int    // First row to import (1-based)
}

// DefaultConfig returns the default import configuration
func DefaultConfig() Config {
	return Config{
		JapaneseColumn: "A",
		EnglishColumn:  "B",
		LevelColumn:    "C",
		StartRow:       2, // skip header
	}
}

// Result holds the cards read from a file
type Result struct {
	Levels    map[card.Level][]card.Card
	Processed int
	Skipped   int
	Errors    []string
}

// Count returns the number of imported cards
func (r *Result) Count() int {
	n := 0
	for _, cards := range r.Levels {
		n += len(cards)
	}
	return n
}

type columns struct {
	japanese, english, level int
}

// Read imports cards from an Excel or CSV file. Bad rows are reported in Result.Errors.
func Read(cfg Config) (*Result, error) {
	cols, err := resolveColumns(cfg)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		rows, err = readCSV(cfg.FilePath)
	} else {
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{Levels: map[card.Level][]card.Card{}}
	start := cfg.StartRow
	if start < 1 {
		start = 1
	}
	for i, row := range rows {
		if i < start-1 {
			continue
		}
		if blank(row) {
			continue
		}
		result.Processed++
		if err := processRow(row, cols, result); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
		}
	}
	return result, nil
}

func resolveColumns(cfg Config) (columns, error) {
	var cols columns
	var err error
	if cols.japanese, err = excelize.ColumnNameToNumber(cfg.JapaneseColumn); err != nil {
		return cols, fmt.Errorf("invalid japanese column: %w", err)
	}
	if cols.english, err = excelize.ColumnNameToNumber(cfg.EnglishColumn); err != nil {
		return cols, fmt.Errorf("invalid english column: %w", err)
	}
	if cfg.LevelColumn == "" {
		return cols, nil
	}
	if cols.level, err = excelize.ColumnNameToNumber(cfg.LevelColumn); err != nil {
		return cols, fmt.Errorf("invalid level column: %w", err)
	}
	return cols, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// cell returns the trimmed value of a 1-based column, or "" when the row is short
func cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return strings.TrimSpace(row[col-1])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func processRow(row []string, cols columns, result *Result) error {
	c := card.Card{Japanese: cell(row, cols.japanese), English: cell(row, cols.english)}
	if c.Japanese == "" || c.English == "" {
		return fmt.Errorf("japanese and english text are required")
	}

	level := card.L1
	if v := cell(row, cols.level); v != "" {
		l, err := card.ParseLevel(v)
		if err != nil {
			return err
		}
		level = l
	}
	result.Levels[level] = append(result.Levels[level], c)
	return nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename derives a set filename from a set name
func Filename(name string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "set"
	}
	return slug + ".json"
}

// Entry describes where an imported set goes in the catalog
type Entry struct {
	Name           string
	Filename       string
	ThemeID        string
	SequenceNumber int
}

// AddToLibrary writes the set body below root and adds or replaces its catalog entry.
// An existing entry with the same name keeps its position and filename so catalog indexes
// stay stable. A derived filename never reuses the file of another entry.
func AddToLibrary(root, catalogName string, e Entry, levels map[card.Level][]card.Card) error {
	catalogPath := filepath.Join(root, catalogName)
	var sets []*deck.CardSet
	data, err := os.ReadFile(catalogPath)
	switch {
	case err == nil:
		if sets, err = deck.DecodeCatalog(data); err != nil {
			return fmt.Errorf("error parsing %s: %w", catalogName, err)
		}
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("error reading %s: %w", catalogName, err)
	}

	existing := -1
	for i, s := range sets {
		if s.Name == e.Name {
			existing = i
			break
		}
	}
	if e.Filename == "" {
		if existing >= 0 {
			e.Filename = sets[existing].Filename
		} else {
			e.Filename = uniqueFilename(Filename(e.Name), sets)
		}
	}

	set := deck.NewCardSet(e.Name, e.Filename, levels)
	set.ThemeID = e.ThemeID
	set.SequenceNumber = e.SequenceNumber
	if err := deck.ValidateSet(set); err != nil {
		return fmt.Errorf("invalid set: %w", err)
	}

	if existing >= 0 {
		sets[existing] = set
	} else {
		sets = append(sets, set)
	}

	body, err := deck.EncodeLevels(levels)
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(root, filepath.FromSlash(deck.SetPath(e.Filename))), body); err != nil {
		return err
	}

	catalog, err := deck.EncodeCatalog(sets)
	if err != nil {
		return err
	}
	return writeFile(catalogPath, catalog)
}

// uniqueFilename appends -2, -3, ... to filename until no catalog entry uses it
func uniqueFilename(filename string, sets []*deck.CardSet) string {
	used := make(map[string]bool, len(sets))
	for _, s := range sets {
		used[s.Filename] = true
	}

	base := strings.TrimSuffix(filename, ".json")
	for n := 2; used[filename]; n++ {
		filename = fmt.Sprintf("%s-%d.json", base, n)
	}
	return filename
}

// writeFile replaces path atomically via a temp file and rename
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".import-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
