// Package catalog loads vocabulary catalogs from spreadsheets, CSV and YAML files.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"wordmastery/internal/models"
)

// Store receives the parsed catalog
type Store interface {
	Upsert(ctx context.Context, items []models.VocabularyItem) (int, error)
}

// Result reports the outcome of an import
type Result struct {
	Processed int
	Imported  int
	Skipped   int
	Errors    []string
}

// Format of a catalog file
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for files that are not xlsx, csv or yaml
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// FormatOf picks the format from the file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ImportFile parses path and upserts its items into store
func ImportFile(ctx context.Context, store Store, path string) (*Result, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return Import(ctx, store, f, format)
}

// Import parses r in the given format and upserts the valid items into store.
// Invalid rows are skipped and reported in Result.Errors.
func Import(ctx context.Context, store Store, r io.Reader, format Format) (*Result, error) {
	var (
		items []models.VocabularyItem
		errs  []string
		err   error
	)
	switch format {
	case FormatXLSX:
		items, errs, err = ReadXLSX(r, "")
	case FormatCSV:
		items, errs, err = ReadCSV(r)
	case FormatYAML:
		items, errs, err = ReadYAML(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		Processed: len(items) + len(errs),
		Skipped:   len(errs),
		Errors:    errs,
	}
	if len(items) == 0 {
		return result, nil
	}

	n, err := store.Upsert(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to store catalog: %w", err)
	}
	result.Imported = n
	return result, nil
}

// ReadCSV parses a CSV catalog whose first row names the columns
func ReadCSV(r io.Reader) ([]models.VocabularyItem, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return fromRows(rows)
}

// ReadXLSX parses a spreadsheet catalog. An empty sheet name selects the
// first sheet. The first row names the columns.
func ReadXLSX(r io.Reader, sheet string) ([]models.VocabularyItem, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return fromRows(rows)
}

// ReadYAML parses a YAML list of catalog items
func ReadYAML(r io.Reader) ([]models.VocabularyItem, []string, error) {
	var raw []models.VocabularyItem
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("error reading YAML: %w", err)
	}

	var (
		items []models.VocabularyItem
		errs  []string
	)
	for i, item := range raw {
		if msg := check(item); msg != "" {
			errs = append(errs, fmt.Sprintf("Item %d: %s", i+1, msg))
			continue
		}
		items = append(items, item)
	}
	return items, errs, nil
}

var columnAliases = map[string]string{
	"id":            "id",
	"vocabulary_id": "id",
	"word":          "word",
	"translation":   "translation",
	"meaning":       "translation",
	"category":      "category",
	"topic":         "category",
	"subcategory":   "subcategory",
}

// fromRows maps header-named rows to catalog items. Rows are 1-based in
// error messages to match what a spreadsheet shows.
func fromRows(rows [][]string) ([]models.VocabularyItem, []string, error) {
	if len(rows) == 0 {
		return nil, nil, nil
	}

	columns := make(map[string]int)
	for i, name := range rows[0] {
		if field, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			if _, dup := columns[field]; !dup {
				columns[field] = i
			}
		}
	}
	for _, required := range []string{"id", "word"} {
		if _, ok := columns[required]; !ok {
			return nil, nil, fmt.Errorf("catalog header is missing the %q column", required)
		}
	}

	cell := func(row []string, field string) string {
		i, ok := columns[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		items []models.VocabularyItem
		errs  []string
	)
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		item := models.VocabularyItem{
			ID:          cell(row, "id"),
			Word:        cell(row, "word"),
			Translation: cell(row, "translation"),
			Category:    cell(row, "category"),
			Subcategory: cell(row, "subcategory"),
		}
		if msg := check(item); msg != "" {
			errs = append(errs, fmt.Sprintf("Row %d: %s", n+2, msg))
			continue
		}
		items = append(items, item)
	}
	return items, errs, nil
}

func check(item models.VocabularyItem) string {
	switch {
	case strings.TrimSpace(item.ID) == "":
		return "missing id"
	case strings.TrimSpace(item.Word) == "":
		return "missing word"
	default:
		return ""
	}
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
