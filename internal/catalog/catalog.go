package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"product-rag/internal/models"
)

// ErrSourceNotFound is returned when the tabular source path does not exist.
var ErrSourceNotFound = errors.New("source file not found")

// SourceFormatError is returned when the source cannot be parsed as tabular
// data (delimiter or quoting mismatch, missing header, unsupported format).
type SourceFormatError struct {
	Path string
	Err  error
}

func (e *SourceFormatError) Error() string {
	return fmt.Sprintf("cannot parse %s as tabular data: %v", e.Path, e.Err)
}

func (e *SourceFormatError) Unwrap() error { return e.Err }

// Load reads the product catalog and converts each row into one Document.
// Column values are labeled with their column names so the model can reference
// field names in answers.
func Load(path string) ([]models.Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return loadCSV(path)
	case ".xlsx":
		return loadXLSX(path)
	default:
		return nil, &SourceFormatError{Path: path, Err: fmt.Errorf("unsupported file format: %s", ext)}
	}
}

func loadCSV(path string) ([]models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			err = errors.New("header row required")
		}
		return nil, &SourceFormatError{Path: path, Err: err}
	}

	var docs []models.Document
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &SourceFormatError{Path: path, Err: err}
		}
		row++
		docs = append(docs, renderDocument(header, record, path, row))
	}

	log.Debug().Int("rows", row).Str("source", path).Msg("Loaded catalog")
	return docs, nil
}

// renderDocument turns one record into labeled plain text, one
// "column: value" line per field.
func renderDocument(header, record []string, source string, row int) models.Document {
	var text strings.Builder
	for i, name := range header {
		value := ""
		if i < len(record) {
			value = record[i]
		}
		text.WriteString(fmt.Sprintf("%s: %s\n", name, value))
	}
	return models.Document{
		Content: strings.TrimRight(text.String(), "\n"),
		Source:  filepath.Base(source),
		Row:     row,
	}
}
