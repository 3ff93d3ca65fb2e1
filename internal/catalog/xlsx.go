package catalog

import (
	"errors"

	"github.com/xuri/excelize/v2"

	"product-rag/internal/models"
)

// loadXLSX reads the first sheet of a spreadsheet catalog. Row one is the
// header, every later row becomes one Document.
func loadXLSX(path string) ([]models.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &SourceFormatError{Path: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &SourceFormatError{Path: path, Err: errors.New("no sheets in workbook")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &SourceFormatError{Path: path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &SourceFormatError{Path: path, Err: errors.New("header row required")}
	}

	header := rows[0]
	var docs []models.Document
	for i, record := range rows[1:] {
		docs = append(docs, renderDocument(header, record, path, i+1))
	}
	return docs, nil
}
