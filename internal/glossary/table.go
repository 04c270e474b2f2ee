package glossary

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/kotoba/internal/models"
)

// termsFromRows takes word and definition from the first two columns. A
// leading header row is skipped.
func termsFromRows(rows [][]string) []models.Term {
	var terms []models.Term
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		if i == 0 && isHeader(row[0], row[1]) {
			continue
		}
		if t, ok := makeTerm(row[0], row[1]); ok {
			terms = append(terms, t)
		}
	}
	return terms
}

func parseCSV(content []byte) ([]models.Term, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse CSV: %w", err)
		}
		rows = append(rows, rec)
	}
	return termsFromRows(rows), nil
}

func parseExcel(content []byte) ([]models.Term, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var terms []models.Term
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		terms = append(terms, termsFromRows(rows)...)
	}
	return terms, nil
}
