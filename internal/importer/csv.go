package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVConverter handles CSV files of the shape (question, points[, category]).
// Rows become a numbered question list with annotations; a header row is
// detected and skipped.
type CSVConverter struct{}

func (c *CSVConverter) Convert(r io.Reader, filename string) (*Draft, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	draft := &Draft{Title: baseName(filename)}
	if len(records) == 0 {
		return draft, nil
	}

	rows := records
	if isHeaderRow(records[0]) {
		rows = records[1:]
	}

	var list strings.Builder
	num := 0
	for _, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		num++
		entry := fmt.Sprintf("%d. %s", num, strings.TrimSpace(row[0]))
		if len(row) > 1 {
			if value, err := strconv.Atoi(strings.TrimSpace(row[1])); err == nil && value >= 0 {
				category := ""
				if len(row) > 2 {
					category = strings.ToLower(strings.TrimSpace(row[2]))
				}
				if category != "" {
					entry += fmt.Sprintf(" {points}`%d %s`", value, category)
				} else {
					entry += fmt.Sprintf(" {points}`%d`", value)
				}
				draft.Rewrites++
			}
		}
		list.WriteString(entry)
		list.WriteString("\n")
	}

	if list.Len() > 0 {
		draft.AddParagraph(strings.TrimRight(list.String(), "\n"))
	}
	return draft, nil
}

// isHeaderRow detects a leading (question, points, ...) header.
func isHeaderRow(row []string) bool {
	if len(row) < 2 {
		return false
	}
	a := strings.ToLower(strings.TrimSpace(row[0]))
	b := strings.ToLower(strings.TrimSpace(row[1]))
	return (a == "question" || a == "task" || a == "item") &&
		(b == "points" || b == "pts" || b == "value")
}
