package content

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Age group tags understood by the recommender.
const (
	AgeGroupAll  = "All"
	AgeGroup30   = "30+"
	AgeGroup40   = "40+"
	columnText   = "Content"
	columnAge    = "Age Group"
	columnName   = "Condition"
	columnAdvice = "Recommendation"
)

// Item is one row of the health content table.
type Item struct {
	Text     string `json:"content"`
	AgeGroup string `json:"ageGroup"`
}

// Condition maps a condition name to its single recommendation.
type Condition struct {
	Name           string `json:"condition"`
	Recommendation string `json:"recommendation"`
}

var ErrMissingColumn = errors.New("missing column")

func LoadItems(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content file: %w", err)
	}
	defer f.Close()

	items, err := ReadItems(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// ReadItems parses a CSV table with "Content" and "Age Group" columns.
// Column order is free and extra columns are ignored.
func ReadItems(r io.Reader) ([]Item, error) {
	rows, err := readTable(r, columnText, columnAge)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, Item{Text: row[0], AgeGroup: row[1]})
	}
	return items, nil
}

func LoadConditions(path string) ([]Condition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open conditions file: %w", err)
	}
	defer f.Close()

	conditions, err := ReadConditions(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return conditions, nil
}

// ReadConditions parses a CSV table with "Condition" and "Recommendation" columns.
func ReadConditions(r io.Reader) ([]Condition, error) {
	rows, err := readTable(r, columnName, columnAdvice)
	if err != nil {
		return nil, err
	}

	conditions := make([]Condition, 0, len(rows))
	for _, row := range rows {
		conditions = append(conditions, Condition{Name: row[0], Recommendation: row[1]})
	}
	return conditions, nil
}

// readTable returns, for every data row, the values of the requested columns
// in the order they were asked for.
func readTable(r io.Reader, columns ...string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	positions := make([]int, len(columns))
	for i, col := range columns {
		positions[i] = -1
		for j, h := range header {
			if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == col {
				positions[i] = j
				break
			}
		}
		if positions[i] < 0 {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		values := make([]string, len(positions))
		for i, pos := range positions {
			values[i] = record[pos]
		}
		rows = append(rows, values)
	}
	return rows, nil
}
