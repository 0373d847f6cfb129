package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/mysql-csv-importer/pkg/models"
)

// missingTokens mirrors the NA markers commonly found in exported spreadsheets
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"#n/a": true,
	"nan":  true,
	"null": true,
}

// IsMissing reports whether a raw cell should be treated as absent
func IsMissing(value string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(value))]
}

// dateTimeLayouts are tried in order when classifying a cell as a date/time
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006.01.02",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDateTime attempts to parse a cell with the known layouts
func ParseDateTime(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsNumeric reports whether a cell parses as a number. Integer syntax too wide
// for float64 still counts.
func IsNumeric(value string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err == nil {
		return true
	}
	return errors.Is(err, strconv.ErrRange)
}

// ClassifyColumn decides the kind of a column from all of its values, not a
// sample. A column whose non-missing values are all numeric is numeric; else
// all date/time makes it datetime; everything else, including a column with no
// values at all, is text.
func ClassifyColumn(values []string) models.ColumnKind {
	sawValue := false
	numeric := true
	datetime := true

	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		sawValue = true
		if numeric && !IsNumeric(v) {
			numeric = false
		}
		if datetime {
			if _, ok := ParseDateTime(v); !ok {
				datetime = false
			}
		}
		if !numeric && !datetime {
			break
		}
	}

	if !sawValue {
		return models.KindText
	}
	if numeric {
		return models.KindNumeric
	}
	if datetime {
		return models.KindDatetime
	}
	return models.KindText
}

// Reader reads a CSV file fully into memory
type Reader struct {
	Logger *logrus.Logger
}

// NewReader creates a new CSV reader
func NewReader(logger *logrus.Logger) *Reader {
	return &Reader{Logger: logger}
}

// Read loads the whole file, preserving header strings and row order.
// Any read or parse problem is a hard failure; there is no partial result.
func (r *Reader) Read(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file %s has no header row", path)
	}

	dataset := &models.Dataset{
		Path:    path,
		Headers: records[0],
		Rows:    records[1:],
	}

	r.Logger.Infof("Read %d rows with %d columns from %s", len(dataset.Rows), len(dataset.Headers), path)
	return dataset, nil
}
