package inferencer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/mysql-csv-importer/internal/csvfile"
	"github.com/vitebski/mysql-csv-importer/pkg/models"
)

const (
	maxInt32 = 2147483647
	minInt32 = -2147483648
)

var nameReplacer = strings.NewReplacer(
	" ", "_",
	"(", "_",
	")", "_",
	"-", "_",
	".", "_",
	",", "_",
	"%", "pct",
	"$", "usd",
)

// SanitizeColumnName rewrites a raw header into a valid MySQL identifier.
// The rewrite is deterministic and idempotent, so the loader can re-derive
// the exact names the table was created with.
func SanitizeColumnName(name string) string {
	clean := nameReplacer.Replace(strings.ToLower(name))
	clean = strings.TrimRight(clean, "_")
	if clean != "" && clean[0] >= '0' && clean[0] <= '9' {
		clean = "col_" + clean
	}
	return clean
}

// SanitizeHeaders sanitizes a full header list. Names that come out empty get
// a positional col_<n> name, and collisions get a _2, _3, ... suffix in source
// order, so the result is a pure function of the header list.
func SanitizeHeaders(headers []string) []string {
	names := make([]string, len(headers))
	used := make(map[string]bool, len(headers))

	for i, header := range headers {
		base := SanitizeColumnName(header)
		if base == "" {
			base = fmt.Sprintf("col_%d", i+1)
		}
		// Bump the suffix until the candidate is free, so a literal header
		// matching a generated suffix cannot collide
		name := base
		for suffix := 2; used[name]; suffix++ {
			name = fmt.Sprintf("%s_%d", base, suffix)
		}
		used[name] = true
		names[i] = name
	}

	return names
}

// SchemaInferencer derives column definitions from a full dataset
type SchemaInferencer struct {
	Dataset *models.Dataset
	Logger  *logrus.Logger
}

// NewSchemaInferencer creates a new schema inferencer
func NewSchemaInferencer(dataset *models.Dataset, logger *logrus.Logger) *SchemaInferencer {
	return &SchemaInferencer{
		Dataset: dataset,
		Logger:  logger,
	}
}

// InferColumnTypes produces one column definition per source column, derived
// from the entire column of values
func (si *SchemaInferencer) InferColumnTypes() []models.ColumnDefinition {
	names := SanitizeHeaders(si.Dataset.Headers)
	definitions := make([]models.ColumnDefinition, len(names))

	for i, name := range names {
		storageType := InferStorageType(si.Dataset.Column(i))
		definitions[i] = models.ColumnDefinition{Name: name, Type: storageType}
		si.Logger.Debugf("Inferred column %q -> %s %s", si.Dataset.Headers[i], name, storageType)
	}

	return definitions
}

// InferStorageType picks the MySQL storage type for one column of raw values
func InferStorageType(values []string) string {
	switch csvfile.ClassifyColumn(values) {
	case models.KindNumeric:
		return inferNumericType(values)
	case models.KindDatetime:
		return "DATETIME"
	default:
		return inferTextType(values)
	}
}

// inferNumericType distinguishes INT, BIGINT and DOUBLE. Any integer outside
// the signed 32-bit range forces BIGINT; a column that is not uniformly
// integral becomes DOUBLE.
func inferNumericType(values []string) string {
	hasLargeInt := false
	allIntegral := true

	for _, v := range values {
		if csvfile.IsMissing(v) {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		switch {
		case err == nil:
			if n > maxInt32 || n < minInt32 {
				hasLargeInt = true
			}
		case errors.Is(err, strconv.ErrRange):
			// Integer syntax too wide even for int64 is still a large integer
			hasLargeInt = true
		default:
			allIntegral = false
		}
	}

	if hasLargeInt {
		return "BIGINT"
	}
	if !allIntegral {
		return "DOUBLE"
	}
	return "INT"
}

// inferTextType sizes a text column from the maximum value length. Missing
// values contribute nothing, so a column of only missing values has length 0
// and lands on VARCHAR(10).
func inferTextType(values []string) string {
	maxLength := 0
	for _, v := range values {
		if csvfile.IsMissing(v) {
			continue
		}
		if n := len([]rune(v)); n > maxLength {
			maxLength = n
		}
	}

	switch {
	case maxLength < 50:
		return fmt.Sprintf("VARCHAR(%d)", maxLength+10)
	case maxLength < 255:
		size := int(float64(maxLength) * 1.5)
		if size > 255 {
			size = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", size)
	case maxLength <= 65535:
		return "TEXT"
	case maxLength <= 16777215:
		return "MEDIUMTEXT"
	default:
		return "LONGTEXT"
	}
}
