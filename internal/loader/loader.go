package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/mysql-csv-importer/internal/connector"
	"github.com/vitebski/mysql-csv-importer/internal/inferencer"
	"github.com/vitebski/mysql-csv-importer/pkg/models"
)

const (
	// DefaultBatchSize is the number of rows committed together
	DefaultBatchSize = 100
	// DefaultMaxErrors is the row-error count at which a load aborts
	DefaultMaxErrors = 10
)

// ErrTooManyRowErrors terminates a load once the row-error threshold is reached
var ErrTooManyRowErrors = errors.New("too many row errors, aborting import")

// BatchLoader inserts a dataset into an existing table in committed batches,
// tolerating and counting per-row failures up to a threshold
type BatchLoader struct {
	DB        *connector.DatabaseConnector
	Dataset   *models.Dataset
	Table     string
	BatchSize int
	MaxErrors int
	Logger    *logrus.Logger
}

// NewBatchLoader creates a new batch loader with default batching thresholds
func NewBatchLoader(db *connector.DatabaseConnector, dataset *models.Dataset, table string, logger *logrus.Logger) *BatchLoader {
	return &BatchLoader{
		DB:        db,
		Dataset:   dataset,
		Table:     table,
		BatchSize: DefaultBatchSize,
		MaxErrors: DefaultMaxErrors,
		Logger:    logger,
	}
}

// Load inserts as many rows as possible. Row-level insert failures are counted
// and skipped; crossing MaxErrors rolls back the current batch and returns
// ErrTooManyRowErrors. Commits happen every BatchSize rows and after the final
// row, so a crash loses at most one uncommitted batch.
func (bl *BatchLoader) Load() (models.LoadResult, error) {
	result := models.LoadResult{}

	// Re-derive the sanitized names the table was created with
	columns := inferencer.SanitizeHeaders(bl.Dataset.Headers)

	liveTypes, err := bl.DB.DescribeTable(bl.Table)
	if err != nil {
		return result, fmt.Errorf("describing table %s: %w", bl.Table, err)
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		bl.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := bl.DB.Begin()
	if err != nil {
		return result, fmt.Errorf("starting transaction: %w", err)
	}

	total := len(bl.Dataset.Rows)

	for i, row := range bl.Dataset.Rows {
		params := make([]interface{}, len(columns))
		for j, column := range columns {
			raw := ""
			if j < len(row) {
				raw = row[j]
			}
			value, warning := CoerceCell(raw, liveTypes[column])
			if warning != "" {
				result.Warnings++
				bl.Logger.Warningf("Row %d, column %s: %s", i+1, column, warning)
			}
			params[j] = value
		}

		result.Attempted++
		if _, err := tx.Exec(insertSQL, params...); err != nil {
			result.Errors++
			bl.Logger.Errorf("Error on row %d: %v", i+1, err)
			if result.Errors >= bl.MaxErrors {
				bl.Logger.Errorf("Too many errors (%d), aborting import", result.Errors)
				if rbErr := tx.Rollback(); rbErr != nil {
					bl.Logger.Errorf("Error rolling back batch: %v", rbErr)
				}
				result.Disposition = models.LoadAborted
				return result, ErrTooManyRowErrors
			}
			continue
		}
		result.Inserted++

		if (i+1)%bl.BatchSize == 0 {
			if err := tx.Commit(); err != nil {
				return result, fmt.Errorf("committing batch at row %d: %w", i+1, err)
			}
			bl.Logger.Infof("Inserted %d/%d rows", i+1, total)
			if tx, err = bl.DB.Begin(); err != nil {
				return result, fmt.Errorf("starting transaction: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("committing final batch: %w", err)
	}

	result.Disposition = models.LoadCompleted
	bl.Logger.Infof("Successfully inserted %d/%d rows into table '%s'", result.Inserted, total, bl.Table)
	if result.Errors > 0 {
		bl.Logger.Warningf("%d rows had errors and could not be imported", result.Errors)
	}
	return result, nil
}
