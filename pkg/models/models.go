package models

// ColumnKind classifies the raw values of a source column for type inference
type ColumnKind int

const (
	KindNumeric ColumnKind = iota
	KindDatetime
	KindText
)

// ColumnDefinition pairs a sanitized column name with its MySQL storage type
type ColumnDefinition struct {
	Name string
	Type string
}

// Dataset holds a fully read tabular file: the original header strings plus
// every row in source order
type Dataset struct {
	Path    string
	Headers []string
	Rows    [][]string
}

// Column returns the ordered cell values of column i across all rows.
// Rows shorter than the header produce empty cells.
func (d *Dataset) Column(i int) []string {
	values := make([]string, len(d.Rows))
	for r, row := range d.Rows {
		if i < len(row) {
			values[r] = row[i]
		}
	}
	return values
}

// LiveColumn is a column description read back from the database after table creation
type LiveColumn struct {
	Name       string
	ColumnType string
}

// LoadDisposition is the terminal classification of a load run
type LoadDisposition int

const (
	LoadCompleted LoadDisposition = iota
	LoadAborted
)

// LoadResult holds the counters and disposition of a completed load.
// Warnings counts per-cell coercion fallbacks, which do not fail a row.
type LoadResult struct {
	Attempted   int
	Inserted    int
	Errors      int
	Warnings    int
	Disposition LoadDisposition
}

// Success reports whether the load produced a usable (possibly partial) result.
// At least one inserted row counts as success even when some rows errored.
func (r LoadResult) Success() bool {
	return r.Disposition == LoadCompleted && r.Inserted > 0
}
