package connector

import (
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/mysql-csv-importer/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func newMockConnector(t *testing.T) (*DatabaseConnector, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("creating sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &DatabaseConnector{
		Database: "testdb",
		DB:       db,
		Logger:   testLogger(),
	}, mock
}

func TestNewDatabaseConnector(t *testing.T) {
	// Environment variables act as fallbacks
	os.Setenv("MYSQL_HOST", "test-host")
	os.Setenv("MYSQL_USER", "test-user")
	os.Setenv("MYSQL_PASSWORD", "test-password")
	os.Setenv("MYSQL_DATABASE", "test-database")
	os.Setenv("MYSQL_PORT", "3307")
	defer func() {
		for _, v := range []string{"MYSQL_HOST", "MYSQL_USER", "MYSQL_PASSWORD", "MYSQL_DATABASE", "MYSQL_PORT"} {
			os.Unsetenv(v)
		}
	}()

	db := NewDatabaseConnector("", "", "", "", "", testLogger())
	if db.Host != "test-host" {
		t.Errorf("expected host 'test-host', got '%s'", db.Host)
	}
	if db.User != "test-user" {
		t.Errorf("expected user 'test-user', got '%s'", db.User)
	}
	if db.Password != "test-password" {
		t.Errorf("expected password 'test-password', got '%s'", db.Password)
	}
	if db.Database != "test-database" {
		t.Errorf("expected database 'test-database', got '%s'", db.Database)
	}
	if db.Port != "3307" {
		t.Errorf("expected port '3307', got '%s'", db.Port)
	}

	// Explicit parameters win over the environment
	db = NewDatabaseConnector("explicit-host", "explicit-user", "explicit-password", "explicit-database", "3308", testLogger())
	if db.Host != "explicit-host" || db.User != "explicit-user" || db.Database != "explicit-database" || db.Port != "3308" {
		t.Errorf("explicit parameters not honored: %+v", db)
	}
}

func TestExecuteQueryConvertsBytesAndNulls(t *testing.T) {
	dc, mock := newMockConnector(t)

	rows := sqlmock.NewRows([]string{"name", "score"}).
		AddRow([]byte("Finland"), nil)
	mock.ExpectQuery("SELECT name, score FROM happiness").WillReturnRows(rows)

	results, err := dc.ExecuteQuery("SELECT name, score FROM happiness")
	if err != nil {
		t.Fatalf("ExecuteQuery returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 row, got %d", len(results))
	}
	if results[0]["name"] != "Finland" {
		t.Errorf("expected []byte converted to string, got %T %v", results[0]["name"], results[0]["name"])
	}
	if results[0]["score"] != nil {
		t.Errorf("expected nil for NULL cell, got %v", results[0]["score"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateTable(t *testing.T) {
	dc, mock := newMockConnector(t)

	definitions := []models.ColumnDefinition{
		{Name: "country_name", Type: "VARCHAR(17)"},
		{Name: "year", Type: "INT"},
		{Name: "ladder_score", Type: "DOUBLE"},
	}

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS happiness \(country_name VARCHAR\(17\), year INT, ladder_score DOUBLE\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := dc.CreateTable("happiness", definitions); err != nil {
		t.Fatalf("CreateTable returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateTableRejectsEmptyDefinitions(t *testing.T) {
	dc, _ := newMockConnector(t)
	if err := dc.CreateTable("happiness", nil); err == nil {
		t.Error("expected error for empty column definitions")
	}
}

func TestDescribeTable(t *testing.T) {
	dc, mock := newMockConnector(t)

	rows := sqlmock.NewRows([]string{"column_name", "column_type"}).
		AddRow("country_name", "VARCHAR(17)").
		AddRow("year", "int(11)").
		AddRow("ladder_score", "double")
	mock.ExpectQuery("column_name, column_type").
		WithArgs("testdb", "happiness").
		WillReturnRows(rows)

	types, err := dc.DescribeTable("happiness")
	if err != nil {
		t.Fatalf("DescribeTable returned error: %v", err)
	}

	// Declared types come back lower-cased for the loader's substring checks
	if types["country_name"] != "varchar(17)" {
		t.Errorf("expected lower-cased varchar(17), got %q", types["country_name"])
	}
	if types["year"] != "int(11)" || types["ladder_score"] != "double" {
		t.Errorf("unexpected type map: %v", types)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDescribeTableEmpty(t *testing.T) {
	dc, mock := newMockConnector(t)

	mock.ExpectQuery("column_name, column_type").
		WithArgs("testdb", "missing_table").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "column_type"}))

	if _, err := dc.DescribeTable("missing_table"); err == nil {
		t.Error("expected error for a table with no columns")
	}
}
