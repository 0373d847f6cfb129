package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/mysql-csv-importer/internal/connector"
	"github.com/vitebski/mysql-csv-importer/pkg/models"
)

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	logger := logrus.New()

	// Get log level from parameter or environment variable
	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv("MYSQL_LOG_LEVEL")
		if levelStr == "" {
			levelStr = "info"
		}
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	return logger
}

// LoadEnvironmentVariables loads environment variables from a .env file
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		}
	}

	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.Warningf("Error loading %s file: %v", envFile, err)
		} else {
			logger.Infof("Loaded environment variables from %s", envFile)
		}
	} else {
		logger.Infof("No %s file found, using existing environment variables", envFile)
	}

	requiredVars := []string{"MYSQL_HOST", "MYSQL_USER", "MYSQL_PASSWORD", "MYSQL_DATABASE"}
	var missingVars []string

	for _, v := range requiredVars {
		if os.Getenv(v) == "" {
			missingVars = append(missingVars, v)
		}
	}

	if len(missingVars) > 0 {
		logger.Warningf("Missing required environment variables: %s", strings.Join(missingVars, ", "))
		logger.Info("These can be provided via command line arguments, environment variables, or a .env file")
		return false
	}

	return true
}

// GetEnvInt gets an integer value from an environment variable
func GetEnvInt(varName string, defaultValue int) int {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// ValidateConnectionParams validates database connection parameters
func ValidateConnectionParams(host, user, password, database, port string, logger *logrus.Logger) bool {
	if host == "" {
		logger.Error("Database host is required")
		return false
	}

	if user == "" {
		logger.Error("Database user is required")
		return false
	}

	if password == "" { // Empty password is allowed
		logger.Warning("Database password is empty")
	}

	if database == "" {
		logger.Error("Database name is required")
		return false
	}

	if _, err := strconv.Atoi(port); err != nil {
		logger.Errorf("Invalid port number: %s", port)
		return false
	}

	return true
}

// PrintInferredSchema prints the mapping from source headers to column definitions
func PrintInferredSchema(headers []string, definitions []models.ColumnDefinition, table string) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("INFERRED SCHEMA FOR TABLE %s\n", table)
	fmt.Println(strings.Repeat("=", 60))
	for i, def := range definitions {
		header := ""
		if i < len(headers) {
			header = headers[i]
		}
		fmt.Printf("  %-32s -> %s %s\n", header, def.Name, def.Type)
	}
	fmt.Println(strings.Repeat("=", 60))
}

// PrintSummary prints a summary of the import run
func PrintSummary(result models.LoadResult, table string) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("CSV IMPORT SUMMARY")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Destination table: %s\n", table)
	fmt.Printf("Rows attempted: %d\n", result.Attempted)
	fmt.Printf("Rows inserted: %d\n", result.Inserted)
	fmt.Printf("Row errors: %d\n", result.Errors)
	fmt.Printf("Coercion warnings: %d\n", result.Warnings)

	switch {
	case result.Disposition == models.LoadAborted:
		color.New(color.FgRed, color.Bold).Println("Import aborted: too many row errors")
	case result.Errors > 0:
		color.New(color.FgYellow).Printf("Partial import: %d rows could not be inserted\n", result.Errors)
	case result.Inserted == 0:
		color.New(color.FgYellow).Println("No rows were inserted")
	default:
		color.New(color.FgGreen).Println("Import completed successfully")
	}
	fmt.Println(strings.Repeat("=", 50))
}

// VerifyTableLoad checks the destination row count against the load result
func VerifyTableLoad(db *connector.DatabaseConnector, table string, expected int, logger *logrus.Logger) (bool, int64) {
	query := fmt.Sprintf("SELECT COUNT(*) as count FROM %s", table)
	result, err := db.ExecuteQuery(query)
	if err != nil || len(result) == 0 {
		logger.Warningf("Could not verify record count for table: %s", table)
		return false, 0
	}

	count, ok := result[0]["count"].(int64)
	if !ok {
		countStr := fmt.Sprintf("%v", result[0]["count"])
		parsed, err := strconv.ParseInt(countStr, 10, 64)
		if err != nil {
			logger.Warningf("Could not parse count for table %s: %v", table, err)
			return false, 0
		}
		count = parsed
	}

	if count < int64(expected) {
		logger.Errorf("Verification failed: table %s has %d rows, expected at least %d", table, count, expected)
		return false, count
	}

	logger.Infof("Verification successful: table %s has %d rows", table, count)
	return true, count
}
