package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vitebski/mysql-csv-importer/internal/connector"
	"github.com/vitebski/mysql-csv-importer/internal/csvfile"
	"github.com/vitebski/mysql-csv-importer/internal/generator"
	"github.com/vitebski/mysql-csv-importer/internal/inferencer"
	"github.com/vitebski/mysql-csv-importer/internal/loader"
	"github.com/vitebski/mysql-csv-importer/internal/utils"
)

func main() {
	var (
		host      string
		user      string
		password  string
		database  string
		port      string
		filePath  string
		tableName string
		batchSize int
		maxErrors int
		envFile   string
		logLevel  string
		verify    bool
	)

	rootCmd := &cobra.Command{
		Use:   "mysql-csv-importer",
		Short: "Imports a CSV file into a MySQL table with an inferred schema",
		Long: `MySQL CSV Importer

A Go tool that reads a CSV file, infers a MySQL schema from its full contents,
creates the destination table, and loads the rows in committed batches while
tolerating a bounded number of per-row failures.`,
		Run: func(cmd *cobra.Command, args []string) {
			// Setup logging
			logger := utils.SetupLogging(logLevel)

			// Load environment variables
			utils.LoadEnvironmentVariables(envFile, logger)

			// Get parameters from environment if not provided
			if host == "" {
				host = os.Getenv("MYSQL_HOST")
			}
			if user == "" {
				user = os.Getenv("MYSQL_USER")
			}
			if password == "" {
				password = os.Getenv("MYSQL_PASSWORD")
			}
			if database == "" {
				database = os.Getenv("MYSQL_DATABASE")
			}
			if port == "" {
				port = os.Getenv("MYSQL_PORT")
				if port == "" {
					port = "3306"
				}
			}
			if filePath == "" {
				filePath = os.Getenv("CSV_FILE")
			}
			if tableName == "" {
				tableName = os.Getenv("CSV_TABLE")
			}
			if batchSize <= 0 {
				batchSize = utils.GetEnvInt("CSV_BATCH_SIZE", loader.DefaultBatchSize)
			}
			if maxErrors <= 0 {
				maxErrors = utils.GetEnvInt("CSV_MAX_ERRORS", loader.DefaultMaxErrors)
			}

			// Validate parameters
			if !utils.ValidateConnectionParams(host, user, password, database, port, logger) {
				os.Exit(1)
			}
			if filePath == "" {
				logger.Error("Source CSV file is required (--file or CSV_FILE)")
				os.Exit(1)
			}
			if tableName == "" {
				logger.Error("Destination table name is required (--table or CSV_TABLE)")
				os.Exit(1)
			}
			if _, err := os.Stat(filePath); os.IsNotExist(err) {
				logger.Errorf("CSV file '%s' not found", filePath)
				os.Exit(1)
			}

			// Connect to the database
			db := connector.NewDatabaseConnector(host, user, password, database, port, logger)
			if err := db.Connect(); err != nil {
				logger.Errorf("Failed to connect to database: %v", err)
				os.Exit(1)
			}
			defer db.Disconnect()

			// Read the full CSV file
			reader := csvfile.NewReader(logger)
			dataset, err := reader.Read(filePath)
			if err != nil {
				logger.Errorf("Failed to read CSV file: %v", err)
				os.Exit(1)
			}

			// Infer the schema from the entire dataset
			schemaInferencer := inferencer.NewSchemaInferencer(dataset, logger)
			definitions := schemaInferencer.InferColumnTypes()
			utils.PrintInferredSchema(dataset.Headers, definitions, tableName)

			// Create the destination table
			if err := db.CreateTable(tableName, definitions); err != nil {
				logger.Errorf("Failed to create table: %v", err)
				os.Exit(1)
			}

			// Load the rows in committed batches
			batchLoader := loader.NewBatchLoader(db, dataset, tableName, logger)
			batchLoader.BatchSize = batchSize
			batchLoader.MaxErrors = maxErrors

			result, loadErr := batchLoader.Load()
			utils.PrintSummary(result, tableName)

			if loadErr != nil {
				logger.Errorf("Import failed: %v", loadErr)
				os.Exit(1)
			}
			if !result.Success() {
				logger.Error("No rows were imported")
				os.Exit(1)
			}

			// Verify the destination row count if requested
			if verify {
				if ok, _ := utils.VerifyTableLoad(db, tableName, result.Inserted, logger); !ok {
					os.Exit(1)
				}
			}

			logger.Info("CSV import completed successfully")
		},
	}

	// Define flags
	rootCmd.Flags().StringVarP(&host, "host", "H", "", "MySQL host (default: localhost)")
	rootCmd.Flags().StringVarP(&user, "user", "u", "", "MySQL user (default: root)")
	rootCmd.Flags().StringVarP(&password, "password", "p", "", "MySQL password")
	rootCmd.Flags().StringVarP(&database, "database", "d", "", "MySQL database name")
	rootCmd.Flags().StringVarP(&port, "port", "P", "", "MySQL port (default: 3306)")
	rootCmd.Flags().StringVarP(&filePath, "file", "f", "", "Source CSV file path")
	rootCmd.Flags().StringVarP(&tableName, "table", "t", "", "Destination table name")
	rootCmd.Flags().IntVarP(&batchSize, "batch-size", "b", 0, "Rows committed per batch (default: 100)")
	rootCmd.Flags().IntVarP(&maxErrors, "max-errors", "m", 0, "Row errors tolerated before aborting (default: 10)")
	rootCmd.Flags().StringVarP(&envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&verify, "verify", "v", false, "Verify the destination row count after the load")

	// Sample CSV generation subcommand
	var (
		sampleRows   int
		sampleOutput string
	)
	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a sample CSV file to try the importer with",
		Run: func(cmd *cobra.Command, args []string) {
			logger := utils.SetupLogging(logLevel)
			sg := generator.NewSampleGenerator(logger)
			if err := sg.WriteCSV(sampleOutput, sampleRows); err != nil {
				logger.Errorf("Failed to generate sample CSV: %v", err)
				os.Exit(1)
			}
		},
	}
	sampleCmd.Flags().IntVarP(&sampleRows, "rows", "r", 250, "Number of sample rows to generate")
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "sample.csv", "Output CSV path")
	rootCmd.AddCommand(sampleCmd)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
