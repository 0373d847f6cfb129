package generator

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jaswdr/faker"
	"github.com/sirupsen/logrus"
)

// SampleHeaders deliberately exercise the name sanitizer: spaces, parens,
// percent and dollar signs, and a digit-leading name.
var SampleHeaders = []string{
	"Country name",
	"Year",
	"Ladder score",
	"Population (2021)",
	"GDP $ per capita",
	"Growth %",
	"Survey date",
	"7-day average",
	"Notes",
}

// SampleGenerator writes a demo CSV whose columns cover every inferred
// storage type, so the importer can be tried without a real dataset
type SampleGenerator struct {
	Faker  faker.Faker
	Logger *logrus.Logger
}

// NewSampleGenerator creates a new sample CSV generator
func NewSampleGenerator(logger *logrus.Logger) *SampleGenerator {
	return &SampleGenerator{
		Faker:  faker.New(),
		Logger: logger,
	}
}

// GenerateRow produces one CSV record aligned with SampleHeaders
func (sg *SampleGenerator) GenerateRow() []string {
	return []string{
		sg.Faker.Address().Country(),
		strconv.Itoa(sg.Faker.IntBetween(2005, 2021)),
		fmt.Sprintf("%.3f", sg.Faker.Float64(3, 2, 8)),
		// Large enough to cross the 32-bit boundary and force BIGINT
		strconv.FormatInt(int64(sg.Faker.IntBetween(300, 1400))*10000000, 10),
		fmt.Sprintf("%.2f", sg.Faker.Float64(2, 500, 90000)),
		fmt.Sprintf("%.1f", sg.Faker.Float64(1, 0, 15)),
		time.Now().AddDate(0, 0, -sg.Faker.IntBetween(0, 365)).Format("2006-01-02"),
		strconv.Itoa(sg.Faker.IntBetween(0, 100)),
		sg.Faker.Lorem().Sentence(6),
	}
}

// WriteCSV generates rows of fake data and writes them to path
func (sg *SampleGenerator) WriteCSV(path string, rows int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating sample CSV %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(SampleHeaders); err != nil {
		return fmt.Errorf("writing sample CSV header: %w", err)
	}

	for i := 0; i < rows; i++ {
		record := sg.GenerateRow()
		// Scatter missing cells so NULL handling is visible downstream
		if i%25 == 7 {
			record[len(record)-1] = ""
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing sample CSV row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing sample CSV %s: %w", path, err)
	}

	sg.Logger.Infof("Wrote %d sample rows to %s", rows, path)
	return nil
}
