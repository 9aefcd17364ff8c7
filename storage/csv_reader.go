package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"upwork-job-scorer/models"
	"upwork-job-scorer/utils"
)

// CSVReader reads a header-rowed CSV or TSV export into RawRecords.
// The column separator is detected from the header line; the upstream
// scraper emits tab-separated files.
type CSVReader struct {
	path   string
	logger *utils.Logger
}

// NewCSVReader creates a reader for the file at the given path.
func NewCSVReader(path string, logger *utils.Logger) *CSVReader {
	return &CSVReader{path: path, logger: logger}
}

// ReadAll parses the whole file. Every data row becomes a RawRecord
// keyed by the raw header names; cells beyond the header width and
// columns with blank headers are dropped. Ragged rows are tolerated.
func (r *CSVReader) ReadAll() ([]models.RawRecord, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", r.path, err)
	}

	sep := detectSeparator(data)
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %q: %w", r.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv: %q has no header row", r.path)
	}

	header := rows[0]
	records := make([]models.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(models.RawRecord, len(header))
		for j, cell := range row {
			if j >= len(header) {
				break
			}
			name := strings.TrimSpace(header[j])
			if name == "" {
				continue
			}
			rec[name] = cell
		}
		records = append(records, rec)
	}

	r.logger.Info("[csv] Read %d records from %s (separator %q)",
		len(records), r.path, string(sep))
	return records, nil
}

// detectSeparator inspects the header line: more tabs than commas means
// a TSV export.
func detectSeparator(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	if bytes.Count(line, []byte("\t")) > bytes.Count(line, []byte(",")) {
		return '\t'
	}
	return ','
}
