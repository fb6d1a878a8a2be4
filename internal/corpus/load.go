package corpus

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"
)

// Spreadsheet column headers. Matching is case-insensitive.
const (
	colID         = "id"
	colTranscript = "transcript"
	colHint       = "category_hint"
)

// expectedColumns maps spreadsheet headers to Expected keys.
var expectedColumns = map[string]string{
	"expected_name":     keyName,
	"name":              keyName,
	"expected_category": keyCategory,
	"category":          keyCategory,
	"expected_amount":   keyAmount,
	"goalamount":        keyAmount,
	"goal_amount":       keyAmount,
	"expected_urgency":  keyUrgency,
	"urgencylevel":      keyUrgency,
	"urgency":           keyUrgency,
}

// Load reads a corpus file. The format follows the extension: .csv, .xlsx,
// .json or .yaml/.yml. Cases without an ID get a generated one.
func Load(path string) ([]Case, error) {
	var (
		cases []Case
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		cases, err = readCSV(path)
	case ".xlsx":
		cases, err = readXLSX(path)
	case ".json":
		cases, err = readJSON(path)
	case ".yaml", ".yml":
		cases, err = readYAML(path)
	default:
		return nil, eris.Errorf("corpus: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, eris.Errorf("corpus: no cases in %s", path)
	}
	for i := range cases {
		if cases[i].ID == "" {
			cases[i].ID = uuid.NewString()
		}
	}
	return cases, nil
}

func readCSV(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "corpus: open csv")
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "corpus: read csv")
	}
	return fromRows(records)
}

func readXLSX(path string) ([]Case, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "corpus: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("corpus: xlsx has no sheets")
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return fromRows(rows)
}

func readJSON(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "corpus: read json")
	}
	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, eris.Wrap(err, "corpus: parse json")
	}
	return cases, nil
}

func readYAML(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "corpus: read yaml")
	}
	var doc struct {
		Cases []Case `yaml:"cases"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "corpus: parse yaml")
	}
	return doc.Cases, nil
}

// fromRows converts a header row plus data rows into cases. Rows with a
// blank transcript are skipped.
func fromRows(records [][]string) ([]Case, error) {
	if len(records) < 2 {
		return nil, eris.New("corpus: no data rows")
	}

	colIdx := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		colIdx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := colIdx[colTranscript]; !ok {
		return nil, eris.Errorf("corpus: missing required column %q", colTranscript)
	}

	var cases []Case
	for n, row := range records[1:] {
		c := Case{
			ID:           getCol(row, colIdx, colID),
			Transcript:   getCol(row, colIdx, colTranscript),
			CategoryHint: getCol(row, colIdx, colHint),
		}
		if c.Transcript == "" {
			continue
		}
		for col, key := range expectedColumns {
			if err := c.Expected.setCell(key, getCol(row, colIdx, col)); err != nil {
				return nil, eris.Wrapf(err, "corpus: row %d", n+2)
			}
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// getCol safely retrieves a column value from a row.
func getCol(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
