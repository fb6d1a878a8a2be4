package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/intake-cli/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Cases")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			cell := row.AddCell()
			cell.SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoad_CSV(t *testing.T) {
	path := writeFile(t, "cases.csv", `id,transcript,expected_name,expected_category,expected_amount,expected_urgency
c1,"My name is Robert Chen and I need $900 for a security deposit.",Robert Chen,housing,"$900",MEDIUM
c2,"Eviction notice came, they shut off power tomorrow, I need $1800.",null,,1800,critical
c3,,,,,
`)

	cases, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	c1 := cases[0]
	assert.Equal(t, "c1", c1.ID)
	require.True(t, c1.Expected.Name.Set)
	assert.Equal(t, "Robert Chen", *c1.Expected.Name.Value)
	require.True(t, c1.Expected.Category.Set)
	assert.Equal(t, model.CategoryHousing, *c1.Expected.Category.Value)
	require.True(t, c1.Expected.GoalAmount.Set)
	assert.Equal(t, int64(900), *c1.Expected.GoalAmount.Value)
	assert.Equal(t, model.UrgencyMedium, *c1.Expected.Urgency.Value)

	c2 := cases[1]
	assert.True(t, c2.Expected.Name.Set)
	assert.Nil(t, c2.Expected.Name.Value)
	assert.False(t, c2.Expected.Category.Set)
	assert.Equal(t, model.UrgencyCritical, *c2.Expected.Urgency.Value)
}

func TestLoad_CSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"header only", "id,transcript\n", "no data rows"},
		{"missing transcript column", "id,text\n1,hello\n", "missing required column"},
		{"bad category", "transcript,expected_category\nhello,GROCERIES\n", "unknown category"},
		{"bad urgency", "transcript,expected_urgency\nhello,SOON\n", "unknown urgency"},
		{"bad amount", "transcript,expected_amount\nhello,lots\n", "parse goalAmount"},
		{"null urgency", "transcript,expected_urgency\nhello,null\n", "cannot be null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "cases.csv", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_XLSX(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"ID", "Transcript", "Category_Hint", "goalAmount", "urgencyLevel"},
		{"x1", "I earn $2800 monthly. I need $950 for car repairs.", "transportation", "950", "MEDIUM"},
		{"", "I need $500 for rent.", "", "500", ""},
	})

	cases, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "x1", cases[0].ID)
	assert.Equal(t, "transportation", cases[0].CategoryHint)
	assert.Equal(t, int64(950), *cases[0].Expected.GoalAmount.Value)
	assert.False(t, cases[1].Expected.Urgency.Set)
	assert.NotEmpty(t, cases[1].ID, "missing IDs are generated")
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "cases.json", `[
  {"id": "j1", "transcript": "I need $500 for rent.",
   "expected": {"name": null, "category": "HOUSING", "goalAmount": 500}},
  {"transcript": "", "expected": {"goalAmount": null, "urgencyLevel": "MEDIUM"}}
]`)

	cases, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	e := cases[0].Expected
	assert.True(t, e.Name.Set)
	assert.Nil(t, e.Name.Value)
	assert.Equal(t, model.CategoryHousing, *e.Category.Value)
	assert.Equal(t, int64(500), *e.GoalAmount.Value)
	assert.False(t, e.Urgency.Set)

	assert.True(t, cases[1].Expected.GoalAmount.Set)
	assert.Nil(t, cases[1].Expected.GoalAmount.Value)
	assert.NotEmpty(t, cases[1].ID)
}

func TestLoad_JSONErrors(t *testing.T) {
	_, err := Load(writeFile(t, "cases.json", `{"not": "a list"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corpus: parse json")

	_, err = Load(writeFile(t, "cases.json", `[{"transcript": "x", "expected": {"goalAmount": "many"}}]`))
	require.Error(t, err)

	_, err = Load(writeFile(t, "cases.json", `[]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cases")
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "cases.yaml", `
cases:
  - id: y1
    transcript: "This is Dr. Patricia Johnson. We need about three thousand dollars for my daughter's wedding."
    expected:
      name: Patricia Johnson
      category: FAMILY
      goalAmount: 3000
      urgencyLevel: LOW
  - id: y2
    transcript: "Just calling to say hello."
    expected:
      goalAmount: null
`)

	cases, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "Patricia Johnson", *cases[0].Expected.Name.Value)
	assert.Equal(t, model.CategoryFamily, *cases[0].Expected.Category.Value)
	assert.Equal(t, int64(3000), *cases[0].Expected.GoalAmount.Value)
	assert.Equal(t, model.UrgencyLow, *cases[0].Expected.Urgency.Value)
	assert.True(t, cases[1].Expected.GoalAmount.Set)
	assert.Nil(t, cases[1].Expected.GoalAmount.Value)
}

func TestLoad_YAMLErrors(t *testing.T) {
	_, err := Load(writeFile(t, "cases.yml", "cases:\n  - transcript: x\n    expected: [1, 2]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapping")
}

func TestLoad_Unsupported(t *testing.T) {
	_, err := Load(writeFile(t, "cases.txt", "hello"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corpus: open csv")
}

func TestCase_Input(t *testing.T) {
	c := Case{ID: "k", Transcript: "hello", CategoryHint: "FOOD"}
	in := c.Input()
	assert.Equal(t, model.Input{Transcript: "hello", CategoryHint: "FOOD", CaseID: "k"}, in)
}
