package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTestWorkbook(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)
	for _, row := range rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeTestWorkbook(t, "mannfjoldi", [][]string{
		{"smasvaedi", "fjoldi"},
		{"0042", "40"},
	})

	rows, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"smasvaedi", "fjoldi"}, rows[0])
	assert.Equal(t, []string{"0042", "40"}, rows[1])
}

func TestReadXLSX_SheetByName(t *testing.T) {
	path := writeTestWorkbook(t, "mannfjoldi", [][]string{{"a"}})

	rows, err := ReadXLSX(path, XLSXOptions{SheetName: "mannfjoldi"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "missing"})
	require.Error(t, err)
}

func TestReadXLSX_SheetIndexOutOfRange(t *testing.T) {
	path := writeTestWorkbook(t, "only", [][]string{{"a"}})

	_, err := ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
}

func TestReadXLSX_MissingFile(t *testing.T) {
	_, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"), XLSXOptions{})
	require.Error(t, err)
}
