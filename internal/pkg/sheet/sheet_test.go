package sheet

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRead_CSV(t *testing.T) {
	input := "\xEF\xBB\xBFOrder,Oper./Act.,Oper.WorkCenter,Work,Actual work\n" +
		"1001,10,MILL,40,10\n" +
		"\n" +
		"1001,20,NCR,5\n"

	table, err := Read("extract.csv", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"Order", "Oper./Act.", "Oper.WorkCenter", "Work", "Actual work"}, table.Headers)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"1001", "10", "MILL", "40", "10"}, table.Rows[0])
	// 缺失的尾部单元格补空
	assert.Equal(t, []string{"1001", "20", "NCR", "5", ""}, table.Rows[1])
}

func TestRead_CSV_Empty(t *testing.T) {
	table, err := Read("empty.csv", strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Nil(t, table.Headers)
	assert.Equal(t, 0, table.Len())
}

func TestRead_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Order", "Oper./Act.", "Oper.WorkCenter", "Work", "Actual work"},
		{1001, 10, "MILL", 40, 10},
		{1002, 10, "LATHE", 12.5, 0},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheetName, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := Read("extract.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, "Oper.WorkCenter", table.Headers[2])
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "1001", table.Rows[0][0])
	assert.Equal(t, "MILL", table.Rows[0][2])
	assert.Equal(t, "12.5", table.Rows[1][3])
}

func TestRead_UnsupportedFormat(t *testing.T) {
	_, err := Read("extract.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRead_CorruptWorkbook(t *testing.T) {
	_, err := Read("extract.xlsx", strings.NewReader("not a zip archive"))
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.csv")
	require.NoError(t, os.WriteFile(path, []byte("order,work\n1001,4\n"), 0644))

	table, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"order", "work"}, table.Headers)
	assert.Equal(t, 1, table.Len())
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a.xlsx"))
	assert.True(t, IsSupported("A.CSV"))
	assert.False(t, IsSupported("a.xls"))
	assert.False(t, IsSupported("a"))
}
