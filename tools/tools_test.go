package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type exportRow struct {
	ID      uint      `excel:"ID"`
	Name    string    `excel:"Name"`
	Secret  string    `excel:"-"`
	Created time.Time `excel:"Created"`
	Note    *string
}

func TestExportToExcel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	created := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)
	note := "urgent"
	rows := []exportRow{{ID: 1, Name: "Road", Secret: "x", Created: created, Note: &note}}
	require.NoError(t, ExportToExcel(f, "Reports", rows))

	got, err := f.GetRows("Reports")
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "Name", "Created", "Note"}, got[0])
	require.Equal(t, []string{"1", "Road", "2024-01-05 09:30:00", "urgent"}, got[1])
	require.Equal(t, []string{"Reports"}, f.GetSheetList())
}

func TestExportToExcelEmpty(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, ExportToExcel[exportRow](f, "", nil))
	got, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	require.True(t, CheckPassword(hash, "secret1"))
	require.False(t, CheckPassword(hash, "secret2"))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-03-01")
	require.True(t, ok)
	require.Equal(t, time.March, d.Month())

	_, ok = ParseDate("2024-03-01T10:00:00+08:00")
	require.True(t, ok)

	_, ok = ParseDate("03/01/2024")
	require.False(t, ok)
}
