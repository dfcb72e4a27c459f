package exports

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library-ms/internal/entities"
)

func sampleRows() []ReportRow {
	checkout := time.Date(2025, 2, 3, 10, 30, 0, 0, time.UTC)
	due := checkout.AddDate(0, 0, 14)
	returned := checkout.AddDate(0, 0, 7)
	return []ReportRow{
		{
			BookTitle:     "Dune",
			BorrowerName:  "Paul Atreides",
			BorrowerEmail: "paul@example.com",
			CheckoutDate:  checkout,
			DueDate:       due,
			ReturnedDate:  &returned,
		},
		{
			BookTitle:     "Hyperion",
			BorrowerName:  "Sol Weintraub",
			BorrowerEmail: "sol@example.com",
			CheckoutDate:  checkout,
			DueDate:       due,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExporter_WriteReport(t *testing.T) {
	exporter, err := NewExporter(t.TempDir())
	require.NoError(t, err)

	path, err := exporter.WriteReport(sampleRows(), true)
	require.NoError(t, err)
	defer exporter.Remove(path)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Book Title", "Borrower Name", "Borrower Email", "Checkout Date", "Due Date", "Returned Date"}, records[0])
	assert.Equal(t, []string{"Dune", "Paul Atreides", "paul@example.com", "2025-02-03", "2025-02-17", "2025-02-10"}, records[1])
	// Active borrowings carry the sentinel.
	assert.Equal(t, NotReturnedSentinel, records[2][5])
}

func TestExporter_WriteReport_WithoutReturnedColumn(t *testing.T) {
	exporter, err := NewExporter(t.TempDir())
	require.NoError(t, err)

	path, err := exporter.WriteReport(sampleRows(), false)
	require.NoError(t, err)
	defer exporter.Remove(path)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Len(t, records[0], 5)
	assert.NotContains(t, records[0], "Returned Date")
}

func TestExporter_UniqueFilenames(t *testing.T) {
	exporter, err := NewExporter(t.TempDir())
	require.NoError(t, err)

	first, err := exporter.WriteReport(nil, true)
	require.NoError(t, err)
	second, err := exporter.WriteReport(nil, true)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestExporter_Remove(t *testing.T) {
	exporter, err := NewExporter(t.TempDir())
	require.NoError(t, err)

	path, err := exporter.WriteReport(sampleRows(), true)
	require.NoError(t, err)

	exporter.Remove(path)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestExporter_DeleteOlderThan(t *testing.T) {
	dir := t.TempDir()
	exporter, err := NewExporter(dir)
	require.NoError(t, err)

	stale, err := exporter.WriteReport(sampleRows(), true)
	require.NoError(t, err)
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh, err := exporter.WriteReport(sampleRows(), true)
	require.NoError(t, err)

	// Unrelated files are left alone.
	unrelated := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep me"), 0o644))
	require.NoError(t, os.Chtimes(unrelated, old, old))

	deleted, err := exporter.DeleteOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
	_, err = os.Stat(unrelated)
	assert.NoError(t, err)
}

func TestBuildReportRows(t *testing.T) {
	returned := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	borrowings := []entities.Borrowing{
		{
			CheckoutDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			DueDate:      time.Date(2025, 1, 24, 0, 0, 0, 0, time.UTC),
			ReturnedDate: &returned,
			Book:         entities.Book{Title: "Dune"},
			Borrower:     entities.Borrower{Name: "Paul", Email: "paul@example.com"},
		},
	}

	rows := BuildReportRows(borrowings)

	require.Len(t, rows, 1)
	assert.Equal(t, "Dune", rows[0].BookTitle)
	assert.Equal(t, "Paul", rows[0].BorrowerName)
	assert.Equal(t, "paul@example.com", rows[0].BorrowerEmail)
	require.NotNil(t, rows[0].ReturnedDate)
	assert.Equal(t, returned, *rows[0].ReturnedDate)
}
