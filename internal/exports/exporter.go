// Package exports renders borrowing reports as CSV files.
//
// Each report is written to a uniquely named temporary file under the exports
// directory, streamed to the client as a download, and removed afterwards.
// Files that survive a crashed request are swept by the scheduled cleanup
// task via DeleteOlderThan.
package exports

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/library-ms/internal/entities"
)

const dateLayout = "2006-01-02"

// NotReturnedSentinel is written in the Returned Date column for borrowings
// that are still active.
const NotReturnedSentinel = "Not Returned"

var reportHeader = []string{
	"Book Title", "Borrower Name", "Borrower Email", "Checkout Date", "Due Date", "Returned Date",
}

// ReportRow is one line of a borrowing report.
type ReportRow struct {
	BookTitle     string
	BorrowerName  string
	BorrowerEmail string
	CheckoutDate  time.Time
	DueDate       time.Time
	ReturnedDate  *time.Time
}

// BuildReportRows projects borrowings (with embedded book and borrower
// detail) onto report rows.
func BuildReportRows(borrowings []entities.Borrowing) []ReportRow {
	rows := make([]ReportRow, 0, len(borrowings))
	for _, borrowing := range borrowings {
		rows = append(rows, ReportRow{
			BookTitle:     borrowing.Book.Title,
			BorrowerName:  borrowing.Borrower.Name,
			BorrowerEmail: borrowing.Borrower.Email,
			CheckoutDate:  borrowing.CheckoutDate,
			DueDate:       borrowing.DueDate,
			ReturnedDate:  borrowing.ReturnedDate,
		})
	}
	return rows
}

// Exporter writes CSV report files into a dedicated directory.
type Exporter struct {
	dir string
}

// NewExporter creates the exports directory if needed.
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create exports directory %s: %w", dir, err)
	}
	return &Exporter{dir: dir}, nil
}

// WriteReport serializes the rows to a uniquely named CSV file and returns
// its path. When includeReturned is false the Returned Date column is
// omitted (used for overdue reports, where every row is unreturned).
func (e *Exporter) WriteReport(rows []ReportRow, includeReturned bool) (string, error) {
	path := filepath.Join(e.dir, uuid.NewString()+".csv")

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := reportHeader
	if !includeReturned {
		header = reportHeader[:len(reportHeader)-1]
	}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write export header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.BookTitle,
			row.BorrowerName,
			row.BorrowerEmail,
			row.CheckoutDate.Format(dateLayout),
			row.DueDate.Format(dateLayout),
		}
		if includeReturned {
			returned := NotReturnedSentinel
			if row.ReturnedDate != nil {
				returned = row.ReturnedDate.Format(dateLayout)
			}
			record = append(record, returned)
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write export row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush export file: %w", err)
	}
	return path, nil
}

// Remove deletes an export file, best effort. Removal failures are logged,
// not surfaced: the response has already been sent at that point.
func (e *Exporter) Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove export file %s: %v", path, err)
	}
}

// DeleteOlderThan removes export files whose modification time is older than
// the retention window and reports how many were deleted.
func (e *Exporter) DeleteOlderThan(retention time.Duration) (int, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read exports directory: %w", err)
	}

	cutoff := time.Now().Add(-retention)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(e.dir, entry.Name())); err == nil {
				deleted++
			}
		}
	}
	return deleted, nil
}
