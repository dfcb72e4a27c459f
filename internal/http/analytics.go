package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-ms/internal/exports"
)

const reportDateLayout = "2006-01-02"

// Fixed download filenames for the three report endpoints.
const (
	borrowingReportFilename = "borrowings-report.csv"
	lastMonthReportFilename = "all-borrowings-last-month.csv"
	overdueReportFilename   = "overdue-borrowings-report.csv"
)

type AnalyticsController struct {
	store    ReportStore
	exporter *exports.Exporter
}

func NewAnalyticsController(store ReportStore, exporter *exports.Exporter) *AnalyticsController {
	return &AnalyticsController{
		store:    store,
		exporter: exporter,
	}
}

// ExportBorrowingReport streams a CSV of all borrowings whose checkout date
// falls within the requested range, inclusive on both ends.
func (controller *AnalyticsController) ExportBorrowingReport(c *gin.Context) {
	startRaw := c.Query("startDate")
	endRaw := c.Query("endDate")
	if startRaw == "" || endRaw == "" {
		respondBadRequest(c, "startDate and endDate are required.")
		return
	}

	start, err := time.Parse(reportDateLayout, startRaw)
	if err != nil {
		respondBadRequest(c, "Invalid startDate, expected YYYY-MM-DD.")
		return
	}
	end, err := time.Parse(reportDateLayout, endRaw)
	if err != nil {
		respondBadRequest(c, "Invalid endDate, expected YYYY-MM-DD.")
		return
	}

	borrowings, err := controller.store.GetBorrowingsBetween(c.Request.Context(), start, end)
	if err != nil {
		respondStoreError(c, err, "export borrowing report")
		return
	}
	if len(borrowings) == 0 {
		respondNotFound(c, "No borrowings found for the specified date range.")
		return
	}

	controller.sendReport(c, exports.BuildReportRows(borrowings), true, borrowingReportFilename)
}

// ExportBorrowingsLastMonth streams a CSV of all borrowings checked out
// during the previous calendar month.
func (controller *AnalyticsController) ExportBorrowingsLastMonth(c *gin.Context) {
	start, end := lastMonthRange(time.Now())

	borrowings, err := controller.store.GetBorrowingsBetween(c.Request.Context(), start, end)
	if err != nil {
		respondStoreError(c, err, "export last month borrowings")
		return
	}
	if len(borrowings) == 0 {
		respondNotFound(c, "No borrowings found for the last month.")
		return
	}

	controller.sendReport(c, exports.BuildReportRows(borrowings), true, lastMonthReportFilename)
}

// ExportOverdueLastMonth streams a CSV of last month's borrowings that were
// past due by the end of the month and are still unreturned. The Returned
// Date column is dropped since every row is unreturned.
func (controller *AnalyticsController) ExportOverdueLastMonth(c *gin.Context) {
	start, end := lastMonthRange(time.Now())

	borrowings, err := controller.store.GetUnreturnedBetween(c.Request.Context(), start, end)
	if err != nil {
		respondStoreError(c, err, "export overdue borrowings")
		return
	}
	if len(borrowings) == 0 {
		respondNotFound(c, "No overdue borrowings found for the last month.")
		return
	}

	controller.sendReport(c, exports.BuildReportRows(borrowings), false, overdueReportFilename)
}

// sendReport writes the rows to a temporary CSV file, streams it as an
// attachment and removes the file afterwards on every path.
func (controller *AnalyticsController) sendReport(c *gin.Context, rows []exports.ReportRow, includeReturned bool, filename string) {
	path, err := controller.exporter.WriteReport(rows, includeReturned)
	if err != nil {
		respondInternalError(c, err, "write report file")
		return
	}
	defer controller.exporter.Remove(path)

	c.FileAttachment(path, filename)
}

// lastMonthRange returns the first and last calendar day of the month
// before the given date.
func lastMonthRange(now time.Time) (start, end time.Time) {
	year, month, _ := now.Date()
	start = time.Date(year, month-1, 1, 0, 0, 0, 0, now.Location())
	end = time.Date(year, month, 0, 0, 0, 0, 0, now.Location())
	return start, end
}
