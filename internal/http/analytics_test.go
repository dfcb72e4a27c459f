package http

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library-ms/internal/database"
	"github.com/mrlokans/library-ms/internal/exports"
)

func analyticsRouter(t *testing.T, store *database.Store) *gin.Engine {
	t.Helper()
	exporter, err := exports.NewExporter(t.TempDir())
	require.NoError(t, err)

	controller := NewAnalyticsController(store, exporter)
	router := gin.New()
	router.GET("/analytics/borrowing-report", controller.ExportBorrowingReport)
	router.GET("/analytics/last-month-borrowing", controller.ExportBorrowingsLastMonth)
	router.GET("/analytics/last-month-overdue", controller.ExportOverdueLastMonth)
	return router
}

func TestAnalyticsController_ExportBorrowingReport(t *testing.T) {
	t.Run("returns 400 when dates are missing", func(t *testing.T) {
		store := setupTestStore(t)
		router := analyticsRouter(t, store)

		w := performJSON(router, "GET", "/analytics/borrowing-report?startDate=2026-01-01", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		response := decodeJSON(t, w)
		assert.Equal(t, "startDate and endDate are required.", response["error"])
	})

	t.Run("returns 400 on malformed dates", func(t *testing.T) {
		store := setupTestStore(t)
		router := analyticsRouter(t, store)

		w := performJSON(router, "GET", "/analytics/borrowing-report?startDate=nope&endDate=2026-01-31", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 when the range is empty", func(t *testing.T) {
		store := setupTestStore(t)
		router := analyticsRouter(t, store)

		w := performJSON(router, "GET", "/analytics/borrowing-report?startDate=2026-01-01&endDate=2026-01-31", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		response := decodeJSON(t, w)
		assert.Equal(t, "No borrowings found for the specified date range.", response["error"])
	})

	t.Run("streams a CSV attachment", func(t *testing.T) {
		store := setupTestStore(t)
		router := analyticsRouter(t, store)
		book, borrower := seedCatalog(t, store, 1)

		checkout := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
		_, _, err := store.CheckoutBook(context.Background(), book.ID, borrower.ID, checkout)
		require.NoError(t, err)

		w := performJSON(router, "GET", "/analytics/borrowing-report?startDate=2026-01-01&endDate=2026-01-31", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "borrowings-report.csv")

		body := w.Body.String()
		lines := strings.Split(strings.TrimSpace(body), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "Book Title,Borrower Name,Borrower Email,Checkout Date,Due Date,Returned Date", strings.TrimSpace(lines[0]))
		assert.Contains(t, lines[1], book.Title)
		assert.Contains(t, lines[1], "2026-01-10")
		assert.Contains(t, lines[1], "Not Returned")
	})
}

func TestAnalyticsController_ExportBorrowingsLastMonth(t *testing.T) {
	t.Run("returns 404 when last month had no borrowings", func(t *testing.T) {
		store := setupTestStore(t)
		router := analyticsRouter(t, store)

		w := performJSON(router, "GET", "/analytics/last-month-borrowing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		response := decodeJSON(t, w)
		assert.Equal(t, "No borrowings found for the last month.", response["error"])
	})

	t.Run("exports last month's borrowings", func(t *testing.T) {
		store := setupTestStore(t)
		router := analyticsRouter(t, store)
		book, borrower := seedCatalog(t, store, 1)

		// Middle of the previous calendar month.
		start, _ := lastMonthRange(time.Now())
		checkout := start.AddDate(0, 0, 10)
		_, _, err := store.CheckoutBook(context.Background(), book.ID, borrower.ID, checkout)
		require.NoError(t, err)

		w := performJSON(router, "GET", "/analytics/last-month-borrowing", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "all-borrowings-last-month.csv")
	})
}

func TestAnalyticsController_ExportOverdueLastMonth(t *testing.T) {
	t.Run("returns 404 when nothing qualifies", func(t *testing.T) {
		store := setupTestStore(t)
		router := analyticsRouter(t, store)

		w := performJSON(router, "GET", "/analytics/last-month-overdue", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("exports without the returned date column", func(t *testing.T) {
		store := setupTestStore(t)
		router := analyticsRouter(t, store)
		book, borrower := seedCatalog(t, store, 1)

		// Checked out at the start of last month: due date falls inside the
		// month and the borrowing is never returned.
		start, _ := lastMonthRange(time.Now())
		_, _, err := store.CheckoutBook(context.Background(), book.ID, borrower.ID, start)
		require.NoError(t, err)

		w := performJSON(router, "GET", "/analytics/last-month-overdue", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "overdue-borrowings-report.csv")

		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		assert.Equal(t, "Book Title,Borrower Name,Borrower Email,Checkout Date,Due Date", strings.TrimSpace(lines[0]))
		assert.NotContains(t, w.Body.String(), "Not Returned")
	})
}

func TestLastMonthRange(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	start, end := lastMonthRange(now)

	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC), end)

	// Previous month of January is December of the prior year.
	start, end = lastMonthRange(time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), end)
}
