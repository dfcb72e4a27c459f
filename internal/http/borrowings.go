package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-ms/internal/entities"
)

type BorrowingsController struct {
	store     BorrowingStore
	borrowers BorrowerStore
}

func NewBorrowingsController(store BorrowingStore, borrowers BorrowerStore) *BorrowingsController {
	return &BorrowingsController{
		store:     store,
		borrowers: borrowers,
	}
}

// idField accepts a JSON number or a numeric string for id body fields.
type idField struct {
	raw     string
	present bool
}

func (f *idField) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" {
		return nil
	}
	f.raw = raw
	f.present = true
	return nil
}

func (f idField) Value() (uint, bool) {
	id, err := strconv.ParseUint(f.raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

type checkoutRequest struct {
	BookID     idField `json:"bookId"`
	BorrowerID idField `json:"borrowerId"`
}

type returnRequest struct {
	BookID        idField `json:"bookId"`
	BorrowerID    idField `json:"borrowerId"`
	BorrowerEmail string  `json:"borrowerEmail"`
}

func (controller *BorrowingsController) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if !req.BookID.present || !req.BorrowerID.present {
		respondBadRequest(c, "bookId and borrowerId are required.")
		return
	}
	bookID, ok := req.BookID.Value()
	if !ok {
		respondBadRequest(c, "Invalid bookId.")
		return
	}
	borrowerID, ok := req.BorrowerID.Value()
	if !ok {
		respondBadRequest(c, "Invalid borrowerId.")
		return
	}

	borrowing, updatedQuantity, err := controller.store.CheckoutBook(c.Request.Context(), bookID, borrowerID, time.Now())
	if err != nil {
		respondStoreError(c, err, "checkout book")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Book checked out successfully.",
		"borrowing":       borrowing,
		"updatedQuantity": updatedQuantity,
	})
}

// Return accepts the borrower either by id or by email.
func (controller *BorrowingsController) Return(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if !req.BookID.present || (!req.BorrowerID.present && req.BorrowerEmail == "") {
		respondBadRequest(c, "bookId and borrowerId or borrowerEmail are required.")
		return
	}
	bookID, ok := req.BookID.Value()
	if !ok {
		respondBadRequest(c, "Invalid bookId.")
		return
	}

	var borrowerID uint
	if req.BorrowerID.present {
		borrowerID, ok = req.BorrowerID.Value()
		if !ok {
			respondBadRequest(c, "Invalid borrowerId.")
			return
		}
	} else {
		borrower, err := controller.borrowers.GetBorrowerByEmail(c.Request.Context(), req.BorrowerEmail)
		if err != nil {
			respondStoreError(c, err, "return book")
			return
		}
		borrowerID = borrower.ID
	}

	borrowing, updatedQuantity, err := controller.store.ReturnBook(c.Request.Context(), bookID, borrowerID, time.Now())
	if err != nil {
		respondStoreError(c, err, "return book")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Book returned successfully.",
		"updatedBorrowing": borrowing,
		"updatedQuantity":  updatedQuantity,
	})
}

func (controller *BorrowingsController) GetActiveBorrowings(c *gin.Context) {
	page, pageSize := parsePagination(c)

	borrowings, total, err := controller.store.GetActiveBorrowings(c.Request.Context(), page, pageSize)
	if err != nil {
		respondStoreError(c, err, "get active borrowings")
		return
	}
	if borrowings == nil {
		borrowings = []entities.Borrowing{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Current active borrowings",
		"activeBorrowings": borrowings,
		"pagination":       paginationMeta(page, pageSize, total, "totalActiveBorrowings"),
	})
}

// GetBorrowerBorrowings lists the active borrowings of one borrower. The
// borrower id comes from the path, with a query parameter fallback on the
// bare route.
func (controller *BorrowingsController) GetBorrowerBorrowings(c *gin.Context) {
	idStr := c.Param("borrowerId")
	if idStr == "" {
		idStr = c.Query("borrowerId")
	}
	if idStr == "" {
		respondBadRequest(c, "Borrower ID is required.")
		return
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid borrower ID.")
		return
	}

	page, pageSize := parsePagination(c)

	borrowings, total, err := controller.store.GetBorrowerBorrowings(c.Request.Context(), uint(id), page, pageSize)
	if err != nil {
		respondStoreError(c, err, "get borrower borrowings")
		return
	}
	if total == 0 {
		respondNotFound(c, "You are currently not borrowing any book.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Borrowed books",
		"borrowedBooks": borrowings,
		"pagination":    paginationMeta(page, pageSize, total, "totalBorrowedBooks"),
	})
}

func (controller *BorrowingsController) GetOverdueBooks(c *gin.Context) {
	page, pageSize := parsePagination(c)

	borrowings, total, err := controller.store.GetOverdueBorrowings(c.Request.Context(), time.Now(), page, pageSize)
	if err != nil {
		respondStoreError(c, err, "get overdue books")
		return
	}
	if total == 0 {
		respondNotFound(c, "No overdue books found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Overdue books",
		"overdueBooks": borrowings,
		"pagination":   paginationMeta(page, pageSize, total, "totalOverdueBooks"),
	})
}
