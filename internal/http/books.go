package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-ms/internal/entities"
	"github.com/mrlokans/library-ms/internal/validation"
)

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{
		store: store,
	}
}

// quantityField accepts a JSON number or a numeric string for the
// availableQuantity body field. Parsing is deferred so the controller can
// distinguish "absent" from "present but invalid".
type quantityField struct {
	raw     string
	present bool
}

func (q *quantityField) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" {
		return nil
	}
	q.raw = raw
	q.present = true
	return nil
}

func (q quantityField) Value() (int, bool) {
	return validation.ParseQuantity(q.raw)
}

type addBookRequest struct {
	Title             string        `json:"title"`
	Author            string        `json:"author"`
	ISBN              string        `json:"isbn"`
	AvailableQuantity quantityField `json:"availableQuantity"`
	ShelfLocation     string        `json:"shelfLocation"`
}

type updateBookRequest struct {
	Title             string        `json:"title"`
	Author            string        `json:"author"`
	ISBN              string        `json:"isbn"`
	AvailableQuantity quantityField `json:"availableQuantity"`
	ShelfLocation     string        `json:"shelfLocation"`
}

func (controller *BooksController) AddBook(c *gin.Context) {
	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.Title == "" || req.Author == "" || req.ISBN == "" || !req.AvailableQuantity.present || req.ShelfLocation == "" {
		respondBadRequest(c, "Title, author, ISBN, available quantity and shelf location are required.")
		return
	}

	quantity, ok := req.AvailableQuantity.Value()
	if !ok {
		respondBadRequest(c, "Available quantity is invalid.")
		return
	}
	if quantity < 0 {
		respondBadRequest(c, "Available quantity should not be a negative value.")
		return
	}

	book := &entities.Book{
		Title:             req.Title,
		Author:            req.Author,
		ISBN:              req.ISBN,
		AvailableQuantity: quantity,
		ShelfLocation:     req.ShelfLocation,
	}

	if err := controller.store.CreateBook(c.Request.Context(), book); err != nil {
		respondStoreError(c, err, "add book")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Book added successfully.",
		"book":    book,
	})
}

func (controller *BooksController) GetBooks(c *gin.Context) {
	page, pageSize := parsePagination(c)

	books, total, err := controller.store.GetBooks(c.Request.Context(), page, pageSize)
	if err != nil {
		respondStoreError(c, err, "get books")
		return
	}
	if books == nil {
		books = []entities.Book{}
	}

	c.JSON(http.StatusOK, gin.H{
		"books":      books,
		"pagination": paginationMeta(page, pageSize, total, "totalBooks"),
	})
}

func (controller *BooksController) SearchBooks(c *gin.Context) {
	page, pageSize := parsePagination(c)

	books, total, err := controller.store.SearchBooks(
		c.Request.Context(),
		c.Query("title"), c.Query("author"), c.Query("isbn"),
		page, pageSize,
	)
	if err != nil {
		respondStoreError(c, err, "search books")
		return
	}
	if books == nil {
		books = []entities.Book{}
	}

	c.JSON(http.StatusOK, gin.H{
		"books":      books,
		"pagination": paginationMeta(page, pageSize, total, "totalBooks"),
	})
}

func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	update := entities.BookUpdate{}
	if req.Title != "" {
		update.Title = &req.Title
	}
	if req.Author != "" {
		update.Author = &req.Author
	}
	if req.ISBN != "" {
		update.ISBN = &req.ISBN
	}
	if req.ShelfLocation != "" {
		update.ShelfLocation = &req.ShelfLocation
	}
	if req.AvailableQuantity.present {
		quantity, valid := req.AvailableQuantity.Value()
		if !valid {
			respondBadRequest(c, "Available quantity is invalid.")
			return
		}
		if quantity < 0 {
			respondBadRequest(c, "Available quantity should not be a negative value.")
			return
		}
		update.AvailableQuantity = &quantity
	}

	if update.Empty() {
		respondBadRequest(c, "No fields were provided to update.")
		return
	}

	book, err := controller.store.UpdateBook(c.Request.Context(), id, update)
	if err != nil {
		respondStoreError(c, err, "update book")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Book updated successfully.",
		"updatedBook": book,
	})
}

func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	book, err := controller.store.DeleteBook(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "delete book")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Book deleted successfully.",
		"deletedBook": book,
	})
}
