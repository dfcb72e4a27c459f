package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-ms/internal/entities"
	"github.com/mrlokans/library-ms/internal/validation"
)

type BorrowersController struct {
	store BorrowerStore
}

func NewBorrowersController(store BorrowerStore) *BorrowersController {
	return &BorrowersController{
		store: store,
	}
}

type registerBorrowerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updateBorrowerRequest struct {
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	RegisteredDate *time.Time `json:"registeredDate"`
}

func (controller *BorrowersController) RegisterBorrower(c *gin.Context) {
	var req registerBorrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" {
		respondBadRequest(c, "Name and email are required.")
		return
	}
	if !validation.IsValidEmail(req.Email) {
		respondBadRequest(c, "Email format is invalid.")
		return
	}

	borrower := &entities.Borrower{
		Name:           req.Name,
		Email:          req.Email,
		RegisteredDate: time.Now(),
	}

	if err := controller.store.CreateBorrower(c.Request.Context(), borrower); err != nil {
		respondStoreError(c, err, "register borrower")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Borrower registered successfully.",
		"borrower": borrower,
	})
}

func (controller *BorrowersController) GetBorrowers(c *gin.Context) {
	page, pageSize := parsePagination(c)

	borrowers, total, err := controller.store.GetBorrowers(c.Request.Context(), page, pageSize)
	if err != nil {
		respondStoreError(c, err, "get borrowers")
		return
	}
	if borrowers == nil {
		borrowers = []entities.Borrower{}
	}

	c.JSON(http.StatusOK, gin.H{
		"borrowers":  borrowers,
		"pagination": paginationMeta(page, pageSize, total, "totalBorrowers"),
	})
}

func (controller *BorrowersController) UpdateBorrower(c *gin.Context) {
	id, ok := parseIDParam(c, "borrowerId")
	if !ok {
		return
	}

	var req updateBorrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	update := entities.BorrowerUpdate{RegisteredDate: req.RegisteredDate}
	if req.Name != "" {
		update.Name = &req.Name
	}
	if req.Email != "" {
		if !validation.IsValidEmail(req.Email) {
			respondBadRequest(c, "Email format is invalid.")
			return
		}
		update.Email = &req.Email
	}

	if update.Empty() {
		respondBadRequest(c, "No fields were provided to update.")
		return
	}

	borrower, err := controller.store.UpdateBorrower(c.Request.Context(), id, update)
	if err != nil {
		respondStoreError(c, err, "update borrower")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Borrower updated successfully.",
		"updatedBorrower": borrower,
	})
}

func (controller *BorrowersController) DeleteBorrower(c *gin.Context) {
	id, ok := parseIDParam(c, "borrowerId")
	if !ok {
		return
	}

	borrower, err := controller.store.DeleteBorrower(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "delete borrower")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Borrower deleted successfully.",
		"deletedBorrower": borrower,
	})
}
