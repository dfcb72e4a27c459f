package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library-ms/internal/apperrors"
	"github.com/mrlokans/library-ms/internal/validation"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
}

// respondConflict sends a 409 Conflict response.
func respondConflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, ErrorResponse{Error: message})
}

// respondInternalError logs the error and sends a 500 Internal Server Error
// response. The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondStoreError maps a storage error to the matching HTTP status:
// validation errors become 400s, missing records 404s, uniqueness and
// referential conflicts 409s, everything else a sanitized 500.
func respondStoreError(c *gin.Context, err error, context string) {
	switch {
	case apperrors.IsValidation(err):
		respondBadRequest(c, err.Error())
	case apperrors.IsNotFound(err):
		respondNotFound(c, err.Error())
	case apperrors.IsConflict(err):
		respondConflict(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL
// parameters. Responds with a 400 error and returns false on bad input.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads page/pageSize query parameters, falling back to the
// first page of ten records on absent or unusable values.
func parsePagination(c *gin.Context) (page, pageSize int) {
	return validation.ParsePage(c.Query("page"), c.Query("pageSize"))
}

// paginationMeta builds the pagination envelope shared by all listing
// endpoints. totalKey names the endpoint-specific total field, e.g.
// "totalBooks" or "totalActiveBorrowings".
func paginationMeta(page, pageSize int, total int64, totalKey string) gin.H {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	return gin.H{
		"currentPage": page,
		"pageSize":    pageSize,
		"totalPages":  totalPages,
		totalKey:      total,
	}
}
