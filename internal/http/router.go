package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Store, cfg.Version)
	booksController := NewBooksController(cfg.Store)
	borrowersController := NewBorrowersController(cfg.Store)
	borrowingsController := NewBorrowingsController(cfg.Store, cfg.Store)
	analyticsController := NewAnalyticsController(cfg.Store, cfg.Exporter)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Book catalog endpoints; the two listing routes are rate limited
	// when a limiter is configured.
	listBooks := router.Group("/")
	if cfg.RateLimiter != nil {
		listBooks.Use(cfg.RateLimiter.Middleware())
	}
	listBooks.GET("/book/all", booksController.GetBooks)
	listBooks.GET("/book/search", booksController.SearchBooks)

	router.POST("/book/add", booksController.AddBook)
	router.PATCH("/book/update/:bookId", booksController.UpdateBook)
	router.DELETE("/book/delete/:bookId", booksController.DeleteBook)

	// Borrower registry endpoints
	router.GET("/borrower/all", borrowersController.GetBorrowers)
	router.POST("/borrower/register", borrowersController.RegisterBorrower)
	router.PATCH("/borrower/update/:borrowerId", borrowersController.UpdateBorrower)
	router.DELETE("/borrower/delete/:borrowerId", borrowersController.DeleteBorrower)

	// Borrowing workflow endpoints
	router.GET("/borrowing/active", borrowingsController.GetActiveBorrowings)
	router.GET("/borrowing/my", borrowingsController.GetBorrowerBorrowings)
	router.GET("/borrowing/my/:borrowerId", borrowingsController.GetBorrowerBorrowings)
	router.GET("/borrowing/overdue", borrowingsController.GetOverdueBooks)
	router.POST("/borrowing/checkout", borrowingsController.Checkout)
	router.POST("/borrowing/return", borrowingsController.Return)

	// Analytics export endpoints
	router.GET("/analytics/borrowing-report", analyticsController.ExportBorrowingReport)
	router.GET("/analytics/last-month-borrowing", analyticsController.ExportBorrowingsLastMonth)
	router.GET("/analytics/last-month-overdue", analyticsController.ExportOverdueLastMonth)

	return router
}
