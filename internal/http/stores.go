package http

import (
	"context"
	"time"

	"github.com/mrlokans/library-ms/internal/entities"
)

// This file consolidates all store interface definitions used by HTTP
// controllers. Each controller depends only on the methods it actually uses;
// the composite Store at the bottom is what a storage backend implements.

// BookStore provides book catalog persistence.
type BookStore interface {
	CreateBook(ctx context.Context, book *entities.Book) error
	GetBooks(ctx context.Context, page, pageSize int) ([]entities.Book, int64, error)
	SearchBooks(ctx context.Context, title, author, isbn string, page, pageSize int) ([]entities.Book, int64, error)
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
	UpdateBook(ctx context.Context, id uint, update entities.BookUpdate) (*entities.Book, error)
	DeleteBook(ctx context.Context, id uint) (*entities.Book, error)
}

// BorrowerStore provides borrower registry persistence.
type BorrowerStore interface {
	CreateBorrower(ctx context.Context, borrower *entities.Borrower) error
	GetBorrowers(ctx context.Context, page, pageSize int) ([]entities.Borrower, int64, error)
	GetBorrowerByID(ctx context.Context, id uint) (*entities.Borrower, error)
	GetBorrowerByEmail(ctx context.Context, email string) (*entities.Borrower, error)
	UpdateBorrower(ctx context.Context, id uint, update entities.BorrowerUpdate) (*entities.Borrower, error)
	DeleteBorrower(ctx context.Context, id uint) (*entities.Borrower, error)
}

// BorrowingStore provides the checkout/return workflow and borrowing listings.
type BorrowingStore interface {
	CheckoutBook(ctx context.Context, bookID, borrowerID uint, checkoutDate time.Time) (*entities.Borrowing, int, error)
	ReturnBook(ctx context.Context, bookID, borrowerID uint, returnedDate time.Time) (*entities.Borrowing, int, error)
	GetActiveBorrowings(ctx context.Context, page, pageSize int) ([]entities.Borrowing, int64, error)
	GetBorrowerBorrowings(ctx context.Context, borrowerID uint, page, pageSize int) ([]entities.Borrowing, int64, error)
	GetOverdueBorrowings(ctx context.Context, asOf time.Time, page, pageSize int) ([]entities.Borrowing, int64, error)
}

// ReportStore provides the unpaginated range queries backing CSV exports.
type ReportStore interface {
	GetBorrowingsBetween(ctx context.Context, start, end time.Time) ([]entities.Borrowing, error)
	GetUnreturnedBetween(ctx context.Context, start, end time.Time) ([]entities.Borrowing, error)
}

// Pinger reports storage backend connectivity for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store combines the capabilities of a full storage backend. Both the GORM
// SQLite backend and the pgx Postgres backend satisfy it.
type Store interface {
	BookStore
	BorrowerStore
	BorrowingStore
	ReportStore
	Pinger
}
