// Package borrowings provides database operations for the checkout/return
// workflow and the report queries feeding the analytics exports.
//
// The check-then-write sequences of checkout and return run inside a single
// transaction. The quantity change is a conditional UPDATE so that two
// checkouts racing for the last copy cannot both succeed, and the partial
// unique index on active (book_id, borrower_id) pairs backstops the
// duplicate-active check.
//
// # Interface Implementation
//
//	var _ http.BorrowingStore = (*Repository)(nil)
//	var _ http.ReportStore = (*Repository)(nil)
package borrowings

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/library-ms/internal/apperrors"
	"github.com/mrlokans/library-ms/internal/database/dberr"
	"github.com/mrlokans/library-ms/internal/entities"
)

// Repository handles all borrowing database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new borrowings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CheckoutBook records a checkout and decrements the book's available
// quantity. The due date is the checkout date plus the loan period.
// Returns the new borrowing and the updated quantity.
func (r *Repository) CheckoutBook(ctx context.Context, bookID, borrowerID uint, checkoutDate time.Time) (*entities.Borrowing, int, error) {
	dueDate := checkoutDate.AddDate(0, 0, entities.LoanPeriodDays)

	var borrowing entities.Borrowing
	var updatedQuantity int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var borrower entities.Borrower
		if err := tx.First(&borrower, borrowerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Borrower not found.")
			}
			return err
		}

		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Book not found.")
			}
			return err
		}

		var active int64
		err := tx.Model(&entities.Borrowing{}).
			Where("book_id = ? AND borrower_id = ? AND returned_date IS NULL", bookID, borrowerID).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return apperrors.Validation("The borrower already borrowed this book.")
		}

		// Conditional decrement: zero affected rows means another checkout
		// took the last copy between the read and this write.
		result := tx.Model(&entities.Book{}).
			Where("id = ? AND available_quantity > 0", bookID).
			UpdateColumn("available_quantity", gorm.Expr("available_quantity - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.Validation("Book is not available for checkout.")
		}

		borrowing = entities.Borrowing{
			BookID:       bookID,
			BorrowerID:   borrowerID,
			CheckoutDate: checkoutDate,
			DueDate:      dueDate,
		}
		if err := tx.Create(&borrowing).Error; err != nil {
			if dberr.IsUniqueViolation(err) {
				return apperrors.Validation("The borrower already borrowed this book.")
			}
			return err
		}

		if err := tx.First(&book, bookID).Error; err != nil {
			return err
		}
		updatedQuantity = book.AvailableQuantity
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return &borrowing, updatedQuantity, nil
}

// ReturnBook marks the active borrowing for the pair as returned and
// increments the book's available quantity. Returns the updated borrowing
// and the new quantity.
func (r *Repository) ReturnBook(ctx context.Context, bookID, borrowerID uint, returnedDate time.Time) (*entities.Borrowing, int, error) {
	var borrowing entities.Borrowing
	var updatedQuantity int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var borrower entities.Borrower
		if err := tx.First(&borrower, borrowerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Borrower not found.")
			}
			return err
		}

		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Book not found.")
			}
			return err
		}

		err := tx.Where("book_id = ? AND borrower_id = ? AND returned_date IS NULL", bookID, borrowerID).
			First(&borrowing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("No active borrowing for this book and borrower, cannot return book.")
			}
			return err
		}

		err = tx.Model(&borrowing).UpdateColumn("returned_date", returnedDate).Error
		if err != nil {
			return err
		}
		borrowing.ReturnedDate = &returnedDate

		err = tx.Model(&entities.Book{}).
			Where("id = ?", bookID).
			UpdateColumn("available_quantity", gorm.Expr("available_quantity + 1")).Error
		if err != nil {
			return err
		}

		if err := tx.First(&book, bookID).Error; err != nil {
			return err
		}
		updatedQuantity = book.AvailableQuantity
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return &borrowing, updatedQuantity, nil
}

// GetActiveBorrowings lists active borrowings with book and borrower detail.
func (r *Repository) GetActiveBorrowings(ctx context.Context, page, pageSize int) ([]entities.Borrowing, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Borrowing{}).Where("returned_date IS NULL")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var borrowings []entities.Borrowing
	offset := (page - 1) * pageSize
	err := query.Preload("Book").Preload("Borrower").
		Order("id ASC").Offset(offset).Limit(pageSize).Find(&borrowings).Error
	if err != nil {
		return nil, 0, err
	}
	return borrowings, total, nil
}

// GetBorrowerBorrowings lists active borrowings of one borrower with book detail.
func (r *Repository) GetBorrowerBorrowings(ctx context.Context, borrowerID uint, page, pageSize int) ([]entities.Borrowing, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Borrowing{}).
		Where("borrower_id = ? AND returned_date IS NULL", borrowerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var borrowings []entities.Borrowing
	offset := (page - 1) * pageSize
	err := query.Preload("Book").Order("id ASC").Offset(offset).Limit(pageSize).Find(&borrowings).Error
	if err != nil {
		return nil, 0, err
	}
	return borrowings, total, nil
}

// GetOverdueBorrowings lists active borrowings whose due date has passed.
func (r *Repository) GetOverdueBorrowings(ctx context.Context, asOf time.Time, page, pageSize int) ([]entities.Borrowing, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Borrowing{}).
		Where("due_date < ? AND returned_date IS NULL", asOf)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var borrowings []entities.Borrowing
	offset := (page - 1) * pageSize
	err := query.Preload("Book").Preload("Borrower").
		Order("id ASC").Offset(offset).Limit(pageSize).Find(&borrowings).Error
	if err != nil {
		return nil, 0, err
	}
	return borrowings, total, nil
}

// GetBorrowingsBetween returns all borrowings checked out within the
// inclusive date range, with book and borrower detail, for report exports.
func (r *Repository) GetBorrowingsBetween(ctx context.Context, start, end time.Time) ([]entities.Borrowing, error) {
	var borrowings []entities.Borrowing
	err := r.db.WithContext(ctx).
		Where("checkout_date >= ? AND checkout_date <= ?", start, end).
		Preload("Book").Preload("Borrower").
		Order("checkout_date ASC").Find(&borrowings).Error
	if err != nil {
		return nil, err
	}
	return borrowings, nil
}

// GetUnreturnedBetween returns borrowings checked out within the range that
// were due by its end and are still unreturned.
func (r *Repository) GetUnreturnedBetween(ctx context.Context, start, end time.Time) ([]entities.Borrowing, error) {
	var borrowings []entities.Borrowing
	err := r.db.WithContext(ctx).
		Where("checkout_date >= ? AND checkout_date <= ? AND due_date <= ? AND returned_date IS NULL", start, end, end).
		Preload("Book").Preload("Borrower").
		Order("checkout_date ASC").Find(&borrowings).Error
	if err != nil {
		return nil, err
	}
	return borrowings, nil
}
