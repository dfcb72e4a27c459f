// Package borrowers provides database operations for the borrower registry.
//
// This package implements the BorrowerStore interface defined in
// internal/http/stores.go.
//
// # Interface Implementation
//
//	var _ http.BorrowerStore = (*Repository)(nil)
package borrowers

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/library-ms/internal/apperrors"
	"github.com/mrlokans/library-ms/internal/database/dberr"
	"github.com/mrlokans/library-ms/internal/entities"
)

// Repository handles all borrower database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new borrowers repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBorrower inserts a new borrower. Returns a ConflictError when the
// email is already registered.
func (r *Repository) CreateBorrower(ctx context.Context, borrower *entities.Borrower) error {
	var existing entities.Borrower
	err := r.db.WithContext(ctx).Where("email = ?", borrower.Email).First(&existing).Error
	if err == nil {
		return apperrors.Conflict("A borrower with this email already exists.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := r.db.WithContext(ctx).Create(borrower).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperrors.Conflict("A borrower with this email already exists.")
		}
		return err
	}
	return nil
}

// GetBorrowers returns one page of borrowers plus the total count.
func (r *Repository) GetBorrowers(ctx context.Context, page, pageSize int) ([]entities.Borrower, int64, error) {
	var borrowers []entities.Borrower
	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(pageSize).Find(&borrowers).Error
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.Borrower{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return borrowers, total, nil
}

// GetBorrowerByID retrieves a borrower by its ID.
func (r *Repository) GetBorrowerByID(ctx context.Context, id uint) (*entities.Borrower, error) {
	var borrower entities.Borrower
	err := r.db.WithContext(ctx).First(&borrower, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Borrower not found.")
	}
	if err != nil {
		return nil, err
	}
	return &borrower, nil
}

// GetBorrowerByEmail retrieves a borrower by email address.
func (r *Repository) GetBorrowerByEmail(ctx context.Context, email string) (*entities.Borrower, error) {
	var borrower entities.Borrower
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&borrower).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Borrower not found.")
	}
	if err != nil {
		return nil, err
	}
	return &borrower, nil
}

// UpdateBorrower merges the supplied fields over the existing record and
// returns the updated record.
func (r *Repository) UpdateBorrower(ctx context.Context, id uint, update entities.BorrowerUpdate) (*entities.Borrower, error) {
	borrower, err := r.GetBorrowerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.RegisteredDate != nil {
		fields["registered_date"] = *update.RegisteredDate
	}

	err = r.db.WithContext(ctx).Model(borrower).Updates(fields).Error
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("A borrower with this email already exists.")
		}
		return nil, err
	}
	return borrower, nil
}

// DeleteBorrower removes a borrower and returns the deleted record. A
// borrower with an active borrowing cannot be deleted.
func (r *Repository) DeleteBorrower(ctx context.Context, id uint) (*entities.Borrower, error) {
	borrower, err := r.GetBorrowerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var active int64
	err = r.db.WithContext(ctx).Model(&entities.Borrowing{}).
		Where("borrower_id = ? AND returned_date IS NULL", id).Count(&active).Error
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, apperrors.Conflict("Borrower has active borrowings and cannot be deleted.")
	}

	if err := r.db.WithContext(ctx).Delete(&entities.Borrower{}, id).Error; err != nil {
		return nil, err
	}
	return borrower, nil
}
