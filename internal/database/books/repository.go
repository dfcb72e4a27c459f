// Package books provides database operations for the book inventory.
//
// This package implements the BookStore interface defined in
// internal/http/stores.go.
//
// # Interface Implementation
//
//	var _ http.BookStore = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(ctx, 123)
package books

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/library-ms/internal/apperrors"
	"github.com/mrlokans/library-ms/internal/database/dberr"
	"github.com/mrlokans/library-ms/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook inserts a new book. Returns a ConflictError when the ISBN is
// already registered.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	var existing entities.Book
	err := r.db.WithContext(ctx).Where("isbn = ?", book.ISBN).First(&existing).Error
	if err == nil {
		return apperrors.Conflict("A book with this ISBN already exists.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperrors.Conflict("A book with this ISBN already exists.")
		}
		return err
	}
	return nil
}

// GetBooks returns one page of books plus the total count.
func (r *Repository) GetBooks(ctx context.Context, page, pageSize int) ([]entities.Book, int64, error) {
	var books []entities.Book
	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(pageSize).Find(&books).Error
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// SearchBooks filters by case-insensitive substring on title, author and isbn.
// Empty filters are skipped; the rest are AND-combined.
func (r *Repository) SearchBooks(ctx context.Context, title, author, isbn string, page, pageSize int) ([]entities.Book, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Book{})
	if title != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+title+"%")
	}
	if author != "" {
		query = query.Where("LOWER(author) LIKE LOWER(?)", "%"+author+"%")
	}
	if isbn != "" {
		query = query.Where("LOWER(isbn) LIKE LOWER(?)", "%"+isbn+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []entities.Book
	offset := (page - 1) * pageSize
	err := query.Order("id ASC").Offset(offset).Limit(pageSize).Find(&books).Error
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Book not found.")
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook applies only the supplied fields and returns the updated record.
func (r *Repository) UpdateBook(ctx context.Context, id uint, update entities.BookUpdate) (*entities.Book, error) {
	book, err := r.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Author != nil {
		fields["author"] = *update.Author
	}
	if update.ISBN != nil {
		fields["isbn"] = *update.ISBN
	}
	if update.AvailableQuantity != nil {
		fields["available_quantity"] = *update.AvailableQuantity
	}
	if update.ShelfLocation != nil {
		fields["shelf_location"] = *update.ShelfLocation
	}

	err = r.db.WithContext(ctx).Model(book).Updates(fields).Error
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("A book with this ISBN already exists.")
		}
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a book and returns the deleted record. A book that is
// referenced by borrowing history cannot be deleted.
func (r *Repository) DeleteBook(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := r.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var references int64
	err = r.db.WithContext(ctx).Model(&entities.Borrowing{}).Where("book_id = ?", id).Count(&references).Error
	if err != nil {
		return nil, err
	}
	if references > 0 {
		return nil, apperrors.Conflict("Book has borrowing records and cannot be deleted.")
	}

	if err := r.db.WithContext(ctx).Delete(&entities.Book{}, id).Error; err != nil {
		return nil, err
	}
	return book, nil
}
