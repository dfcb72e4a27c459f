package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/mrlokans/library-ms/internal/apperrors"
	"github.com/mrlokans/library-ms/internal/entities"
)

var bookColumns = []any{"id", "title", "author", "isbn", "available_quantity", "shelf_location", "created_at", "updated_at"}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*entities.Book, error) {
	var book entities.Book
	var id int64
	err := row.Scan(&id, &book.Title, &book.Author, &book.ISBN,
		&book.AvailableQuantity, &book.ShelfLocation, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return nil, err
	}
	book.ID = uint(id)
	return &book, nil
}

func (s *Store) queryBooks(ctx context.Context, query string) ([]entities.Book, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []entities.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}
	return books, rows.Err()
}

// CreateBook inserts a new book. Returns a ConflictError when the ISBN is
// already registered.
func (s *Store) CreateBook(ctx context.Context, book *entities.Book) error {
	now := time.Now()
	query, _, err := builder().Insert("books").
		Rows(goqu.Record{
			"title":              book.Title,
			"author":             book.Author,
			"isbn":               book.ISBN,
			"available_quantity": book.AvailableQuantity,
			"shelf_location":     book.ShelfLocation,
			"created_at":         now,
			"updated_at":         now,
		}).
		Returning("id", "created_at", "updated_at").
		ToSQL()
	if err != nil {
		return err
	}

	var id int64
	err = s.pool.QueryRow(ctx, query).Scan(&id, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("A book with this ISBN already exists.")
		}
		return err
	}
	book.ID = uint(id)
	return nil
}

// GetBooks returns one page of books plus the total count.
func (s *Store) GetBooks(ctx context.Context, page, pageSize int) ([]entities.Book, int64, error) {
	query, _, err := builder().From("books").Select(bookColumns...).
		Order(goqu.I("id").Asc()).
		Limit(uint(pageSize)).Offset(uint((page - 1) * pageSize)).
		ToSQL()
	if err != nil {
		return nil, 0, err
	}

	books, err := s.queryBooks(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	countQuery, _, err := builder().From("books").Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := s.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// SearchBooks filters by case-insensitive substring on title, author and isbn.
// Empty filters are skipped; the rest are AND-combined.
func (s *Store) SearchBooks(ctx context.Context, title, author, isbn string, page, pageSize int) ([]entities.Book, int64, error) {
	conditions := make([]goqu.Expression, 0, 3)
	if title != "" {
		conditions = append(conditions, goqu.C("title").ILike("%"+title+"%"))
	}
	if author != "" {
		conditions = append(conditions, goqu.C("author").ILike("%"+author+"%"))
	}
	if isbn != "" {
		conditions = append(conditions, goqu.C("isbn").ILike("%"+isbn+"%"))
	}

	query, _, err := builder().From("books").Select(bookColumns...).
		Where(conditions...).
		Order(goqu.I("id").Asc()).
		Limit(uint(pageSize)).Offset(uint((page - 1) * pageSize)).
		ToSQL()
	if err != nil {
		return nil, 0, err
	}

	books, err := s.queryBooks(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	countQuery, _, err := builder().From("books").Select(goqu.COUNT("*")).Where(conditions...).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := s.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// GetBookByID retrieves a book by its ID.
func (s *Store) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	query, _, err := builder().From("books").Select(bookColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, err
	}

	book, err := scanBook(s.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("Book not found.")
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBook applies only the supplied fields and returns the updated record.
func (s *Store) UpdateBook(ctx context.Context, id uint, update entities.BookUpdate) (*entities.Book, error) {
	record := goqu.Record{"updated_at": time.Now()}
	if update.Title != nil {
		record["title"] = *update.Title
	}
	if update.Author != nil {
		record["author"] = *update.Author
	}
	if update.ISBN != nil {
		record["isbn"] = *update.ISBN
	}
	if update.AvailableQuantity != nil {
		record["available_quantity"] = *update.AvailableQuantity
	}
	if update.ShelfLocation != nil {
		record["shelf_location"] = *update.ShelfLocation
	}

	query, _, err := builder().Update("books").Set(record).
		Where(goqu.C("id").Eq(id)).
		Returning(bookColumns...).
		ToSQL()
	if err != nil {
		return nil, err
	}

	book, err := scanBook(s.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("Book not found.")
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("A book with this ISBN already exists.")
		}
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a book and returns the deleted record. A book that is
// referenced by borrowing history cannot be deleted.
func (s *Store) DeleteBook(ctx context.Context, id uint) (*entities.Book, error) {
	countQuery, _, err := builder().From("borrowings").Select(goqu.COUNT("*")).
		Where(goqu.C("book_id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, err
	}
	var references int64
	if err := s.pool.QueryRow(ctx, countQuery).Scan(&references); err != nil {
		return nil, err
	}
	if references > 0 {
		return nil, apperrors.Conflict("Book has borrowing records and cannot be deleted.")
	}

	query, _, err := builder().Delete("books").
		Where(goqu.C("id").Eq(id)).
		Returning(bookColumns...).
		ToSQL()
	if err != nil {
		return nil, err
	}

	book, err := scanBook(s.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("Book not found.")
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}
