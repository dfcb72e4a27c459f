package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"

	"github.com/mrlokans/library-ms/internal/apperrors"
	"github.com/mrlokans/library-ms/internal/entities"
)

var borrowingDetailColumns = []any{
	"bw.id", "bw.book_id", "bw.borrower_id", "bw.checkout_date", "bw.due_date", "bw.returned_date",
	"b.id", "b.title", "b.author", "b.isbn", "b.available_quantity", "b.shelf_location", "b.created_at", "b.updated_at",
	"br.id", "br.name", "br.email", "br.registered_date",
}

func borrowingDetailQuery() *goqu.SelectDataset {
	return builder().From(goqu.T("borrowings").As("bw")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("bw.book_id").Eq(goqu.I("b.id")))).
		Join(goqu.T("borrowers").As("br"), goqu.On(goqu.I("bw.borrower_id").Eq(goqu.I("br.id")))).
		Select(borrowingDetailColumns...)
}

func scanBorrowingDetail(row rowScanner) (*entities.Borrowing, error) {
	var borrowing entities.Borrowing
	var borrowingID, bookRef, borrowerRef, bookID, borrowerID int64
	err := row.Scan(
		&borrowingID, &bookRef, &borrowerRef, &borrowing.CheckoutDate, &borrowing.DueDate, &borrowing.ReturnedDate,
		&bookID, &borrowing.Book.Title, &borrowing.Book.Author, &borrowing.Book.ISBN,
		&borrowing.Book.AvailableQuantity, &borrowing.Book.ShelfLocation,
		&borrowing.Book.CreatedAt, &borrowing.Book.UpdatedAt,
		&borrowerID, &borrowing.Borrower.Name, &borrowing.Borrower.Email, &borrowing.Borrower.RegisteredDate,
	)
	if err != nil {
		return nil, err
	}
	borrowing.ID = uint(borrowingID)
	borrowing.BookID = uint(bookRef)
	borrowing.BorrowerID = uint(borrowerRef)
	borrowing.Book.ID = uint(bookID)
	borrowing.Borrower.ID = uint(borrowerID)
	return &borrowing, nil
}

func (s *Store) queryBorrowingDetails(ctx context.Context, query string) ([]entities.Borrowing, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var borrowings []entities.Borrowing
	for rows.Next() {
		borrowing, err := scanBorrowingDetail(rows)
		if err != nil {
			return nil, err
		}
		borrowings = append(borrowings, *borrowing)
	}
	return borrowings, rows.Err()
}

func (s *Store) countBorrowings(ctx context.Context, conditions ...goqu.Expression) (int64, error) {
	query, _, err := builder().From("borrowings").Select(goqu.COUNT("*")).Where(conditions...).ToSQL()
	if err != nil {
		return 0, err
	}
	var total int64
	err = s.pool.QueryRow(ctx, query).Scan(&total)
	return total, err
}

func rowExists(ctx context.Context, tx pgx.Tx, table string, id uint) (bool, error) {
	query, _, err := builder().From(table).Select(goqu.C("id")).Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return false, err
	}
	var found int64
	err = tx.QueryRow(ctx, query).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CheckoutBook records a checkout and decrements the book's available
// quantity inside one transaction. The conditional UPDATE guards against two
// checkouts racing for the last copy; the partial unique index backstops the
// duplicate-active check.
func (s *Store) CheckoutBook(ctx context.Context, bookID, borrowerID uint, checkoutDate time.Time) (*entities.Borrowing, int, error) {
	dueDate := checkoutDate.AddDate(0, 0, entities.LoanPeriodDays)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if found, err := rowExists(ctx, tx, "borrowers", borrowerID); err != nil {
		return nil, 0, err
	} else if !found {
		return nil, 0, apperrors.NotFound("Borrower not found.")
	}
	if found, err := rowExists(ctx, tx, "books", bookID); err != nil {
		return nil, 0, err
	} else if !found {
		return nil, 0, apperrors.NotFound("Book not found.")
	}

	activeQuery, _, err := builder().From("borrowings").Select(goqu.COUNT("*")).
		Where(
			goqu.C("book_id").Eq(bookID),
			goqu.C("borrower_id").Eq(borrowerID),
			goqu.C("returned_date").IsNull(),
		).
		ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var active int64
	if err := tx.QueryRow(ctx, activeQuery).Scan(&active); err != nil {
		return nil, 0, err
	}
	if active > 0 {
		return nil, 0, apperrors.Validation("The borrower already borrowed this book.")
	}

	decrementQuery, _, err := builder().Update("books").
		Set(goqu.Record{"available_quantity": goqu.L("available_quantity - 1")}).
		Where(goqu.C("id").Eq(bookID), goqu.C("available_quantity").Gt(0)).
		Returning("available_quantity").
		ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var updatedQuantity int
	err = tx.QueryRow(ctx, decrementQuery).Scan(&updatedQuantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, apperrors.Validation("Book is not available for checkout.")
	}
	if err != nil {
		return nil, 0, err
	}

	insertQuery, _, err := builder().Insert("borrowings").
		Rows(goqu.Record{
			"book_id":       bookID,
			"borrower_id":   borrowerID,
			"checkout_date": checkoutDate,
			"due_date":      dueDate,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var borrowingID int64
	if err := tx.QueryRow(ctx, insertQuery).Scan(&borrowingID); err != nil {
		if isUniqueViolation(err) {
			return nil, 0, apperrors.Validation("The borrower already borrowed this book.")
		}
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to commit checkout: %w", err)
	}

	borrowing := &entities.Borrowing{
		ID:           uint(borrowingID),
		BookID:       bookID,
		BorrowerID:   borrowerID,
		CheckoutDate: checkoutDate,
		DueDate:      dueDate,
	}
	return borrowing, updatedQuantity, nil
}

// ReturnBook marks the active borrowing for the pair as returned and
// increments the book's available quantity inside one transaction.
func (s *Store) ReturnBook(ctx context.Context, bookID, borrowerID uint, returnedDate time.Time) (*entities.Borrowing, int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if found, err := rowExists(ctx, tx, "borrowers", borrowerID); err != nil {
		return nil, 0, err
	} else if !found {
		return nil, 0, apperrors.NotFound("Borrower not found.")
	}
	if found, err := rowExists(ctx, tx, "books", bookID); err != nil {
		return nil, 0, err
	} else if !found {
		return nil, 0, apperrors.NotFound("Book not found.")
	}

	updateQuery, _, err := builder().Update("borrowings").
		Set(goqu.Record{"returned_date": returnedDate}).
		Where(
			goqu.C("book_id").Eq(bookID),
			goqu.C("borrower_id").Eq(borrowerID),
			goqu.C("returned_date").IsNull(),
		).
		Returning("id", "checkout_date", "due_date").
		ToSQL()
	if err != nil {
		return nil, 0, err
	}

	borrowing := entities.Borrowing{
		BookID:       bookID,
		BorrowerID:   borrowerID,
		ReturnedDate: &returnedDate,
	}
	var borrowingID int64
	err = tx.QueryRow(ctx, updateQuery).Scan(&borrowingID, &borrowing.CheckoutDate, &borrowing.DueDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, apperrors.NotFound("No active borrowing for this book and borrower, cannot return book.")
	}
	if err != nil {
		return nil, 0, err
	}
	borrowing.ID = uint(borrowingID)

	incrementQuery, _, err := builder().Update("books").
		Set(goqu.Record{"available_quantity": goqu.L("available_quantity + 1")}).
		Where(goqu.C("id").Eq(bookID)).
		Returning("available_quantity").
		ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var updatedQuantity int
	if err := tx.QueryRow(ctx, incrementQuery).Scan(&updatedQuantity); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to commit return: %w", err)
	}
	return &borrowing, updatedQuantity, nil
}

// GetActiveBorrowings lists active borrowings with book and borrower detail.
func (s *Store) GetActiveBorrowings(ctx context.Context, page, pageSize int) ([]entities.Borrowing, int64, error) {
	query, _, err := borrowingDetailQuery().
		Where(goqu.I("bw.returned_date").IsNull()).
		Order(goqu.I("bw.id").Asc()).
		Limit(uint(pageSize)).Offset(uint((page - 1) * pageSize)).
		ToSQL()
	if err != nil {
		return nil, 0, err
	}

	borrowings, err := s.queryBorrowingDetails(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.countBorrowings(ctx, goqu.C("returned_date").IsNull())
	if err != nil {
		return nil, 0, err
	}
	return borrowings, total, nil
}

// GetBorrowerBorrowings lists active borrowings of one borrower with book detail.
func (s *Store) GetBorrowerBorrowings(ctx context.Context, borrowerID uint, page, pageSize int) ([]entities.Borrowing, int64, error) {
	query, _, err := borrowingDetailQuery().
		Where(goqu.I("bw.borrower_id").Eq(borrowerID), goqu.I("bw.returned_date").IsNull()).
		Order(goqu.I("bw.id").Asc()).
		Limit(uint(pageSize)).Offset(uint((page - 1) * pageSize)).
		ToSQL()
	if err != nil {
		return nil, 0, err
	}

	borrowings, err := s.queryBorrowingDetails(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.countBorrowings(ctx,
		goqu.C("borrower_id").Eq(borrowerID), goqu.C("returned_date").IsNull())
	if err != nil {
		return nil, 0, err
	}
	return borrowings, total, nil
}

// GetOverdueBorrowings lists active borrowings whose due date has passed.
func (s *Store) GetOverdueBorrowings(ctx context.Context, asOf time.Time, page, pageSize int) ([]entities.Borrowing, int64, error) {
	query, _, err := borrowingDetailQuery().
		Where(goqu.I("bw.due_date").Lt(asOf), goqu.I("bw.returned_date").IsNull()).
		Order(goqu.I("bw.id").Asc()).
		Limit(uint(pageSize)).Offset(uint((page - 1) * pageSize)).
		ToSQL()
	if err != nil {
		return nil, 0, err
	}

	borrowings, err := s.queryBorrowingDetails(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.countBorrowings(ctx,
		goqu.C("due_date").Lt(asOf), goqu.C("returned_date").IsNull())
	if err != nil {
		return nil, 0, err
	}
	return borrowings, total, nil
}

// GetBorrowingsBetween returns all borrowings checked out within the
// inclusive date range, with book and borrower detail, for report exports.
func (s *Store) GetBorrowingsBetween(ctx context.Context, start, end time.Time) ([]entities.Borrowing, error) {
	query, _, err := borrowingDetailQuery().
		Where(goqu.I("bw.checkout_date").Gte(start), goqu.I("bw.checkout_date").Lte(end)).
		Order(goqu.I("bw.checkout_date").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}
	return s.queryBorrowingDetails(ctx, query)
}

// GetUnreturnedBetween returns borrowings checked out within the range that
// were due by its end and are still unreturned.
func (s *Store) GetUnreturnedBetween(ctx context.Context, start, end time.Time) ([]entities.Borrowing, error) {
	query, _, err := borrowingDetailQuery().
		Where(
			goqu.I("bw.checkout_date").Gte(start),
			goqu.I("bw.checkout_date").Lte(end),
			goqu.I("bw.due_date").Lte(end),
			goqu.I("bw.returned_date").IsNull(),
		).
		Order(goqu.I("bw.checkout_date").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}
	return s.queryBorrowingDetails(ctx, query)
}
