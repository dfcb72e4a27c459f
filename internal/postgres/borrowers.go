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

var borrowerColumns = []any{"id", "name", "email", "registered_date"}

func scanBorrower(row rowScanner) (*entities.Borrower, error) {
	var borrower entities.Borrower
	var id int64
	err := row.Scan(&id, &borrower.Name, &borrower.Email, &borrower.RegisteredDate)
	if err != nil {
		return nil, err
	}
	borrower.ID = uint(id)
	return &borrower, nil
}

// CreateBorrower inserts a new borrower. Returns a ConflictError when the
// email is already registered.
func (s *Store) CreateBorrower(ctx context.Context, borrower *entities.Borrower) error {
	if borrower.RegisteredDate.IsZero() {
		borrower.RegisteredDate = time.Now()
	}

	query, _, err := builder().Insert("borrowers").
		Rows(goqu.Record{
			"name":            borrower.Name,
			"email":           borrower.Email,
			"registered_date": borrower.RegisteredDate,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return err
	}

	var id int64
	err = s.pool.QueryRow(ctx, query).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("A borrower with this email already exists.")
		}
		return err
	}
	borrower.ID = uint(id)
	return nil
}

// GetBorrowers returns one page of borrowers plus the total count.
func (s *Store) GetBorrowers(ctx context.Context, page, pageSize int) ([]entities.Borrower, int64, error) {
	query, _, err := builder().From("borrowers").Select(borrowerColumns...).
		Order(goqu.I("id").Asc()).
		Limit(uint(pageSize)).Offset(uint((page - 1) * pageSize)).
		ToSQL()
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var borrowers []entities.Borrower
	for rows.Next() {
		borrower, err := scanBorrower(rows)
		if err != nil {
			return nil, 0, err
		}
		borrowers = append(borrowers, *borrower)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery, _, err := builder().From("borrowers").Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := s.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}
	return borrowers, total, nil
}

// GetBorrowerByID retrieves a borrower by its ID.
func (s *Store) GetBorrowerByID(ctx context.Context, id uint) (*entities.Borrower, error) {
	return s.getBorrower(ctx, goqu.C("id").Eq(id))
}

// GetBorrowerByEmail retrieves a borrower by email address.
func (s *Store) GetBorrowerByEmail(ctx context.Context, email string) (*entities.Borrower, error) {
	return s.getBorrower(ctx, goqu.C("email").Eq(email))
}

func (s *Store) getBorrower(ctx context.Context, condition goqu.Expression) (*entities.Borrower, error) {
	query, _, err := builder().From("borrowers").Select(borrowerColumns...).
		Where(condition).
		ToSQL()
	if err != nil {
		return nil, err
	}

	borrower, err := scanBorrower(s.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("Borrower not found.")
	}
	if err != nil {
		return nil, err
	}
	return borrower, nil
}

// UpdateBorrower merges the supplied fields over the existing record and
// returns the updated record.
func (s *Store) UpdateBorrower(ctx context.Context, id uint, update entities.BorrowerUpdate) (*entities.Borrower, error) {
	record := goqu.Record{}
	if update.Name != nil {
		record["name"] = *update.Name
	}
	if update.Email != nil {
		record["email"] = *update.Email
	}
	if update.RegisteredDate != nil {
		record["registered_date"] = *update.RegisteredDate
	}

	query, _, err := builder().Update("borrowers").Set(record).
		Where(goqu.C("id").Eq(id)).
		Returning(borrowerColumns...).
		ToSQL()
	if err != nil {
		return nil, err
	}

	borrower, err := scanBorrower(s.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("Borrower not found.")
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("A borrower with this email already exists.")
		}
		return nil, err
	}
	return borrower, nil
}

// DeleteBorrower removes a borrower and returns the deleted record. A
// borrower with an active borrowing cannot be deleted.
func (s *Store) DeleteBorrower(ctx context.Context, id uint) (*entities.Borrower, error) {
	countQuery, _, err := builder().From("borrowings").Select(goqu.COUNT("*")).
		Where(goqu.C("borrower_id").Eq(id), goqu.C("returned_date").IsNull()).
		ToSQL()
	if err != nil {
		return nil, err
	}
	var active int64
	if err := s.pool.QueryRow(ctx, countQuery).Scan(&active); err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, apperrors.Conflict("Borrower has active borrowings and cannot be deleted.")
	}

	query, _, err := builder().Delete("borrowers").
		Where(goqu.C("id").Eq(id)).
		Returning(borrowerColumns...).
		ToSQL()
	if err != nil {
		return nil, err
	}

	borrower, err := scanBorrower(s.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("Borrower not found.")
	}
	if err != nil {
		return nil, err
	}
	return borrower, nil
}
