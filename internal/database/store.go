package database

import (
	"context"

	"github.com/mrlokans/library-ms/internal/database/books"
	"github.com/mrlokans/library-ms/internal/database/borrowers"
	"github.com/mrlokans/library-ms/internal/database/borrowings"
)

// Aliases give the embedded repositories distinct field names.
type (
	bookRepository      = books.Repository
	borrowerRepository  = borrowers.Repository
	borrowingRepository = borrowings.Repository
)

// Store bundles the per-entity repositories into one storage backend.
type Store struct {
	*bookRepository
	*borrowerRepository
	*borrowingRepository

	db *Database
}

// NewStore creates a Store backed by the given database.
func NewStore(db *Database) *Store {
	return &Store{
		bookRepository:      books.NewRepository(db.DB),
		borrowerRepository:  borrowers.NewRepository(db.DB),
		borrowingRepository: borrowings.NewRepository(db.DB),
		db:                  db,
	}
}

// Ping reports database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
