package borrowers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library-ms/internal/apperrors"
	"github.com/mrlokans/library-ms/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	t.Helper()
	dbPath := "./test_borrowers_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Book{}, &entities.Borrower{}, &entities.Borrowing{}))

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return repo, db, cleanup
}

func TestRepository_CreateBorrower(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	borrower := &entities.Borrower{
		Name:           "Grace Hopper",
		Email:          "grace@example.com",
		RegisteredDate: time.Now(),
	}
	err := repo.CreateBorrower(context.Background(), borrower)

	require.NoError(t, err)
	assert.NotZero(t, borrower.ID)
}

func TestRepository_CreateBorrower_DuplicateEmail(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	first := &entities.Borrower{Name: "Grace", Email: "grace@example.com"}
	require.NoError(t, repo.CreateBorrower(context.Background(), first))

	second := &entities.Borrower{Name: "Another Grace", Email: "grace@example.com"}
	err := repo.CreateBorrower(context.Background(), second)

	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestRepository_GetBorrowers_Pagination(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	for i := 0; i < 7; i++ {
		borrower := &entities.Borrower{
			Name:  fmt.Sprintf("Reader %d", i),
			Email: fmt.Sprintf("reader%d@example.com", i),
		}
		require.NoError(t, repo.CreateBorrower(context.Background(), borrower))
	}

	borrowers, total, err := repo.GetBorrowers(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Len(t, borrowers, 2)
	assert.Equal(t, int64(7), total)
}

func TestRepository_GetBorrowerByEmail(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	borrower := &entities.Borrower{Name: "Alan", Email: "alan@example.com"}
	require.NoError(t, repo.CreateBorrower(context.Background(), borrower))

	found, err := repo.GetBorrowerByEmail(context.Background(), "alan@example.com")
	require.NoError(t, err)
	assert.Equal(t, borrower.ID, found.ID)

	_, err = repo.GetBorrowerByEmail(context.Background(), "nobody@example.com")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRepository_UpdateBorrower_MergesFields(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	borrower := &entities.Borrower{Name: "Old Name", Email: "old@example.com"}
	require.NoError(t, repo.CreateBorrower(context.Background(), borrower))

	name := "New Name"
	updated, err := repo.UpdateBorrower(context.Background(), borrower.ID, entities.BorrowerUpdate{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "old@example.com", updated.Email)
}

func TestRepository_UpdateBorrower_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	name := "nobody"
	_, err := repo.UpdateBorrower(context.Background(), 77, entities.BorrowerUpdate{Name: &name})

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRepository_DeleteBorrower(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	borrower := &entities.Borrower{Name: "Temp", Email: "temp@example.com"}
	require.NoError(t, repo.CreateBorrower(context.Background(), borrower))

	deleted, err := repo.DeleteBorrower(context.Background(), borrower.ID)
	require.NoError(t, err)
	assert.Equal(t, borrower.Email, deleted.Email)

	_, err = repo.GetBorrowerByID(context.Background(), borrower.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRepository_DeleteBorrower_WithActiveBorrowing(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	borrower := &entities.Borrower{Name: "Busy", Email: "busy@example.com"}
	require.NoError(t, repo.CreateBorrower(context.Background(), borrower))

	book := &entities.Book{Title: "Borrowed", ISBN: "x-1", AvailableQuantity: 0}
	require.NoError(t, db.Create(book).Error)
	borrowing := &entities.Borrowing{BookID: book.ID, BorrowerID: borrower.ID}
	require.NoError(t, db.Create(borrowing).Error)

	_, err := repo.DeleteBorrower(context.Background(), borrower.ID)

	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}
