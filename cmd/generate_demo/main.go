// Command generate_demo creates a demo database with a sample library catalog,
// registered borrowers and a mix of active, returned and overdue loans.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/mrlokans/library-ms/internal/database"
	"github.com/mrlokans/library-ms/internal/entities"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	store := database.NewStore(db)
	ctx := context.Background()

	books := seedBooks(ctx, store)
	borrowers := seedBorrowers(ctx, store)
	seedLoans(ctx, store, books, borrowers)

	log.Println("Demo database generated successfully!")
}

func seedBooks(ctx context.Context, store *database.Store) map[string]entities.Book {
	catalog := []entities.Book{
		{Title: "The Go Programming Language", Author: "Alan A. A. Donovan", ISBN: "978-0134190440", AvailableQuantity: 3, ShelfLocation: "A1"},
		{Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", ISBN: "978-1449373320", AvailableQuantity: 2, ShelfLocation: "A2"},
		{Title: "The Pragmatic Programmer", Author: "Andrew Hunt", ISBN: "978-0135957059", AvailableQuantity: 4, ShelfLocation: "B1"},
		{Title: "Clean Architecture", Author: "Robert C. Martin", ISBN: "978-0134494166", AvailableQuantity: 1, ShelfLocation: "B2"},
		{Title: "Database Internals", Author: "Alex Petrov", ISBN: "978-1492040347", AvailableQuantity: 2, ShelfLocation: "C3"},
		{Title: "Site Reliability Engineering", Author: "Betsy Beyer", ISBN: "978-1491929124", AvailableQuantity: 5, ShelfLocation: "C4"},
	}

	books := make(map[string]entities.Book)
	for i := range catalog {
		book := catalog[i]
		if err := store.CreateBook(ctx, &book); err != nil {
			log.Printf("Failed to save book %s: %v", book.Title, err)
			continue
		}
		log.Printf("Saved: %s by %s (%d copies)", book.Title, book.Author, book.AvailableQuantity)
		books[book.ISBN] = book
	}
	return books
}

func seedBorrowers(ctx context.Context, store *database.Store) map[string]entities.Borrower {
	now := time.Now()

	registry := []entities.Borrower{
		{Name: "Alice Morgan", Email: "alice.morgan@example.com", RegisteredDate: now.AddDate(0, -6, 0)},
		{Name: "Bruno Keller", Email: "bruno.keller@example.com", RegisteredDate: now.AddDate(0, -3, -12)},
		{Name: "Chioma Eze", Email: "chioma.eze@example.com", RegisteredDate: now.AddDate(0, -2, 0)},
		{Name: "Daniel Novak", Email: "daniel.novak@example.com", RegisteredDate: now.AddDate(0, 0, -20)},
	}

	borrowers := make(map[string]entities.Borrower)
	for i := range registry {
		borrower := registry[i]
		if err := store.CreateBorrower(ctx, &borrower); err != nil {
			log.Printf("Failed to register borrower %s: %v", borrower.Name, err)
			continue
		}
		log.Printf("Registered: %s <%s>", borrower.Name, borrower.Email)
		borrowers[borrower.Email] = borrower
	}
	return borrowers
}

// seedLoans creates a spread of loan states: a returned loan, a couple of
// active loans still inside the loan period, and one well past its due date.
func seedLoans(ctx context.Context, store *database.Store, books map[string]entities.Book, borrowers map[string]entities.Borrower) {
	now := time.Now()

	type loan struct {
		isbn       string
		email      string
		checkedOut time.Time
		returned   *time.Time
	}

	returnedAt := now.AddDate(0, 0, -25)
	loans := []loan{
		{isbn: "978-0134190440", email: "alice.morgan@example.com", checkedOut: now.AddDate(0, 0, -40), returned: &returnedAt},
		{isbn: "978-1449373320", email: "alice.morgan@example.com", checkedOut: now.AddDate(0, 0, -5)},
		{isbn: "978-0135957059", email: "bruno.keller@example.com", checkedOut: now.AddDate(0, 0, -2)},
		{isbn: "978-0134494166", email: "chioma.eze@example.com", checkedOut: now.AddDate(0, -1, 0)},
	}

	for _, l := range loans {
		book, ok := books[l.isbn]
		if !ok {
			continue
		}
		borrower, ok := borrowers[l.email]
		if !ok {
			continue
		}

		if _, _, err := store.CheckoutBook(ctx, book.ID, borrower.ID, l.checkedOut); err != nil {
			log.Printf("Failed to check out %s for %s: %v", book.Title, borrower.Name, err)
			continue
		}
		log.Printf("Checked out: %s -> %s (%s)", book.Title, borrower.Name, l.checkedOut.Format("2006-01-02"))

		if l.returned != nil {
			if _, _, err := store.ReturnBook(ctx, book.ID, borrower.ID, *l.returned); err != nil {
				log.Printf("Failed to return %s for %s: %v", book.Title, borrower.Name, err)
				continue
			}
			log.Printf("Returned: %s by %s (%s)", book.Title, borrower.Name, l.returned.Format("2006-01-02"))
		}
	}
}
