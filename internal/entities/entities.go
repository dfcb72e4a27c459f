package entities

import (
	"time"
)

// LoanPeriodDays is the fixed loan duration: the due date of every checkout
// is the checkout date plus this many days.
const LoanPeriodDays = 14

type Book struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Title             string    `gorm:"index;size:512" json:"title"`
	Author            string    `gorm:"index;size:256" json:"author"`
	ISBN              string    `gorm:"uniqueIndex;size:20" json:"isbn"`
	AvailableQuantity int       `gorm:"not null;default:0" json:"availableQuantity"`
	ShelfLocation     string    `gorm:"size:100" json:"shelfLocation"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type Borrower struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:256" json:"name"`
	Email          string    `gorm:"uniqueIndex;size:255" json:"email"`
	RegisteredDate time.Time `json:"registeredDate"`
}

// Borrowing is a single checkout of a book by a borrower. A nil ReturnedDate
// means the borrowing is still active; setting it is the only state transition
// and it is final.
type Borrowing struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	BookID       uint       `gorm:"index" json:"bookId"`
	BorrowerID   uint       `gorm:"index" json:"borrowerId"`
	CheckoutDate time.Time  `json:"checkoutDate"`
	DueDate      time.Time  `gorm:"index" json:"dueDate"`
	ReturnedDate *time.Time `json:"returnedDate"`
	Book         Book       `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Borrower     Borrower   `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
}

// Active reports whether the book is still checked out.
func (b Borrowing) Active() bool {
	return b.ReturnedDate == nil
}

// Overdue reports whether the borrowing is active and past its due date.
func (b Borrowing) Overdue(now time.Time) bool {
	return b.Active() && b.DueDate.Before(now)
}

// BookUpdate carries the fields of a partial book update. Nil fields are
// left unchanged.
type BookUpdate struct {
	Title             *string
	Author            *string
	ISBN              *string
	AvailableQuantity *int
	ShelfLocation     *string
}

// Empty reports whether no field was supplied.
func (u BookUpdate) Empty() bool {
	return u.Title == nil && u.Author == nil && u.ISBN == nil &&
		u.AvailableQuantity == nil && u.ShelfLocation == nil
}

// BorrowerUpdate carries the fields of a partial borrower update. Nil fields
// are left unchanged.
type BorrowerUpdate struct {
	Name           *string
	Email          *string
	RegisteredDate *time.Time
}

// Empty reports whether no field was supplied.
func (u BorrowerUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.RegisteredDate == nil
}
