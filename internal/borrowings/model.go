package borrowings

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusReturned Status = "returned"
	StatusLost     Status = "lost"
	StatusDamaged  Status = "damaged"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusReturned, StatusLost, StatusDamaged:
		return true
	}
	return false
}

// Borrowing is one row of the borrowings table.
type Borrowing struct {
	BorrowingID  string
	UserID       string
	BookID       string
	BorrowDate   time.Time
	DueDate      time.Time
	ReturnDate   sql.NullTime
	Status       Status
	Renewals     int
	FineAmount   int64
	FinePaid     bool
	FinePaidDate sql.NullTime
	Notes        sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOverdue reports whether an active borrowing has passed its due date.
func (b *Borrowing) IsOverdue(now time.Time) bool {
	return b.Status == StatusActive && now.After(b.DueDate)
}

// FineFor computes the overdue fine at return time: one rate unit per
// started day late. Zero when returned on time.
func FineFor(dueDate, returnDate time.Time, ratePerDay int64) int64 {
	if !returnDate.After(dueDate) {
		return 0
	}
	late := returnDate.Sub(dueDate)
	daysLate := int64(late / (24 * time.Hour))
	if late%(24*time.Hour) != 0 {
		daysLate++
	}
	return daysLate * ratePerDay
}

// BookRef is the book slice of a composed borrowing view.
type BookRef struct {
	BookID   string
	Title    string
	Author   string
	Category string
	Status   string
}

// UserRef is the user slice of a composed borrowing view.
type UserRef struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

// View is a borrowing joined with its referenced book, and for the
// administrative listing also its user.
type View struct {
	Borrowing
	Book *BookRef
	User *UserRef
}

type Filter struct {
	Status string
	SortBy string
	Limit  int
	Skip   int
}
