package reservations

import (
	"database/sql"
	"time"
)

type Status string

// A reservation is created pending and ends in exactly one of the terminal
// states. Expiry is evaluated on read, never written by a background job.
const (
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusFulfilled, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// Reservation is one row of the reservations table.
type Reservation struct {
	ReservationID    string
	UserID           string
	BookID           string
	ReservationDate  time.Time
	ExpiryDate       time.Time
	Status           Status
	NotificationSent bool
	FulfillmentDate  sql.NullTime
	Notes            sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsExpired is the pure expiry predicate; it never mutates stored state.
func (r *Reservation) IsExpired(now time.Time) bool {
	return now.After(r.ExpiryDate)
}

type BookRef struct {
	BookID   string
	Title    string
	Author   string
	Category string
	Status   string
}

type UserRef struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

type View struct {
	Reservation
	Book *BookRef
	User *UserRef
}

type Filter struct {
	Status string
	SortBy string
	Limit  int
	Skip   int
}
