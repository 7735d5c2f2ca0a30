package books

import (
	"database/sql"
	"time"
)

type Category string

const (
	CategoryFiction    Category = "Fiction"
	CategoryNonFiction Category = "Non-Fiction"
	CategoryScience    Category = "Science"
	CategoryTechnology Category = "Technology"
	CategoryHistory    Category = "History"
	CategoryArt        Category = "Art"
	CategoryLiterature Category = "Literature"
	CategoryReference  Category = "Reference"
	CategoryOther      Category = "Other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryFiction, CategoryNonFiction, CategoryScience, CategoryTechnology,
		CategoryHistory, CategoryArt, CategoryLiterature, CategoryReference, CategoryOther:
		return true
	}
	return false
}

type Status string

const (
	StatusAvailable    Status = "Available"
	StatusBorrowed     Status = "Borrowed"
	StatusNotAvailable Status = "Not Available"
	StatusReserved     Status = "Reserved"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusBorrowed, StatusNotAvailable, StatusReserved:
		return true
	}
	return false
}

// Manual states set by staff; the availability recompute never overwrites
// them, only the Available/Borrowed pair tracks the copy counters.
func (s Status) manual() bool {
	return s == StatusNotAvailable || s == StatusReserved
}

// NextStatus derives the status after copies_available changed.
func NextStatus(current Status, available int) Status {
	if current.manual() {
		return current
	}
	if available <= 0 {
		return StatusBorrowed
	}
	return StatusAvailable
}

// Book is one row of the books table.
type Book struct {
	BookID          string
	Title           string
	Author          string
	Description     sql.NullString
	Category        Category
	ISBN            sql.NullString
	CopiesTotal     int
	CopiesAvailable int
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Search filter for the list endpoint.
type Filter struct {
	Category string
	Status   string
	Search   string
	SortBy   string
	Limit    int
	Skip     int
}
