package users

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleFaculty   Role = "faculty"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

// User is one row of the users table. PasswordHash never leaves the package.
type User struct {
	UserID        string
	Name          string
	Email         string
	PasswordHash  string
	Role          Role
	StudentID     sql.NullString
	Department    sql.NullString
	ContactNumber sql.NullString
	Fines         int64
	IsActive      bool
	DateJoined    time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Filter struct {
	Role     string
	IsActive *bool
	SortBy   string
	Limit    int
	Skip     int
}
