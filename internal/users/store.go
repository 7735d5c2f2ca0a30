package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const userColumns = `user_id, name, email, password_hash, role, student_id,
department, contact_number, fines, is_active, date_joined, created_at, updated_at`

type UserStore interface {
	Insert(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f Filter) ([]User, error)
	Update(ctx context.Context, u *User) error
	// DecrementFines subtracts amount if the balance covers it; returns the
	// number of rows changed (0 means the balance was too low).
	DecrementFines(ctx context.Context, id string, amount int64) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) UserStore { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, u *User) error {
	const q = `
INSERT INTO users (user_id, name, email, password_hash, role, student_id,
department, contact_number, fines, is_active, date_joined, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(6), NOW(6), NOW(6))
`
	_, err := s.db.ExecContext(ctx, q,
		u.UserID, u.Name, u.Email, u.PasswordHash, u.Role,
		u.StudentID, u.Department, u.ContactNumber, u.Fines, u.IsActive,
	)
	return err
}

func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users WHERE user_id = ? LIMIT 1`, userColumns)
	return s.scanOne(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users WHERE email = ? LIMIT 1`, userColumns)
	return s.scanOne(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) scanOne(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.StudentID, &u.Department, &u.ContactNumber, &u.Fines, &u.IsActive,
		&u.DateJoined, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

var sortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"fines":      "fines",
	"dateJoined": "date_joined",
	"createdAt":  "created_at",
}

func (s *Store) List(ctx context.Context, f Filter) ([]User, error) {
	var (
		where []string
		args  []any
	)
	if f.Role != "" {
		where = append(where, "role = ?")
		args = append(args, f.Role)
	}
	if f.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, *f.IsActive)
	}

	q := fmt.Sprintf(`SELECT %s FROM users`, userColumns)
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + orderClause(f.SortBy, "created_at DESC")
	q += " LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Skip)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
			&u.StudentID, &u.Department, &u.ContactNumber, &u.Fines, &u.IsActive,
			&u.DateJoined, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, u *User) error {
	const q = `
UPDATE users
SET name = ?, email = ?, password_hash = ?, role = ?, student_id = ?,
    department = ?, contact_number = ?, fines = ?, is_active = ?, updated_at = NOW(6)
WHERE user_id = ?
`
	res, err := s.db.ExecContext(ctx, q,
		u.Name, u.Email, u.PasswordHash, u.Role, u.StudentID,
		u.Department, u.ContactNumber, u.Fines, u.IsActive, u.UserID,
	)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DecrementFines(ctx context.Context, id string, amount int64) (int64, error) {
	const q = `UPDATE users SET fines = fines - ?, updated_at = NOW(6) WHERE user_id = ? AND fines >= ?`
	res, err := s.db.ExecContext(ctx, q, amount, id, amount)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func orderClause(sortBy, def string) string {
	if sortBy == "" {
		return def
	}
	parts := strings.SplitN(sortBy, ":", 2)
	col, ok := sortColumns[parts[0]]
	if !ok {
		return def
	}
	dir := "ASC"
	if len(parts) == 2 && strings.EqualFold(parts[1], "desc") {
		dir = "DESC"
	}
	return col + " " + dir
}
