package reservations

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type UserBalance struct {
	UserID string
	Fines  int64
}

type ReservationStore interface {
	GetUserBalance(ctx context.Context, userID string) (*UserBalance, error)
	BookExists(ctx context.Context, bookID string) (bool, error)
	HasPending(ctx context.Context, userID, bookID string) (bool, error)
	Insert(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id string) (*View, error)
	ListByUser(ctx context.Context, userID, status string) ([]View, error)
	List(ctx context.Context, f Filter) ([]View, error)
	// Transition flips status from one value to another; returns the number
	// of rows changed (0 when the record was not in the expected state).
	Transition(ctx context.Context, id string, from, to Status, fulfillmentDate *time.Time) (int64, error)
	Update(ctx context.Context, r *Reservation) error
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) ReservationStore { return &Store{db: db} }

func (s *Store) GetUserBalance(ctx context.Context, userID string) (*UserBalance, error) {
	const q = `SELECT user_id, fines FROM users WHERE user_id = ? LIMIT 1`
	var b UserBalance
	err := s.db.QueryRowContext(ctx, q, userID).Scan(&b.UserID, &b.Fines)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) BookExists(ctx context.Context, bookID string) (bool, error) {
	const q = `SELECT 1 FROM books WHERE book_id = ? LIMIT 1`
	var one int
	err := s.db.QueryRowContext(ctx, q, bookID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) HasPending(ctx context.Context, userID, bookID string) (bool, error) {
	const q = `SELECT 1 FROM reservations WHERE user_id = ? AND book_id = ? AND status = 'pending' LIMIT 1`
	var one int
	err := s.db.QueryRowContext(ctx, q, userID, bookID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Insert(ctx context.Context, r *Reservation) error {
	const q = `
INSERT INTO reservations (reservation_id, user_id, book_id, reservation_date,
expiry_date, status, notification_sent, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, FALSE, ?, NOW(6), NOW(6))
`
	_, err := s.db.ExecContext(ctx, q,
		r.ReservationID, r.UserID, r.BookID, r.ReservationDate, r.ExpiryDate, r.Status, r.Notes,
	)
	return err
}

const viewColumns = `
r.reservation_id, r.user_id, r.book_id, r.reservation_date, r.expiry_date,
r.status, r.notification_sent, r.fulfillment_date, r.notes, r.created_at, r.updated_at,
bk.book_id, bk.title, bk.author, bk.category, bk.status`

func scanView(scan func(dest ...any) error, withUser bool) (*View, error) {
	var (
		v        View
		bkID     sql.NullString
		bkTitle  sql.NullString
		bkAuthor sql.NullString
		bkCat    sql.NullString
		bkStatus sql.NullString
		uID      sql.NullString
		uName    sql.NullString
		uEmail   sql.NullString
		uRole    sql.NullString
	)
	dest := []any{
		&v.ReservationID, &v.UserID, &v.BookID, &v.ReservationDate, &v.ExpiryDate,
		&v.Status, &v.NotificationSent, &v.FulfillmentDate, &v.Notes, &v.CreatedAt, &v.UpdatedAt,
		&bkID, &bkTitle, &bkAuthor, &bkCat, &bkStatus,
	}
	if withUser {
		dest = append(dest, &uID, &uName, &uEmail, &uRole)
	}
	if err := scan(dest...); err != nil {
		return nil, err
	}
	if bkID.Valid {
		v.Book = &BookRef{
			BookID:   bkID.String,
			Title:    bkTitle.String,
			Author:   bkAuthor.String,
			Category: bkCat.String,
			Status:   bkStatus.String,
		}
	}
	if withUser && uID.Valid {
		v.User = &UserRef{UserID: uID.String, Name: uName.String, Email: uEmail.String, Role: uRole.String}
	}
	return &v, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*View, error) {
	q := `SELECT ` + viewColumns + `
FROM reservations r
LEFT JOIN books bk ON bk.book_id = r.book_id
WHERE r.reservation_id = ?
LIMIT 1`
	row := s.db.QueryRowContext(ctx, q, id)
	v, err := scanView(row.Scan, false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) ListByUser(ctx context.Context, userID, status string) ([]View, error) {
	q := `SELECT ` + viewColumns + `
FROM reservations r
LEFT JOIN books bk ON bk.book_id = r.book_id
WHERE r.user_id = ?`
	args := []any{userID}
	if status != "" {
		q += " AND r.status = ?"
		args = append(args, status)
	}
	q += " ORDER BY r.reservation_date DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []View
	for rows.Next() {
		v, err := scanView(rows.Scan, false)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

var sortColumns = map[string]string{
	"reservationDate": "r.reservation_date",
	"expiryDate":      "r.expiry_date",
	"status":          "r.status",
	"createdAt":       "r.created_at",
}

func (s *Store) List(ctx context.Context, f Filter) ([]View, error) {
	q := `SELECT ` + viewColumns + `,
u.user_id, u.name, u.email, u.role
FROM reservations r
LEFT JOIN books bk ON bk.book_id = r.book_id
LEFT JOIN users u ON u.user_id = r.user_id`

	var args []any
	if f.Status != "" {
		q += " WHERE r.status = ?"
		args = append(args, f.Status)
	}
	q += " ORDER BY " + orderClause(f.SortBy, "r.reservation_date DESC")
	q += " LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Skip)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []View
	for rows.Next() {
		v, err := scanView(rows.Scan, true)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (s *Store) Transition(ctx context.Context, id string, from, to Status, fulfillmentDate *time.Time) (int64, error) {
	const q = `
UPDATE reservations
SET status = ?, fulfillment_date = COALESCE(?, fulfillment_date), updated_at = NOW(6)
WHERE reservation_id = ? AND status = ?
`
	var fd any
	if fulfillmentDate != nil {
		fd = *fulfillmentDate
	}
	res, err := s.db.ExecContext(ctx, q, to, fd, id, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Update(ctx context.Context, r *Reservation) error {
	const q = `
UPDATE reservations
SET status = ?, expiry_date = ?, notification_sent = ?, fulfillment_date = ?,
    notes = ?, updated_at = NOW(6)
WHERE reservation_id = ?
`
	res, err := s.db.ExecContext(ctx, q,
		r.Status, r.ExpiryDate, r.NotificationSent, r.FulfillmentDate, r.Notes, r.ReservationID,
	)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
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
