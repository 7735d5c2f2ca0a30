package borrowings

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/PerezChris99/University-Library-RESTful-API/internal/books"
	"github.com/PerezChris99/University-Library-RESTful-API/internal/platform/db"
)

// UserBalance is the slice of the user record the lifecycle needs for the
// eligibility gate.
type UserBalance struct {
	UserID string
	Fines  int64
}

type BorrowingStore interface {
	GetUserBalance(ctx context.Context, userID string) (*UserBalance, error)
	// CreateBorrowing inserts the record and decrements the book's available
	// counter in one transaction.
	CreateBorrowing(ctx context.Context, b *Borrowing) error
	GetByID(ctx context.Context, id string) (*View, error)
	ListByUser(ctx context.Context, userID string) ([]View, error)
	List(ctx context.Context, f Filter) ([]View, error)
	Renew(ctx context.Context, id string, newDueDate time.Time, renewals int) error
	// Return closes the record, adds the fine to the user's balance and
	// releases the copy, all in one transaction.
	Return(ctx context.Context, id string, returnDate time.Time, fine int64) error
	// SettleFine marks the borrowing's fine paid and reduces the user's
	// balance by the same amount.
	SettleFine(ctx context.Context, id string, paidDate time.Time) (*View, error)
}

type Store struct{ db *sql.DB }

func NewStore(sqlDB *sql.DB) BorrowingStore { return &Store{db: sqlDB} }

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

// lockBook reads the inventory counters of one book under FOR UPDATE.
func lockBook(ctx context.Context, tx db.DBTX, bookID string) (available, total int, status books.Status, err error) {
	const q = `SELECT copies_available, copies_total, status FROM books WHERE book_id = ? LIMIT 1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, q, bookID).Scan(&available, &total, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, "", ErrNotFound("book not found")
	}
	return available, total, status, err
}

func setBookAvailability(ctx context.Context, tx db.DBTX, bookID string, available int, status books.Status) error {
	const q = `UPDATE books SET copies_available = ?, status = ?, updated_at = NOW(6) WHERE book_id = ?`
	_, err := tx.ExecContext(ctx, q, available, status, bookID)
	return err
}

func (s *Store) CreateBorrowing(ctx context.Context, b *Borrowing) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		available, _, status, err := lockBook(ctx, tx, b.BookID)
		if err != nil {
			return err
		}
		if available <= 0 {
			return ErrBookUnavailable()
		}

		available--
		if err := setBookAvailability(ctx, tx, b.BookID, available, books.NextStatus(status, available)); err != nil {
			return err
		}

		const q = `
INSERT INTO borrowings (borrowing_id, user_id, book_id, borrow_date, due_date,
status, renewals, fine_amount, fine_paid, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 0, 0, FALSE, ?, NOW(6), NOW(6))
`
		_, err = tx.ExecContext(ctx, q,
			b.BorrowingID, b.UserID, b.BookID, b.BorrowDate, b.DueDate, b.Status, b.Notes,
		)
		return err
	})
}

const viewColumns = `
b.borrowing_id, b.user_id, b.book_id, b.borrow_date, b.due_date, b.return_date,
b.status, b.renewals, b.fine_amount, b.fine_paid, b.fine_paid_date, b.notes,
b.created_at, b.updated_at,
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
		&v.BorrowingID, &v.UserID, &v.BookID, &v.BorrowDate, &v.DueDate, &v.ReturnDate,
		&v.Status, &v.Renewals, &v.FineAmount, &v.FinePaid, &v.FinePaidDate, &v.Notes,
		&v.CreatedAt, &v.UpdatedAt,
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
FROM borrowings b
LEFT JOIN books bk ON bk.book_id = b.book_id
WHERE b.borrowing_id = ?
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

func (s *Store) ListByUser(ctx context.Context, userID string) ([]View, error) {
	q := `SELECT ` + viewColumns + `
FROM borrowings b
LEFT JOIN books bk ON bk.book_id = b.book_id
WHERE b.user_id = ?
ORDER BY b.borrow_date DESC`
	rows, err := s.db.QueryContext(ctx, q, userID)
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
	"borrowDate": "b.borrow_date",
	"dueDate":    "b.due_date",
	"returnDate": "b.return_date",
	"status":     "b.status",
	"createdAt":  "b.created_at",
}

func (s *Store) List(ctx context.Context, f Filter) ([]View, error) {
	q := `SELECT ` + viewColumns + `,
u.user_id, u.name, u.email, u.role
FROM borrowings b
LEFT JOIN books bk ON bk.book_id = b.book_id
LEFT JOIN users u ON u.user_id = b.user_id`

	var args []any
	if f.Status != "" {
		q += " WHERE b.status = ?"
		args = append(args, f.Status)
	}
	q += " ORDER BY " + orderClause(f.SortBy, "b.borrow_date DESC")
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

func (s *Store) Renew(ctx context.Context, id string, newDueDate time.Time, renewals int) error {
	const q = `
UPDATE borrowings
SET due_date = ?, renewals = ?, updated_at = NOW(6)
WHERE borrowing_id = ? AND status = 'active'
`
	res, err := s.db.ExecContext(ctx, q, newDueDate, renewals, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound("borrowing record not found or cannot be renewed")
	}
	return nil
}

func (s *Store) Return(ctx context.Context, id string, returnDate time.Time, fine int64) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const lockQ = `SELECT user_id, book_id, status FROM borrowings WHERE borrowing_id = ? LIMIT 1 FOR UPDATE`
		var (
			userID, bookID string
			status         Status
		)
		err := tx.QueryRowContext(ctx, lockQ, id).Scan(&userID, &bookID, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound("borrowing record not found or book already returned")
		}
		if err != nil {
			return err
		}
		if status != StatusActive {
			return ErrNotFound("borrowing record not found or book already returned")
		}

		const closeQ = `
UPDATE borrowings
SET return_date = ?, status = 'returned', fine_amount = ?, updated_at = NOW(6)
WHERE borrowing_id = ?
`
		if _, err := tx.ExecContext(ctx, closeQ, returnDate, fine, id); err != nil {
			return err
		}

		if fine > 0 {
			const fineQ = `UPDATE users SET fines = fines + ?, updated_at = NOW(6) WHERE user_id = ?`
			if _, err := tx.ExecContext(ctx, fineQ, fine, userID); err != nil {
				return err
			}
		}

		available, total, bookStatus, err := lockBook(ctx, tx, bookID)
		if err != nil {
			var api *APIError
			if errors.As(err, &api) && api.Code == CodeNotFound {
				// Book was removed from the catalog; the borrowing still closes.
				return nil
			}
			return err
		}
		if available < total {
			available++
		}
		return setBookAvailability(ctx, tx, bookID, available, books.NextStatus(bookStatus, available))
	})
}

func (s *Store) SettleFine(ctx context.Context, id string, paidDate time.Time) (*View, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const lockQ = `SELECT user_id, fine_amount, fine_paid FROM borrowings WHERE borrowing_id = ? LIMIT 1 FOR UPDATE`
		var (
			userID   string
			amount   int64
			finePaid bool
		)
		err := tx.QueryRowContext(ctx, lockQ, id).Scan(&userID, &amount, &finePaid)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound("borrowing record not found")
		}
		if err != nil {
			return err
		}
		if amount == 0 || finePaid {
			return ErrNoOutstandingFine()
		}

		const payQ = `
UPDATE borrowings
SET fine_paid = TRUE, fine_paid_date = ?, updated_at = NOW(6)
WHERE borrowing_id = ?
`
		if _, err := tx.ExecContext(ctx, payQ, paidDate, id); err != nil {
			return err
		}

		const balanceQ = `UPDATE users SET fines = GREATEST(fines - ?, 0), updated_at = NOW(6) WHERE user_id = ?`
		_, err = tx.ExecContext(ctx, balanceQ, amount, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
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
