package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const bookColumns = `book_id, title, author, description, category, isbn,
copies_total, copies_available, status, created_at, updated_at`

type BookStore interface {
	Insert(ctx context.Context, b *Book) error
	GetByID(ctx context.Context, id string) (*Book, error)
	List(ctx context.Context, f Filter) ([]Book, error)
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id string) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) BookStore { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, b *Book) error {
	const q = `
INSERT INTO books (book_id, title, author, description, category, isbn,
copies_total, copies_available, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(6), NOW(6))
`
	_, err := s.db.ExecContext(ctx, q,
		b.BookID, b.Title, b.Author, b.Description, b.Category, b.ISBN,
		b.CopiesTotal, b.CopiesAvailable, b.Status,
	)
	return err
}

func (s *Store) GetByID(ctx context.Context, id string) (*Book, error) {
	q := fmt.Sprintf(`SELECT %s FROM books WHERE book_id = ? LIMIT 1`, bookColumns)
	var b Book
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&b.BookID, &b.Title, &b.Author, &b.Description, &b.Category, &b.ISBN,
		&b.CopiesTotal, &b.CopiesAvailable, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Whitelisted sort fields (request name -> column).
var sortColumns = map[string]string{
	"title":     "title",
	"author":    "author",
	"category":  "category",
	"status":    "status",
	"createdAt": "created_at",
}

func (s *Store) List(ctx context.Context, f Filter) ([]Book, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Search != "" {
		pat := "%" + normalizeSearch(f.Search) + "%"
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, pat, pat, pat)
	}

	q := fmt.Sprintf(`SELECT %s FROM books`, bookColumns)
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

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(
			&b.BookID, &b.Title, &b.Author, &b.Description, &b.Category, &b.ISBN,
			&b.CopiesTotal, &b.CopiesAvailable, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, b *Book) error {
	const q = `
UPDATE books
SET title = ?, author = ?, description = ?, category = ?, isbn = ?,
    copies_total = ?, copies_available = ?, status = ?, updated_at = NOW(6)
WHERE book_id = ?
`
	res, err := s.db.ExecContext(ctx, q,
		b.Title, b.Author, b.Description, b.Category, b.ISBN,
		b.CopiesTotal, b.CopiesAvailable, b.Status, b.BookID,
	)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM books WHERE book_id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// orderClause builds a safe ORDER BY from a "field:asc|desc" request value.
// Unknown fields fall back to the default ordering.
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

var searchFolder = cases.Fold()

// normalizeSearch case-folds and NFC-normalizes the search input so LIKE
// matching behaves for non-ASCII titles too.
func normalizeSearch(s string) string {
	return searchFolder.String(norm.NFC.String(strings.TrimSpace(s)))
}
