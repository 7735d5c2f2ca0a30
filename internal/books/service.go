package books

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/oklog/ulid/v2"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== Interfaces =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ===== Service =====

type Service struct {
	store BookStore
	clock Clock
	id    IDGen
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db), clock: realClock{}, id: ulidGen{}}
}

func (s *Service) CreateBook(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" {
		return nil, ErrInvalid("title and author are required")
	}
	cat := Category(req.Category)
	if !cat.Valid() {
		return nil, ErrInvalid("invalid category")
	}
	if req.TotalCopies < 0 {
		return nil, ErrInvalid("totalCopies must be >= 0")
	}

	id, err := s.id.New()
	if err != nil {
		return nil, err
	}

	b := &Book{
		BookID:          id,
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		Category:        cat,
		CopiesTotal:     req.TotalCopies,
		CopiesAvailable: req.TotalCopies,
	}
	b.Status = NextStatus(StatusAvailable, b.CopiesAvailable)
	if req.Description != nil && *req.Description != "" {
		b.Description.String = *req.Description
		b.Description.Valid = true
	}
	if req.ISBN != nil && *req.ISBN != "" {
		b.ISBN.String = *req.ISBN
		b.ISBN.Valid = true
	}

	if err := s.store.Insert(ctx, b); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return nil, ErrConflict("isbn already exists")
		}
		return nil, err
	}

	now := s.clock.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	resp := buildBookResponse(b)
	return &resp, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (*BookResponse, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound("book not found")
	}
	resp := buildBookResponse(b)
	return &resp, nil
}

func (s *Service) ListBooks(ctx context.Context, f Filter) ([]BookResponse, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	bks, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]BookResponse, 0, len(bks))
	for i := range bks {
		out = append(out, buildBookResponse(&bks[i]))
	}
	return out, nil
}

// Fields a catalog PATCH may touch. Copy counters go through the inventory
// endpoint instead.
var updatableFields = map[string]struct{}{
	"title":       {},
	"author":      {},
	"description": {},
	"category":    {},
	"isbn":        {},
}

func (s *Service) UpdateBook(ctx context.Context, id string, updates map[string]any) (*BookResponse, error) {
	if len(updates) == 0 {
		return nil, ErrInvalid("no updates supplied")
	}
	for k := range updates {
		if _, ok := updatableFields[k]; !ok {
			return nil, ErrInvalid("invalid updates")
		}
	}

	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound("book not found")
	}

	for k, v := range updates {
		str, ok := v.(string)
		if !ok {
			return nil, ErrInvalid(k + " must be a string")
		}
		switch k {
		case "title":
			if strings.TrimSpace(str) == "" {
				return nil, ErrInvalid("title must not be empty")
			}
			b.Title = strings.TrimSpace(str)
		case "author":
			if strings.TrimSpace(str) == "" {
				return nil, ErrInvalid("author must not be empty")
			}
			b.Author = strings.TrimSpace(str)
		case "description":
			b.Description = sqlNullString(str)
		case "category":
			cat := Category(str)
			if !cat.Valid() {
				return nil, ErrInvalid("invalid category")
			}
			b.Category = cat
		case "isbn":
			b.ISBN = sqlNullString(str)
		}
	}

	if err := s.store.Update(ctx, b); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return nil, ErrConflict("isbn already exists")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("book not found")
		}
		return nil, err
	}

	b.UpdatedAt = s.clock.Now()
	resp := buildBookResponse(b)
	return &resp, nil
}

func (s *Service) DeleteBook(ctx context.Context, id string) (*BookResponse, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound("book not found")
	}
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound("book not found")
	}
	resp := buildBookResponse(b)
	return &resp, nil
}

// SetInventory applies a new total copy count. The available counter shifts
// by the same delta, clamped to [0, newTotal], and the status is recomputed.
// An explicit status in the request acts as a manual override.
func (s *Service) SetInventory(ctx context.Context, id string, req UpdateInventoryRequest) (*BookResponse, error) {
	if req.TotalCopies == nil || *req.TotalCopies < 0 {
		return nil, ErrInvalid("totalCopies must be >= 0")
	}

	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound("book not found")
	}

	newTotal := *req.TotalCopies
	b.CopiesAvailable += newTotal - b.CopiesTotal
	b.CopiesTotal = newTotal
	if b.CopiesAvailable < 0 {
		b.CopiesAvailable = 0
	}
	if b.CopiesAvailable > b.CopiesTotal {
		b.CopiesAvailable = b.CopiesTotal
	}

	if req.Status != nil {
		st := Status(*req.Status)
		if !st.Valid() {
			return nil, ErrInvalid("invalid status")
		}
		b.Status = st
	}
	b.Status = NextStatus(b.Status, b.CopiesAvailable)

	if err := s.store.Update(ctx, b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("book not found")
		}
		return nil, err
	}

	b.UpdatedAt = s.clock.Now()
	resp := buildBookResponse(b)
	return &resp, nil
}

func sqlNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
