package borrowings

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	platformdb "github.com/PerezChris99/University-Library-RESTful-API/internal/platform/db"
)

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
	store  BorrowingStore
	clock  Clock
	id     IDGen
	policy platformdb.LendingConfig
}

func NewService(db *sql.DB, policy platformdb.LendingConfig) *Service {
	return &Service{
		store:  NewStore(db),
		clock:  realClock{},
		id:     ulidGen{},
		policy: policy,
	}
}

// Borrow checks the fines gate and the copy availability, then creates the
// borrowing and decrements the counter in one transaction.
func (s *Service) Borrow(ctx context.Context, userID string, req CreateBorrowingRequest) (*BorrowingResponse, error) {
	balance, err := s.store.GetUserBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, ErrNotFound("user not found")
	}
	if balance.Fines > 0 {
		return nil, ErrIneligibleBorrower()
	}

	now := s.clock.Now()
	dueDate := now.AddDate(0, 0, s.policy.LoanDays)
	if req.DueDate != nil {
		if !req.DueDate.After(now) {
			return nil, ErrInvalid("dueDate must be in the future")
		}
		dueDate = *req.DueDate
	}

	id, err := s.id.New()
	if err != nil {
		return nil, err
	}

	b := &Borrowing{
		BorrowingID: id,
		UserID:      userID,
		BookID:      req.BookID,
		BorrowDate:  now,
		DueDate:     dueDate,
		Status:      StatusActive,
	}
	if req.Notes != nil && *req.Notes != "" {
		b.Notes = sql.NullString{String: *req.Notes, Valid: true}
	}

	if err := s.store.CreateBorrowing(ctx, b); err != nil {
		return nil, err
	}

	view, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, ErrInternal("inserted but not found")
	}
	resp := buildBorrowingResponse(view)
	return &resp, nil
}

// ListMine returns the caller's borrowings, newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]BorrowingResponse, error) {
	views, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]BorrowingResponse, 0, len(views))
	for i := range views {
		out = append(out, buildBorrowingResponse(&views[i]))
	}
	return out, nil
}

// GetOwn returns a single borrowing, visible to its borrower only.
func (s *Service) GetOwn(ctx context.Context, id, userID string) (*BorrowingResponse, error) {
	view, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil || view.UserID != userID {
		return nil, ErrNotFound("borrowing record not found")
	}
	resp := buildBorrowingResponse(view)
	return &resp, nil
}

// ListAll is the administrative listing with user and book views embedded.
func (s *Service) ListAll(ctx context.Context, f Filter) ([]BorrowingResponse, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	views, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]BorrowingResponse, 0, len(views))
	for i := range views {
		out = append(out, buildBorrowingResponse(&views[i]))
	}
	return out, nil
}

// Renew extends an active borrowing by the renewal period, at most
// MaxRenewals times. Only the borrower may renew.
func (s *Service) Renew(ctx context.Context, id, userID string) (*BorrowingResponse, error) {
	view, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil || view.UserID != userID || view.Status != StatusActive {
		return nil, ErrNotFound("borrowing record not found or cannot be renewed")
	}
	if view.Renewals >= s.policy.MaxRenewals {
		return nil, ErrRenewalLimit()
	}

	newDue := view.DueDate.AddDate(0, 0, s.policy.RenewalDays)
	if err := s.store.Renew(ctx, id, newDue, view.Renewals+1); err != nil {
		return nil, err
	}

	view.DueDate = newDue
	view.Renewals++
	resp := buildBorrowingResponse(view)
	return &resp, nil
}

// Return closes an active borrowing. The borrower or an elevated role may
// return; an overdue return accrues a fine on both the borrowing and the
// user's running balance.
func (s *Service) Return(ctx context.Context, id, callerID string, callerElevated bool) (*BorrowingResponse, error) {
	view, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil || view.Status != StatusActive {
		return nil, ErrNotFound("borrowing record not found or book already returned")
	}
	if !callerElevated && view.UserID != callerID {
		return nil, ErrForbidden("not authorized to return this book")
	}

	now := s.clock.Now()
	var fine int64
	if view.IsOverdue(now) {
		fine = FineFor(view.DueDate, now, s.policy.FineRatePerDay)
	}

	if err := s.store.Return(ctx, id, now, fine); err != nil {
		return nil, err
	}

	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrInternal("updated but not found")
	}
	resp := buildBorrowingResponse(updated)
	return &resp, nil
}

// PayFine settles the fine attached to one borrowing (staff operation).
func (s *Service) PayFine(ctx context.Context, id string) (*BorrowingResponse, error) {
	view, err := s.store.SettleFine(ctx, id, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, ErrInternal("updated but not found")
	}
	resp := buildBorrowingResponse(view)
	return &resp, nil
}
