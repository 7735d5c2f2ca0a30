package reservations

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	platformdb "github.com/PerezChris99/University-Library-RESTful-API/internal/platform/db"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument      Code = "INVALID_ARGUMENT"
	CodeNotFound             Code = "NOT_FOUND"
	CodeInternal             Code = "INTERNAL"
	CodeIneligibleBorrower   Code = "INELIGIBLE_BORROWER"
	CodeDuplicateReservation Code = "DUPLICATE_RESERVATION"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func ErrIneligibleBorrower() *APIError {
	return &APIError{Code: CodeIneligibleBorrower, Message: "cannot reserve books, please pay your outstanding fines"}
}

func ErrDuplicateReservation() *APIError {
	return &APIError{Code: CodeDuplicateReservation, Message: "you already have a pending reservation for this book"}
}

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument, CodeIneligibleBorrower, CodeDuplicateReservation:
			return 400
		case CodeNotFound:
			return 404
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
	store  ReservationStore
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

// Reserve places a hold on a book for the caller. A user may hold at most
// one pending reservation per book, and must carry no fines.
func (s *Service) Reserve(ctx context.Context, userID string, req CreateReservationRequest) (*ReservationResponse, error) {
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

	exists, err := s.store.BookExists(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound("book not found")
	}

	dup, err := s.store.HasPending(ctx, userID, req.BookID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateReservation()
	}

	now := s.clock.Now()
	expiry := now.AddDate(0, 0, s.policy.ReservationDays)
	if req.ExpiryDate != nil {
		if !req.ExpiryDate.After(now) {
			return nil, ErrInvalid("expiryDate must be in the future")
		}
		expiry = *req.ExpiryDate
	}

	id, err := s.id.New()
	if err != nil {
		return nil, err
	}

	r := &Reservation{
		ReservationID:   id,
		UserID:          userID,
		BookID:          req.BookID,
		ReservationDate: now,
		ExpiryDate:      expiry,
		Status:          StatusPending,
	}
	if req.Notes != nil && *req.Notes != "" {
		r.Notes = sql.NullString{String: *req.Notes, Valid: true}
	}

	if err := s.store.Insert(ctx, r); err != nil {
		return nil, err
	}

	view, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, ErrInternal("inserted but not found")
	}
	resp := buildReservationResponse(view, now)
	return &resp, nil
}

func (s *Service) ListMine(ctx context.Context, userID, status string) ([]ReservationResponse, error) {
	views, err := s.store.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	out := make([]ReservationResponse, 0, len(views))
	for i := range views {
		out = append(out, buildReservationResponse(&views[i], now))
	}
	return out, nil
}

func (s *Service) GetOwn(ctx context.Context, id, userID string) (*ReservationResponse, error) {
	view, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil || view.UserID != userID {
		return nil, ErrNotFound("reservation not found")
	}
	resp := buildReservationResponse(view, s.clock.Now())
	return &resp, nil
}

func (s *Service) ListAll(ctx context.Context, f Filter) ([]ReservationResponse, error) {
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
	now := s.clock.Now()
	out := make([]ReservationResponse, 0, len(views))
	for i := range views {
		out = append(out, buildReservationResponse(&views[i], now))
	}
	return out, nil
}

// Cancel moves the caller's pending reservation to cancelled.
func (s *Service) Cancel(ctx context.Context, id, userID string) (*ReservationResponse, error) {
	view, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil || view.UserID != userID || view.Status != StatusPending {
		return nil, ErrNotFound("reservation not found or cannot be cancelled")
	}

	n, err := s.store.Transition(ctx, id, StatusPending, StatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound("reservation not found or cannot be cancelled")
	}

	view.Status = StatusCancelled
	resp := buildReservationResponse(view, s.clock.Now())
	return &resp, nil
}

// Fulfill moves a pending reservation to fulfilled (staff operation).
func (s *Service) Fulfill(ctx context.Context, id string) (*ReservationResponse, error) {
	view, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, ErrNotFound("reservation not found")
	}
	if view.Status != StatusPending {
		return nil, ErrInvalid("reservation is already " + string(view.Status))
	}

	now := s.clock.Now()
	n, err := s.store.Transition(ctx, id, StatusPending, StatusFulfilled, &now)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrInvalid("reservation is already " + string(view.Status))
	}

	view.Status = StatusFulfilled
	view.FulfillmentDate = sql.NullTime{Time: now, Valid: true}
	resp := buildReservationResponse(view, now)
	return &resp, nil
}

// Fields a staff PATCH may touch.
var updatableFields = map[string]struct{}{
	"status":           {},
	"expiryDate":       {},
	"notificationSent": {},
}

// AdminUpdate applies an allow-listed partial update (staff operation).
func (s *Service) AdminUpdate(ctx context.Context, id string, updates map[string]any) (*ReservationResponse, error) {
	if len(updates) == 0 {
		return nil, ErrInvalid("no updates supplied")
	}
	for k := range updates {
		if _, ok := updatableFields[k]; !ok {
			return nil, ErrInvalid("invalid updates")
		}
	}

	view, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, ErrNotFound("reservation not found")
	}

	for k, v := range updates {
		switch k {
		case "status":
			str, ok := v.(string)
			if !ok || !Status(str).Valid() {
				return nil, ErrInvalid("invalid status")
			}
			view.Status = Status(str)
		case "expiryDate":
			str, ok := v.(string)
			if !ok {
				return nil, ErrInvalid("expiryDate must be an RFC3339 timestamp")
			}
			t, err := time.Parse(time.RFC3339, str)
			if err != nil {
				return nil, ErrInvalid("expiryDate must be an RFC3339 timestamp")
			}
			view.ExpiryDate = t
		case "notificationSent":
			b, ok := v.(bool)
			if !ok {
				return nil, ErrInvalid("notificationSent must be a boolean")
			}
			view.NotificationSent = b
		}
	}

	if err := s.store.Update(ctx, &view.Reservation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("reservation not found")
		}
		return nil, err
	}

	resp := buildReservationResponse(view, s.clock.Now())
	return &resp, nil
}
