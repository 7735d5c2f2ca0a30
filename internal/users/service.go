package users

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
	"golang.org/x/crypto/bcrypt"

	"github.com/PerezChris99/University-Library-RESTful-API/internal/platform/auth"
	"github.com/PerezChris99/University-Library-RESTful-API/internal/platform/mailer"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
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
func ErrUnauthenticated(msg string) *APIError {
	return &APIError{Code: CodeUnauthenticated, Message: msg}
}
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeUnauthenticated:
			return 401
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
	store  UserStore
	clock  Clock
	id     IDGen
	tokens *auth.TokenIssuer
	mail   mailer.Mailer
}

func NewService(db *sql.DB, tokens *auth.TokenIssuer, mail mailer.Mailer) *Service {
	return &Service{
		store:  NewStore(db),
		clock:  realClock{},
		id:     ulidGen{},
		tokens: tokens,
		mail:   mail,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role := RoleStudent
	if req.Role != nil && *req.Role != "" {
		role = Role(*req.Role)
		if !role.Valid() {
			return nil, ErrInvalid("invalid role")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id, err := s.id.New()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	u := &User{
		UserID:       id,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if req.StudentID != nil && *req.StudentID != "" {
		u.StudentID = sql.NullString{String: *req.StudentID, Valid: true}
	}
	if req.Department != nil && *req.Department != "" {
		u.Department = sql.NullString{String: *req.Department, Valid: true}
	}
	if req.ContactNumber != nil && *req.ContactNumber != "" {
		u.ContactNumber = sql.NullString{String: *req.ContactNumber, Valid: true}
	}

	if err := s.store.Insert(ctx, u); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return nil, ErrConflict("email already registered")
		}
		return nil, err
	}

	u.DateJoined, u.CreatedAt, u.UpdatedAt = now, now, now

	// Welcome mail is best effort; the mailer logs its own failures.
	s.mail.SendWelcome(u.Email, u.Name)

	token, err := s.tokens.Issue(u.UserID, string(u.Role), now)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: buildUserResponse(u), Token: token}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, err
	}
	// One generic message for every miss so the endpoint leaks nothing.
	if u == nil || !u.IsActive {
		return nil, ErrUnauthenticated("authentication failed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrUnauthenticated("authentication failed")
	}

	token, err := s.tokens.Issue(u.UserID, string(u.Role), s.clock.Now())
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: buildUserResponse(u), Token: token}, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound("user not found")
	}
	resp := buildUserResponse(u)
	return &resp, nil
}

// Fields a patron may change on their own profile.
var selfUpdatableFields = map[string]struct{}{
	"name":          {},
	"email":         {},
	"password":      {},
	"department":    {},
	"contactNumber": {},
}

// Fields an elevated role may change on any user.
var adminUpdatableFields = map[string]struct{}{
	"name":          {},
	"email":         {},
	"password":      {},
	"role":          {},
	"studentId":     {},
	"department":    {},
	"contactNumber": {},
	"fines":         {},
	"isActive":      {},
}

func (s *Service) UpdateProfile(ctx context.Context, id string, updates map[string]any) (*UserResponse, error) {
	return s.applyUpdates(ctx, id, updates, selfUpdatableFields)
}

func (s *Service) AdminUpdateUser(ctx context.Context, id string, updates map[string]any) (*UserResponse, error) {
	return s.applyUpdates(ctx, id, updates, adminUpdatableFields)
}

func (s *Service) applyUpdates(ctx context.Context, id string, updates map[string]any, allowed map[string]struct{}) (*UserResponse, error) {
	if len(updates) == 0 {
		return nil, ErrInvalid("no updates supplied")
	}
	for k := range updates {
		if _, ok := allowed[k]; !ok {
			return nil, ErrInvalid("invalid updates")
		}
	}

	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound("user not found")
	}

	for k, v := range updates {
		switch k {
		case "name":
			str, ok := v.(string)
			if !ok || strings.TrimSpace(str) == "" {
				return nil, ErrInvalid("name must be a non-empty string")
			}
			u.Name = strings.TrimSpace(str)
		case "email":
			str, ok := v.(string)
			if !ok || !strings.Contains(str, "@") {
				return nil, ErrInvalid("invalid email")
			}
			u.Email = strings.ToLower(strings.TrimSpace(str))
		case "password":
			str, ok := v.(string)
			if !ok || len(str) < 6 {
				return nil, ErrInvalid("password must be at least 6 characters")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(str), bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			u.PasswordHash = string(hash)
		case "role":
			str, ok := v.(string)
			if !ok || !Role(str).Valid() {
				return nil, ErrInvalid("invalid role")
			}
			u.Role = Role(str)
		case "studentId":
			str, ok := v.(string)
			if !ok {
				return nil, ErrInvalid("studentId must be a string")
			}
			u.StudentID = nullString(str)
		case "department":
			str, ok := v.(string)
			if !ok {
				return nil, ErrInvalid("department must be a string")
			}
			u.Department = nullString(str)
		case "contactNumber":
			str, ok := v.(string)
			if !ok {
				return nil, ErrInvalid("contactNumber must be a string")
			}
			u.ContactNumber = nullString(str)
		case "fines":
			f, ok := v.(float64) // JSON numbers decode as float64
			if !ok || f < 0 {
				return nil, ErrInvalid("fines must be a non-negative number")
			}
			u.Fines = int64(f)
		case "isActive":
			b, ok := v.(bool)
			if !ok {
				return nil, ErrInvalid("isActive must be a boolean")
			}
			u.IsActive = b
		}
	}

	if err := s.store.Update(ctx, u); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return nil, ErrConflict("email already registered")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("user not found")
		}
		return nil, err
	}

	u.UpdatedAt = s.clock.Now()
	resp := buildUserResponse(u)
	return &resp, nil
}

func (s *Service) ListUsers(ctx context.Context, f Filter) ([]UserResponse, error) {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	us, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(us))
	for i := range us {
		out = append(out, buildUserResponse(&us[i]))
	}
	return out, nil
}

// RequestPasswordReset issues a one-hour reset token keyed on the current
// password hash and mails it. Unlike the welcome mail, a delivery failure
// here is an error the caller sees.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNotFound("user not found")
	}

	token, err := s.tokens.IssueResetToken(u.UserID, u.PasswordHash, s.clock.Now())
	if err != nil {
		return err
	}
	if err := s.mail.SendPasswordReset(u.Email, u.Name, token); err != nil {
		return ErrInternal("could not send reset email")
	}
	return nil
}

// PayFines settles an arbitrary amount against the user's running balance.
// This is the coarse path; per-borrowing settlement lives in borrowings.
func (s *Service) PayFines(ctx context.Context, userID string, amount int64) (*PayFinesResponse, error) {
	if amount <= 0 {
		return nil, ErrInvalid("valid amount required")
	}

	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound("user not found")
	}
	if amount > u.Fines {
		return nil, ErrInvalid("amount exceeds outstanding fines")
	}

	n, err := s.store.DecrementFines(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Balance moved between the read and the conditional write.
		return nil, ErrInvalid("amount exceeds outstanding fines")
	}

	return &PayFinesResponse{
		Paid:           amount,
		RemainingFines: u.Fines - amount,
		Message:        "Payment processed successfully",
	}, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
