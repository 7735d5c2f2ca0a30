package users

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/PerezChris99/University-Library-RESTful-API/internal/platform/auth"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqID struct{ n int }

func (s *seqID) New() (string, error) {
	s.n++
	return fmt.Sprintf("USR%026d", s.n)[:26], nil
}

type fakeStore struct {
	users map[string]*User
}

func newFakeStore() *fakeStore { return &fakeStore{users: map[string]*User{}} }

func (f *fakeStore) Insert(_ context.Context, u *User) error {
	cp := *u
	f.users[u.UserID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) List(_ context.Context, fl Filter) ([]User, error) {
	var out []User
	for _, u := range f.users {
		if fl.Role != "" && string(u.Role) != fl.Role {
			continue
		}
		if fl.IsActive != nil && u.IsActive != *fl.IsActive {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, u *User) error {
	if _, ok := f.users[u.UserID]; !ok {
		return errors.New("update of missing user")
	}
	cp := *u
	f.users[u.UserID] = &cp
	return nil
}

func (f *fakeStore) DecrementFines(_ context.Context, id string, amount int64) (int64, error) {
	u, ok := f.users[id]
	if !ok || u.Fines < amount {
		return 0, nil
	}
	u.Fines -= amount
	return 1, nil
}

type recordingMailer struct {
	welcomes   []string
	resets     []string
	failResets bool
}

func (m *recordingMailer) SendWelcome(email, _ string) { m.welcomes = append(m.welcomes, email) }

func (m *recordingMailer) SendPasswordReset(email, _ string, _ string) error {
	if m.failResets {
		return errors.New("smtp down")
	}
	m.resets = append(m.resets, email)
	return nil
}

func newTestService(store *fakeStore, mail *recordingMailer) *Service {
	return &Service{
		store:  store,
		clock:  fixedClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		id:     &seqID{},
		tokens: auth.NewTokenIssuer([]byte("test-secret"), time.Hour),
		mail:   mail,
	}
}

func TestRegisterHashesAndIssuesToken(t *testing.T) {
	store := newFakeStore()
	mail := &recordingMailer{}
	svc := newTestService(store, mail)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name: " Ada Lovelace ", Email: "Ada@Example.COM", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", resp.User.Name)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, "student", resp.User.Role)
	assert.True(t, resp.User.IsActive)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, []string{"ada@example.com"}, mail.welcomes)

	stored := store.users[resp.User.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := newTestService(newFakeStore(), &recordingMailer{})

	bogus := "superuser"
	_, err := svc.Register(context.Background(), RegisterRequest{
		Name: "X", Email: "x@example.com", Password: "secret1", Role: &bogus,
	})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInvalidArgument, api.Code)
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingMailer{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, 401, toHTTPStatus(err))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.Equal(t, 401, toHTTPStatus(err))
}

func TestLoginRejectsDeactivatedUser(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingMailer{})

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	store.users[resp.User.ID].IsActive = false

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret1"})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeUnauthenticated, api.Code)
	assert.Equal(t, "authentication failed", api.Message)
}

func TestUpdateProfileAllowList(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingMailer{})

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	// A patron cannot touch role or fines through their own profile.
	_, err = svc.UpdateProfile(context.Background(), resp.User.ID, map[string]any{"role": "admin"})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, "invalid updates", api.Message)

	_, err = svc.UpdateProfile(context.Background(), resp.User.ID, map[string]any{"fines": float64(0)})
	assert.Equal(t, 400, toHTTPStatus(err))

	updated, err := svc.UpdateProfile(context.Background(), resp.User.ID, map[string]any{
		"name":          "Ada L.",
		"contactNumber": "555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
	require.NotNil(t, updated.ContactNumber)
	assert.Equal(t, "555-0100", *updated.ContactNumber)

	// The elevated path does allow those fields.
	updated, err = svc.AdminUpdateUser(context.Background(), resp.User.ID, map[string]any{
		"role":  "librarian",
		"fines": float64(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "librarian", updated.Role)
	assert.Equal(t, int64(4), updated.Fines)
}

func TestUpdateProfilePasswordRehash(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingMailer{})

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), resp.User.ID, map[string]any{"password": "short"})
	assert.Equal(t, 400, toHTTPStatus(err))

	_, err = svc.UpdateProfile(context.Background(), resp.User.ID, map[string]any{"password": "newsecret"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "newsecret"})
	assert.NoError(t, err)
	_, err = svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret1"})
	assert.Equal(t, 401, toHTTPStatus(err))
}

func TestPayFines(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &recordingMailer{})

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	store.users[resp.User.ID].Fines = 10

	_, err = svc.PayFines(context.Background(), resp.User.ID, 0)
	assert.Equal(t, 400, toHTTPStatus(err))

	_, err = svc.PayFines(context.Background(), resp.User.ID, 11)
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, "amount exceeds outstanding fines", api.Message)

	paid, err := svc.PayFines(context.Background(), resp.User.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), paid.Paid)
	assert.Equal(t, int64(6), paid.RemainingFines)
	assert.Equal(t, int64(6), store.users[resp.User.ID].Fines)
}

func TestRequestPasswordReset(t *testing.T) {
	store := newFakeStore()
	mail := &recordingMailer{}
	svc := newTestService(store, mail)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	err = svc.RequestPasswordReset(context.Background(), "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com"}, mail.resets)

	err = svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	assert.Equal(t, 404, toHTTPStatus(err))

	mail.failResets = true
	err = svc.RequestPasswordReset(context.Background(), "ada@example.com")
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInternal, api.Code)
}
