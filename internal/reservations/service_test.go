package reservations

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformdb "github.com/PerezChris99/University-Library-RESTful-API/internal/platform/db"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqID struct{ n int }

func (s *seqID) New() (string, error) {
	s.n++
	return fmt.Sprintf("RSV%023d", s.n), nil
}

type fakeStore struct {
	balances     map[string]int64
	bookTitles   map[string]string
	reservations map[string]*Reservation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		balances:     map[string]int64{},
		bookTitles:   map[string]string{},
		reservations: map[string]*Reservation{},
	}
}

func (f *fakeStore) GetUserBalance(_ context.Context, userID string) (*UserBalance, error) {
	fines, ok := f.balances[userID]
	if !ok {
		return nil, nil
	}
	return &UserBalance{UserID: userID, Fines: fines}, nil
}

func (f *fakeStore) BookExists(_ context.Context, bookID string) (bool, error) {
	_, ok := f.bookTitles[bookID]
	return ok, nil
}

func (f *fakeStore) HasPending(_ context.Context, userID, bookID string) (bool, error) {
	for _, r := range f.reservations {
		if r.UserID == userID && r.BookID == bookID && r.Status == StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Insert(_ context.Context, r *Reservation) error {
	cp := *r
	f.reservations[r.ReservationID] = &cp
	return nil
}

func (f *fakeStore) view(r *Reservation) *View {
	v := &View{Reservation: *r}
	if title, ok := f.bookTitles[r.BookID]; ok {
		v.Book = &BookRef{BookID: r.BookID, Title: title}
	}
	return v
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*View, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, nil
	}
	return f.view(r), nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID, status string) ([]View, error) {
	var out []View
	for _, r := range f.reservations {
		if r.UserID != userID {
			continue
		}
		if status != "" && string(r.Status) != status {
			continue
		}
		out = append(out, *f.view(r))
	}
	return out, nil
}

func (f *fakeStore) List(_ context.Context, fl Filter) ([]View, error) {
	var out []View
	for _, r := range f.reservations {
		if fl.Status != "" && string(r.Status) != fl.Status {
			continue
		}
		out = append(out, *f.view(r))
	}
	return out, nil
}

func (f *fakeStore) Transition(_ context.Context, id string, from, to Status, fulfillmentDate *time.Time) (int64, error) {
	r, ok := f.reservations[id]
	if !ok || r.Status != from {
		return 0, nil
	}
	r.Status = to
	if fulfillmentDate != nil {
		r.FulfillmentDate.Time, r.FulfillmentDate.Valid = *fulfillmentDate, true
	}
	return 1, nil
}

func (f *fakeStore) Update(_ context.Context, r *Reservation) error {
	if _, ok := f.reservations[r.ReservationID]; !ok {
		return fmt.Errorf("update of missing reservation %s", r.ReservationID)
	}
	cp := *r
	f.reservations[r.ReservationID] = &cp
	return nil
}

func newTestService(store *fakeStore, now time.Time) *Service {
	return &Service{
		store: store,
		clock: fixedClock{t: now},
		id:    &seqID{},
		policy: platformdb.LendingConfig{
			LoanDays: 14, RenewalDays: 7, MaxRenewals: 2, FineRatePerDay: 1, ReservationDays: 7,
		},
	}
}

func seed(store *fakeStore) {
	store.balances["user-1"] = 0
	store.bookTitles["book-1"] = "The Left Hand of Darkness"
}

func TestReserveDefaultsExpiry(t *testing.T) {
	store := newFakeStore()
	seed(store)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, now)

	resp, err := svc.Reserve(context.Background(), "user-1", CreateReservationRequest{BookID: "book-1"})
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, now.AddDate(0, 0, 7), resp.ExpiryDate)
	assert.False(t, resp.Expired)
	require.NotNil(t, resp.Book)
	assert.Equal(t, "The Left Hand of Darkness", resp.Book.Title)
}

func TestReserveFinesGate(t *testing.T) {
	store := newFakeStore()
	seed(store)
	store.balances["user-1"] = 2
	svc := newTestService(store, time.Now())

	_, err := svc.Reserve(context.Background(), "user-1", CreateReservationRequest{BookID: "book-1"})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeIneligibleBorrower, api.Code)
	assert.Equal(t, 400, toHTTPStatus(err))
}

func TestReserveUnknownBookOrUser(t *testing.T) {
	store := newFakeStore()
	seed(store)
	svc := newTestService(store, time.Now())

	_, err := svc.Reserve(context.Background(), "user-1", CreateReservationRequest{BookID: "nope"})
	assert.Equal(t, 404, toHTTPStatus(err))

	_, err = svc.Reserve(context.Background(), "ghost", CreateReservationRequest{BookID: "book-1"})
	assert.Equal(t, 404, toHTTPStatus(err))
}

func TestReserveRejectsDuplicatePending(t *testing.T) {
	store := newFakeStore()
	seed(store)
	svc := newTestService(store, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	_, err := svc.Reserve(context.Background(), "user-1", CreateReservationRequest{BookID: "book-1"})
	require.NoError(t, err)

	_, err = svc.Reserve(context.Background(), "user-1", CreateReservationRequest{BookID: "book-1"})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeDuplicateReservation, api.Code)
}

func TestCancelThenReserveAgain(t *testing.T) {
	store := newFakeStore()
	seed(store)
	svc := newTestService(store, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	first, err := svc.Reserve(context.Background(), "user-1", CreateReservationRequest{BookID: "book-1"})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), first.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	// A cancelled hold no longer blocks a new one on the same book.
	second, err := svc.Reserve(context.Background(), "user-1", CreateReservationRequest{BookID: "book-1"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCancelGuards(t *testing.T) {
	store := newFakeStore()
	seed(store)
	svc := newTestService(store, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	resp, err := svc.Reserve(context.Background(), "user-1", CreateReservationRequest{BookID: "book-1"})
	require.NoError(t, err)

	// Someone else's reservation looks like it does not exist.
	_, err = svc.Cancel(context.Background(), resp.ID, "user-2")
	assert.Equal(t, 404, toHTTPStatus(err))

	_, err = svc.Cancel(context.Background(), resp.ID, "user-1")
	require.NoError(t, err)

	// Cancelling twice fails the pending check.
	_, err = svc.Cancel(context.Background(), resp.ID, "user-1")
	assert.Equal(t, 404, toHTTPStatus(err))
}

func TestFulfill(t *testing.T) {
	store := newFakeStore()
	seed(store)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, now)

	resp, err := svc.Reserve(context.Background(), "user-1", CreateReservationRequest{BookID: "book-1"})
	require.NoError(t, err)

	fulfilled, err := svc.Fulfill(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "fulfilled", fulfilled.Status)
	require.NotNil(t, fulfilled.FulfillmentDate)
	assert.Equal(t, now, *fulfilled.FulfillmentDate)

	_, err = svc.Fulfill(context.Background(), resp.ID)
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInvalidArgument, api.Code)
	assert.Equal(t, "reservation is already fulfilled", api.Message)
}

func TestExpiredIsDerivedOnRead(t *testing.T) {
	store := newFakeStore()
	seed(store)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, now)

	resp, err := svc.Reserve(context.Background(), "user-1", CreateReservationRequest{BookID: "book-1"})
	require.NoError(t, err)
	assert.False(t, resp.Expired)

	svc.clock = fixedClock{t: now.AddDate(0, 0, 8)}
	later, err := svc.GetOwn(context.Background(), resp.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", later.Status)
	assert.True(t, later.Expired)
}

func TestAdminUpdateAllowList(t *testing.T) {
	store := newFakeStore()
	seed(store)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, now)

	resp, err := svc.Reserve(context.Background(), "user-1", CreateReservationRequest{BookID: "book-1"})
	require.NoError(t, err)

	_, err = svc.AdminUpdate(context.Background(), resp.ID, map[string]any{"user": "user-2"})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, "invalid updates", api.Message)

	_, err = svc.AdminUpdate(context.Background(), resp.ID, map[string]any{"expiryDate": "not-a-date"})
	assert.Equal(t, 400, toHTTPStatus(err))

	newExpiry := now.AddDate(0, 0, 30)
	updated, err := svc.AdminUpdate(context.Background(), resp.ID, map[string]any{
		"status":           "expired",
		"expiryDate":       newExpiry.Format(time.RFC3339),
		"notificationSent": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "expired", updated.Status)
	assert.True(t, updated.NotificationSent)
	assert.True(t, updated.ExpiryDate.Equal(newExpiry))
}

func TestIsExpired(t *testing.T) {
	expiry := time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC)
	r := &Reservation{ExpiryDate: expiry}

	assert.False(t, r.IsExpired(expiry))
	assert.True(t, r.IsExpired(expiry.Add(time.Second)))
}
