package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/airbnblite/airbot/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	s.hashCost = bcrypt.MinCost
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestMigrationsApplied(t *testing.T) {
	s := newTestStore(t)
	v, err := s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	// Re-running is a no-op.
	require.NoError(t, s.migrate(context.Background()))
	v, err = s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.CreateUser(ctx, &model.RegisterRequest{Name: "Ana", Email: "Ana@Example.com", Password: "secret", IsHost: true})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.True(t, u.IsHost)
	assert.NotEqual(t, "secret", u.PasswordHash)

	_, err = s.CreateUser(ctx, &model.RegisterRequest{Name: "Dup", Email: "ana@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := s.Authenticate(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	updated, err := s.UpdateUser(ctx, u.ID, &model.UpdateUserRequest{Name: strPtr("Ana B"), Password: strPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, "Ana B", updated.Name)
	_, err = s.Authenticate(ctx, "ana@example.com", "new")
	assert.NoError(t, err)

	_, err = s.UpdateUser(ctx, 999, &model.UpdateUserRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateUser(ctx, u.ID, &model.UpdateUserRequest{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestProperties(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateProperty(ctx, &model.PropertyRequest{
		HostID:      1,
		Title:       "Beach House",
		Location:    "Goa",
		Description: "Sea view",
		Amenities:   []string{"Wifi", "Pool, heated"},
		Images:      []string{"a.jpg", "b.jpg"},
	})
	require.NoError(t, err)

	p, err := s.GetProperty(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wifi", "Pool, heated"}, p.Amenities)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, p.Images)

	err = s.UpdateProperty(ctx, id, &model.UpdatePropertyRequest{Title: "Beach Villa", Location: "Goa", Description: "d"})
	require.NoError(t, err)
	p, err = s.GetProperty(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Beach Villa", p.Title)
	assert.Empty(t, p.Amenities)

	assert.ErrorIs(t, s.UpdateProperty(ctx, 999, &model.UpdatePropertyRequest{Title: "x"}), ErrNotFound)

	require.NoError(t, s.DeleteProperty(ctx, id))
	assert.ErrorIs(t, s.DeleteProperty(ctx, id), ErrNotFound)
	_, err = s.GetProperty(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateBooking(ctx, &model.CreateBookingRequest{
		UserID: 1, PropertyID: 2, CheckIn: "2025-01-01", CheckOut: "2025-01-05",
		TotalCost: 500, ReservationCost: 450, ServiceFee: 50, Guests: 2,
		InsurancePlanID: strPtr("basic"),
	})
	require.NoError(t, err)

	b, err := s.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Equal(t, "2025-01-01", b.CheckIn)
	require.NotNil(t, b.InsurancePlanID)
	assert.Equal(t, "basic", *b.InsurancePlanID)
	assert.Nil(t, b.CancellationReason)

	err = s.UpdateBookingStatus(ctx, id, &model.UpdateBookingRequest{
		Status: model.BookingCancelledByGuest, CancellationReason: strPtr("change of plans"),
	})
	require.NoError(t, err)
	b, err = s.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelledByGuest, b.Status)
	assert.Equal(t, "change of plans", *b.CancellationReason)

	assert.ErrorIs(t, s.UpdateBookingStatus(ctx, 999, &model.UpdateBookingRequest{Status: model.BookingConfirmed}), ErrNotFound)

	all, err := s.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInsurancePlans(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	req := &model.InsurancePlanRequest{
		ID: "basic", Name: "Basic Cover", PricePercent: 5, MinTripValue: 0, MaxTripValue: 1000,
		Benefits: []string{"Trip cancellation", "Lost luggage"}, TermsURL: "https://example.com/basic.pdf",
	}
	_, err := s.CreateInsurancePlan(ctx, req)
	require.NoError(t, err)
	_, err = s.CreateInsurancePlan(ctx, req)
	assert.ErrorIs(t, err, ErrConflict)

	p, err := s.GetInsurancePlan(ctx, "basic")
	require.NoError(t, err)
	assert.Equal(t, []string{"Trip cancellation", "Lost luggage"}, p.Benefits)

	plans, err := s.ListInsurancePlans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	_, err = s.GetInsurancePlan(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIngestionManifest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	url := "https://example.com/terms.pdf"

	_, err := s.GetIngestion(ctx, url, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.RecordIngestion(ctx, &model.Ingestion{Source: url, SchemaVersion: 1, Chunks: 4, Dimension: 8}))
	require.NoError(t, s.RecordIngestion(ctx, &model.Ingestion{Source: url, SchemaVersion: 1, Chunks: 5, Dimension: 8, CompletedAt: time.Now()}))

	ing, err := s.GetIngestion(ctx, url, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, ing.Chunks)
	assert.False(t, ing.CompletedAt.IsZero())

	_, err = s.GetIngestion(ctx, url, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.ClearIngestions(ctx, 1))
	_, err = s.GetIngestion(ctx, url, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
