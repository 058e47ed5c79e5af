package contextbuilder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/internal/settings"
	"github.com/airbnblite/airbot/internal/vectorstore"
	"github.com/airbnblite/airbot/pkg/logger"
)

const termsURL = "https://example.com/basic.pdf"

type fakeFetcher struct {
	text  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeIngester struct {
	err   error
	calls int
}

func (f *fakeIngester) EnsureEmbedded(context.Context, string) error {
	f.calls++
	return f.err
}

type fakeSearcher struct {
	results []vectorstore.Result
	query   string
}

func (f *fakeSearcher) Search(_ context.Context, query, _ string, _ int) []vectorstore.Result {
	f.query = query
	return f.results
}

func sampleBooking() *model.Booking {
	return &model.Booking{
		CheckIn:         "2025-01-01",
		CheckOut:        "2025-01-05",
		Guests:          2,
		TotalCost:       500.00,
		ReservationCost: 450.00,
		ServiceFee:      50.00,
		InsuranceCost:   0.00,
		Status:          model.BookingConfirmed,
	}
}

func samplePlan() *model.InsurancePlan {
	return &model.InsurancePlan{
		ID:       "basic",
		Name:     "Basic Cover",
		Benefits: []string{"Trip cancellation", "Lost luggage"},
		TermsURL: termsURL,
	}
}

func newBuilder(f *fakeFetcher, i *fakeIngester, s *fakeSearcher) *InsuranceBuilder {
	return NewInsuranceBuilder(f, i, s, 3, 1000, "insurance@airbnblite.com", logger.NewNop())
}

func date(s string) time.Time {
	t, _ := time.Parse(model.DateLayout, s)
	return t.Add(15 * time.Hour)
}

func TestBookingContext(t *testing.T) {
	out := Booking(sampleBooking())

	assert.Contains(t, out, "Number of Guests: 2")
	assert.Contains(t, out, "Total Cost: $500.00")
	assert.Contains(t, out, "Reservation Cost: $450.00")
	assert.Contains(t, out, "Service Fee: $50.00")
	assert.Contains(t, out, "Insurance Cost: $0.00")
	assert.Contains(t, out, "2025-01-05")
	assert.Contains(t, out, bookingPolicyLine)

	assert.Contains(t, Booking(nil), "No booking details")
}

func TestPropertyContext(t *testing.T) {
	p := &model.Property{
		Title:       "Beach House",
		Location:    "Goa",
		Description: "Sea view",
		Amenities:   []string{"Wifi", "Pool"},
	}

	out := Property(p, &model.HostInfo{Name: "Ana", Email: "ana@example.com"})
	assert.Contains(t, out, "Title: Beach House")
	assert.Contains(t, out, "Amenities: Wifi, Pool")
	assert.Contains(t, out, noHostNotes)
	assert.Contains(t, out, "Host Contact: Ana (ana@example.com)")

	p.PropertyInfo = "Wifi password is sunset42."
	out = Property(p, nil)
	assert.Contains(t, out, "Wifi password is sunset42.")
	assert.NotContains(t, out, noHostNotes)
	assert.Contains(t, out, "Host Contact: not available")
}

func TestCancellation(t *testing.T) {
	b := sampleBooking()

	tests := []struct {
		name        string
		now         time.Time
		cancellable bool
	}{
		{"day before check-in", date("2024-12-31"), true},
		{"weeks before check-in", date("2024-12-01"), true},
		{"same day as check-in", date("2025-01-01"), false},
		{"after check-in", date("2025-01-03"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Cancellation(b, tt.now)
			if tt.cancellable {
				assert.Equal(t, cancellableText, out)
			} else {
				assert.Equal(t, tooLateText, out)
			}
			assert.NotContains(t, out, b.CheckIn)
			assert.NotContains(t, out, tt.now.Format(model.DateLayout))
		})
	}
}

func TestCancellationEdgeCases(t *testing.T) {
	now := date("2024-12-01")

	cancelled := sampleBooking()
	cancelled.Status = model.BookingCancelledByHost
	assert.Equal(t, alreadyCancelledText, Cancellation(cancelled, now))

	broken := sampleBooking()
	broken.CheckIn = "next tuesday"
	assert.Equal(t, tooLateText, Cancellation(broken, now))

	assert.True(t, Cancellable("2025-01-01T00:00:00Z", now))
}

func TestCancellableUsesUTCDate(t *testing.T) {
	sydney := time.FixedZone("AEDT", 11*60*60)
	losAngeles := time.FixedZone("PST", -8*60*60)

	// 2025-01-01 08:00 in Sydney is still 2024-12-31 in UTC.
	assert.True(t, Cancellable("2025-01-01", time.Date(2025, 1, 1, 8, 0, 0, 0, sydney)))
	// 2024-12-31 20:00 in Los Angeles is already 2025-01-01 in UTC.
	assert.False(t, Cancellable("2025-01-01", time.Date(2024, 12, 31, 20, 0, 0, 0, losAngeles)))
}

func TestInsuranceBenefitsListed(t *testing.T) {
	b := newBuilder(&fakeFetcher{text: "Full policy text."}, &fakeIngester{}, &fakeSearcher{})

	out := b.Build(context.Background(), InsuranceInput{
		Purchased: samplePlan(),
		Method:    settings.MethodPDFExtract,
	})

	assert.Contains(t, out, "\n- Trip cancellation\n")
	assert.Contains(t, out, "\n- Lost luggage\n")
	assert.Contains(t, out, "Basic Cover (purchased")
	assert.Contains(t, out, fullTextHead+"\nFull policy text.")
	assert.Contains(t, out, "insurance@airbnblite.com")
}

func TestInsuranceNoPlan(t *testing.T) {
	fetcher := &fakeFetcher{text: "x"}
	ingester := &fakeIngester{}
	b := newBuilder(fetcher, ingester, &fakeSearcher{})

	out := b.Build(context.Background(), InsuranceInput{Method: settings.MethodVectorSearch})

	assert.Equal(t, noInsuranceText, out)
	assert.Zero(t, fetcher.calls)
	assert.Zero(t, ingester.calls)
}

func TestInsuranceEligiblePlanUsedWhenNothingPurchased(t *testing.T) {
	b := newBuilder(&fakeFetcher{text: "terms"}, &fakeIngester{}, &fakeSearcher{})

	out := b.Build(context.Background(), InsuranceInput{
		Eligible: samplePlan(),
		Method:   settings.MethodPDFExtract,
	})
	assert.Contains(t, out, "Basic Cover (eligible, not yet purchased)")
}

func TestInsuranceVectorSearchHit(t *testing.T) {
	fetcher := &fakeFetcher{text: "full text"}
	searcher := &fakeSearcher{results: []vectorstore.Result{
		{Text: "Lost luggage is reimbursed.", Score: 0.9},
		{Text: "Claims within 30 days.", Score: 0.5},
	}}
	b := newBuilder(fetcher, &fakeIngester{}, searcher)

	out := b.Build(context.Background(), InsuranceInput{
		Query:     "is my luggage covered?",
		Purchased: samplePlan(),
		Method:    settings.MethodVectorSearch,
	})

	assert.Contains(t, out, relevantSectionsHead+"\nLost luggage is reimbursed.\n\nClaims within 30 days.")
	assert.NotContains(t, out, fullTextHead)
	assert.Equal(t, "is my luggage covered?", searcher.query)
	assert.Zero(t, fetcher.calls)
}

func TestInsuranceVectorSearchFallsBackToExtract(t *testing.T) {
	in := InsuranceInput{Query: "q", Purchased: samplePlan()}

	in.Method = settings.MethodPDFExtract
	extract := newBuilder(&fakeFetcher{text: "full text"}, &fakeIngester{}, &fakeSearcher{}).Build(context.Background(), in)

	in.Method = settings.MethodVectorSearch
	empty := newBuilder(&fakeFetcher{text: "full text"}, &fakeIngester{}, &fakeSearcher{}).Build(context.Background(), in)
	assert.Equal(t, extract, empty)

	failed := newBuilder(&fakeFetcher{text: "full text"}, &fakeIngester{err: errors.New("qdrant down")}, &fakeSearcher{}).
		Build(context.Background(), in)
	assert.Equal(t, extract, failed)
}

func TestInsuranceDocumentUnavailable(t *testing.T) {
	b := newBuilder(&fakeFetcher{err: errors.New("404")}, &fakeIngester{}, &fakeSearcher{})

	out := b.Build(context.Background(), InsuranceInput{Purchased: samplePlan(), Method: settings.MethodPDFExtract})
	assert.Contains(t, out, documentUnavailable)
	assert.Contains(t, out, "- Lost luggage")

	plan := samplePlan()
	plan.TermsURL = ""
	out = b.Build(context.Background(), InsuranceInput{Purchased: plan, Method: settings.MethodPDFExtract})
	assert.Contains(t, out, noDocumentForPlan)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc"+truncatedMarker, truncate("abcdef", 3))
	// Never splits a multi-byte rune.
	out := truncate("aé", 2)
	assert.True(t, strings.HasPrefix(out, "a"+truncatedMarker))
}

func TestRouter(t *testing.T) {
	fetcher := &fakeFetcher{text: "policy"}
	r := NewRouter(newBuilder(fetcher, &fakeIngester{}, &fakeSearcher{}), func() time.Time { return date("2024-12-01") })

	in := Input{
		Query:     "hello",
		Booking:   sampleBooking(),
		Property:  &model.Property{Title: "Beach House", Location: "Goa"},
		Host:      &model.HostInfo{Name: "Ana"},
		Purchased: samplePlan(),
		Method:    settings.MethodPDFExtract,
	}
	ctx := context.Background()

	assert.Equal(t, Booking(in.Booking), r.Route(ctx, model.IntentBooking, in))
	assert.Equal(t, Property(in.Property, in.Host), r.Route(ctx, model.IntentProperty, in))
	assert.Equal(t, cancellableText, r.Route(ctx, model.IntentCancellation, in))
	assert.Equal(t, "The guest is asking a general question about their stay at Beach House.", r.Route(ctx, model.IntentGeneral, in))
	assert.Zero(t, fetcher.calls)

	assert.Contains(t, r.Route(ctx, model.IntentInsurance, in), "Basic Cover")
	assert.Equal(t, 1, fetcher.calls)

	full := r.Full(ctx, in)
	for _, part := range []string{"Booking Details:", "Property Details:", "Cancellation Policy:", "Insurance Information:"} {
		assert.Contains(t, full, part)
	}

	checkout := r.Checkout(ctx, in)
	require.Contains(t, checkout, "Property Details:")
	assert.NotContains(t, checkout, "Booking Details:")
}
