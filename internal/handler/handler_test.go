package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airbnblite/airbot/internal/middleware"
	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/internal/settings"
	"github.com/airbnblite/airbot/internal/store"
	"github.com/airbnblite/airbot/pkg/logger"
)

const (
	apiContext = "/airbnbliteapi"
	jwtSecret  = "handler-test-secret"
)

type fakeChat struct {
	reply   string
	err     error
	methods []settings.Method
}

func (f *fakeChat) Chat(_ context.Context, _ *model.ChatRequest, m settings.Method) (string, error) {
	f.methods = append(f.methods, m)
	return f.reply, f.err
}

func (f *fakeChat) ChatOptimized(_ context.Context, _ *model.ChatRequest, m settings.Method) (string, error) {
	f.methods = append(f.methods, m)
	return f.reply, f.err
}

func (f *fakeChat) ChatCheckout(_ context.Context, _ *model.CheckoutChatRequest, m settings.Method) (string, error) {
	f.methods = append(f.methods, m)
	return f.reply, f.err
}

func (f *fakeChat) SuggestInsurance(context.Context, *model.SuggestInsuranceRequest) (string, error) {
	return f.reply, f.err
}

func (f *fakeChat) GenerateFAQ(context.Context, *model.GenerateFAQRequest) ([]model.FAQ, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []model.FAQ{{Question: "Wifi?", Answer: f.reply}}, nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("db down") }

type testServer struct {
	handler http.Handler
	chat    *fakeChat
	runtime *settings.Runtime
}

func newTestServer(t *testing.T, adminAuth bool) *testServer {
	t.Helper()
	st, err := store.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	rt, err := settings.NewRuntime(settings.MethodPDFExtract)
	require.NoError(t, err)

	log := logger.NewNop()
	chat := &fakeChat{reply: "You have 2 guests."}
	h := NewRouter(RouterConfig{
		APIContext:        apiContext,
		CORSOrigins:       []string{"*"},
		JWTSecret:         jwtSecret,
		AdminAuthEnabled:  adminAuth,
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		Health:            NewHealthHandler(st, nil),
		Users:             NewUserHandler(st, TokenConfig{Secret: jwtSecret, TTL: time.Hour, Admins: []string{"admin@example.com"}}, log),
		Properties:        NewPropertyHandler(st, log),
		Bookings:          NewBookingHandler(st, log),
		InsurancePlans:    NewInsurancePlanHandler(st, log),
		Chat:              NewChatHandler(chat, rt, log),
		Config:            NewConfigHandler(rt, log),
		Logger:            log,
	})
	return &testServer{handler: h, chat: chat, runtime: rt}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, apiContext+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func chatBody() map[string]any {
	return map[string]any{
		"messages": []map[string]string{{"sender": "user", "text": "How many guests?"}},
		"booking": map[string]any{
			"checkIn": "2025-01-01", "checkOut": "2025-01-05", "guests": 2,
			"totalCost": 500.0, "reservationCost": 450.0, "serviceFee": 50.0, "insuranceCost": 0.0,
		},
		"property": map[string]any{"id": 1, "title": "Beach House"},
	}
}

func TestInsuranceMethodConfig(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodGet, "/config/insurance-method", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, settings.MethodPDFExtract, decodeBody[InsuranceMethodResponse](t, rec).Method)

	rec = s.do(t, http.MethodPost, "/config/insurance-method", map[string]string{"method": "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid method")

	rec = s.do(t, http.MethodGet, "/config/insurance-method", nil)
	assert.Equal(t, settings.MethodPDFExtract, decodeBody[InsuranceMethodResponse](t, rec).Method)

	rec = s.do(t, http.MethodPost, "/config/insurance-method", map[string]string{"method": "vector_search"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/config/insurance-method", nil)
	assert.Equal(t, settings.MethodVectorSearch, decodeBody[InsuranceMethodResponse](t, rec).Method)

	// The next chat request observes the new method.
	rec = s.do(t, http.MethodPost, "/chat", chatBody())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []settings.Method{settings.MethodVectorSearch}, s.chat.methods)
}

func TestInsuranceMethodRequiresAdminWhenEnabled(t *testing.T) {
	s := newTestServer(t, true)
	body := map[string]string{"method": "vector_search"}

	rec := s.do(t, http.MethodPost, "/config/insurance-method", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	guest, err := middleware.IssueToken(jwtSecret, 1, "guest@example.com", []string{middleware.ScopeGuest}, time.Hour)
	require.NoError(t, err)
	rec = s.do(t, http.MethodPost, "/config/insurance-method", body, "Authorization", "Bearer "+guest)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin scope comes from logging in with an admin email.
	rec = s.do(t, http.MethodPost, "/register", map[string]any{"name": "Root", "email": "admin@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodPost, "/login", map[string]string{"email": "admin@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody[model.LoginResponse](t, rec).Token

	rec = s.do(t, http.MethodPost, "/config/insurance-method", body, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Reads stay public.
	rec = s.do(t, http.MethodGet, "/config/insurance-method", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodPost, "/register", map[string]any{"name": "Ana", "email": "ana@example.com", "password": "secret", "isHost": true})
	require.Equal(t, http.StatusCreated, rec.Code)
	user := decodeBody[model.User](t, rec)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(t, http.MethodPost, "/register", map[string]any{"name": "Ana", "email": "ana@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/register", map[string]any{"name": "No Email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/login", map[string]string{"email": "ana@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/login", map[string]string{"email": "ana@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeBody[model.LoginResponse](t, rec)
	assert.Equal(t, user.ID, login.ID)
	assert.NotEmpty(t, login.Token)

	rec = s.do(t, http.MethodPut, "/users/"+itoa(user.ID), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/users/"+itoa(user.ID), map[string]any{"name": "Ana B"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ana B", decodeBody[model.User](t, rec).Name)

	rec = s.do(t, http.MethodPut, "/users/999", map[string]any{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, "/users/abc", map[string]any{"name": "Ghost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.User](t, rec), 1)
}

func TestPropertyEndpoints(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodPost, "/properties", map[string]any{
		"hostId": 1, "title": "Beach House", "location": "Goa", "description": "Sea view",
		"pricePerNight": 120.0, "amenities": []string{"Wifi", "Pool"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decodeBody[model.Property](t, rec)
	assert.Equal(t, []string{"Wifi", "Pool"}, p.Amenities)

	rec = s.do(t, http.MethodPost, "/properties", map[string]any{"title": "Missing host"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/properties/"+itoa(p.ID), map[string]any{
		"title": "Beach Villa", "location": "Goa", "description": "Sea view", "propertyInfo": "Gate code 1234",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Gate code 1234", decodeBody[model.Property](t, rec).PropertyInfo)

	rec = s.do(t, http.MethodGet, "/properties", nil)
	assert.Len(t, decodeBody[[]model.Property](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/properties/"+itoa(p.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodDelete, "/properties/"+itoa(p.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/properties/"+itoa(p.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingEndpoints(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(t, http.MethodPost, "/bookings", map[string]any{
		"userId": 1, "propertyId": 1, "checkIn": "2025-01-01", "checkOut": "2025-01-05", "guests": 2,
		"totalCost": 500.0, "reservationCost": 450.0, "serviceFee": 50.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	b := decodeBody[model.Booking](t, rec)
	assert.Equal(t, model.BookingConfirmed, b.Status)

	rec = s.do(t, http.MethodPost, "/bookings", map[string]any{
		"userId": 1, "propertyId": 1, "checkIn": "2025-01-05", "checkOut": "2025-01-01", "guests": 2,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/bookings/"+itoa(b.ID), map[string]any{"cancellationReason": "no status"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/bookings/"+itoa(b.ID), map[string]any{"status": "cancelled-by-guest", "cancellationReason": "plans changed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.BookingCancelledByGuest, decodeBody[model.Booking](t, rec).Status)

	rec = s.do(t, http.MethodPut, "/bookings/999", map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInsurancePlanEndpoints(t *testing.T) {
	s := newTestServer(t, false)
	plan := map[string]any{
		"id": "basic", "name": "Basic Cover", "pricePercent": 5.0, "minTripValue": 0.0, "maxTripValue": 1000.0,
		"benefits": []string{"Trip cancellation", "Lost luggage"}, "termsUrl": "https://example.com/basic.pdf",
	}

	rec := s.do(t, http.MethodPost, "/insurance-plans", plan)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodPost, "/insurance-plans", plan)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/insurance-plans/basic", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com/basic.pdf", decodeBody[model.InsurancePlan](t, rec).TermsURL)

	rec = s.do(t, http.MethodGet, "/insurance-plans/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatEndpoints(t *testing.T) {
	s := newTestServer(t, false)

	for _, path := range []string{"/chat", "/chatOptimized"} {
		rec := s.do(t, http.MethodPost, path, chatBody())
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "You have 2 guests.", decodeBody[model.ChatResponse](t, rec).Response)
	}

	body := chatBody()
	delete(body, "booking")
	rec := s.do(t, http.MethodPost, "/chat", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "booking is required")

	rec = s.do(t, http.MethodPost, "/chatOptimized", `{"messages": [], "booking": {}, "property": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/chatCheckout", map[string]any{
		"messages": []map[string]string{{"sender": "user", "text": "What does the plan cover?"}},
		"property": map[string]any{"title": "Beach House"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/suggest-insurance-message", map[string]any{
		"location": "Goa", "tripCost": 500, "insurancePlan": map[string]any{"name": "Basic Cover"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "You have 2 guests.", decodeBody[model.SuggestInsuranceResponse](t, rec).Message)

	rec = s.do(t, http.MethodPost, "/generate-faq", map[string]any{"propertyDescription": "Cosy flat", "amenities": []string{"Wifi"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[model.GenerateFAQResponse](t, rec).FAQs, 1)

	rec = s.do(t, http.MethodPost, "/generate-faq", map[string]any{"amenities": []string{"Wifi"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatFailureIsGeneric(t *testing.T) {
	s := newTestServer(t, false)
	s.chat.err = errors.New("upstream exploded with secrets")

	rec := s.do(t, http.MethodPost, "/chat", chatBody())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to get AI response"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/", nil)
	assert.Contains(t, rec.Body.String(), "Welcome")

	rec = httptest.NewRecorder()
	NewHealthHandler(failingPinger{}, nil).Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
