package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/internal/infra/payment"
	"carrental/internal/infra/security"
)

const cliSecret = "cli-secret"

type fakeAPI struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.RequestURI())
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/vehicles":
		_, _ = io.WriteString(w, `{"vehicles":[{"id":"v-1","make":"Toyota","model":"Corolla","year":2022,"category":"Sedan","transmission":"Automatic","seats":5,"price_per_day":45,"available":true}],"status":"success"}`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/vehicles/v-1":
		_, _ = io.WriteString(w, `{"vehicle":{"id":"v-1","make":"Toyota","model":"Corolla","price_per_day":45,"available":true},"status":"success"}`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/my-bookings":
		_, _ = io.WriteString(w, `[{"id":"b-1","vehicle_id":"v-1","start_date":"2024-05-10","end_date":"2024-05-13","total_amount":135,"status":"pending"}]`)
	case r.Method == http.MethodPost && r.URL.Path == "/api/bookings/b-1/confirm_payment":
		_, _ = io.WriteString(w, `{"booking":{"id":"b-1","vehicle_id":"v-1","total_amount":135,"status":"confirmed","payment_intent_id":"demo_intent_id"},"status":"success"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/api/admin/vehicles":
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"vehicle":{"id":"v-2","make":"Fiat","model":"500"},"status":"success"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Not found","status":"error"}`)
	}
}

func newFakeAPI(t *testing.T) (*fakeAPI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("JWT_SECRET", cliSecret)
	t.Setenv("RENTAL_API_TOKEN", "")
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	t.Setenv("RENTAL_API_URL", srv.URL)
	t.Setenv("PAYMENT_DELAY", "0s")
	return api, &bytes.Buffer{}
}

func mintToken(t *testing.T, role string) string {
	t.Helper()
	token, err := security.Issuer{Secret: cliSecret}.Issue(security.Identity{UserID: "u-1", Role: role})
	require.NoError(t, err)
	return token
}

func TestVehiclesCommand(t *testing.T) {
	api, out := newFakeAPI(t)
	err := run(context.Background(), []string{"vehicles", "-type", "Sedan", "-min-price", "0"}, out, io.Discard)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Toyota Corolla")
	require.Len(t, api.requests, 1)
	assert.Equal(t, "GET /api/vehicles?min_price=0&type=Sedan", api.requests[0])
}

func TestQuoteCommand(t *testing.T) {
	api, out := newFakeAPI(t)
	err := run(context.Background(), []string{"quote", "-rate", "45", "-start", "2024-05-10", "-end", "2024-05-13"}, out, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "3 day(s) x 45.00/day = 135.00\n", out.String())
	assert.Empty(t, api.requests)

	out.Reset()
	err = run(context.Background(), []string{"-json", "quote", "-vehicle", "v-1", "-start", "2024-05-10", "-end", "2024-05-12"}, out, io.Discard)
	require.NoError(t, err)
	assert.JSONEq(t, `{"duration_days":2,"total_price":90}`, out.String())

	err = run(context.Background(), []string{"quote", "-start", "2024-05-10", "-end", "2024-05-12"}, out, io.Discard)
	assert.Error(t, err)
}

func TestPayCommand(t *testing.T) {
	api, out := newFakeAPI(t)
	token := mintToken(t, "")
	err := run(context.Background(), []string{"-token", token, "pay", "b-1"}, out, io.Discard)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "charging 135.00")
	assert.Contains(t, out.String(), "confirmed")
	require.Len(t, api.bodies, 2)
	assert.JSONEq(t, `{"payment_intent_id":"demo_intent_id"}`, api.bodies[1])

	err = run(context.Background(), []string{"-token", token, "pay", "-card", payment.DeclinedCardNumber, "b-1"}, out, io.Discard)
	assert.ErrorIs(t, err, payment.ErrCardDeclined)

	err = run(context.Background(), []string{"pay", "b-1"}, out, io.Discard)
	assert.Error(t, err)
}

func TestAdminCommands(t *testing.T) {
	api, out := newFakeAPI(t)

	err := run(context.Background(), []string{"-token", mintToken(t, ""), "admin", "bookings"}, out, io.Discard)
	assert.ErrorIs(t, err, errAdminRequired)
	assert.Empty(t, api.requests)

	err = run(context.Background(), []string{"-token", mintToken(t, "admin"), "-json", "admin", "add", "-make", "Fiat", "-model", "500", "-seats", "4"}, out, io.Discard)
	require.NoError(t, err)
	require.Len(t, api.bodies, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(api.bodies[0]), &sent))
	assert.Equal(t, map[string]any{"make": "Fiat", "model": "500", "seats": float64(4)}, sent)
	assert.Contains(t, out.String(), `"id": "v-2"`)
}

func TestTokenCommand(t *testing.T) {
	_, out := newFakeAPI(t)
	err := run(context.Background(), []string{"token", "-user", "u-7", "-admin"}, out, io.Discard)
	require.NoError(t, err)

	verifier, err := security.NewVerifier(cliSecret, security.DefaultAudience)
	require.NoError(t, err)
	claims, err := verifier.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "u-7", claims.Subject)
	assert.True(t, claims.IsAdmin())
}

func TestUsageErrors(t *testing.T) {
	_, out := newFakeAPI(t)
	assert.ErrorIs(t, run(context.Background(), nil, out, io.Discard), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"fly"}, out, io.Discard), errUsage)
	assert.Error(t, run(context.Background(), []string{"vehicle"}, out, io.Discard))
}
