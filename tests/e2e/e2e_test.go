//go:build integration

package e2e

// e2e_test.go
// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// These tests:
//   1. Full booking cycle (admin creates supplier → supplier logs in → books → check-in → check-out)
//   2. Slot conflict between two suppliers
//   3. Administrative block prevents booking until removed
//   4. Supplier soft delete refused while appointments are active
//   5. Dock sheet PDF download

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/config"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/infra"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// bookingDate returns a date far enough in the future that the "no past
// bookings" rule never interferes.
func bookingDate() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server     *httptest.Server
	adminToken string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	// Start Postgres container
	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("portalwps_test"),
		tcPostgres.WithUsername("portalwps"),
		tcPostgres.WithPassword("portalwps"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Start Redis container
	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		ERPGatewayURL:      "http://localhost:9999", // unused in e2e tests
		ERPFacilityCode:    "WPS-01",
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
		Domain:             "e2e.test",
	}

	// Connect DB — NewDatabase runs migrations
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed the admin account
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-e2e"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`INSERT INTO users (email, password_hash, role, is_active)
		VALUES ('admin@e2e.test', ?, 'admin', true)
		ON CONFLICT DO NOTHING`, string(hash)).Error)

	erpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	r := router.New(cfg, db, rdb, erpCB)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{
		server:     srv,
		adminToken: login(t, srv, "admin@e2e.test", "admin-e2e"),
	}
}

func login(t *testing.T, srv *httptest.Server, email, password string) string {
	t.Helper()
	resp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"email": email, "password": password}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

// createSupplier registers a supplier through the admin API and returns a
// logged-in token for its account.
func createSupplier(t *testing.T, env *testEnv, cnpj, email string) (supplierToken, supplierID string) {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/admin/suppliers",
		jsonBody(t, map[string]string{
			"cnpj":        cnpj,
			"description": "Transportes E2E",
			"email":       email,
		}), env.adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Supplier struct {
			ID string `json:"id"`
		} `json:"supplier"`
		TempPassword string `json:"temp_password"`
	}
	decodeJSON(t, resp, &created)
	require.NotEmpty(t, created.TempPassword)

	return login(t, env.server, email, created.TempPassword), created.Supplier.ID
}

func book(t *testing.T, env *testEnv, token, date, slot string) *http.Response {
	t.Helper()
	return do(t, env.server, "POST", "/v1/supplier/appointments",
		jsonBody(t, map[string]string{
			"date":           date,
			"time":           slot,
			"purchase_order": "PO-E2E-1",
			"truck_plate":    "ABC1D23",
			"driver_name":    "Carlos Mendes",
		}), token)
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FullBookingCycle(t *testing.T) {
	env := setupTestEnv(t)
	supToken, _ := createSupplier(t, env, "12.345.678/0001-95", "andrade@e2e.test")
	date := bookingDate()

	// Slot list starts fully open
	slotsResp := do(t, env.server, "GET", "/v1/supplier/available-slots?date="+date, nil, supToken)
	require.Equal(t, http.StatusOK, slotsResp.StatusCode)
	var slots struct {
		AvailableSlots []string `json:"available_slots"`
		OccupiedSlots  []string `json:"occupied_slots"`
	}
	decodeJSON(t, slotsResp, &slots)
	assert.Len(t, slots.AvailableSlots, 10)
	assert.Empty(t, slots.OccupiedSlots)

	// Book
	bookResp := book(t, env, supToken, date, "09:00")
	require.Equal(t, http.StatusCreated, bookResp.StatusCode)
	var appt struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeJSON(t, bookResp, &appt)
	assert.Equal(t, "scheduled", appt.Status)

	// The slot is now occupied for everyone
	slotsResp = do(t, env.server, "GET", "/v1/supplier/available-slots?date="+date, nil, supToken)
	require.Equal(t, http.StatusOK, slotsResp.StatusCode)
	decodeJSON(t, slotsResp, &slots)
	assert.Contains(t, slots.OccupiedSlots, "09:00")
	assert.NotContains(t, slots.AvailableSlots, "09:00")

	// Check-in creates the ERP payload
	ciResp := do(t, env.server, "POST", "/v1/admin/appointments/"+appt.ID+"/check-in", nil, env.adminToken)
	require.Equal(t, http.StatusOK, ciResp.StatusCode)
	var ci struct {
		Appointment struct {
			Status      string  `json:"status"`
			CheckInTime *string `json:"check_in_time"`
		} `json:"appointment"`
		ERPPayload struct {
			SupplierCNPJ  string `json:"supplier_cnpj"`
			PurchaseOrder string `json:"purchase_order"`
		} `json:"erp_payload"`
	}
	decodeJSON(t, ciResp, &ci)
	assert.Equal(t, "checked_in", ci.Appointment.Status)
	require.NotNil(t, ci.Appointment.CheckInTime)
	assert.Equal(t, "12.345.678/0001-95", ci.ERPPayload.SupplierCNPJ)
	assert.Equal(t, "PO-E2E-1", ci.ERPPayload.PurchaseOrder)

	// A second check-in is refused
	ciAgain := do(t, env.server, "POST", "/v1/admin/appointments/"+appt.ID+"/check-in", nil, env.adminToken)
	assert.Equal(t, http.StatusConflict, ciAgain.StatusCode)

	// Check-out closes the visit
	coResp := do(t, env.server, "POST", "/v1/admin/appointments/"+appt.ID+"/check-out", nil, env.adminToken)
	require.Equal(t, http.StatusOK, coResp.StatusCode)
	var out struct {
		Status       string  `json:"status"`
		CheckOutTime *string `json:"check_out_time"`
	}
	decodeJSON(t, coResp, &out)
	assert.Equal(t, "checked_out", out.Status)
	require.NotNil(t, out.CheckOutTime)
}

func TestE2E_SlotConflict(t *testing.T) {
	env := setupTestEnv(t)
	tokenA, _ := createSupplier(t, env, "12.345.678/0001-95", "a@e2e.test")
	tokenB, _ := createSupplier(t, env, "98.765.432/0001-10", "b@e2e.test")
	date := bookingDate()

	first := book(t, env, tokenA, date, "10:00")
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second := book(t, env, tokenB, date, "10:00")
	assert.Equal(t, http.StatusConflict, second.StatusCode)

	// Another slot on the same date stays bookable
	other := book(t, env, tokenB, date, "11:00")
	assert.Equal(t, http.StatusCreated, other.StatusCode)
}

func TestE2E_AdministrativeBlock(t *testing.T) {
	env := setupTestEnv(t)
	supToken, _ := createSupplier(t, env, "12.345.678/0001-95", "c@e2e.test")
	date := bookingDate()

	// Block 14:00 for dock maintenance
	blockResp := do(t, env.server, "POST", "/v1/admin/schedule-config",
		jsonBody(t, map[string]any{
			"date":         date,
			"time":         "14:00",
			"is_available": false,
			"reason":       "Dock maintenance",
		}), env.adminToken)
	require.Equal(t, http.StatusOK, blockResp.StatusCode)
	var block struct {
		ID string `json:"id"`
	}
	decodeJSON(t, blockResp, &block)

	resp := book(t, env, supToken, date, "14:00")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(raw), "Dock maintenance")

	// Removing the block reopens the slot
	delResp := do(t, env.server, "DELETE", "/v1/admin/schedule-config/"+block.ID, nil, env.adminToken)
	require.Equal(t, http.StatusNoContent, delResp.StatusCode)

	resp = book(t, env, supToken, date, "14:00")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestE2E_SupplierSoftDeleteGuard(t *testing.T) {
	env := setupTestEnv(t)
	supToken, supID := createSupplier(t, env, "12.345.678/0001-95", "d@e2e.test")
	date := bookingDate()

	bookResp := book(t, env, supToken, date, "08:00")
	require.Equal(t, http.StatusCreated, bookResp.StatusCode)
	var appt struct {
		ID string `json:"id"`
	}
	decodeJSON(t, bookResp, &appt)

	// Refused while the appointment is active
	delResp := do(t, env.server, "DELETE", "/v1/admin/suppliers/"+supID, nil, env.adminToken)
	assert.Equal(t, http.StatusConflict, delResp.StatusCode)

	// Cancel the appointment, then the delete goes through
	cancelResp := do(t, env.server, "DELETE", "/v1/supplier/appointments/"+appt.ID, nil, supToken)
	require.Equal(t, http.StatusNoContent, cancelResp.StatusCode)

	delResp = do(t, env.server, "DELETE", "/v1/admin/suppliers/"+supID, nil, env.adminToken)
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	// Deactivated account can no longer log in
	loginResp := do(t, env.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"email": "d@e2e.test", "password": "whatever"}), "")
	assert.Equal(t, http.StatusForbidden, loginResp.StatusCode)
}

func TestE2E_DockSheetPDF(t *testing.T) {
	env := setupTestEnv(t)
	supToken, _ := createSupplier(t, env, "12.345.678/0001-95", "e@e2e.test")
	date := bookingDate()

	require.Equal(t, http.StatusCreated, book(t, env, supToken, date, "09:00").StatusCode)

	resp := do(t, env.server, "GET", "/v1/admin/dock-sheet?date="+date, nil, env.adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")), "response should be a PDF document")
}
