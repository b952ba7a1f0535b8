//go:build integration

// Package integration runs the fund end to end against a real Postgres
// instance: schema creation, persistence, the HTTP API and a full
// simulated year with a dividend. Configure the database with
// LANDBANK_TEST_DB_* variables; defaults match docker-compose.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acrefund/landbank-backend/internal/adapter/httpapi"
	"github.com/acrefund/landbank-backend/internal/adapter/repository/postgres"
	"github.com/acrefund/landbank-backend/internal/domain"
	"github.com/acrefund/landbank-backend/internal/store"
	"github.com/acrefund/landbank-backend/internal/usecase/seeder"
	"github.com/acrefund/landbank-backend/internal/usecase/simulation"
)

const apiToken = "integration-token"

var (
	db        *postgres.DB
	fundStore *store.Store
	apiServer *httptest.Server
)

func TestMain(m *testing.M) {
	ctx := context.Background()
	logger := zap.NewNop()

	var err error
	db, err = postgres.NewDB(connString(), logger)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	if err := db.EnsureSchema(); err != nil {
		panic(fmt.Sprintf("failed to ensure schema: %v", err))
	}
	// Each run starts from a clean ledger.
	for _, table := range []string{"fund_states", "month_snapshots", "simulation_events"} {
		if _, err := db.ExecContext(ctx, "TRUNCATE TABLE "+table); err != nil {
			panic(fmt.Sprintf("failed to truncate %s: %v", table, err))
		}
	}

	eventRepo := postgres.NewEventRepository(db)
	fundStore = store.New(
		postgres.NewStateRepository(db),
		postgres.NewSnapshotRepository(db),
		eventRepo,
		logger,
	)
	if _, err := fundStore.Init(ctx, domain.DefaultFundConfig()); err != nil {
		panic(fmt.Sprintf("failed to init store: %v", err))
	}

	engine := simulation.NewEngine(seeder.NewPersonaGenerator(1))
	srv := httpapi.NewServer(fundStore, engine, eventRepo, logger)
	apiServer = httptest.NewServer(srv.Router(apiToken))
	defer apiServer.Close()

	os.Exit(m.Run())
}

func connString() string {
	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		get("LANDBANK_TEST_DB_HOST", "localhost"),
		get("LANDBANK_TEST_DB_PORT", "5432"),
		get("LANDBANK_TEST_DB_USER", "postgres"),
		get("LANDBANK_TEST_DB_PASSWORD", "postgres"),
		get("LANDBANK_TEST_DB_NAME", "landbank_test"),
	)
}

func call(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, apiServer.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func TestFullFundLifecycle(t *testing.T) {
	ctx := context.Background()

	// Three founding members.
	memberIDs := make([]string, 0, 3)
	for _, name := range []string{"Amara Okafor", "Bode Adeyemi", "Chidinma Eze"} {
		resp, body := call(t, http.MethodPost, "/api/v1/members", map[string]interface{}{
			"name":       name,
			"persona":    "steady",
			"baseAmount": "50000",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		var m domain.Member
		require.NoError(t, json.Unmarshal(body, &m))
		memberIDs = append(memberIDs, m.ID.String())
	}

	// A monthly expense from day one.
	resp, body := call(t, http.MethodPost, "/api/v1/expenses/settings", map[string]string{
		"name":       "Land surveys",
		"category":   "operations",
		"amount":     "2000",
		"occurrence": "MONTHLY",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	// Run the first year.
	resp, body = call(t, http.MethodPost, "/api/v1/simulation/fast-forward", map[string]int{"periods": 12})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	st := fundStore.State()
	assert.Equal(t, 12, st.CurrentPeriod)
	assert.True(t, st.NAV.IsPositive())
	assert.Len(t, st.Dividends, 1, "year one ends with a dividend")

	// Deploy cash into land mid-life.
	resp, body = call(t, http.MethodPost, "/api/v1/assets/land", map[string]string{
		"name":          "Ibeju-Lekki parcel 7",
		"purchasePrice": "300000",
		"annualRate":    "0.15",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	// One member borrows against their stake.
	equity := fundStore.State().MemberUnits(fundStore.State().Members[0].ID).Mul(fundStore.State().UnitPrice)
	resp, body = call(t, http.MethodPost, "/api/v1/loans", map[string]interface{}{
		"borrowerId":     memberIDs[0],
		"principal":      equity.Div(decimal.NewFromInt(4)).Round(2).String(),
		"borrowerEquity": equity.String(),
		"termMonths":     12,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	// Run a second year and exit one member via buyback.
	resp, body = call(t, http.MethodPost, "/api/v1/simulation/fast-forward", map[string]int{"periods": 12})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = call(t, http.MethodPost, "/api/v1/members/"+memberIDs[2]+"/exit", map[string]interface{}{
		"method": "POOLED_BUYBACK",
		"reason": "relocation",
		"allocations": map[string]string{
			memberIDs[0]: "50",
			memberIDs[1]: "50",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	st = fundStore.State()
	assert.Equal(t, 24, st.CurrentPeriod)
	assert.False(t, st.Members[2].IsActive)

	// Everything above survived the round trip through Postgres.
	reloaded := store.New(
		postgres.NewStateRepository(db),
		postgres.NewSnapshotRepository(db),
		postgres.NewEventRepository(db),
		zap.NewNop(),
	)
	fresh, err := reloaded.Init(ctx, domain.DefaultFundConfig())
	require.NoError(t, err)
	require.False(t, fresh)

	got := reloaded.State()
	assert.Equal(t, st.CurrentPeriod, got.CurrentPeriod)
	assert.True(t, got.NAV.Equal(st.NAV))
	assert.True(t, got.TotalUnits.Equal(st.TotalUnits))
	assert.Len(t, got.Members, len(st.Members))
	assert.Len(t, got.Dividends, len(st.Dividends))
	assert.Len(t, got.Loans, len(st.Loans))

	// Snapshot rows were persisted per closed period.
	snaps, err := postgres.NewSnapshotRepository(db).List(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(snaps), 24)

	// The audit trail is queryable newest-first.
	events, err := postgres.NewEventRepository(db).List(ctx, 10, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}
