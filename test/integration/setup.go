// Package integration runs the HTTP API against a real PostgreSQL container
// and a fake LINE push endpoint.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"order-relay/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the application schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := database.Open(ctx, connStr, database.DefaultPoolConfig())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := database.ApplySchema(ctx, pool); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProducts inserts catalogue rows, one of them inactive.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id, name, unit, category string
		price                    string
		active                   bool
	}{
		{"P001", "Milk", "本", "Dairy", "180", true},
		{"P002", "Eggs", "パック", "Dairy", "260", true},
		{"P003", "Flour", "kg", "Dry goods", "320", true},
		{"P004", "Discontinued Syrup", "本", "Dry goods", "500", false},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, default_unit, category, price, is_active)
			 VALUES ($1, $2, $3, $4, $5::numeric, $6)`,
			p.id, p.name, p.unit, p.category, p.price, p.active,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	for _, table := range []string{"orders", "products"} {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// CapturedPush is one request received by FakeLINE.
type CapturedPush struct {
	Authorization string
	Body          struct {
		To       string            `json:"to"`
		Messages []json.RawMessage `json:"messages"`
	}
}

// FakeLINE stands in for the Messaging API push endpoint.
type FakeLINE struct {
	Server *httptest.Server

	mu     sync.Mutex
	status int
	pushes []CapturedPush
}

// NewFakeLINE starts a fake push endpoint that answers 200 {} by default.
func NewFakeLINE(t *testing.T) *FakeLINE {
	t.Helper()

	f := &FakeLINE{status: http.StatusOK}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeLINE) serve(w http.ResponseWriter, r *http.Request) {
	var push CapturedPush
	push.Authorization = r.Header.Get("Authorization")
	raw, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(raw, &push.Body)

	f.mu.Lock()
	f.pushes = append(f.pushes, push)
	status := f.status
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Line-Request-Id", fmt.Sprintf("req-%d", len(f.Pushes())))
	w.WriteHeader(status)
	if status >= 300 {
		_, _ = w.Write([]byte(`{"message":"The request body has 1 error(s)"}`))
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

// Respond sets the status code returned for subsequent pushes.
func (f *FakeLINE) Respond(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// Pushes returns a copy of the requests received so far.
func (f *FakeLINE) Pushes() []CapturedPush {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CapturedPush(nil), f.pushes...)
}

// Reset clears captured pushes and restores the 200 response.
func (f *FakeLINE) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = nil
	f.status = http.StatusOK
}
