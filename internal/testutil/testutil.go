package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dom/civ-draft/internal/api"
	"github.com/dom/civ-draft/internal/config"
	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/pubsub"
	"github.com/dom/civ-draft/internal/repository"
	"github.com/dom/civ-draft/internal/repository/memory"
	"github.com/dom/civ-draft/internal/repository/sqlstore"
	"github.com/dom/civ-draft/internal/service"
	"github.com/dom/civ-draft/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Epoch is the start time of every ManualClock built here.
var Epoch = time.UnixMilli(1_700_000_000_000)

// TestDB manages a database for repository tests
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB starts a throwaway Postgres container and opens it through
// sqlstore.NewConnection. It is skipped under -short.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}

	ctx := context.Background()
	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("civ_draft"),
		tcPostgres.WithUsername("draft"),
		tcPostgres.WithPassword("draft"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	tdb := &TestDB{Container: container}
	t.Cleanup(tdb.Cleanup)

	if tdb.DSN, err = container.ConnectionString(ctx, "sslmode=disable"); err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	tdb.open(t, sqlstore.DriverPostgres)
	return tdb
}

// NewSQLiteDB opens a migrated single-file database in a temp directory.
func NewSQLiteDB(t *testing.T) *TestDB {
	t.Helper()

	tdb := &TestDB{DSN: filepath.Join(t.TempDir(), "draft.db")}
	tdb.open(t, sqlstore.DriverSQLite)
	return tdb
}

func (tdb *TestDB) open(t *testing.T, driver string) {
	t.Helper()

	db, err := sqlstore.NewConnection(driver, tdb.DSN, zap.NewNop())
	if err != nil {
		t.Fatalf("open %s: %v", driver, err)
	}
	tdb.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"lobbies",
		"current_selections",
		"chat_messages",
		"draft_actions",
		"presets",
		"leaders",
		"maps",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:                   "0", // Random port
		Environment:            "test",
		LogLevel:               "error",
		DatabaseDriver:         "memory",
		DraftTimeout:           60 * time.Second,
		DefaultAutoBanLeaderID: domain.TimeoutLeaderID,
		ChatHistoryLimit:       domain.DefaultChatLimit,
		PubSubDriver:           "local",
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Broker   *pubsub.PubSub
	Hub      *websocket.Hub
	Clock    *service.ManualClock
	Config   *config.Config
}

// NewTestServer creates a complete test server backed by the memory store.
// Watchdogs only fire when the test advances Clock.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithRepos(t, memory.NewRepositories())
}

// NewTestServerWithRepos is NewTestServer over the given store.
func NewTestServerWithRepos(t *testing.T, repos *repository.Repositories) *TestServer {
	t.Helper()

	cfg := TestConfig()
	clock := service.NewManualClock(Epoch)
	broker := pubsub.New()

	services := service.NewServices(repos, cfg, broker, nil, clock, clock)
	if _, _, err := services.Catalog.Seed(context.Background()); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	hub := websocket.NewHub(broker, services.Lobby, services.Selection)
	go hub.Run()

	router := api.NewRouter(services, hub, nil)
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Broker:   broker,
		Hub:      hub,
		Clock:    clock,
		Config:   cfg,
	}

	t.Cleanup(func() {
		hub.Stop()
		server.Close()
		broker.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket endpoint URL
func (ts *TestServer) WebSocketURL() string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return wsURL + "/api/v1/ws"
}
