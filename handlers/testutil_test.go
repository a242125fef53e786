package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"bookstore/database"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"golang.org/x/crypto/bcrypt"
)

var loggerOnce sync.Once

type testEnv struct {
	db    *sqlx.DB
	cache cache.Cache

	products *ProductHandler
	accounts *AccountHandler
	pages    *PageHandler
}

// newTestEnv wires the handlers against an in-memory SQLite database and
// the memory cache backend.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	loggerOnce.Do(func() {
		logger.Init(logger.LoggerConfig{
			CallerKey:  "file",
			TimeKey:    "timestamp",
			CallerSkip: 1,
		})
	})

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1) // one connection so :memory: stays one database
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.RunMigrations(db))

	c, err := cache.New(cache.Config{Type: "memory"})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return &testEnv{
		db:       db,
		cache:    c,
		products: NewProductHandler(db, c),
		accounts: NewAccountHandler(db, c, time.Hour),
		pages:    NewPageHandler(c),
	}
}

// seedUser inserts a user directly, hashing with the minimum bcrypt cost
// to keep the suite fast.
func (e *testEnv) seedUser(t *testing.T, username, password string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = e.db.Exec(
		"INSERT INTO users (username, email, password, is_active, created_at, updated_at) VALUES (?, ?, ?, 1, ?, ?)",
		username, username+"@test.com", string(hash), now, now)
	require.NoError(t, err)
}

func (e *testEnv) countRows(t *testing.T, table string) int {
	t.Helper()

	var count int
	require.NoError(t, e.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
	return count
}

func jsonRequest(method, path, body string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// itemRequest targets the item endpoint, installing the mux path variable
// the handler reads.
func itemRequest(method, id, body string) *http.Request {
	req := jsonRequest(method, "/api/product/"+id+"/", body)
	return mux.SetURLVars(req, map[string]string{"id": id})
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// withCookies copies the cookies a previous response set onto a fresh
// request, the way a browser would carry the session forward.
func withCookies(method, path string, rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}
