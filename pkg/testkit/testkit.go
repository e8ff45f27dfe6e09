// Package testkit holds the shared test fixtures: an in-memory database,
// a cookie-carrying HTTP client, and a stub payment gateway.
package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/dabba/pkg/database"
	"gorm.io/gorm"
)

// NewDB opens a fresh in-memory sqlite database and migrates the given
// models. One connection only: each in-memory sqlite DSN is its own
// database, so a second connection would see empty tables.
func NewDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatalf("testkit: open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("testkit: raw handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("testkit: migrate: %v", err)
		}
	}
	return db
}

// Client drives an http.Handler through httptest, carrying cookies across
// requests the way a browser would.
type Client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func NewClient(t *testing.T, handler http.Handler) *Client {
	return &Client{t: t, handler: handler}
}

// Do sends one request and records any Set-Cookie headers for the next.
func (c *Client) Do(method, target string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("testkit: marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		c.setCookie(cookie)
	}
	return rec
}

func (c *Client) Get(target string) *httptest.ResponseRecorder {
	return c.Do(http.MethodGet, target, nil, nil)
}

func (c *Client) Post(target string, body interface{}) *httptest.ResponseRecorder {
	return c.Do(http.MethodPost, target, body, nil)
}

func (c *Client) setCookie(cookie *http.Cookie) {
	for i, existing := range c.cookies {
		if existing.Name == cookie.Name {
			c.cookies[i] = cookie
			return
		}
	}
	c.cookies = append(c.cookies, cookie)
}

// DecodeJSON unmarshals a recorded response body into dest.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("testkit: decode response %q: %v", rec.Body.String(), err)
	}
}
