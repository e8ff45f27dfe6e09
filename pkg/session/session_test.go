package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/dabba/pkg/session"
)

func testOptions(store session.Store) session.Options {
	opts := session.DefaultOptions()
	opts.Store = store
	return opts
}

// runRequest pushes one request through the session middleware, carrying
// the given cookies, and returns the recorder.
func runRequest(t *testing.T, opts session.Options, cookies []*http.Cookie, handler func(w http.ResponseWriter, r *http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()

	session.Middleware(opts)(http.HandlerFunc(handler)).ServeHTTP(rec, req)
	return rec
}

func TestSessionPersistsAcrossRequests(t *testing.T) {
	store := session.NewMemoryStore()
	opts := testOptions(store)

	rec := runRequest(t, opts, nil, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Set("user_id", uint(42))
		sess.Set("theme", "dark")
		if err := sess.Save(w); err != nil {
			t.Fatalf("save: %v", err)
		}
	})

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one session cookie, got %d", len(cookies))
	}

	runRequest(t, opts, cookies, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)

		id, ok := sess.GetUint("user_id")
		if !ok || id != 42 {
			t.Fatalf("user_id = %d, ok = %v", id, ok)
		}
		theme, ok := sess.GetString("theme")
		if !ok || theme != "dark" {
			t.Fatalf("theme = %q, ok = %v", theme, ok)
		}
	})
}

func TestSessionNumbersSurviveJSONRoundTrip(t *testing.T) {
	store := session.NewMemoryStore()
	opts := testOptions(store)

	rec := runRequest(t, opts, nil, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Set("count", 3)
		sess.Save(w)
	})

	runRequest(t, opts, rec.Result().Cookies(), func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)

		// JSON decoding turns numbers into float64; typed getters hide that.
		raw, _ := sess.Get("count")
		if _, isFloat := raw.(float64); !isFloat {
			t.Fatalf("raw value is %T, expected float64 after round trip", raw)
		}
		n, ok := sess.GetInt("count")
		if !ok || n != 3 {
			t.Fatalf("count = %d, ok = %v", n, ok)
		}
	})
}

func TestInvalidateClearsSession(t *testing.T) {
	store := session.NewMemoryStore()
	opts := testOptions(store)

	rec := runRequest(t, opts, nil, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Set("user_id", uint(7))
		sess.Save(w)
	})
	cookies := rec.Result().Cookies()

	runRequest(t, opts, cookies, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Invalidate()
		sess.Save(w)
	})

	runRequest(t, opts, cookies, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		if _, ok := sess.Get("user_id"); ok {
			t.Fatal("user_id survived Invalidate")
		}
	})
}

func TestFlashIsSingleRead(t *testing.T) {
	store := session.NewMemoryStore()
	opts := testOptions(store)

	runRequest(t, opts, nil, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Flash("notice", "order placed")

		v, ok := sess.GetFlash("notice")
		if !ok || v != "order placed" {
			t.Fatalf("flash = %v, ok = %v", v, ok)
		}
		if _, ok := sess.GetFlash("notice"); ok {
			t.Fatal("flash readable twice")
		}
	})
}
