package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/northgate-sc/clubweb/internal/i18n"
)

func testSessions() *Sessions {
	return NewSessions([]byte("0123456789abcdef0123456789abcdef"), nil, false, nil)
}

func sessionCookie(t *testing.T, res *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestSessionIssuesBrowserSessionCookie(t *testing.T) {
	t.Parallel()

	var seen []string
	h := testSessions().Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, SessionID(r))
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	c := sessionCookie(t, rec.Result())
	require.NotNil(t, c)
	require.True(t, c.Expires.IsZero(), "cookie must end with the browser session")
	require.Zero(t, c.MaxAge)
	require.True(t, c.HttpOnly)
	require.Len(t, seen[0], 26, "ulid")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, seen[0], seen[1], "the same cookie keeps the same session")
	require.Nil(t, sessionCookie(t, rec.Result()), "unchanged sessions are not re-sent")
}

func TestSessionRejectsForgedCookie(t *testing.T) {
	t.Parallel()

	var id string
	h := testSessions().Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = SessionID(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.NotEmpty(t, id)
	require.NotNil(t, sessionCookie(t, rec.Result()), "a fresh session replaces the forged one")
}

func TestLocalePrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de.json"), []byte(`{}`), 0o644))
	bundle, err := i18n.Load(dir, "en", []string{"en", "de"})
	require.NoError(t, err)

	var lang string
	h := testSessions().Handler(Locale(bundle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang = Lang(r)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "de", lang)
	require.Equal(t, "de", rec.Header().Get("Content-Language"))

	req = httptest.NewRequest(http.MethodGet, "/?hl=EN", nil)
	req.Header.Set("Accept-Language", "de")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "en", lang)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "hl", Value: "de"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "de", lang)
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.April, 5, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 2)
	l.now = func() time.Time { return now }
	h := l.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/gallery", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	require.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	limited := do("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	require.Equal(t, "1", limited.Header().Get("Retry-After"))
	require.JSONEq(t, `{"error":"rate_limited","message":"too many requests"}`, limited.Body.String())

	require.Equal(t, http.StatusOK, do("10.0.0.2").Code, "clients are limited independently")

	now = now.Add(time.Second)
	require.Equal(t, http.StatusOK, do("10.0.0.1").Code)

	now = now.Add(time.Hour)
	require.Equal(t, 2, l.Prune())
}

func TestLoggerAndRecoverer(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	h := Logger(zap.New(core))(Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gallery", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	require.Equal(t, int64(500), entries[0].ContextMap()["status"])
	require.Equal(t, "/gallery", entries[0].ContextMap()["path"])
}

func TestAssetsWithCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("body{}"), 0o644))

	h := AssetsWithCache("/assets", dir, StaticOptions{MaxAge: time.Hour, ETags: true})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "body{}", rec.Body.String())
	require.Contains(t, rec.Header().Get("Cache-Control"), "max-age=3600")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)
}
