package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func named(name string) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(name))
	}
}

func serve(r *Router, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestWildcardPrecedence(t *testing.T) {
	r := New()
	// registered general-first on purpose
	r.GET("/api/v1/sessions/*", named("session"))
	r.GET("/api/v1/sessions/*/options", named("options"))
	r.GET("/api/v1/sessions/*/charts/bar", named("bar"))
	r.GET("/api/v1/sessions", named("list"))

	cases := map[string]string{
		"/api/v1/sessions":                "list",
		"/api/v1/sessions/abc":            "session",
		"/api/v1/sessions/abc/options":    "options",
		"/api/v1/sessions/abc/charts/bar": "bar",
	}
	for path, want := range cases {
		for i := 0; i < 5; i++ {
			rec := serve(r, http.MethodGet, path)
			assert.Equal(t, http.StatusOK, rec.Code, path)
			assert.Equal(t, want, rec.Body.String(), path)
		}
	}
}

func TestMethodNotAllowedAndNotFound(t *testing.T) {
	r := New()
	r.GET("/api/v1/runs", named("runs"))
	r.GET("/api/v1/runs/*/logs", named("logs"))

	assert.Equal(t, http.StatusMethodNotAllowed, serve(r, http.MethodPost, "/api/v1/runs").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(r, http.MethodPost, "/api/v1/runs/x/logs").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/v1/nothing").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/v1/runs/x/y/logs").Code)
}

func TestMatchWildcardRoute(t *testing.T) {
	assert.True(t, matchWildcardRoute("/swagger/index.html", "/swagger/*"))
	assert.True(t, matchWildcardRoute("/swagger/a/b.js", "/swagger/*"))
	assert.True(t, matchWildcardRoute("/a/x/c", "/a/*/c"))
	assert.False(t, matchWildcardRoute("/a/x/d", "/a/*/c"))
	assert.False(t, matchWildcardRoute("/b/x", "/a/*"))
}

func TestMorePrecise(t *testing.T) {
	assert.True(t, morePrecise("/a/*/b", "/a/*"))
	assert.False(t, morePrecise("/a/*", "/a/*/b"))
	assert.True(t, morePrecise("/a/*/b/c", "/a/*/b"))
}
