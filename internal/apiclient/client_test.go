package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth is a TokenSource and Refresher that counts refresh calls.
type fakeAuth struct {
	token     string
	refreshed atomic.Int32
	refresh   func(ctx context.Context) (string, error)
}

func (f *fakeAuth) Token() string { return f.token }

func (f *fakeAuth) Refresh(ctx context.Context) (string, error) {
	f.refreshed.Add(1)
	tok, err := f.refresh(ctx)
	if err == nil {
		f.token = tok
	}
	return tok, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func bearerOnly(token string, hits *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	r := chi.NewRouter()
	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(RequestIDHeader)
		writeJSON(w, http.StatusOK, map[string]string{"pong": "yes"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := New(srv.URL, WithAuth(&fakeAuth{token: "abc"}))

	var out map[string]string
	require.NoError(t, c.Get(context.Background(), "/api/ping", &out))
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "yes", out["pong"])
}

func TestDoWithoutTokenOmitsHeader(t *testing.T) {
	var present bool
	r := chi.NewRouter()
	r.Get("/api/public", func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := New(srv.URL, WithAuth(&fakeAuth{}))
	require.NoError(t, c.Get(context.Background(), "/api/public", nil))
	assert.False(t, present)
}

func TestDoRefreshesOnceAndRetries(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/sessions/my", bearerOnly("fresh", &hits))
	srv := httptest.NewServer(r)
	defer srv.Close()

	auth := &fakeAuth{token: "stale", refresh: func(context.Context) (string, error) { return "fresh", nil }}
	c := New(srv.URL, WithAuth(auth))

	var out map[string]string
	err := c.Get(context.Background(), "/api/sessions/my", &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, int32(1), auth.refreshed.Load())
	assert.Equal(t, int32(2), hits.Load())
}

func TestDoRetriesAtMostOnce(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/notifications", bearerOnly("never", &hits))
	srv := httptest.NewServer(r)
	defer srv.Close()

	auth := &fakeAuth{token: "stale", refresh: func(context.Context) (string, error) { return "still-wrong", nil }}
	c := New(srv.URL, WithAuth(auth))

	err := c.Get(context.Background(), "/api/notifications", nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, int32(1), auth.refreshed.Load())
	assert.Equal(t, int32(2), hits.Load())
}

func TestDoRefreshEndpointNeverRefreshes(t *testing.T) {
	r := chi.NewRouter()
	r.Post(DefaultRefreshPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh token expired"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	auth := &fakeAuth{token: "stale", refresh: func(context.Context) (string, error) {
		t.Fatal("refresh must not be called for the refresh endpoint")
		return "", nil
	}}
	c := New(srv.URL, WithAuth(auth))

	err := c.Post(context.Background(), DefaultRefreshPath, nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "refresh token expired", apiErr.Message)
	assert.Equal(t, int32(0), auth.refreshed.Load())
}

func TestDoPropagatesRefreshFailure(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/auth/profile", bearerOnly("fresh", &hits))
	srv := httptest.NewServer(r)
	defer srv.Close()

	refreshErr := errors.New("refresh rejected")
	auth := &fakeAuth{token: "stale", refresh: func(context.Context) (string, error) { return "", refreshErr }}
	c := New(srv.URL, WithAuth(auth))

	err := c.Get(context.Background(), "/api/auth/profile", nil)
	assert.ErrorIs(t, err, refreshErr)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDoReplaysBodyOnRetry(t *testing.T) {
	var bodies []string
	r := chi.NewRouter()
	r.Post("/api/sessions/book", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		bodies = append(bodies, in["expertId"])
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"_id": "s1"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	auth := &fakeAuth{token: "stale", refresh: func(context.Context) (string, error) { return "fresh", nil }}
	c := New(srv.URL, WithAuth(auth))

	var out map[string]string
	require.NoError(t, c.Post(context.Background(), "/api/sessions/book", map[string]string{"expertId": "e1"}, &out))
	assert.Equal(t, []string{"e1", "e1"}, bodies)
	assert.Equal(t, "s1", out["_id"])
}

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message field", body: `{"message":"Invalid credentials"}`, want: "Invalid credentials"},
		{name: "error field", body: `{"error":"email taken"}`, want: "email taken"},
		{name: "no payload", body: ``, want: "fallback"},
		{name: "html payload", body: `<html>oops</html>`, want: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newAPIError(http.MethodPost, "/api/auth/login", http.StatusBadRequest, []byte(tt.body))
			assert.Equal(t, tt.want, Message(err, "fallback"))
			assert.Contains(t, err.Error(), "400")
		})
	}

	assert.Equal(t, "fallback", Message(errors.New("dial tcp: refused"), "fallback"))
}

func TestFileJarPersistsCookies(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "r1", Path: "/", HttpOnly: true, MaxAge: 3600})
		w.WriteHeader(http.StatusOK)
	})
	var seen string
	r.Post(DefaultRefreshPath, func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("refreshToken"); err == nil {
			seen = c.Value
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cookies.json")

	jar, err := NewFileJar(path, srv.URL)
	require.NoError(t, err)
	first := New(srv.URL, WithHTTPClient(&http.Client{Jar: jar}))
	require.NoError(t, first.Post(context.Background(), "/api/auth/login", nil, nil))

	reloaded, err := NewFileJar(path, srv.URL)
	require.NoError(t, err)
	second := New(srv.URL, WithHTTPClient(&http.Client{Jar: reloaded}))
	require.NoError(t, second.Post(context.Background(), DefaultRefreshPath, nil, nil))
	assert.Equal(t, "r1", seen)
}

func TestFileJarPersistsPathScopedCookie(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "r1", Path: "/api/auth", HttpOnly: true, MaxAge: 3600})
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/api/theme", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "theme", Value: "dark", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	var seen string
	r.Post(DefaultRefreshPath, func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("refreshToken"); err == nil {
			seen = c.Value
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cookies.json")
	ctx := context.Background()

	jar, err := NewFileJar(path, srv.URL)
	require.NoError(t, err)
	first := New(srv.URL, WithHTTPClient(&http.Client{Jar: jar}))
	require.NoError(t, first.Post(ctx, "/api/auth/login", nil, nil))
	require.NoError(t, first.Get(ctx, "/api/theme", nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var stored []storedCookie
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 2)
	for _, sc := range stored {
		if sc.Name == "refreshToken" {
			assert.Equal(t, "/api/auth", sc.Path)
			assert.WithinDuration(t, time.Now().Add(time.Hour), sc.Expires, time.Minute)
		}
	}

	reloaded, err := NewFileJar(path, srv.URL)
	require.NoError(t, err)
	second := New(srv.URL, WithHTTPClient(&http.Client{Jar: reloaded}))
	require.NoError(t, second.Post(ctx, DefaultRefreshPath, nil, nil))
	assert.Equal(t, "r1", seen)
}

func TestFileJarForgetsDeletedCookie(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	u, err := url.Parse(srv.URL + "/api/auth/logout")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cookies.json")
	jar, err := NewFileJar(path, srv.URL)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "refreshToken", Value: "r1", Path: "/api/auth", MaxAge: 60}})
	jar.SetCookies(u, []*http.Cookie{{Name: "refreshToken", Path: "/api/auth", MaxAge: -1}})

	reloaded, err := NewFileJar(path, srv.URL)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Cookies(u))
}

func TestDoNoRefreshContext(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	auth := &fakeAuth{token: "stale", refresh: func(context.Context) (string, error) { return "fresh", nil }}
	c := New(srv.URL, WithAuth(auth))

	err := c.Post(NoRefresh(context.Background()), "/api/auth/login", map[string]string{}, nil)
	assert.Equal(t, "Invalid credentials", Message(err, "Login failed"))
	assert.Equal(t, int32(0), auth.refreshed.Load())
}
