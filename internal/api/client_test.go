package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bincshop/storefront-client/internal/alert"
)

type staticTokens struct {
	access  string
	refresh string
}

func (s staticTokens) AccessToken() string  { return s.access }
func (s staticTokens) RefreshToken() string { return s.refresh }

type offline struct{}

func (offline) Online() bool { return false }

type fakeRefresher struct {
	refreshErr error
	refreshed  int
	cleared    int
	onRefresh  func()
}

func (f *fakeRefresher) RefreshAccess(ctx context.Context) (string, error) {
	f.refreshed++
	if f.onRefresh != nil {
		f.onRefresh()
	}
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return "new-access", nil
}

func (f *fakeRefresher) Clear() { f.cleared++ }

func newTestClient(t *testing.T, serverURL string, opts ...Option) *Client {
	t.Helper()
	c, err := New(serverURL, 5*time.Second, opts...)
	require.NoError(t, err)
	return c
}

func TestGet_DecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"widget"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	var out struct {
		Name string `json:"name"`
	}
	err := c.Get(context.Background(), "/products/1/", &out)
	require.NoError(t, err)
	assert.Equal(t, "widget", out.Name)
}

func TestGet_InjectsBearerToken(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithTokenProvider(staticTokens{access: "tok-123"}))

	require.NoError(t, c.Get(context.Background(), "/user/profile/", nil))
	assert.Equal(t, "Bearer tok-123", seen)
}

func TestGet_WithoutAuthSkipsToken(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithTokenProvider(staticTokens{access: "tok-123"}))

	var out []any
	require.NoError(t, c.Get(context.Background(), "/products/", &out, WithoutAuth()))
	assert.Empty(t, seen)
}

func TestGet_OfflineFailsWithoutAttempt(t *testing.T) {
	attempted := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempted = true
	}))
	defer srv.Close()

	recorder := &alert.Recorder{}
	c := newTestClient(t, srv.URL, WithConnectivity(offline{}), WithNotifier(recorder))

	err := c.Get(context.Background(), "/products/", nil)
	require.ErrorIs(t, err, ErrOffline)
	assert.False(t, attempted, "offline request must not hit the network")

	notices := recorder.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, alert.LevelError, notices[0].Level)
	assert.Contains(t, notices[0].Message, "network error")
}

func TestGet_TimeoutClassified(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/products/", nil)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestGet_CallerCancellationIsNotTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := c.Get(ctx, "/products/", nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"validation", 400, `{}`, "validation error, please check your input"},
		{"unprocessable", 422, `{}`, "validation error, please check your input"},
		{"forbidden", 403, `{}`, "you do not have permission to access this resource"},
		{"not found", 404, `{}`, "resource not found"},
		{"server", 500, `{}`, "server error, please try again later"},
		{"body message wins", 400, `{"message":"shop already exists"}`, "shop already exists"},
		{"detail wins", 404, `{"detail":"no such product"}`, "no such product"},
		{"field errors flattened", 400, `{"email":["invalid address"]}`, "email: invalid address"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			recorder := &alert.Recorder{}
			c := newTestClient(t, srv.URL, WithNotifier(recorder))

			err := c.Get(context.Background(), "/x/", nil)
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.message, apiErr.Message)

			notices := recorder.Notices()
			require.Len(t, notices, 1)
			assert.Equal(t, tc.message, notices[0].Message)
		})
	}
}

func TestUnauthorized_NoRefreshTokenLeavesSessionAlone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	refresher := &fakeRefresher{}
	c := newTestClient(t, srv.URL, WithTokenProvider(staticTokens{access: "stale"}))
	c.SetRefresher(refresher)

	err := c.Get(context.Background(), "/user/profile/", nil)
	require.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Zero(t, refresher.refreshed, "no refresh attempt without a refresh token")
	assert.Zero(t, refresher.cleared, "session must not be cleared without a refresh token")
}

func TestUnauthorized_RefreshAndReplayOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	provider := &mutableTokens{staticTokens: staticTokens{access: "stale", refresh: "refresh-tok"}}
	refresher := &fakeRefresher{}
	refresher.onRefresh = func() { provider.access = "fresh" }

	c := newTestClient(t, srv.URL, WithTokenProvider(provider))
	c.SetRefresher(refresher)

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.Get(context.Background(), "/user/profile/", &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, refresher.refreshed)
	assert.Zero(t, refresher.cleared)
}

func TestUnauthorized_FailedRefreshClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	refresher := &fakeRefresher{refreshErr: assert.AnError}
	recorder := &alert.Recorder{}
	c := newTestClient(t, srv.URL,
		WithTokenProvider(staticTokens{access: "stale", refresh: "refresh-tok"}),
		WithNotifier(recorder))
	c.SetRefresher(refresher)

	err := c.Get(context.Background(), "/user/profile/", nil)
	require.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, 1, refresher.refreshed)
	assert.Equal(t, 1, refresher.cleared)

	notices := recorder.Notices()
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0].Message, "login")
}

func TestPostForm_ContentTypeCarriesBoundary(t *testing.T) {
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Binc Electronics", r.FormValue("name"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	form := NewForm()
	require.NoError(t, form.AddField("name", "Binc Electronics"))
	require.NoError(t, form.AddFile("logo", "logo.png", strings.NewReader("png-bytes")))

	require.NoError(t, c.PostForm(context.Background(), "/shop/register/", form, nil))
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="))
}

func TestDecode_TextResponseIntoString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	var out string
	require.NoError(t, c.Get(context.Background(), "/ping", &out))
	assert.Equal(t, "pong", out)
}

type mutableTokens struct {
	staticTokens
}
