package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novahuman/compass/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.Config{
		APIBase:        srv.URL,
		RequestTimeout: 5 * time.Second,
	})
}

func TestNoBaseURL(t *testing.T) {
	c := NewClient(&config.Config{})

	_, err := c.Get(context.Background(), "/health")
	require.ErrorIs(t, err, ErrNoBaseURL)
	assert.False(t, IsTransient(err), "a missing base URL is fatal, never retryable")
}

func TestGetReturnsRawJSON(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Empty(t, r.Header.Get("Content-Type"), "GET carries no body")
		w.Write([]byte(`{"status":"ok"}`))
	}))

	raw, err := c.Get(context.Background(), "/health")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))
}

func TestPostSendsJSONBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{}`))
	}))

	_, err := c.Post(context.Background(), "/memory/chat", map[string]string{"sid": "x"})
	require.NoError(t, err)
}

func TestPostNilBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	_, err := c.Post(context.Background(), "/memory/chat/clear", nil)
	require.NoError(t, err)
}

func TestBearerToken(t *testing.T) {
	var seen string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))

	_, err := c.Get(context.Background(), "/health")
	require.NoError(t, err)
	assert.Empty(t, seen, "no header without a token")

	c.SetToken("secret")
	_, err = c.Get(context.Background(), "/health")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", seen)
}

func TestHTTPErrorClassification(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"bad draft"}`))
	}))

	_, err := c.Post(context.Background(), "/memory/direction", map[string]string{})
	require.Error(t, err)

	assert.True(t, IsStatus(err, http.StatusUnprocessableEntity))
	assert.False(t, IsTransient(err))
	assert.Contains(t, err.Error(), "bad draft")
}

func TestUnauthorizedHook(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))

	fired := 0
	c.OnUnauthorized = func() { fired++ }

	_, err := c.Get(context.Background(), "/memory/chat")
	require.Error(t, err)
	assert.Equal(t, 1, fired, "the hook runs before the error is returned")
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Contains(t, err.Error(), "token expired")
}

func TestTimeoutClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(&config.Config{APIBase: srv.URL, RequestTimeout: 20 * time.Millisecond})

	_, err := c.Get(context.Background(), "/slow")
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.True(t, IsTransient(err))
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(&config.Config{APIBase: srv.URL, RequestTimeout: time.Second})

	_, err := c.Get(context.Background(), "/health")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.False(t, IsStatus(err, http.StatusInternalServerError))
}

func TestTolerantPayload(t *testing.T) {
	t.Run("PlainTextBecomesJSONString", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		}))

		raw, err := c.Get(context.Background(), "/health")
		require.NoError(t, err)
		assert.Equal(t, `"pong"`, string(raw))
	})

	t.Run("EmptyBodyBecomesNull", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		raw, err := c.Get(context.Background(), "/memory/chat/clear")
		require.NoError(t, err)
		assert.Equal(t, "null", string(raw))
	})
}

func TestURLJoining(t *testing.T) {
	var path string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{}`))
	}))

	_, err := c.Get(context.Background(), "health")
	require.NoError(t, err)
	assert.Equal(t, "/health", path, "a missing leading slash is added")
}
