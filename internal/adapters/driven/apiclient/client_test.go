package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

var errDown = errors.New("down")

func newClient(url string) *Client {
	return New(Config{
		Provider:    "test",
		BaseURL:     url + "/",
		Timeout:     5 * time.Second,
		Header:      http.Header{"Authorization": {"Bearer k"}},
		Unavailable: errDown,
	})
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["q"]})
	}))
	defer srv.Close()

	var out struct {
		Echo string `json:"echo"`
	}
	err := newClient(srv.URL).PostJSON(context.Background(), "/v1/echo", map[string]string{"q": "rule 10"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "rule 10", out.Echo)
}

func TestGet_NilOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	assert.NoError(t, newClient(srv.URL).Get(context.Background(), "/models", nil))
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantIs    error
		temporary bool
		wantMsg   string
	}{
		{"rate limited", http.StatusTooManyRequests, "", domain.ErrRateLimited, true, "test: status 429: rate limited"},
		{"server error", http.StatusBadGateway, "upstream", errDown, true, "test: status 502: down: upstream"},
		{"nested message", http.StatusUnauthorized, `{"error":{"message":"invalid api key"}}`, nil, false, "test: status 401: invalid api key"},
		{"flat message", http.StatusNotFound, `{"error":"model not found"}`, nil, false, "test: status 404: model not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Retry-After", "2")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := newClient(srv.URL).Get(context.Background(), "/x", nil)
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantMsg)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			assert.Equal(t, tt.temporary, IsTemporary(err))

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, "2", se.RetryAfter)
		})
	}
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	err := newClient("http://127.0.0.1:1").Get(context.Background(), "/x", nil)
	assert.ErrorIs(t, err, errDown)
	assert.False(t, IsTemporary(err))
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newClient("http://127.0.0.1:1").Get(ctx, "/x", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, errDown)
}

func TestErrorMessageTruncates(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	msg := errorMessage(long)
	assert.Len(t, msg, maxMessage+3)
}
