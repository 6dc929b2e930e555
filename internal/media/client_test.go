package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/backend/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.MediaConfig{
		CloudName:      "demo",
		APIKey:         "key",
		APISecret:      "secret",
		BaseURL:        baseURL,
		TimeoutSeconds: 2,
	}, nil)
}

func TestFetchVideoMetadata(t *testing.T) {
	t.Run("returns truncated duration seconds", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1_1/demo/resources/video/upload/intro-video", r.URL.Path)
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "key", user)
			assert.Equal(t, "secret", pass)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"public_id":"intro-video","resource_type":"video","duration":125.72}`))
		}))
		defer srv.Close()

		meta, err := newTestClient(srv.URL).FetchVideoMetadata(context.Background(), "intro-video")
		require.NoError(t, err)
		assert.Equal(t, 125, meta.DurationSeconds)
	})

	t.Run("resource not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"Resource not found"}}`, http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).FetchVideoMetadata(context.Background(), "missing")
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, "missing", fetchErr.VideoRef)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"duration":`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).FetchVideoMetadata(context.Background(), "broken")
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
	})

	t.Run("missing duration field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"public_id":"still-processing"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).FetchVideoMetadata(context.Background(), "still-processing")
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
	})

	t.Run("unreachable host", func(t *testing.T) {
		_, err := newTestClient("http://127.0.0.1:1").FetchVideoMetadata(context.Background(), "any")
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
	})

	t.Run("empty video ref", func(t *testing.T) {
		_, err := newTestClient("http://example.invalid").FetchVideoMetadata(context.Background(), "")
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
	})
}
