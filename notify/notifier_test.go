package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPNotifierPostsPlatformPayload(t *testing.T) {
	var got pushPayload
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(5 * time.Second)
	err := n.Notify(context.Background(), Notification{
		URL:       srv.URL,
		Token:     "tok-1",
		Title:     "❄ INCOMING!",
		Body:      "alice hit you with a snowball!",
		TargetURL: "https://snowfight.example?referrer=alice&mode=hit",
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.NotEmpty(t, got.NotificationID)
	assert.Equal(t, "❄ INCOMING!", got.Title)
	assert.Equal(t, "alice hit you with a snowball!", got.Body)
	assert.Equal(t, "https://snowfight.example?referrer=alice&mode=hit", got.TargetURL)
	assert.Equal(t, []string{"tok-1"}, got.Tokens)
}

func TestHTTPNotifierSurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate limited"))
	}))
	defer srv.Close()

	n := NewHTTPNotifier(5 * time.Second)
	err := n.Notify(context.Background(), Notification{URL: srv.URL, Token: "tok"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestHTTPNotifierConnectError(t *testing.T) {
	// a server that is already closed refuses connections
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	n := NewHTTPNotifier(time.Second)
	err := n.Notify(context.Background(), Notification{URL: srv.URL, Token: "tok"})
	require.Error(t, err)
}
