package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedRate(t *testing.T) {
	assert.Equal(t, 38500.25, FixedRate(38500.25).CurrentRate())
}

func TestMindicadorClientFetchRate(t *testing.T) {
	t.Run("Returns most recent series value", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"codigo":"uf","serie":[{"fecha":"2026-08-30T03:00:00.000Z","valor":39486.17},{"fecha":"2026-08-29T03:00:00.000Z","valor":39480.02}]}`))
		}))
		defer server.Close()

		client := NewMindicadorClient(server.URL, 5*time.Second)
		value, err := client.FetchRate()
		assert.NoError(t, err)
		assert.Equal(t, 39486.17, value)
	})

	t.Run("Non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewMindicadorClient(server.URL, 5*time.Second)
		_, err := client.FetchRate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 503")
	})

	t.Run("Malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>maintenance</html>`))
		}))
		defer server.Close()

		client := NewMindicadorClient(server.URL, 5*time.Second)
		_, err := client.FetchRate()
		assert.Error(t, err)
	})

	t.Run("Empty series", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"codigo":"uf","serie":[]}`))
		}))
		defer server.Close()

		client := NewMindicadorClient(server.URL, 5*time.Second)
		_, err := client.FetchRate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no series data")
	})

	t.Run("Non-positive value", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"serie":[{"fecha":"2026-08-30T03:00:00.000Z","valor":0}]}`))
		}))
		defer server.Close()

		client := NewMindicadorClient(server.URL, 5*time.Second)
		_, err := client.FetchRate()
		assert.Error(t, err)
	})

	t.Run("Unreachable host", func(t *testing.T) {
		client := NewMindicadorClient("http://127.0.0.1:1", 500*time.Millisecond)
		_, err := client.FetchRate()
		assert.Error(t, err)
	})
}

func TestMindicadorClientCurrentRate(t *testing.T) {
	t.Run("Passes through a successful fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"serie":[{"fecha":"2026-08-30T03:00:00.000Z","valor":39486.17}]}`))
		}))
		defer server.Close()

		client := NewMindicadorClient(server.URL, 5*time.Second)
		assert.Equal(t, 39486.17, client.CurrentRate())
	})

	t.Run("Falls back when the API is down", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewMindicadorClient(server.URL, 5*time.Second)
		assert.Equal(t, FallbackUFValue, client.CurrentRate())
	})

	t.Run("Falls back on timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			w.Write([]byte(`{"serie":[{"valor":39486.17}]}`))
		}))
		defer server.Close()

		client := NewMindicadorClient(server.URL, 50*time.Millisecond)
		assert.Equal(t, FallbackUFValue, client.CurrentRate())
	})
}
