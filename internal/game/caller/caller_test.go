package caller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFallback(t *testing.T) {
	assert.Equal(t, "¡Salió el B-12!", Fallback(12))
	assert.Equal(t, "¡Salió el I-16!", Fallback(16))
	assert.Equal(t, "¡Salió el N-42!", Fallback(42))
	assert.Equal(t, "¡Salió el G-55!", Fallback(55))
	assert.Equal(t, "¡Salió el O-75!", Fallback(75))
}

func TestStaticProvider(t *testing.T) {
	phrase, err := StaticProvider{}.Announce(context.Background(), 33)
	require.NoError(t, err)
	assert.Equal(t, "¡Salió el N-33!", phrase)
}

func TestHTTPProviderSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"phrase":"¡El patito, el 22!"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, 2*time.Second, zap.NewNop().Sugar())
	phrase, err := p.Announce(context.Background(), 22)
	require.NoError(t, err)
	assert.Equal(t, "¡El patito, el 22!", phrase)
}

func TestHTTPProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, 2*time.Second, zap.NewNop().Sugar())
	_, err := p.Announce(context.Background(), 9)
	assert.Error(t, err)
}

func TestHTTPProviderEmptyPhrase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"phrase":""}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, 2*time.Second, zap.NewNop().Sugar())
	_, err := p.Announce(context.Background(), 9)
	assert.Error(t, err)
}

func TestHTTPProviderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"phrase":"tarde"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, 2*time.Second, zap.NewNop().Sugar())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Announce(ctx, 9)
	assert.Error(t, err)
}
