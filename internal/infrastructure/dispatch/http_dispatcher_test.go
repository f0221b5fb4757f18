package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/revo/commerce-sync/internal/domain/sync"
)

func TestNewHTTPDispatcher(t *testing.T) {
	_, err := NewHTTPDispatcher("", "key", time.Second, nil)
	assert.ErrorIs(t, err, ErrMissingEndpoint)

	d, err := NewHTTPDispatcher("https://worker.example.com/dispatch", "key", 0, nil)
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestDispatchSendsEnvelope(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"paused": true,
		})
	}))
	defer server.Close()

	d, err := NewHTTPDispatcher(server.URL, "secret-key", 5*time.Second, nil)
	require.NoError(t, err)

	var out struct {
		OK     bool `json:"ok"`
		Paused bool `json:"paused"`
	}
	payload := map[string]any{"store_id": "store-1"}
	err = d.Dispatch(context.Background(), "tenant-7", domain.ActionStorePause, payload, &out)
	require.NoError(t, err)

	assert.Equal(t, "tenant-7", gotHeaders.Get("X-Tenant-ID"))
	assert.Equal(t, "secret-key", gotHeaders.Get("X-Worker-Key"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "stores.pause", gotBody["action"])
	assert.Equal(t, "store-1", gotBody["store_id"])
	assert.True(t, out.OK)
	assert.True(t, out.Paused)
}

func TestDispatchOmitsWorkerKeyWhenUnset(t *testing.T) {
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	d, err := NewHTTPDispatcher(server.URL, "", 5*time.Second, nil)
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), "tenant-1", domain.ActionStoresList, nil, nil)
	require.NoError(t, err)
	_, present := gotHeaders["X-Worker-Key"]
	assert.False(t, present)
}

func TestDispatchValidation(t *testing.T) {
	d, err := NewHTTPDispatcher("https://worker.example.com/dispatch", "key", time.Second, nil)
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), "", domain.ActionStoresList, nil, nil)
	assert.ErrorIs(t, err, ErrMissingTenant)

	err = d.Dispatch(context.Background(), "tenant-1", domain.Action("stores.bogus"), nil, nil)
	assert.ErrorIs(t, err, domain.ErrActionUnknown)
}

func TestDispatchNormalizesWorkerError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    map[string]any
		wantMsg string
	}{
		{
			name:    "error with hint",
			status:  http.StatusOK,
			body:    map[string]any{"ok": false, "error": "store not found", "hint": "check the store id"},
			wantMsg: "store not found (check the store id)",
		},
		{
			name:    "error without hint",
			status:  http.StatusUnprocessableEntity,
			body:    map[string]any{"ok": false, "error": "sku list empty"},
			wantMsg: "sku list empty",
		},
		{
			name:    "no message falls back to generic",
			status:  http.StatusInternalServerError,
			body:    map[string]any{},
			wantMsg: "sync action failed",
		},
		{
			name:    "http failure with ok body still fails",
			status:  http.StatusBadGateway,
			body:    map[string]any{"ok": true},
			wantMsg: "sync action failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			d, err := NewHTTPDispatcher(server.URL, "key", 5*time.Second, nil)
			require.NoError(t, err)

			err = d.Dispatch(context.Background(), "tenant-1", domain.ActionHealthcheck, map[string]any{"store_id": "s"}, nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestDispatchTruncatesLongError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": strings.Repeat("x", 2000),
		})
	}))
	defer server.Close()

	d, err := NewHTTPDispatcher(server.URL, "key", 5*time.Second, nil)
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), "tenant-1", domain.ActionStoresList, nil, nil)
	require.Error(t, err)
	assert.Len(t, err.Error(), 500)
}

func TestDispatchTruncatesOnRuneBoundary(t *testing.T) {
	// the 500th byte of this message falls inside a three-byte rune: a
	// straight byte cut would leak invalid UTF-8 into the message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": "preço inválido: " + strings.Repeat("€", 200),
		})
	}))
	defer server.Close()

	d, err := NewHTTPDispatcher(server.URL, "key", 5*time.Second, nil)
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), "tenant-1", domain.ActionStoresList, nil, nil)
	require.Error(t, err)
	assert.LessOrEqual(t, len(err.Error()), 500)
	assert.True(t, utf8.ValidString(err.Error()))
}

func TestDispatchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	d, err := NewHTTPDispatcher(server.URL, "key", time.Second, nil)
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), "tenant-1", domain.ActionStoresList, nil, nil)
	require.Error(t, err)
	// transport errors are normalized too, never longer than the bound
	assert.LessOrEqual(t, len(err.Error()), 500)
}

func TestDispatchMalformedBodyIntoTypedOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": true, "stores": "not-an-array"}`))
	}))
	defer server.Close()

	d, err := NewHTTPDispatcher(server.URL, "key", 5*time.Second, nil)
	require.NoError(t, err)

	var out struct {
		OK     bool     `json:"ok"`
		Stores []string `json:"stores"`
	}
	err = d.Dispatch(context.Background(), "tenant-1", domain.ActionStoresList, nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid worker response")
}
