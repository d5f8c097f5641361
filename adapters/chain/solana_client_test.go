package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRPCServer(t *testing.T, results map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, ok := results[req.Method]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  result,
		})
	}))
}

func TestClient_Health(t *testing.T) {
	srv := newRPCServer(t, map[string]any{"getHealth": "ok"})
	defer srv.Close()

	c := NewClient(WithRPCURL(srv.URL))
	assert.NoError(t, c.Health(context.Background()))
}

func TestClient_HealthBehind(t *testing.T) {
	srv := newRPCServer(t, map[string]any{"getHealth": "behind"})
	defer srv.Close()

	c := NewClient(WithRPCURL(srv.URL))
	assert.Error(t, c.Health(context.Background()))
}

func TestClient_Slot(t *testing.T) {
	srv := newRPCServer(t, map[string]any{"getSlot": 348223412})
	defer srv.Close()

	c := NewClient(WithRPCURL(srv.URL))
	slot, err := c.Slot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(348223412), slot)
}

func TestClient_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`))
	}))
	defer srv.Close()

	c := NewClient(WithRPCURL(srv.URL))
	err := c.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method not found")
}

func TestClient_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(WithRPCURL(srv.URL))
	err := c.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
