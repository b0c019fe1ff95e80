package resource

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
)

// newTestClient starts a fake control plane and returns a client bound
// to it.
func newTestClient(t *testing.T, handler http.Handler) *ccloud.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ccloud.NewClient(ccloud.Options{
		Endpoint:   server.URL,
		APIKey:     "test-key",
		APISecret:  "test-secret",
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return client
}

// writeList writes a collection envelope holding the given items.
func writeList(t *testing.T, w http.ResponseWriter, kind string, items ...any) {
	t.Helper()
	if items == nil {
		items = []any{}
	}
	payload := map[string]any{
		"kind":     kind,
		"metadata": map[string]any{},
		"data":     items,
	}
	require.NoError(t, json.NewEncoder(w).Encode(payload))
}

// writeJSON writes an arbitrary JSON response.
func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// doc builds a manifest document for apply tests.
func doc(kind, name string, state manifest.State, spec map[string]any) manifest.Document {
	return manifest.Document{Kind: kind, Name: name, State: state, Spec: spec}
}
