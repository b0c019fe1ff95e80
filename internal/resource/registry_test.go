package resource

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccloudctl/internal/manifest"
)

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry(newTestClient(t, http.NewServeMux()))

	tests := []struct {
		lookup string
		kind   string
	}{
		{"environment", "environment"},
		{"env", "environment"},
		{"Environments", "environment"},
		{"cluster", "cluster"},
		{"sa", "service-account"},
		{"ServiceAccounts", "service-account"},
		{"api-key", "api-key"},
		{"keys", "api-key"},
		{"member", "user"},
		{"rb", "role-binding"},
		{"connect", "connector"},
	}

	for _, tt := range tests {
		t.Run(tt.lookup, func(t *testing.T) {
			m, err := r.Get(tt.lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, m.Kind())
		})
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := DefaultRegistry(newTestClient(t, http.NewServeMux()))

	_, err := r.Get("topic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource kind 'topic'")
	assert.Contains(t, err.Error(), "Available kinds: api-key, cluster, connector, environment, role-binding, service-account, user")
}

func TestRegistry_Kinds(t *testing.T) {
	r := DefaultRegistry(newTestClient(t, http.NewServeMux()))

	assert.Equal(t, []string{
		"api-key",
		"cluster",
		"connector",
		"environment",
		"role-binding",
		"service-account",
		"user",
	}, r.Kinds())
}

func TestSupportsState(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	env := NewEnvironmentModule(client)
	assert.True(t, SupportsState(env, manifest.StatePresent))
	assert.True(t, SupportsState(env, manifest.StateAbsent))
	assert.False(t, SupportsState(env, manifest.StatePaused))

	connector := NewConnectorModule(client)
	assert.True(t, SupportsState(connector, manifest.StatePaused))
	assert.True(t, SupportsState(connector, manifest.StateRunning))
}
