package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
)

const connectorsBase = "/connect/v1/environments/env-1/clusters/lkc-1/connectors"

func connectorFixture(name, class, state string, config map[string]string) ccloud.Connector {
	full := map[string]string{"name": name, "connector.class": class}
	for k, v := range config {
		full[k] = v
	}
	return ccloud.Connector{
		ID:   &ccloud.ObjectRef{ID: "lcc-1"},
		Info: &ccloud.ConnectorInfo{Name: name, Type: "sink", Config: full},
		Status: &ccloud.ConnectorStatus{
			Name:      name,
			Type:      "sink",
			Connector: &ccloud.ConnectorState{State: state},
			Tasks:     []ccloud.ConnectorTask{{ID: 0, State: state}},
		},
	}
}

func connectorSpecYAML(extra map[string]any) map[string]any {
	spec := map[string]any{
		"environment": "env-1",
		"cluster":     "lkc-1",
	}
	for k, v := range extra {
		spec[k] = v
	}
	return spec
}

func TestConnectorModule_ApplyRequiresScopes(t *testing.T) {
	m := NewConnectorModule(newTestClient(t, http.NewServeMux()))

	_, err := m.Apply(context.Background(), doc("connector", "sink-1", manifest.StatePresent,
		map[string]any{"environment": "env-1"}), reconcile.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec.environment and spec.cluster are required")
}

func TestConnectorModule_ApplyCreates(t *testing.T) {
	var created struct {
		Name   string            `json:"name"`
		Config map[string]string `json:"config"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc(connectorsBase, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "status,info", r.URL.Query().Get("expand"))
			writeJSON(t, w, http.StatusOK, map[string]ccloud.Connector{})
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			writeJSON(t, w, http.StatusCreated, ccloud.ConnectorInfo{Name: created.Name, Type: "sink", Config: created.Config})
		}
	})
	m := NewConnectorModule(newTestClient(t, mux))

	spec := connectorSpecYAML(map[string]any{
		"class":        "DatagenSource",
		"kafka_key":    "KKEY",
		"kafka_secret": "KSECRET",
		"config":       map[string]any{"kafka.topic": "orders", "tasks.max": 1},
	})
	result, err := m.Apply(context.Background(), doc("connector", "sink-1", manifest.StatePresent, spec), reconcile.Options{})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, reconcile.ActionCreate, result.Action)

	assert.Equal(t, "sink-1", created.Name)
	assert.Equal(t, map[string]string{
		"name":             "sink-1",
		"connector.class":  "DatagenSource",
		"kafka.api.key":    "KKEY",
		"kafka.api.secret": "KSECRET",
		"kafka.topic":      "orders",
		"tasks.max":        "1",
	}, created.Config, "scalar config values are sent as strings")
}

func TestConnectorModule_ApplyCreateRequiresClass(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(connectorsBase, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]ccloud.Connector{})
	})
	m := NewConnectorModule(newTestClient(t, mux))

	_, err := m.Apply(context.Background(), doc("connector", "sink-1", manifest.StatePresent, connectorSpecYAML(nil)), reconcile.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec.class is required")
}

func TestConnectorModule_ApplyCredentialsAreNotDrift(t *testing.T) {
	existing := connectorFixture("sink-1", "DatagenSource", "RUNNING", map[string]string{
		"kafka.topic": "orders",
		// The control plane keeps internal keys the manifest never sets.
		"cloud.provider": "aws",
	})
	mux := http.NewServeMux()
	mux.HandleFunc(connectorsBase, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method, "an in-shape connector must not be written")
		writeJSON(t, w, http.StatusOK, map[string]ccloud.Connector{"sink-1": existing})
	})
	m := NewConnectorModule(newTestClient(t, mux))

	spec := connectorSpecYAML(map[string]any{
		"class":        "DatagenSource",
		"kafka_key":    "KKEY",
		"kafka_secret": "KSECRET",
		"config":       map[string]any{"kafka.topic": "orders"},
	})
	result, err := m.Apply(context.Background(), doc("connector", "sink-1", manifest.StatePresent, spec), reconcile.Options{})
	require.NoError(t, err)

	assert.False(t, result.Changed, "credentials and unmanaged keys must not read as drift")
	assert.Equal(t, reconcile.ActionNone, result.Action)
}

func TestConnectorModule_ApplyUpdatesConfig(t *testing.T) {
	existing := connectorFixture("sink-1", "DatagenSource", "RUNNING", map[string]string{"kafka.topic": "orders"})
	var put map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc(connectorsBase, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]ccloud.Connector{"sink-1": existing})
	})
	mux.HandleFunc(connectorsBase+"/sink-1/config", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&put))
		writeJSON(t, w, http.StatusOK, ccloud.ConnectorInfo{Name: "sink-1", Type: "sink", Config: put})
	})
	m := NewConnectorModule(newTestClient(t, mux))

	spec := connectorSpecYAML(map[string]any{
		"class":        "DatagenSource",
		"kafka_key":    "KKEY",
		"kafka_secret": "KSECRET",
		"config":       map[string]any{"kafka.topic": "payments"},
	})
	result, err := m.Apply(context.Background(), doc("connector", "sink-1", manifest.StatePresent, spec), reconcile.Options{})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, reconcile.ActionUpdate, result.Action)
	assert.True(t, result.Delta.DifferentAt("config.kafka.topic"))
	assert.Equal(t, "payments", put["kafka.topic"])
	assert.Equal(t, "KKEY", put["kafka.api.key"], "credentials ride along in the update body")
	assert.Equal(t, "KSECRET", put["kafka.api.secret"])
}

func TestConnectorModule_ApplyRunStateTransitions(t *testing.T) {
	tests := []struct {
		name         string
		docState     manifest.State
		currentState string
		wantCall     string
		wantAction   reconcile.Action
	}{
		{
			name:         "pause a running connector",
			docState:     manifest.StatePaused,
			currentState: "RUNNING",
			wantCall:     connectorsBase + "/sink-1/pause",
			wantAction:   reconcile.ActionPause,
		},
		{
			name:         "resume a paused connector",
			docState:     manifest.StateRunning,
			currentState: "PAUSED",
			wantCall:     connectorsBase + "/sink-1/resume",
			wantAction:   reconcile.ActionResume,
		},
		{
			name:         "paused connector stays paused",
			docState:     manifest.StatePaused,
			currentState: "PAUSED",
			wantAction:   reconcile.ActionNone,
		},
		{
			name:         "present leaves the run state alone",
			docState:     manifest.StatePresent,
			currentState: "PAUSED",
			wantAction:   reconcile.ActionNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := connectorFixture("sink-1", "DatagenSource", tt.currentState, map[string]string{"kafka.topic": "orders"})
			var calledPath string
			mux := http.NewServeMux()
			mux.HandleFunc(connectorsBase, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusOK, map[string]ccloud.Connector{"sink-1": existing})
			})
			if tt.wantCall != "" {
				mux.HandleFunc(tt.wantCall, func(w http.ResponseWriter, r *http.Request) {
					require.Equal(t, http.MethodPut, r.Method)
					calledPath = r.URL.Path
					w.WriteHeader(http.StatusAccepted)
				})
			}
			m := NewConnectorModule(newTestClient(t, mux))

			spec := connectorSpecYAML(map[string]any{
				"class":  "DatagenSource",
				"config": map[string]any{"kafka.topic": "orders"},
			})
			result, err := m.Apply(context.Background(), doc("connector", "sink-1", tt.docState, spec), reconcile.Options{})
			require.NoError(t, err)

			assert.Equal(t, tt.wantCall, calledPath)
			assert.Equal(t, tt.wantAction, result.Action)
			assert.Equal(t, tt.wantCall != "", result.Changed)
		})
	}
}

func TestConnectorModule_ApplyPausedCheckModeReportsWithoutCalling(t *testing.T) {
	existing := connectorFixture("sink-1", "DatagenSource", "RUNNING", map[string]string{"kafka.topic": "orders"})
	mux := http.NewServeMux()
	mux.HandleFunc(connectorsBase, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method, "check mode must not write")
		writeJSON(t, w, http.StatusOK, map[string]ccloud.Connector{"sink-1": existing})
	})
	m := NewConnectorModule(newTestClient(t, mux))

	spec := connectorSpecYAML(map[string]any{
		"class":  "DatagenSource",
		"config": map[string]any{"kafka.topic": "orders"},
	})
	result, err := m.Apply(context.Background(), doc("connector", "sink-1", manifest.StatePaused, spec), reconcile.Options{CheckMode: true})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, reconcile.ActionPause, result.Action)
}

func TestConnectorModule_ApplyPausedCreatesThenPauses(t *testing.T) {
	var createdName string
	paused := false
	mux := http.NewServeMux()
	mux.HandleFunc(connectorsBase, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, http.StatusOK, map[string]ccloud.Connector{})
		case http.MethodPost:
			var body struct {
				Name   string            `json:"name"`
				Config map[string]string `json:"config"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			createdName = body.Name
			writeJSON(t, w, http.StatusCreated, ccloud.ConnectorInfo{Name: body.Name, Config: body.Config})
		}
	})
	mux.HandleFunc(connectorsBase+"/sink-1/pause", func(w http.ResponseWriter, r *http.Request) {
		paused = true
		w.WriteHeader(http.StatusAccepted)
	})
	m := NewConnectorModule(newTestClient(t, mux))

	spec := connectorSpecYAML(map[string]any{"class": "DatagenSource"})
	result, err := m.Apply(context.Background(), doc("connector", "sink-1", manifest.StatePaused, spec), reconcile.Options{})
	require.NoError(t, err)

	assert.Equal(t, "sink-1", createdName)
	assert.True(t, paused, "a new connector starts running and must be paused")
	assert.True(t, result.Changed)
	assert.Equal(t, reconcile.ActionCreate, result.Action, "the create is the headline action")
}

func TestConnectorModule_ApplyAbsentInMissingCluster(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	m := NewConnectorModule(newTestClient(t, mux))

	result, err := m.Apply(context.Background(), doc("connector", "sink-1", manifest.StateAbsent, connectorSpecYAML(nil)), reconcile.Options{})
	require.NoError(t, err, "a connector in a missing cluster is already absent")

	assert.False(t, result.Changed)
	assert.Equal(t, reconcile.ActionNone, result.Action)
}

func TestConnectorModule_ApplyAbsentDeletes(t *testing.T) {
	existing := connectorFixture("sink-1", "DatagenSource", "RUNNING", nil)
	deleted := false
	mux := http.NewServeMux()
	mux.HandleFunc(connectorsBase, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]ccloud.Connector{"sink-1": existing})
	})
	mux.HandleFunc(connectorsBase+"/sink-1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})
	m := NewConnectorModule(newTestClient(t, mux))

	result, err := m.Apply(context.Background(), doc("connector", "sink-1", manifest.StateAbsent, connectorSpecYAML(nil)), reconcile.Options{})
	require.NoError(t, err)

	assert.True(t, deleted)
	assert.True(t, result.Changed)
	assert.Equal(t, reconcile.ActionDelete, result.Action)
}

func TestConnectorModule_ListRequiresScopes(t *testing.T) {
	m := NewConnectorModule(newTestClient(t, http.NewServeMux()))

	_, err := m.List(context.Background(), Filters{Environment: "env-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--environment, --cluster")
}

func TestConnectorModule_List(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(connectorsBase, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]ccloud.Connector{
			"zeta":  connectorFixture("zeta", "S3Sink", "PAUSED", nil),
			"alpha": connectorFixture("alpha", "DatagenSource", "RUNNING", nil),
		})
	})
	m := NewConnectorModule(newTestClient(t, mux))

	scope := Filters{Environment: "env-1", Cluster: "lkc-1"}

	records, err := m.List(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "alpha", records[0].Key, "listings are sorted by name")
	assert.Equal(t, []string{"alpha", "sink", "DatagenSource", "RUNNING", "1"}, records[0].Row)
	assert.Equal(t, []string{"zeta", "sink", "S3Sink", "PAUSED", "1"}, records[1].Row)

	byClass := scope
	byClass.Classes = []string{"S3Sink"}
	records, err = m.List(context.Background(), byClass)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "zeta", records[0].Key)

	byOwner := scope
	byOwner.Owners = []string{"sa-1"}
	_, err = m.List(context.Background(), byOwner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--owner is not supported for connector")
}
