package resource

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
)

// connectorSpec is the manifest spec block for managed connectors.
type connectorSpec struct {
	Environment string `yaml:"environment"`
	Cluster     string `yaml:"cluster"`

	// Class is the connector plugin, e.g. "DatagenSource".
	Class string `yaml:"class,omitempty"`

	// KafkaKey and KafkaSecret are the cluster credentials the connector
	// produces or consumes with.
	KafkaKey    string `yaml:"kafka_key,omitempty"`
	KafkaSecret string `yaml:"kafka_secret,omitempty"`

	// Config carries the plugin-specific settings. Values of any scalar
	// type are accepted and sent as strings, which is how the connect
	// API stores them.
	Config map[string]any `yaml:"config,omitempty"`
}

// Connector run states as the connect API reports them.
const (
	connectorStateRunning = "RUNNING"
	connectorStatePaused  = "PAUSED"
)

// desiredConfig assembles the full connector configuration: the reserved
// keys first, then the free-form config, which wins on overlap.
func (s connectorSpec) desiredConfig(name string) map[string]string {
	config := map[string]string{"name": name}
	if s.Class != "" {
		config["connector.class"] = s.Class
	}
	if s.KafkaKey != "" {
		config["kafka.api.key"] = s.KafkaKey
	}
	if s.KafkaSecret != "" {
		config["kafka.api.secret"] = s.KafkaSecret
	}
	for k, v := range s.Config {
		config[k] = fmt.Sprintf("%v", v)
	}
	return config
}

// ConnectorModule manages the connectors of a Kafka cluster. Besides
// present and absent, connectors support the paused and running states,
// which reconcile configuration first and run state second.
type ConnectorModule struct {
	client *ccloud.Client
}

// NewConnectorModule returns the connector module.
func NewConnectorModule(client *ccloud.Client) *ConnectorModule {
	return &ConnectorModule{client: client}
}

func (m *ConnectorModule) Kind() string { return "connector" }

func (m *ConnectorModule) States() []manifest.State {
	return []manifest.State{manifest.StatePresent, manifest.StateAbsent, manifest.StatePaused, manifest.StateRunning}
}

func (m *ConnectorModule) Columns() []string {
	return []string{"NAME", "TYPE", "CLASS", "STATE", "TASKS"}
}

// Apply reconciles one connector document.
func (m *ConnectorModule) Apply(ctx context.Context, doc manifest.Document, opts reconcile.Options) (*Result, error) {
	var spec connectorSpec
	if err := decodeSpec(doc, &spec); err != nil {
		return nil, err
	}
	if spec.Environment == "" || spec.Cluster == "" {
		return nil, fmt.Errorf("connector %q: spec.environment and spec.cluster are required", doc.Name)
	}

	h := &connectorHandler{client: m.client, spec: spec, name: doc.Name}

	if doc.State == manifest.StateAbsent {
		outcome, err := reconcile.EnsureAbsent[ccloud.Connector](ctx, h, opts)
		if err != nil {
			return nil, err
		}
		return newResult(m.Kind(), doc.Name, outcome, connectorResource(outcome.Resource)), nil
	}

	outcome, err := reconcile.Ensure[ccloud.Connector](ctx, h, opts)
	if err != nil {
		return nil, err
	}
	result := newResult(m.Kind(), doc.Name, outcome, connectorResource(outcome.Resource))

	// Second pass: drive the run state for paused and running documents.
	var target string
	switch doc.State {
	case manifest.StatePaused:
		target = connectorStatePaused
	case manifest.StateRunning:
		target = connectorStateRunning
	}
	if target == "" || h.runState == target {
		return result, nil
	}

	action := reconcile.ActionResume
	if target == connectorStatePaused {
		action = reconcile.ActionPause
	}
	if !opts.CheckMode {
		var transitionErr error
		if target == connectorStatePaused {
			transitionErr = m.client.PauseConnector(ctx, spec.Environment, spec.Cluster, doc.Name)
		} else {
			transitionErr = m.client.ResumeConnector(ctx, spec.Environment, spec.Cluster, doc.Name)
		}
		if transitionErr != nil {
			return nil, transitionErr
		}
	}

	result.Changed = true
	if result.Action == reconcile.ActionNone {
		result.Action = action
	}
	return result, nil
}

// connectorRecord is the canonical listing shape: the info and status
// blocks merged into one flat record.
type connectorRecord struct {
	Name   string                 `json:"name,omitempty"`
	Type   string                 `json:"type,omitempty"`
	Config map[string]string      `json:"config,omitempty"`
	Tasks  []ccloud.ConnectorTask `json:"tasks,omitempty"`
	Status *ccloud.ConnectorState `json:"status,omitempty"`
}

// List returns the connectors of the scoped cluster.
func (m *ConnectorModule) List(ctx context.Context, f Filters) ([]Record, error) {
	if err := f.restrict(m.Kind(), filterNames, filterTypes, filterClasses); err != nil {
		return nil, err
	}
	if f.Environment == "" || f.Cluster == "" {
		return nil, fmt.Errorf("listing connectors requires environment and cluster scopes (--environment, --cluster)")
	}

	connectors, err := m.client.ListConnectors(ctx, f.Environment, f.Cluster)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(connectors))
	for name := range connectors {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]Record, 0, len(names))
	for _, name := range names {
		connector := connectors[name]
		record := connectorRecord{Name: name}
		if connector.Info != nil {
			record.Type = connector.Info.Type
			record.Config = connector.Info.Config
		}
		if connector.Status != nil {
			record.Tasks = connector.Status.Tasks
			record.Status = connector.Status.Connector
		}

		class := record.Config["connector.class"]
		if !matchAny(f.Names, name) || !matchAny(f.Types, record.Type) || !matchAny(f.Classes, class) {
			continue
		}

		state := ""
		if record.Status != nil {
			state = record.Status.State
		}
		records = append(records, Record{
			Key:    name,
			Row:    []string{name, record.Type, class, state, strconv.Itoa(len(record.Tasks))},
			Object: record,
		})
	}
	return records, nil
}

// connectorResource strips the empty connector so apply results do not
// carry a hollow object.
func connectorResource(c ccloud.Connector) any {
	if c.ID == nil && c.Info == nil && c.Status == nil {
		return nil
	}
	return c
}

// connectorRunState extracts the run state from an expanded connector.
func connectorRunState(c ccloud.Connector) string {
	if c.Status != nil && c.Status.Connector != nil {
		return c.Status.Connector.State
	}
	return ""
}

// connectorHandler binds one desired connector to the control plane. It
// remembers the run state seen during Find so the module can decide
// pause and resume transitions afterwards.
type connectorHandler struct {
	client   *ccloud.Client
	spec     connectorSpec
	name     string
	runState string
}

func (h *connectorHandler) Find(ctx context.Context) (ccloud.Connector, bool, error) {
	connectors, err := h.client.ListConnectors(ctx, h.spec.Environment, h.spec.Cluster)
	if err != nil {
		// A missing environment or cluster cannot contain the connector.
		if ccloud.IsNotFound(err) {
			return ccloud.Connector{}, false, nil
		}
		return ccloud.Connector{}, false, err
	}

	connector, found := connectors[h.name]
	if found {
		h.runState = connectorRunState(connector)
	}
	return connector, found, nil
}

func (h *connectorHandler) Diff(current ccloud.Connector) (*reconcile.Delta, error) {
	currentConfig := map[string]string{}
	if current.Info != nil && current.Info.Config != nil {
		currentConfig = current.Info.Config
	}

	// The API never returns credential values, so they cannot take part
	// in the comparison; they still ride along in every update body.
	desired := h.spec.desiredConfig(h.name)
	comparable := make(map[string]string, len(desired))
	for k, v := range desired {
		if k == "kafka.api.key" || k == "kafka.api.secret" {
			continue
		}
		comparable[k] = v
	}

	delta := &reconcile.Delta{}
	delta.CompareMap("config", comparable, currentConfig)
	return delta, nil
}

func (h *connectorHandler) Create(ctx context.Context) (ccloud.Connector, error) {
	if h.spec.Class == "" {
		return ccloud.Connector{}, fmt.Errorf("connector %q: spec.class is required to create it", h.name)
	}

	info, err := h.client.CreateConnector(ctx, h.spec.Environment, h.spec.Cluster, h.name, h.spec.desiredConfig(h.name))
	if err != nil {
		return ccloud.Connector{}, err
	}
	// New connectors start running.
	h.runState = connectorStateRunning
	return ccloud.Connector{Info: info}, nil
}

func (h *connectorHandler) Update(ctx context.Context, current ccloud.Connector, delta *reconcile.Delta) (ccloud.Connector, error) {
	info, err := h.client.UpdateConnectorConfig(ctx, h.spec.Environment, h.spec.Cluster, h.name, h.spec.desiredConfig(h.name))
	if err != nil {
		return ccloud.Connector{}, err
	}
	return ccloud.Connector{ID: current.ID, Info: info, Status: current.Status}, nil
}

func (h *connectorHandler) Delete(ctx context.Context, current ccloud.Connector) error {
	return h.client.DeleteConnector(ctx, h.spec.Environment, h.spec.Cluster, h.name)
}
