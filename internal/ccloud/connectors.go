package ccloud

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ConnectorState is the running state of a connector or one of its tasks.
type ConnectorState struct {
	State    string `json:"state,omitempty"`
	Trace    string `json:"trace,omitempty"`
	WorkerID string `json:"worker_id,omitempty"`
}

// ConnectorTask is the status of a single connector task.
type ConnectorTask struct {
	ID       int    `json:"id"`
	State    string `json:"state,omitempty"`
	WorkerID string `json:"worker_id,omitempty"`
	Trace    string `json:"trace,omitempty"`
}

// ConnectorStatus is the expanded status block of a connector.
type ConnectorStatus struct {
	Name      string          `json:"name,omitempty"`
	Type      string          `json:"type,omitempty"`
	Connector *ConnectorState `json:"connector,omitempty"`
	Tasks     []ConnectorTask `json:"tasks,omitempty"`
}

// ConnectorInfo is the expanded info block of a connector: its name, type
// and full configuration map.
type ConnectorInfo struct {
	Name   string            `json:"name,omitempty"`
	Type   string            `json:"type,omitempty"`
	Config map[string]string `json:"config,omitempty"`
}

// Connector is one entry of the expanded connector listing.
type Connector struct {
	ID     *ObjectRef       `json:"id,omitempty"`
	Info   *ConnectorInfo   `json:"info,omitempty"`
	Status *ConnectorStatus `json:"status,omitempty"`
}

// connectorsPath builds the cluster-scoped connectors collection path.
func connectorsPath(environmentID, clusterID string) string {
	return fmt.Sprintf("/connect/v1/environments/%s/clusters/%s/connectors", environmentID, clusterID)
}

// ListConnectors returns the connectors of one cluster keyed by name.
// Unlike the other collections this endpoint answers with a map, expanded
// with both status and info blocks.
func (c *Client) ListConnectors(ctx context.Context, environmentID, clusterID string) (map[string]Connector, error) {
	if environmentID == "" || clusterID == "" {
		return nil, fmt.Errorf("environment and cluster ids are required to list connectors")
	}
	query := url.Values{
		"expand":    {"status,info"},
		"page_size": {strconv.Itoa(defaultPageSize)},
	}
	var connectors map[string]Connector
	err := c.do(ctx, http.MethodGet, connectorsPath(environmentID, clusterID), query, nil, &connectors)
	if err != nil {
		return nil, fmt.Errorf("failed to list connectors in %s/%s: %w", environmentID, clusterID, err)
	}
	return connectors, nil
}

// CreateConnector submits a new connector with the given configuration.
func (c *Client) CreateConnector(ctx context.Context, environmentID, clusterID, name string, config map[string]string) (*ConnectorInfo, error) {
	body := map[string]any{
		"name":   name,
		"config": config,
	}
	var info ConnectorInfo
	err := c.do(ctx, http.MethodPost, connectorsPath(environmentID, clusterID), nil, body, &info)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector %q: %w", name, err)
	}
	return &info, nil
}

// UpdateConnectorConfig replaces the configuration of a connector. The
// endpoint takes the full config map, not a delta.
func (c *Client) UpdateConnectorConfig(ctx context.Context, environmentID, clusterID, name string, config map[string]string) (*ConnectorInfo, error) {
	path := connectorsPath(environmentID, clusterID) + "/" + name + "/config"
	var info ConnectorInfo
	if err := c.do(ctx, http.MethodPut, path, nil, config, &info); err != nil {
		return nil, fmt.Errorf("failed to update connector %q: %w", name, err)
	}
	return &info, nil
}

// DeleteConnector removes a connector. A connector that is already gone
// counts as deleted.
func (c *Client) DeleteConnector(ctx context.Context, environmentID, clusterID, name string) error {
	err := c.do(ctx, http.MethodDelete, connectorsPath(environmentID, clusterID)+"/"+name, nil, nil, nil)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete connector %q: %w", name, err)
	}
	return nil
}

// PauseConnector suspends a running connector and its tasks.
func (c *Client) PauseConnector(ctx context.Context, environmentID, clusterID, name string) error {
	path := connectorsPath(environmentID, clusterID) + "/" + name + "/pause"
	if err := c.do(ctx, http.MethodPut, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to pause connector %q: %w", name, err)
	}
	return nil
}

// ResumeConnector resumes a paused connector and its tasks.
func (c *Client) ResumeConnector(ctx context.Context, environmentID, clusterID, name string) error {
	path := connectorsPath(environmentID, clusterID) + "/" + name + "/resume"
	if err := c.do(ctx, http.MethodPut, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to resume connector %q: %w", name, err)
	}
	return nil
}
