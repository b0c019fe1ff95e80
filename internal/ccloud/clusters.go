package ccloud

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const clustersPath = "/cmk/v2/clusters"

// ClusterConfig selects the cluster type and its sizing.
type ClusterConfig struct {
	Kind          string `json:"kind,omitempty"`
	CKU           int    `json:"cku,omitempty"`
	EncryptionKey string `json:"encryption_key,omitempty"`
}

// ClusterSpec is the desired and observed configuration of a cluster.
type ClusterSpec struct {
	DisplayName            string         `json:"display_name,omitempty"`
	Availability           string         `json:"availability,omitempty"`
	Cloud                  string         `json:"cloud,omitempty"`
	Region                 string         `json:"region,omitempty"`
	Config                 *ClusterConfig `json:"config,omitempty"`
	Environment            *ObjectRef     `json:"environment,omitempty"`
	Network                *ObjectRef     `json:"network,omitempty"`
	HTTPEndpoint           string         `json:"http_endpoint,omitempty"`
	APIEndpoint            string         `json:"api_endpoint,omitempty"`
	KafkaBootstrapEndpoint string         `json:"kafka_bootstrap_endpoint,omitempty"`
}

// ClusterStatus is the observed state of a cluster.
type ClusterStatus struct {
	Phase string `json:"phase,omitempty"`
	CKU   int    `json:"cku,omitempty"`
}

// Cluster is a Kafka cluster inside an environment.
type Cluster struct {
	APIVersion string         `json:"api_version,omitempty"`
	Kind       string         `json:"kind,omitempty"`
	ID         string         `json:"id,omitempty"`
	Spec       *ClusterSpec   `json:"spec,omitempty"`
	Status     *ClusterStatus `json:"status,omitempty"`
	Metadata   *ObjectMeta    `json:"metadata,omitempty"`
}

// ListClusters returns the clusters of one environment. Clusters only
// exist inside an environment, so the scope is mandatory.
func (c *Client) ListClusters(ctx context.Context, environmentID string) ([]Cluster, error) {
	if environmentID == "" {
		return nil, fmt.Errorf("environment id is required to list clusters")
	}
	query := url.Values{"environment": {environmentID}}
	raw, err := c.listAll(ctx, clustersPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters in %s: %w", environmentID, err)
	}
	return decodeItems[Cluster](raw)
}

// CreateCluster provisions a new cluster from the given spec. The spec
// must carry the environment reference.
func (c *Client) CreateCluster(ctx context.Context, spec *ClusterSpec) (*Cluster, error) {
	body := map[string]*ClusterSpec{"spec": spec}
	var cluster Cluster
	if err := c.do(ctx, http.MethodPost, clustersPath, nil, body, &cluster); err != nil {
		return nil, fmt.Errorf("failed to create cluster %q: %w", spec.DisplayName, err)
	}
	return &cluster, nil
}

// UpdateCluster patches the mutable parts of a cluster spec. The control
// plane insists on the environment reference being present in the patch.
func (c *Client) UpdateCluster(ctx context.Context, id string, spec *ClusterSpec) (*Cluster, error) {
	body := map[string]*ClusterSpec{"spec": spec}
	var cluster Cluster
	if err := c.do(ctx, http.MethodPatch, clustersPath+"/"+id, nil, body, &cluster); err != nil {
		return nil, fmt.Errorf("failed to update cluster %s: %w", id, err)
	}
	return &cluster, nil
}

// DeleteCluster removes a cluster from its environment. A cluster that is
// already gone counts as deleted.
func (c *Client) DeleteCluster(ctx context.Context, id, environmentID string) error {
	query := url.Values{"environment": {environmentID}}
	err := c.do(ctx, http.MethodDelete, clustersPath+"/"+id, query, nil, nil)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete cluster %s: %w", id, err)
	}
	return nil
}
