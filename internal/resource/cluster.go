package resource

import (
	"context"
	"fmt"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
)

// clusterSpec is the manifest spec block for clusters.
type clusterSpec struct {
	ID            string `yaml:"id,omitempty"`
	DisplayName   string `yaml:"display_name,omitempty"`
	Environment   string `yaml:"environment"`
	Availability  string `yaml:"availability,omitempty"`
	Cloud         string `yaml:"cloud,omitempty"`
	Region        string `yaml:"region,omitempty"`
	Kind          string `yaml:"kind,omitempty"`
	CKU           int    `yaml:"cku,omitempty"`
	EncryptionKey string `yaml:"encryption_key,omitempty"`
	Network       string `yaml:"network,omitempty"`
}

// Allowed values for the enumerated cluster fields.
var (
	clusterAvailabilities = []string{"SINGLE_ZONE", "MULTI_ZONE"}
	clusterClouds         = []string{"AWS", "GCP", "AZURE"}
	clusterKinds          = []string{"Basic", "Standard", "Dedicated"}
)

// ClusterModule manages Kafka clusters.
type ClusterModule struct {
	client *ccloud.Client
}

// NewClusterModule returns the cluster module.
func NewClusterModule(client *ccloud.Client) *ClusterModule {
	return &ClusterModule{client: client}
}

func (m *ClusterModule) Kind() string { return "cluster" }

func (m *ClusterModule) States() []manifest.State {
	return []manifest.State{manifest.StatePresent, manifest.StateAbsent}
}

func (m *ClusterModule) Columns() []string {
	return []string{"ID", "NAME", "ENVIRONMENT", "CLOUD", "REGION", "KIND", "STATUS"}
}

// Apply reconciles one cluster document.
func (m *ClusterModule) Apply(ctx context.Context, doc manifest.Document, opts reconcile.Options) (*Result, error) {
	var spec clusterSpec
	if err := decodeSpec(doc, &spec); err != nil {
		return nil, err
	}
	if spec.DisplayName == "" {
		spec.DisplayName = doc.Name
	}
	if spec.Environment == "" {
		return nil, fmt.Errorf("cluster %q: spec.environment is required", doc.Name)
	}

	if doc.State != manifest.StateAbsent {
		if err := validateClusterSpec(doc.Name, spec); err != nil {
			return nil, err
		}
	}

	h := &clusterHandler{client: m.client, spec: spec}

	var (
		outcome *reconcile.Outcome[ccloud.Cluster]
		err     error
	)
	if doc.State == manifest.StateAbsent {
		outcome, err = reconcile.EnsureAbsent[ccloud.Cluster](ctx, h, opts)
	} else {
		outcome, err = reconcile.Ensure[ccloud.Cluster](ctx, h, opts)
	}
	if err != nil {
		return nil, err
	}

	var resource any
	if outcome.Resource.ID != "" {
		resource = outcome.Resource
	}
	return newResult(m.Kind(), doc.Name, outcome, resource), nil
}

// applyClusterDefaults fills the defaulted fields of a desired cluster.
// Defaults only apply on creation; diffing works on the fields the
// manifest actually set, so an omitted field never reads as drift.
func applyClusterDefaults(spec *clusterSpec) {
	if spec.Availability == "" {
		spec.Availability = "SINGLE_ZONE"
	}
	if spec.Kind == "" {
		spec.Kind = "Basic"
	}
	if spec.Kind == "Dedicated" && spec.CKU == 0 {
		spec.CKU = 1
	}
}

// validateClusterSpec checks the fields a present cluster must carry.
func validateClusterSpec(name string, spec clusterSpec) error {
	if spec.Cloud == "" {
		return fmt.Errorf("cluster %q: spec.cloud is required", name)
	}
	if spec.Region == "" {
		return fmt.Errorf("cluster %q: spec.region is required", name)
	}
	if spec.Availability != "" && !matchAny(clusterAvailabilities, spec.Availability) {
		return fmt.Errorf("cluster %q: invalid availability %q (valid: SINGLE_ZONE, MULTI_ZONE)", name, spec.Availability)
	}
	if !matchAny(clusterClouds, spec.Cloud) {
		return fmt.Errorf("cluster %q: invalid cloud %q (valid: AWS, GCP, AZURE)", name, spec.Cloud)
	}
	if spec.Kind != "" && !matchAny(clusterKinds, spec.Kind) {
		return fmt.Errorf("cluster %q: invalid kind %q (valid: Basic, Standard, Dedicated)", name, spec.Kind)
	}
	if spec.Kind == "Dedicated" && spec.Network == "" {
		return fmt.Errorf("cluster %q: spec.network is required for Dedicated clusters", name)
	}
	return nil
}

// List returns the clusters of the scoped environment.
func (m *ClusterModule) List(ctx context.Context, f Filters) ([]Record, error) {
	if err := f.restrict(m.Kind(), filterIDs, filterNames); err != nil {
		return nil, err
	}
	if f.Environment == "" {
		return nil, fmt.Errorf("listing clusters requires an environment scope (--environment)")
	}

	clusters, err := m.client.ListClusters(ctx, f.Environment)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(clusters))
	for _, cluster := range clusters {
		if !f.matchIDOrName(cluster.ID, clusterName(cluster)) {
			continue
		}
		records = append(records, Record{
			Key:    cluster.ID,
			Row:    clusterRow(cluster),
			Object: cluster,
		})
	}
	return records, nil
}

func clusterRow(c ccloud.Cluster) []string {
	row := []string{c.ID, clusterName(c), "", "", "", "", ""}
	if c.Spec != nil {
		if c.Spec.Environment != nil {
			row[2] = c.Spec.Environment.ID
		}
		row[3] = c.Spec.Cloud
		row[4] = c.Spec.Region
		if c.Spec.Config != nil {
			row[5] = c.Spec.Config.Kind
		}
	}
	if c.Status != nil {
		row[6] = c.Status.Phase
	}
	return row
}

func clusterName(c ccloud.Cluster) string {
	if c.Spec == nil {
		return ""
	}
	return c.Spec.DisplayName
}

func clusterConfigKind(c ccloud.Cluster) string {
	if c.Spec == nil || c.Spec.Config == nil {
		return ""
	}
	return c.Spec.Config.Kind
}

// clusterHandler binds one desired cluster to the control plane.
type clusterHandler struct {
	client *ccloud.Client
	spec   clusterSpec
}

func (h *clusterHandler) Find(ctx context.Context) (ccloud.Cluster, bool, error) {
	clusters, err := h.client.ListClusters(ctx, h.spec.Environment)
	if err != nil {
		// A missing environment cannot contain the cluster.
		if ccloud.IsNotFound(err) {
			return ccloud.Cluster{}, false, nil
		}
		return ccloud.Cluster{}, false, err
	}
	cluster, found := matchByIdentity(clusters, h.spec.ID, h.spec.DisplayName,
		func(c ccloud.Cluster) string { return c.ID },
		clusterName)
	return cluster, found, nil
}

func (h *clusterHandler) Diff(current ccloud.Cluster) (*reconcile.Delta, error) {
	cur := current.Spec
	if cur == nil {
		cur = &ccloud.ClusterSpec{}
	}

	// Placement cannot change after provisioning.
	immutable := []struct {
		field            string
		desired, current string
	}{
		{"availability", h.spec.Availability, cur.Availability},
		{"cloud", h.spec.Cloud, cur.Cloud},
		{"region", h.spec.Region, cur.Region},
	}
	for _, f := range immutable {
		if f.desired != "" && f.current != "" && f.desired != f.current {
			return nil, &reconcile.ImmutableFieldError{
				Kind:    "cluster",
				Name:    h.spec.DisplayName,
				Field:   f.field,
				Desired: f.desired,
				Current: f.current,
			}
		}
	}

	delta := &reconcile.Delta{}
	delta.CompareString("display_name", h.spec.DisplayName, cur.DisplayName)
	delta.CompareString("config.kind", h.spec.Kind, clusterConfigKind(current))

	// The control plane only supports growing Basic into Standard.
	if delta.DifferentAt("config.kind") {
		if !(clusterConfigKind(current) == "Basic" && h.spec.Kind == "Standard") {
			return nil, &reconcile.ImmutableFieldError{
				Kind:    "cluster",
				Name:    h.spec.DisplayName,
				Field:   "config.kind",
				Desired: h.spec.Kind,
				Current: clusterConfigKind(current),
			}
		}
	}
	return delta, nil
}

func (h *clusterHandler) Create(ctx context.Context) (ccloud.Cluster, error) {
	spec := h.spec
	applyClusterDefaults(&spec)

	create := &ccloud.ClusterSpec{
		DisplayName:  spec.DisplayName,
		Availability: spec.Availability,
		Cloud:        spec.Cloud,
		Region:       spec.Region,
		Config: &ccloud.ClusterConfig{
			Kind:          spec.Kind,
			CKU:           spec.CKU,
			EncryptionKey: spec.EncryptionKey,
		},
		Environment: &ccloud.ObjectRef{ID: spec.Environment},
	}
	if spec.Network != "" {
		create.Network = &ccloud.ObjectRef{ID: spec.Network}
	}

	cluster, err := h.client.CreateCluster(ctx, create)
	if err != nil {
		return ccloud.Cluster{}, err
	}
	return *cluster, nil
}

func (h *clusterHandler) Update(ctx context.Context, current ccloud.Cluster, delta *reconcile.Delta) (ccloud.Cluster, error) {
	patch := &ccloud.ClusterSpec{
		// The PATCH endpoint requires the environment reference.
		Environment: &ccloud.ObjectRef{ID: h.spec.Environment},
	}
	if delta.DifferentAt("display_name") {
		patch.DisplayName = h.spec.DisplayName
	}
	if delta.DifferentAt("config.kind") {
		patch.Config = &ccloud.ClusterConfig{Kind: h.spec.Kind}
	}

	cluster, err := h.client.UpdateCluster(ctx, current.ID, patch)
	if err != nil {
		return ccloud.Cluster{}, err
	}
	return *cluster, nil
}

func (h *clusterHandler) Delete(ctx context.Context, current ccloud.Cluster) error {
	return h.client.DeleteCluster(ctx, current.ID, h.spec.Environment)
}
