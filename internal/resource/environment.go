package resource

import (
	"context"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
)

// environmentSpec is the manifest spec block for environments.
type environmentSpec struct {
	ID          string `yaml:"id,omitempty"`
	DisplayName string `yaml:"display_name,omitempty"`
}

// EnvironmentModule manages organizational environments.
type EnvironmentModule struct {
	client *ccloud.Client
}

// NewEnvironmentModule returns the environment module.
func NewEnvironmentModule(client *ccloud.Client) *EnvironmentModule {
	return &EnvironmentModule{client: client}
}

func (m *EnvironmentModule) Kind() string { return "environment" }

func (m *EnvironmentModule) States() []manifest.State {
	return []manifest.State{manifest.StatePresent, manifest.StateAbsent}
}

func (m *EnvironmentModule) Columns() []string {
	return []string{"ID", "NAME", "CREATED"}
}

// Apply reconciles one environment document.
func (m *EnvironmentModule) Apply(ctx context.Context, doc manifest.Document, opts reconcile.Options) (*Result, error) {
	var spec environmentSpec
	if err := decodeSpec(doc, &spec); err != nil {
		return nil, err
	}
	if spec.DisplayName == "" {
		spec.DisplayName = doc.Name
	}

	h := &environmentHandler{client: m.client, spec: spec}

	var (
		outcome *reconcile.Outcome[ccloud.Environment]
		err     error
	)
	if doc.State == manifest.StateAbsent {
		outcome, err = reconcile.EnsureAbsent[ccloud.Environment](ctx, h, opts)
	} else {
		outcome, err = reconcile.Ensure[ccloud.Environment](ctx, h, opts)
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

// List returns environments matching the filters.
func (m *EnvironmentModule) List(ctx context.Context, f Filters) ([]Record, error) {
	if err := f.restrict(m.Kind(), filterIDs, filterNames); err != nil {
		return nil, err
	}

	envs, err := m.client.ListEnvironments(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(envs))
	for _, env := range envs {
		if !f.matchIDOrName(env.ID, env.DisplayName) {
			continue
		}
		records = append(records, Record{
			Key:    env.ID,
			Row:    []string{env.ID, env.DisplayName, metaCreated(env.Metadata)},
			Object: env,
		})
	}
	return records, nil
}

// environmentHandler binds one desired environment to the control plane.
type environmentHandler struct {
	client *ccloud.Client
	spec   environmentSpec
}

func (h *environmentHandler) Find(ctx context.Context) (ccloud.Environment, bool, error) {
	envs, err := h.client.ListEnvironments(ctx)
	if err != nil {
		return ccloud.Environment{}, false, err
	}
	env, found := matchByIdentity(envs, h.spec.ID, h.spec.DisplayName,
		func(e ccloud.Environment) string { return e.ID },
		func(e ccloud.Environment) string { return e.DisplayName })
	return env, found, nil
}

func (h *environmentHandler) Diff(current ccloud.Environment) (*reconcile.Delta, error) {
	delta := &reconcile.Delta{}
	delta.CompareString("display_name", h.spec.DisplayName, current.DisplayName)
	return delta, nil
}

func (h *environmentHandler) Create(ctx context.Context) (ccloud.Environment, error) {
	env, err := h.client.CreateEnvironment(ctx, h.spec.DisplayName)
	if err != nil {
		return ccloud.Environment{}, err
	}
	return *env, nil
}

func (h *environmentHandler) Update(ctx context.Context, current ccloud.Environment, delta *reconcile.Delta) (ccloud.Environment, error) {
	env, err := h.client.UpdateEnvironment(ctx, current.ID, h.spec.DisplayName)
	if err != nil {
		return ccloud.Environment{}, err
	}
	return *env, nil
}

func (h *environmentHandler) Delete(ctx context.Context, current ccloud.Environment) error {
	return h.client.DeleteEnvironment(ctx, current.ID)
}
