package resource

import (
	"context"
	"fmt"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
)

// apiKeySpec is the manifest spec block for API keys.
type apiKeySpec struct {
	ID          string `yaml:"id,omitempty"`
	DisplayName string `yaml:"display_name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Owner       string `yaml:"owner,omitempty"`
	Resource    string `yaml:"resource,omitempty"`
}

// APIKeyModule manages API keys.
type APIKeyModule struct {
	client *ccloud.Client
}

// NewAPIKeyModule returns the API key module.
func NewAPIKeyModule(client *ccloud.Client) *APIKeyModule {
	return &APIKeyModule{client: client}
}

func (m *APIKeyModule) Kind() string { return "api-key" }

func (m *APIKeyModule) States() []manifest.State {
	return []manifest.State{manifest.StatePresent, manifest.StateAbsent}
}

func (m *APIKeyModule) Columns() []string {
	return []string{"ID", "NAME", "OWNER", "RESOURCE", "DESCRIPTION"}
}

// Apply reconciles one API key document. The secret appears once in the
// create result and can never be fetched again.
func (m *APIKeyModule) Apply(ctx context.Context, doc manifest.Document, opts reconcile.Options) (*Result, error) {
	var spec apiKeySpec
	if err := decodeSpec(doc, &spec); err != nil {
		return nil, err
	}
	if spec.DisplayName == "" {
		spec.DisplayName = doc.Name
	}
	if doc.State != manifest.StateAbsent && spec.Owner == "" {
		return nil, fmt.Errorf("api-key %q: spec.owner is required", doc.Name)
	}

	h := &apiKeyHandler{client: m.client, spec: spec}

	var (
		outcome *reconcile.Outcome[ccloud.FlatAPIKey]
		err     error
	)
	if doc.State == manifest.StateAbsent {
		outcome, err = reconcile.EnsureAbsent[ccloud.FlatAPIKey](ctx, h, opts)
	} else {
		outcome, err = reconcile.Ensure[ccloud.FlatAPIKey](ctx, h, opts)
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

// List returns API keys matching the filters. Secrets are never part of
// listings; the control plane only reveals them at creation.
func (m *APIKeyModule) List(ctx context.Context, f Filters) ([]Record, error) {
	if err := f.restrict(m.Kind(), filterIDs, filterNames, filterOwners); err != nil {
		return nil, err
	}

	keys, err := m.client.ListAPIKeys(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		flat := key.Flatten()
		if !f.matchIDOrName(flat.ID, flat.Name) || !matchAny(f.Owners, flat.Owner) {
			continue
		}
		records = append(records, Record{
			Key:    flat.ID,
			Row:    []string{flat.ID, flat.Name, flat.Owner, flat.Resource, flat.Description},
			Object: flat,
		})
	}
	return records, nil
}

// apiKeyHandler binds one desired API key to the control plane. It works
// on the flattened shape so matching and diffing read naturally.
type apiKeyHandler struct {
	client *ccloud.Client
	spec   apiKeySpec
}

func (h *apiKeyHandler) Find(ctx context.Context) (ccloud.FlatAPIKey, bool, error) {
	keys, err := h.client.ListAPIKeys(ctx)
	if err != nil {
		return ccloud.FlatAPIKey{}, false, err
	}
	flat := make([]ccloud.FlatAPIKey, 0, len(keys))
	for _, key := range keys {
		flat = append(flat, key.Flatten())
	}
	key, found := matchByIdentity(flat, h.spec.ID, h.spec.DisplayName,
		func(k ccloud.FlatAPIKey) string { return k.ID },
		func(k ccloud.FlatAPIKey) string { return k.Name })
	return key, found, nil
}

func (h *apiKeyHandler) Diff(current ccloud.FlatAPIKey) (*reconcile.Delta, error) {
	// Keys cannot move between owners or resources; they get recreated.
	if h.spec.Owner != "" && h.spec.Owner != current.Owner {
		return nil, &reconcile.ImmutableFieldError{
			Kind:    "api-key",
			Name:    h.spec.DisplayName,
			Field:   "owner",
			Desired: h.spec.Owner,
			Current: current.Owner,
		}
	}
	if h.spec.Resource != "" && h.spec.Resource != current.Resource {
		return nil, &reconcile.ImmutableFieldError{
			Kind:    "api-key",
			Name:    h.spec.DisplayName,
			Field:   "resource",
			Desired: h.spec.Resource,
			Current: current.Resource,
		}
	}

	delta := &reconcile.Delta{}
	delta.CompareString("display_name", h.spec.DisplayName, current.Name)
	delta.CompareString("description", h.spec.Description, current.Description)
	return delta, nil
}

func (h *apiKeyHandler) Create(ctx context.Context) (ccloud.FlatAPIKey, error) {
	spec := &ccloud.APIKeySpec{
		DisplayName: h.spec.DisplayName,
		Description: h.spec.Description,
		Owner:       &ccloud.ObjectRef{ID: h.spec.Owner},
	}
	if h.spec.Resource != "" {
		spec.Resource = &ccloud.ObjectRef{ID: h.spec.Resource}
	}

	key, err := h.client.CreateAPIKey(ctx, spec)
	if err != nil {
		return ccloud.FlatAPIKey{}, err
	}
	return key.Flatten(), nil
}

func (h *apiKeyHandler) Update(ctx context.Context, current ccloud.FlatAPIKey, delta *reconcile.Delta) (ccloud.FlatAPIKey, error) {
	name := h.spec.DisplayName
	if name == "" {
		name = current.Name
	}
	description := h.spec.Description
	if description == "" {
		description = current.Description
	}

	key, err := h.client.UpdateAPIKey(ctx, current.ID, name, description)
	if err != nil {
		return ccloud.FlatAPIKey{}, err
	}
	return key.Flatten(), nil
}

func (h *apiKeyHandler) Delete(ctx context.Context, current ccloud.FlatAPIKey) error {
	return h.client.DeleteAPIKey(ctx, current.ID)
}
