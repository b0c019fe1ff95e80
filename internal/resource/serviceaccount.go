package resource

import (
	"context"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
)

// serviceAccountSpec is the manifest spec block for service accounts.
type serviceAccountSpec struct {
	ID          string `yaml:"id,omitempty"`
	DisplayName string `yaml:"display_name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ServiceAccountModule manages service accounts.
type ServiceAccountModule struct {
	client *ccloud.Client
}

// NewServiceAccountModule returns the service account module.
func NewServiceAccountModule(client *ccloud.Client) *ServiceAccountModule {
	return &ServiceAccountModule{client: client}
}

func (m *ServiceAccountModule) Kind() string { return "service-account" }

func (m *ServiceAccountModule) States() []manifest.State {
	return []manifest.State{manifest.StatePresent, manifest.StateAbsent}
}

func (m *ServiceAccountModule) Columns() []string {
	return []string{"ID", "NAME", "DESCRIPTION", "CREATED"}
}

// Apply reconciles one service account document.
func (m *ServiceAccountModule) Apply(ctx context.Context, doc manifest.Document, opts reconcile.Options) (*Result, error) {
	var spec serviceAccountSpec
	if err := decodeSpec(doc, &spec); err != nil {
		return nil, err
	}
	if spec.DisplayName == "" {
		spec.DisplayName = doc.Name
	}

	h := &serviceAccountHandler{client: m.client, spec: spec}

	var (
		outcome *reconcile.Outcome[ccloud.ServiceAccount]
		err     error
	)
	if doc.State == manifest.StateAbsent {
		outcome, err = reconcile.EnsureAbsent[ccloud.ServiceAccount](ctx, h, opts)
	} else {
		outcome, err = reconcile.Ensure[ccloud.ServiceAccount](ctx, h, opts)
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

// List returns service accounts matching the filters.
func (m *ServiceAccountModule) List(ctx context.Context, f Filters) ([]Record, error) {
	if err := f.restrict(m.Kind(), filterIDs, filterNames); err != nil {
		return nil, err
	}

	accounts, err := m.client.ListServiceAccounts(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(accounts))
	for _, sa := range accounts {
		if !f.matchIDOrName(sa.ID, sa.DisplayName) {
			continue
		}
		records = append(records, Record{
			Key:    sa.ID,
			Row:    []string{sa.ID, sa.DisplayName, sa.Description, metaCreated(sa.Metadata)},
			Object: sa,
		})
	}
	return records, nil
}

// serviceAccountHandler binds one desired service account to the control
// plane.
type serviceAccountHandler struct {
	client *ccloud.Client
	spec   serviceAccountSpec
}

func (h *serviceAccountHandler) Find(ctx context.Context) (ccloud.ServiceAccount, bool, error) {
	accounts, err := h.client.ListServiceAccounts(ctx)
	if err != nil {
		return ccloud.ServiceAccount{}, false, err
	}
	sa, found := matchByIdentity(accounts, h.spec.ID, h.spec.DisplayName,
		func(a ccloud.ServiceAccount) string { return a.ID },
		func(a ccloud.ServiceAccount) string { return a.DisplayName })
	return sa, found, nil
}

func (h *serviceAccountHandler) Diff(current ccloud.ServiceAccount) (*reconcile.Delta, error) {
	// The display name is fixed at creation; drift means the manifest
	// points at the wrong account.
	if h.spec.DisplayName != "" && h.spec.DisplayName != current.DisplayName {
		return nil, &reconcile.ImmutableFieldError{
			Kind:    "service-account",
			Name:    h.spec.DisplayName,
			Field:   "display_name",
			Desired: h.spec.DisplayName,
			Current: current.DisplayName,
		}
	}

	delta := &reconcile.Delta{}
	delta.CompareString("description", h.spec.Description, current.Description)
	return delta, nil
}

func (h *serviceAccountHandler) Create(ctx context.Context) (ccloud.ServiceAccount, error) {
	sa, err := h.client.CreateServiceAccount(ctx, h.spec.DisplayName, h.spec.Description)
	if err != nil {
		return ccloud.ServiceAccount{}, err
	}
	return *sa, nil
}

func (h *serviceAccountHandler) Update(ctx context.Context, current ccloud.ServiceAccount, delta *reconcile.Delta) (ccloud.ServiceAccount, error) {
	sa, err := h.client.UpdateServiceAccount(ctx, current.ID, h.spec.Description)
	if err != nil {
		return ccloud.ServiceAccount{}, err
	}
	return *sa, nil
}

func (h *serviceAccountHandler) Delete(ctx context.Context, current ccloud.ServiceAccount) error {
	return h.client.DeleteServiceAccount(ctx, current.ID)
}
