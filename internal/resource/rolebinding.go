package resource

import (
	"context"
	"fmt"
	"strings"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
)

// roleBindingSpec is the manifest spec block for role bindings. The
// document name is a label; identity comes from the binding itself.
type roleBindingSpec struct {
	ID          string `yaml:"id,omitempty"`
	Principal   string `yaml:"principal,omitempty"`
	Role        string `yaml:"role,omitempty"`
	ResourceURI string `yaml:"resource_uri,omitempty"`
}

// RoleBindingModule manages role bindings. Bindings are immutable: a
// present binding that exists is a no-op, anything else is create or
// delete.
type RoleBindingModule struct {
	client *ccloud.Client
}

// NewRoleBindingModule returns the role binding module.
func NewRoleBindingModule(client *ccloud.Client) *RoleBindingModule {
	return &RoleBindingModule{client: client}
}

func (m *RoleBindingModule) Kind() string { return "role-binding" }

func (m *RoleBindingModule) States() []manifest.State {
	return []manifest.State{manifest.StatePresent, manifest.StateAbsent}
}

func (m *RoleBindingModule) Columns() []string {
	return []string{"ID", "PRINCIPAL", "ROLE", "CRN_PATTERN"}
}

// NormalizePrincipal prefixes bare user and service account ids with the
// User: principal type the control plane expects.
func NormalizePrincipal(principal string) string {
	if strings.HasPrefix(principal, "u-") || strings.HasPrefix(principal, "sa-") {
		return "User:" + principal
	}
	return principal
}

// Apply reconciles one role binding document.
func (m *RoleBindingModule) Apply(ctx context.Context, doc manifest.Document, opts reconcile.Options) (*Result, error) {
	var spec roleBindingSpec
	if err := decodeSpec(doc, &spec); err != nil {
		return nil, err
	}
	spec.Principal = NormalizePrincipal(spec.Principal)

	if spec.ResourceURI == "" {
		return nil, fmt.Errorf("role-binding %q: spec.resource_uri is required", doc.Name)
	}
	if spec.ID == "" && (spec.Principal == "" || spec.Role == "") {
		return nil, fmt.Errorf("role-binding %q: spec.principal and spec.role are required", doc.Name)
	}

	h := &roleBindingHandler{client: m.client, spec: spec}

	var (
		outcome *reconcile.Outcome[ccloud.RoleBinding]
		err     error
	)
	if doc.State == manifest.StateAbsent {
		outcome, err = reconcile.EnsureAbsent[ccloud.RoleBinding](ctx, h, opts)
	} else {
		outcome, err = reconcile.Ensure[ccloud.RoleBinding](ctx, h, opts)
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

// List returns the bindings under the scoped CRN pattern.
func (m *RoleBindingModule) List(ctx context.Context, f Filters) ([]Record, error) {
	if err := f.restrict(m.Kind(), filterPrincipals, filterRoles); err != nil {
		return nil, err
	}
	if f.CRNPattern == "" {
		return nil, fmt.Errorf("listing role bindings requires a CRN pattern scope (--resource-uri)")
	}

	principals := make([]string, 0, len(f.Principals))
	for _, p := range f.Principals {
		principals = append(principals, NormalizePrincipal(p))
	}

	bindings, err := m.client.ListRoleBindings(ctx, f.CRNPattern)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(bindings))
	for _, rb := range bindings {
		if !matchAny(principals, rb.Principal) || !matchAny(f.Roles, rb.RoleName) {
			continue
		}
		records = append(records, Record{
			Key:    rb.ID,
			Row:    []string{rb.ID, rb.Principal, rb.RoleName, rb.CRNPattern},
			Object: rb,
		})
	}
	return records, nil
}

// roleBindingHandler binds one desired role binding to the control plane.
type roleBindingHandler struct {
	client *ccloud.Client
	spec   roleBindingSpec
}

func (h *roleBindingHandler) Find(ctx context.Context) (ccloud.RoleBinding, bool, error) {
	bindings, err := h.client.ListRoleBindings(ctx, h.spec.ResourceURI)
	if err != nil {
		return ccloud.RoleBinding{}, false, err
	}
	for _, rb := range bindings {
		if h.spec.ID != "" && rb.ID == h.spec.ID {
			return rb, true, nil
		}
		if h.spec.Principal != "" && rb.Principal == h.spec.Principal && rb.RoleName == h.spec.Role {
			return rb, true, nil
		}
	}
	return ccloud.RoleBinding{}, false, nil
}

// Diff is always empty: every field of a binding is part of its identity,
// so an existing match is by definition in shape.
func (h *roleBindingHandler) Diff(current ccloud.RoleBinding) (*reconcile.Delta, error) {
	return &reconcile.Delta{}, nil
}

func (h *roleBindingHandler) Create(ctx context.Context) (ccloud.RoleBinding, error) {
	rb, err := h.client.CreateRoleBinding(ctx, h.spec.Principal, h.spec.Role, h.spec.ResourceURI)
	if err != nil {
		return ccloud.RoleBinding{}, err
	}
	return *rb, nil
}

func (h *roleBindingHandler) Update(ctx context.Context, current ccloud.RoleBinding, delta *reconcile.Delta) (ccloud.RoleBinding, error) {
	// Unreachable: Diff never reports drift.
	return current, nil
}

func (h *roleBindingHandler) Delete(ctx context.Context, current ccloud.RoleBinding) error {
	return h.client.DeleteRoleBinding(ctx, current.ID)
}
