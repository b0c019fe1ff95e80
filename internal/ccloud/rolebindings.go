package ccloud

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const roleBindingsPath = "/iam/v2/role-bindings"

// RoleBinding grants a role to a principal on the resources matched by a
// CRN pattern. Bindings are immutable; changing one means replacing it.
type RoleBinding struct {
	APIVersion string      `json:"api_version,omitempty"`
	Kind       string      `json:"kind,omitempty"`
	ID         string      `json:"id,omitempty"`
	Principal  string      `json:"principal,omitempty"`
	RoleName   string      `json:"role_name,omitempty"`
	CRNPattern string      `json:"crn_pattern,omitempty"`
	Metadata   *ObjectMeta `json:"metadata,omitempty"`
}

// ListRoleBindings returns the bindings under a CRN pattern. The control
// plane only answers scoped listings, so the pattern is mandatory.
func (c *Client) ListRoleBindings(ctx context.Context, crnPattern string) ([]RoleBinding, error) {
	if crnPattern == "" {
		return nil, fmt.Errorf("crn pattern is required to list role bindings")
	}
	query := url.Values{"crn_pattern": {crnPattern}}
	raw, err := c.listAll(ctx, roleBindingsPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list role bindings: %w", err)
	}
	return decodeItems[RoleBinding](raw)
}

// CreateRoleBinding grants roleName to principal on the resources matched
// by crnPattern.
func (c *Client) CreateRoleBinding(ctx context.Context, principal, roleName, crnPattern string) (*RoleBinding, error) {
	body := map[string]string{
		"principal":   principal,
		"role_name":   roleName,
		"crn_pattern": crnPattern,
	}
	var rb RoleBinding
	if err := c.do(ctx, http.MethodPost, roleBindingsPath, nil, body, &rb); err != nil {
		return nil, fmt.Errorf("failed to create role binding %s for %s: %w", roleName, principal, err)
	}
	return &rb, nil
}

// DeleteRoleBinding revokes a binding. A binding that is already gone
// counts as deleted.
func (c *Client) DeleteRoleBinding(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, roleBindingsPath+"/"+id, nil, nil, nil)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete role binding %s: %w", id, err)
	}
	return nil
}
