package ccloud

import (
	"context"
	"fmt"
	"net/http"
)

const environmentsPath = "/org/v2/environments"

// ObjectMeta is the standard metadata block attached to every object.
type ObjectMeta struct {
	Self         string `json:"self,omitempty"`
	ResourceName string `json:"resource_name,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
	DeletedAt    string `json:"deleted_at,omitempty"`
}

// ObjectRef points at another object by id.
type ObjectRef struct {
	ID   string `json:"id,omitempty"`
	Kind string `json:"kind,omitempty"`
}

// Environment is an organizational environment.
type Environment struct {
	APIVersion  string      `json:"api_version,omitempty"`
	Kind        string      `json:"kind,omitempty"`
	ID          string      `json:"id,omitempty"`
	DisplayName string      `json:"display_name,omitempty"`
	Metadata    *ObjectMeta `json:"metadata,omitempty"`
}

// ListEnvironments returns every environment in the organization.
func (c *Client) ListEnvironments(ctx context.Context) ([]Environment, error) {
	raw, err := c.listAll(ctx, environmentsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	return decodeItems[Environment](raw)
}

// CreateEnvironment creates a new environment with the given name.
func (c *Client) CreateEnvironment(ctx context.Context, displayName string) (*Environment, error) {
	body := map[string]string{"display_name": displayName}
	var env Environment
	if err := c.do(ctx, http.MethodPost, environmentsPath, nil, body, &env); err != nil {
		return nil, fmt.Errorf("failed to create environment %q: %w", displayName, err)
	}
	return &env, nil
}

// UpdateEnvironment renames an environment.
func (c *Client) UpdateEnvironment(ctx context.Context, id, displayName string) (*Environment, error) {
	body := map[string]string{"display_name": displayName}
	var env Environment
	if err := c.do(ctx, http.MethodPatch, environmentsPath+"/"+id, nil, body, &env); err != nil {
		return nil, fmt.Errorf("failed to update environment %s: %w", id, err)
	}
	return &env, nil
}

// DeleteEnvironment removes an environment. An environment that is
// already gone counts as deleted.
func (c *Client) DeleteEnvironment(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, environmentsPath+"/"+id, nil, nil, nil)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete environment %s: %w", id, err)
	}
	return nil
}
