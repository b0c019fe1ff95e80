package ccloud

import (
	"context"
	"fmt"
	"net/http"
)

const apiKeysPath = "/iam/v2/api-keys"

// APIKeySpec is the nested spec block of an API key.
type APIKeySpec struct {
	DisplayName string     `json:"display_name,omitempty"`
	Description string     `json:"description,omitempty"`
	Owner       *ObjectRef `json:"owner,omitempty"`
	Resource    *ObjectRef `json:"resource,omitempty"`

	// Secret is only populated in the create response; the control plane
	// never returns it again.
	Secret string `json:"secret,omitempty"`
}

// APIKey is a credential owned by a user or service account, optionally
// scoped to a single resource such as a cluster.
type APIKey struct {
	APIVersion string      `json:"api_version,omitempty"`
	Kind       string      `json:"kind,omitempty"`
	ID         string      `json:"id,omitempty"`
	Spec       *APIKeySpec `json:"spec,omitempty"`
	Metadata   *ObjectMeta `json:"metadata,omitempty"`
}

// FlatAPIKey is the flattened view of an API key used for matching and
// display: the spec block is hoisted and references reduce to ids.
type FlatAPIKey struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Owner       string      `json:"owner,omitempty"`
	Resource    string      `json:"resource,omitempty"`
	Secret      string      `json:"secret,omitempty"`
	Metadata    *ObjectMeta `json:"metadata,omitempty"`
}

// Flatten hoists the spec block into a flat record.
func (k APIKey) Flatten() FlatAPIKey {
	flat := FlatAPIKey{
		ID:       k.ID,
		Metadata: k.Metadata,
	}
	if k.Spec != nil {
		flat.Name = k.Spec.DisplayName
		flat.Description = k.Spec.Description
		flat.Secret = k.Spec.Secret
		if k.Spec.Owner != nil {
			flat.Owner = k.Spec.Owner.ID
		}
		if k.Spec.Resource != nil {
			flat.Resource = k.Spec.Resource.ID
		}
	}
	return flat
}

// ListAPIKeys returns every API key visible to the caller.
func (c *Client) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	raw, err := c.listAll(ctx, apiKeysPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return decodeItems[APIKey](raw)
}

// CreateAPIKey creates a new API key for the owner in spec. The response
// is the only place the secret ever appears.
func (c *Client) CreateAPIKey(ctx context.Context, spec *APIKeySpec) (*APIKey, error) {
	body := map[string]*APIKeySpec{"spec": spec}
	var key APIKey
	if err := c.do(ctx, http.MethodPost, apiKeysPath, nil, body, &key); err != nil {
		return nil, fmt.Errorf("failed to create api key %q: %w", spec.DisplayName, err)
	}
	return &key, nil
}

// UpdateAPIKey changes the display name and description. Owner and
// resource are immutable.
func (c *Client) UpdateAPIKey(ctx context.Context, id, displayName, description string) (*APIKey, error) {
	body := map[string]map[string]string{
		"spec": {
			"display_name": displayName,
			"description":  description,
		},
	}
	var key APIKey
	if err := c.do(ctx, http.MethodPatch, apiKeysPath+"/"+id, nil, body, &key); err != nil {
		return nil, fmt.Errorf("failed to update api key %s: %w", id, err)
	}
	return &key, nil
}

// DeleteAPIKey revokes an API key. A key that is already gone counts as
// deleted.
func (c *Client) DeleteAPIKey(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, apiKeysPath+"/"+id, nil, nil, nil)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete api key %s: %w", id, err)
	}
	return nil
}
