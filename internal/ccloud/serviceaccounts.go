package ccloud

import (
	"context"
	"fmt"
	"net/http"
)

const serviceAccountsPath = "/iam/v2/service-accounts"

// ServiceAccount is a non-human principal.
type ServiceAccount struct {
	APIVersion  string      `json:"api_version,omitempty"`
	Kind        string      `json:"kind,omitempty"`
	ID          string      `json:"id,omitempty"`
	DisplayName string      `json:"display_name,omitempty"`
	Description string      `json:"description,omitempty"`
	Metadata    *ObjectMeta `json:"metadata,omitempty"`
}

// ListServiceAccounts returns every service account in the organization.
func (c *Client) ListServiceAccounts(ctx context.Context) ([]ServiceAccount, error) {
	raw, err := c.listAll(ctx, serviceAccountsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list service accounts: %w", err)
	}
	return decodeItems[ServiceAccount](raw)
}

// CreateServiceAccount creates a new service account. The display name is
// immutable after creation.
func (c *Client) CreateServiceAccount(ctx context.Context, displayName, description string) (*ServiceAccount, error) {
	body := map[string]string{"display_name": displayName}
	if description != "" {
		body["description"] = description
	}
	var sa ServiceAccount
	if err := c.do(ctx, http.MethodPost, serviceAccountsPath, nil, body, &sa); err != nil {
		return nil, fmt.Errorf("failed to create service account %q: %w", displayName, err)
	}
	return &sa, nil
}

// UpdateServiceAccount changes the description, the only mutable field.
func (c *Client) UpdateServiceAccount(ctx context.Context, id, description string) (*ServiceAccount, error) {
	body := map[string]string{"description": description}
	var sa ServiceAccount
	if err := c.do(ctx, http.MethodPatch, serviceAccountsPath+"/"+id, nil, body, &sa); err != nil {
		return nil, fmt.Errorf("failed to update service account %s: %w", id, err)
	}
	return &sa, nil
}

// DeleteServiceAccount removes a service account. A service account that
// is already gone counts as deleted.
func (c *Client) DeleteServiceAccount(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, serviceAccountsPath+"/"+id, nil, nil, nil)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete service account %s: %w", id, err)
	}
	return nil
}
