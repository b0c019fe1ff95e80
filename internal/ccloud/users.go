package ccloud

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"
)

const (
	usersPath       = "/iam/v2/users"
	invitationsPath = "/iam/v2/invitations"
)

// KindInvitation marks a member record that is still a pending invitation
// rather than an accepted user.
const KindInvitation = "Invitation"

// User is an organization member. Pending invitations are normalized into
// this shape with Kind set to KindInvitation, so callers can treat both
// uniformly.
type User struct {
	APIVersion string `json:"api_version,omitempty"`
	Kind       string `json:"kind,omitempty"`
	ID         string `json:"id,omitempty"`
	Email      string `json:"email,omitempty"`
	FullName   string `json:"full_name,omitempty"`

	// Invitation is the invitation id, set only while Kind is
	// KindInvitation. Revoking the invitation needs this id, not the
	// user id.
	Invitation string `json:"invitation,omitempty"`

	// Status is the invitation status while the member is pending.
	Status string `json:"status,omitempty"`

	Metadata *ObjectMeta `json:"metadata,omitempty"`
}

// Invitation is the wire form of a pending invitation.
type Invitation struct {
	APIVersion string      `json:"api_version,omitempty"`
	Kind       string      `json:"kind,omitempty"`
	ID         string      `json:"id,omitempty"`
	Email      string      `json:"email,omitempty"`
	Status     string      `json:"status,omitempty"`
	AcceptedAt string      `json:"accepted_at,omitempty"`
	ExpiresAt  string      `json:"expires_at,omitempty"`
	User       *ObjectRef  `json:"user,omitempty"`
	Creator    *ObjectRef  `json:"creator,omitempty"`
	Metadata   *ObjectMeta `json:"metadata,omitempty"`
}

// AsUser converts a pending invitation into the member shape. The record
// keeps the invitation kind, adopts the id of the user object the control
// plane pre-created for the invitee, and carries the invitation id for
// later revocation.
func (inv Invitation) AsUser() User {
	u := User{
		APIVersion: inv.APIVersion,
		Kind:       inv.Kind,
		Email:      inv.Email,
		Invitation: inv.ID,
		Status:     inv.Status,
		Metadata:   inv.Metadata,
	}
	if inv.User != nil {
		u.ID = inv.User.ID
	}
	return u
}

// ListUsers returns the accepted members of the organization.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	raw, err := c.listAll(ctx, usersPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return decodeItems[User](raw)
}

// ListInvitations returns the pending invitations of the organization.
func (c *Client) ListInvitations(ctx context.Context) ([]Invitation, error) {
	raw, err := c.listAll(ctx, invitationsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return decodeItems[Invitation](raw)
}

// ListMembers returns accepted users followed by normalized pending
// invitations. Users come first so identity matching prefers them when an
// email appears in both collections. The two listings run concurrently.
func (c *Client) ListMembers(ctx context.Context) ([]User, error) {
	var (
		users       []User
		invitations []Invitation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = c.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		invitations, err = c.ListInvitations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	members := make([]User, 0, len(users)+len(invitations))
	members = append(members, users...)
	for _, inv := range invitations {
		members = append(members, inv.AsUser())
	}
	return members, nil
}

// InviteUser invites a new member by email and returns the pending
// invitation in member shape.
func (c *Client) InviteUser(ctx context.Context, email string) (*User, error) {
	body := map[string]string{"email": email}
	var inv Invitation
	if err := c.do(ctx, http.MethodPost, invitationsPath, nil, body, &inv); err != nil {
		return nil, fmt.Errorf("failed to invite %s: %w", email, err)
	}
	u := inv.AsUser()
	return &u, nil
}

// UpdateUser changes the full name, the only mutable field of a member.
func (c *Client) UpdateUser(ctx context.Context, id, fullName string) (*User, error) {
	body := map[string]string{"full_name": fullName}
	var u User
	if err := c.do(ctx, http.MethodPatch, usersPath+"/"+id, nil, body, &u); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return &u, nil
}

// DeleteUser removes an accepted member. A user that is already gone
// counts as deleted.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, usersPath+"/"+id, nil, nil, nil)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	return nil
}

// DeleteInvitation revokes a pending invitation. An invitation that is
// already gone counts as deleted.
func (c *Client) DeleteInvitation(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, invitationsPath+"/"+id, nil, nil, nil)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to delete invitation %s: %w", id, err)
	}
	return nil
}
