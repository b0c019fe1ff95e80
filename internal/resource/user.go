package resource

import (
	"context"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
)

// userSpec is the manifest spec block for members.
type userSpec struct {
	ID       string `yaml:"id,omitempty"`
	Email    string `yaml:"email,omitempty"`
	FullName string `yaml:"full_name,omitempty"`
}

// UserModule manages organization members. A desired member that does not
// exist yet becomes an invitation; the pending invitation and the
// accepted user reconcile the same way.
type UserModule struct {
	client *ccloud.Client
}

// NewUserModule returns the user module.
func NewUserModule(client *ccloud.Client) *UserModule {
	return &UserModule{client: client}
}

func (m *UserModule) Kind() string { return "user" }

func (m *UserModule) States() []manifest.State {
	return []manifest.State{manifest.StatePresent, manifest.StateAbsent}
}

func (m *UserModule) Columns() []string {
	return []string{"ID", "EMAIL", "NAME", "KIND", "STATUS"}
}

// Apply reconciles one member document. The document name is the email
// address unless the spec overrides it.
func (m *UserModule) Apply(ctx context.Context, doc manifest.Document, opts reconcile.Options) (*Result, error) {
	var spec userSpec
	if err := decodeSpec(doc, &spec); err != nil {
		return nil, err
	}
	if spec.Email == "" {
		spec.Email = doc.Name
	}

	h := &userHandler{client: m.client, spec: spec}

	var (
		outcome *reconcile.Outcome[ccloud.User]
		err     error
	)
	if doc.State == manifest.StateAbsent {
		outcome, err = reconcile.EnsureAbsent[ccloud.User](ctx, h, opts)
	} else {
		outcome, err = reconcile.Ensure[ccloud.User](ctx, h, opts)
	}
	if err != nil {
		return nil, err
	}

	var resource any
	if outcome.Resource.ID != "" || outcome.Resource.Invitation != "" {
		resource = outcome.Resource
	}
	return newResult(m.Kind(), doc.Name, outcome, resource), nil
}

// List returns members matching the filters, accepted users and pending
// invitations alike.
func (m *UserModule) List(ctx context.Context, f Filters) ([]Record, error) {
	if err := f.restrict(m.Kind(), filterIDs, filterEmails, filterNames); err != nil {
		return nil, err
	}

	members, err := m.client.ListMembers(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(members))
	for _, member := range members {
		if !matchAny(f.IDs, member.ID) || !matchAny(f.Emails, member.Email) || !matchAny(f.Names, member.FullName) {
			continue
		}
		records = append(records, Record{
			Key:    member.ID,
			Row:    []string{member.ID, member.Email, member.FullName, member.Kind, member.Status},
			Object: member,
		})
	}
	return records, nil
}

// userHandler binds one desired member to the control plane.
type userHandler struct {
	client *ccloud.Client
	spec   userSpec
}

func (h *userHandler) Find(ctx context.Context) (ccloud.User, bool, error) {
	members, err := h.client.ListMembers(ctx)
	if err != nil {
		return ccloud.User{}, false, err
	}
	member, found := matchByIdentity(members, h.spec.ID, h.spec.Email,
		func(u ccloud.User) string { return u.ID },
		func(u ccloud.User) string { return u.Email })
	return member, found, nil
}

func (h *userHandler) Diff(current ccloud.User) (*reconcile.Delta, error) {
	// The email is the identity; a mismatch can only happen when the
	// manifest pins an id, and it cannot be patched.
	if h.spec.Email != "" && current.Email != "" && h.spec.Email != current.Email {
		return nil, &reconcile.ImmutableFieldError{
			Kind:    "user",
			Name:    h.spec.Email,
			Field:   "email",
			Desired: h.spec.Email,
			Current: current.Email,
		}
	}

	delta := &reconcile.Delta{}
	delta.CompareString("full_name", h.spec.FullName, current.FullName)
	return delta, nil
}

func (h *userHandler) Create(ctx context.Context) (ccloud.User, error) {
	member, err := h.client.InviteUser(ctx, h.spec.Email)
	if err != nil {
		return ccloud.User{}, err
	}
	return *member, nil
}

func (h *userHandler) Update(ctx context.Context, current ccloud.User, delta *reconcile.Delta) (ccloud.User, error) {
	member, err := h.client.UpdateUser(ctx, current.ID, h.spec.FullName)
	if err != nil {
		return ccloud.User{}, err
	}
	return *member, nil
}

// Delete routes by kind: pending invitations are revoked through the
// invitations collection, accepted users are removed directly.
func (h *userHandler) Delete(ctx context.Context, current ccloud.User) error {
	if current.Kind == ccloud.KindInvitation {
		return h.client.DeleteInvitation(ctx, current.Invitation)
	}
	return h.client.DeleteUser(ctx, current.ID)
}
