package resource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
)

// Module manages one resource kind: it reconciles desired-state documents
// and lists what currently exists.
type Module interface {
	// Kind returns the canonical kind name used in manifests.
	Kind() string

	// States lists the desired states the kind supports.
	States() []manifest.State

	// Columns returns the table header for List records.
	Columns() []string

	// Apply reconciles one desired document against the control plane.
	Apply(ctx context.Context, doc manifest.Document, opts reconcile.Options) (*Result, error)

	// List returns the current resources matching the filters.
	List(ctx context.Context, f Filters) ([]Record, error)
}

// Result reports what applying one document did.
type Result struct {
	Kind    string           `json:"kind"`
	Name    string           `json:"name"`
	Action  reconcile.Action `json:"action"`
	Changed bool             `json:"changed"`
	Delta   *reconcile.Delta `json:"delta,omitempty"`

	// Resource is the resource after the action, for machine-readable
	// output. Nil when the resource does not exist.
	Resource any `json:"resource,omitempty"`

	// DurationMs is how long the reconciliation took. The runner stamps
	// it; modules leave it zero.
	DurationMs int64 `json:"duration_ms,omitempty"`
}

// Record is one row of a listing.
type Record struct {
	// Key identifies the record in keyed output formats.
	Key string

	// Row holds the table cells, aligned with the module's Columns.
	Row []string

	// Object is the full resource for json and yaml output.
	Object any
}

// Registry resolves kind names, including aliases, to modules.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
	aliases map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
		aliases: make(map[string]string),
	}
}

// Register adds a module under its canonical kind plus any aliases.
func (r *Registry) Register(m Module, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modules[m.Kind()] = m
	for _, alias := range aliases {
		r.aliases[alias] = m.Kind()
	}
}

// Get resolves a kind name or alias to its module. The lookup is
// case-insensitive.
func (r *Registry) Get(kind string) (Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := strings.ToLower(kind)
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	m, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("unknown resource kind '%s'. Available kinds: %s", kind, strings.Join(r.kindsLocked(), ", "))
	}
	return m, nil
}

// Kinds returns the canonical kind names in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.kindsLocked()
}

func (r *Registry) kindsLocked() []string {
	kinds := make([]string, 0, len(r.modules))
	for kind := range r.modules {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// DefaultRegistry wires every supported kind against the client.
func DefaultRegistry(client *ccloud.Client) *Registry {
	r := NewRegistry()
	r.Register(NewEnvironmentModule(client), "env", "envs", "environments")
	r.Register(NewClusterModule(client), "clusters")
	r.Register(NewServiceAccountModule(client), "sa", "service-accounts", "serviceaccount", "serviceaccounts")
	r.Register(NewAPIKeyModule(client), "api-keys", "apikey", "apikeys", "key", "keys")
	r.Register(NewUserModule(client), "users", "member", "members")
	r.Register(NewRoleBindingModule(client), "role-bindings", "rolebinding", "rolebindings", "rb")
	r.Register(NewConnectorModule(client), "connectors", "connect")
	return r
}

// SupportsState reports whether the module accepts the desired state.
func SupportsState(m Module, state manifest.State) bool {
	for _, s := range m.States() {
		if s == state {
			return true
		}
	}
	return false
}
