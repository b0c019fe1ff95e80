package manifest

import "fmt"

// State is the desired lifecycle state of a resource. Most kinds support
// present and absent; connectors additionally support paused and running.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
	StatePaused  State = "paused"
	StateRunning State = "running"
)

// knownStates is every state the loader accepts. Individual resource
// kinds narrow this further.
var knownStates = map[State]bool{
	StatePresent: true,
	StateAbsent:  true,
	StatePaused:  true,
	StateRunning: true,
}

// Document is one desired resource parsed from a manifest.
type Document struct {
	// Kind names the resource type, e.g. "environment" or "connector".
	Kind string `json:"kind" yaml:"kind"`

	// Name identifies the resource within its scope. For members this is
	// the email address.
	Name string `json:"name" yaml:"name"`

	// State is the desired lifecycle state. Empty means present.
	State State `json:"state,omitempty" yaml:"state,omitempty"`

	// Spec carries the kind-specific fields.
	Spec map[string]any `json:"spec,omitempty" yaml:"spec,omitempty"`

	// File and Index locate the document for error messages.
	File  string `json:"-" yaml:"-"`
	Index int    `json:"-" yaml:"-"`
}

// empty reports whether the document carries nothing, as happens with
// stray separators in multi-document files.
func (d Document) empty() bool {
	return d.Kind == "" && d.Name == "" && d.State == "" && len(d.Spec) == 0
}

// validate checks the fields every document must carry.
func (d Document) validate() error {
	if d.Kind == "" {
		return fmt.Errorf("%s document %d: kind is required", d.File, d.Index)
	}
	if d.Name == "" {
		return fmt.Errorf("%s document %d (%s): name is required", d.File, d.Index, d.Kind)
	}
	if !knownStates[d.State] {
		return fmt.Errorf("%s document %d (%s %q): unknown state %q (valid: present, absent, paused, running)",
			d.File, d.Index, d.Kind, d.Name, d.State)
	}
	return nil
}
