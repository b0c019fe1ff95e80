package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// Difference records one field whose desired value differs from what the
// control plane currently reports.
type Difference struct {
	Path    string `json:"path"`
	Desired any    `json:"desired"`
	Current any    `json:"current"`
}

// Delta collects the field differences between desired and current state.
// An empty delta means the resource is already in shape.
type Delta struct {
	Differences []Difference `json:"differences,omitempty"`
}

// Add records a difference at the given field path.
func (d *Delta) Add(path string, desired, current any) {
	d.Differences = append(d.Differences, Difference{
		Path:    path,
		Desired: desired,
		Current: current,
	})
}

// Empty reports whether there is nothing to change.
func (d *Delta) Empty() bool {
	return d == nil || len(d.Differences) == 0
}

// DifferentAt reports whether the delta contains a difference at path.
func (d *Delta) DifferentAt(path string) bool {
	if d == nil {
		return false
	}
	for _, diff := range d.Differences {
		if diff.Path == path {
			return true
		}
	}
	return false
}

// CompareString records a difference when the desired value is set and
// differs from current. Unset desired fields never participate, which is
// what keeps partially specified manifests idempotent.
func (d *Delta) CompareString(path, desired, current string) {
	if desired != "" && desired != current {
		d.Add(path, desired, current)
	}
}

// CompareInt records a difference when the desired value is set (nonzero)
// and differs from current.
func (d *Delta) CompareInt(path string, desired, current int) {
	if desired != 0 && desired != current {
		d.Add(path, desired, current)
	}
}

// CompareMap records one difference per desired key whose value differs
// from the current map. Keys present only in current are left alone, so a
// manifest never fights server-populated entries. Keys are walked in
// sorted order to keep output stable.
func (d *Delta) CompareMap(path string, desired, current map[string]string) {
	keys := make([]string, 0, len(desired))
	for k := range desired {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if cur, ok := current[k]; !ok || cur != desired[k] {
			d.Add(path+"."+k, desired[k], cur)
		}
	}
}

// String renders the delta as "path: current -> desired" pairs.
func (d *Delta) String() string {
	if d.Empty() {
		return ""
	}
	parts := make([]string, 0, len(d.Differences))
	for _, diff := range d.Differences {
		parts = append(parts, fmt.Sprintf("%s: %v -> %v", diff.Path, diff.Current, diff.Desired))
	}
	return strings.Join(parts, ", ")
}
