package reconcile

import (
	"context"
	"fmt"

	"ccloudctl/pkg/logging"
)

// Action names what a reconciliation did, or would do in check mode.
type Action string

const (
	ActionNone   Action = "none"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
)

// Outcome reports the result of one reconciliation.
type Outcome[T any] struct {
	// Changed is true whenever the control plane was mutated, or would
	// have been in check mode.
	Changed bool

	// Action is what happened.
	Action Action

	// Resource is the resource after the action, or the current resource
	// when nothing changed. Zero when the resource does not exist.
	Resource T

	// Delta holds the field differences that drove an update.
	Delta *Delta
}

// StateHandler binds one desired resource to the control plane. The
// resource modules implement this per kind; Ensure and EnsureAbsent drive
// it.
type StateHandler[T any] interface {
	// Find returns the current resource matching the desired identity,
	// and whether it exists at all.
	Find(ctx context.Context) (T, bool, error)

	// Diff compares the desired state against the found resource. Only
	// fields the desired state actually sets participate.
	Diff(current T) (*Delta, error)

	// Create brings the desired resource into existence.
	Create(ctx context.Context) (T, error)

	// Update applies the delta to the found resource.
	Update(ctx context.Context, current T, delta *Delta) (T, error)

	// Delete removes the found resource.
	Delete(ctx context.Context, current T) error
}

// Options controls how reconciliation runs.
type Options struct {
	// CheckMode previews actions without mutating the control plane.
	// Outcomes still report Changed and the intended Action.
	CheckMode bool
}

// Ensure drives a resource to its desired state: create it when missing,
// update it when drifted, do nothing when already in shape.
func Ensure[T any](ctx context.Context, h StateHandler[T], opts Options) (*Outcome[T], error) {
	current, found, err := h.Find(ctx)
	if err != nil {
		return nil, err
	}

	if !found {
		if opts.CheckMode {
			return &Outcome[T]{Changed: true, Action: ActionCreate}, nil
		}
		created, err := h.Create(ctx)
		if err != nil {
			return nil, err
		}
		return &Outcome[T]{Changed: true, Action: ActionCreate, Resource: created}, nil
	}

	delta, err := h.Diff(current)
	if err != nil {
		return nil, err
	}
	if delta.Empty() {
		return &Outcome[T]{Action: ActionNone, Resource: current}, nil
	}

	logging.Debug("Reconcile", "drift detected: %s", delta)

	if opts.CheckMode {
		return &Outcome[T]{Changed: true, Action: ActionUpdate, Resource: current, Delta: delta}, nil
	}
	updated, err := h.Update(ctx, current, delta)
	if err != nil {
		return nil, err
	}
	return &Outcome[T]{Changed: true, Action: ActionUpdate, Resource: updated, Delta: delta}, nil
}

// EnsureAbsent removes a resource if it exists. A resource that is
// already gone is a no-op, never an error.
func EnsureAbsent[T any](ctx context.Context, h StateHandler[T], opts Options) (*Outcome[T], error) {
	current, found, err := h.Find(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Outcome[T]{Action: ActionNone}, nil
	}

	if opts.CheckMode {
		return &Outcome[T]{Changed: true, Action: ActionDelete, Resource: current}, nil
	}
	if err := h.Delete(ctx, current); err != nil {
		return nil, err
	}
	return &Outcome[T]{Changed: true, Action: ActionDelete, Resource: current}, nil
}

// ImmutableFieldError reports drift on a field the control plane cannot
// change after creation. Reconciliation fails loudly instead of silently
// ignoring the divergence.
type ImmutableFieldError struct {
	Kind    string
	Name    string
	Field   string
	Desired any
	Current any
}

// Error implements the error interface.
func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("%s %q: field %s is immutable (current %v, desired %v); delete and recreate the resource to change it",
		e.Kind, e.Name, e.Field, e.Current, e.Desired)
}
