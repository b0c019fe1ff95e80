package resource

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
)

// decodeSpec maps the free-form spec block of a document onto the kind's
// typed spec. Unknown keys are rejected so manifest typos fail loudly
// instead of silently dropping fields.
func decodeSpec(doc manifest.Document, out any) error {
	if len(doc.Spec) == 0 {
		return nil
	}
	data, err := yaml.Marshal(doc.Spec)
	if err != nil {
		return fmt.Errorf("failed to encode spec of %s %q: %w", doc.Kind, doc.Name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid spec for %s %q: %w", doc.Kind, doc.Name, err)
	}
	return nil
}

// matchByIdentity walks current items once and returns the first one the
// desired identity matches: the explicit id when set, the name otherwise.
// Walking once keeps the earlier of two candidates, which matters for
// members where accepted users precede pending invitations.
func matchByIdentity[T any](items []T, id, name string, itemID, itemName func(T) string) (T, bool) {
	for _, item := range items {
		if id != "" && itemID(item) == id {
			return item, true
		}
		if name != "" && itemName(item) == name {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// newResult assembles an apply result from a reconcile outcome.
func newResult[T any](kind, name string, outcome *reconcile.Outcome[T], resource any) *Result {
	return &Result{
		Kind:     kind,
		Name:     name,
		Action:   outcome.Action,
		Changed:  outcome.Changed,
		Delta:    outcome.Delta,
		Resource: resource,
	}
}

// metaCreated extracts the creation timestamp for table rows.
func metaCreated(meta *ccloud.ObjectMeta) string {
	if meta == nil {
		return ""
	}
	return meta.CreatedAt
}
