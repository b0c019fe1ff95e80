package resource

import (
	"fmt"
)

// Filters narrows List results. Values within one field match as
// alternatives, fields combine as conjunction. Which fields a kind
// supports varies; setting an unsupported one is an error rather than a
// silent no-op.
type Filters struct {
	IDs        []string
	Names      []string
	Owners     []string
	Emails     []string
	Principals []string
	Roles      []string
	Types      []string
	Classes    []string

	// Environment and Cluster scope kinds that only exist inside a
	// parent resource.
	Environment string
	Cluster     string

	// CRNPattern scopes role binding listings.
	CRNPattern string
}

// filterField names one Filters field in flag spelling.
type filterField string

const (
	filterIDs        filterField = "id"
	filterNames      filterField = "name"
	filterOwners     filterField = "owner"
	filterEmails     filterField = "email"
	filterPrincipals filterField = "principal"
	filterRoles      filterField = "role"
	filterTypes      filterField = "type"
	filterClasses    filterField = "class"
)

// restrict errors when a filter the kind does not support is set.
func (f Filters) restrict(kind string, supported ...filterField) error {
	all := []struct {
		field  filterField
		values []string
	}{
		{filterIDs, f.IDs},
		{filterNames, f.Names},
		{filterOwners, f.Owners},
		{filterEmails, f.Emails},
		{filterPrincipals, f.Principals},
		{filterRoles, f.Roles},
		{filterTypes, f.Types},
		{filterClasses, f.Classes},
	}

	for _, entry := range all {
		if len(entry.values) == 0 {
			continue
		}
		ok := false
		for _, s := range supported {
			if s == entry.field {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("filter --%s is not supported for %s", entry.field, kind)
		}
	}
	return nil
}

// matchAny reports whether value is in the wanted set. An empty set
// matches everything.
func matchAny(want []string, value string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		if w == value {
			return true
		}
	}
	return false
}

// matchIDOrName applies the two filters almost every kind supports.
func (f Filters) matchIDOrName(id, name string) bool {
	return matchAny(f.IDs, id) && matchAny(f.Names, name)
}
