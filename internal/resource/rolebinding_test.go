package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
)

const orgCRN = "crn://confluent.cloud/organization=org-1"

func TestNormalizePrincipal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"u-1row0", "User:u-1row0"},
		{"sa-abc123", "User:sa-abc123"},
		{"User:u-1row0", "User:u-1row0"},
		{"Group:g-1", "Group:g-1"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePrincipal(tt.in))
	}
}

func TestRoleBindingModule_ApplyValidation(t *testing.T) {
	m := NewRoleBindingModule(newTestClient(t, http.NewServeMux()))

	_, err := m.Apply(context.Background(), doc("role-binding", "ops-admin", manifest.StatePresent,
		map[string]any{"principal": "u-1", "role": "OrganizationAdmin"}), reconcile.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec.resource_uri is required")

	_, err = m.Apply(context.Background(), doc("role-binding", "ops-admin", manifest.StatePresent,
		map[string]any{"resource_uri": orgCRN}), reconcile.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec.principal and spec.role are required")
}

func TestRoleBindingModule_ApplyCreatesNormalized(t *testing.T) {
	var created map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/iam/v2/role-bindings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, orgCRN, r.URL.Query().Get("crn_pattern"))
			writeList(t, w, "IamV2RoleBindingList")
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			writeJSON(t, w, http.StatusCreated, ccloud.RoleBinding{
				ID:         "rb-1",
				Principal:  created["principal"],
				RoleName:   created["role_name"],
				CRNPattern: created["crn_pattern"],
			})
		}
	})
	m := NewRoleBindingModule(newTestClient(t, mux))

	spec := map[string]any{"principal": "u-1row0", "role": "OrganizationAdmin", "resource_uri": orgCRN}
	result, err := m.Apply(context.Background(), doc("role-binding", "ops-admin", manifest.StatePresent, spec), reconcile.Options{})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, reconcile.ActionCreate, result.Action)
	assert.Equal(t, "User:u-1row0", created["principal"], "bare ids gain the User: prefix")
	assert.Equal(t, "OrganizationAdmin", created["role_name"])
	assert.Equal(t, orgCRN, created["crn_pattern"])
}

func TestRoleBindingModule_ApplyExistingIsNoop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/iam/v2/role-bindings", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method, "an existing binding must not be written")
		writeList(t, w, "IamV2RoleBindingList", ccloud.RoleBinding{
			ID:         "rb-1",
			Principal:  "User:u-1row0",
			RoleName:   "OrganizationAdmin",
			CRNPattern: orgCRN,
		})
	})
	m := NewRoleBindingModule(newTestClient(t, mux))

	spec := map[string]any{"principal": "u-1row0", "role": "OrganizationAdmin", "resource_uri": orgCRN}
	result, err := m.Apply(context.Background(), doc("role-binding", "ops-admin", manifest.StatePresent, spec), reconcile.Options{})
	require.NoError(t, err)

	assert.False(t, result.Changed, "bindings are immutable; a match is in shape")
	assert.Equal(t, reconcile.ActionNone, result.Action)
}

func TestRoleBindingModule_ApplyAbsentDeletesById(t *testing.T) {
	deleted := false
	mux := http.NewServeMux()
	mux.HandleFunc("/iam/v2/role-bindings", func(w http.ResponseWriter, r *http.Request) {
		writeList(t, w, "IamV2RoleBindingList", ccloud.RoleBinding{
			ID:         "rb-1",
			Principal:  "User:u-1row0",
			RoleName:   "OrganizationAdmin",
			CRNPattern: orgCRN,
		})
	})
	mux.HandleFunc("/iam/v2/role-bindings/rb-1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})
	m := NewRoleBindingModule(newTestClient(t, mux))

	spec := map[string]any{"id": "rb-1", "resource_uri": orgCRN}
	result, err := m.Apply(context.Background(), doc("role-binding", "ops-admin", manifest.StateAbsent, spec), reconcile.Options{})
	require.NoError(t, err)

	assert.True(t, deleted)
	assert.True(t, result.Changed)
	assert.Equal(t, reconcile.ActionDelete, result.Action)
}

func TestRoleBindingModule_ListRequiresScope(t *testing.T) {
	m := NewRoleBindingModule(newTestClient(t, http.NewServeMux()))

	_, err := m.List(context.Background(), Filters{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--resource-uri")
}

func TestRoleBindingModule_List(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/iam/v2/role-bindings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, orgCRN, r.URL.Query().Get("crn_pattern"))
		writeList(t, w, "IamV2RoleBindingList",
			ccloud.RoleBinding{ID: "rb-1", Principal: "User:u-1row0", RoleName: "OrganizationAdmin", CRNPattern: orgCRN},
			ccloud.RoleBinding{ID: "rb-2", Principal: "User:sa-abc123", RoleName: "EnvironmentAdmin", CRNPattern: orgCRN})
	})
	m := NewRoleBindingModule(newTestClient(t, mux))

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{name: "unfiltered", filters: Filters{CRNPattern: orgCRN}, want: []string{"rb-1", "rb-2"}},
		{
			name:    "bare principal filter is normalized",
			filters: Filters{CRNPattern: orgCRN, Principals: []string{"sa-abc123"}},
			want:    []string{"rb-2"},
		},
		{
			name:    "by role",
			filters: Filters{CRNPattern: orgCRN, Roles: []string{"OrganizationAdmin"}},
			want:    []string{"rb-1"},
		},
		{
			name:    "principal and role must both match",
			filters: Filters{CRNPattern: orgCRN, Principals: []string{"u-1row0"}, Roles: []string{"EnvironmentAdmin"}},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := m.List(context.Background(), tt.filters)
			require.NoError(t, err)

			keys := make([]string, 0, len(records))
			for _, record := range records {
				keys = append(keys, record.Key)
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}
