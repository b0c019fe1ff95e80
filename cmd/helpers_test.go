package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/cli"
)

// resetCommandState restores the package-level flag state once the test
// finishes, so tests can mutate it freely.
func resetCommandState(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		connection = cli.ConnectionFlags{}

		applyFiles, applySet, applyValues = nil, nil, nil
		applyCheck, applyWatch, applyQuiet = false, false, false
		applyOutput = "table"

		destroyFiles, destroySet, destroyValues = nil, nil, nil
		destroyCheck, destroyQuiet = false, false
		destroyOutput = "table"

		getIDs, getNames, getOwners, getEmails = nil, nil, nil, nil
		getPrincipals, getRoles, getTypes, getClasses = nil, nil, nil, nil
		getEnvironment, getCluster, getResourceURI = "", "", ""
		getOutput, getQuiet = "table", false

		pingQuiet = false
	})
}

// newTestCommand returns a command wired to buffers the way cobra hands
// one to a RunE function.
func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd, out, errOut
}

// fakeEnvironments is an in-memory environments API covering the calls
// the commands under test make.
type fakeEnvironments struct {
	mu      sync.Mutex
	envs    []ccloud.Environment
	nextID  int
	creates int
	deletes []string
}

func (f *fakeEnvironments) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/org/v2/environments", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			items := make([]any, 0, len(f.envs))
			for _, env := range f.envs {
				items = append(items, env)
			}
			payload := map[string]any{
				"kind":     "EnvironmentList",
				"metadata": map[string]any{},
				"data":     items,
			}
			require.NoError(t, json.NewEncoder(w).Encode(payload))
		case http.MethodPost:
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.nextID++
			f.creates++
			env := ccloud.Environment{ID: fmt.Sprintf("env-%d", f.nextID), DisplayName: body["display_name"]}
			f.envs = append(f.envs, env)
			w.WriteHeader(http.StatusCreated)
			require.NoError(t, json.NewEncoder(w).Encode(env))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/org/v2/environments/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := strings.TrimPrefix(r.URL.Path, "/org/v2/environments/")
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		for i, env := range f.envs {
			if env.ID == id {
				f.envs = append(f.envs[:i], f.envs[i+1:]...)
				f.deletes = append(f.deletes, id)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	return mux
}

// startFake serves the fake control plane and points the shared
// connection flags at it.
func startFake(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	connection = cli.ConnectionFlags{
		Endpoint:  server.URL,
		APIKey:    "test-key",
		APISecret: "test-secret",
	}
	return server
}

// writeManifest drops a manifest file into a fresh temp dir.
func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
