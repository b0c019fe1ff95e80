package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccloudctl/internal/ccloud"
)

func TestRunGetTable(t *testing.T) {
	resetCommandState(t)
	fake := &fakeEnvironments{envs: []ccloud.Environment{
		{ID: "env-1", DisplayName: "staging"},
		{ID: "env-2", DisplayName: "prod"},
	}}
	startFake(t, fake.handler(t))
	getQuiet = true

	cmd, out, _ := newTestCommand()
	require.NoError(t, runGet(cmd, []string{"environments"}))

	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "env-1")
	assert.Contains(t, out.String(), "staging")
	assert.Contains(t, out.String(), "prod")
}

func TestRunGetJSON(t *testing.T) {
	resetCommandState(t)
	fake := &fakeEnvironments{envs: []ccloud.Environment{
		{ID: "env-1", DisplayName: "staging"},
	}}
	startFake(t, fake.handler(t))
	getOutput = "json"

	cmd, out, _ := newTestCommand()
	require.NoError(t, runGet(cmd, []string{"environment"}))

	var envs []ccloud.Environment
	require.NoError(t, json.Unmarshal(out.Bytes(), &envs))
	require.Len(t, envs, 1)
	assert.Equal(t, "env-1", envs[0].ID)
	assert.Equal(t, "staging", envs[0].DisplayName)
}

func TestRunGetAppliesFilters(t *testing.T) {
	resetCommandState(t)
	fake := &fakeEnvironments{envs: []ccloud.Environment{
		{ID: "env-1", DisplayName: "staging"},
		{ID: "env-2", DisplayName: "prod"},
	}}
	startFake(t, fake.handler(t))
	getOutput = "json"
	getNames = []string{"prod"}

	cmd, out, _ := newTestCommand()
	require.NoError(t, runGet(cmd, []string{"environments"}))

	var envs []ccloud.Environment
	require.NoError(t, json.Unmarshal(out.Bytes(), &envs))
	require.Len(t, envs, 1)
	assert.Equal(t, "env-2", envs[0].ID)
}

func TestRunGetEmptyListing(t *testing.T) {
	resetCommandState(t)
	fake := &fakeEnvironments{}
	startFake(t, fake.handler(t))
	getQuiet = true

	cmd, out, _ := newTestCommand()
	require.NoError(t, runGet(cmd, []string{"environments"}))

	assert.Contains(t, out.String(), "No environments found")
}

func TestRunGetUnknownKind(t *testing.T) {
	resetCommandState(t)
	fake := &fakeEnvironments{}
	startFake(t, fake.handler(t))

	cmd, _, _ := newTestCommand()
	err := runGet(cmd, []string{"topic"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource kind 'topic'")
	assert.Contains(t, err.Error(), "Available kinds:")
}

func TestRunGetRejectsUnsupportedFilter(t *testing.T) {
	resetCommandState(t)
	fake := &fakeEnvironments{}
	startFake(t, fake.handler(t))
	getQuiet = true
	getOwners = []string{"sa-1"}

	cmd, _, _ := newTestCommand()
	err := runGet(cmd, []string{"environments"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter --owner is not supported for environment")
}
