// Package ccloud is a minimal client for the Confluent Cloud control
// plane, covering the resource kinds ccloudctl manages: environments,
// clusters, service accounts, API keys, members, role bindings and
// connectors.
//
// Requests authenticate with basic auth and carry a context for
// cancellation. Collection listings transparently follow pagination
// links, and requests rejected with 429 are retried with exponential
// backoff up to a configurable attempt budget. Error responses become
// typed *APIError values; IsNotFound, IsRateLimited and IsAuthFailure
// classify them without string matching.
//
// Delete helpers treat an already-missing resource as success, which
// keeps teardown idempotent.
package ccloud
