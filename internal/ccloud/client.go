package ccloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"ccloudctl/pkg/logging"
)

const (
	// DefaultEndpoint is the public control-plane endpoint.
	DefaultEndpoint = "https://api.confluent.cloud"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 60 * time.Second

	// DefaultRetries is the total number of attempts for a rate-limited
	// request, including the first one.
	DefaultRetries = 5

	// DefaultRetryMaxDelay caps the exponential backoff between attempts.
	DefaultRetryMaxDelay = 12 * time.Second

	// defaultPageSize is requested on every collection listing.
	defaultPageSize = 100
)

// Environment variables consulted by Options.FromEnv.
const (
	EnvEndpoint      = "CONFLUENT_API_ENDPOINT"
	EnvAPIKey        = "CONFLUENT_API_KEY"
	EnvAPISecret     = "CONFLUENT_API_SECRET"
	EnvTimeout       = "CONFLUENT_API_TIMEOUT"
	EnvRetries       = "CONFLUENT_API_RETRIES"
	EnvRetryMaxDelay = "CONFLUENT_API_RETRY_MAX_DELAY"
)

// Options configures a Client. The zero value is usable once FromEnv
// has filled in credentials; everything else falls back to defaults.
type Options struct {
	// Endpoint is the control-plane base URL. Defaults to DefaultEndpoint.
	Endpoint string

	// APIKey and APISecret are the cloud credentials used for basic auth.
	APIKey    string
	APISecret string

	// Timeout bounds each HTTP request including retries of the body read.
	Timeout time.Duration

	// Retries is the total number of attempts for rate-limited requests.
	Retries int

	// RetryMaxDelay caps the backoff delay between attempts.
	RetryMaxDelay time.Duration

	// UserAgent overrides the User-Agent header sent with every request.
	UserAgent string

	// HTTPClient replaces the default HTTP client, mainly for tests.
	HTTPClient *http.Client
}

// FromEnv returns a copy of the options with unset fields filled from the
// CONFLUENT_API_* environment variables. Explicitly set fields win over
// the environment.
func (o Options) FromEnv() Options {
	if o.Endpoint == "" {
		o.Endpoint = os.Getenv(EnvEndpoint)
	}
	if o.APIKey == "" {
		o.APIKey = os.Getenv(EnvAPIKey)
	}
	if o.APISecret == "" {
		o.APISecret = os.Getenv(EnvAPISecret)
	}
	if o.Timeout == 0 {
		o.Timeout = envSeconds(EnvTimeout)
	}
	if o.Retries == 0 {
		if v := os.Getenv(EnvRetries); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				logging.Warn("Client", "ignoring invalid %s value %q", EnvRetries, v)
			} else {
				o.Retries = n
			}
		}
	}
	if o.RetryMaxDelay == 0 {
		o.RetryMaxDelay = envSeconds(EnvRetryMaxDelay)
	}
	return o
}

// envSeconds reads an environment variable holding a duration in seconds.
func envSeconds(name string) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		logging.Warn("Client", "ignoring invalid %s value %q", name, v)
		return 0
	}
	return time.Duration(n) * time.Second
}

// Client talks to the Confluent Cloud control plane. All methods are safe
// for concurrent use.
type Client struct {
	endpoint      *url.URL
	apiKey        string
	apiSecret     string
	userAgent     string
	retries       int
	retryMaxDelay time.Duration
	httpClient    *http.Client
}

// NewClient validates the options and returns a ready client. The API key
// and secret are required; everything else has a default.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("api key is required (set %s)", EnvAPIKey)
	}
	if opts.APISecret == "" {
		return nil, fmt.Errorf("api secret is required (set %s)", EnvAPISecret)
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: missing scheme or host", endpoint)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	retries := opts.Retries
	if retries < 1 {
		retries = DefaultRetries
	}
	retryMaxDelay := opts.RetryMaxDelay
	if retryMaxDelay == 0 {
		retryMaxDelay = DefaultRetryMaxDelay
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "ccloudctl"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		endpoint:      u,
		apiKey:        opts.APIKey,
		apiSecret:     opts.APISecret,
		userAgent:     userAgent,
		retries:       retries,
		retryMaxDelay: retryMaxDelay,
		httpClient:    httpClient,
	}, nil
}

// Endpoint returns the configured base URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// do sends a single API request. GET requests encode query parameters,
// other methods marshal body as JSON. A non-nil out receives the decoded
// response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.endpoint.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return c.doURL(ctx, method, u, body, out)
}

// doURL is do with a fully resolved URL, used directly when following
// pagination links. Requests rejected with 429 are retried with
// exponential backoff until the attempt budget is spent.
func (c *Client) doURL(ctx context.Context, method string, u *url.URL, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
		if err != nil {
			return fmt.Errorf("failed to build %s request for %s: %w", method, u.Path, err)
		}
		req.SetBasicAuth(c.apiKey, c.apiSecret)
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		logging.Debug("Client", "%s %s (attempt %d/%d)", method, u.Path, attempt+1, c.retries)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request to %s failed: %w", u.Path, err)
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("failed to read response from %s: %w", u.Path, readErr)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return decodeResponse(resp.StatusCode, respBody, out)
		}
		if attempt >= c.retries-1 {
			return decodeResponse(resp.StatusCode, respBody, out)
		}

		delay := c.backoffDelay(attempt)
		logging.Warn("Client", "rate limited on %s %s, retrying in %s", method, u.Path, delay.Round(time.Millisecond))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// backoffDelay returns the wait before the next attempt: 2^attempt seconds
// plus up to one second of jitter, capped at the configured maximum.
func (c *Client) backoffDelay(attempt int) time.Duration {
	jitter := rand.N(time.Second)
	if attempt > 20 {
		return c.retryMaxDelay + jitter
	}
	delay := time.Duration(1<<uint(attempt)) * time.Second
	if delay > c.retryMaxDelay {
		return c.retryMaxDelay + jitter
	}
	return delay + jitter
}

// decodeResponse maps a response status to a result. 2xx bodies are
// decoded into out, 204 is an empty success, everything else becomes an
// APIError.
func decodeResponse(status int, body []byte, out any) error {
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	case http.StatusNoContent:
		return nil
	default:
		return newAPIError(status, body)
	}
}

// ListMeta carries the pagination links of a collection response.
type ListMeta struct {
	First     string `json:"first,omitempty"`
	Last      string `json:"last,omitempty"`
	Prev      string `json:"prev,omitempty"`
	Next      string `json:"next,omitempty"`
	TotalSize int    `json:"total_size,omitempty"`
}

// listPage is the envelope shared by all collection endpoints.
type listPage struct {
	APIVersion string            `json:"api_version,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	Metadata   ListMeta          `json:"metadata"`
	Data       []json.RawMessage `json:"data"`
}

// listAll fetches every page of a collection, following metadata.next
// links until they run out. Relative links are resolved against the
// configured endpoint.
func (c *Client) listAll(ctx context.Context, path string, query url.Values) ([]json.RawMessage, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("page_size", strconv.Itoa(defaultPageSize))

	u := c.endpoint.JoinPath(path)
	u.RawQuery = query.Encode()

	var items []json.RawMessage
	for {
		var page listPage
		if err := c.doURL(ctx, http.MethodGet, u, nil, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Data...)

		if page.Metadata.Next == "" {
			return items, nil
		}
		next, err := url.Parse(page.Metadata.Next)
		if err != nil {
			return nil, fmt.Errorf("invalid next page link %q: %w", page.Metadata.Next, err)
		}
		u = c.endpoint.ResolveReference(next)
	}
}

// decodeItems unmarshals raw collection items into their concrete type.
func decodeItems[T any](raw []json.RawMessage) ([]T, error) {
	items := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("failed to decode list item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Ping lists environments to verify both connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	var page listPage
	if err := c.do(ctx, http.MethodGet, environmentsPath, nil, nil, &page); err != nil {
		return err
	}
	if page.Kind != "EnvironmentList" {
		return fmt.Errorf("unexpected response kind %q from %s", page.Kind, environmentsPath)
	}
	return nil
}
