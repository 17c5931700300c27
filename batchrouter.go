// Package batchrouter is a Go client for the BatchRouter batch LLM-inference
// API: upload JSONL datasets, create batch jobs, poll their status, and
// download results.
//
// A minimal session:
//
//	client, err := batchrouter.New("br_yourkey")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	ds, err := client.Datasets.Upload(ctx, "prompts.jsonl", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	batch, err := client.Batches.Create(ctx, batchrouter.BatchCreateParams{
//		DatasetName: ds.Name,
//	})
package batchrouter

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/VladislavLysov/batchrouter-go/callback"
)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://api.batchrouter.ai"

	// DefaultTimeout bounds every request unless overridden with
	// WithTimeout.
	DefaultTimeout = 60 * time.Second

	// EnvAPIKey is the environment variable NewFromEnv reads the
	// credential from.
	EnvAPIKey = "BATCHROUTER_API_KEY"

	// Version is the SDK release version sent in the User-Agent header.
	Version = "0.1.0"

	apiKeyPrefix     = "br_"
	defaultUserAgent = "batchrouter-go/" + Version
)

// Client is the BatchRouter API client. All requests flow through it; the
// Datasets, Batches, and Models fields expose the per-resource operations.
// A Client is safe for concurrent use and should be closed when no longer
// needed to release pooled connections.
type Client struct {
	apiKey      string
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	callbacks   []callback.Logger
	retryPolicy *RetryPolicy

	Datasets *DatasetsService
	Batches  *BatchesService
	Models   *ModelsService
}

// Option configures a Client. Options are applied in order.
type Option func(*Client)

// WithBaseURL points the client at a different API host. Trailing slashes
// are stripped.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout replaces the default 60s request timeout. It applies to the
// client's own http.Client; pass WithHTTPClient first if combining both.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent replaces the User-Agent header value.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithCallbacks registers observability hooks invoked after every request.
func WithCallbacks(loggers ...callback.Logger) Option {
	return func(c *Client) {
		c.callbacks = append(c.callbacks, loggers...)
	}
}

// WithRetry installs the given retry policy. The policy wraps the transport
// of whichever HTTP client the options settle on, so it combines with
// WithHTTPClient in either order. The client performs no retries unless this
// option is supplied.
func WithRetry(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retryPolicy = &policy
	}
}

// New creates a Client for the given API key. Keys start with "br_"; an
// empty or malformed key fails with an *Error wrapping ErrAuthentication
// before any connection is made. New never reads the environment — use
// NewFromEnv for that.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, authError("API key is required. Pass an API key to New or set the " +
			EnvAPIKey + " environment variable and use NewFromEnv.")
	}
	if !strings.HasPrefix(apiKey, apiKeyPrefix) {
		return nil, authError("Invalid API key format. API keys should start with 'br_'.")
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retryPolicy != nil {
		c.httpClient.Transport = newRetryTransport(c.httpClient.Transport, *c.retryPolicy)
	}

	c.Datasets = &DatasetsService{client: c}
	c.Batches = &BatchesService{client: c}
	c.Models = &ModelsService{client: c}
	return c, nil
}

// NewFromEnv creates a Client with the credential from the
// BATCHROUTER_API_KEY environment variable.
func NewFromEnv(opts ...Option) (*Client, error) {
	apiKey := os.Getenv(EnvAPIKey)
	if apiKey == "" {
		return nil, authError("API key is required. Set the " + EnvAPIKey +
			" environment variable or pass a key to New.")
	}
	return New(apiKey, opts...)
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
