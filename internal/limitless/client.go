// Package limitless is a client for the Limitless Exchange REST API. It
// logs in with an Ethereum EOA key and downloads the account's trade
// history as raw records in the API shape.
package limitless

import (
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

const (
	DefaultBaseURL = "https://api.limitless.exchange"

	// SessionCookie is set by /auth/login and authorizes portfolio requests.
	SessionCookie = "limitless_session"
)

// Client talks to the Limitless API. It is not safe for concurrent Login
// calls; fetches after a successful Login may run concurrently.
type Client struct {
	baseURL    string
	signer     *ecdsa.PrivateKey
	address    string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration

	session string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client for baseURL. privateKey is a hex secp256k1 key
// with or without the 0x prefix; it may be empty for public endpoints.
func NewClient(baseURL, privateKey string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	if privateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKey), "0x"))
		if err != nil {
			return nil, fmt.Errorf("parsing private key: %w", err)
		}
		c.signer = key
		c.address = crypto.PubkeyToAddress(key.PublicKey).Hex()
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry count and initial backoff.
func WithRetries(maxRetries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSession reuses a session cookie from an earlier login.
func WithSession(cookie string) ClientOption {
	return func(c *Client) {
		c.session = cookie
	}
}

// Address returns the checksummed wallet address, or "" without a key.
func (c *Client) Address() string { return c.address }

// Authenticated reports whether the client holds a session cookie.
func (c *Client) Authenticated() bool { return c.session != "" }
