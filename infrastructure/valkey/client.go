package valkey

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	valkeylib "github.com/valkey-io/valkey-go"
)

const (
	// DefaultConnectTimeout is the maximum time to wait for initial connection
	DefaultConnectTimeout = 5 * time.Second
)

// Config holds the configuration for creating a Valkey client
type Config struct {
	Address        string
	Username       string
	Password       string
	TLS            bool
	KeyPrefix      string
	ConnectTimeout time.Duration // Optional, defaults to DefaultConnectTimeout
}

// Client wraps the valkey-go client with application-specific functionality.
// This struct should be created via NewClient and passed as a dependency.
type Client struct {
	inner     valkeylib.Client
	keyPrefix string
	// creds is read by every (re)connect handshake, so a refreshed token
	// also authenticates connections dialed after the refresh.
	creds atomic.Pointer[valkeylib.AuthCredentials]
}

// NewClient creates a new Valkey client instance.
// The caller is responsible for calling Close() when done.
// Returns an error if the connection cannot be established within the timeout.
func NewClient(cfg Config) (*Client, error) {
	c := &Client{}
	c.creds.Store(&valkeylib.AuthCredentials{Username: cfg.Username, Password: cfg.Password})

	opts := valkeylib.ClientOption{
		InitAddress: []string{cfg.Address},
		// Server-assisted client caching needs CLIENT TRACKING, which managed
		// caches may refuse; sessions are read once per request anyway.
		DisableCache: true,
	}
	if cfg.Username != "" || cfg.Password != "" {
		opts.AuthCredentialsFn = func(valkeylib.AuthCredentialsContext) (valkeylib.AuthCredentials, error) {
			return *c.creds.Load(), nil
		}
		// AUTH only reaches the wire it is sent on. One pipelined wire per
		// node lets Reauthenticate cover every live connection.
		opts.PipelineMultiplex = -1
	}
	if cfg.TLS {
		host := cfg.Address
		if i := strings.LastIndex(host, ":"); i > 0 {
			host = host[:i]
		}
		opts.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}

	inner, err := valkeylib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	// Use configured timeout or default
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = DefaultConnectTimeout
	}

	// Test connection with ping (with timeout to avoid hanging)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := inner.Do(ctx, inner.B().Ping().Build()).Error(); err != nil {
		inner.Close()
		return nil, fmt.Errorf("failed to ping valkey (timeout: %v): %w", timeout, err)
	}

	prefix := cfg.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}

	c.inner = inner
	c.keyPrefix = prefix
	return c, nil
}

// Inner returns the underlying valkey-go client.
// Use this when you need direct access to the raw client.
func (c *Client) Inner() valkeylib.Client {
	return c.inner
}

// Close closes the Valkey connection.
func (c *Client) Close() {
	if c.inner != nil {
		c.inner.Close()
	}
}

// Reauthenticate issues AUTH with new credentials on every node's live
// connection and, once the server accepts them, makes them the credentials
// for future handshakes. On failure the previous credentials stay in place.
func (c *Client) Reauthenticate(ctx context.Context, username, password string) error {
	for addr, node := range c.inner.Nodes() {
		var cmd valkeylib.Completed
		if username != "" {
			cmd = node.B().Auth().Username(username).Password(password).Build()
		} else {
			cmd = node.B().Auth().Password(password).Build()
		}
		if err := node.Do(ctx, cmd).Error(); err != nil {
			return fmt.Errorf("AUTH rejected by %s: %w", addr, err)
		}
	}
	c.creds.Store(&valkeylib.AuthCredentials{Username: username, Password: password})
	logrus.Debug("[CACHE] Connection re-authenticated")
	return nil
}

// Key constructs a prefixed key from the given parts.
// Example: Key("session", "abc") -> "azchat:session:abc"
func (c *Client) Key(parts ...string) string {
	if len(parts) == 0 {
		return strings.TrimSuffix(c.keyPrefix, ":")
	}
	return c.keyPrefix + strings.Join(parts, ":")
}

// Ping tests the connection to Valkey with a context for timeout control.
func (c *Client) Ping(ctx context.Context) error {
	return c.inner.Do(ctx, c.inner.B().Ping().Build()).Error()
}

// IsNil checks if an error returned by the client represents a Valkey NIL response.
func IsNil(err error) bool {
	return valkeylib.IsValkeyNil(err)
}
