package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	valkeylib "github.com/valkey-io/valkey-go"
)

const storageOpTimeout = 3 * time.Second

// SessionStorage implements fiber.Storage on top of the shared Client so the
// session middleware keeps its state in the cache.
type SessionStorage struct {
	client *Client
	prefix string
}

var _ fiber.Storage = (*SessionStorage)(nil)

// NewSessionStorage stores every session under "<prefix>session:<id>".
func NewSessionStorage(client *Client) *SessionStorage {
	return &SessionStorage{
		client: client,
		prefix: client.Key("session") + ":",
	}
}

func (s *SessionStorage) fullKey(key string) string {
	return s.prefix + key
}

// Get returns (nil, nil) when the key does not exist, as fiber expects.
func (s *SessionStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageOpTimeout)
	defer cancel()

	inner := s.client.Inner()
	data, err := inner.Do(ctx, inner.B().Get().Key(s.fullKey(key)).Build()).AsBytes()
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return data, nil
}

// Set stores val; a zero exp keeps the key without expiry.
func (s *SessionStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageOpTimeout)
	defer cancel()

	inner := s.client.Inner()
	set := inner.B().Set().Key(s.fullKey(key)).Value(string(val))
	var err error
	if exp > 0 {
		err = inner.Do(ctx, set.Ex(exp).Build()).Error()
	} else {
		err = inner.Do(ctx, set.Build()).Error()
	}
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageOpTimeout)
	defer cancel()

	inner := s.client.Inner()
	if err := inner.Do(ctx, inner.B().Del().Key(s.fullKey(key)).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Reset removes every session under the prefix. Uses SCAN, never KEYS.
func (s *SessionStorage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inner := s.client.Inner()
	var cursor uint64
	for {
		entry, err := inner.Do(ctx, inner.B().Scan().Cursor(cursor).Match(s.prefix+"*").Count(100).Build()).AsScanEntry()
		if err != nil {
			return fmt.Errorf("failed to scan sessions: %w", err)
		}
		// One DEL per key: a clustered cache rejects multi-key commands
		// whose keys hash to different slots.
		cmds := make(valkeylib.Commands, 0, len(entry.Elements))
		for _, k := range entry.Elements {
			cmds = append(cmds, inner.B().Del().Key(k).Build())
		}
		for _, resp := range inner.DoMulti(ctx, cmds...) {
			if err := resp.Error(); err != nil {
				return fmt.Errorf("failed to delete sessions: %w", err)
			}
		}
		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

// Close is a no-op: the Client is owned by the application and closed at shutdown.
func (s *SessionStorage) Close() error {
	return nil
}
