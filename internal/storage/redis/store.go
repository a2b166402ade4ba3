// Package redis keeps session snapshots in Redis so several server
// processes can serve the same browser session. Updates are optimistic
// transactions on the session key. Live updates still only reach
// subscribers of the process that applied the transition.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jaminalder/tictactoe-rounds/internal/domain"
	"github.com/jaminalder/tictactoe-rounds/internal/storage"
	backend "github.com/redis/go-redis/v9"
)

const (
	defaultPrefix     = "tictactoe:session:"
	defaultMaxRetries = 10
)

// Store implements the session store on a go-redis client.
type Store struct {
	client     *backend.Client
	prefix     string
	ttl        time.Duration
	maxRetries int
}

type Option func(*Store)

// WithTTL expires idle sessions. Every write refreshes the expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithMaxRetries bounds how often Update retries after losing a race.
func WithMaxRetries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// Open connects to addr and pings the server.
func Open(ctx context.Context, addr, password string, db int, opts ...Option) (*Store, error) {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewFromClient(client, opts...), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client:     client,
		prefix:     defaultPrefix,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

// Load returns the snapshot for id.
func (s *Store) Load(ctx context.Context, id string) (domain.Match, error) {
	m, found, err := get(ctx, s.client, s.key(id))
	if err != nil {
		return domain.Match{}, err
	}
	if !found {
		return domain.Match{}, storage.ErrSessionNotFound
	}
	return m, nil
}

// Update runs fn on the snapshot for id inside WATCH/MULTI. When another
// writer changes the key first, the transaction fails and fn runs again on
// the fresh snapshot.
func (s *Store) Update(ctx context.Context, id string, fn storage.UpdateFunc) error {
	key := s.key(id)
	txf := func(tx *backend.Tx) error {
		cur, found, err := get(ctx, tx, key)
		if err != nil {
			return err
		}
		next, write := fn(cur, found)
		if !write {
			return nil
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("could not marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Set(ctx, key, raw, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, backend.TxFailedErr) {
			continue
		}
		return fmt.Errorf("failed to update session: %w", err)
	}
	return fmt.Errorf("update session %s: %w", id, storage.ErrConflict)
}

// getter is the part of *backend.Client and *backend.Tx that get uses.
type getter interface {
	Get(ctx context.Context, key string) *backend.StringCmd
}

func get(ctx context.Context, c getter, key string) (domain.Match, bool, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, backend.Nil) {
		return domain.Match{}, false, nil
	}
	if err != nil {
		return domain.Match{}, false, fmt.Errorf("failed to get session: %w", err)
	}

	var m domain.Match
	if err := json.Unmarshal(raw, &m); err != nil {
		return domain.Match{}, false, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return m, true, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
