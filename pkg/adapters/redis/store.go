package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/format"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "fasim:"

// farFuture is the index score of sessions without expiration (2100-01-01).
const farFuture = 4102444800

// Store implements ports.AutomatonStore and ports.SessionStore using Redis.
// Automata are kept in the text format, sessions as JSON with an optional TTL.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for sessions. Automata never expire.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client, e.g. to build a Locker on the same connection.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) automatonKey(name string) string {
	return s.prefix + "automaton:" + name
}

func (s *Store) automatonIndexKey() string {
	return s.prefix + "automata"
}

func (s *Store) sessionKey(id string) string {
	return s.prefix + "session:" + id
}

func (s *Store) sessionIndexKey() string {
	return s.prefix + "session:index"
}

// SaveAutomaton stores the canonical text of the automaton and indexes its name.
func (s *Store) SaveAutomaton(ctx context.Context, name string, a *domain.Automaton) error {
	if err := domain.ValidateKey(name); err != nil {
		return err
	}
	data, err := format.Marshal(a)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.automatonKey(name), data, 0)
	pipe.SAdd(ctx, s.automatonIndexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save automaton to redis: %w", err)
	}
	return nil
}

// LoadAutomaton parses the stored text back into an automaton.
func (s *Store) LoadAutomaton(ctx context.Context, name string) (*domain.Automaton, error) {
	val, err := s.client.Get(ctx, s.automatonKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrAutomatonNotFound
		}
		return nil, fmt.Errorf("failed to get automaton from redis: %w", err)
	}
	return format.Unmarshal(val)
}

// DeleteAutomaton removes the automaton and its index entry.
func (s *Store) DeleteAutomaton(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.automatonKey(name))
	pipe.SRem(ctx, s.automatonIndexKey(), name)
	_, err := pipe.Exec(ctx)
	return err
}

// ListAutomata returns the indexed names, sorted.
func (s *Store) ListAutomata(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.automatonIndexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list automata: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Save persists the session to Redis.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	if err := domain.ValidateKey(session.ID); err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.Pipeline()

	// 0 means no expiration.
	pipe.Set(ctx, s.sessionKey(session.ID), data, s.ttl)

	// Score = Now + TTL, so List can prune expired members lazily.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}
	pipe.ZAdd(ctx, s.sessionIndexKey(), backend.Z{
		Score:  score,
		Member: session.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the session from Redis.
func (s *Store) Load(ctx context.Context, id string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(val, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := domain.ValidateKey(id); err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.sessionKey(id))
	pipe.ZRem(ctx, s.sessionIndexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns active sessions, pruning expired index members first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.sessionIndexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.sessionIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
