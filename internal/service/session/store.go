package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/medibook/booking-gateway/internal/model"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session not found")

// Store persists sessions for the lifetime of a login. It is the gateway's
// analogue of the browser's local storage: token plus user snapshot, nothing
// else survives logout.
type Store interface {
	Put(ctx context.Context, sess *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

type memoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore keeps sessions in process memory with the given TTL.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (s *memoryStore) Put(_ context.Context, sess *model.Session) error {
	s.cache.Set(sess.ID, sess, gocache.DefaultExpiration)
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*model.Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*model.Session), nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore keeps sessions in redis so multiple gateway replicas share
// them.
func NewRedisStore(url string, ttl time.Duration) (Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &redisStore{
		client: redis.NewClient(opts),
		ttl:    ttl,
	}, nil
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *redisStore) Put(ctx context.Context, sess *model.Session) error {
	buf, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(sess.ID), buf, s.ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, id string) (*model.Session, error) {
	buf, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal(buf, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}
