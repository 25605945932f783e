package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medibook/booking-gateway/internal/model"
	"github.com/medibook/booking-gateway/internal/upstream"
	apperrors "github.com/medibook/booking-gateway/pkg/errors"
	"github.com/medibook/booking-gateway/pkg/metrics"
)

// Service owns the session lifecycle: explicit init at login (hydrate from
// the backend response), lookup on every request, explicit teardown at
// logout. No ambient global state.
type Service struct {
	store   Store
	authAPI upstream.AuthAPI
	secret  []byte
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewService(store Store, authAPI upstream.AuthAPI, secret string, ttl time.Duration, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		authAPI: authAPI,
		secret:  []byte(secret),
		ttl:     ttl,
		metrics: m,
	}
}

// Login proxies credentials upstream, verifies the issued token and stores
// the resulting session.
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	token, user, err := s.authAPI.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	expiresAt, err := s.verifyToken(token, user)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	now := time.Now()
	if expiresAt.IsZero() || expiresAt.After(now.Add(s.ttl)) {
		expiresAt = now.Add(s.ttl)
	}

	sess := &model.Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      *user,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("store session: %w", err))
	}

	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
		s.metrics.SessionsActive.Inc()
	}
	return sess, nil
}

// Hydrate restores the session for a request, dropping it if expired.
func (s *Service) Hydrate(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.Unauthorized(err)
		}
		return nil, apperrors.Internal(fmt.Errorf("load session: %w", err))
	}
	if sess.Expired(time.Now()) {
		_ = s.store.Delete(ctx, id)
		return nil, apperrors.Unauthorized(errors.New("session expired"))
	}
	return sess, nil
}

// Logout tears the session down.
func (s *Service) Logout(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return apperrors.Internal(fmt.Errorf("delete session: %w", err))
	}
	if s.metrics != nil {
		s.metrics.SessionsActive.Dec()
	}
	return nil
}

// UpdateUser persists a refreshed user snapshot, e.g. after a profile edit.
func (s *Service) UpdateUser(ctx context.Context, sess *model.Session, user *model.User) error {
	sess.User = *user
	if err := s.store.Put(ctx, sess); err != nil {
		return apperrors.Internal(fmt.Errorf("store session: %w", err))
	}
	return nil
}

// verifyToken checks the backend-issued JWT against the shared secret and
// backfills the role claim when the login response omitted it.
func (s *Service) verifyToken(token string, user *model.User) (time.Time, error) {
	if len(s.secret) == 0 {
		return time.Time{}, errors.New("jwt secret not configured")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return time.Time{}, errors.New("invalid token claims")
	}

	if user.Role == "" {
		if role, ok := claims["role"].(string); ok {
			user.Role = model.Role(role)
		}
	}
	if !user.Role.Valid() {
		return time.Time{}, fmt.Errorf("unknown role %q", user.Role)
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}
	return expiresAt, nil
}
