package shared

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Identity describes the authenticated caller resolved from a bearer token.
type Identity struct {
	Token     string
	UserID    int64
	Role      string
	CompanyID int64
	Started   time.Time
}

// SessionStore manages bearer-token sessions backed by Redis.
//
// Each session lives at session:<token>; a per-user set user_sessions:<id>
// indexes tokens so that a global sign-out is a single set scan.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Create opens a new session for the user and returns its bearer token.
func (s *SessionStore) Create(ctx context.Context, userID int64, role string, companyID int64) (string, error) {
	token := uuid.NewString()
	now := time.Now()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.sessionKey(token), map[string]any{
		"user_id":    strconv.FormatInt(userID, 10),
		"role":       role,
		"company_id": strconv.FormatInt(companyID, 10),
		"started_at": strconv.FormatInt(now.UnixMilli(), 10),
	})
	pipe.Expire(ctx, s.sessionKey(token), s.ttl)
	pipe.SAdd(ctx, s.userKey(userID), token)
	pipe.Expire(ctx, s.userKey(userID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	return token, nil
}

// Resolve looks up the identity behind a bearer token.
func (s *SessionStore) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	fields, err := s.client.HGetAll(ctx, s.sessionKey(token)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrSessionNotFound
	}
	userID, err := strconv.ParseInt(fields["user_id"], 10, 64)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	startedMs, _ := strconv.ParseInt(fields["started_at"], 10, 64)
	companyID, _ := strconv.ParseInt(fields["company_id"], 10, 64)
	return &Identity{
		Token:     token,
		UserID:    userID,
		Role:      fields["role"],
		CompanyID: companyID,
		Started:   time.UnixMilli(startedMs),
	}, nil
}

// Revoke deletes a single session.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	ident, err := s.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.sessionKey(token))
	pipe.SRem(ctx, s.userKey(ident.UserID), token)
	_, err = pipe.Exec(ctx)
	return err
}

// RevokeAll deletes every session belonging to the user and reports how many
// were removed. This is the primitive behind the server-side global sign-out.
func (s *SessionStore) RevokeAll(ctx context.Context, userID int64) (int, error) {
	tokens, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, nil
	}
	pipe := s.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, s.sessionKey(token))
	}
	pipe.Del(ctx, s.userKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return len(tokens), nil
}

// TTL exposes the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

func (s *SessionStore) sessionKey(token string) string {
	return "session:" + token
}

func (s *SessionStore) userKey(userID int64) string {
	return "user_sessions:" + strconv.FormatInt(userID, 10)
}
