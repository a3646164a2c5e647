package auth

import (
	"context"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

// Revocations 记录已登出令牌的 jti，保留到令牌自然过期
// redis 为 nil 时登出仅为客户端行为
type Revocations struct {
	redis radix.Client
}

// NewRevocations 构建作废表
func NewRevocations(redis radix.Client) *Revocations {
	return &Revocations{redis: redis}
}

func revokedKey(jti string) string {
	return "auth:revoked:" + jti
}

// Revoke 作废令牌
func (r *Revocations) Revoke(ctx context.Context, claims *Claims) error {
	if r == nil || r.redis == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	secs := int64(ttl / time.Second)
	if secs <= 0 {
		return nil
	}
	return r.redis.Do(radix.FlatCmd(nil, "SETEX", revokedKey(claims.ID), secs, 1))
}

// IsRevoked 判断令牌是否已作废
func (r *Revocations) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if r == nil || r.redis == nil || claims == nil || claims.ID == "" {
		return false, nil
	}
	var exists int
	if err := r.redis.Do(radix.Cmd(&exists, "EXISTS", revokedKey(claims.ID))); err != nil {
		return false, err
	}
	return exists == 1, nil
}
