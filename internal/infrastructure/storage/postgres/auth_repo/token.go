package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"medreg/internal/core/apperror"
	"medreg/internal/core/id"
	"medreg/internal/domain/auth"
	"medreg/internal/infrastructure/storage/postgres"
)

const refreshTokensTable = "refresh_tokens"

// TokenRepo implements auth.TokenRepository.
type TokenRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewTokenRepo creates a new token repository.
func NewTokenRepo(txManager *postgres.TxManager) *TokenRepo {
	return &TokenRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// SaveRefreshToken saves a refresh token.
func (r *TokenRepo) SaveRefreshToken(ctx context.Context, token *auth.RefreshToken) error {
	sql, args, err := r.builder.Insert(refreshTokensTable).
		Columns("id", "user_id", "token_hash", "expires_at", "created_at", "revoked_at", "revoked_reason").
		Values(token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt, token.RevokedAt, token.RevokedReason).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.WrapStoreError("save refresh token", err)
	}
	return nil
}

// GetRefreshToken retrieves a refresh token by hash.
func (r *TokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	sql := `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at, revoked_reason
		FROM refresh_tokens
		WHERE token_hash = $1
	`

	var token auth.RefreshToken
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &token, sql, tokenHash); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("refresh token", "")
		}
		return nil, postgres.WrapStoreError("get refresh token", err)
	}
	return &token, nil
}

// RevokeRefreshToken revokes one refresh token.
func (r *TokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	sql := `
		UPDATE refresh_tokens
		SET revoked_at = $2, revoked_reason = $3
		WHERE id = $1 AND revoked_at IS NULL
	`

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, tokenID, time.Now(), reason); err != nil {
		return postgres.WrapStoreError("revoke refresh token", err)
	}
	return nil
}

// RevokeAllUserTokens revokes all tokens for a user.
func (r *TokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	sql := `
		UPDATE refresh_tokens
		SET revoked_at = $2, revoked_reason = $3
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, userID, time.Now(), reason); err != nil {
		return postgres.WrapStoreError("revoke user tokens", err)
	}
	return nil
}

// CleanupExpiredTokens removes expired tokens, returning the count.
func (r *TokenRepo) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	sql := `DELETE FROM refresh_tokens WHERE expires_at < $1`

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, time.Now())
	if err != nil {
		return 0, postgres.WrapStoreError("cleanup expired tokens", err)
	}
	return tag.RowsAffected(), nil
}

// Ensure interface compliance.
var _ auth.TokenRepository = (*TokenRepo)(nil)
