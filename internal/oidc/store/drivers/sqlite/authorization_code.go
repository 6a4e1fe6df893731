package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
	"github.com/aussiebroadwan/openid/internal/oidc/store"
)

type authorizationCodesRepo struct {
	db dbtx
}

const authorizationCodeColumns = `code_hash, client_id, subject, redirect_uri, scope, id_token, nonce,
	code_challenge, code_challenge_method, expires_at, created_at`

func (r *authorizationCodesRepo) CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO authorization_codes (`+authorizationCodeColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		code.CodeHash,
		code.ClientID,
		code.Subject,
		code.RedirectURI,
		code.Scope,
		code.IDToken,
		code.Nonce,
		code.CodeChallenge,
		code.CodeChallengeMethod,
		toUnixMilli(code.ExpiresAt),
		toUnixMilli(code.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *authorizationCodesRepo) DeleteAuthorizationCodesForRequest(
	ctx context.Context,
	clientID, subject, redirectURI string,
) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM authorization_codes
WHERE client_id = ? AND subject = ? AND redirect_uri = ?`,
		clientID, subject, redirectURI,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *authorizationCodesRepo) ConsumeAuthorizationCode(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	row := r.db.QueryRowContext(ctx, `
DELETE FROM authorization_codes
WHERE code_hash = ?
RETURNING `+authorizationCodeColumns,
		hash,
	)

	var (
		c                    domain.AuthorizationCode
		expiresAt, createdAt int64
	)
	err := row.Scan(
		&c.CodeHash,
		&c.ClientID,
		&c.Subject,
		&c.RedirectURI,
		&c.Scope,
		&c.IDToken,
		&c.Nonce,
		&c.CodeChallenge,
		&c.CodeChallengeMethod,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}
	c.ExpiresAt = fromUnixMilli(expiresAt)
	c.CreatedAt = fromUnixMilli(createdAt)
	return c, nil
}

func (r *authorizationCodesRepo) DeleteAuthorizationCode(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM authorization_codes WHERE code_hash = ?`, hash)
	return err
}

func (r *authorizationCodesRepo) DeleteExpiredAuthorizationCodes(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM authorization_codes WHERE expires_at < ?`, toUnixMilli(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *authorizationCodesRepo) DeleteAllAuthorizationCodes(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM authorization_codes`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ store.AuthorizationCodes = (*authorizationCodesRepo)(nil)
