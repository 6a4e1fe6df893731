package sqlite

import (
	"context"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
)

type consentsRepo struct {
	db dbtx
}

func (r *consentsRepo) GetConsent(ctx context.Context, subject, clientID string) (domain.Consent, error) {
	var consentedAt int64
	err := r.db.QueryRowContext(ctx, `
SELECT consented_at FROM consents
WHERE subject = ? AND client_id = ?`,
		subject, clientID,
	).Scan(&consentedAt)
	if err != nil {
		return domain.Consent{}, mapNotFound(err)
	}
	return domain.Consent{
		Subject:     subject,
		ClientID:    clientID,
		ConsentedAt: fromUnixMilli(consentedAt),
	}, nil
}

func (r *consentsRepo) UpsertConsent(ctx context.Context, c domain.Consent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO consents (subject, client_id, consented_at)
VALUES (?, ?, ?)
ON CONFLICT (subject, client_id) DO UPDATE SET consented_at = excluded.consented_at`,
		c.Subject, c.ClientID, toUnixMilli(c.ConsentedAt),
	)
	return err
}

func (r *consentsRepo) DeleteAllConsents(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM consents`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
