package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, password_hash, given_name, family_name, nickname, email,
	email_verified, phone_number, picture, capabilities, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Username,
		u.PasswordHash,
		u.GivenName,
		u.FamilyName,
		u.Nickname,
		u.Email,
		boolToInt(u.EmailVerified),
		u.PhoneNumber,
		u.Picture,
		strings.Join(u.Capabilities, " "),
		toUnixMilli(u.CreatedAt),
		toUnixMilli(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, toUnixMilli(time.Now()), userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u                    domain.User
		emailVerified        int
		capabilities         string
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.GivenName,
		&u.FamilyName,
		&u.Nickname,
		&u.Email,
		&emailVerified,
		&u.PhoneNumber,
		&u.Picture,
		&capabilities,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.EmailVerified = emailVerified != 0
	u.Capabilities = splitAndFilter(capabilities)
	u.CreatedAt = fromUnixMilli(createdAt)
	u.UpdatedAt = fromUnixMilli(updatedAt)
	return u, nil
}
