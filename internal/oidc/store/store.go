package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/openid/internal/oidc/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it.
// Sub-repositories are reached through methods so a Tx-scoped Store hands
// out repos bound to the same transaction.
type Store interface {
	AuthorizationCodes() AuthorizationCodes
	Consents() Consents
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type AuthorizationCodes interface {
	// CreateAuthorizationCode stores a freshly minted code. Returns
	// ErrAlreadyExists on a fingerprint collision.
	CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error

	// DeleteAuthorizationCodesForRequest removes every outstanding code for
	// the same client, subject and redirect_uri.
	DeleteAuthorizationCodesForRequest(ctx context.Context, clientID, subject, redirectURI string) (int64, error)

	// ConsumeAuthorizationCode deletes the code and returns what it held in
	// a single statement, so only one caller can ever get a given code.
	// Expired rows are returned too; the caller decides what expiry means.
	ConsumeAuthorizationCode(ctx context.Context, hash string) (domain.AuthorizationCode, error)

	// DeleteAuthorizationCode removes a code without reading it.
	DeleteAuthorizationCode(ctx context.Context, hash string) error

	// DeleteExpiredAuthorizationCodes removes codes whose expires_at is
	// before cutoff and reports how many went.
	DeleteExpiredAuthorizationCodes(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteAllAuthorizationCodes empties the table.
	DeleteAllAuthorizationCodes(ctx context.Context) (int64, error)
}

type Consents interface {
	// GetConsent returns the consent for a (subject, client) pair.
	GetConsent(ctx context.Context, subject, clientID string) (domain.Consent, error)

	// UpsertConsent creates the record or moves consented_at forward.
	UpsertConsent(ctx context.Context, c domain.Consent) error

	// DeleteAllConsents empties the table.
	DeleteAllConsents(ctx context.Context) (int64, error)
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used at login and to resolve claims for a subject.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}
