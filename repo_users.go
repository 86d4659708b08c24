package tourbase

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var saveUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"password_changed_at" = ?,
	"reset_secret_hash" = NULL,
	"reset_secret_expires_at" = NULL,
	"updated_at" = current_timestamp
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// Reset fields are written as partial patches, the full-field validation
// pass never runs for them.
var setResetSecretSQL = `UPDATE "users" AS "usr"
SET
	"reset_secret_hash" = ?,
	"reset_secret_expires_at" = ?,
	"updated_at" = current_timestamp
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var clearResetSecretSQL = `UPDATE "users" AS "usr"
SET
	"reset_secret_hash" = NULL,
	"reset_secret_expires_at" = NULL,
	"updated_at" = current_timestamp
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// Users is the identity repository surface the credential lifecycle needs.
// Reads always scan the password hash; keeping it out of responses is the
// serialization layer's job.
type Users interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByResetSecretHash(ctx context.Context, hash string) (*User, error)
	GetByResetSecretHashTx(ctx context.Context, tx bun.IDB, hash string) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	SavePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SavePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
	SetResetSecret(ctx context.Context, id uuid.UUID, hash string, expires time.Time) error
	SetResetSecretTx(ctx context.Context, tx bun.IDB, id uuid.UUID, hash string, expires time.Time) error
	ClearResetSecret(ctx context.Context, id uuid.UUID) error
	ClearResetSecretTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": NormalizeEmail(email)})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByResetSecretHash(ctx context.Context, hash string) (*User, error) {
	return a.GetByResetSecretHashTx(ctx, a.db, hash)
}

// GetByResetSecretHashTx matches the stored hash AND an expiry still in the
// future; a wrong secret and an expired one are indistinguishable here.
func (a *users) GetByResetSecretHashTx(ctx context.Context, tx bun.IDB, hash string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.reset_secret_hash = ?", hash).
		Where("?TableAlias.reset_secret_expires_at > ?", time.Now()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

// RegisterTx runs the full validation pass and persists a new identity.
func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) SavePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.SavePasswordTx(ctx, a.db, id, passwordHash)
}

// SavePasswordTx stores a new hash, stamps the rotation anchor with the skew
// buffer applied, and clears any outstanding reset secret.
func (a *users) SavePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	changedAt := time.Now().Add(-passwordChangedSkew)
	res, err := a.Repository.RawTx(ctx, tx, saveUserPasswordSQL, passwordHash, changedAt, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *users) SetResetSecret(ctx context.Context, id uuid.UUID, hash string, expires time.Time) error {
	return a.SetResetSecretTx(ctx, a.db, id, hash, expires)
}

// SetResetSecretTx overwrites any prior secret, last write wins.
func (a *users) SetResetSecretTx(ctx context.Context, tx bun.IDB, id uuid.UUID, hash string, expires time.Time) error {
	res, err := a.Repository.RawTx(ctx, tx, setResetSecretSQL, hash, expires, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *users) ClearResetSecret(ctx context.Context, id uuid.UUID) error {
	return a.ClearResetSecretTx(ctx, a.db, id)
}

func (a *users) ClearResetSecretTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := a.Repository.RawTx(ctx, tx, clearResetSecretSQL, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func prepareUserDefaults(user *User) {
	if user == nil {
		return
	}

	user.Email = NormalizeEmail(user.Email)

	if user.Role == "" {
		user.Role = RoleUser
	}
}

// IsRecordNotFound reports whether the error is the repository's not-found
// condition.
func IsRecordNotFound(err error) bool {
	return repository.IsRecordNotFound(err)
}
