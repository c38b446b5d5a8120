package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type UserRow struct {
	ID           string `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByUsername(ctx context.Context, username string) (*UserRow, bool, error) {
	var u UserRow
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT id, username, password_hash FROM users WHERE username = ?`), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, storageErr("query user", err)
	}
	return &u, true, nil
}

// EnsureUsers inserts the given users unless the username already exists, so
// it is safe to run on every start. Existing hashes are never overwritten.
func (r *UserRepo) EnsureUsers(ctx context.Context, users []UserRow) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("begin seed users", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range users {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO users(id, username, password_hash)
			VALUES(?, ?, ?)
			ON CONFLICT(username) DO NOTHING
		`), u.ID, u.Username, u.PasswordHash); err != nil {
			return storageErr(fmt.Sprintf("seed user %s", u.Username), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit seed users", err)
	}
	return nil
}
