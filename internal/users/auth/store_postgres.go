// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/dberr"
	"github.com/taibuivan/authgate/internal/platform/postgres"
	"github.com/taibuivan/authgate/internal/users/identity"
)

// # PostgreSQL Repository

const userColumns = `id, email, name, passwordhash, isactive, lastlogin, datejoined`

// PostgresUserRepository implements [UserRepository] on the users_account table.
type PostgresUserRepository struct {
	db postgres.DBTX
}

// NewPostgresUserRepository creates a repository over a pool or transaction.
func NewPostgresUserRepository(db postgres.DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

/*
Create inserts a new account row.

Parameters:
  - context: context.Context
  - user: *identity.User (Entity to persist)

Returns:
  - error: identity.ErrEmailTaken on the unique email constraint, or database errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *identity.User) error {
	const query = `
		INSERT INTO users_account (id, email, name, passwordhash, isactive, lastlogin, datejoined)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := repository.db.Exec(context, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.IsActive,
		user.LastLogin,
		user.DateJoined,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return identity.ErrEmailTaken
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByEmail retrieves an account by its unique email address.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*identity.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users_account WHERE email = $1`

	user, err := repository.scanOne(context, query, email)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}
	return user, nil
}

// FindByID retrieves an account by its primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*identity.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users_account WHERE id = $1`

	user, err := repository.scanOne(context, query, id)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}
	return user, nil
}

/*
UpdateLastLogin stamps the account's last successful login.

Parameters:
  - context: context.Context
  - id: string
  - at: time.Time

Returns:
  - error: apperr.NotFound if no row matched, or database errors
*/
func (repository *PostgresUserRepository) UpdateLastLogin(context context.Context, id string, at time.Time) error {
	const query = `UPDATE users_account SET lastlogin = $2, updatedat = NOW() WHERE id = $1`

	tag, err := repository.db.Exec(context, query, id, at)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_last_login_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// scanOne runs a single-row query and maps "no rows" to NOT_FOUND.
func (repository *PostgresUserRepository) scanOne(context context.Context, query string, argument any) (*identity.User, error) {
	user := &identity.User{}
	err := repository.db.QueryRow(context, query, argument).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.IsActive,
		&user.LastLogin,
		&user.DateJoined,
	)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}

	return user, nil
}
