package pgrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type dbUser struct {
	ID           int       `db:"id"`
	Username     string    `db:"username"`
	Role         string    `db:"role"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (u dbUser) toUser() user.User {
	return user.User{
		ID:           u.ID,
		Username:     u.Username,
		Role:         user.Role(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// isUniqueViolation reports whether err is a psql unique_violation.
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = ?`
	args := []interface{}{username}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		query += ` AND id NOT IN (?)`
		var err error
		if query, args, err = sqlx.In(query+`)`, username, ids); err != nil {
			return errors.Wrap(err, "expanding excluded ids")
		}
	} else {
		query += `)`
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if exists {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := repo.db.QueryRowxContext(ctx, query, usr.Username, usr.PasswordHash, usr.Role.String()).
		Scan(&usr.ID, &usr.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var usr dbUser
	query := `SELECT id, username, password_hash, role, created_at FROM users WHERE id = $1`
	if err := repo.db.GetContext(ctx, &usr, query, id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by ID")
	}
	return usr.toUser(), nil
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var usr dbUser
	query := `SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`
	if err := repo.db.GetContext(ctx, &usr, query, username); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by username")
	}
	return usr.toUser(), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	sets := make([]string, 0, 2)
	args := []interface{}{usr.ID}
	if usr.Username != "" {
		args = append(args, usr.Username)
		sets = append(sets, `username = $2`)
	}
	if usr.PasswordHash != nil {
		args = append(args, usr.PasswordHash)
		if len(sets) == 0 {
			sets = append(sets, `password_hash = $2`)
		} else {
			sets = append(sets, `password_hash = $3`)
		}
	}
	if len(sets) == 0 {
		return repo.GetUserByID(ctx, usr.ID)
	}

	var updated dbUser
	query := `UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING id, username, password_hash, role, created_at`
	if err := repo.db.GetContext(ctx, &updated, query, args...); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "updating user")
	}
	return updated.toUser(), nil
}

func (repo userRepository) DeleteUserByID(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return user.ErrNotFound
	}
	return nil
}
