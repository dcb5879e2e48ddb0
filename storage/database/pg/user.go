package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/progim/core/user"
)

func isNoRows(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

// userRepo implements user.Repository on PostgreSQL.
type userRepo struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepo)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepo{db: db}
}

func (repo *userRepo) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	const q = `INSERT INTO users (id, username, email, full_name, role, password_hash, created_at, last_login)
VALUES (:id, :username, :email, :full_name, :role, :password_hash, :created_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, usr); err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepo) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	users := []user.User{}
	err := repo.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY created_at DESC")
	return users, errors.Wrap(err, "listing users")
}

func (repo *userRepo) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, "SELECT * FROM users WHERE id = $1", id)
	if isNoRows(err) {
		return user.User{}, user.ErrNotFound
	}
	return usr, errors.Wrap(err, "getting user by id")
}

func (repo *userRepo) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, "SELECT * FROM users WHERE lower(username) = lower($1)", username)
	if isNoRows(err) {
		return user.User{}, user.ErrNotFound
	}
	return usr, errors.Wrap(err, "getting user by username")
}

func (repo *userRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := repo.db.ExecContext(ctx, "UPDATE users SET last_login = $2 WHERE id = $1", id, at)
	return errors.Wrap(err, "setting last login")
}

func (repo *userRepo) ListAssignments(ctx context.Context) ([]user.Assignment, error) {
	rows := []struct {
		Username     string         `db:"username"`
		Responsibles pq.StringArray `db:"responsibles"`
	}{}
	err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM user_assignments ORDER BY username")
	if err != nil {
		return nil, errors.Wrap(err, "listing assignments")
	}

	assignments := make([]user.Assignment, len(rows))
	for i, row := range rows {
		assignments[i] = user.Assignment{Username: row.Username, Responsibles: row.Responsibles}
	}
	return assignments, nil
}

func (repo *userRepo) SaveAssignments(ctx context.Context, assignments []user.Assignment) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "saving assignments")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, "DELETE FROM user_assignments"); err != nil {
		return errors.Wrap(err, "clearing assignments")
	}
	const q = `INSERT INTO user_assignments (username, responsibles) VALUES ($1, $2)`
	for _, a := range assignments {
		if _, err = tx.ExecContext(ctx, q, a.Username, pq.StringArray(a.Responsibles)); err != nil {
			return errors.Wrap(err, "saving assignment")
		}
	}
	return errors.Wrap(tx.Commit(), "saving assignments")
}
