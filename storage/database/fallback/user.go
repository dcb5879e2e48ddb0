package fallback

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/progim/core"
	"github.com/trezcool/progim/core/user"
)

type userRepo struct {
	primary user.Repository
	local   user.Repository
	logger  core.Logger
}

var _ user.Repository = (*userRepo)(nil)

func NewUserRepository(primary, local user.Repository, logger core.Logger) user.Repository {
	return &userRepo{primary: primary, local: local, logger: logger}
}

func (repo *userRepo) warn(op string, err error) {
	repo.logger.Warn("falling back to local store", "op", op, "error", err)
}

func (repo *userRepo) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	created, err := repo.primary.CreateUser(ctx, usr)
	if err != nil {
		repo.warn("CreateUser", err)
		return repo.local.CreateUser(ctx, usr)
	}
	return created, nil
}

func (repo *userRepo) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	users, err := repo.primary.QueryAllUsers(ctx)
	if err != nil || len(users) == 0 {
		if err != nil {
			repo.warn("QueryAllUsers", err)
		}
		return repo.local.QueryAllUsers(ctx)
	}
	return users, nil
}

func (repo *userRepo) GetUserByID(ctx context.Context, id string) (user.User, error) {
	usr, err := repo.primary.GetUserByID(ctx, id)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			repo.warn("GetUserByID", err)
		}
		return repo.local.GetUserByID(ctx, id)
	}
	return usr, nil
}

func (repo *userRepo) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	usr, err := repo.primary.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			repo.warn("GetUserByUsername", err)
		}
		return repo.local.GetUserByUsername(ctx, username)
	}
	return usr, nil
}

func (repo *userRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	if err := repo.primary.SetLastLogin(ctx, id, at); err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			repo.warn("SetLastLogin", err)
		}
		return repo.local.SetLastLogin(ctx, id, at)
	}
	return nil
}

func (repo *userRepo) ListAssignments(ctx context.Context) ([]user.Assignment, error) {
	assignments, err := repo.primary.ListAssignments(ctx)
	if err != nil || len(assignments) == 0 {
		if err != nil {
			repo.warn("ListAssignments", err)
		}
		return repo.local.ListAssignments(ctx)
	}
	return assignments, nil
}

func (repo *userRepo) SaveAssignments(ctx context.Context, assignments []user.Assignment) error {
	if err := repo.primary.SaveAssignments(ctx, assignments); err != nil {
		repo.warn("SaveAssignments", err)
		return repo.local.SaveAssignments(ctx, assignments)
	}
	// keep the local mirror current so assignment reads survive an outage
	return repo.local.SaveAssignments(ctx, assignments)
}
