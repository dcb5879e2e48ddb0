package inmem

import (
	"context"
	"strings"
	"time"

	"github.com/trezcool/progim/core/user"
)

type userRepo struct {
	db *DB
}

var _ user.Repository = (*userRepo)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepo{db: db}
}

func (repo *userRepo) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if usr.ID == "" {
		usr.ID = newID()
	}
	repo.db.users = append([]user.User{usr}, repo.db.users...)
	return usr, nil
}

func (repo *userRepo) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return append([]user.User{}, repo.db.users...), nil
}

func (repo *userRepo) GetUserByID(ctx context.Context, id string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.ID == id {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepo) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if strings.EqualFold(usr.Username, username) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, usr := range repo.db.users {
		if usr.ID == id {
			repo.db.users[i].LastLogin = at
			return nil
		}
	}
	return user.ErrNotFound
}

func (repo *userRepo) ListAssignments(ctx context.Context) ([]user.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return append([]user.Assignment{}, repo.db.assignments...), nil
}

func (repo *userRepo) SaveAssignments(ctx context.Context, assignments []user.Assignment) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.assignments = append([]user.Assignment{}, assignments...)
	return nil
}
