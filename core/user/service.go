package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/progim/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		SetLastLogin(ctx context.Context, id string, at time.Time) error
		ListAssignments(ctx context.Context) ([]Assignment, error)
		// SaveAssignments replaces the full assignment set.
		SaveAssignments(ctx context.Context, assignments []Assignment) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(uname string) error {
	if _, err := svc.repo.GetUserByUsername(context.Background(), uname); err == nil {
		return core.NewValidationError(ErrUsernameExists, core.FieldError{
			Field: "username",
			Error: ErrUsernameExists.Error(),
		})
	} else if errors.Cause(err) != ErrNotFound {
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	role := nu.Role
	if role == "" {
		role = RoleUser
	}
	usr := User{
		Username:  nu.Username,
		Email:     nu.Email,
		FullName:  nu.FullName,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname))
}

// Authenticate looks the user up by username and checks the password.
// Both failure modes return ErrNotFound so callers cannot distinguish an
// unknown user from a bad password.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return User{}, err
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrNotFound
	}
	now := time.Now().UTC()
	if err := svc.repo.SetLastLogin(ctx, usr.ID, now); err != nil {
		return User{}, errors.Wrap(err, "setting last login")
	}
	usr.LastLogin = now
	return usr, nil
}

func (svc *Service) Assignments(ctx context.Context) ([]Assignment, error) {
	return svc.repo.ListAssignments(ctx)
}

func (svc *Service) SaveAssignments(ctx context.Context, assignments []Assignment) error {
	for i := range assignments {
		if err := assignments[i].Validate(); err != nil {
			return err
		}
	}
	return svc.repo.SaveAssignments(ctx, assignments)
}
