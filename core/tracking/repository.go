package tracking

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrProjectNotFound     = errors.New("project not found")
	ErrActivityNotFound    = errors.New("activity not found")
	ErrSubActivityNotFound = errors.New("sub-activity not found")
	ErrCatalogItemNotFound = errors.New("catalog item not found")
)

// IsNotFound reports whether err is one of the package's not-found
// sentinels.
func IsNotFound(err error) bool {
	switch errors.Cause(err) {
	case ErrProjectNotFound, ErrActivityNotFound, ErrSubActivityNotFound, ErrCatalogItemNotFound:
		return true
	}
	return false
}

// Repository is the data access contract for the four tracked entity
// types. List operations return records ordered by creation time
// descending. Update operations overwrite the record's mutable fields and
// fail with the entity's not-found error when the id is absent. Delete
// operations are idempotent: deleting a nonexistent id is not an error.
// Nothing is transactional across entity types; in particular, deleting a
// Project does not cascade to its Activities.
type Repository interface {
	ListProjects(ctx context.Context) ([]Project, error)
	CreateProject(ctx context.Context, p Project) (Project, error)
	// UpdateProject overwrites name and objective; the active flag is only
	// changed when isActive is set.
	UpdateProject(ctx context.Context, p Project, isActive *bool) (Project, error)
	DeleteProject(ctx context.Context, id string) error

	ListActivities(ctx context.Context) ([]Activity, error)
	CreateActivity(ctx context.Context, a Activity) (Activity, error)
	UpdateActivity(ctx context.Context, a Activity) (Activity, error)
	DeleteActivity(ctx context.Context, id string) error

	ListSubActivities(ctx context.Context) ([]SubActivity, error)
	CreateSubActivity(ctx context.Context, s SubActivity) (SubActivity, error)
	UpdateSubActivity(ctx context.Context, s SubActivity) (SubActivity, error)
	DeleteSubActivity(ctx context.Context, id string) error

	ListCatalogItems(ctx context.Context) ([]CatalogItem, error)
	CreateCatalogItem(ctx context.Context, c CatalogItem) (CatalogItem, error)
	UpdateCatalogItem(ctx context.Context, c CatalogItem) (CatalogItem, error)
	DeleteCatalogItem(ctx context.Context, id string) error
}
