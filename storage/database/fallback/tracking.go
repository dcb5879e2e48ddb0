// Package fallback wraps a primary repository with a local in-memory
// stand-in. Reads fall through to the local store when the primary fails
// or comes back empty; writes that the primary rejects land locally so
// the dashboard keeps working while the database is unreachable.
package fallback

import (
	"context"

	"github.com/trezcool/progim/core"
	"github.com/trezcool/progim/core/tracking"
)

type trackingRepo struct {
	primary tracking.Repository
	local   tracking.Repository
	logger  core.Logger
}

var _ tracking.Repository = (*trackingRepo)(nil)

func NewTrackingRepository(primary, local tracking.Repository, logger core.Logger) tracking.Repository {
	return &trackingRepo{primary: primary, local: local, logger: logger}
}

func (repo *trackingRepo) warn(op string, err error) {
	repo.logger.Warn("falling back to local store", "op", op, "error", err)
}

func (repo *trackingRepo) ListProjects(ctx context.Context) ([]tracking.Project, error) {
	projects, err := repo.primary.ListProjects(ctx)
	if err != nil || len(projects) == 0 {
		if err != nil {
			repo.warn("ListProjects", err)
		}
		return repo.local.ListProjects(ctx)
	}
	return projects, nil
}

func (repo *trackingRepo) CreateProject(ctx context.Context, p tracking.Project) (tracking.Project, error) {
	created, err := repo.primary.CreateProject(ctx, p)
	if err != nil {
		repo.warn("CreateProject", err)
		return repo.local.CreateProject(ctx, p)
	}
	return created, nil
}

func (repo *trackingRepo) UpdateProject(ctx context.Context, p tracking.Project, isActive *bool) (tracking.Project, error) {
	updated, err := repo.primary.UpdateProject(ctx, p, isActive)
	if err != nil {
		if !tracking.IsNotFound(err) {
			repo.warn("UpdateProject", err)
		}
		return repo.local.UpdateProject(ctx, p, isActive)
	}
	return updated, nil
}

func (repo *trackingRepo) DeleteProject(ctx context.Context, id string) error {
	if err := repo.primary.DeleteProject(ctx, id); err != nil {
		repo.warn("DeleteProject", err)
	}
	return repo.local.DeleteProject(ctx, id)
}

func (repo *trackingRepo) ListActivities(ctx context.Context) ([]tracking.Activity, error) {
	activities, err := repo.primary.ListActivities(ctx)
	if err != nil || len(activities) == 0 {
		if err != nil {
			repo.warn("ListActivities", err)
		}
		return repo.local.ListActivities(ctx)
	}
	return activities, nil
}

func (repo *trackingRepo) CreateActivity(ctx context.Context, a tracking.Activity) (tracking.Activity, error) {
	created, err := repo.primary.CreateActivity(ctx, a)
	if err != nil {
		repo.warn("CreateActivity", err)
		return repo.local.CreateActivity(ctx, a)
	}
	return created, nil
}

func (repo *trackingRepo) UpdateActivity(ctx context.Context, a tracking.Activity) (tracking.Activity, error) {
	updated, err := repo.primary.UpdateActivity(ctx, a)
	if err != nil {
		if !tracking.IsNotFound(err) {
			repo.warn("UpdateActivity", err)
		}
		return repo.local.UpdateActivity(ctx, a)
	}
	return updated, nil
}

func (repo *trackingRepo) DeleteActivity(ctx context.Context, id string) error {
	if err := repo.primary.DeleteActivity(ctx, id); err != nil {
		repo.warn("DeleteActivity", err)
	}
	return repo.local.DeleteActivity(ctx, id)
}

func (repo *trackingRepo) ListSubActivities(ctx context.Context) ([]tracking.SubActivity, error) {
	subs, err := repo.primary.ListSubActivities(ctx)
	if err != nil || len(subs) == 0 {
		if err != nil {
			repo.warn("ListSubActivities", err)
		}
		return repo.local.ListSubActivities(ctx)
	}
	return subs, nil
}

func (repo *trackingRepo) CreateSubActivity(ctx context.Context, s tracking.SubActivity) (tracking.SubActivity, error) {
	created, err := repo.primary.CreateSubActivity(ctx, s)
	if err != nil {
		repo.warn("CreateSubActivity", err)
		return repo.local.CreateSubActivity(ctx, s)
	}
	return created, nil
}

func (repo *trackingRepo) UpdateSubActivity(ctx context.Context, s tracking.SubActivity) (tracking.SubActivity, error) {
	updated, err := repo.primary.UpdateSubActivity(ctx, s)
	if err != nil {
		if !tracking.IsNotFound(err) {
			repo.warn("UpdateSubActivity", err)
		}
		return repo.local.UpdateSubActivity(ctx, s)
	}
	return updated, nil
}

func (repo *trackingRepo) DeleteSubActivity(ctx context.Context, id string) error {
	if err := repo.primary.DeleteSubActivity(ctx, id); err != nil {
		repo.warn("DeleteSubActivity", err)
	}
	return repo.local.DeleteSubActivity(ctx, id)
}

func (repo *trackingRepo) ListCatalogItems(ctx context.Context) ([]tracking.CatalogItem, error) {
	items, err := repo.primary.ListCatalogItems(ctx)
	if err != nil || len(items) == 0 {
		if err != nil {
			repo.warn("ListCatalogItems", err)
		}
		return repo.local.ListCatalogItems(ctx)
	}
	return items, nil
}

func (repo *trackingRepo) CreateCatalogItem(ctx context.Context, c tracking.CatalogItem) (tracking.CatalogItem, error) {
	created, err := repo.primary.CreateCatalogItem(ctx, c)
	if err != nil {
		repo.warn("CreateCatalogItem", err)
		return repo.local.CreateCatalogItem(ctx, c)
	}
	return created, nil
}

func (repo *trackingRepo) UpdateCatalogItem(ctx context.Context, c tracking.CatalogItem) (tracking.CatalogItem, error) {
	updated, err := repo.primary.UpdateCatalogItem(ctx, c)
	if err != nil {
		if !tracking.IsNotFound(err) {
			repo.warn("UpdateCatalogItem", err)
		}
		return repo.local.UpdateCatalogItem(ctx, c)
	}
	return updated, nil
}

func (repo *trackingRepo) DeleteCatalogItem(ctx context.Context, id string) error {
	if err := repo.primary.DeleteCatalogItem(ctx, id); err != nil {
		repo.warn("DeleteCatalogItem", err)
	}
	return repo.local.DeleteCatalogItem(ctx, id)
}
