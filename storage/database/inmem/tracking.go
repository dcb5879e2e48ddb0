package inmem

import (
	"context"
	"time"

	"github.com/trezcool/progim/core/tracking"
)

// trackingRepo implements tracking.Repository on a DB. Creates prepend so
// the slices stay ordered newest first; deletes are idempotent.
type trackingRepo struct {
	db *DB
}

var _ tracking.Repository = (*trackingRepo)(nil)

func NewTrackingRepository(db *DB) tracking.Repository {
	return &trackingRepo{db: db}
}

func (repo *trackingRepo) ListProjects(ctx context.Context) ([]tracking.Project, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return append([]tracking.Project{}, repo.db.projects...), nil
}

func (repo *trackingRepo) CreateProject(ctx context.Context, p tracking.Project) (tracking.Project, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if p.ID == "" {
		p.ID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	repo.db.projects = append([]tracking.Project{p}, repo.db.projects...)
	return p, nil
}

func (repo *trackingRepo) UpdateProject(ctx context.Context, p tracking.Project, isActive *bool) (tracking.Project, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, existing := range repo.db.projects {
		if existing.ID == p.ID {
			existing.Name = p.Name
			existing.Objective = p.Objective
			if isActive != nil {
				existing.IsActive = *isActive
			}
			repo.db.projects[i] = existing
			return existing, nil
		}
	}
	return tracking.Project{}, tracking.ErrProjectNotFound
}

func (repo *trackingRepo) DeleteProject(ctx context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, p := range repo.db.projects {
		if p.ID == id {
			repo.db.projects = append(repo.db.projects[:i], repo.db.projects[i+1:]...)
			return nil
		}
	}
	return nil
}

func (repo *trackingRepo) ListActivities(ctx context.Context) ([]tracking.Activity, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return append([]tracking.Activity{}, repo.db.activities...), nil
}

func (repo *trackingRepo) CreateActivity(ctx context.Context, a tracking.Activity) (tracking.Activity, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if a.ID == "" {
		a.ID = newID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	repo.db.activities = append([]tracking.Activity{a}, repo.db.activities...)
	return a, nil
}

func (repo *trackingRepo) UpdateActivity(ctx context.Context, a tracking.Activity) (tracking.Activity, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, existing := range repo.db.activities {
		if existing.ID == a.ID {
			a.CreatedAt = existing.CreatedAt
			repo.db.activities[i] = a
			return a, nil
		}
	}
	return tracking.Activity{}, tracking.ErrActivityNotFound
}

func (repo *trackingRepo) DeleteActivity(ctx context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, a := range repo.db.activities {
		if a.ID == id {
			repo.db.activities = append(repo.db.activities[:i], repo.db.activities[i+1:]...)
			return nil
		}
	}
	return nil
}

func (repo *trackingRepo) ListSubActivities(ctx context.Context) ([]tracking.SubActivity, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return append([]tracking.SubActivity{}, repo.db.subActivities...), nil
}

func (repo *trackingRepo) CreateSubActivity(ctx context.Context, s tracking.SubActivity) (tracking.SubActivity, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if s.ID == "" {
		s.ID = newID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	repo.db.subActivities = append([]tracking.SubActivity{s}, repo.db.subActivities...)
	return s, nil
}

func (repo *trackingRepo) UpdateSubActivity(ctx context.Context, s tracking.SubActivity) (tracking.SubActivity, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, existing := range repo.db.subActivities {
		if existing.ID == s.ID {
			s.CreatedAt = existing.CreatedAt
			repo.db.subActivities[i] = s
			return s, nil
		}
	}
	return tracking.SubActivity{}, tracking.ErrSubActivityNotFound
}

func (repo *trackingRepo) DeleteSubActivity(ctx context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, s := range repo.db.subActivities {
		if s.ID == id {
			repo.db.subActivities = append(repo.db.subActivities[:i], repo.db.subActivities[i+1:]...)
			return nil
		}
	}
	return nil
}

func (repo *trackingRepo) ListCatalogItems(ctx context.Context) ([]tracking.CatalogItem, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return append([]tracking.CatalogItem{}, repo.db.catalogs...), nil
}

func (repo *trackingRepo) CreateCatalogItem(ctx context.Context, c tracking.CatalogItem) (tracking.CatalogItem, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	repo.db.catalogs = append([]tracking.CatalogItem{c}, repo.db.catalogs...)
	return c, nil
}

func (repo *trackingRepo) UpdateCatalogItem(ctx context.Context, c tracking.CatalogItem) (tracking.CatalogItem, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, existing := range repo.db.catalogs {
		if existing.ID == c.ID {
			existing.Name = c.Name
			repo.db.catalogs[i] = existing
			return existing, nil
		}
	}
	return tracking.CatalogItem{}, tracking.ErrCatalogItemNotFound
}

func (repo *trackingRepo) DeleteCatalogItem(ctx context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, c := range repo.db.catalogs {
		if c.ID == id {
			repo.db.catalogs = append(repo.db.catalogs[:i], repo.db.catalogs[i+1:]...)
			return nil
		}
	}
	return nil
}
