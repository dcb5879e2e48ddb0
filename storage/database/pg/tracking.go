package pg

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/progim/core/tracking"
)

// trackingRepo implements tracking.Repository on PostgreSQL.
type trackingRepo struct {
	db *sqlx.DB
}

var _ tracking.Repository = (*trackingRepo)(nil)

func NewTrackingRepository(db *sqlx.DB) tracking.Repository {
	return &trackingRepo{db: db}
}

func (repo *trackingRepo) ListProjects(ctx context.Context) ([]tracking.Project, error) {
	projects := []tracking.Project{}
	err := repo.db.SelectContext(ctx, &projects, "SELECT * FROM projects ORDER BY created_at DESC")
	return projects, errors.Wrap(err, "listing projects")
}

func (repo *trackingRepo) CreateProject(ctx context.Context, p tracking.Project) (tracking.Project, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO projects (id, name, objective, is_active, created_at)
VALUES (:id, :name, :objective, :is_active, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, p); err != nil {
		return tracking.Project{}, errors.Wrap(err, "creating project")
	}
	return p, nil
}

func (repo *trackingRepo) UpdateProject(ctx context.Context, p tracking.Project, isActive *bool) (tracking.Project, error) {
	const q = `UPDATE projects
SET name = $2, objective = $3, is_active = COALESCE($4, is_active)
WHERE id = $1
RETURNING *`
	var updated tracking.Project
	err := repo.db.GetContext(ctx, &updated, q, p.ID, p.Name, p.Objective, isActive)
	if isNoRows(err) {
		return tracking.Project{}, tracking.ErrProjectNotFound
	}
	return updated, errors.Wrap(err, "updating project")
}

func (repo *trackingRepo) DeleteProject(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM projects WHERE id = $1", id)
	return errors.Wrap(err, "deleting project")
}

func (repo *trackingRepo) ListActivities(ctx context.Context) ([]tracking.Activity, error) {
	activities := []tracking.Activity{}
	err := repo.db.SelectContext(ctx, &activities, "SELECT * FROM activities ORDER BY created_at DESC")
	return activities, errors.Wrap(err, "listing activities")
}

func (repo *trackingRepo) CreateActivity(ctx context.Context, a tracking.Activity) (tracking.Activity, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO activities (id, project_id, name, state, assigned_to, start_date, end_date, percentage, notes, days_elapsed, created_at)
VALUES (:id, :project_id, :name, :state, :assigned_to, :start_date, :end_date, :percentage, :notes, :days_elapsed, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, a); err != nil {
		return tracking.Activity{}, errors.Wrap(err, "creating activity")
	}
	return a, nil
}

func (repo *trackingRepo) UpdateActivity(ctx context.Context, a tracking.Activity) (tracking.Activity, error) {
	const q = `UPDATE activities
SET project_id = $2, name = $3, state = $4, assigned_to = $5, start_date = $6,
    end_date = $7, percentage = $8, notes = $9, days_elapsed = $10
WHERE id = $1
RETURNING *`
	var updated tracking.Activity
	err := repo.db.GetContext(ctx, &updated, q,
		a.ID, a.ProjectID, a.Name, a.State, a.AssignedTo, a.StartDate,
		a.EndDate, a.Percentage, a.Notes, a.DaysElapsed,
	)
	if isNoRows(err) {
		return tracking.Activity{}, tracking.ErrActivityNotFound
	}
	return updated, errors.Wrap(err, "updating activity")
}

func (repo *trackingRepo) DeleteActivity(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM activities WHERE id = $1", id)
	return errors.Wrap(err, "deleting activity")
}

func (repo *trackingRepo) ListSubActivities(ctx context.Context) ([]tracking.SubActivity, error) {
	subs := []tracking.SubActivity{}
	err := repo.db.SelectContext(ctx, &subs, "SELECT * FROM sub_activities ORDER BY created_at DESC")
	return subs, errors.Wrap(err, "listing sub-activities")
}

func (repo *trackingRepo) CreateSubActivity(ctx context.Context, s tracking.SubActivity) (tracking.SubActivity, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO sub_activities (id, activity_id, name, state, assigned_to, start_date, due_date, hours_spent, percentage, notes, created_at)
VALUES (:id, :activity_id, :name, :state, :assigned_to, :start_date, :due_date, :hours_spent, :percentage, :notes, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, s); err != nil {
		return tracking.SubActivity{}, errors.Wrap(err, "creating sub-activity")
	}
	return s, nil
}

func (repo *trackingRepo) UpdateSubActivity(ctx context.Context, s tracking.SubActivity) (tracking.SubActivity, error) {
	const q = `UPDATE sub_activities
SET activity_id = $2, name = $3, state = $4, assigned_to = $5, start_date = $6,
    due_date = $7, hours_spent = $8, percentage = $9, notes = $10
WHERE id = $1
RETURNING *`
	var updated tracking.SubActivity
	err := repo.db.GetContext(ctx, &updated, q,
		s.ID, s.ActivityID, s.Name, s.State, s.AssignedTo, s.StartDate,
		s.DueDate, s.HoursSpent, s.Percentage, s.Notes,
	)
	if isNoRows(err) {
		return tracking.SubActivity{}, tracking.ErrSubActivityNotFound
	}
	return updated, errors.Wrap(err, "updating sub-activity")
}

func (repo *trackingRepo) DeleteSubActivity(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM sub_activities WHERE id = $1", id)
	return errors.Wrap(err, "deleting sub-activity")
}

func (repo *trackingRepo) ListCatalogItems(ctx context.Context) ([]tracking.CatalogItem, error) {
	items := []tracking.CatalogItem{}
	err := repo.db.SelectContext(ctx, &items, "SELECT * FROM catalogs ORDER BY created_at DESC")
	return items, errors.Wrap(err, "listing catalog items")
}

func (repo *trackingRepo) CreateCatalogItem(ctx context.Context, c tracking.CatalogItem) (tracking.CatalogItem, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO catalogs (id, type, name, created_at)
VALUES (:id, :type, :name, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, c); err != nil {
		return tracking.CatalogItem{}, errors.Wrap(err, "creating catalog item")
	}
	return c, nil
}

func (repo *trackingRepo) UpdateCatalogItem(ctx context.Context, c tracking.CatalogItem) (tracking.CatalogItem, error) {
	const q = `UPDATE catalogs SET name = $2 WHERE id = $1 RETURNING *`
	var updated tracking.CatalogItem
	err := repo.db.GetContext(ctx, &updated, q, c.ID, c.Name)
	if isNoRows(err) {
		return tracking.CatalogItem{}, tracking.ErrCatalogItemNotFound
	}
	return updated, errors.Wrap(err, "updating catalog item")
}

func (repo *trackingRepo) DeleteCatalogItem(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM catalogs WHERE id = $1", id)
	return errors.Wrap(err, "deleting catalog item")
}
