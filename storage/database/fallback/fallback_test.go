package fallback

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/progim/core"
	"github.com/trezcool/progim/core/alert"
	"github.com/trezcool/progim/core/tracking"
	"github.com/trezcool/progim/core/user"
	"github.com/trezcool/progim/storage/database/inmem"
)

var errDown = errors.New("connection refused")

// downTrackingRepo simulates an unreachable database: every call fails.
type downTrackingRepo struct{}

var _ tracking.Repository = (*downTrackingRepo)(nil)

func (downTrackingRepo) ListProjects(context.Context) ([]tracking.Project, error) {
	return nil, errDown
}
func (downTrackingRepo) CreateProject(context.Context, tracking.Project) (tracking.Project, error) {
	return tracking.Project{}, errDown
}
func (downTrackingRepo) UpdateProject(context.Context, tracking.Project, *bool) (tracking.Project, error) {
	return tracking.Project{}, errDown
}
func (downTrackingRepo) DeleteProject(context.Context, string) error { return errDown }
func (downTrackingRepo) ListActivities(context.Context) ([]tracking.Activity, error) {
	return nil, errDown
}
func (downTrackingRepo) CreateActivity(context.Context, tracking.Activity) (tracking.Activity, error) {
	return tracking.Activity{}, errDown
}
func (downTrackingRepo) UpdateActivity(context.Context, tracking.Activity) (tracking.Activity, error) {
	return tracking.Activity{}, errDown
}
func (downTrackingRepo) DeleteActivity(context.Context, string) error { return errDown }
func (downTrackingRepo) ListSubActivities(context.Context) ([]tracking.SubActivity, error) {
	return nil, errDown
}
func (downTrackingRepo) CreateSubActivity(context.Context, tracking.SubActivity) (tracking.SubActivity, error) {
	return tracking.SubActivity{}, errDown
}
func (downTrackingRepo) UpdateSubActivity(context.Context, tracking.SubActivity) (tracking.SubActivity, error) {
	return tracking.SubActivity{}, errDown
}
func (downTrackingRepo) DeleteSubActivity(context.Context, string) error { return errDown }
func (downTrackingRepo) ListCatalogItems(context.Context) ([]tracking.CatalogItem, error) {
	return nil, errDown
}
func (downTrackingRepo) CreateCatalogItem(context.Context, tracking.CatalogItem) (tracking.CatalogItem, error) {
	return tracking.CatalogItem{}, errDown
}
func (downTrackingRepo) UpdateCatalogItem(context.Context, tracking.CatalogItem) (tracking.CatalogItem, error) {
	return tracking.CatalogItem{}, errDown
}
func (downTrackingRepo) DeleteCatalogItem(context.Context, string) error { return errDown }

type downUserRepo struct{}

var _ user.Repository = (*downUserRepo)(nil)

func (downUserRepo) CreateUser(context.Context, user.User) (user.User, error) {
	return user.User{}, errDown
}
func (downUserRepo) QueryAllUsers(context.Context) ([]user.User, error) { return nil, errDown }
func (downUserRepo) GetUserByID(context.Context, string) (user.User, error) {
	return user.User{}, errDown
}
func (downUserRepo) GetUserByUsername(context.Context, string) (user.User, error) {
	return user.User{}, errDown
}
func (downUserRepo) SetLastLogin(context.Context, string, time.Time) error { return errDown }
func (downUserRepo) ListAssignments(context.Context) ([]user.Assignment, error) {
	return nil, errDown
}
func (downUserRepo) SaveAssignments(context.Context, []user.Assignment) error { return errDown }

type downAlertRepo struct{}

var _ alert.Repository = (*downAlertRepo)(nil)

func (downAlertRepo) GetConfig(context.Context) (alert.Config, error) {
	return alert.Config{}, errDown
}
func (downAlertRepo) SaveConfig(context.Context, alert.Config) error { return errDown }
func (downAlertRepo) ListLog(context.Context) ([]alert.LogEntry, error) {
	return nil, errDown
}
func (downAlertRepo) AppendLog(context.Context, alert.LogEntry) error { return errDown }

type nopLogger struct{}

var _ core.Logger = (*nopLogger)(nil)

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestTrackingRepo_createAndListSurviveOutage(t *testing.T) {
	ctx := context.Background()
	repo := NewTrackingRepository(downTrackingRepo{}, inmem.NewTrackingRepository(inmem.Open()), nopLogger{})

	created, err := repo.CreateProject(ctx, tracking.Project{Name: "Proyecto MEL"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if created.ID == "" {
		t.Error("CreateProject() did not synthesize an id")
	}

	projects, err := repo.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 1 || projects[0].ID != created.ID {
		t.Errorf("ListProjects() = %+v, want the locally created project", projects)
	}
}

func TestTrackingRepo_createdRecordsPrependNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewTrackingRepository(downTrackingRepo{}, inmem.NewTrackingRepository(inmem.Open()), nopLogger{})

	first, _ := repo.CreateActivity(ctx, tracking.Activity{Name: "primera"})
	second, _ := repo.CreateActivity(ctx, tracking.Activity{Name: "segunda"})

	activities, err := repo.ListActivities(ctx)
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("ListActivities() = %d records, want 2", len(activities))
	}
	if activities[0].ID != second.ID || activities[1].ID != first.ID {
		t.Errorf("ListActivities() order = [%s %s], want newest first", activities[0].Name, activities[1].Name)
	}
}

func TestTrackingRepo_listFallsBackOnEmptyPrimary(t *testing.T) {
	ctx := context.Background()
	localDB, err := inmem.OpenSeeded()
	if err != nil {
		t.Fatalf("OpenSeeded() error = %v", err)
	}
	local := inmem.NewTrackingRepository(localDB)

	// primary up but empty: the seeded local set is served instead
	repo := NewTrackingRepository(inmem.NewTrackingRepository(inmem.Open()), local, nopLogger{})

	projects, err := repo.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) == 0 {
		t.Error("ListProjects() = empty, want the seeded local projects")
	}
}

func TestTrackingRepo_updateMissesEverywhere(t *testing.T) {
	ctx := context.Background()
	repo := NewTrackingRepository(downTrackingRepo{}, inmem.NewTrackingRepository(inmem.Open()), nopLogger{})

	_, err := repo.UpdateActivity(ctx, tracking.Activity{ID: "nope", Name: "x"})
	if errors.Cause(err) != tracking.ErrActivityNotFound {
		t.Errorf("UpdateActivity() error = %v, want ErrActivityNotFound", err)
	}
}

func TestTrackingRepo_updateFallsBackToLocalCopy(t *testing.T) {
	ctx := context.Background()
	local := inmem.NewTrackingRepository(inmem.Open())
	repo := NewTrackingRepository(downTrackingRepo{}, local, nopLogger{})

	created, _ := repo.CreateActivity(ctx, tracking.Activity{Name: "borrador"})

	updated, err := repo.UpdateActivity(ctx, tracking.Activity{ID: created.ID, Name: "final"})
	if err != nil {
		t.Fatalf("UpdateActivity() error = %v", err)
	}
	if updated.Name != "final" {
		t.Errorf("UpdateActivity() name = %q, want %q", updated.Name, "final")
	}
}

func TestTrackingRepo_deleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewTrackingRepository(downTrackingRepo{}, inmem.NewTrackingRepository(inmem.Open()), nopLogger{})

	if err := repo.DeleteProject(ctx, "never-existed"); err != nil {
		t.Errorf("DeleteProject() error = %v, want silent success", err)
	}
}

func TestUserRepo_authLookupsFallBack(t *testing.T) {
	ctx := context.Background()
	localDB, err := inmem.OpenSeeded()
	if err != nil {
		t.Fatalf("OpenSeeded() error = %v", err)
	}
	repo := NewUserRepository(downUserRepo{}, inmem.NewUserRepository(localDB), nopLogger{})

	usr, err := repo.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if err := usr.CheckPassword("admin123"); err != nil {
		t.Errorf("CheckPassword() error = %v; seeded admin password should verify", err)
	}

	if err := repo.SetLastLogin(ctx, usr.ID, time.Now().UTC()); err != nil {
		t.Errorf("SetLastLogin() error = %v", err)
	}
}

func TestAlertRepo_configAndLogSurviveOutage(t *testing.T) {
	ctx := context.Background()
	repo := NewAlertRepository(downAlertRepo{}, inmem.NewAlertRepository(inmem.Open()), nopLogger{})

	cfg := alert.Config{Email: "monitoreo@test.gt", ReceiveOverdueAlerts: true, ReceiveUpcomingAlerts: true, AlertDaysBefore: 3}
	if err := repo.SaveConfig(ctx, cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	got, err := repo.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if got != cfg {
		t.Errorf("GetConfig() = %+v, want %+v", got, cfg)
	}

	for i := 0; i < alert.LogCap+5; i++ {
		if err := repo.AppendLog(ctx, alert.LogEntry{Type: alert.TypeTest, Email: cfg.Email, Status: alert.StatusSent}); err != nil {
			t.Fatalf("AppendLog() error = %v", err)
		}
	}
	entries, err := repo.ListLog(ctx)
	if err != nil {
		t.Fatalf("ListLog() error = %v", err)
	}
	if len(entries) != alert.LogCap {
		t.Errorf("ListLog() = %d entries, want the cap of %d", len(entries), alert.LogCap)
	}
}
