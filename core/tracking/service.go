package tracking

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/progim/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Projects

func (svc *Service) Projects(ctx context.Context) ([]Project, error) {
	return svc.repo.ListProjects(ctx)
}

func (svc *Service) CreateProject(ctx context.Context, np NewProject) (Project, error) {
	return svc.repo.CreateProject(ctx, Project{
		Name:      np.Name,
		Objective: np.Objective,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) UpdateProject(ctx context.Context, id string, up UpdateProject) (Project, error) {
	return svc.repo.UpdateProject(ctx, Project{
		ID:        id,
		Name:      up.Name,
		Objective: up.Objective,
	}, up.IsActive)
}

func (svc *Service) DeleteProject(ctx context.Context, id string) error {
	return svc.repo.DeleteProject(ctx, id)
}

// Activities

func (svc *Service) Activities(ctx context.Context) ([]Activity, error) {
	return svc.repo.ListActivities(ctx)
}

// FilterActivities loads all activities and applies the filter in memory.
func (svc *Service) FilterActivities(ctx context.Context, filter ActivityFilter, orderings ...core.DBOrdering) ([]Activity, error) {
	activities, err := svc.repo.ListActivities(ctx)
	if err != nil {
		return nil, err
	}
	activities = FilterActivities(activities, filter)
	applyOrderings(activities, orderings)
	return activities, nil
}

func (svc *Service) CreateActivity(ctx context.Context, na NewActivity) (Activity, error) {
	return svc.repo.CreateActivity(ctx, svc.buildActivity("", na))
}

func (svc *Service) UpdateActivity(ctx context.Context, id string, na NewActivity) (Activity, error) {
	return svc.repo.UpdateActivity(ctx, svc.buildActivity(id, na))
}

// buildActivity assembles the record to store; the elapsed-days field is
// recalculated here, at edit time, not continuously.
func (svc *Service) buildActivity(id string, na NewActivity) Activity {
	return Activity{
		ID:          id,
		ProjectID:   na.ProjectID,
		Name:        na.Name,
		State:       na.State,
		AssignedTo:  na.AssignedTo,
		StartDate:   na.StartDate,
		EndDate:     na.EndDate,
		Percentage:  na.Percentage,
		Notes:       na.Notes,
		DaysElapsed: DaysElapsed(na.StartDate, na.State),
		CreatedAt:   time.Now().UTC(),
	}
}

func (svc *Service) DeleteActivity(ctx context.Context, id string) error {
	return svc.repo.DeleteActivity(ctx, id)
}

// SubActivities

// SubActivities returns all sub-activities, or only those of the given
// activity when activityID is non-empty.
func (svc *Service) SubActivities(ctx context.Context, activityID string) ([]SubActivity, error) {
	subs, err := svc.repo.ListSubActivities(ctx)
	if err != nil {
		return nil, err
	}
	if activityID == "" {
		return subs, nil
	}
	matched := make([]SubActivity, 0, len(subs))
	for _, sub := range subs {
		if sub.ActivityID == activityID {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

func (svc *Service) CreateSubActivity(ctx context.Context, ns NewSubActivity) (SubActivity, error) {
	return svc.repo.CreateSubActivity(ctx, svc.buildSubActivity("", ns))
}

func (svc *Service) UpdateSubActivity(ctx context.Context, id string, ns NewSubActivity) (SubActivity, error) {
	return svc.repo.UpdateSubActivity(ctx, svc.buildSubActivity(id, ns))
}

func (svc *Service) buildSubActivity(id string, ns NewSubActivity) SubActivity {
	return SubActivity{
		ID:         id,
		ActivityID: ns.ActivityID,
		Name:       ns.Name,
		State:      ns.State,
		AssignedTo: ns.AssignedTo,
		StartDate:  ns.StartDate,
		DueDate:    ns.DueDate,
		HoursSpent: ns.HoursSpent,
		Percentage: ns.Percentage,
		Notes:      ns.Notes,
		CreatedAt:  time.Now().UTC(),
	}
}

func (svc *Service) DeleteSubActivity(ctx context.Context, id string) error {
	return svc.repo.DeleteSubActivity(ctx, id)
}

// Catalogs

// CatalogItems returns all catalog items, or only those of the given type
// tag when typ is non-empty.
func (svc *Service) CatalogItems(ctx context.Context, typ string) ([]CatalogItem, error) {
	items, err := svc.repo.ListCatalogItems(ctx)
	if err != nil {
		return nil, err
	}
	if typ == "" {
		return items, nil
	}
	matched := make([]CatalogItem, 0, len(items))
	for _, item := range items {
		if item.Type == typ {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (svc *Service) CreateCatalogItem(ctx context.Context, nc NewCatalogItem) (CatalogItem, error) {
	return svc.repo.CreateCatalogItem(ctx, CatalogItem{
		Type:      nc.Type,
		Name:      nc.Name,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) UpdateCatalogItem(ctx context.Context, id string, uc UpdateCatalogItem) (CatalogItem, error) {
	return svc.repo.UpdateCatalogItem(ctx, CatalogItem{
		ID:   id,
		Name: uc.Name,
	})
}

func (svc *Service) DeleteCatalogItem(ctx context.Context, id string) error {
	return svc.repo.DeleteCatalogItem(ctx, id)
}

// Aggregates

func (svc *Service) Dashboard(ctx context.Context) (DashboardKPIs, error) {
	projects, err := svc.repo.ListProjects(ctx)
	if err != nil {
		return DashboardKPIs{}, err
	}
	activities, err := svc.repo.ListActivities(ctx)
	if err != nil {
		return DashboardKPIs{}, err
	}
	subs, err := svc.repo.ListSubActivities(ctx)
	if err != nil {
		return DashboardKPIs{}, err
	}
	return ComputeDashboardKPIs(projects, activities, subs), nil
}

// Progress summarizes the activities matching the filter.
func (svc *Service) Progress(ctx context.Context, filter ActivityFilter) (ProgressSummary, error) {
	activities, err := svc.FilterActivities(ctx, filter)
	if err != nil {
		return ProgressSummary{}, err
	}
	subs, err := svc.repo.ListSubActivities(ctx)
	if err != nil {
		return ProgressSummary{}, err
	}
	return ProjectProgress(activities, GroupSubActivities(subs)), nil
}

// applyOrderings sorts activities in place by the requested fields.
// Unknown fields are ignored.
func applyOrderings(activities []Activity, orderings []core.DBOrdering) {
	for i := len(orderings) - 1; i >= 0; i-- {
		ord := orderings[i]
		less := activityLessFunc(ord.Field)
		if less == nil {
			continue
		}
		sort.SliceStable(activities, func(a, b int) bool {
			if ord.Ascending {
				return less(activities[a], activities[b])
			}
			return less(activities[b], activities[a])
		})
	}
}

func activityLessFunc(field string) func(a, b Activity) bool {
	switch field {
	case "name":
		return func(a, b Activity) bool { return a.Name < b.Name }
	case "state":
		return func(a, b Activity) bool { return a.State < b.State }
	case "assigned_to":
		return func(a, b Activity) bool { return a.AssignedTo < b.AssignedTo }
	case "start_date":
		return func(a, b Activity) bool { return a.StartDate < b.StartDate }
	case "end_date":
		return func(a, b Activity) bool { return a.EndDate < b.EndDate }
	case "percentage":
		return func(a, b Activity) bool { return a.Percentage < b.Percentage }
	case "created_at":
		return func(a, b Activity) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	return nil
}
