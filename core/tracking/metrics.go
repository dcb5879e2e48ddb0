package tracking

import (
	"math"
	"strings"
)

var (
	progressStates = map[string]bool{
		"en progreso": true,
		"in progress": true,
		"en proceso":  true,
	}
	pendingStates = map[string]bool{
		"pendiente": true,
		"pending":   true,
	}
)

func isProgressState(state string) bool {
	return progressStates[strings.ToLower(strings.TrimSpace(state))]
}

func isPendingState(state string) bool {
	return pendingStates[strings.ToLower(strings.TrimSpace(state))]
}

// atRiskThreshold is the effective percentage below which an activity due
// within the warning window counts as at risk.
const atRiskThreshold = 80

// roundMean returns the arithmetic mean of sum/count rounded half-up, or
// 0 for an empty set.
func roundMean(sum float64, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(sum / float64(count)))
}

func roundRate(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// GroupSubActivities indexes sub-activities by their owning activity id.
func GroupSubActivities(subs []SubActivity) map[string][]SubActivity {
	byActivity := make(map[string][]SubActivity, len(subs))
	for _, sub := range subs {
		byActivity[sub.ActivityID] = append(byActivity[sub.ActivityID], sub)
	}
	return byActivity
}

// EffectivePercentage is an activity's completion rolled up from its
// sub-activities: the mean of their percentages rounded half-up when at
// least one exists, the activity's own stored percentage otherwise.
func EffectivePercentage(a Activity, subs []SubActivity) int {
	if len(subs) == 0 {
		return a.Percentage
	}
	var sum float64
	for _, sub := range subs {
		sum += float64(sub.Percentage)
	}
	return roundMean(sum, len(subs))
}

func isCompletedActivity(a Activity, effective int) bool {
	return IsCompletedState(a.State) || effective == 100
}

// ProgressSummary aggregates an activity set for the list view header.
type ProgressSummary struct {
	Percentage          int `json:"percentage"`
	TotalActivities     int `json:"total_activities"`
	CompletedActivities int `json:"completed_activities"`
}

// ProjectProgress summarizes a (typically filtered) activity set: the mean
// effective percentage plus total/completed counts. The zero value is
// returned for an empty set.
func ProjectProgress(activities []Activity, subsByActivity map[string][]SubActivity) ProgressSummary {
	if len(activities) == 0 {
		return ProgressSummary{}
	}
	var sum float64
	var completed int
	for _, a := range activities {
		effective := EffectivePercentage(a, subsByActivity[a.ID])
		sum += float64(effective)
		if isCompletedActivity(a, effective) {
			completed++
		}
	}
	return ProgressSummary{
		Percentage:          roundMean(sum, len(activities)),
		TotalActivities:     len(activities),
		CompletedActivities: completed,
	}
}

// DashboardKPIs is the aggregate snapshot rendered on the dashboard.
type DashboardKPIs struct {
	TotalProjects  int `json:"total_projects"`
	ActiveProjects int `json:"active_projects"`

	TotalActivities      int `json:"total_activities"`
	CompletedActivities  int `json:"completed_activities"`
	InProgressActivities int `json:"in_progress_activities"`
	PendingActivities    int `json:"pending_activities"`
	OverdueActivities    int `json:"overdue_activities"`
	AtRiskActivities     int `json:"at_risk_activities"`

	TotalSubActivities     int `json:"total_sub_activities"`
	CompletedSubActivities int `json:"completed_sub_activities"`

	AverageProgress     int `json:"average_progress"`
	AverageDaysElapsed  int `json:"average_days_elapsed"`
	CompletionRate      int `json:"completion_rate"`
	ProductivityRate    int `json:"productivity_rate"`
	EfficiencyScore     int `json:"efficiency_score"` // bounded 0-10
	UniqueAssignees     int `json:"unique_assignees"`
	ActivitiesThisMonth int `json:"activities_this_month"`
}

// ComputeDashboardKPIs derives the dashboard aggregates from the raw
// entity collections. Percentages are effective (sub-activity roll-ups)
// and elapsed days are recomputed from start dates, not read from the
// stored field.
func ComputeDashboardKPIs(projects []Project, activities []Activity, subs []SubActivity) DashboardKPIs {
	kpis := DashboardKPIs{
		TotalProjects:      len(projects),
		TotalActivities:    len(activities),
		TotalSubActivities: len(subs),
	}
	for _, p := range projects {
		if p.IsActive {
			kpis.ActiveProjects++
		}
	}

	subsByActivity := GroupSubActivities(subs)
	today := Today()
	assignees := make(map[string]bool)
	var progressSum, elapsedSum float64

	for _, a := range activities {
		effective := EffectivePercentage(a, subsByActivity[a.ID])
		elapsed := DaysElapsed(a.StartDate, a.State)
		progressSum += float64(effective)
		elapsedSum += float64(elapsed)

		completed := isCompletedActivity(a, effective)
		if completed {
			kpis.CompletedActivities++
		}
		if isProgressState(a.State) && effective > 0 && effective < 100 {
			kpis.InProgressActivities++
		}
		if isPendingState(a.State) || effective == 0 {
			kpis.PendingActivities++
		}
		if a.EndDate != "" && !IsCompletedState(a.State) && DaysRemaining(a.EndDate) < 0 && effective < 100 {
			kpis.OverdueActivities++
		}
		if a.EndDate != "" {
			if remaining := DaysRemaining(a.EndDate); remaining > 0 && remaining <= warningWindowDays && effective < atRiskThreshold {
				kpis.AtRiskActivities++
			}
		}
		if a.AssignedTo != "" {
			assignees[a.AssignedTo] = true
		}
		createdAt := a.CreatedAt.In(reportingZone)
		if createdAt.Year() == today.Year() && createdAt.Month() == today.Month() {
			kpis.ActivitiesThisMonth++
		}
	}

	for _, sub := range subs {
		if IsCompletedState(sub.State) || sub.Percentage == 100 {
			kpis.CompletedSubActivities++
		}
	}

	kpis.AverageProgress = roundMean(progressSum, len(activities))
	kpis.AverageDaysElapsed = roundMean(elapsedSum, len(activities))
	kpis.CompletionRate = roundRate(kpis.CompletedActivities, kpis.TotalActivities)
	kpis.ProductivityRate = roundRate(kpis.CompletedActivities, kpis.TotalActivities-kpis.PendingActivities)
	kpis.UniqueAssignees = len(assignees)

	// efficiency: progress earned per elapsed day, scaled to 0-10 and
	// guarded against division by zero.
	if kpis.AverageProgress > 0 && kpis.AverageDaysElapsed > 0 {
		score := int(math.Round(float64(kpis.AverageProgress) / float64(kpis.AverageDaysElapsed) * 10))
		if score > 10 {
			score = 10
		}
		kpis.EfficiencyScore = score
	}
	return kpis
}

// Matches reports whether an activity passes the filter: a pure
// conjunction of the filter's independent predicates.
func (f *ActivityFilter) Matches(a Activity) bool {
	if f.Search != "" {
		search := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(a.Name), search) &&
			!strings.Contains(strings.ToLower(a.AssignedTo), search) {
			return false
		}
	}
	if f.State != "" && a.State != f.State {
		return false
	}
	if f.ProjectID != "" && a.ProjectID != f.ProjectID {
		return false
	}
	if f.AssignedTo != "" && a.AssignedTo != f.AssignedTo {
		return false
	}
	// YYYY-MM-DD strings order lexicographically; bounds are inclusive.
	if f.StartFrom != "" && a.StartDate != "" && a.StartDate < f.StartFrom {
		return false
	}
	if f.EndTo != "" && a.EndDate != "" && a.EndDate > f.EndTo {
		return false
	}
	return true
}

// FilterActivities returns the activities passing the filter, preserving
// input order.
func FilterActivities(activities []Activity, filter ActivityFilter) []Activity {
	if filter.IsEmpty() {
		return activities
	}
	matched := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if filter.Matches(a) {
			matched = append(matched, a)
		}
	}
	return matched
}
