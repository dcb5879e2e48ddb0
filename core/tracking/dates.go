package tracking

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the calendar-date format used by all entity date fields.
const DateLayout = "2006-01-02"

// reportingZone pins all "today" computations to the deployment's
// reporting timezone (Guatemala, UTC-6, no DST) regardless of the host
// timezone.
var reportingZone = time.FixedZone("UTC-6", -6*60*60)

// nowFn is swapped out in tests to evaluate date math against a fixed day.
var nowFn = time.Now

// AlertLevel classifies how urgent an activity's deadline is.
type AlertLevel string

const (
	AlertNone    AlertLevel = "none"
	AlertWarning AlertLevel = "warning"
	AlertDanger  AlertLevel = "danger"
)

// warningWindowDays is the due-soon threshold the alert levels are tuned
// against.
const warningWindowDays = 7

var completedStates = map[string]bool{
	"finalizado": true,
	"completado": true,
	"completed":  true,
}

// IsCompletedState reports whether a free-text state label means "done",
// matching the Spanish/English synonyms case-insensitively.
func IsCompletedState(state string) bool {
	return completedStates[strings.ToLower(strings.TrimSpace(state))]
}

// Today returns midnight of the current calendar date in the reporting zone.
func Today() time.Time {
	now := nowFn().In(reportingZone)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, reportingZone)
}

// CurrentDate returns today's date as a YYYY-MM-DD string.
func CurrentDate() string {
	return Today().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string as midnight in the reporting zone.
// The year/month/day components are interpreted directly; no
// locale-sensitive parsing is involved.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, reportingZone)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing date %q", s)
	}
	return t, nil
}

// IsValidDate reports whether s is a parseable calendar date.
func IsValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// daysBetween returns the whole-day difference b − a. Both inputs are
// midnights in the reporting zone (fixed offset, no DST), so the division
// is exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// DaysElapsed returns the number of whole days since startDate, floored
// at 0. It returns 0 for an empty or unparseable start date, and 0 when
// the state means the work is already done.
func DaysElapsed(startDate, state string) int {
	if startDate == "" || IsCompletedState(state) {
		return 0
	}
	start, err := ParseDate(startDate)
	if err != nil {
		return 0
	}
	if elapsed := daysBetween(start, Today()); elapsed > 0 {
		return elapsed
	}
	return 0
}

// DaysRemaining returns the whole-day difference between endDate and
// today; negative means overdue. The due day itself counts as 0 remaining
// rather than overdue: a deadline is only missed once its day has fully
// passed. Returns 0 for an empty end date.
func DaysRemaining(endDate string) int {
	if endDate == "" {
		return 0
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return 0
	}
	return daysBetween(Today(), end)
}

// DeadlineAlert classifies an activity deadline: completed states never
// alert, a past end date is danger, and anything due within the warning
// window is warning. Activities without an end date never alert.
func DeadlineAlert(state, endDate string) AlertLevel {
	if IsCompletedState(state) {
		return AlertNone
	}
	if endDate == "" || !IsValidDate(endDate) {
		return AlertNone
	}
	remaining := DaysRemaining(endDate)
	if remaining < 0 {
		return AlertDanger
	}
	if remaining <= warningWindowDays {
		return AlertWarning
	}
	return AlertNone
}

// TotalDuration returns the inclusive day count between two dates, or 0
// if either is empty or invalid.
func TotalDuration(startDate, endDate string) int {
	if startDate == "" || endDate == "" {
		return 0
	}
	start, err := ParseDate(startDate)
	if err != nil {
		return 0
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return 0
	}
	if days := daysBetween(start, end) + 1; days > 0 {
		return days
	}
	return 0
}
