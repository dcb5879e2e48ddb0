package echoapi

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/progim/core/tracking"
)

type reportApi struct {
	svc *tracking.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *tracking.Service) {
	api := reportApi{svc: svc}
	g.GET("/reports/activities.csv", api.activitiesCSV, jwt)
}

// activitiesCSV exports the filtered activities with the derived columns
// the dashboard shows.
func (api *reportApi) activitiesCSV(ctx echo.Context) error {
	filter := new(tracking.ActivityFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to ActivityFilter")
	}
	filter.Clean()

	rctx := ctx.Request().Context()
	activities, err := api.svc.FilterActivities(rctx, *filter)
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}
	subs, err := api.svc.SubActivities(rctx, "")
	if err != nil {
		return errors.Wrap(err, "querying sub-activities")
	}
	subsByActivity := tracking.GroupSubActivities(subs)

	var buff bytes.Buffer
	w := csv.NewWriter(&buff)
	header := []string{
		"id", "project_id", "name", "state", "assigned_to",
		"start_date", "end_date", "percentage", "effective_percentage",
		"days_elapsed", "days_remaining", "alert_level", "notes",
	}
	if err = w.Write(header); err != nil {
		return errors.Wrap(err, "writing CSV header")
	}

	for _, a := range activities {
		record := []string{
			a.ID, a.ProjectID, a.Name, a.State, a.AssignedTo,
			a.StartDate, a.EndDate,
			strconv.Itoa(a.Percentage),
			strconv.Itoa(tracking.EffectivePercentage(a, subsByActivity[a.ID])),
			strconv.Itoa(a.DaysElapsed),
			strconv.Itoa(tracking.DaysRemaining(a.EndDate)),
			string(tracking.DeadlineAlert(a.State, a.EndDate)),
			a.Notes,
		}
		if err = w.Write(record); err != nil {
			return errors.Wrap(err, "writing CSV record")
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return errors.Wrap(err, "flushing CSV")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="activities.csv"`)
	return ctx.Blob(http.StatusOK, "text/csv", buff.Bytes())
}
