package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/progim/core/tracking"
)

type dashboardApi struct {
	svc *tracking.Service
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *tracking.Service) {
	api := dashboardApi{svc: svc}
	g.GET("/dashboard", api.dashboard, jwt)
}

func (api *dashboardApi) dashboard(ctx echo.Context) error {
	kpis, err := api.svc.Dashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing dashboard")
	}
	return ctx.JSON(http.StatusOK, kpis)
}
