package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/progim/core"
	"github.com/trezcool/progim/core/alert"
)

type alertApi struct {
	svc *alert.Service
}

func registerAlertAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *alert.Service) {
	api := alertApi{svc: svc}

	ag := g.Group("/alerts", jwt)
	ag.GET("/config", api.getConfig)
	ag.PUT("/config", api.saveConfig)
	ag.GET("/logs", api.logs)
	ag.POST("/test", api.sendTest)
	ag.POST("/scan", api.scan, adminMiddleware())
}

func (api *alertApi) getConfig(ctx echo.Context) error {
	cfg, err := api.svc.GetConfig(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting alert config")
	}
	return ctx.JSON(http.StatusOK, cfg)
}

func (api *alertApi) saveConfig(ctx echo.Context) error {
	var data alert.Config
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Config")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.SaveConfig(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "saving alert config")
	}
	return ctx.JSON(http.StatusOK, data)
}

func (api *alertApi) logs(ctx echo.Context) error {
	entries, err := api.svc.Log(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing alert log")
	}
	if entries == nil {
		entries = []alert.LogEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

type testAlertRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *testAlertRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return core.Validate.Struct(r)
}

func (api *alertApi) sendTest(ctx echo.Context) error {
	var data testAlertRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to testAlertRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.SendTest(ctx.Request().Context(), data.Email); err != nil {
		return errors.Wrap(err, "sending test alert")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Test alert sent."})
}

func (api *alertApi) scan(ctx echo.Context) error {
	if err := api.svc.Scan(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "scanning activities")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Scan completed."})
}
