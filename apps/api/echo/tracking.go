package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/progim/core/tracking"
)

type trackingApi struct {
	svc *tracking.Service
}

func registerTrackingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *tracking.Service) {
	api := trackingApi{svc: svc}

	pg := g.Group("/projects", jwt)
	pg.GET("", api.queryProjects)
	pg.POST("", api.createProject)
	pg.PUT("/:id", api.updateProject)
	pg.DELETE("/:id", api.deleteProject)

	ag := g.Group("/activities", jwt)
	ag.GET("", api.queryActivities)
	ag.POST("", api.createActivity)
	ag.GET("/progress", api.progress)
	ag.PUT("/:id", api.updateActivity)
	ag.DELETE("/:id", api.deleteActivity)

	sg := g.Group("/sub-activities", jwt)
	sg.GET("", api.querySubActivities)
	sg.POST("", api.createSubActivity)
	sg.PUT("/:id", api.updateSubActivity)
	sg.DELETE("/:id", api.deleteSubActivity)

	cg := g.Group("/catalogs", jwt)
	cg.GET("", api.queryCatalogItems)
	cg.POST("", api.createCatalogItem)
	cg.PUT("/:id", api.updateCatalogItem)
	cg.DELETE("/:id", api.deleteCatalogItem)
}

// Projects

func (api *trackingApi) queryProjects(ctx echo.Context) error {
	projects, err := api.svc.Projects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	if projects == nil {
		projects = []tracking.Project{}
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *trackingApi) createProject(ctx echo.Context) error {
	var data tracking.NewProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	project, err := api.svc.CreateProject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating project")
	}
	return ctx.JSON(http.StatusCreated, project)
}

func (api *trackingApi) updateProject(ctx echo.Context) error {
	var data tracking.UpdateProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProject")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	project, err := api.svc.UpdateProject(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, project)
}

func (api *trackingApi) deleteProject(ctx echo.Context) error {
	if err := api.svc.DeleteProject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting project")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Activities

func (api *trackingApi) queryActivities(ctx echo.Context) error {
	filter := new(tracking.ActivityFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []tracking.Activity{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	activities, err := api.svc.FilterActivities(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}
	if activities == nil {
		activities = []tracking.Activity{}
	}
	return ctx.JSON(http.StatusOK, activities)
}

func (api *trackingApi) createActivity(ctx echo.Context) error {
	var data tracking.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	activity, err := api.svc.CreateActivity(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating activity")
	}
	return ctx.JSON(http.StatusCreated, activity)
}

func (api *trackingApi) updateActivity(ctx echo.Context) error {
	var data tracking.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	activity, err := api.svc.UpdateActivity(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, activity)
}

func (api *trackingApi) deleteActivity(ctx echo.Context) error {
	if err := api.svc.DeleteActivity(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *trackingApi) progress(ctx echo.Context) error {
	filter := new(tracking.ActivityFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, tracking.ProgressSummary{})
	}
	filter.Clean()

	summary, err := api.svc.Progress(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "computing progress")
	}
	return ctx.JSON(http.StatusOK, summary)
}

// SubActivities

func (api *trackingApi) querySubActivities(ctx echo.Context) error {
	subs, err := api.svc.SubActivities(ctx.Request().Context(), ctx.QueryParam("activity_id"))
	if err != nil {
		return errors.Wrap(err, "querying sub-activities")
	}
	if subs == nil {
		subs = []tracking.SubActivity{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *trackingApi) createSubActivity(ctx echo.Context) error {
	var data tracking.NewSubActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubActivity")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubActivity(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating sub-activity")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *trackingApi) updateSubActivity(ctx echo.Context) error {
	var data tracking.NewSubActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubActivity")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.UpdateSubActivity(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *trackingApi) deleteSubActivity(ctx echo.Context) error {
	if err := api.svc.DeleteSubActivity(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting sub-activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Catalogs

func (api *trackingApi) queryCatalogItems(ctx echo.Context) error {
	items, err := api.svc.CatalogItems(ctx.Request().Context(), ctx.QueryParam("type"))
	if err != nil {
		return errors.Wrap(err, "querying catalog items")
	}
	if items == nil {
		items = []tracking.CatalogItem{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *trackingApi) createCatalogItem(ctx echo.Context) error {
	var data tracking.NewCatalogItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCatalogItem")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	item, err := api.svc.CreateCatalogItem(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating catalog item")
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *trackingApi) updateCatalogItem(ctx echo.Context) error {
	var data tracking.UpdateCatalogItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCatalogItem")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	item, err := api.svc.UpdateCatalogItem(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *trackingApi) deleteCatalogItem(ctx echo.Context) error {
	if err := api.svc.DeleteCatalogItem(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting catalog item")
	}
	return ctx.NoContent(http.StatusNoContent)
}
