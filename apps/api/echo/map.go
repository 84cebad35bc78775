package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/muchiri/karibu/core"
	"github.com/muchiri/karibu/core/campus"
)

// the admin saved but the visible-set rebuild failed; the student map may
// lag until the next successful write
const cacheStaleWarning = "saved, but map may be out of date"

type mapApi struct {
	svc  campus.ServiceInterface
	conf *core.Config
}

func registerMapAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc campus.ServiceInterface, conf *core.Config) {
	api := mapApi{svc: svc, conf: conf}

	mg := g.Group("/map", jwt)

	// student-facing reads: the dashboard map consumes only the cached
	// visible set, never the raw registry
	mg.GET("/visible-locations", api.visibleLocations)
	mg.GET("/meta", api.meta)

	// admin editing view reads the raw registry + boundary directly
	ag := mg.Group("", adminMiddleware())
	ag.GET("/boundary", api.getBoundary)
	ag.PUT("/boundary", api.setBoundary)
	ag.GET("/locations", api.listLocations)
	ag.POST("/locations", api.createLocation)
	ag.GET("/locations/:id", api.retrieveLocation)
	ag.PUT("/locations/:id", api.updateLocation)
	ag.DELETE("/locations/:id", api.deleteLocation)
	ag.GET("/icons", api.icons)
}

type (
	boundaryResponse struct {
		Boundary *campus.Boundary `json:"boundary"`
		BBox     *campus.BBox     `json:"bbox,omitempty"`
	}

	metaResponse struct {
		Center campus.Coordinate `json:"center"`
		BBox   *campus.BBox      `json:"bbox,omitempty"`
		Icons  []string          `json:"icons"`
	}

	// writeResponse reports the write and its triggered cache rebuild
	// separately so the UI can warn instead of silently masking a lagging map.
	writeResponse struct {
		Location     *campus.Location `json:"location,omitempty"`
		Boundary     *campus.Boundary `json:"boundary,omitempty"`
		CacheRebuilt bool             `json:"cache_rebuilt"`
		Warning      string           `json:"warning,omitempty"`
	}
)

func newWriteResponse(res campus.RebuildResult) writeResponse {
	wr := writeResponse{CacheRebuilt: res.Rebuilt()}
	if !wr.CacheRebuilt {
		wr.Warning = cacheStaleWarning
	}
	return wr
}

// Handlers

func (api *mapApi) visibleLocations(ctx echo.Context) error {
	locs, err := api.svc.VisibleLocations(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "reading visible set")
	}
	return ctx.JSON(http.StatusOK, locs)
}

func (api *mapApi) meta(ctx echo.Context) error {
	resp := metaResponse{
		Center: campus.Coordinate{Lat: api.conf.Campus.CenterLat, Lng: api.conf.Campus.CenterLng},
		Icons:  campus.Icons,
	}
	b, err := api.svc.GetBoundary(ctx.Request().Context())
	switch errors.Cause(err) {
	case nil:
		box := b.BBox()
		resp.BBox = &box
	case campus.ErrBoundaryNotSet:
		// renderer falls back to its default restriction around the center
	default:
		return errors.Wrap(err, "reading boundary")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *mapApi) getBoundary(ctx echo.Context) error {
	b, err := api.svc.GetBoundary(ctx.Request().Context())
	switch errors.Cause(err) {
	case nil:
		box := b.BBox()
		return ctx.JSON(http.StatusOK, boundaryResponse{Boundary: &b, BBox: &box})
	case campus.ErrBoundaryNotSet:
		return ctx.JSON(http.StatusOK, boundaryResponse{})
	default:
		return errors.Wrap(err, "reading boundary")
	}
}

func (api *mapApi) setBoundary(ctx echo.Context) error {
	var data campus.NewBoundary
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBoundary")
	}

	b, res, err := api.svc.SetBoundary(ctx.Request().Context(), data)
	if err != nil {
		return err
	}

	resp := newWriteResponse(res)
	resp.Boundary = &b
	return ctx.JSON(http.StatusOK, resp)
}

func (api *mapApi) listLocations(ctx echo.Context) error {
	locs, err := api.svc.ListLocations(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing locations")
	}
	return ctx.JSON(http.StatusOK, locs)
}

func (api *mapApi) createLocation(ctx echo.Context) error {
	var data campus.NewLocation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLocation")
	}

	loc, res, err := api.svc.CreateLocation(ctx.Request().Context(), data)
	if err != nil {
		return err
	}

	resp := newWriteResponse(res)
	resp.Location = &loc
	return ctx.JSON(http.StatusCreated, resp)
}

func (api *mapApi) retrieveLocation(ctx echo.Context) error {
	loc, err := api.svc.GetLocation(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, loc)
}

func (api *mapApi) updateLocation(ctx echo.Context) error {
	var data campus.UpdateLocation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLocation")
	}

	loc, res, err := api.svc.UpdateLocation(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}

	resp := newWriteResponse(res)
	resp.Location = &loc
	return ctx.JSON(http.StatusOK, resp)
}

func (api *mapApi) deleteLocation(ctx echo.Context) error {
	res, err := api.svc.DeleteLocation(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newWriteResponse(res))
}

func (api *mapApi) icons(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, campus.Icons)
}
