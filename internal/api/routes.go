// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/c3r4h/dptkp/internal/humastar"
	"github.com/c3r4h/dptkp/internal/service"
)

// Version is reported by /health, /api/v1/info, the OpenAPI document
// and the CLI.
const Version = "1.0.0"

// Services holds the service dependencies for API handlers.
type Services struct {
	Catalog *service.CatalogService
}

// RegisterRoutes registers the REST handlers. Methods named Register* on
// the handlers are discovered by huma.AutoRegister.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// Types

type IDInput struct {
	ID string `path:"id" doc:"Location id" example:"0"`
}

// ListInput selects and orders locations like the sidebar does. lat/lng
// are used only when both are given.
type ListInput struct {
	service.FilterState
	Lat float64 `query:"lat" minimum:"-90" maximum:"90" doc:"User latitude for the nearest sort"`
	Lng float64 `query:"lng" minimum:"-180" maximum:"180" doc:"User longitude for the nearest sort"`

	user *service.Coords
}

// Resolve records whether the caller sent a position.
func (i *ListInput) Resolve(ctx huma.Context) []error {
	if ctx.Query("lat") != "" && ctx.Query("lng") != "" {
		i.user = &service.Coords{Lat: i.Lat, Lng: i.Lng}
	}
	return nil
}

// User returns the position sent with the request, if any.
func (i *ListInput) User() *service.Coords {
	return i.user
}

type PageInput struct {
	ListInput
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Items to skip"`
	Limit  int `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Page size"`
}

type LocationsOutput struct {
	Body humastar.PageBody[service.Ranked]
}

type LocationOutput struct {
	Body LocationBody
}

type LocationBody struct {
	service.Location
	Color string        `json:"color" doc:"Marker colour of the primary category"`
	Links service.Links `json:"links" doc:"Outbound links"`
}

type CategoriesOutput struct {
	Body []service.Category
}

type HealthBody struct {
	Status    string `json:"status" doc:"Health status" example:"ok"`
	Version   string `json:"version" doc:"API version" example:"1.0.0"`
	Locations int    `json:"locations" doc:"Loaded locations"`
}

// APIHandler holds all REST API handlers.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterCatalog registers the read-only catalog routes.
func (h *APIHandler) RegisterCatalog(api huma.API) {
	huma.Get(api, "/api/v1/categories", h.GetCategories, huma.OperationTags("categories"))
	huma.Get(api, "/api/v1/locations", h.GetLocations, huma.OperationTags("locations"))
	huma.Get(api, "/api/v1/locations/{id}", h.GetLocation, huma.OperationTags("locations"))
}

// RegisterExports registers the download routes.
func (h *APIHandler) RegisterExports(api huma.API) {
	huma.Get(api, "/api/v1/locations.geojson", h.ExportGeoJSON, huma.OperationTags("exports"))
	huma.Get(api, "/api/v1/locations.xlsx", h.ExportXLSX, huma.OperationTags("exports"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	n := 0
	if h.svc != nil && h.svc.Catalog != nil {
		n = len(h.svc.Catalog.Locations())
	}
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: Version, Locations: n}}, nil
}

func (h *APIHandler) GetCategories(ctx context.Context, input *struct{}) (*CategoriesOutput, error) {
	if h.svc == nil || h.svc.Catalog == nil {
		return &CategoriesOutput{Body: []service.Category{}}, nil
	}
	return &CategoriesOutput{Body: h.svc.Catalog.Categories()}, nil
}

func (h *APIHandler) GetLocations(ctx context.Context, input *PageInput) (*LocationsOutput, error) {
	items := h.rank(&input.ListInput)
	return &LocationsOutput{Body: humastar.Page(items, input.Offset, input.Limit)}, nil
}

func (h *APIHandler) GetLocation(ctx context.Context, input *IDInput) (*LocationOutput, error) {
	if h.svc == nil || h.svc.Catalog == nil {
		return nil, huma.Error404NotFound("service not available")
	}
	loc, ok := h.svc.Catalog.Location(input.ID)
	if !ok {
		return nil, huma.Error404NotFound(fmt.Sprintf("location %s not found", strconv.Quote(input.ID)))
	}
	color := service.FallbackColor
	if c, ok := h.svc.Catalog.CategoryColors()[loc.PrimaryCategory()]; ok && c != "" {
		color = c
	}
	return &LocationOutput{Body: LocationBody{
		Location: loc,
		Color:    color,
		Links:    service.LinksFor(loc, nil),
	}}, nil
}

// rank runs the filter pipeline over the catalog.
func (h *APIHandler) rank(input *ListInput) []service.Ranked {
	if h.svc == nil || h.svc.Catalog == nil {
		return []service.Ranked{}
	}
	return service.Rank(h.svc.Catalog.Locations(), input.FilterState, input.User())
}
