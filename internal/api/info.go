package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	categoriesFeed string
	locationsFeed  string
	dbOK           bool
}

func NewInfoHandler(categoriesFeed, locationsFeed string, dbOK bool) *InfoHandler {
	return &InfoHandler{categoriesFeed: categoriesFeed, locationsFeed: locationsFeed, dbOK: dbOK}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name           string   `json:"name" doc:"Service name"`
	Version        string   `json:"version" doc:"Service version"`
	CategoriesFeed string   `json:"categories_feed" doc:"Category feed URI"`
	LocationsFeed  string   `json:"locations_feed" doc:"Locations feed URI"`
	DB             bool     `json:"db" doc:"Whether the query database is available"`
	Features       []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	features := []string{"viewer", "geojson", "xlsx"}
	if h.dbOK {
		features = append(features, "duckdb")
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:           "dptkp",
		Version:        Version,
		CategoriesFeed: h.categoriesFeed,
		LocationsFeed:  h.locationsFeed,
		DB:             h.dbOK,
		Features:       features,
	}}, nil
}
