package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/maptile"

	"github.com/c3r4h/dptkp/internal/export"
	"github.com/c3r4h/dptkp/internal/tiler"
)

type TileInput struct {
	ListInput
	Z uint32 `path:"z" maximum:"22" doc:"Zoom"`
	X uint32 `path:"x" doc:"Tile column"`
	Y uint32 `path:"y" doc:"Tile row"`
}

type TileOutput struct {
	Status          int
	ContentType     string `header:"Content-Type"`
	ContentEncoding string `header:"Content-Encoding"`
	Body            []byte
}

// RegisterTiles registers the vector tile route.
func (h *APIHandler) RegisterTiles(api huma.API) {
	huma.Get(api, "/api/v1/tiles/{z}/{x}/{y}", h.GetTile, huma.OperationTags("tiles"))
}

// GetTile serves the filtered locations as a gzipped MVT tile, 204 when
// the tile holds none.
func (h *APIHandler) GetTile(ctx context.Context, input *TileInput) (*TileOutput, error) {
	if err := tiler.Valid(input.Z, input.X, input.Y); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	var colors map[string]string
	if h.svc != nil && h.svc.Catalog != nil {
		colors = h.svc.Catalog.CategoryColors()
	}
	fc := export.FeatureCollection(h.rank(&input.ListInput), colors)
	data, err := tiler.Tile(fc, maptile.New(input.X, input.Y, maptile.Zoom(input.Z)))
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to encode tile", err)
	}
	if data == nil {
		return &TileOutput{Status: http.StatusNoContent}, nil
	}
	return &TileOutput{
		Status:          http.StatusOK,
		ContentType:     "application/vnd.mapbox-vector-tile",
		ContentEncoding: "gzip",
		Body:            data,
	}, nil
}
