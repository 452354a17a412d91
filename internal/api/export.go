package api

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/danielgtaylor/huma/v2"

	"github.com/c3r4h/dptkp/internal/export"
)

// FileOutput is a downloadable file body.
type FileOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func (h *APIHandler) ExportGeoJSON(ctx context.Context, input *ListInput) (*FileOutput, error) {
	var colors map[string]string
	if h.svc != nil && h.svc.Catalog != nil {
		colors = h.svc.Catalog.CategoryColors()
	}
	fc := export.FeatureCollection(h.rank(input), colors)
	body, err := json.Marshal(fc)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to encode GeoJSON", err)
	}
	return &FileOutput{
		ContentType:        "application/geo+json",
		ContentDisposition: `attachment; filename="locations.geojson"`,
		Body:               body,
	}, nil
}

func (h *APIHandler) ExportXLSX(ctx context.Context, input *ListInput) (*FileOutput, error) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, h.rank(input)); err != nil {
		return nil, huma.Error500InternalServerError("Failed to write workbook", err)
	}
	return &FileOutput{
		ContentType:        "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		ContentDisposition: `attachment; filename="locations.xlsx"`,
		Body:               buf.Bytes(),
	}, nil
}
