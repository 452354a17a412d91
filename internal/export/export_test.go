package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/c3r4h/dptkp/internal/service"
)

func items() []service.Ranked {
	d := 1.5
	return []service.Ranked{
		{Location: service.Location{ID: "0", Name: "Kopi Klotok", Lat: -7.66, Lng: 110.42, Category: []string{"traditional"}}, DistanceKm: &d},
		{Location: service.Location{ID: "1", Name: "Roaster Lab", Lat: -7.78, Lng: 110.37, Category: []string{"specialty", "traditional"}}},
	}
}

func TestFeatureCollection(t *testing.T) {
	fc := FeatureCollection(items(), map[string]string{"traditional": "#b45309"})
	if len(fc.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(fc.Features))
	}

	f := fc.Features[0]
	if f.Geometry.GeoJSONType() != "Point" {
		t.Fatalf("geometry = %s", f.Geometry.GeoJSONType())
	}
	if got := f.Properties["marker-color"]; got != "#b45309" {
		t.Errorf("marker-color = %v", got)
	}
	if got := fc.Features[1].Properties["marker-color"]; got != service.FallbackColor {
		t.Errorf("unknown category colour = %v, want fallback", got)
	}
	if _, ok := fc.Features[1].Properties["distance_km"]; ok {
		t.Error("distance set without a sort")
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc struct {
		Type string    `json:"type"`
		BBox []float64 `json:"bbox"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Type != "FeatureCollection" || len(doc.BBox) != 4 {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.BBox[0] != 110.37 || doc.BBox[3] != -7.66 {
		t.Errorf("bbox = %v", doc.BBox)
	}
}

func TestFeatureCollectionEmpty(t *testing.T) {
	fc := FeatureCollection(nil, nil)
	if len(fc.Features) != 0 || fc.BBox != nil {
		t.Fatalf("empty collection = %+v", fc)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, items()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[1][1] != "Kopi Klotok" || rows[2][2] != "specialty, traditional" {
		t.Errorf("rows = %v", rows)
	}
}
