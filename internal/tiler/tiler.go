// Package tiler cuts location features into Mapbox vector tiles on request.
package tiler

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
)

// LayerName is the MVT layer holding the location points.
const LayerName = "locations"

// MaxZoom is the deepest zoom a tile is cut for.
const MaxZoom = 22

// Valid reports whether z/x/y addresses a tile.
func Valid(z, x, y uint32) error {
	if z > MaxZoom {
		return fmt.Errorf("zoom %d above %d", z, MaxZoom)
	}
	n := uint32(1) << z
	if x >= n || y >= n {
		return fmt.Errorf("tile %d/%d/%d out of range", z, x, y)
	}
	return nil
}

// Tile encodes the point features of fc that fall inside t as a gzipped
// MVT. It returns nil when the tile is empty.
func Tile(fc *geojson.FeatureCollection, t maptile.Tile) ([]byte, error) {
	bound := t.Bound()

	in := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok || !bound.Contains(p) {
			continue
		}
		// ProjectToTile rewrites geometry, so work on a copy.
		clone := geojson.NewFeature(p)
		clone.ID = f.ID
		for k, v := range f.Properties {
			clone.Properties[k] = v
		}
		in.Append(clone)
	}
	if len(in.Features) == 0 {
		return nil, nil
	}

	layer := mvt.NewLayer(LayerName, in)
	layer.ProjectToTile(t)
	return mvt.MarshalGzipped(mvt.Layers{layer})
}
