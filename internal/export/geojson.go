// Package export writes filtered location lists as GeoJSON and XLSX.
package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/c3r4h/dptkp/internal/service"
)

// FeatureCollection turns items into point features. Properties carry
// the record fields plus the marker colour and, when sorted, the distance.
func FeatureCollection(items []service.Ranked, colors map[string]string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, it := range items {
		f := geojson.NewFeature(it.Point())
		f.ID = it.ID
		f.Properties["name"] = it.Name
		f.Properties["category"] = it.Category
		f.Properties["open_hours"] = it.OpenHours
		f.Properties["close_hours"] = it.CloseHours
		f.Properties["tubruk"] = it.TubrukPrice()
		f.Properties["hot_coffee"] = it.HotCoffee
		f.Properties["ac"] = it.AC
		f.Properties["smoking"] = it.Smoking
		f.Properties["parking_car"] = it.Parking.Car
		f.Properties["parking_motor"] = it.Parking.Motor
		f.Properties["gmaps"] = it.GMaps
		f.Properties["marker-color"] = colorOf(it.Location, colors)
		if it.DistanceKm != nil {
			f.Properties["distance_km"] = *it.DistanceKm
		}
		fc.Append(f)
	}
	if len(items) > 0 {
		fc.BBox = geojson.NewBBox(bound(items))
	}
	return fc
}

func bound(items []service.Ranked) orb.Bound {
	mp := make(orb.MultiPoint, 0, len(items))
	for _, it := range items {
		mp = append(mp, it.Point())
	}
	return mp.Bound()
}

func colorOf(loc service.Location, colors map[string]string) string {
	if c, ok := colors[loc.PrimaryCategory()]; ok && c != "" {
		return c
	}
	return service.FallbackColor
}
