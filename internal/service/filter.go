package service

import (
	"slices"
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"github.com/c3r4h/dptkp/internal/geo"
)

// Ranked pairs a location with its distance from the user, when known.
type Ranked struct {
	Location
	DistanceKm *float64 `json:"distanceKm,omitempty" doc:"Distance from the user in km"`
}

// ApplyFilters runs the filter pipeline over all and returns a new slice.
//
// Stages run in a fixed order: category, tubruk, AC, smoking AC, car
// parking, name search, then the nearest sort. Predicate stages keep the
// input order. The sort only runs when f.SortNearest is set and user is
// known, and it is stable for equal distances.
func ApplyFilters(all []Location, f FilterState, user *Coords) []Location {
	ranked := Rank(all, f, user)
	out := make([]Location, len(ranked))
	for i, r := range ranked {
		out[i] = r.Location
	}
	return out
}

// Rank is ApplyFilters keeping the per-location distance used by the sort.
// Distances are only set when the sort ran.
func Rank(all []Location, f FilterState, user *Coords) []Ranked {
	search := strings.ToLower(f.Search)

	out := make([]Ranked, 0, len(all))
	for _, loc := range all {
		if f.Category != "" && !slices.Contains(loc.Category, f.Category) {
			continue
		}
		if f.Tubruk && !(loc.TubrukPrice() > 0) {
			continue
		}
		if f.AC && !loc.AC {
			continue
		}
		if f.SmokingAC && !strings.Contains(strings.ToLower(loc.Smoking), "ac") {
			continue
		}
		if f.CarFriendly && !(loc.Parking.Car > 3) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(loc.Name), search) {
			continue
		}
		out = append(out, Ranked{Location: loc})
	}

	if f.SortNearest && user != nil {
		from := orb.Point{user.Lng, user.Lat}
		for i := range out {
			d := geo.PointDistance(from, out[i].Point())
			out[i].DistanceKm = &d
		}
		sort.SliceStable(out, func(i, j int) bool {
			return *out[i].DistanceKm < *out[j].DistanceKm
		})
	}

	return out
}
