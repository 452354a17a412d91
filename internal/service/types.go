// Package service contains the catalog, filter pipeline and viewer state for dptkp.
package service

import (
	"strconv"

	"github.com/paulmach/orb"
)

// FallbackColor is used for markers whose primary category has no known colour,
// including when the category feed has not arrived yet.
const FallbackColor = "#6b7280"

// Location is a point of interest from the locations feed.
// Tags double as OpenAPI docs for the REST endpoints.
type Location struct {
	ID         string   `json:"id,omitempty" doc:"Stable location id (feed id or feed index)" example:"12"`
	Name       string   `json:"name" doc:"Display name" example:"Kopi Klotok"`
	Lat        float64  `json:"lat" minimum:"-90" maximum:"90" doc:"Latitude (WGS84)" example:"-7.66"`
	Lng        float64  `json:"lng" minimum:"-180" maximum:"180" doc:"Longitude (WGS84)" example:"110.42"`
	Category   []string `json:"category" minItems:"1" doc:"Category ids, first is primary" example:"[\"traditional\"]"`
	OpenHours  string   `json:"open_hours" doc:"Opening time" example:"07:00"`
	CloseHours string   `json:"close_hours" doc:"Closing time" example:"22:00"`
	Info       *string  `json:"info,omitempty" doc:"Free-text note"`
	Tubruk     *float64 `json:"tubruk,omitempty" doc:"Kopi tubruk price, absent or 0 when not offered" example:"5000"`
	HotCoffee  float64  `json:"hot_coffee" doc:"Hot americano price" example:"15000"`
	AC         bool     `json:"ac" doc:"Indoor air conditioning"`
	Smoking    string   `json:"smoking" doc:"Smoking area description" example:"outdoor, AC room"`
	Parking    Parking  `json:"parking" doc:"Parking capacity"`
	GMaps      string   `json:"gmaps" format:"uri" doc:"Google Maps place link"`
	Instagram  *string  `json:"instagram,omitempty" doc:"Instagram profile link"`
}

// Parking holds approximate parking capacity.
type Parking struct {
	Car   int `json:"car" doc:"Car slots" example:"4"`
	Motor int `json:"motor" doc:"Motorbike slots" example:"10"`
}

// Point returns the location as an orb point (lng, lat).
func (l Location) Point() orb.Point {
	return orb.Point{l.Lng, l.Lat}
}

// PrimaryCategory returns the first category id, or "" for a malformed record.
func (l Location) PrimaryCategory() string {
	if len(l.Category) == 0 {
		return ""
	}
	return l.Category[0]
}

// TubrukPrice returns the tubruk price, 0 when not offered.
func (l Location) TubrukPrice() float64 {
	if l.Tubruk == nil {
		return 0
	}
	return *l.Tubruk
}

// Category is a location category from the categories feed.
type Category struct {
	ID    string `json:"id" doc:"Category id" example:"traditional"`
	Name  string `json:"name" doc:"Display name" example:"Traditional"`
	Color string `json:"color" doc:"Marker colour (CSS)" example:"#b45309"`
}

// Coords is a user position reported by browser geolocation.
type Coords struct {
	Lat float64 `json:"lat" minimum:"-90" maximum:"90" doc:"Latitude"`
	Lng float64 `json:"lng" minimum:"-180" maximum:"180" doc:"Longitude"`
}

// FilterState mirrors the sidebar controls. It is rebuilt from the UI on
// every filter-affecting event and never stored beyond the last render.
type FilterState struct {
	Category    string `json:"category,omitempty" query:"category" doc:"Category id, empty for all"`
	Tubruk      bool   `json:"tubruk,omitempty" query:"tubruk" doc:"Only places serving kopi tubruk"`
	AC          bool   `json:"ac,omitempty" query:"ac" doc:"Only places with indoor AC"`
	SmokingAC   bool   `json:"smokingAC,omitempty" query:"smokingAC" doc:"Only places with an AC smoking area"`
	CarFriendly bool   `json:"carFriendly,omitempty" query:"carFriendly" doc:"Only places with more than 3 car slots"`
	SortNearest bool   `json:"sortNearest,omitempty" query:"sortNearest" doc:"Sort by distance from the user"`
	Search      string `json:"search,omitempty" query:"search" doc:"Case-insensitive name substring"`
}

// assignIDs gives every location without a feed id its index in the feed.
// Ids must be unique across the feed: an index already taken by an explicit
// id, or a repeated explicit id, gets a "-<n>" suffix.
func assignIDs(locs []Location) {
	taken := make(map[string]bool, len(locs))
	for _, l := range locs {
		if l.ID != "" {
			taken[l.ID] = true
		}
	}
	used := make(map[string]bool, len(locs))
	for i := range locs {
		id := locs[i].ID
		if id == "" {
			id = strconv.Itoa(i)
			if taken[id] || used[id] {
				id = freeID(id, taken, used)
			}
		} else if used[id] {
			id = freeID(id, taken, used)
		}
		used[id] = true
		locs[i].ID = id
	}
}

func freeID(base string, taken, used map[string]bool) string {
	for n := 1; ; n++ {
		id := base + "-" + strconv.Itoa(n)
		if !taken[id] && !used[id] {
			return id
		}
	}
}
