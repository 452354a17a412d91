package service

import (
	"net/url"
	"strconv"
)

const (
	mapsSearchURL = "https://www.google.com/maps/search/"
	mapsDirURL    = "https://www.google.com/maps/dir/"
)

// Links are the outbound links shown for a location.
type Links struct {
	GMaps     string `json:"gmaps" doc:"Place page on Google Maps"`
	Route     string `json:"route" doc:"Directions, or a map search when the user position is unknown"`
	Instagram string `json:"instagram,omitempty" doc:"Instagram profile"`
}

// LinksFor builds the links for loc. With user coords the route link asks
// for directions from the user; otherwise it only searches the spot.
func LinksFor(loc Location, user *Coords) Links {
	links := Links{GMaps: loc.GMaps, Route: RouteURL(loc, user)}
	if loc.Instagram != nil {
		links.Instagram = *loc.Instagram
	}
	return links
}

// RouteURL returns the Google Maps directions or search URL for loc.
func RouteURL(loc Location, user *Coords) string {
	dest := latLng(loc.Lat, loc.Lng)
	if user == nil {
		return mapsSearchURL + "?" + encode("api", "1", "query", dest)
	}
	return mapsDirURL + "?" + encode("api", "1", "origin", latLng(user.Lat, user.Lng), "destination", dest)
}

func latLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

// encode keeps parameter order, which url.Values.Encode would sort.
func encode(kv ...string) string {
	var s string
	for i := 0; i+1 < len(kv); i += 2 {
		if s != "" {
			s += "&"
		}
		s += url.QueryEscape(kv[i]) + "=" + url.QueryEscape(kv[i+1])
	}
	return s
}
