package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newCatalog(t *testing.T, locs []Location, cats []Category) *CatalogService {
	t.Helper()
	c := NewCatalogService(NewEventBus(), zerolog.Nop())
	if cats != nil {
		c.SetCategories(cats)
	}
	if locs != nil {
		c.SetLocations(context.Background(), locs)
	}
	return c
}

var testCategories = []Category{
	{ID: "traditional", Name: "Traditional", Color: "#b45309"},
	{ID: "specialty", Name: "Specialty", Color: "#2563eb"},
}

func TestControllerApplyRendersMarkersAndList(t *testing.T) {
	c := NewController(newCatalog(t, fixture(), testCategories))

	r := c.Apply(FilterState{Category: "traditional"})
	if got := len(r.Items); got != 3 {
		t.Fatalf("items = %d; want 3", got)
	}
	if len(r.Markers) != len(r.Items) {
		t.Fatalf("markers = %d, items = %d", len(r.Markers), len(r.Items))
	}
	for i, m := range r.Markers {
		if m.ID != r.Items[i].ID {
			t.Fatalf("marker %d is %s; want %s", i, m.ID, r.Items[i].ID)
		}
		if m.Selected {
			t.Fatalf("marker %s rendered selected", m.ID)
		}
	}
	// "Specialty Lab" is primarily specialty even though it matched traditional.
	if got := r.Markers[2].Color; got != "#2563eb" {
		t.Fatalf("specialty colour = %q", got)
	}
}

func TestControllerEmptyRender(t *testing.T) {
	c := NewController(newCatalog(t, fixture(), testCategories))
	r := c.Apply(FilterState{Search: "no such place"})
	if !r.Empty() {
		t.Fatalf("render not empty: %+v", r)
	}
	if len(c.Markers()) != 0 {
		t.Fatalf("marker layer has %d markers", len(c.Markers()))
	}
}

func TestControllerFallbackColorBeforeCategories(t *testing.T) {
	catalog := newCatalog(t, fixture(), nil)
	c := NewController(catalog)

	r := c.Apply(FilterState{})
	for _, m := range r.Markers {
		if m.Color != FallbackColor {
			t.Fatalf("marker %s colour = %q; want fallback", m.ID, m.Color)
		}
	}

	catalog.SetCategories(testCategories)
	r = c.Refresh()
	if got := r.Markers[0].Color; got != "#b45309" {
		t.Fatalf("after categories arrive colour = %q", got)
	}
}

func TestControllerLocationsArriveLate(t *testing.T) {
	catalog := newCatalog(t, nil, testCategories)
	c := NewController(catalog)

	if r := c.Apply(FilterState{Tubruk: true}); !r.Empty() {
		t.Fatalf("render before locations = %+v", r)
	}

	catalog.SetLocations(context.Background(), fixture())
	r := c.Refresh()
	if got := names(locationsOf(r.Items)); !reflect.DeepEqual(got, []string{"Kopi Klotok", "Kopi Liong"}) {
		t.Fatalf("refresh kept filter badly: %v", got)
	}
}

func locationsOf(items []Ranked) []Location {
	out := make([]Location, len(items))
	for i, r := range items {
		out[i] = r.Location
	}
	return out
}

func TestControllerSelectionExclusive(t *testing.T) {
	c := NewController(newCatalog(t, fixture(), testCategories))
	c.Apply(FilterState{})

	res, err := c.SelectMarker("0")
	if err != nil {
		t.Fatal(err)
	}
	if res.Location.Name != "Kopi Klotok" || len(res.Changes) != 1 || !res.Changes[0].Selected {
		t.Fatalf("first select = %+v", res)
	}

	res, err = c.SelectMarker("2")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Changes) != 2 {
		t.Fatalf("changes = %+v; want reset + select", res.Changes)
	}
	if res.Changes[0].ID != "0" || res.Changes[0].Selected || res.Changes[0].Icon.Size != 18 {
		t.Fatalf("previous marker not reset: %+v", res.Changes[0])
	}
	if res.Changes[1].ID != "2" || !res.Changes[1].Selected || res.Changes[1].Icon.Size != 22 {
		t.Fatalf("new marker not selected: %+v", res.Changes[1])
	}

	if n := c.state.Markers.SelectedCount(); n != 1 {
		t.Fatalf("%d markers selected; want 1", n)
	}
	for _, m := range c.Markers() {
		if m.Selected && m.ID != "2" {
			t.Fatalf("marker %s selected; want 2", m.ID)
		}
	}
}

func TestControllerMixedFeedIDs(t *testing.T) {
	locs := []Location{
		{ID: "1", Name: "A", Lat: -7.7, Lng: 110.4},
		{Name: "B", Lat: -7.8, Lng: 110.3},
	}
	c := NewController(newCatalog(t, locs, testCategories))
	r := c.Apply(FilterState{})
	if len(r.Items) != 2 || len(r.Markers) != 2 {
		t.Fatalf("items = %d, markers = %d; want 2, 2", len(r.Items), len(r.Markers))
	}
	if r.Items[0].ID == r.Items[1].ID {
		t.Fatalf("duplicate id %q", r.Items[0].ID)
	}
	for _, item := range r.Items {
		res, err := c.SelectMarker(item.ID)
		if err != nil {
			t.Fatal(err)
		}
		if res.Location.Name != item.Name {
			t.Fatalf("select %s opened %q; want %q", item.ID, res.Location.Name, item.Name)
		}
	}
}

func TestControllerSelectIdempotent(t *testing.T) {
	c := NewController(newCatalog(t, fixture(), testCategories))
	c.Apply(FilterState{})
	c.SelectMarker("1")

	res, err := c.SelectMarker("1")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Changes) != 0 {
		t.Fatalf("repeated select changed icons: %+v", res.Changes)
	}
	if res.Location.ID != "1" {
		t.Fatalf("location = %+v", res.Location)
	}
}

func TestControllerSelectUnknown(t *testing.T) {
	c := NewController(newCatalog(t, fixture(), testCategories))
	c.Apply(FilterState{Category: "angkringan"})
	if _, err := c.SelectMarker("0"); !errors.Is(err, ErrNotRendered) {
		t.Fatalf("err = %v; want ErrNotRendered", err)
	}
}

func TestControllerDeselect(t *testing.T) {
	c := NewController(newCatalog(t, fixture(), testCategories))
	c.Apply(FilterState{})

	if changes := c.DeselectCurrent(); changes != nil {
		t.Fatalf("deselect with nothing selected = %+v", changes)
	}

	c.SelectMarker("3")
	changes := c.DeselectCurrent()
	if len(changes) != 1 || changes[0].ID != "3" || changes[0].Selected {
		t.Fatalf("deselect = %+v", changes)
	}
	if _, ok := c.Selected(); ok {
		t.Fatal("selection survived deselect")
	}
}

func TestControllerRefilterResetsSelection(t *testing.T) {
	c := NewController(newCatalog(t, fixture(), testCategories))
	c.Apply(FilterState{})
	c.SelectMarker("0")

	// Kopi Klotok is still in the new list, but selection does not survive.
	c.Apply(FilterState{AC: true})
	if id, ok := c.Selected(); ok {
		t.Fatalf("selection %q survived a re-filter", id)
	}
	for _, m := range c.Markers() {
		if m.Selected {
			t.Fatalf("marker %s still selected", m.ID)
		}
	}
}

func TestControllerUserCoordsOnce(t *testing.T) {
	user := Coords{Lat: -7.8, Lng: 110.4}
	catalog := newCatalog(t, []Location{at("first", user, 2.1), at("second", user, 0.5), at("third", user, 4.0)}, nil)
	c := NewController(catalog)

	r := c.Apply(FilterState{SortNearest: true})
	if got := names(locationsOf(r.Items)); !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Fatalf("sort without coords = %v", got)
	}

	r, ok := c.SetUserCoords(user)
	if !ok {
		t.Fatal("first SetUserCoords rejected")
	}
	if got := names(locationsOf(r.Items)); !reflect.DeepEqual(got, []string{"second", "first", "third"}) {
		t.Fatalf("sort with coords = %v", got)
	}

	if _, ok := c.SetUserCoords(Coords{Lat: 0, Lng: 0}); ok {
		t.Fatal("second SetUserCoords accepted")
	}
	if got := c.UserCoords(); got == nil || *got != user {
		t.Fatalf("UserCoords() = %v; want %v", got, user)
	}
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(newCatalog(t, fixture(), testCategories))

	id, c := store.New()
	if id == "" || c == nil {
		t.Fatal("New returned an empty session")
	}
	got, ok := store.Get(id)
	if !ok || got != c {
		t.Fatalf("Get(%q) = %p, %v", id, got, ok)
	}
	if _, ok := store.Get("missing"); ok {
		t.Fatal("Get(missing) found a session")
	}

	if n := store.Prune(time.Hour); n != 0 {
		t.Fatalf("Prune removed %d fresh sessions", n)
	}
	time.Sleep(5 * time.Millisecond)
	if n := store.Prune(time.Millisecond); n != 1 {
		t.Fatalf("Prune removed %d; want 1", n)
	}
	if store.Len() != 0 {
		t.Fatalf("Len() = %d after prune", store.Len())
	}
}
