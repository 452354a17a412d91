package service

import (
	"errors"
	"sync"
	"time"
)

// ErrNotRendered is returned when selecting a location that has no marker
// in the current render, e.g. one removed by the last filter.
var ErrNotRendered = errors.New("location is not on the map")

// AppState is everything one viewer session knows. It is only mutated
// through Controller operations.
type AppState struct {
	Locations      []Location
	Categories     []Category
	CategoryColors map[string]string
	UserCoords     *Coords
	Filter         FilterState
	Visible        []Ranked
	Markers        *MarkerRegistry
	Selection      Selection
}

// Render is the output of a filter run: sidebar rows and map markers.
type Render struct {
	Items      []Ranked       `json:"items"`
	Markers    []MarkerHandle `json:"markers"`
	UserCoords *Coords        `json:"userCoords,omitempty"`
}

// Empty reports whether the render should show the not-found placeholder.
func (r Render) Empty() bool {
	return len(r.Items) == 0
}

// SelectResult describes a selection transition. Changes lists the
// markers whose icon must be redrawn; it is empty for a repeated select.
type SelectResult struct {
	Location Location       `json:"location"`
	Changes  []MarkerHandle `json:"changes"`
}

// Controller owns one session's AppState. Every operation holds the lock
// for its whole run, so operations apply one at a time like UI events.
type Controller struct {
	mu       sync.Mutex
	catalog  *CatalogService
	state    AppState
	lastSeen time.Time
}

// NewController creates a controller with nothing selected and no coords.
func NewController(catalog *CatalogService) *Controller {
	return &Controller{
		catalog:  catalog,
		state:    AppState{Markers: NewMarkerRegistry(), CategoryColors: map[string]string{}},
		lastSeen: time.Now(),
	}
}

// Apply stores f as the current filter and re-renders.
func (c *Controller) Apply(f FilterState) Render {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Filter = f
	return c.render()
}

// Refresh re-renders with the last filter, picking up newly loaded feeds.
func (c *Controller) Refresh() Render {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.render()
}

// SetUserCoords records the geolocation result. Only the first call per
// session is accepted; it re-runs the pipeline once.
func (c *Controller) SetUserCoords(coords Coords) (Render, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.UserCoords != nil {
		return Render{}, false
	}
	c.state.UserCoords = &coords
	return c.render(), true
}

// UserCoords returns the recorded user position, if any.
func (c *Controller) UserCoords() *Coords {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.UserCoords == nil {
		return nil
	}
	coords := *c.state.UserCoords
	return &coords
}

// SelectMarker highlights the marker of location id and un-highlights the
// previous one.
func (c *Controller) SelectMarker(id string) (SelectResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.state.Markers.Get(id)
	if !ok {
		return SelectResult{}, ErrNotRendered
	}
	loc, _ := c.visible(id)

	prev, changed := c.state.Selection.Select(id)
	if !changed {
		return SelectResult{Location: loc}, nil
	}

	var changes []MarkerHandle
	if old, ok := c.state.Markers.Get(prev); ok {
		old.setSelected(false)
		changes = append(changes, *old)
	}
	m.setSelected(true)
	changes = append(changes, *m)

	return SelectResult{Location: loc, Changes: changes}, nil
}

// DeselectCurrent resets the highlighted marker, if any, and returns the
// icon change to apply.
func (c *Controller) DeselectCurrent() []MarkerHandle {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.state.Selection.Deselect()
	if !ok {
		return nil
	}
	m, ok := c.state.Markers.Get(prev)
	if !ok {
		return nil
	}
	m.setSelected(false)
	return []MarkerHandle{*m}
}

// Selected returns the selected location id, if any.
func (c *Controller) Selected() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Selection.Current()
}

// Markers returns the markers currently on the map.
func (c *Controller) Markers() []MarkerHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Markers.All()
}

// Filter returns the last applied filter.
func (c *Controller) Filter() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Filter
}

// Categories returns the categories known at the last render.
func (c *Controller) Categories() []Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Category{}, c.state.Categories...)
}

// colorFor returns the colour of loc's primary category, or FallbackColor.
func (c *Controller) colorFor(loc Location) string {
	if color, ok := c.state.CategoryColors[loc.PrimaryCategory()]; ok && color != "" {
		return color
	}
	return FallbackColor
}

// render snapshots the catalog, runs the pipeline and rebuilds the markers.
// Callers hold c.mu.
func (c *Controller) render() Render {
	c.lastSeen = time.Now()
	c.state.Locations = c.catalog.Locations()
	c.state.Categories = c.catalog.Categories()
	c.state.CategoryColors = c.catalog.CategoryColors()

	c.state.Visible = Rank(c.state.Locations, c.state.Filter, c.state.UserCoords)
	c.renderMarkers(c.state.Visible)

	return Render{
		Items:      append([]Ranked{}, c.state.Visible...),
		Markers:    c.state.Markers.All(),
		UserCoords: c.state.UserCoords,
	}
}

// renderMarkers drops the selection and rebuilds the registry, even when
// the selected location is still in list.
func (c *Controller) renderMarkers(list []Ranked) {
	c.state.Selection.Reset()
	c.state.Markers.Clear()
	for _, r := range list {
		c.state.Markers.Add(r.Location, c.colorFor(r.Location))
	}
}

func (c *Controller) visible(id string) (Location, bool) {
	for _, r := range c.state.Visible {
		if r.ID == id {
			return r.Location, true
		}
	}
	return Location{}, false
}

func (c *Controller) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

func (c *Controller) touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}
