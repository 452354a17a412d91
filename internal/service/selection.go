package service

import "fmt"

// Selection tracks the single highlighted marker by location id.
// The zero value is NoneSelected.
type Selection struct {
	id string
}

// Current returns the selected location id, if any.
func (s *Selection) Current() (string, bool) {
	return s.id, s.id != ""
}

// Select makes id the selected marker. It returns the previously selected
// id that must be reset, and whether anything changed. Selecting the
// current marker again is a no-op.
func (s *Selection) Select(id string) (prev string, changed bool) {
	if s.id == id {
		return "", false
	}
	prev = s.id
	s.id = id
	return prev, true
}

// Deselect clears the selection and returns the id that was selected.
func (s *Selection) Deselect() (string, bool) {
	prev := s.id
	s.id = ""
	return prev, prev != ""
}

// Reset drops the selection without reporting it; used when the marker
// set is rebuilt.
func (s *Selection) Reset() {
	s.id = ""
}

// Icon describes the CSS dot drawn for a marker. Both states share the
// 36x36 box and bottom-centre anchor so the geographic point stays fixed.
type Icon struct {
	Color       string `json:"color" doc:"Dot colour (CSS)"`
	Size        int    `json:"size" doc:"Dot diameter in px"`
	MarginTop   int    `json:"marginTop" doc:"Top margin inside the icon box in px"`
	Border      string `json:"border" doc:"CSS border"`
	IconSize    [2]int `json:"iconSize" doc:"Icon box size in px"`
	IconAnchor  [2]int `json:"iconAnchor" doc:"Anchor point within the icon box"`
	PopupAnchor [2]int `json:"popupAnchor" doc:"Popup anchor relative to the icon anchor"`
}

// NewIcon returns the unselected or selected icon for color.
func NewIcon(color string, selected bool) Icon {
	icon := Icon{
		Color:       color,
		Size:        18,
		MarginTop:   18,
		Border:      "none",
		IconSize:    [2]int{36, 36},
		IconAnchor:  [2]int{18, 36},
		PopupAnchor: [2]int{0, -36},
	}
	if selected {
		icon.Size = 22
		icon.MarginTop = 16
		icon.Border = "2px solid #000"
	}
	return icon
}

// HTML renders the icon markup handed to L.divIcon.
func (i Icon) HTML() string {
	return fmt.Sprintf(`<div style="margin-top:%dpx;background:%s;width:%dpx;height:%dpx;border-radius:50%%;border:%s;"></div>`,
		i.MarginTop, i.Color, i.Size, i.Size, i.Border)
}

// MarkerHandle is the render-layer view of one marker on the map.
type MarkerHandle struct {
	ID       string  `json:"id" doc:"Location id"`
	Lat      float64 `json:"lat" doc:"Latitude"`
	Lng      float64 `json:"lng" doc:"Longitude"`
	Color    string  `json:"color" doc:"Category colour captured at render time"`
	Selected bool    `json:"selected" doc:"Whether the marker is highlighted"`
	Icon     Icon    `json:"icon" doc:"Icon to draw"`
}

// MarkerRegistry maps location ids to their rendered markers. It is owned
// by the render layer; location records never point at markers.
type MarkerRegistry struct {
	order   []string
	markers map[string]*MarkerHandle
}

// NewMarkerRegistry creates an empty registry.
func NewMarkerRegistry() *MarkerRegistry {
	return &MarkerRegistry{markers: make(map[string]*MarkerHandle)}
}

// Clear removes every marker.
func (r *MarkerRegistry) Clear() {
	r.order = r.order[:0]
	r.markers = make(map[string]*MarkerHandle)
}

// Add registers an unselected marker for loc with color.
func (r *MarkerRegistry) Add(loc Location, color string) *MarkerHandle {
	m := &MarkerHandle{
		ID:    loc.ID,
		Lat:   loc.Lat,
		Lng:   loc.Lng,
		Color: color,
		Icon:  NewIcon(color, false),
	}
	if _, exists := r.markers[loc.ID]; !exists {
		r.order = append(r.order, loc.ID)
	}
	r.markers[loc.ID] = m
	return m
}

// Get looks up a marker by location id.
func (r *MarkerRegistry) Get(id string) (*MarkerHandle, bool) {
	m, ok := r.markers[id]
	return m, ok
}

// Len returns the number of markers.
func (r *MarkerRegistry) Len() int {
	return len(r.order)
}

// All returns copies of the markers in render order.
func (r *MarkerRegistry) All() []MarkerHandle {
	out := make([]MarkerHandle, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.markers[id])
	}
	return out
}

// SelectedCount returns how many markers are in the selected state.
func (r *MarkerRegistry) SelectedCount() int {
	n := 0
	for _, m := range r.markers {
		if m.Selected {
			n++
		}
	}
	return n
}

func (m *MarkerHandle) setSelected(selected bool) {
	m.Selected = selected
	m.Icon = NewIcon(m.Color, selected)
}
