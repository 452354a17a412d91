package viewer

import (
	"net/url"

	"github.com/c3r4h/dptkp/internal/humastar"
	"github.com/c3r4h/dptkp/internal/service"
)

// EmptyListTitle is shown in the sidebar when no location passes the filters.
const EmptyListTitle = "Not found."

type rowData struct {
	ID         string
	Name       string
	Category   []string
	OpenHours  string
	CloseHours string
	DistanceKm *float64
	SelectURL  string
}

type detailData struct {
	service.Location
	Links service.Links
}

// iconView is the subset of an icon L.divIcon needs.
type iconView struct {
	HTML        string `json:"html"`
	IconSize    [2]int `json:"iconSize"`
	IconAnchor  [2]int `json:"iconAnchor"`
	PopupAnchor [2]int `json:"popupAnchor"`
}

type markerView struct {
	ID       string   `json:"id"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Selected bool     `json:"selected"`
	Icon     iconView `json:"icon"`
}

func markerEvent(markers []service.MarkerHandle) map[string]any {
	views := make([]markerView, 0, len(markers))
	for _, m := range markers {
		views = append(views, markerView{
			ID:       m.ID,
			Lat:      m.Lat,
			Lng:      m.Lng,
			Selected: m.Selected,
			Icon: iconView{
				HTML:        m.Icon.HTML(),
				IconSize:    m.Icon.IconSize,
				IconAnchor:  m.Icon.IconAnchor,
				PopupAnchor: m.Icon.PopupAnchor,
			},
		})
	}
	return map[string]any{"markers": views}
}

func (h *Handler) renderRows(session string, r service.Render) string {
	selectPrefix := RoutesFor(session).Select
	items := make([]any, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, rowData{
			ID:         it.ID,
			Name:       it.Name,
			Category:   it.Category,
			OpenHours:  it.OpenHours,
			CloseHours: it.CloseHours,
			DistanceKm: it.DistanceKm,
			SelectURL:  selectPrefix + url.PathEscape(it.ID) + "?focus=true",
		})
	}
	return h.RenderList("location-row", items, EmptyListTitle, "")
}

func (h *Handler) renderOptions(cats []service.Category) string {
	opts := make([]humastar.SelectOptionData, 0, len(cats))
	for _, c := range cats {
		opts = append(opts, humastar.SelectOptionData{Value: c.ID, Label: c.Name})
	}
	return h.RenderSelect("Semua kategori", opts)
}

func (h *Handler) renderDetail(loc service.Location, user *service.Coords) string {
	html, err := h.Renderer.Render("location-detail", detailData{
		Location: loc,
		Links:    service.LinksFor(loc, user),
	})
	if err != nil {
		h.log.Error().Err(err).Str("location", loc.ID).Msg("Failed to render location detail")
		return "<!-- template error: " + err.Error() + " -->"
	}
	return html
}
