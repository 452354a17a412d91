// Package viewer contains the Datastar SSE handlers behind the map page.
// Every handler works on one session's controller and answers with
// element patches, signal patches and custom events for the Leaflet glue.
package viewer

import (
	"context"
	"fmt"
	"net/url"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"github.com/c3r4h/dptkp/internal/humastar"
	"github.com/c3r4h/dptkp/internal/service"
	"github.com/c3r4h/dptkp/internal/templates"
)

// Base is the path prefix of the viewer endpoints.
const Base = "/api/v1/viewer"

// Zoom and pan offset applied when a sidebar row is clicked.
const (
	FocusZoom = 15
	FocusPanY = 100
)

// Routes are the per-session URLs the page template binds to.
type Routes struct {
	Init     string
	Events   string
	Filter   string
	Coords   string
	Select   string // prefix, the location id is appended
	Deselect string
}

// RoutesFor returns the endpoint URLs of session.
func RoutesFor(session string) Routes {
	p := Base + "/" + url.PathEscape(session)
	return Routes{
		Init:     p + "/init",
		Events:   p + "/events",
		Filter:   p + "/filter",
		Coords:   p + "/coords",
		Select:   p + "/select/",
		Deselect: p + "/deselect",
	}
}

// Handler serves the viewer SSE endpoints.
type Handler struct {
	humastar.Handler
	sessions *service.SessionStore
	bus      *service.EventBus
	log      zerolog.Logger
}

// New creates a viewer handler.
func New(sessions *service.SessionStore, bus *service.EventBus, renderer *templates.Renderer, log zerolog.Logger) *Handler {
	return &Handler{
		Handler:  humastar.Handler{Renderer: renderer},
		sessions: sessions,
		bus:      bus,
		log:      log.With().Str("component", "viewer").Logger(),
	}
}

func (h *Handler) RegisterRoutes(api huma.API) {
	tags := huma.OperationTags("viewer")
	huma.Get(api, Base+"/{session}/init", h.Init, tags)
	huma.Get(api, Base+"/{session}/events", h.Events, tags)
	huma.Post(api, Base+"/{session}/filter", h.Filter, tags)
	huma.Post(api, Base+"/{session}/coords", h.Coords, tags)
	huma.Post(api, Base+"/{session}/select/{id}", h.Select, tags)
	huma.Post(api, Base+"/{session}/deselect", h.Deselect, tags)
}

type SessionInput struct {
	Session string `path:"session" doc:"Viewer session id from the page render"`
}

type SignalsInput struct {
	SessionInput
	humastar.SignalsInput
}

type SelectInput struct {
	SessionInput
	ID    string `path:"id" doc:"Location id"`
	Focus bool   `query:"focus" doc:"Pan the map to the location"`
}

func (h *Handler) controller(session string) (*service.Controller, error) {
	c, ok := h.sessions.Get(session)
	if !ok {
		return nil, huma.Error404NotFound("session not found, reload the page")
	}
	return c, nil
}

// Init sends the category options and the first render.
func (h *Handler) Init(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	c, err := h.controller(input.Session)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		r := c.Refresh()
		sse.Patch(h.renderOptions(c.Categories()), "#categoryFilter")
		h.sendRender(sse, input.Session, r)
	}), nil
}

// Filter rebuilds the FilterState from the sidebar signals and re-renders.
func (h *Handler) Filter(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	c, err := h.controller(input.Session)
	if err != nil {
		return nil, err
	}
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	f := FilterFromSignals(signals)
	return h.Stream(func(sse humastar.SSE) {
		h.sendRender(sse, input.Session, c.Apply(f))
	}), nil
}

// Coords records the browser geolocation once per session.
func (h *Handler) Coords(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	c, err := h.controller(input.Session)
	if err != nil {
		return nil, err
	}
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	lat, okLat := signals.Float("userlat")
	lng, okLng := signals.Float("userlng")
	if !okLat || !okLng || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, huma.Error400BadRequest("userlat and userlng must be valid coordinates")
	}
	return h.Stream(func(sse humastar.SSE) {
		r, ok := c.SetUserCoords(service.Coords{Lat: lat, Lng: lng})
		if !ok {
			return
		}
		h.log.Debug().Str("session", input.Session).Float64("lat", lat).Float64("lng", lng).Msg("User located")
		h.sendRender(sse, input.Session, r)
	}), nil
}

// Select highlights a marker and opens its detail modal.
func (h *Handler) Select(ctx context.Context, input *SelectInput) (*huma.StreamResponse, error) {
	c, err := h.controller(input.Session)
	if err != nil {
		return nil, err
	}
	res, err := c.SelectMarker(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("location %q is not on the map", input.ID))
	}
	user := c.UserCoords()
	return h.Stream(func(sse humastar.SSE) {
		if len(res.Changes) > 0 {
			sse.Event("marker-icons", markerEvent(res.Changes))
		}
		sse.Patch(h.renderDetail(res.Location, user), "#locModalContent")
		signals := map[string]any{"modalopen": true}
		if input.Focus {
			// A sidebar row was clicked; get the list out of the way.
			signals["sidebaropen"] = false
		}
		sse.Signals(signals)
		if input.Focus {
			sse.Event("focus-location", map[string]any{
				"lat":   res.Location.Lat,
				"lng":   res.Location.Lng,
				"zoom":  FocusZoom,
				"panBy": [2]int{0, FocusPanY},
			})
		}
	}), nil
}

// Deselect closes the modal and resets the highlighted marker.
func (h *Handler) Deselect(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	c, err := h.controller(input.Session)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		if changes := c.DeselectCurrent(); len(changes) > 0 {
			sse.Event("marker-icons", markerEvent(changes))
		}
		sse.Signals(map[string]any{"modalopen": false})
	}), nil
}

// Events re-renders the session whenever a feed finishes loading, so a
// page opened before the feeds arrived fills in on its own. It renders
// once right after subscribing to cover loads that finished between Init
// and this request.
func (h *Handler) Events(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	c, err := h.controller(input.Session)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		ch := h.bus.Subscribe()
		defer h.bus.Unsubscribe(ch)

		r := c.Refresh()
		sse.Patch(h.renderOptions(c.Categories()), "#categoryFilter")
		h.sendRender(sse, input.Session, r)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if ev.Err != nil {
					continue
				}
				r := c.Refresh()
				if ev.Feed == service.FeedCategories {
					sse.Patch(h.renderOptions(c.Categories()), "#categoryFilter")
				}
				h.sendRender(sse, input.Session, r)
			}
		}
	}), nil
}

// FilterFromSignals maps the sidebar signals onto a FilterState.
func FilterFromSignals(s humastar.Signals) service.FilterState {
	return service.FilterState{
		Category:    s.String("category"),
		Tubruk:      s.Bool("tubruk"),
		AC:          s.Bool("ac"),
		SmokingAC:   s.Bool("smokingac"),
		CarFriendly: s.Bool("carfriendly"),
		SortNearest: s.Bool("sortnearest"),
		Search:      s.String("search"),
	}
}

// sendRender patches the sidebar list and redraws the markers.
func (h *Handler) sendRender(sse humastar.SSE, session string, r service.Render) {
	sse.Patch(h.renderRows(session, r), "#locationList")
	sse.Event("markers-rendered", markerEvent(r.Markers))
}
