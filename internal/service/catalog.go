package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/c3r4h/dptkp/internal/feed"
)

// Mirror receives a copy of every loaded location list, e.g. a query table.
type Mirror interface {
	ReplaceLocations(ctx context.Context, locs []Location) error
}

// CatalogService holds the categories and locations loaded from the feeds.
// Categories are immutable once loaded.
type CatalogService struct {
	mu         sync.RWMutex
	categories []Category
	locations  []Location

	bus    *EventBus
	mirror Mirror
	log    zerolog.Logger
}

// NewCatalogService creates an empty catalog publishing load events on bus.
func NewCatalogService(bus *EventBus, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		bus: bus,
		log: log.With().Str("component", "catalog").Logger(),
	}
}

// SetMirror attaches a mirror that is refreshed on every locations load.
func (s *CatalogService) SetMirror(m Mirror) {
	s.mu.Lock()
	s.mirror = m
	s.mu.Unlock()
}

// Load fetches both feeds concurrently. Each feed completes on its own:
// a failure is logged and leaves that collection empty while the other
// still loads. The first error is returned for callers that care.
func (s *CatalogService) Load(ctx context.Context, categories, locations feed.Source) error {
	var g errgroup.Group
	g.Go(func() error { return s.LoadCategories(ctx, categories) })
	g.Go(func() error { return s.LoadLocations(ctx, locations) })
	return g.Wait()
}

// LoadCategories fetches and stores the category feed.
func (s *CatalogService) LoadCategories(ctx context.Context, src feed.Source) error {
	var cats []Category
	if err := decode(ctx, src, &cats); err != nil {
		s.log.Error().Err(err).Str("feed", src.String()).Msg("Failed to load categories")
		s.bus.Publish(Event{Feed: FeedCategories, Err: err})
		return err
	}
	s.SetCategories(cats)
	s.log.Info().Int("count", len(cats)).Str("feed", src.String()).Msg("Categories loaded")
	return nil
}

// LoadLocations fetches and stores the locations feed.
func (s *CatalogService) LoadLocations(ctx context.Context, src feed.Source) error {
	var locs []Location
	if err := decode(ctx, src, &locs); err != nil {
		s.log.Error().Err(err).Str("feed", src.String()).Msg("Failed to load markers")
		s.bus.Publish(Event{Feed: FeedLocations, Err: err})
		return err
	}
	s.SetLocations(ctx, locs)
	s.log.Info().Int("count", len(locs)).Str("feed", src.String()).Msg("Locations loaded")
	return nil
}

// SetCategories stores cats and announces them.
func (s *CatalogService) SetCategories(cats []Category) {
	s.mu.Lock()
	s.categories = append([]Category(nil), cats...)
	s.mu.Unlock()
	s.bus.Publish(Event{Feed: FeedCategories, Count: len(cats)})
}

// SetLocations stores locs, assigning feed-index ids where missing, and
// announces them. Mirror failures are logged only.
func (s *CatalogService) SetLocations(ctx context.Context, locs []Location) {
	locs = append([]Location(nil), locs...)
	assignIDs(locs)

	s.mu.Lock()
	s.locations = locs
	mirror := s.mirror
	s.mu.Unlock()

	if mirror != nil {
		if err := mirror.ReplaceLocations(ctx, locs); err != nil {
			s.log.Warn().Err(err).Msg("Failed to mirror locations")
		}
	}
	s.bus.Publish(Event{Feed: FeedLocations, Count: len(locs)})
}

// Categories returns a copy of the loaded categories in feed order.
func (s *CatalogService) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Category{}, s.categories...)
}

// Locations returns a copy of the loaded locations in feed order.
func (s *CatalogService) Locations() []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Location{}, s.locations...)
}

// Location returns the location with id.
func (s *CatalogService) Location(id string) (Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

// CategoryColors maps category id to colour.
func (s *CatalogService) CategoryColors() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	colors := make(map[string]string, len(s.categories))
	for _, c := range s.categories {
		colors[c.ID] = c.Color
	}
	return colors
}

// Bus returns the event bus load events are published on.
func (s *CatalogService) Bus() *EventBus {
	return s.bus
}

func decode(ctx context.Context, src feed.Source, v any) error {
	rc, err := src.Fetch(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", src, err)
	}
	return nil
}
