package application

import (
	"context"
	"time"

	placeDomain "github.com/amble-mobility/offline-engine/internal/domain/place"
	routeDomain "github.com/amble-mobility/offline-engine/internal/domain/route"
	"github.com/amble-mobility/offline-engine/internal/domain/shared"
	tileDomain "github.com/amble-mobility/offline-engine/internal/domain/tile"
	"github.com/amble-mobility/offline-engine/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaveRouteRequest holds the data to cache a route for offline use.
type SaveRouteRequest struct {
	ID                 *uuid.UUID          `json:"id"`
	Name               string              `json:"name" binding:"required"`
	Path               []shared.Coordinate `json:"path" binding:"required"`
	DistanceMeters     float64             `json:"distance_m"`
	AccessibilityScore float64             `json:"accessibility_score"`
}

// RouteDTO is the API representation of a cached route.
type RouteDTO struct {
	ID                 uuid.UUID           `json:"id"`
	Name               string              `json:"name"`
	Path               []shared.Coordinate `json:"path"`
	DistanceMeters     float64             `json:"distance_m"`
	AccessibilityScore float64             `json:"accessibility_score"`
	SavedAt            time.Time           `json:"saved_at"`
}

// SavePlaceRequest holds the data to cache a place for offline use.
type SavePlaceRequest struct {
	ID       *uuid.UUID        `json:"id"`
	Name     string            `json:"name" binding:"required"`
	Address  string            `json:"address"`
	Location shared.Coordinate `json:"location"`
	Features []string          `json:"features"`
	Rating   float64           `json:"rating"`
}

// PlaceDTO is the API representation of a cached place.
type PlaceDTO struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	Address  string            `json:"address"`
	Location shared.Coordinate `json:"location"`
	Features []string          `json:"features"`
	Rating   float64           `json:"rating"`
	SavedAt  time.Time         `json:"saved_at"`
}

// CacheService handles the offline cache use cases for routes, places and
// map tiles, plus storage diagnostics.
type CacheService struct {
	routes routeDomain.Repository
	places placeDomain.Repository
	tiles  tileDomain.Repository
	store  *repository.Store
	logger *zap.Logger
}

// NewCacheService creates a new CacheService.
func NewCacheService(
	routes routeDomain.Repository,
	places placeDomain.Repository,
	tiles tileDomain.Repository,
	store *repository.Store,
	logger *zap.Logger,
) *CacheService {
	return &CacheService{
		routes: routes,
		places: places,
		tiles:  tiles,
		store:  store,
		logger: logger,
	}
}

// SaveRoute caches a route, replacing any prior record with the same ID.
func (s *CacheService) SaveRoute(ctx context.Context, req SaveRouteRequest) (*RouteDTO, error) {
	id := uuid.New()
	if req.ID != nil {
		id = *req.ID
	}

	rt, err := routeDomain.NewCachedRoute(id, req.Name, req.Path, req.DistanceMeters, req.AccessibilityScore)
	if err != nil {
		return nil, err
	}

	if err := s.routes.Save(ctx, rt); err != nil {
		return nil, err
	}

	s.logger.Info("route cached",
		zap.String("route_id", rt.ID().String()),
		zap.Int("points", len(rt.Path())),
	)

	dto := toRouteDTO(rt)
	return &dto, nil
}

// GetRoute returns one cached route.
func (s *CacheService) GetRoute(ctx context.Context, id uuid.UUID) (*RouteDTO, error) {
	rt, err := s.routes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toRouteDTO(rt)
	return &dto, nil
}

// ListRoutes returns every cached route.
func (s *CacheService) ListRoutes(ctx context.Context) ([]RouteDTO, error) {
	routes, err := s.routes.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]RouteDTO, len(routes))
	for i, rt := range routes {
		dtos[i] = toRouteDTO(rt)
	}
	return dtos, nil
}

// DeleteRoute removes a cached route; no-op if absent.
func (s *CacheService) DeleteRoute(ctx context.Context, id uuid.UUID) error {
	return s.routes.DeleteByID(ctx, id)
}

// SavePlace caches a place, replacing any prior record with the same ID.
func (s *CacheService) SavePlace(ctx context.Context, req SavePlaceRequest) (*PlaceDTO, error) {
	id := uuid.New()
	if req.ID != nil {
		id = *req.ID
	}

	p, err := placeDomain.NewCachedPlace(id, req.Name, req.Address, req.Location, req.Features, req.Rating)
	if err != nil {
		return nil, err
	}

	if err := s.places.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("place cached", zap.String("place_id", p.ID().String()))

	dto := toPlaceDTO(p)
	return &dto, nil
}

// GetPlace returns one cached place.
func (s *CacheService) GetPlace(ctx context.Context, id uuid.UUID) (*PlaceDTO, error) {
	p, err := s.places.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toPlaceDTO(p)
	return &dto, nil
}

// ListPlaces returns every cached place.
func (s *CacheService) ListPlaces(ctx context.Context) ([]PlaceDTO, error) {
	places, err := s.places.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]PlaceDTO, len(places))
	for i, p := range places {
		dtos[i] = toPlaceDTO(p)
	}
	return dtos, nil
}

// DeletePlace removes a cached place; no-op if absent.
func (s *CacheService) DeletePlace(ctx context.Context, id uuid.UUID) error {
	return s.places.DeleteByID(ctx, id)
}

// SaveTile caches a map tile, overwriting any prior payload for the key.
func (s *CacheService) SaveTile(ctx context.Context, key tileDomain.Key, payload []byte) error {
	t, err := tileDomain.NewCachedTile(key, payload)
	if err != nil {
		return err
	}
	return s.tiles.Save(ctx, t)
}

// GetTile returns the opaque payload for one tile key.
func (s *CacheService) GetTile(ctx context.Context, key tileDomain.Key) ([]byte, error) {
	t, err := s.tiles.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return t.Payload(), nil
}

// DeleteTile removes a cached tile; no-op if absent.
func (s *CacheService) DeleteTile(ctx context.Context, key tileDomain.Key) error {
	return s.tiles.DeleteByKey(ctx, key)
}

// StorageUsage reports best-effort storage consumption for diagnostics.
func (s *CacheService) StorageUsage(ctx context.Context) repository.Usage {
	return s.store.Usage(ctx)
}

func toRouteDTO(rt *routeDomain.CachedRoute) RouteDTO {
	return RouteDTO{
		ID:                 rt.ID(),
		Name:               rt.Name(),
		Path:               rt.Path(),
		DistanceMeters:     rt.DistanceMeters(),
		AccessibilityScore: rt.AccessibilityScore(),
		SavedAt:            rt.SavedAt(),
	}
}

func toPlaceDTO(p *placeDomain.CachedPlace) PlaceDTO {
	return PlaceDTO{
		ID:       p.ID(),
		Name:     p.Name(),
		Address:  p.Address(),
		Location: p.Location(),
		Features: p.Features(),
		Rating:   p.Rating(),
		SavedAt:  p.SavedAt(),
	}
}
