package session

import (
	"context"
	"sync"

	"github.com/lintang-b-s/Collectorx/pkg/geo"
	"github.com/lintang-b-s/Collectorx/pkg/http/usecases"
	"github.com/lintang-b-s/Collectorx/pkg/util"
)

type Planner interface {
	PlanCollectionRoute(ctx context.Context, depot geo.Coordinate, points []geo.Coordinate,
		mustReturn bool) (*usecases.CollectionRoute, error)
}

// examplePoints sit around central Bengaluru.
var examplePoints = []geo.Coordinate{
	geo.NewCoordinate(12.980708, 77.605916),
	geo.NewCoordinate(12.969216, 77.584795),
	geo.NewCoordinate(12.961116, 77.604342),
	geo.NewCoordinate(12.983550, 77.581100),
}

// Session is the per-client routing state: depot, collection points and the route planned
// for them. Any change to the depot or points drops the route.
type Session struct {
	mu     sync.RWMutex
	id     uint
	depot  *geo.Coordinate
	points []geo.Coordinate
	route  *usecases.CollectionRoute
	// rev counts depot and point changes; a route is kept only if planned at the current rev.
	rev uint64
}

func NewSession(id uint) *Session {
	return &Session{
		id:     id,
		points: make([]geo.Coordinate, 0),
	}
}

func (s *Session) GetID() uint {
	return s.id
}

func (s *Session) SetDepot(c geo.Coordinate) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depot = &c
	s.changed()
	return nil
}

// Depot returns the depot and whether one is set.
func (s *Session) Depot() (geo.Coordinate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.depot == nil {
		return geo.Coordinate{}, false
	}
	return *s.depot, true
}

// AddCollectionPoint appends c and returns its 1-based point number.
func (s *Session) AddCollectionPoint(c geo.Coordinate) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, c)
	s.changed()
	return len(s.points), nil
}

// DeletePoint removes the point at 0-based index.
func (s *Session) DeletePoint(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.points) {
		return util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput,
			"point index %d is out of range [0, %d)", index, len(s.points))
	}
	s.points = append(s.points[:index], s.points[index+1:]...)
	s.changed()
	return nil
}

func (s *Session) ClearAllPoints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = make([]geo.Coordinate, 0)
	s.changed()
}

// LoadExamplePoints replaces the collection points with a fixed demo set.
func (s *Session) LoadExamplePoints() []geo.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = make([]geo.Coordinate, len(examplePoints))
	copy(s.points, examplePoints)
	s.changed()

	out := make([]geo.Coordinate, len(s.points))
	copy(out, s.points)
	return out
}

// changed drops the current route. Callers hold s.mu.
func (s *Session) changed() {
	s.rev++
	s.route = nil
}

func (s *Session) Points() []geo.Coordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]geo.Coordinate, len(s.points))
	copy(out, s.points)
	return out
}

func (s *Session) Route() *usecases.CollectionRoute {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.route
}

// CalculateRoute plans from the depot through every point. The depot and at least one
// point must be set. The route is returned but not stored when the depot or points changed
// while planning.
func (s *Session) CalculateRoute(ctx context.Context, planner Planner, mustReturn bool) (*usecases.CollectionRoute, error) {
	s.mu.RLock()
	rev := s.rev
	var depot geo.Coordinate
	hasDepot := s.depot != nil
	if hasDepot {
		depot = *s.depot
	}
	points := make([]geo.Coordinate, len(s.points))
	copy(points, s.points)
	s.mu.RUnlock()

	if !hasDepot {
		return nil, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput, "set the depot location first")
	}
	if len(points) == 0 {
		return nil, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput, "add at least one collection point")
	}

	route, err := planner.PlanCollectionRoute(ctx, depot, points, mustReturn)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.rev == rev {
		s.route = route
	}
	s.mu.Unlock()
	return route, nil
}
