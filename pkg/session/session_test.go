package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/lintang-b-s/Collectorx/pkg/geo"
	"github.com/lintang-b-s/Collectorx/pkg/http/usecases"
	"github.com/lintang-b-s/Collectorx/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlanner struct {
	depot      geo.Coordinate
	points     []geo.Coordinate
	mustReturn bool
	err        error
	// during runs while the route is being planned
	during func()
}

func (p *fakePlanner) PlanCollectionRoute(ctx context.Context, depot geo.Coordinate, points []geo.Coordinate,
	mustReturn bool) (*usecases.CollectionRoute, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.depot, p.points, p.mustReturn = depot, points, mustReturn
	if p.during != nil {
		p.during()
	}

	order := []int{0}
	for i := range points {
		order = append(order, i+1)
	}
	if mustReturn {
		order = append(order, 0)
	}
	return &usecases.CollectionRoute{Order: order, Cost: float64(len(points))}, nil
}

func TestSessionPoints(t *testing.T) {
	s := NewSession(3)
	assert.Equal(t, uint(3), s.GetID())

	_, ok := s.Depot()
	assert.False(t, ok)

	require.NoError(t, s.SetDepot(geo.NewCoordinate(12.97, 77.59)))
	depot, ok := s.Depot()
	assert.True(t, ok)
	assert.Equal(t, geo.NewCoordinate(12.97, 77.59), depot)

	assert.ErrorIs(t, s.SetDepot(geo.NewCoordinate(91, 0)), util.ErrInvalidInput)

	num, err := s.AddCollectionPoint(geo.NewCoordinate(12.98, 77.60))
	require.NoError(t, err)
	assert.Equal(t, 1, num)
	num, err = s.AddCollectionPoint(geo.NewCoordinate(12.99, 77.61))
	require.NoError(t, err)
	assert.Equal(t, 2, num)

	_, err = s.AddCollectionPoint(geo.NewCoordinate(0, 181))
	assert.ErrorIs(t, err, util.ErrInvalidInput)
	assert.Len(t, s.Points(), 2)

	require.NoError(t, s.DeletePoint(0))
	assert.Equal(t, []geo.Coordinate{geo.NewCoordinate(12.99, 77.61)}, s.Points())
	assert.ErrorIs(t, s.DeletePoint(1), util.ErrInvalidInput)
	assert.ErrorIs(t, s.DeletePoint(-1), util.ErrInvalidInput)

	s.ClearAllPoints()
	assert.Empty(t, s.Points())

	example := s.LoadExamplePoints()
	assert.Len(t, example, 4)
	assert.Equal(t, example, s.Points())
}

func TestSessionPointsAreCopies(t *testing.T) {
	s := NewSession(0)
	_, err := s.AddCollectionPoint(geo.NewCoordinate(1, 1))
	require.NoError(t, err)

	points := s.Points()
	points[0] = geo.NewCoordinate(2, 2)
	assert.Equal(t, geo.NewCoordinate(1, 1), s.Points()[0])
}

func TestSessionCalculateRoute(t *testing.T) {
	planner := &fakePlanner{}
	s := NewSession(0)

	_, err := s.CalculateRoute(context.Background(), planner, true)
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	require.NoError(t, s.SetDepot(geo.NewCoordinate(12.97, 77.59)))
	_, err = s.CalculateRoute(context.Background(), planner, true)
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	s.LoadExamplePoints()
	route, err := s.CalculateRoute(context.Background(), planner, true)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 0}, route.Order)
	assert.Same(t, route, s.Route())
	assert.Equal(t, s.Points(), planner.points)
	assert.True(t, planner.mustReturn)

	// editing the points drops the stale route
	require.NoError(t, s.DeletePoint(0))
	assert.Nil(t, s.Route())

	planner.err = errors.New("provider down")
	_, err = s.CalculateRoute(context.Background(), planner, false)
	assert.Error(t, err)
	assert.Nil(t, s.Route())
}

func TestSessionChangesDropRoute(t *testing.T) {
	testCases := []struct {
		name   string
		change func(s *Session) error
	}{
		{name: "set depot", change: func(s *Session) error { return s.SetDepot(geo.NewCoordinate(12.95, 77.60)) }},
		{name: "add point", change: func(s *Session) error {
			_, err := s.AddCollectionPoint(geo.NewCoordinate(12.99, 77.62))
			return err
		}},
		{name: "delete point", change: func(s *Session) error { return s.DeletePoint(1) }},
		{name: "clear points", change: func(s *Session) error { s.ClearAllPoints(); return nil }},
		{name: "example points", change: func(s *Session) error { s.LoadExamplePoints(); return nil }},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(0)
			require.NoError(t, s.SetDepot(geo.NewCoordinate(12.97, 77.59)))
			s.LoadExamplePoints()
			_, err := s.CalculateRoute(context.Background(), &fakePlanner{}, false)
			require.NoError(t, err)
			require.NotNil(t, s.Route())

			require.NoError(t, tt.change(s))
			assert.Nil(t, s.Route())
		})
	}
}

func TestSessionRouteNotStoredAfterConcurrentChange(t *testing.T) {
	s := NewSession(0)
	require.NoError(t, s.SetDepot(geo.NewCoordinate(12.97, 77.59)))
	s.LoadExamplePoints()

	planner := &fakePlanner{during: func() {
		_, err := s.AddCollectionPoint(geo.NewCoordinate(12.99, 77.62))
		require.NoError(t, err)
	}}
	route, err := s.CalculateRoute(context.Background(), planner, false)
	require.NoError(t, err)
	assert.Len(t, route.Order, 5)
	assert.Len(t, s.Points(), 5)
	assert.Nil(t, s.Route())

	planner.during = nil
	route, err = s.CalculateRoute(context.Background(), planner, false)
	require.NoError(t, err)
	assert.Len(t, route.Order, 6)
	assert.Same(t, route, s.Route())
}

func TestSessionConcurrentAccess(t *testing.T) {
	s := NewSession(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.AddCollectionPoint(geo.NewCoordinate(float64(i%90), float64(i)))
			_ = s.Points()
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.Points(), 50)
}

func dispatch(t *testing.T, d *Dispatcher, s *Session, action string, payload string) (interface{}, error) {
	t.Helper()
	cmd := Command{Action: action}
	if payload != "" {
		cmd.Payload = json.RawMessage(payload)
	}
	return d.Dispatch(context.Background(), s, cmd)
}

func TestDefaultDispatcher(t *testing.T) {
	planner := &fakePlanner{}
	d := NewDefaultDispatcher(planner)
	s := NewSession(0)

	assert.Equal(t, []string{"addCollectionPoint", "calculateRoute", "clearAllPoints", "deletePoint",
		"examplePoints", "listPoints", "setDepot"}, d.Actions())

	out, err := dispatch(t, d, s, "setDepot", `{"lat":12.97,"lon":77.59}`)
	require.NoError(t, err)
	view := out.(PointsView)
	require.NotNil(t, view.Depot)
	assert.Equal(t, geo.NewCoordinate(12.97, 77.59), *view.Depot)

	out, err = dispatch(t, d, s, "addCollectionPoint", `{"lat":12.98,"lon":77.60}`)
	require.NoError(t, err)
	assert.Len(t, out.(PointsView).Points, 1)

	out, err = dispatch(t, d, s, "examplePoints", "")
	require.NoError(t, err)
	assert.Len(t, out.(PointsView).Points, 4)

	out, err = dispatch(t, d, s, "deletePoint", `{"index":3}`)
	require.NoError(t, err)
	assert.Len(t, out.(PointsView).Points, 3)

	out, err = dispatch(t, d, s, "calculateRoute", `{"return_to_depot":true}`)
	require.NoError(t, err)
	route := out.(*usecases.CollectionRoute)
	assert.Equal(t, []int{0, 1, 2, 3, 0}, route.Order)

	out, err = dispatch(t, d, s, "clearAllPoints", "")
	require.NoError(t, err)
	assert.Empty(t, out.(PointsView).Points)

	out, err = dispatch(t, d, s, "listPoints", "")
	require.NoError(t, err)
	assert.NotNil(t, out.(PointsView).Depot)
}

func TestDispatcherErrors(t *testing.T) {
	planner := &fakePlanner{}
	d := NewDefaultDispatcher(planner)
	s := NewSession(0)

	testCases := []struct {
		name    string
		action  string
		payload string
	}{
		{name: "unknown action", action: "teleport"},
		{name: "malformed payload", action: "setDepot", payload: `{"lat":`},
		{name: "missing latitude", action: "setDepot", payload: `{"lon":77.59}`},
		{name: "latitude out of range", action: "addCollectionPoint", payload: `{"lat":120,"lon":77.59}`},
		{name: "missing index", action: "deletePoint", payload: `{}`},
		{name: "index out of range", action: "deletePoint", payload: `{"index":0}`},
		{name: "route without depot", action: "calculateRoute"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			out, err := dispatch(t, d, s, tt.action, tt.payload)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, util.ErrInvalidInput)
			assert.Equal(t, util.ErrBadParamInput, util.ErrorCode(err))
		})
	}
}

func TestDispatcherRegisterOverrides(t *testing.T) {
	d := NewDispatcher()
	d.Register("ping", func(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
		return "pong", nil
	})
	d.Register("ping", func(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
		return "pong v2", nil
	})

	out, err := d.Dispatch(context.Background(), NewSession(0), Command{Action: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "pong v2", out)
}
