package session

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/lintang-b-s/Collectorx/pkg/geo"
	"github.com/lintang-b-s/Collectorx/pkg/util"
)

// Command is one client action, e.g. {"action":"addCollectionPoint","payload":{"lat":..,"lon":..}}.
type Command struct {
	Action  string          `json:"action" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Handler func(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error)

// Dispatcher maps action names to handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	validate *validator.Validate
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		validate: validator.New(),
	}
}

// Register binds action to h, replacing any previous handler.
func (d *Dispatcher) Register(action string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[action] = h
}

func (d *Dispatcher) Actions() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	actions := make([]string, 0, len(d.handlers))
	for a := range d.handlers {
		actions = append(actions, a)
	}
	sort.Strings(actions)
	return actions
}

func (d *Dispatcher) Dispatch(ctx context.Context, s *Session, cmd Command) (interface{}, error) {
	d.mu.RLock()
	h, ok := d.handlers[cmd.Action]
	d.mu.RUnlock()
	if !ok {
		return nil, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput, "unknown action %q", cmd.Action)
	}
	return h(ctx, s, cmd.Payload)
}

// decode unmarshals payload into dst and validates it. An empty payload decodes to the zero value.
func (d *Dispatcher) decode(payload json.RawMessage, dst interface{}) error {
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, dst); err != nil {
			return util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput, "malformed payload: %v", err)
		}
	}
	if err := d.validate.Struct(dst); err != nil {
		return util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput, "validation error: %v", err)
	}
	return nil
}

type coordinatePayload struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon *float64 `json:"lon" validate:"required,min=-180,max=180"`
}

func (p coordinatePayload) coordinate() geo.Coordinate {
	return geo.NewCoordinate(*p.Lat, *p.Lon)
}

type deletePointPayload struct {
	Index *int `json:"index" validate:"required,min=0"`
}

type calculateRoutePayload struct {
	ReturnToDepot bool `json:"return_to_depot"`
}

type PointsView struct {
	Depot  *geo.Coordinate  `json:"depot"`
	Points []geo.Coordinate `json:"points"`
}

func pointsView(s *Session) PointsView {
	view := PointsView{Points: s.Points()}
	if depot, ok := s.Depot(); ok {
		view.Depot = &depot
	}
	return view
}

// NewDefaultDispatcher registers the collection-route actions against planner.
func NewDefaultDispatcher(planner Planner) *Dispatcher {
	d := NewDispatcher()

	d.Register("setDepot", func(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
		var p coordinatePayload
		if err := d.decode(payload, &p); err != nil {
			return nil, err
		}
		if err := s.SetDepot(p.coordinate()); err != nil {
			return nil, err
		}
		return pointsView(s), nil
	})

	d.Register("addCollectionPoint", func(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
		var p coordinatePayload
		if err := d.decode(payload, &p); err != nil {
			return nil, err
		}
		if _, err := s.AddCollectionPoint(p.coordinate()); err != nil {
			return nil, err
		}
		return pointsView(s), nil
	})

	d.Register("deletePoint", func(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
		var p deletePointPayload
		if err := d.decode(payload, &p); err != nil {
			return nil, err
		}
		if err := s.DeletePoint(*p.Index); err != nil {
			return nil, err
		}
		return pointsView(s), nil
	})

	d.Register("clearAllPoints", func(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
		s.ClearAllPoints()
		return pointsView(s), nil
	})

	d.Register("examplePoints", func(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
		s.LoadExamplePoints()
		return pointsView(s), nil
	})

	d.Register("listPoints", func(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
		return pointsView(s), nil
	})

	d.Register("calculateRoute", func(ctx context.Context, s *Session, payload json.RawMessage) (interface{}, error) {
		var p calculateRoutePayload
		if err := d.decode(payload, &p); err != nil {
			return nil, err
		}
		route, err := s.CalculateRoute(ctx, planner, p.ReturnToDepot)
		if err != nil {
			return nil, err
		}
		return route, nil
	})

	return d
}
