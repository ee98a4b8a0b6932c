package controllers

import (
	"math"

	"github.com/lintang-b-s/Collectorx/pkg/engine"
	"github.com/lintang-b-s/Collectorx/pkg/geo"
	"github.com/lintang-b-s/Collectorx/pkg/http/usecases"
)

// computeTourRequest. matrix[u][v] is the cost of u->v, null when v is unreachable from u.
type computeTourRequest struct {
	Matrix     [][]*float64 `json:"matrix" validate:"required,min=1"`
	Start      *int         `json:"start" validate:"required,min=0"`
	MustReturn bool         `json:"must_return"`
}

func (r computeTourRequest) toQuery() usecases.TourQuery {
	return usecases.TourQuery{
		Matrix:     r.Matrix,
		Start:      *r.Start,
		MustReturn: r.MustReturn,
	}
}

type computeToursRequest struct {
	Queries []computeTourRequest `json:"queries" validate:"required,min=1,dive"`
}

// finite returns nil for +Inf so the value survives json encoding as null.
func finite(f float64) *float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

type tourResponse struct {
	Tour        []int    `json:"tour"`
	Cost        *float64 `json:"cost"`
	InitialCost *float64 `json:"initial_cost"`
	Improved    bool     `json:"improved"`
	Passes      int      `json:"passes"`
	Moves       int      `json:"moves"`
	Truncated   bool     `json:"truncated"`
	StopReason  string   `json:"stop_reason,omitempty"`
	Unreachable int      `json:"unreachable"`
}

func NewTourResponse(plan *engine.Plan) tourResponse {
	resp := tourResponse{
		Tour:        plan.Tour.Ints(),
		Cost:        finite(plan.Cost),
		InitialCost: finite(plan.InitialCost),
		Improved:    plan.Improved,
		Unreachable: plan.NumUnreachable,
	}
	if plan.Improved {
		resp.Passes = plan.Stats.Passes
		resp.Moves = plan.Stats.AcceptedMoves
		resp.Truncated = plan.Stats.Truncated()
		resp.StopReason = plan.Stats.Reason.String()
	}
	return resp
}

type batchTourResponse struct {
	Data  *tourResponse          `json:"data,omitempty"`
	Error map[string]interface{} `json:"error,omitempty"`
}

func NewBatchTourResponse(results []engine.PlanResult) []batchTourResponse {
	out := make([]batchTourResponse, len(results))
	for i, res := range results {
		if res.Err != nil {
			out[i] = batchTourResponse{Error: errorBody(res.Err)}
			continue
		}
		resp := NewTourResponse(res.Plan)
		out[i] = batchTourResponse{Data: &resp}
	}
	return out
}

type coordinateRequest struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon *float64 `json:"lon" validate:"required,min=-180,max=180"`
}

func (c coordinateRequest) ToCoordinate() geo.Coordinate {
	return geo.NewCoordinate(*c.Lat, *c.Lon)
}

type collectionRouteRequest struct {
	Depot         *coordinateRequest  `json:"depot" validate:"required"`
	Points        []coordinateRequest `json:"points" validate:"required,min=1,dive"`
	ReturnToDepot bool                `json:"return_to_depot"`
}

func (r collectionRouteRequest) pointCoordinates() []geo.Coordinate {
	coords := make([]geo.Coordinate, len(r.Points))
	for i, p := range r.Points {
		coords[i] = p.ToCoordinate()
	}
	return coords
}

type collectionRouteResponse struct {
	Order    []int            `json:"order"`
	Cost     *float64         `json:"cost"`
	Distance float64          `json:"distance"`
	Duration float64          `json:"duration"`
	Polyline string           `json:"polyline"`
	Geometry []geo.Coordinate `json:"geometry,omitempty"`
}

func NewCollectionRouteResponse(route *usecases.CollectionRoute, withGeometry bool) collectionRouteResponse {
	resp := collectionRouteResponse{
		Order:    route.Order,
		Cost:     finite(route.Cost),
		Distance: route.Distance,
		Duration: route.Duration,
		Polyline: route.Polyline,
	}
	if withGeometry {
		resp.Geometry = route.Geometry
	}
	return resp
}
