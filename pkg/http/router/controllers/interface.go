package controllers

import (
	"context"

	"github.com/lintang-b-s/Collectorx/pkg/engine"
	"github.com/lintang-b-s/Collectorx/pkg/geo"
	"github.com/lintang-b-s/Collectorx/pkg/http/usecases"
)

type RoutingService interface {
	ComputeTour(matrix [][]*float64, start int, mustReturn bool) (*engine.Plan, error)
	ComputeTours(ctx context.Context, queries []usecases.TourQuery) []engine.PlanResult
	PlanCollectionRoute(ctx context.Context, depot geo.Coordinate, points []geo.Coordinate,
		mustReturn bool) (*usecases.CollectionRoute, error)
}
