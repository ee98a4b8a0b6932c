package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/Collectorx/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/Collectorx/pkg/http/usecases"
	"go.uber.org/zap"
)

const maxRequestBody = 8 << 20

type routingAPI struct {
	routingService RoutingService
	validate       *requestValidator
	log            *zap.Logger
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		routingService: routingService,
		validate:       newRequestValidator(),
		log:            log,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.POST("/computeTour", api.computeTour)
	group.POST("/computeTours", api.computeTours)
	group.POST("/computeCollectionRoute", api.computeCollectionRoute)
}

func (api *routingAPI) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("body contains badly-formed JSON: %v", err)
	}
	return nil
}

// computeTour godoc
//
//	@Summary	plan a visiting order over a cost matrix
//	@Tags		routing
//	@Accept		json
//	@Produce	json
//	@Router		/computeTour [post]
func (api *routingAPI) computeTour(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request computeTourRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	plan, err := api.routingService.ComputeTour(request.Matrix, *request.Start, request.MustReturn)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTourResponse(plan)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// computeTours godoc
//
//	@Summary	plan several independent cost matrices concurrently
//	@Tags		routing
//	@Accept		json
//	@Produce	json
//	@Router		/computeTours [post]
func (api *routingAPI) computeTours(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request computeToursRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	queries := make([]usecases.TourQuery, len(request.Queries))
	for i, q := range request.Queries {
		queries[i] = q.toQuery()
	}
	results := api.routingService.ComputeTours(r.Context(), queries)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewBatchTourResponse(results)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// computeCollectionRoute godoc
//
//	@Summary	plan a road route from a depot through every collection point
//	@Tags		routing
//	@Accept		json
//	@Produce	json
//	@Param		geometry	query	bool	false	"include the route coordinates"
//	@Router		/computeCollectionRoute [post]
func (api *routingAPI) computeCollectionRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request collectionRouteRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	route, err := api.routingService.PlanCollectionRoute(r.Context(), request.Depot.ToCoordinate(),
		request.pointCoordinates(), request.ReturnToDepot)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	withGeometry := r.URL.Query().Get("geometry") == "true"
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewCollectionRouteResponse(route, withGeometry)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
