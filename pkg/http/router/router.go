package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/Collectorx/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/Collectorx/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/Collectorx/pkg/http/server"
	"github.com/lintang-b-s/Collectorx/pkg/metrics"
	"github.com/lintang-b-s/Collectorx/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	_ "net/http/pprof"

	httpSwagger "github.com/swaggo/http-swagger"
)

type API struct {
	log      *zap.Logger
	metric   *metrics.Metric
	gatherer prometheus.Gatherer
	hub      *controllers.Hub
}

func NewAPI(log *zap.Logger, metric *metrics.Metric, gatherer prometheus.Gatherer) *API {
	return &API{
		log:      log,
		metric:   metric,
		gatherer: gatherer,
	}
}

// Handler wires the routes and middleware. ctx bounds the websocket sessions.
func (api *API) Handler(ctx context.Context, config http_server.Config, routingService controllers.RoutingService) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.GET("/doc/*any", swaggerHandler)
	router.Handler(http.MethodGet, "/debug/pprof/*item", http.DefaultServeMux)
	if api.gatherer != nil {
		router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(api.gatherer, promhttp.HandlerOpts{}))
	}

	group := router_helper.NewRouteGroup(router, "/api")
	collectorRoutes := controllers.New(routingService, api.log)
	collectorRoutes.Routes(group)

	api.hub = controllers.NewHub(session.NewDefaultDispatcher(routingService), api.log)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log), Labels(api.metric)}
	if config.RateLimit > 0 {
		mwChain = append(mwChain, Limit(config.RateLimit, int(config.RateLimit)+1))
	}
	chain := alice.New(mwChain...)

	// the websocket route skips the timeout handler, which cannot be hijacked
	mux := http.NewServeMux()
	mux.Handle("/api/ws", alice.New(api.recoverPanic, RealIP, Logger(api.log)).Then(api.handleWebsocket(ctx)))
	mux.Handle("/", http.TimeoutHandler(chain.Then(router), config.Timeout, "request timed out"))
	return mux
}

//	@title			Collectorx API
//	@version		1.0
//	@description	Single-vehicle collection route planner: greedy nearest-neighbour tours refined with 2-opt.

//	@contact.name	Lintang Birda Saputra
//	@contact.url	_
//	@contact.email	lintang.birda.saputra@mail.ugm.ac.id

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	routingService controllers.RoutingService,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(ctx, config, routingService), config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		api.hub.RemoveAllUser()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		api.log.Error("HTTP server stopped", zap.Error(err))
		return err

	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		api.hub.RemoveAllUser()
		return err
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
