package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/Collectorx/pkg/engine"
	"github.com/lintang-b-s/Collectorx/pkg/http"
	"github.com/lintang-b-s/Collectorx/pkg/http/usecases"
	"github.com/lintang-b-s/Collectorx/pkg/logger"
	"github.com/lintang-b-s/Collectorx/pkg/metrics"
	"github.com/lintang-b-s/Collectorx/pkg/osrm"
	"github.com/lintang-b-s/Collectorx/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", ".", "directory containing config.yaml")
	logLevel   = flag.String("log_level", "", "override LOG_LEVEL (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	if err := util.ReadConfig(*configPath); err != nil {
		panic(err)
	}
	level := viper.GetString("LOG_LEVEL")
	if *logLevel != "" {
		level = *logLevel
	}
	logger, err := logger.NewWithLevel(level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metric := metrics.NewMetric(reg)

	planner := engine.NewEngine(engine.ConfigFromViper(), logger, metric)
	provider, err := osrm.NewProviderFromViper(logger, metric)
	if err != nil {
		logger.Fatal("failed to create routing provider", zap.Error(err))
	}

	routingService := usecases.NewRoutingService(logger, planner, provider)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	api := http.NewServer(logger)
	if _, err := api.Use(ctx, routingService, metric, reg); err != nil {
		logger.Fatal("failed to start api", zap.Error(err))
	}

	signal := http.GracefulShutdown()
	cleanup()
	if err := api.Wait(); err != nil {
		logger.Error("api stopped with error", zap.Error(err))
	}

	logger.Info("Collectorx Route Planner Server Stopped", zap.String("signal", signal.String()))
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
