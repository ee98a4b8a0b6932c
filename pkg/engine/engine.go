package engine

import (
	"context"
	"time"

	"github.com/lintang-b-s/Collectorx/pkg"
	"github.com/lintang-b-s/Collectorx/pkg/concurrent"
	da "github.com/lintang-b-s/Collectorx/pkg/datastructure"
	"github.com/lintang-b-s/Collectorx/pkg/engine/routing"
	"github.com/lintang-b-s/Collectorx/pkg/engine/tour"
	"github.com/lintang-b-s/Collectorx/pkg/metrics"
	"github.com/lintang-b-s/Collectorx/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	MaxNodes         int // 0 = unlimited
	TwoOptMaxPasses  int // 0 = unlimited
	TwoOptTimeLimit  time.Duration
	Unreachable      pkg.UnreachablePolicy
	ImproveOpenTours bool
	DirectedTwoOpt   bool
	UseHeap          bool
	Workers          int
}

func DefaultConfig() Config {
	return Config{
		MaxNodes:    pkg.DEFAULT_MAX_NODES,
		Unreachable: pkg.UNREACHABLE_ALLOW,
		Workers:     4,
	}
}

// ConfigFromViper reads the PLANNER_* keys.
func ConfigFromViper() Config {
	return Config{
		MaxNodes:         viper.GetInt("PLANNER_MAX_NODES"),
		TwoOptMaxPasses:  viper.GetInt("PLANNER_TWO_OPT_MAX_PASSES"),
		TwoOptTimeLimit:  viper.GetDuration("PLANNER_TWO_OPT_TIME_LIMIT"),
		Unreachable:      pkg.GetUnreachablePolicy(viper.GetString("PLANNER_UNREACHABLE_POLICY")),
		ImproveOpenTours: viper.GetBool("PLANNER_IMPROVE_OPEN_TOURS"),
		DirectedTwoOpt:   viper.GetBool("PLANNER_DIRECTED_TWO_OPT"),
		UseHeap:          viper.GetBool("PLANNER_USE_HEAP"),
		Workers:          viper.GetInt("PLANNER_WORKERS"),
	}
}

// Plan is the outcome of one routing request.
type Plan struct {
	Tour           da.Tour
	Cost           float64
	InitialCost    float64
	Improved       bool
	Stats          tour.ImproveStats
	NumUnreachable int
}

// Engine composes greedy construction and 2-opt refinement. It holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	cfg    Config
	log    *zap.Logger
	metric *metrics.Metric
}

func NewEngine(cfg Config, log *zap.Logger, metric *metrics.Metric) *Engine {
	return &Engine{
		cfg:    cfg,
		log:    log,
		metric: metric,
	}
}

func (e *Engine) GetConfig() Config {
	return e.cfg
}

// Plan builds a tour from start and, for closed tours, refines it with 2-opt.
func (e *Engine) Plan(m *da.CostMatrix, start da.Index, mustReturn bool) (*Plan, error) {
	began := time.Now()
	plan, err := e.plan(m, start, mustReturn)
	e.metric.ObservePlan(m.Size(), time.Since(began), err)
	return plan, err
}

func (e *Engine) plan(m *da.CostMatrix, start da.Index, mustReturn bool) (*Plan, error) {
	n := m.Size()
	if e.cfg.MaxNodes > 0 && n > e.cfg.MaxNodes {
		return nil, util.WrapErrorf(util.ErrTooManyNodes, util.ErrBadParamInput,
			"cost matrix has %d nodes, the planner accepts at most %d", n, e.cfg.MaxNodes)
	}

	factory := routing.DenseEngineFactory
	if e.cfg.UseHeap {
		factory = routing.HeapEngineFactory
	}
	builder := tour.NewGreedyBuilder(m,
		tour.WithEngineFactory(factory),
		tour.WithUnreachablePolicy(e.cfg.Unreachable),
	)
	initial, err := builder.Build(start, mustReturn)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Tour:           initial,
		InitialCost:    initial.Cost(m),
		NumUnreachable: builder.GetNumUnreachable(),
	}
	if plan.NumUnreachable > 0 {
		e.log.Debug("greedy tour includes unreachable nodes",
			zap.Int("nodes", n), zap.Int("unreachable", plan.NumUnreachable))
	}

	if mustReturn || e.cfg.ImproveOpenTours {
		improver := tour.NewTwoOptImprover(m,
			tour.WithMaxPasses(e.cfg.TwoOptMaxPasses),
			tour.WithTimeLimit(e.cfg.TwoOptTimeLimit),
			tour.WithDirectedDelta(e.cfg.DirectedTwoOpt),
		)
		improved, stats, err := improver.Improve(initial)
		if err != nil {
			return nil, err
		}
		plan.Tour = improved
		plan.Improved = true
		plan.Stats = stats
		e.metric.ObserveTwoOpt(stats.Passes, stats.AcceptedMoves)

		if stats.Truncated() {
			e.log.Warn("2-opt stopped before reaching a local optimum",
				zap.Int("nodes", n), zap.Int("passes", stats.Passes),
				zap.Int("moves", stats.AcceptedMoves), zap.String("reason", stats.Reason.String()))
		}
	}

	plan.Cost = plan.Tour.Cost(m)
	return plan, nil
}

type PlanRequest struct {
	Matrix     *da.CostMatrix
	Start      da.Index
	MustReturn bool
}

type PlanResult struct {
	Plan *Plan
	Err  error
}

// PlanBatch plans independent requests concurrently; results keep request order.
// Requests not started before ctx is done fail with ctx.Err().
func (e *Engine) PlanBatch(ctx context.Context, reqs []PlanRequest) []PlanResult {
	return concurrent.Run(ctx, e.cfg.Workers, reqs, func(ctx context.Context, req PlanRequest) PlanResult {
		if util.StopConcurrentOperation(ctx) {
			return PlanResult{Err: ctx.Err()}
		}
		plan, err := e.Plan(req.Matrix, req.Start, req.MustReturn)
		return PlanResult{Plan: plan, Err: err}
	})
}
