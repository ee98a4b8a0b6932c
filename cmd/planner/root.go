package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lintang-b-s/Collectorx/pkg"
	"github.com/lintang-b-s/Collectorx/pkg/engine"
	"github.com/lintang-b-s/Collectorx/pkg/geo"
	"github.com/lintang-b-s/Collectorx/pkg/http/usecases"
	"github.com/lintang-b-s/Collectorx/pkg/logger"
	"github.com/lintang-b-s/Collectorx/pkg/osrm"
	"github.com/lintang-b-s/Collectorx/pkg/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type rootOpts struct {
	configPath string
	verbose    bool
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:          "planner",
		Short:        "Plan single-vehicle collection routes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := util.ReadConfig(opts.configPath); err != nil {
				return err
			}
			level := viper.GetString("LOG_LEVEL")
			if opts.verbose {
				level = "debug"
			}
			log, err := logger.NewWithLevel(level)
			if err != nil {
				return err
			}
			opts.log = log
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", ".", "directory containing config.yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newTourCmd(opts))
	root.AddCommand(newRouteCmd(opts))
	return root
}

type tourOpts struct {
	matrixPath  string
	start       int
	mustReturn  bool
	maxPasses   int
	unreachable string
}

func newTourCmd(root *rootOpts) *cobra.Command {
	opts := tourOpts{}

	cmd := &cobra.Command{
		Use:   "tour",
		Short: "Plan a tour over a JSON cost matrix (null = unreachable)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := readMatrix(opts.matrixPath)
			if err != nil {
				return err
			}

			cfg := engine.ConfigFromViper()
			if cmd.Flags().Changed("max-passes") {
				cfg.TwoOptMaxPasses = opts.maxPasses
			}
			if cmd.Flags().Changed("unreachable") {
				cfg.Unreachable = pkg.GetUnreachablePolicy(opts.unreachable)
			}

			svc := usecases.NewRoutingService(root.log, engine.NewEngine(cfg, root.log, nil), nil)
			plan, err := svc.ComputeTour(matrix, opts.start, opts.mustReturn)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), newTourOutput(plan))
		},
	}
	cmd.Flags().StringVar(&opts.matrixPath, "matrix", "", "path to the JSON cost matrix, - for stdin")
	cmd.Flags().IntVar(&opts.start, "start", 0, "start node index")
	cmd.Flags().BoolVar(&opts.mustReturn, "return", false, "close the tour at the start node")
	cmd.Flags().IntVar(&opts.maxPasses, "max-passes", 0, "2-opt pass limit, 0 = until no improvement")
	cmd.Flags().StringVar(&opts.unreachable, "unreachable", "allow", "unreachable node policy: allow or fail")
	_ = cmd.MarkFlagRequired("matrix")
	return cmd
}

type routeOpts struct {
	depot        string
	points       []string
	mustReturn   bool
	straightLine bool
}

func newRouteCmd(root *rootOpts) *cobra.Command {
	opts := routeOpts{}

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Plan a road route from a depot through collection points using OSRM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			depot, err := parseLatLon(opts.depot)
			if err != nil {
				return err
			}
			points := make([]geo.Coordinate, 0, len(opts.points))
			for _, p := range opts.points {
				c, err := parseLatLon(p)
				if err != nil {
					return err
				}
				points = append(points, c)
			}

			if opts.straightLine {
				viper.Set("ROUTING_PROVIDER", "straight_line")
			}
			provider, err := osrm.NewProviderFromViper(root.log, nil)
			if err != nil {
				return err
			}
			svc := usecases.NewRoutingService(root.log, engine.NewEngine(engine.ConfigFromViper(), root.log, nil), provider)
			route, err := svc.PlanCollectionRoute(cmd.Context(), depot, points, opts.mustReturn)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), newRouteOutput(route))
		},
	}
	cmd.Flags().StringVar(&opts.depot, "depot", "", "depot as lat,lon")
	cmd.Flags().StringArrayVar(&opts.points, "point", nil, "collection point as lat,lon (repeatable)")
	cmd.Flags().BoolVar(&opts.mustReturn, "return", false, "return to the depot")
	cmd.Flags().BoolVar(&opts.straightLine, "straight-line", false, "use great-circle distances instead of OSRM")
	_ = cmd.MarkFlagRequired("depot")
	_ = cmd.MarkFlagRequired("point")
	return cmd
}

func readMatrix(path string) ([][]*float64, error) {
	var (
		r   io.Reader
		err error
	)
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var matrix [][]*float64
	if err = json.NewDecoder(r).Decode(&matrix); err != nil {
		return nil, fmt.Errorf("reading cost matrix %s: %w", path, err)
	}
	return matrix, nil
}

func parseLatLon(s string) (geo.Coordinate, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("coordinate %q must be lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("coordinate %q: invalid latitude", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("coordinate %q: invalid longitude", s)
	}
	c := geo.NewCoordinate(lat, lon)
	return c, c.Validate()
}

type tourOutput struct {
	Tour        []int    `json:"tour"`
	Cost        *float64 `json:"cost"`
	InitialCost *float64 `json:"initial_cost"`
	Passes      int      `json:"passes"`
	Moves       int      `json:"moves"`
	StopReason  string   `json:"stop_reason,omitempty"`
	Unreachable int      `json:"unreachable"`
}

func newTourOutput(plan *engine.Plan) tourOutput {
	out := tourOutput{
		Tour:        plan.Tour.Ints(),
		Cost:        finite(plan.Cost),
		InitialCost: finite(plan.InitialCost),
		Passes:      plan.Stats.Passes,
		Moves:       plan.Stats.AcceptedMoves,
		Unreachable: plan.NumUnreachable,
	}
	if plan.Improved {
		out.StopReason = plan.Stats.Reason.String()
	}
	return out
}

type routeOutput struct {
	Order    []int    `json:"order"`
	Cost     *float64 `json:"cost"`
	Distance float64  `json:"distance"`
	Duration float64  `json:"duration"`
	Polyline string   `json:"polyline"`
}

func newRouteOutput(route *usecases.CollectionRoute) routeOutput {
	return routeOutput{
		Order:    route.Order,
		Cost:     finite(route.Cost),
		Distance: route.Distance,
		Duration: route.Duration,
		Polyline: route.Polyline,
	}
}

func finite(f float64) *float64 {
	if f == pkg.INF_WEIGHT {
		return nil
	}
	return &f
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
