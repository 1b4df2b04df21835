package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fdkg-lab/fdkg-advisor/advisor/api"
	"github.com/fdkg-lab/fdkg-advisor/advisor/metrics"
	"github.com/fdkg-lab/fdkg-advisor/advisor/pipeline"
)

var (
	serveFlags   sweepFlags
	serveAddr    string // Listen address
	serveMetrics bool   // Expose /metrics
)

// serveCmd computes a run in memory and serves it read-only over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations and pivots over a read-only HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		plan, err := serveFlags.resolve(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid run configuration: %v", err)
		}
		inputs, err := plan.load()
		if err != nil {
			logrus.Fatalf("Failed to load simulation data: %v", err)
		}
		res, err := pipeline.Compute(inputs, plan.Params)
		if err != nil {
			logrus.Fatalf("Recommendation run failed: %v", err)
		}

		var rec *metrics.Recorder
		if serveMetrics {
			rec = metrics.New()
			res.Observe(rec)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := api.New(res, rec).Run(ctx, serveAddr); err != nil {
			logrus.Fatalf("Lookup API failed: %v", err)
		}
	},
}

func init() {
	serveFlags.register(serveCmd.Flags())
	serveCmd.Flags().StringVar(&serveAddr, "addr", envOr(envAddr, ":8080"), "Listen address")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", true, "Expose Prometheus metrics on /metrics")
	rootCmd.AddCommand(serveCmd)
}
