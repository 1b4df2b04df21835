// Package api serves a computed recommendation run over HTTP. The run is
// immutable, so handlers share it without locking.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
	"github.com/fdkg-lab/fdkg-advisor/advisor/metrics"
	"github.com/fdkg-lab/fdkg-advisor/advisor/pipeline"
	"github.com/fdkg-lab/fdkg-advisor/advisor/trace"
)

const shutdownTimeout = 10 * time.Second

// Server is the lookup API over one computed run.
type Server struct {
	echo     *echo.Echo
	result   *pipeline.Result
	recorder *metrics.Recorder
	validate *validator.Validate
}

// New builds the server and registers its routes. recorder may be nil, in which
// case requests are not measured and /metrics is not served.
func New(result *pipeline.Result, recorder *metrics.Recorder) *Server {
	s := &Server{
		echo:     echo.New(),
		result:   result,
		recorder: recorder,
		validate: validator.New(),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(echomiddleware.Recover())
	s.echo.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	if recorder != nil {
		s.echo.Use(s.measure)
		s.echo.GET("/metrics", echo.WrapHandler(recorder.Handler()))
	}

	s.echo.GET("/healthz", s.health)
	s.echo.GET("/compare", s.compare)
	datasets := s.echo.Group("/datasets")
	datasets.GET("", s.listDatasets)
	datasets.GET("/:name/recommendations", s.recommendations)
	datasets.GET("/:name/lookup", s.lookup)
	datasets.GET("/:name/scenarios", s.scenarios)
	datasets.GET("/:name/pivots/min-guardians", s.minGuardians)
	datasets.GET("/:name/pivots/config-counts", s.configCounts)
	return s
}

// ServeHTTP lets the server be mounted or driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Lookup API listening on %s", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("Shutting down lookup API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func (s *Server) measure(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		status := c.Response().Status
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
		}
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		s.recorder.ObserveRequest(route, status, time.Since(start))
		return err
	}
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, fres.Response.StatusOK("ok"))
}

func (s *Server) listDatasets(c echo.Context) error {
	views := make([]datasetView, 0, len(s.result.Datasets))
	for _, dr := range s.result.Datasets {
		views = append(views, newDatasetView(dr))
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(views))
}

// dataset resolves the :name path parameter, writing a 404 when unknown.
func (s *Server) dataset(c echo.Context) (*pipeline.DatasetResult, error) {
	name := c.Param("name")
	dr, ok := s.result.Dataset(name)
	if !ok {
		return nil, c.JSON(http.StatusNotFound, ResponseError{Message: fmt.Sprintf("unknown dataset %q", name)})
	}
	return dr, nil
}

func (s *Server) recommendations(c echo.Context) error {
	dr, err := s.dataset(c)
	if dr == nil {
		return err
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(newRecommendationViews(dr.Batch.Rows)))
}

// LookupQuery is a single-scenario query. Tau defaults to the run's threshold.
type LookupQuery struct {
	Nodes     int     `validate:"min=1"`
	FDKG      float64 `validate:"min=0,max=1"`
	Retention float64 `validate:"min=0,max=1"`
	Tau       float64 `validate:"min=0,max=1"`
}

func (s *Server) lookup(c echo.Context) error {
	dr, err := s.dataset(c)
	if dr == nil {
		return err
	}

	q := LookupQuery{Tau: s.result.Params.Tau}
	if err := echo.QueryParamsBinder(c).
		MustInt("nodes", &q.Nodes).
		MustFloat64("fdkg", &q.FDKG).
		MustFloat64("retention", &q.Retention).
		Float64("tau", &q.Tau).
		BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := s.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	key := advisor.ScenarioKey{Nodes: q.Nodes, FDKGPercentage: q.FDKG, TallierRetPct: q.Retention}
	subset := dr.Index.Lookup(key)
	if len(subset) == 0 {
		return c.JSON(http.StatusNotFound, ResponseError{Message: fmt.Sprintf("no simulation data for %s", key)})
	}
	opt, err := advisor.SelectOptimal(subset, q.Tau)
	if err != nil {
		if errors.Is(err, advisor.ErrInvalidThreshold) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logrus.Errorf("lookup %s in %s: %v", key, dr.Name(), err)
		return c.JSON(http.StatusInternalServerError, fres.Response.StatusInternalServerError(http.StatusInternalServerError))
	}

	view := lookupView{
		Scenario:   newScenarioView(key),
		Tau:        q.Tau,
		SubsetSize: len(subset),
		Feasible:   opt.Feasible,
	}
	if opt.Feasible {
		cfg := newConfigurationView(opt)
		view.Configuration = &cfg
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(view))
}

func (s *Server) minGuardians(c echo.Context) error {
	dr, err := s.dataset(c)
	if dr == nil {
		return err
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(newMatrixView(dr.MinGuardians, identity[int])))
}

func (s *Server) configCounts(c echo.Context) error {
	dr, err := s.dataset(c)
	if dr == nil {
		return err
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]any{
		"counts":  newMatrixView(dr.ConfigCounts, newRetentionRowView),
		"overlay": newMatrixView(dr.ConfigOverlay, newRetentionRowView),
	}))
}

// scenarios lists the batch decisions of a dataset, optionally narrowed to one
// outcome.
func (s *Server) scenarios(c echo.Context) error {
	dr, err := s.dataset(c)
	if dr == nil {
		return err
	}
	decisions := dr.Batch.Trace.Decisions
	if outcome := c.QueryParam("outcome"); outcome != "" {
		if !trace.IsValidOutcome(outcome) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: fmt.Sprintf("unknown outcome %q", outcome)})
		}
		decisions = dr.Batch.Trace.Filter(trace.Outcome(outcome))
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(newDecisionViews(decisions)))
}

// CompareQuery fixes the configuration compared across every dataset of the run.
type CompareQuery struct {
	Nodes     int     `validate:"min=1"`
	Guardians int     `validate:"min=1"`
	Threshold int     `validate:"min=1"`
	FDKG      float64 `validate:"min=0,max=1"`
}

func (s *Server) compare(c echo.Context) error {
	var q CompareQuery
	if err := echo.QueryParamsBinder(c).
		MustInt("nodes", &q.Nodes).
		MustInt("guardians", &q.Guardians).
		MustInt("threshold", &q.Threshold).
		MustFloat64("fdkg", &q.FDKG).
		BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := s.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	datasets := make([]*advisor.Dataset, 0, len(s.result.Datasets))
	for _, dr := range s.result.Datasets {
		datasets = append(datasets, dr.Dataset)
	}
	m, err := advisor.CompareTopologies(datasets, advisor.ComparisonQuery{
		Nodes:          q.Nodes,
		Guardians:      q.Guardians,
		Threshold:      q.Threshold,
		FDKGPercentage: q.FDKG,
	})
	if err != nil {
		logrus.Errorf("compare: %v", err)
		return c.JSON(http.StatusInternalServerError, fres.Response.StatusInternalServerError(http.StatusInternalServerError))
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(newMatrixView(m, identity[float64])))
}
