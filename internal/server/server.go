// Package server exposes dispatched operations and the object store over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/viant/ranking/dispatch"
	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
	"github.com/viant/ranking/store"
)

// Server provides HTTP endpoints for rankd.
type Server struct {
	echo       *echo.Echo
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
	addr       string
}

// NewServer creates a server listening on addr once started.
func NewServer(dispatcher *dispatch.Dispatcher, logger *zap.Logger, addr string) (*Server, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{echo: e, dispatcher: dispatcher, logger: logger, addr: addr}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/operations", s.handleOperations)
	v1.GET("/operations/:name", s.handleDispatch)
	v1.POST("/operations/:name", s.handleDispatch)
	v1.GET("/datasets", s.handleDatasets)
	v1.POST("/datasets/:dataset/objects", s.handleAddObjects)
	v1.DELETE("/datasets/:dataset/objects/:id", s.handleRemoveObject)
}

// ServeHTTP lets the server be mounted or tested as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.echo.ServeHTTP(w, r) }

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// OperationsResponse is the response body for GET /api/v1/operations.
type OperationsResponse struct {
	Operations []string `json:"operations"`
}

func (s *Server) handleOperations(c echo.Context) error {
	return c.JSON(http.StatusOK, OperationsResponse{Operations: s.dispatcher.Registry().Names()})
}

// handleDispatch merges query parameters with a JSON object body, the body
// taking precedence, and runs the named operation. Only the body is bound so
// the :name path parameter never leaks into the operation parameters.
func (s *Server) handleDispatch(c echo.Context) error {
	params := dispatch.Params{}
	for name, values := range c.QueryParams() {
		if len(values) > 0 {
			params[name] = values[0]
		}
	}
	var body map[string]any
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(body) > 0 {
		bodyParams, err := dispatch.ParamsFromJSON(body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		params = params.Merge(bodyParams)
	}
	answer, err := s.dispatcher.Dispatch(c.Request().Context(), c.Param("name"), params)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, answer)
}

// DatasetsResponse is the response body for GET /api/v1/datasets.
type DatasetsResponse struct {
	Datasets []string `json:"datasets"`
}

func (s *Server) handleDatasets(c echo.Context) error {
	datasets, err := s.dispatcher.Store().Datasets(c.Request().Context())
	if err != nil {
		return s.httpError(err)
	}
	if datasets == nil {
		datasets = []string{}
	}
	return c.JSON(http.StatusOK, DatasetsResponse{Datasets: datasets})
}

// ObjectPayload is one vector in an add request.
type ObjectPayload struct {
	ID     string    `json:"id"`
	Values []float32 `json:"values"`
}

// AddObjectsRequest is the request body for POST /api/v1/datasets/:dataset/objects.
type AddObjectsRequest struct {
	Objects []ObjectPayload `json:"objects"`
}

// AddObjectsResponse reports how many objects were stored.
type AddObjectsResponse struct {
	Added int `json:"added"`
}

func (s *Server) handleAddObjects(c echo.Context) error {
	var req AddObjectsRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid add objects request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Objects) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "objects field is required")
	}
	vectors := make([]*object.Vector, 0, len(req.Objects))
	for _, o := range req.Objects {
		if o.ID == "" || len(o.Values) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "every object needs an id and values")
		}
		vectors = append(vectors, object.NewVector(o.ID, o.Values...))
	}
	if err := s.dispatcher.Store().Add(c.Request().Context(), c.Param("dataset"), vectors); err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusCreated, AddObjectsResponse{Added: len(vectors)})
}

func (s *Server) handleRemoveObject(c echo.Context) error {
	if err := s.dispatcher.Store().Remove(c.Request().Context(), c.Param("dataset"), c.Param("id")); err != nil {
		return s.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) httpError(err error) error {
	switch {
	case errors.Is(err, dispatch.ErrInvalidParam),
		errors.Is(err, object.ErrIncompatible),
		errors.Is(err, rank.ErrInvalidCapacity):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, dispatch.ErrUnknownOperation), errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	s.logger.Error("request failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

// Start starts the HTTP server; it returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
