package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/viant/ranking/store"
)

// Dispatcher builds operations by name and runs them against a store.
type Dispatcher struct {
	registry *Registry
	source   store.Store
	logger   *zap.Logger
	metrics  *Metrics
}

// NewDispatcher creates a dispatcher; a nil registry uses DefaultRegistry.
func NewDispatcher(registry *Registry, source store.Store, logger *zap.Logger) (*Dispatcher, error) {
	if source == nil {
		return nil, fmt.Errorf("dispatch: store is required")
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{registry: registry, source: source, logger: logger, metrics: NewMetrics()}, nil
}

// Registry returns the operation registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Store returns the object store operations run against.
func (d *Dispatcher) Store() store.Store { return d.source }

// Dispatch builds the named operation from params, executes it and renders
// the answer under a fresh id.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, params Params) (*Answer, error) {
	start := time.Now()
	id := uuid.New().String()
	logger := d.logger.With(zap.String("operation", name), zap.String("answer_id", id))

	op, err := d.registry.Build(name, params)
	if err != nil {
		d.metrics.OperationsTotal.WithLabelValues(name, status(err)).Inc()
		logger.Debug("operation rejected", zap.Error(err))
		return nil, err
	}
	result, err := op.Execute(ctx, d.source)
	d.metrics.OperationDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		d.metrics.OperationsTotal.WithLabelValues(name, status(err)).Inc()
		logger.Warn("operation failed", zap.Error(err))
		return nil, fmt.Errorf("dispatch: %s: %w", name, err)
	}
	d.metrics.OperationsTotal.WithLabelValues(name, "ok").Inc()
	d.metrics.AnswerItems.WithLabelValues(name).Observe(float64(result.Len()))
	logger.Debug("operation completed",
		zap.Int("items", result.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return NewAnswer(id, name, result), nil
}

func status(err error) string {
	if errors.Is(err, ErrInvalidParam) || errors.Is(err, ErrUnknownOperation) {
		return "invalid"
	}
	return "error"
}
