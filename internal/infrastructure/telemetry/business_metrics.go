package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks project, costing, and proposal activity.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	projectCreatedTotal   *Counter
	projectValueTotal     *Counter
	costMismatchTotal     *Counter
	planImportTotal       *Counter
	proposalRenderedTotal *Counter

	proposalRenderDuration *Histogram
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	bm.projectCreatedTotal, err = NewCounter(
		cfg.Meter,
		"homeops_project_created_total",
		"Total number of projects created",
		"{projects}",
	)
	if err != nil {
		return nil, err
	}

	bm.projectValueTotal, err = NewCounter(
		cfg.Meter,
		"homeops_project_value_total",
		"Total project value in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.costMismatchTotal, err = NewCounter(
		cfg.Meter,
		"homeops_cost_mismatch_total",
		"Total number of cost reconciliation mismatches detected",
		"{mismatches}",
	)
	if err != nil {
		return nil, err
	}

	bm.planImportTotal, err = NewCounter(
		cfg.Meter,
		"homeops_plan_import_total",
		"Total number of build system imports into projects",
		"{imports}",
	)
	if err != nil {
		return nil, err
	}

	bm.proposalRenderedTotal, err = NewCounter(
		cfg.Meter,
		"homeops_proposal_rendered_total",
		"Total number of proposal documents rendered",
		"{proposals}",
	)
	if err != nil {
		return nil, err
	}

	bm.proposalRenderDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "homeops_proposal_render_duration_seconds",
		Description: "Time spent rendering proposal documents",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordProjectCreated records a project creation event.
func (bm *BusinessMetrics) RecordProjectCreated(ctx context.Context, status string) {
	bm.projectCreatedTotal.Inc(ctx, AttrProjectStatus.String(status))
}

// RecordProjectValue records the total cost of a project in cents.
func (bm *BusinessMetrics) RecordProjectValue(ctx context.Context, status string, totalCost decimal.Decimal) {
	cents := totalCost.Mul(decimal.NewFromInt(100)).IntPart()
	bm.projectValueTotal.Add(ctx, cents, AttrProjectStatus.String(status))
}

// RecordCostMismatch records a cached total that disagreed with a recomputed
// rollup. The write that detected it is aborted by the caller; the counter
// exists so drift is visible.
func (bm *BusinessMetrics) RecordCostMismatch(ctx context.Context, aggregateKind string, aggregateID uuid.UUID) {
	bm.costMismatchTotal.Inc(ctx, AttrAggregateKind.String(aggregateKind))
	bm.logger.Error("Cached total cost diverged from recomputed rollup",
		zap.String("aggregate_kind", aggregateKind),
		zap.String("aggregate_id", aggregateID.String()),
	)
}

// RecordPlanImport records a build system template imported into a project.
func (bm *BusinessMetrics) RecordPlanImport(ctx context.Context) {
	bm.planImportTotal.Inc(ctx)
}

// RecordProposalRendered records a completed proposal render and its duration.
func (bm *BusinessMetrics) RecordProposalRendered(ctx context.Context, d time.Duration) {
	bm.proposalRenderedTotal.Inc(ctx)
	bm.proposalRenderDuration.RecordDuration(ctx, d)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
