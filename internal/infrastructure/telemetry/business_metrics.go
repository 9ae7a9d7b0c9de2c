// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the storefront.
// It tracks order activity and identity reconciliation health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderCreatedTotal        *Counter
	orderAmountTotal         *Counter
	reconciliationRunsTotal  *Counter
	reconciliationItemsTotal *Counter
	providerErrorsTotal      *Counter

	// Histogram metrics
	reconciliationRunDuration *Histogram

	// Gauge metrics (point-in-time values)
	accountsLinkState *Gauge
	accountsInactive  *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	accountProvider AccountMetricsProvider
}

// AccountMetricsProvider provides account data for periodic metrics collection.
// This interface allows the telemetry layer to query account state without
// depending on the account domain directly.
type AccountMetricsProvider interface {
	// GetLinkStateCounts returns the number of linked and unlinked accounts
	GetLinkStateCounts(ctx context.Context) (linked int64, unlinked int64, err error)

	// GetInactiveCount returns the number of deactivated accounts
	GetInactiveCount(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	AccountProvider AccountMetricsProvider
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
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		accountProvider: cfg.AccountProvider,
	}

	// Initialize counter metrics
	var err error

	// Order metrics
	bm.orderCreatedTotal, err = NewCounter(
		cfg.Meter,
		"cart_order_created_total",
		"Total number of orders created",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderAmountTotal, err = NewCounter(
		cfg.Meter,
		"cart_order_amount_total",
		"Total order amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	// Reconciliation metrics
	bm.reconciliationRunsTotal, err = NewCounter(
		cfg.Meter,
		"cart_reconciliation_runs_total",
		"Total number of reconciliation runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	bm.reconciliationItemsTotal, err = NewCounter(
		cfg.Meter,
		"cart_reconciliation_items_total",
		"Total number of identities processed by reconciliation runs",
		"{identities}",
	)
	if err != nil {
		return nil, err
	}

	bm.providerErrorsTotal, err = NewCounter(
		cfg.Meter,
		"cart_provider_errors_total",
		"Total number of identity provider call failures",
		"{errors}",
	)
	if err != nil {
		return nil, err
	}

	bm.reconciliationRunDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "cart_reconciliation_run_duration_seconds",
		Description: "Duration of reconciliation runs",
		Unit:        "s",
		Boundaries:  ReconciliationDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	// Account gauge metrics
	bm.accountsLinkState, err = NewGauge(
		cfg.Meter,
		"cart_accounts_link_state",
		"Current number of store accounts by link state",
		"{accounts}",
	)
	if err != nil {
		return nil, err
	}

	bm.accountsInactive, err = NewGauge(
		cfg.Meter,
		"cart_accounts_inactive",
		"Current number of deactivated store accounts",
		"{accounts}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Order Metrics
// =============================================================================

// RecordOrderCreated records an order creation event.
// This should be called from the application layer when an order is placed.
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context) {
	bm.orderCreatedTotal.Inc(ctx)
}

// RecordOrderAmount records the order amount.
// Amount should be in the smallest currency unit (cents).
func (bm *BusinessMetrics) RecordOrderAmount(ctx context.Context, amountCents int64) {
	bm.orderAmountTotal.Add(ctx, amountCents)
}

// RecordOrderWithAmount is a convenience method that records both order count and amount.
func (bm *BusinessMetrics) RecordOrderWithAmount(ctx context.Context, amount decimal.Decimal) {
	bm.RecordOrderCreated(ctx)

	// Convert to cents (multiply by 100)
	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordOrderAmount(ctx, amountCents)
}

// =============================================================================
// Reconciliation Metrics
// =============================================================================

// RunOutcome represents the overall outcome of a reconciliation run for
// metrics labeling.
type RunOutcome string

const (
	RunOutcomeCompleted RunOutcome = "completed"
	RunOutcomeFailed    RunOutcome = "failed"
)

// SyncResult values label per-identity outcomes within a run.
const (
	SyncResultCreated   = "created"
	SyncResultUpdated   = "updated"
	SyncResultUnchanged = "unchanged"
	SyncResultResolved  = "resolved"
	SyncResultReaped    = "reaped"
	SyncResultFailed    = "failed"
)

// RecordReconciliationRun records a finished reconciliation run with its
// duration. Operation is the run kind (import, resolve, cleanup).
func (bm *BusinessMetrics) RecordReconciliationRun(ctx context.Context, operation string, outcome RunOutcome, duration time.Duration) {
	bm.reconciliationRunsTotal.Inc(ctx,
		AttrOperation.String(operation),
		AttrOutcome.String(string(outcome)),
	)
	bm.reconciliationRunDuration.RecordDuration(ctx, duration,
		AttrOperation.String(operation),
	)
}

// RecordReconciliationItems records how many identities a run processed
// with a given per-identity result.
func (bm *BusinessMetrics) RecordReconciliationItems(ctx context.Context, operation, result string, count int64) {
	if count == 0 {
		return
	}
	bm.reconciliationItemsTotal.Add(ctx, count,
		AttrOperation.String(operation),
		AttrSyncResult.String(result),
	)
}

// RecordProviderError records a failed identity provider call.
// Code is the taxonomy value (PROVIDER_UNAVAILABLE, PROVIDER_FORBIDDEN, ...).
func (bm *BusinessMetrics) RecordProviderError(ctx context.Context, code string) {
	bm.providerErrorsTotal.Inc(ctx,
		AttrErrorCode.String(code),
	)
}

// =============================================================================
// Account Metrics
// =============================================================================

// RecordLinkStateCounts records the current account counts by link state.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordLinkStateCounts(ctx context.Context, linked, unlinked int64) {
	bm.accountsLinkState.Record(ctx, linked,
		AttrLinkState.String("linked"),
	)
	bm.accountsLinkState.Record(ctx, unlinked,
		AttrLinkState.String("unlinked"),
	)
}

// RecordInactiveAccounts records the number of deactivated accounts.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordInactiveAccounts(ctx context.Context, count int64) {
	bm.accountsInactive.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects account link-state metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectAccountMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectAccountMetrics(ctx)
		}
	}
}

// collectAccountMetrics collects account gauge metrics.
func (bm *BusinessMetrics) collectAccountMetrics(ctx context.Context) {
	if bm.accountProvider == nil {
		bm.logger.Debug("No account provider configured, skipping account metrics collection")
		return
	}

	linked, unlinked, err := bm.accountProvider.GetLinkStateCounts(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get account link-state counts", zap.Error(err))
	} else {
		bm.RecordLinkStateCounts(ctx, linked, unlinked)
	}

	inactive, err := bm.accountProvider.GetInactiveCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get inactive account count", zap.Error(err))
	} else {
		bm.RecordInactiveAccounts(ctx, inactive)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

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
