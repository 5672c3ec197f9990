package app

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var (
	metricsOnce     sync.Once
	gateCounter     metric.Int64Counter
	decisionCounter metric.Int64Counter
	spendCounter    metric.Int64Counter
	feedbackHist    metric.Int64Histogram
)

func initMetrics() {
	meter := otel.Meter(instrumentationName)
	fallback := noop.NewMeterProvider().Meter(instrumentationName)

	var err error
	if gateCounter, err = meter.Int64Counter("allocation.gate.rolls",
		metric.WithDescription("Adherence gate evaluations")); err != nil {
		gateCounter, _ = fallback.Int64Counter("allocation.gate.rolls")
	}
	if decisionCounter, err = meter.Int64Counter("allocation.decisions",
		metric.WithDescription("Decision provider outcomes")); err != nil {
		decisionCounter, _ = fallback.Int64Counter("allocation.decisions")
	}
	if spendCounter, err = meter.Int64Counter("allocation.points.spent",
		metric.WithDescription("Points spent through the ledger")); err != nil {
		spendCounter, _ = fallback.Int64Counter("allocation.points.spent")
	}
	if feedbackHist, err = meter.Int64Histogram("allocation.adherence.delta",
		metric.WithDescription("Adherence change applied after an episode")); err != nil {
		feedbackHist, _ = fallback.Int64Histogram("allocation.adherence.delta")
	}
}

func recordGate(ctx context.Context, variant string, passed bool) {
	metricsOnce.Do(initMetrics)
	gateCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("variant", variant),
		attribute.Bool("passed", passed),
	))
}

func recordDecision(ctx context.Context, variant, outcome string) {
	metricsOnce.Do(initMetrics)
	decisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("variant", variant),
		attribute.String("outcome", outcome),
	))
}

func recordSpend(ctx context.Context, pool string, amount int) {
	metricsOnce.Do(initMetrics)
	spendCounter.Add(ctx, int64(amount), metric.WithAttributes(attribute.String("pool", pool)))
}

func recordFeedback(ctx context.Context, branch string, delta int) {
	metricsOnce.Do(initMetrics)
	feedbackHist.Record(ctx, int64(delta), metric.WithAttributes(attribute.String("branch", branch)))
}
