package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/authsync"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Batch handling
	BatchesHandledTotal  metric.Int64Counter
	BatchesRejectedTotal metric.Int64Counter
	ProvisionFaultsTotal metric.Int64Counter

	// Provisioning outcomes
	PrivateSpacesCreatedTotal metric.Int64Counter
	ProfilesCreatedTotal      metric.Int64Counter
	ProfilesRemovedTotal      metric.Int64Counter
	PropertiesReplicatedTotal metric.Int64Counter

	// Eventing
	EventsEmittedTotal     metric.Int64Counter
	EventPublishFailsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.BatchesHandledTotal, _ = meter.Int64Counter(
		"authsync.batches.handled.total",
		metric.WithDescription("Total number of change batches handled"),
		metric.WithUnit("{batch}"),
	)

	m.BatchesRejectedTotal, _ = meter.Int64Counter(
		"authsync.batches.rejected.total",
		metric.WithDescription("Total number of change batches rejected for ambiguous addressing"),
		metric.WithUnit("{batch}"),
	)

	m.ProvisionFaultsTotal, _ = meter.Int64Counter(
		"authsync.provision.faults.total",
		metric.WithDescription("Total number of contained provisioning faults"),
		metric.WithUnit("{fault}"),
	)

	m.PrivateSpacesCreatedTotal, _ = meter.Int64Counter(
		"authsync.private_spaces.created.total",
		metric.WithDescription("Total number of private spaces created"),
		metric.WithUnit("{node}"),
	)

	m.ProfilesCreatedTotal, _ = meter.Int64Counter(
		"authsync.profiles.created.total",
		metric.WithDescription("Total number of profile nodes created"),
		metric.WithUnit("{node}"),
	)

	m.ProfilesRemovedTotal, _ = meter.Int64Counter(
		"authsync.profiles.removed.total",
		metric.WithDescription("Total number of profile nodes removed"),
		metric.WithUnit("{node}"),
	)

	m.PropertiesReplicatedTotal, _ = meter.Int64Counter(
		"authsync.properties.replicated.total",
		metric.WithDescription("Total number of profile property upserts and deletes"),
		metric.WithUnit("{property}"),
	)

	m.EventsEmittedTotal, _ = meter.Int64Counter(
		"authsync.events.emitted.total",
		metric.WithDescription("Total number of domain events emitted"),
		metric.WithUnit("{event}"),
	)

	m.EventPublishFailsTotal, _ = meter.Int64Counter(
		"authsync.events.publish_fails.total",
		metric.WithDescription("Total number of event publish failures"),
		metric.WithUnit("{event}"),
	)

	return m
}
