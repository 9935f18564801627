package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	crmBlindCreates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Subsystem: "reconciliation",
		Name:      "blind_create_total",
		Help:      "Total blind-create submissions broken down by entity type and outcome.",
	}, []string{"entity_type", "outcome"})

	crmDuplicatesFlagged = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Subsystem: "reconciliation",
		Name:      "duplicates_flagged_total",
		Help:      "Total submissions deferred to arbitration broken down by entity type.",
	}, []string{"entity_type"})

	crmArbitrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Subsystem: "arbitration",
		Name:      "decisions_total",
		Help:      "Total arbitration decisions broken down by entity type and decision.",
	}, []string{"entity_type", "decision"})

	crmWriteConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Subsystem: "write",
		Name:      "conflicts_total",
		Help:      "Total write conflicts broken down by kind.",
	}, []string{"kind"})
)

func recordBlindCreate(entityType, outcome string) {
	crmBlindCreates.WithLabelValues(entityType, outcome).Inc()
}

func recordDuplicateFlagged(entityType string) {
	crmDuplicatesFlagged.WithLabelValues(entityType).Inc()
}

func recordArbitration(entityType, decision string) {
	crmArbitrations.WithLabelValues(entityType, decision).Inc()
}

func recordWriteConflict(kind string) {
	crmWriteConflicts.WithLabelValues(kind).Inc()
}
