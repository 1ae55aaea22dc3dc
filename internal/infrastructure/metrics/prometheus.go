// Package metrics expone contadores Prometheus de asignaciones FIFO y ajustes directos.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
)

var _ inventory.Metrics = (*Collector)(nil)

// Collector agrupa los collectors del servicio.
type Collector struct {
	allocations    *prometheus.CounterVec
	allocatedUnits prometheus.Counter
	shortfall      prometheus.Histogram
	adjustments    *prometheus.CounterVec
}

// NewCollector crea y registra los collectors en reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labstock",
			Name:      "allocations_total",
			Help:      "Asignaciones FIFO por resultado.",
		}, []string{"outcome"}),
		allocatedUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "labstock",
			Name:      "allocated_units_total",
			Help:      "Unidades de empaque asignadas con éxito.",
		}),
		shortfall: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "labstock",
			Name:      "allocation_shortfall_units",
			Help:      "Faltante de asignaciones rechazadas por stock insuficiente.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labstock",
			Name:      "adjustments_total",
			Help:      "Ajustes directos por operación y resultado.",
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(c.allocations, c.allocatedUnits, c.shortfall, c.adjustments)
	return c
}

// ObserveAllocation registra el resultado de una asignación.
func (c *Collector) ObserveAllocation(outcome string, units, shortfall decimal.Decimal) {
	c.allocations.WithLabelValues(outcome).Inc()
	if units.IsPositive() {
		c.allocatedUnits.Add(units.InexactFloat64())
	}
	if shortfall.IsPositive() {
		c.shortfall.Observe(shortfall.InexactFloat64())
	}
}

// ObserveAdjustment registra el resultado de un ajuste directo.
func (c *Collector) ObserveAdjustment(operation, outcome string) {
	c.adjustments.WithLabelValues(operation, outcome).Inc()
}
