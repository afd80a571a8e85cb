package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolCollector implements prometheus.Collector to read connection pool
// state at scrape time.
type PoolCollector struct {
	pool *pgxpool.Pool

	totalConns    *prometheus.Desc
	acquiredConns *prometheus.Desc
	idleConns     *prometheus.Desc
}

// NewPoolCollector creates a collector over a postgres store pool.
func NewPoolCollector(pool *pgxpool.Pool) *PoolCollector {
	return &PoolCollector{
		pool: pool,
		totalConns: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store_pool", "total_conns"),
			"Total record store pool connections.",
			nil, nil,
		),
		acquiredConns: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store_pool", "acquired_conns"),
			"Record store pool connections currently in use.",
			nil, nil,
		),
		idleConns: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store_pool", "idle_conns"),
			"Record store pool idle connections.",
			nil, nil,
		),
	}
}

// RegisterPoolCollector wires pool gauges into the default registry. Call at
// most once, and only for postgres-backed stores.
func RegisterPoolCollector(pool *pgxpool.Pool) {
	prometheus.MustRegister(NewPoolCollector(pool))
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalConns
	ch <- c.acquiredConns
	ch <- c.idleConns
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stat.IdleConns()))
}
