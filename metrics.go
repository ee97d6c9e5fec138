package bitlog

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	getOperation     = "get"
	setOperation     = "set"
	removeOperation  = "remove"
	compactOperation = "compact"
)

var (
	operationDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "bitlog_operation_duration_seconds",
		Help: "how long it takes to perform a database operation",
	}, []string{"operation"})

	compactionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bitlog_compactions_total",
		Help: "number of completed log compactions",
	})

	compactionReclaimedBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bitlog_compaction_reclaimed_bytes_total",
		Help: "bytes of stale log data reclaimed by compaction",
	})

	staleBytesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bitlog_stale_bytes",
		Help: "bytes of superseded log data awaiting compaction",
	})

	liveKeysGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bitlog_live_keys",
		Help: "number of live keys in the key directory",
	})
)

func init() {
	prometheus.Register(operationDurationSeconds)
	prometheus.Register(compactionsTotal)
	prometheus.Register(compactionReclaimedBytes)
	prometheus.Register(staleBytesGauge)
	prometheus.Register(liveKeysGauge)
}
