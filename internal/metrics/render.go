package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var renderDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "openresume",
		Subsystem: "render",
		Name:      "duration_seconds",
		Help:      "渲染各阶段耗时分布（秒）。",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"stage", "template"},
)

// ObserveRender 记录一次渲染阶段的耗时。stage 为 generate/encode/rasterize。
func ObserveRender(stage, template string, elapsed time.Duration) {
	renderDuration.WithLabelValues(stage, template).Observe(elapsed.Seconds())
}
