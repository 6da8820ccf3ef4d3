package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audioclassify_http_requests_total",
		Help: "HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	ClassifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audioclassify_requests_total",
		Help: "Classification requests by endpoint",
	}, []string{"endpoint"})

	ClassifyErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audioclassify_errors_total",
		Help: "Failed classification requests by endpoint",
	}, []string{"endpoint"})

	ClassifyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "audioclassify_inference_duration_seconds",
		Help:    "Model inference latency by endpoint",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.3, 0.5, 0.8, 1.0, 2.0, 5.0},
	}, []string{"endpoint"})

	SamplesDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audioclassify_samples_decoded_total",
		Help: "Total float32 samples decoded from request bodies",
	})

	PoolBusy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audioclassify_pool_busy_workers",
		Help: "Inference pool workers currently running a task",
	})

	PoolQueued = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audioclassify_pool_queued_tasks",
		Help: "Inference tasks waiting for a worker",
	})
)

// Handler 返回挂载在 gin 路由上的 /metrics 处理函数
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
