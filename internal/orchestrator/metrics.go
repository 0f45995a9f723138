package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: сколько времени занял полный запрос (включая fan-out)
	RequestDuration *prometheus.HistogramVec

	// Latency отдельного домена и его итоговый уровень риска
	AnalysisDuration *prometheus.HistogramVec

	// Traffic: общее кол-во запросов по исходу
	TotalRequests *prometheus.CounterVec

	// Эффективность кэша результатов
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Сколько запросов закончились без единого пригодного домена
	InsufficientData prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trustlens_request_duration_seconds",
			Help:    "Histogram of full orchestration latencies.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"status"}),

		AnalysisDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trustlens_analysis_duration_seconds",
			Help:    "Histogram of per-domain analyzer latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"analysis_domain", "risk_level"}),

		TotalRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "trustlens_requests_total",
			Help: "Total number of orchestration requests by outcome.",
		}, []string{"status"}), // статусы: ok, cached, invalid

		CacheHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "trustlens_result_cache_hits_total",
			Help: "Total number of result cache hits.",
		}),

		CacheMisses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "trustlens_result_cache_misses_total",
			Help: "Total number of result cache misses.",
		}),

		InsufficientData: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "trustlens_insufficient_data_total",
			Help: "Requests where no analysis domain produced usable evidence.",
		}),
	}
}
