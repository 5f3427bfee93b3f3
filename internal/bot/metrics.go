package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	MessagesProcessed    prometheus.Counter
	CommandsProcessed    *prometheus.CounterVec
	CommandDuration      *prometheus.HistogramVec
	LookupsTotal         *prometheus.CounterVec
	ErrorsTotal          *prometheus.CounterVec
	ProfilesTotal        prometheus.Gauge
	UpdateProcessingTime prometheus.Histogram
}

// NewMetrics регистрирует метрики в reg (nil - реестр по умолчанию).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		MessagesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_messages_processed_total",
			Help: "Total number of processed messages",
		}),

		CommandsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_commands_processed_total",
			Help: "Total number of processed commands and conversation replies",
		}, []string{"command"}),

		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "telegram_bot_command_duration_seconds",
			Help:    "Duration of command processing",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),

		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_lookups_total",
			Help: "External lookups by service and result",
		}, []string{"service", "result"}),

		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Errors reported to users by kind",
		}, []string{"kind"}),

		ProfilesTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "telegram_bot_profiles_total",
			Help: "Number of users with a configured profile",
		}),

		UpdateProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// LookupObserver возвращает функцию для weather.WithObserver / foodfacts.WithObserver.
func (m *Metrics) LookupObserver(service string) func(result string) {
	return func(result string) {
		m.LookupsTotal.WithLabelValues(service, result).Inc()
	}
}
