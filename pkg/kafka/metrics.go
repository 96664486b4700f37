package kafka

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	producerMessages *prometheus.CounterVec
	producerBytes    *prometheus.CounterVec
	producerLatency  *prometheus.HistogramVec
	producerOnce     sync.Once
)

func initProducerMetricsOnce() {
	producerOnce.Do(func() {
		producerMessages = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraudsight_kafka_producer_messages_total",
				Help: "Messages written by the producer",
			},
			[]string{"topic", "compression", "success"},
		)
		producerBytes = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraudsight_kafka_producer_bytes_total",
				Help: "Payload bytes written by the producer",
			},
			[]string{"topic", "compression"},
		)
		producerLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fraudsight_kafka_producer_write_duration_seconds",
				Help:    "Duration of producer writes in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		)
		prometheus.MustRegister(producerMessages, producerBytes, producerLatency)
	})
}

func observeProducerMetrics(topic, compression string, bytes int64, count int, dur time.Duration, err error) {
	if producerMessages == nil {
		return
	}
	producerMessages.WithLabelValues(topic, compression, strconv.FormatBool(err == nil)).Add(float64(count))
	if err == nil {
		producerBytes.WithLabelValues(topic, compression).Add(float64(bytes))
	}
	producerLatency.WithLabelValues(topic).Observe(dur.Seconds())
}
