package o11y

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var pusher *push.Pusher

type MetricManager struct {
	labelNames []string
	gauges     *prometheus.GaugeVec
	metrics    map[string]prometheus.Gauge
	mu         sync.Mutex
}

func NewMetricManager(name, help string, labelNames []string) *MetricManager {
	g := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labelNames,
	)
	return &MetricManager{
		gauges:     g,
		labelNames: labelNames,
		metrics:    make(map[string]prometheus.Gauge),
	}
}

var mm *MetricManager

// SearchCounter counts finished search runs by algorithm, domain and outcome.
var SearchCounter *prometheus.CounterVec

// Init wires the push gateway; call once before WriteData when telemetry is
// enabled.
func Init(gatewayURL string) {
	pusher = push.New(gatewayURL, "rtsearch_pusher")
	mm = NewMetricManager("search_solution_cost", "Solution cost of finished runs", []string{"algorithm", "domain"})
	SearchCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_runs",
		},
		[]string{"algorithm", "domain", "found"})
	pusher.Collector(SearchCounter)
}

func isUnorderedEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (m *MetricManager) GetGauge(labelValues map[string]string) prometheus.Gauge {
	m.mu.Lock()
	defer m.mu.Unlock()

	// read keys of labelValues
	var keys []string
	for k := range labelValues {
		keys = append(keys, k)
	}
	// compare keys to labelNames
	if !isUnorderedEqual(keys, m.labelNames) {
		log.Fatal("labelNames do not match labelValues")
	}

	// Create a key by concatenating all label values
	key := m.createKey(labelValues)

	// Check if the gauge already exists
	if gauge, exists := m.metrics[key]; exists {
		return gauge
	}

	// Create a new gauge with the specified labels
	gauge := m.gauges.With(labelValues)
	m.metrics[key] = gauge
	// register the gauge with the pusher
	pusher.Collector(gauge)
	return gauge
}

func (m *MetricManager) createKey(labelValues map[string]string) string {
	var labels []string
	for _, v := range labelValues {
		labels = append(labels, v)
	}
	sort.Strings(labels)
	return strings.Join(labels, "|")
}

// WriteData sets the run gauge and pushes asynchronously.
func WriteData(tags map[string]string, data float64) {
	if pusher == nil {
		return
	}
	mm.GetGauge(tags).Set(data)
	// launch a goroutine to do the pushing
	go func() {
		err := pusher.Push()
		if err != nil {
			log.Println("Error pushing data to Pushgateway:", err)
			return
		}
	}()
}

// InfluxSink identifies an influx destination for run records.
type InfluxSink struct {
	URL    string
	Org    string
	Bucket string
	Token  string
}

// Record writes one measurement point for a finished run.
func (s InfluxSink) Record(name string, tags map[string]string, fields map[string]interface{}) error {
	client := influxdb2.NewClient(s.URL, s.Token)
	defer client.Close()
	writeAPI := client.WriteAPIBlocking(s.Org, s.Bucket)
	point := write.NewPoint(name, tags, fields, time.Now())
	return writeAPI.WritePoint(context.Background(), point)
}
