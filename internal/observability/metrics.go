package observability

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu             sync.Mutex
	requestCount   map[string]int64
	requestLatency map[string]time.Duration
	errorCount     map[string]int64
	signUpOutcomes map[string]int64
}

// Snapshot is a point-in-time copy of the counters, shaped for JSON.
type Snapshot struct {
	Requests       map[string]int64 `json:"requests"`
	AvgLatencyMS   map[string]int64 `json:"avg_latency_ms"`
	Errors         map[string]int64 `json:"errors"`
	SignUpOutcomes map[string]int64 `json:"signup_outcomes"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:   make(map[string]int64),
		requestLatency: make(map[string]time.Duration),
		errorCount:     make(map[string]int64),
		signUpOutcomes: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, strconv.Itoa(status))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestLatency[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := pathKey(path, method, code)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordSignUp counts a sign-up attempt by outcome: CONFIRMED or the error code.
func (m *Metrics) RecordSignUp(outcome string) {
	if m == nil || outcome == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signUpOutcomes[strings.ToUpper(outcome)]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Requests:       map[string]int64{},
		AvgLatencyMS:   map[string]int64{},
		Errors:         map[string]int64{},
		SignUpOutcomes: map[string]int64{},
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		snap.Requests[k] = v
		if v > 0 {
			snap.AvgLatencyMS[k] = (m.requestLatency[k] / time.Duration(v)).Milliseconds()
		}
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	for k, v := range m.signUpOutcomes {
		snap.SignUpOutcomes[k] = v
	}
	return snap
}

func pathKey(path, method, suffix string) string {
	return method + " " + path + "|" + suffix
}
