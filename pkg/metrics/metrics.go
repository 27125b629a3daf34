package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "schedule_gateway"

// Metrics 网关指标
// 使用独立 Registry，测试中可重复创建
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamRetries  prometheus.Counter
}

// New 创建并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "网关 HTTP 请求数",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "网关 HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "后端 API 请求数，status=0 表示网络错误",
		}, []string{"method", "resource", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "后端 API 请求耗时",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "resource"}),
		upstreamRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_retries_total",
			Help:      "延长超时后的重试次数",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.upstreamRequests,
		m.upstreamDuration,
		m.upstreamRetries,
	)
	return m
}

// Handler /metrics 输出
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 暴露 Registry（测试读取指标使用）
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP 记录一次网关请求；route 为路由模板，未匹配时为 "unmatched"
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveUpstream 记录一次后端请求
// path 只取第一段作为资源名，避免 ID 进入标签
func (m *Metrics) ObserveUpstream(method, path string, status int, d time.Duration) {
	res := Resource(path)
	m.upstreamRequests.WithLabelValues(method, res, strconv.Itoa(status)).Inc()
	m.upstreamDuration.WithLabelValues(method, res).Observe(d.Seconds())
}

// UpstreamRetry 记录一次重试
func (m *Metrics) UpstreamRetry() {
	m.upstreamRetries.Inc()
}

// Resource "/rooms/12/schedules" → "rooms"
func Resource(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}
