// Package metrics 提供 Prometheus 指标：HTTP 请求与 P2P 业务计数
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
)

// Metrics 指标集合，nil 接收者上的记录方法为空操作
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 创建订单数（kind=sell|buy）
	OrdersCreated *prometheus.CounterVec
	// 取消订单数
	OrdersCancelled *prometheus.CounterVec
	// 汇率换算次数（source=seller_listing|negotiated|buyer_listing）
	Conversions *prometheus.CounterVec
	// 议价请求数
	NegotiationsRequested prometheus.Counter
	// 上传文件数
	FilesUploaded prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "p2p",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "p2p",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "p2p",
			Subsystem: serviceName,
			Name:      "orders_created_total",
			Help:      "Total P2P orders created",
		}, []string{"kind", "status"}),
		OrdersCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "p2p",
			Subsystem: serviceName,
			Name:      "orders_cancelled_total",
			Help:      "Total P2P orders cancelled",
		}, []string{"kind"}),
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "p2p",
			Subsystem: serviceName,
			Name:      "conversions_total",
			Help:      "Total conversion quotes computed",
		}, []string{"source"}),
		NegotiationsRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "p2p",
			Subsystem: serviceName,
			Name:      "negotiations_requested_total",
			Help:      "Total rate negotiations requested",
		}),
		FilesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "p2p",
			Subsystem: serviceName,
			Name:      "files_uploaded_total",
			Help:      "Total files uploaded to object storage",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.OrdersCreated,
		m.OrdersCancelled,
		m.Conversions,
		m.NegotiationsRequested,
		m.FilesUploaded,
	}

	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, fmt.Sprintf("%d", statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordOrderCreated 记录订单创建
func (m *Metrics) RecordOrderCreated(kind, status string) {
	if m == nil {
		return
	}
	m.OrdersCreated.WithLabelValues(kind, status).Inc()
}

// RecordOrderCancelled 记录订单取消
func (m *Metrics) RecordOrderCancelled(kind string) {
	if m == nil {
		return
	}
	m.OrdersCancelled.WithLabelValues(kind).Inc()
}

// RecordConversion 记录一次换算
func (m *Metrics) RecordConversion(source string) {
	if m == nil {
		return
	}
	m.Conversions.WithLabelValues(source).Inc()
}

// RecordNegotiationRequested 记录议价请求
func (m *Metrics) RecordNegotiationRequested() {
	if m == nil {
		return
	}
	m.NegotiationsRequested.Inc()
}

// RecordFileUploaded 记录文件上传
func (m *Metrics) RecordFileUploaded() {
	if m == nil {
		return
	}
	m.FilesUploaded.Inc()
}
