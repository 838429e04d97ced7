package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/factory-simulator/core"
)

// SimCollector bundles Prometheus metrics for the simulation loop and the
// server surfaces around it.
type SimCollector struct {
	gatherer prometheus.Gatherer

	Ticks        prometheus.Counter
	TickDuration prometheus.Histogram
	Buildings    prometheus.Gauge
	Networks     prometheus.Gauge

	Satisfaction *prometheus.GaugeVec
	Stored       *prometheus.GaugeVec
	Delivered    *prometheus.CounterVec
	Placements   *prometheus.CounterVec

	RPCRequests  *prometheus.CounterVec
	HTTPRequests *prometheus.CounterVec
}

// NewSimCollector registers simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &SimCollector{gatherer: gatherer}
	var err error

	if c.Ticks, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "factory_ticks_total",
		Help: "Total number of simulation steps executed.",
	}), "factory_ticks_total"); err != nil {
		return nil, err
	}
	if c.TickDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "factory_tick_duration_seconds",
		Help:    "Wall-clock time spent in one simulation step.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	}), "factory_tick_duration_seconds"); err != nil {
		return nil, err
	}
	if c.Buildings, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "factory_buildings",
		Help: "Current number of placed buildings.",
	}), "factory_buildings"); err != nil {
		return nil, err
	}
	if c.Networks, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "factory_power_networks",
		Help: "Current number of power networks.",
	}), "factory_power_networks"); err != nil {
		return nil, err
	}
	if c.Satisfaction, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "factory_power_satisfaction",
		Help: "Satisfaction ratio of each power network after the last settlement.",
	}, []string{"network"}), "factory_power_satisfaction"); err != nil {
		return nil, err
	}
	if c.Stored, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "factory_power_stored_joules",
		Help: "Energy stored in each power network.",
	}, []string{"network"}), "factory_power_stored_joules"); err != nil {
		return nil, err
	}
	if c.Delivered, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "factory_items_delivered_total",
		Help: "Items delivered to the core, labeled by item kind.",
	}, []string{"item"}), "factory_items_delivered_total"); err != nil {
		return nil, err
	}
	if c.Placements, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "factory_placements_total",
		Help: "Placement attempts, labeled by outcome.",
	}, []string{"result"}), "factory_placements_total"); err != nil {
		return nil, err
	}
	if c.RPCRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "factory_grpc_requests_total",
		Help: "Handled gRPC calls, labeled by service, method, and status code.",
	}, []string{"service", "method", "code"}), "factory_grpc_requests_total"); err != nil {
		return nil, err
	}
	if c.HTTPRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "factory_http_requests_total",
		Help: "Handled HTTP requests, labeled by method, route pattern, and status code.",
	}, []string{"method", "route", "code"}), "factory_http_requests_total"); err != nil {
		return nil, err
	}
	return c, nil
}

// ObserveTick satisfies core.TickRecorder.
func (c *SimCollector) ObserveTick(elapsed time.Duration, buildings, networks int) {
	if c == nil {
		return
	}
	c.Ticks.Inc()
	c.TickDuration.Observe(elapsed.Seconds())
	c.Buildings.Set(float64(buildings))
	c.Networks.Set(float64(networks))
}

// ObserveNetworks replaces the per-network gauges. Network ids are only
// stable between rebuilds, so stale series are dropped first.
func (c *SimCollector) ObserveNetworks(stats []core.NetworkStats) {
	if c == nil {
		return
	}
	c.Satisfaction.Reset()
	c.Stored.Reset()
	for _, n := range stats {
		id := strconv.Itoa(int(n.ID))
		c.Satisfaction.WithLabelValues(id).Set(n.Satisfaction)
		c.Stored.WithLabelValues(id).Set(n.Stored)
	}
	c.Networks.Set(float64(len(stats)))
}

// SetBuildingCount updates the building gauge outside a tick.
func (c *SimCollector) SetBuildingCount(n int) {
	if c == nil {
		return
	}
	c.Buildings.Set(float64(n))
}

// RecordPlacement counts a placement attempt by outcome.
func (c *SimCollector) RecordPlacement(result string) {
	if c == nil {
		return
	}
	c.Placements.WithLabelValues(result).Inc()
}

// RecordDelivery counts items credited to the ledger.
func (c *SimCollector) RecordDelivery(item string, amount int) {
	if c == nil || amount <= 0 {
		return
	}
	c.Delivered.WithLabelValues(item).Add(float64(amount))
}

// UnaryServerInterceptor records request counts for unary RPCs.
func (c *SimCollector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if c == nil {
			return resp, err
		}
		fullMethod := ""
		if info != nil {
			fullMethod = info.FullMethod
		}
		service, method := SplitMethod(fullMethod)
		c.RPCRequests.WithLabelValues(service, method, status.Code(err).String()).Inc()
		return resp, err
	}
}

// HTTPMiddleware counts requests by chi route pattern so path parameters do
// not explode label cardinality.
func (c *SimCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if c == nil {
			return
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(code)).Inc()
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SplitMethod parses a fully-qualified gRPC method name into service and method
// components, returning "unknown"/"unknown" when parsing fails.
func SplitMethod(fullMethod string) (string, string) {
	if fullMethod == "" {
		return "unknown", "unknown"
	}
	parts := strings.Split(strings.TrimPrefix(fullMethod, "/"), "/")
	if len(parts) < 2 {
		return "unknown", "unknown"
	}
	service := parts[len(parts)-2]
	method := parts[len(parts)-1]
	if dot := strings.LastIndex(service, "."); dot >= 0 && dot+1 < len(service) {
		service = service[dot+1:]
	}
	if service == "" {
		service = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	return service, method
}

// register adds c to reg, reusing an existing collector of the same type
// when one is already registered under the name.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
