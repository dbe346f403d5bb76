package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "whiteboard",
		Name:      "active_connections",
		Help:      "Current number of live WebSocket connections",
	})

	openRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "whiteboard",
		Name:      "open_rooms",
		Help:      "Rooms held in the registry (rooms are never evicted)",
	})

	joins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Name:      "joins_total",
		Help:      "Room join attempts by result",
	}, []string{"result"})

	documentChanges = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Name:      "document_changes_total",
		Help:      "Document change events merged into a room",
	})

	eventsBroadcast = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Name:      "events_broadcast_total",
		Help:      "Events fanned out to room peers, by event type",
	}, []string{"event"})

	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Name:      "frames_dropped_total",
		Help:      "Outbound frames dropped because a peer's send queue was full",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"service", "method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "whiteboard",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "path", "status"})
)

func ConnOpened() { activeConnections.Inc() }
func ConnClosed() { activeConnections.Dec() }

func SetOpenRooms(n int) { openRooms.Set(float64(n)) }

// JoinResult records a join attempt outcome: "ok", "invalid" or "expired".
func JoinResult(result string) { joins.WithLabelValues(result).Inc() }

func DocumentChange() { documentChanges.Inc() }

func Broadcast(event string) { eventsBroadcast.WithLabelValues(event).Inc() }

func FrameDropped() { framesDropped.Inc() }

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack is required so the WebSocket upgrade works through the middleware.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("whiteboard metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics with Prometheus labels.
func Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			labels := prometheus.Labels{
				"service": service,
				"method":  r.Method,
				"path":    r.URL.Path,
				"status":  strconv.Itoa(rec.status),
			}
			httpRequests.With(labels).Inc()
			httpLatency.With(labels).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
