// Package metrics exposes Prometheus counters for HTTP traffic and for the
// account, prayer request and email flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "montesion"

// Email kinds used as the "kind" label.
const (
	EmailPrayerConfirmation = "prayer_confirmation"
	EmailPasswordReset      = "password_reset"
)

// Recorder owns a registry and the application's collectors. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	prayerRequests  prometheus.Counter
	ticketRetries   prometheus.Counter
	emails          *prometheus.CounterVec
	registrations   prometheus.Counter
	logins          *prometheus.CounterVec
	passwordResets  prometheus.Counter
	accountsDeleted prometheus.Counter
}

// NewRecorder registers the collectors on a fresh registry together with the
// Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		prayerRequests: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prayer_requests_total",
			Help:      "Prayer requests stored.",
		}),
		ticketRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_allocation_retries_total",
			Help:      "Prayer request submissions retried after a duplicate ticket.",
		}),
		emails: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_total",
			Help:      "Emails attempted by kind and outcome.",
		}, []string{"kind", "outcome"}),
		registrations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_registered_total",
			Help:      "Accounts created.",
		}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		passwordResets: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_resets_total",
			Help:      "Temporary passwords issued.",
		}),
		accountsDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_deleted_total",
			Help:      "Accounts deleted.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests and observes latency per chi route pattern, so
// path parameters do not explode label cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.httpRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.httpDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

// PrayerRequestStored counts a committed prayer request.
func (r *Recorder) PrayerRequestStored() {
	if r != nil {
		r.prayerRequests.Inc()
	}
}

// TicketRetried counts a submission retried after a ticket collision.
func (r *Recorder) TicketRetried() {
	if r != nil {
		r.ticketRetries.Inc()
	}
}

// EmailSent records the outcome of one email of the given kind.
func (r *Recorder) EmailSent(kind string, err error) {
	if r == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	r.emails.WithLabelValues(kind, outcome).Inc()
}

// AccountRegistered counts a new account.
func (r *Recorder) AccountRegistered() {
	if r != nil {
		r.registrations.Inc()
	}
}

// Login records a login attempt.
func (r *Recorder) Login(ok bool) {
	if r == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	r.logins.WithLabelValues(outcome).Inc()
}

// PasswordReset counts an issued temporary password.
func (r *Recorder) PasswordReset() {
	if r != nil {
		r.passwordResets.Inc()
	}
}

// AccountDeleted counts a deleted account.
func (r *Recorder) AccountDeleted() {
	if r != nil {
		r.accountsDeleted.Inc()
	}
}
