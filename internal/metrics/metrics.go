package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Redirect outcomes used as the "result" label.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var (
	once sync.Once

	// Registry holds the service metrics; it is private to the process so
	// repeated Init calls in tests never collide with the global registry.
	Registry = prometheus.NewRegistry()

	// LinksCreatedTotal counts created links by code origin ("custom" or
	// "generated").
	LinksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shorty_links_created_total",
			Help: "Number of links created.",
		},
		[]string{"source"},
	)

	LinksDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shorty_links_deleted_total",
			Help: "Number of links deleted.",
		},
	)

	RedirectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shorty_redirects_total",
			Help: "Redirect attempts by result.",
		},
		[]string{"result"},
	)
)

// Init registers the collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		Registry.MustRegister(
			LinksCreatedTotal,
			LinksDeletedTotal,
			RedirectsTotal,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
