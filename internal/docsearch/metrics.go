package docsearch

import "github.com/prometheus/client_golang/prometheus"

var searchesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ticketlens_docsearch_requests_total",
		Help: "Total number of documentation searches by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(searchesTotal)
}
