package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics holds the counters one time-travel store maintains. Counters
// are registered against the store's registry at construction; a store name
// label keeps multiple stores on one registry distinguishable.
type StoreMetrics struct {
	CommitsTotal    prometheus.Counter
	RejectedTotal   prometheus.Counter
	UndosTotal      prometheus.Counter
	RedosTotal      prometheus.Counter
	PublishesTotal  prometheus.Counter
	NavigationTotal prometheus.Counter
}

// NewStoreMetrics creates and registers the store counter set. It uses
// MustRegister: double-registering the same store name on one registry is a
// programming error worth failing loudly on.
func NewStoreMetrics(registry *prometheus.Registry, storeName string) *StoreMetrics {
	labels := prometheus.Labels{"store": storeName}

	m := &StoreMetrics{
		CommitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rewind_commits_total",
			Help:        "Number of updaters accepted by the history engine.",
			ConstLabels: labels,
		}),
		RejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rewind_updates_rejected_total",
			Help:        "Number of updaters rejected by the dispatcher or engine.",
			ConstLabels: labels,
		}),
		UndosTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rewind_undos_total",
			Help:        "Number of backward navigation steps applied.",
			ConstLabels: labels,
		}),
		RedosTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rewind_redos_total",
			Help:        "Number of forward navigation steps applied.",
			ConstLabels: labels,
		}),
		PublishesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rewind_snapshots_published_total",
			Help:        "Number of full snapshots republished to the host store.",
			ConstLabels: labels,
		}),
		NavigationTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rewind_navigations_total",
			Help:        "Number of navigation operations observed, any direction.",
			ConstLabels: labels,
		}),
	}

	registry.MustRegister(
		m.CommitsTotal,
		m.RejectedTotal,
		m.UndosTotal,
		m.RedosTotal,
		m.PublishesTotal,
		m.NavigationTotal,
	)
	return m
}
