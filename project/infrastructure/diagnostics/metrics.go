package diagnostics

import (
	"github.com/prometheus/client_golang/prometheus"

	"secret-reactor/project/domain"
	"secret-reactor/project/service"
)

// newRegistry はキャッシュ統計を読むコレクタを登録したレジストリを作成します
// 値は取得時に StatsSource から読み出します
func newRegistry(stats StatsSource) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	for _, kind := range []service.IdentityKind{domain.KindUser, domain.KindChannel} {
		kind := kind
		labels := prometheus.Labels{"kind": kind.String()}

		reg.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name:        "identity_cache_hits_total",
				Help:        "Identity cache hits.",
				ConstLabels: labels,
			}, func() float64 { return float64(stats.Stats(kind).Hits) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name:        "identity_cache_misses_total",
				Help:        "Identity cache misses.",
				ConstLabels: labels,
			}, func() float64 { return float64(stats.Stats(kind).Misses) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name:        "identity_lookups_total",
				Help:        "Directory lookups issued on cache misses.",
				ConstLabels: labels,
			}, func() float64 { return float64(stats.Stats(kind).Lookups) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name:        "identity_lookup_failures_total",
				Help:        "Directory lookups that failed.",
				ConstLabels: labels,
			}, func() float64 { return float64(stats.Stats(kind).Failures) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name:        "identity_cache_entries",
				Help:        "Entries currently cached.",
				ConstLabels: labels,
			}, func() float64 { return float64(stats.Stats(kind).CurrSize) }),
		)
	}

	return reg
}
