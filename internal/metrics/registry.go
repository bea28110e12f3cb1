package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry mantém métricas customizadas utilizadas no serviço.
type Registry struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
	OrdersCommitted *prometheus.CounterVec
	CommitLatency   prometheus.Histogram
	StockShortages  prometheus.Counter
	PinAuth         *prometheus.CounterVec
	RecipeCache     *prometheus.CounterVec
	TillSessions    *prometheus.GaugeVec
}

// NewRegistry registra e retorna as métricas padrão do backend.
func NewRegistry() *Registry {
	reg := &Registry{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total de requisições HTTP",
		}, []string{"method", "path", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duração das requisições HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		OrdersCommitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_orders_committed_total",
			Help: "Pedidos efetivados por status final",
		}, []string{"status"}),
		CommitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pos_order_commit_duration_seconds",
			Help:    "Duração da efetivação de pedidos (preflight + transação)",
			Buckets: prometheus.DefBuckets,
		}),
		StockShortages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_stock_shortages_total",
			Help: "Efetivações rejeitadas por estoque insuficiente",
		}),
		PinAuth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_pin_auth_total",
			Help: "Tentativas de autenticação por PIN por resultado",
		}, []string{"result"}),
		RecipeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_recipe_cache_events_total",
			Help: "Contabiliza hits/misses do cache de custo de receitas",
		}, []string{"event"}),
		TillSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pos_till_sessions_open",
			Help: "Sessões de caixa abertas por filial",
		}, []string{"branch"}),
	}

	prometheus.MustRegister(
		reg.HTTPRequests,
		reg.HTTPLatency,
		reg.OrdersCommitted,
		reg.CommitLatency,
		reg.StockShortages,
		reg.PinAuth,
		reg.RecipeCache,
		reg.TillSessions,
	)

	return reg
}
