// Package metrics contadores prometheus de negocio y de infraestructura.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/Boutique-api/internal/application/ports"
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus implementa ports.Metrics. Cada instancia tiene su propio registry.
type Prometheus struct {
	registry      *prometheus.Registry
	quotaDenials  *prometheus.CounterVec
	invoices      prometheus.Counter
	payments      prometheus.Counter
	transfers     prometheus.Counter
	notifications *prometheus.CounterVec
	txRetries     prometheus.Counter
}

// New registra los contadores bajo el namespace dado ("boutique" si vacío).
func New(namespace string) *Prometheus {
	if namespace == "" {
		namespace = "boutique"
	}
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		quotaDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "quota_denials_total", Help: "Acciones denegadas por límite o bandera de plan.",
		}, []string{"resource"}),
		invoices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "invoices_created_total", Help: "Facturas emitidas.",
		}),
		payments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "payments_recorded_total", Help: "Versements registrados.",
		}),
		transfers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "transfers_total", Help: "Transferencias entre boutiques.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifications_sent_total", Help: "Mensajes del outbox entregados.",
		}, []string{"kind"}),
		txRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tx_retries_total", Help: "Transacciones reintentadas por error transitorio.",
		}),
	}
	p.registry.MustRegister(p.quotaDenials, p.invoices, p.payments, p.transfers, p.notifications, p.txRetries,
		prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return p
}

// Registry para exponer en /metrics.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

func (p *Prometheus) QuotaDenied(resource string)  { p.quotaDenials.WithLabelValues(resource).Inc() }
func (p *Prometheus) InvoiceCreated()              { p.invoices.Inc() }
func (p *Prometheus) PaymentRecorded()             { p.payments.Inc() }
func (p *Prometheus) TransferDone()                { p.transfers.Inc() }
func (p *Prometheus) NotificationSent(kind string) { p.notifications.WithLabelValues(kind).Inc() }

// TxRetried se pasa como postgres.Options.OnRetry.
func (p *Prometheus) TxRetried(int, error) { p.txRetries.Inc() }
