package ports

// Metrics contadores de negocio.
type Metrics interface {
	QuotaDenied(resource string)
	InvoiceCreated()
	PaymentRecorded()
	TransferDone()
	NotificationSent(kind string)
}

// NopMetrics implementación vacía.
type NopMetrics struct{}

func (NopMetrics) QuotaDenied(string)      {}
func (NopMetrics) InvoiceCreated()         {}
func (NopMetrics) PaymentRecorded()        {}
func (NopMetrics) TransferDone()           {}
func (NopMetrics) NotificationSent(string) {}
