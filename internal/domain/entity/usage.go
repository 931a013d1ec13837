package entity

import "time"

// Usage contadores por (tenant, periodo). Periodo = primer día del mes (UTC).
// Solo InvoicesThisPeriod es un contador real; el resto se deriva al leer.
type Usage struct {
	TenantID           string
	Period             time.Time
	InvoicesThisPeriod int64
	InvoicesTotal      int64
	UpdatedAt          time.Time
}

// PeriodOf primer día del mes de t en UTC.
func PeriodOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
