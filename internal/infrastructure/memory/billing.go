package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

type invoiceRepo struct{ db *db }

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	return r.db.write(func(st *state) error {
		for _, o := range st.invoices {
			if o.Number == inv.Number {
				return fmt.Errorf("número %s: %w", inv.Number, domain.ErrDuplicate)
			}
		}
		inv.ID = st.nextID("invoices")
		stamp(&inv.CreatedAt)
		inv.UpdatedAt = inv.CreatedAt
		st.invoices[inv.ID] = *inv
		return nil
	})
}

func (r invoiceRepo) GetByID(_ context.Context, id int64) (*entity.Invoice, error) {
	var out *entity.Invoice
	r.db.read(func(st *state) {
		if inv, ok := st.invoices[id]; ok {
			out = &inv
		}
	})
	return out, nil
}

func (r invoiceRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r invoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	return r.db.write(func(st *state) error {
		if _, ok := st.invoices[inv.ID]; !ok {
			return domain.ErrNotFound
		}
		inv.UpdatedAt = now()
		st.invoices[inv.ID] = *inv
		return nil
	})
}

func (r invoiceRepo) CreateLine(_ context.Context, l *entity.InvoiceLine) error {
	return r.db.write(func(st *state) error {
		l.ID = st.nextID("invoice_lines")
		st.lines = append(st.lines, *l)
		return nil
	})
}

func (r invoiceRepo) ListLines(_ context.Context, invoiceID int64) ([]*entity.InvoiceLine, error) {
	var out []*entity.InvoiceLine
	r.db.read(func(st *state) {
		for _, l := range st.lines {
			if l.InvoiceID == invoiceID {
				l := l
				out = append(out, &l)
			}
		}
	})
	return out, nil
}

func (r invoiceRepo) List(_ context.Context, f repository.InvoiceFilter, p repository.Page) ([]*entity.Invoice, int64, error) {
	var all []*entity.Invoice
	r.db.read(func(st *state) {
		for _, inv := range st.invoices {
			if f.TenantID != "" && inv.TenantID != f.TenantID {
				continue
			}
			if !ptrEq(f.WarehouseID, inv.WarehouseID) {
				continue
			}
			if f.Kind != "" && inv.Kind != f.Kind {
				continue
			}
			if f.Status != "" && inv.Status != f.Status {
				continue
			}
			if f.CustomerID != nil && (inv.CustomerID == nil || *inv.CustomerID != *f.CustomerID) {
				continue
			}
			if f.PartnerID != nil && (inv.PartnerID == nil || *inv.PartnerID != *f.PartnerID) {
				continue
			}
			if !inRange(inv.CreatedAt, f.From, f.To) {
				continue
			}
			inv := inv
			all = append(all, &inv)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return paginate(all, p), int64(len(all)), nil
}

func (r invoiceRepo) CountCreatedSince(_ context.Context, tenantID string, since time.Time) (int64, error) {
	var n int64
	r.db.read(func(st *state) {
		for _, inv := range st.invoices {
			if inv.TenantID == tenantID && !inv.CreatedAt.Before(since) {
				n++
			}
		}
	})
	return n, nil
}

func (r invoiceRepo) Aggregate(_ context.Context, tenantID string, since time.Time) (repository.InvoiceAggregate, error) {
	agg := repository.InvoiceAggregate{Revenue: decimal.Zero, Outstanding: decimal.Zero}
	r.db.read(func(st *state) {
		for _, inv := range st.invoices {
			if inv.TenantID != tenantID || inv.Status == entity.InvoiceStatusCancelled {
				continue
			}
			agg.Outstanding = agg.Outstanding.Add(inv.Outstanding)
			if !inv.CreatedAt.Before(since) {
				agg.Count++
				agg.Revenue = agg.Revenue.Add(inv.Total)
			}
		}
	})
	return agg, nil
}

type sequenceRepo struct{ db *db }

func (r sequenceRepo) Next(_ context.Context, warehouseID int64, year, month int) (int64, error) {
	var n int64
	err := r.db.write(func(st *state) error {
		k := seqKey{warehouseID, year, month}
		seq, ok := st.sequences[k]
		if !ok {
			seq = entity.InvoiceSequence{WarehouseID: warehouseID, Year: year, Month: month}
		}
		seq.LastNumber++
		st.sequences[k] = seq
		n = seq.LastNumber
		return nil
	})
	return n, err
}

func (r sequenceRepo) Get(_ context.Context, warehouseID int64, year, month int) (*entity.InvoiceSequence, error) {
	var out *entity.InvoiceSequence
	r.db.read(func(st *state) {
		if seq, ok := st.sequences[seqKey{warehouseID, year, month}]; ok {
			out = &seq
		}
	})
	return out, nil
}

type paymentRepo struct{ db *db }

func (r paymentRepo) Create(_ context.Context, p *entity.Payment) error {
	return r.db.write(func(st *state) error {
		p.ID = st.nextID("payments")
		stamp(&p.At)
		st.payments = append(st.payments, *p)
		return nil
	})
}

func (r paymentRepo) ListByInvoice(_ context.Context, invoiceID int64) ([]*entity.Payment, error) {
	var out []*entity.Payment
	r.db.read(func(st *state) {
		for _, p := range st.payments {
			if p.InvoiceID == invoiceID {
				p := p
				out = append(out, &p)
			}
		}
	})
	return out, nil
}

func (r paymentRepo) List(_ context.Context, f repository.PaymentFilter, p repository.Page) ([]*entity.Payment, int64, error) {
	var all []*entity.Payment
	r.db.read(func(st *state) {
		for i := len(st.payments) - 1; i >= 0; i-- {
			pay := st.payments[i]
			if f.TenantID != "" && pay.TenantID != f.TenantID {
				continue
			}
			if !ptrEq(f.InvoiceID, pay.InvoiceID) || !ptrEq(f.WarehouseID, pay.WarehouseID) {
				continue
			}
			all = append(all, &pay)
		}
	})
	return paginate(all, p), int64(len(all)), nil
}
