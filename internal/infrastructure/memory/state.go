package memory

import (
	"maps"
	"slices"
	"time"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

type cellKey struct{ product, warehouse int64 }

type seqKey struct {
	warehouse   int64
	year, month int
}

type usageKey struct {
	tenant string
	period time.Time
}

type state struct {
	ids           map[string]int64
	tenants       map[string]entity.Tenant
	warehouses    map[int64]entity.Warehouse
	users         map[int64]entity.User
	products      map[int64]entity.Product
	categories    map[int64]entity.Category
	parties       map[int64]entity.Party
	stocks        map[cellKey]entity.StockRow
	movements     []entity.StockMovement
	invoices      map[int64]entity.Invoice
	lines         []entity.InvoiceLine
	sequences     map[seqKey]entity.InvoiceSequence
	payments      []entity.Payment
	plans         map[int64]entity.Plan
	subscriptions map[string]entity.Subscription
	usage         map[usageKey]entity.Usage
	audit         []entity.AuditEntry
	outbox        []entity.OutboxMessage
	notifLog      map[string]struct{}
	tokens        map[string]entity.LegacyToken
	verifications map[int64]entity.EmailVerification
	contacts      []entity.ContactMessage
}

func newState() *state {
	return &state{
		ids:           map[string]int64{},
		tenants:       map[string]entity.Tenant{},
		warehouses:    map[int64]entity.Warehouse{},
		users:         map[int64]entity.User{},
		products:      map[int64]entity.Product{},
		categories:    map[int64]entity.Category{},
		parties:       map[int64]entity.Party{},
		stocks:        map[cellKey]entity.StockRow{},
		invoices:      map[int64]entity.Invoice{},
		sequences:     map[seqKey]entity.InvoiceSequence{},
		plans:         map[int64]entity.Plan{},
		subscriptions: map[string]entity.Subscription{},
		usage:         map[usageKey]entity.Usage{},
		notifLog:      map[string]struct{}{},
		tokens:        map[string]entity.LegacyToken{},
		verifications: map[int64]entity.EmailVerification{},
	}
}

// clone copia superficial por tabla: las filas son valores y nunca se mutan en sitio.
func (s *state) clone() *state {
	return &state{
		ids:           maps.Clone(s.ids),
		tenants:       maps.Clone(s.tenants),
		warehouses:    maps.Clone(s.warehouses),
		users:         maps.Clone(s.users),
		products:      maps.Clone(s.products),
		categories:    maps.Clone(s.categories),
		parties:       maps.Clone(s.parties),
		stocks:        maps.Clone(s.stocks),
		movements:     slices.Clone(s.movements),
		invoices:      maps.Clone(s.invoices),
		lines:         slices.Clone(s.lines),
		sequences:     maps.Clone(s.sequences),
		payments:      slices.Clone(s.payments),
		plans:         maps.Clone(s.plans),
		subscriptions: maps.Clone(s.subscriptions),
		usage:         maps.Clone(s.usage),
		audit:         slices.Clone(s.audit),
		outbox:        slices.Clone(s.outbox),
		notifLog:      maps.Clone(s.notifLog),
		tokens:        maps.Clone(s.tokens),
		verifications: maps.Clone(s.verifications),
		contacts:      slices.Clone(s.contacts),
	}
}

func (s *state) nextID(table string) int64 {
	s.ids[table]++
	return s.ids[table]
}

func now() time.Time { return time.Now().UTC() }

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = now()
	}
}

// paginate aplica offset/limit sobre una lista ya filtrada y ordenada.
func paginate[T any](items []T, p repository.Page) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return items[p.Offset:end]
}

func ptrEq(p *int64, v int64) bool { return p == nil || *p == v }

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
