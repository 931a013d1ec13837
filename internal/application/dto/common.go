package dto

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// Tamaños de página por endpoint.
const (
	DefaultPageSize   = 50
	ProductsPageSize  = 50
	StocksPageSize    = 100
	InvoicesPageSize  = 30
	MovementsPageSize = 100
	MaxPageSize       = 200
)

// PageRequest paginación para listados. Acepta limit/offset o page/page_size.
type PageRequest struct {
	Limit    int `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset   int `query:"offset" validate:"omitempty,min=0"`
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=200"`
}

// Normalize aplica el tamaño por defecto del endpoint y el máximo global.
func (p PageRequest) Normalize(def int) PageRequest {
	if p.PageSize > 0 {
		p.Limit = p.PageSize
	}
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Page > 0 {
		p.Offset = (p.Page - 1) * p.Limit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	p.Page = p.Offset/p.Limit + 1
	p.PageSize = p.Limit
	return p
}

// Repo convierte a la paginación del repositorio.
func (p PageRequest) Repo() repository.Page {
	return repository.Page{Limit: p.Limit, Offset: p.Offset}
}

// Pagination metadatos de página en respuestas.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// Envelope forma estándar de los listados: {count, next, previous, results, pagination}.
type Envelope[T any] struct {
	Count      int64      `json:"count"`
	Next       *string    `json:"next"`
	Previous   *string    `json:"previous"`
	Results    []T        `json:"results"`
	Pagination Pagination `json:"pagination"`
}

// NewEnvelope arma la respuesta paginada. Next/Previous son query strings relativos;
// la capa HTTP les antepone la ruta con WithBase.
func NewEnvelope[T any](items []T, total int64, p PageRequest) *Envelope[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	env := &Envelope[T]{
		Count:   total,
		Results: items,
		Pagination: Pagination{
			Page: p.Page, PageSize: p.Limit, TotalPages: pages, Total: total, Limit: p.Limit, Offset: p.Offset,
		},
	}
	if int64(p.Offset+p.Limit) < total {
		s := fmt.Sprintf("?limit=%d&offset=%d", p.Limit, p.Offset+p.Limit)
		env.Next = &s
	}
	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		s := fmt.Sprintf("?limit=%d&offset=%d", p.Limit, prev)
		env.Previous = &s
	}
	return env
}

// WithBase antepone base a los enlaces next/previous.
func (e *Envelope[T]) WithBase(base string) *Envelope[T] {
	if e.Next != nil {
		s := base + *e.Next
		e.Next = &s
	}
	if e.Previous != nil {
		s := base + *e.Previous
		e.Previous = &s
	}
	return e
}

// ScopeTenant resuelve el tenant efectivo de un listado. El tenant del contexto se aplica
// primero; un ?entreprise= solo puede estrechar. Para un usuario de tenant que pide otro
// tenant el resultado es vacío (empty=true). El operador de plataforma ve todo o el pedido.
func ScopeTenant(sc entity.SecurityContext, requested string) (tenantID string, empty bool) {
	requested = strings.TrimSpace(requested)
	if sc.IsPlatformAdmin() {
		return requested, false
	}
	if sc.TenantID == "" {
		return "", true
	}
	if requested != "" && requested != sc.TenantID {
		return sc.TenantID, true
	}
	return sc.TenantID, false
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// MessageResponse respuesta simple.
type MessageResponse struct {
	Message string `json:"message"`
}

// Present indica si un campo opcional viene informado: nil y "" cuentan como ausentes.
func Present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
