package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/inventory"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// StockQuery filtros de GET /stocks.
type StockQuery struct {
	Tenant      string
	WarehouseID *int64
	ProductID   *int64
	LowOnly     bool
}

// ListStocks filas de stock del tenant con producto y boutique precargados.
func (l *Ledger) ListStocks(ctx context.Context, sc entity.SecurityContext, q StockQuery, page dto.PageRequest) (*dto.Envelope[dto.StockRowResponse], error) {
	page = page.Normalize(dto.StocksPageSize)
	tenantID, empty := dto.ScopeTenant(sc, q.Tenant)
	if empty {
		return dto.NewEnvelope([]dto.StockRowResponse{}, 0, page), nil
	}
	views, total, err := l.store.Stocks().List(ctx, repository.StockFilter{
		TenantID: tenantID, WarehouseID: q.WarehouseID, ProductID: q.ProductID, LowOnly: q.LowOnly,
	}, page.Repo())
	if err != nil {
		return nil, fmt.Errorf("stocks: %w", err)
	}
	items := make([]dto.StockRowResponse, 0, len(views))
	for _, v := range views {
		items = append(items, dto.StockRowFromView(v))
	}
	return dto.NewEnvelope(items, total, page), nil
}

// MovementQuery filtros de GET /mouvements-stock.
type MovementQuery struct {
	Tenant      string
	WarehouseID *int64
	ProductID   *int64
	Kind        string
	DocRef      string
	From, To    *time.Time
}

// ListMovements log de movimientos, más recientes primero.
func (l *Ledger) ListMovements(ctx context.Context, sc entity.SecurityContext, q MovementQuery, page dto.PageRequest) (*dto.Envelope[dto.MovementResponse], error) {
	page = page.Normalize(dto.MovementsPageSize)
	tenantID, empty := dto.ScopeTenant(sc, q.Tenant)
	if empty {
		return dto.NewEnvelope([]dto.MovementResponse{}, 0, page), nil
	}
	movs, total, err := l.store.Movements().List(ctx, repository.MovementFilter{
		TenantID: tenantID, WarehouseID: q.WarehouseID, ProductID: q.ProductID,
		Kind: q.Kind, DocRef: q.DocRef, From: q.From, To: q.To,
	}, page.Repo())
	if err != nil {
		return nil, fmt.Errorf("movimientos: %w", err)
	}
	items := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		items = append(items, dto.MovementFromEntity(m))
	}
	return dto.NewEnvelope(items, total, page), nil
}

// Alerts filas en stock bajo o agotado del tenant, agrupadas por nivel.
func Alerts(ctx context.Context, repo repository.StockRepository, tenantID string) (low, out []*repository.StockView, err error) {
	views, err := repo.ListAlerts(ctx, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("alertas de stock: %w", err)
	}
	for _, v := range views {
		switch inventory.AlertLevel(v.StockRow, v.MinStock) {
		case inventory.AlertLow:
			low = append(low, v)
		case inventory.AlertOut:
			out = append(out, v)
		}
	}
	return low, out, nil
}

// ReplenishmentSuggestion producto bajo su punto de pedido con la cantidad sugerida.
type ReplenishmentSuggestion struct {
	ProductID     int64  `json:"produit"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	TotalQuantity int64  `json:"total_quantity"`
	ReorderPoint  int64  `json:"reorder_point"`
	MaxStock      int64  `json:"max_stock"`
	SuggestedQty  int64  `json:"suggested_qty"`
	Priority      int    `json:"priority"`
}

// Replenishment lista de reposición: productos activos que necesitan pedido (ver Product.NeedsReorder).
// La cantidad sugerida lleva el total hasta max_stock o, sin máximo, hasta 1.5 × reorder_point.
// Prioridad 1 = mayor déficit relativo.
func (l *Ledger) Replenishment(ctx context.Context, sc entity.SecurityContext, requested string) ([]ReplenishmentSuggestion, error) {
	tenantID, empty := dto.ScopeTenant(sc, requested)
	if empty || tenantID == "" {
		return []ReplenishmentSuggestion{}, nil
	}
	active := true
	views, _, err := l.store.Products().List(ctx, repository.ProductFilter{TenantID: tenantID, Active: &active},
		repository.Page{Limit: 10000})
	if err != nil {
		return nil, fmt.Errorf("reposición: %w", err)
	}
	out := make([]ReplenishmentSuggestion, 0)
	for _, v := range views {
		if !v.NeedsReorder() {
			continue
		}
		rp := v.MinStock
		if v.ReorderPoint != nil {
			rp = *v.ReorderPoint
		}
		target := v.MaxStock
		if target <= 0 {
			target = rp + rp/2
		}
		qty := target - v.TotalQuantity
		if qty < 0 {
			qty = 0
		}
		out = append(out, ReplenishmentSuggestion{
			ProductID: v.ID, SKU: v.SKU, Name: v.Name, TotalQuantity: v.TotalQuantity,
			ReorderPoint: rp, MaxStock: v.MaxStock, SuggestedQty: qty,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return deficit(out[i]) > deficit(out[j])
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}

func deficit(s ReplenishmentSuggestion) float64 {
	if s.ReorderPoint == 0 {
		return 0
	}
	return float64(s.ReorderPoint-s.TotalQuantity) / float64(s.ReorderPoint)
}
