// Package analytics conteos agregados del tablero: facturación del mes, saldo pendiente
// y alertas de stock.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/inventory"
	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/quota"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// DashboardUseCase genera el resumen del mes en curso.
type DashboardUseCase struct {
	store repository.Store
	guard *subscription.Guard
	now   func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(store repository.Store, guard *subscription.Guard, now func() time.Time) *DashboardUseCase {
	if now == nil {
		now = time.Now
	}
	return &DashboardUseCase{store: store, guard: guard, now: now}
}

// GetSummary tablero del tenant (bandera analytics del plan).
//
// Tres consultas en paralelo:
//  1. Aggregate(mes)   → facturas, ingresos y saldo pendiente
//  2. Alerts           → filas en stock bajo y agotadas
//  3. conteos          → productos, boutiques y usuarios
func (uc *DashboardUseCase) GetSummary(ctx context.Context, sc entity.SecurityContext, requested string) (*dto.DashboardResponse, error) {
	tenantID, empty := dto.ScopeTenant(sc, requested)
	if empty || tenantID == "" {
		return nil, domain.NewValidation(map[string]string{"entreprise": "requerida para el tablero"})
	}
	if err := uc.guard.Admit(ctx, uc.store, tenantID, quota.Action{Verb: quota.VerbRead, Feature: quota.FeatureAnalytics}); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	type aggResult struct {
		agg repository.InvoiceAggregate
		err error
	}
	type alertResult struct {
		low, out int
		err      error
	}
	type countResult struct {
		products, warehouses, users int64
		err                         error
	}
	aggCh := make(chan aggResult, 1)
	alertCh := make(chan alertResult, 1)
	countCh := make(chan countResult, 1)

	go func() {
		agg, err := uc.store.Invoices().Aggregate(ctx, tenantID, monthStart)
		aggCh <- aggResult{agg, err}
	}()
	go func() {
		low, out, err := inventory.Alerts(ctx, uc.store.Stocks(), tenantID)
		alertCh <- alertResult{len(low), len(out), err}
	}()
	go func() {
		var r countResult
		if r.products, r.err = uc.store.Products().CountByTenant(ctx, tenantID); r.err == nil {
			if r.warehouses, r.err = uc.store.Warehouses().CountByTenant(ctx, tenantID); r.err == nil {
				r.users, r.err = uc.store.Users().CountByTenant(ctx, tenantID)
			}
		}
		countCh <- r
	}()

	agg, alerts, counts := <-aggCh, <-alertCh, <-countCh
	if agg.err != nil {
		return nil, fmt.Errorf("dashboard: facturas: %w", agg.err)
	}
	if alerts.err != nil {
		return nil, fmt.Errorf("dashboard: alertas: %w", alerts.err)
	}
	if counts.err != nil {
		return nil, fmt.Errorf("dashboard: conteos: %w", counts.err)
	}

	return &dto.DashboardResponse{
		InvoicesThisMonth: agg.agg.Count,
		RevenueThisMonth:  agg.agg.Revenue.Round(2),
		OutstandingTotal:  agg.agg.Outstanding.Round(2),
		LowStockRows:      alerts.low,
		OutOfStockRows:    alerts.out,
		Products:          counts.products,
		Warehouses:        counts.warehouses,
		Users:             counts.users,
		Period:            monthLabel(now),
	}, nil
}

// monthLabel etiqueta legible del mes, ej: "octobre 2025".
func monthLabel(t time.Time) string {
	months := [...]string{
		"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
