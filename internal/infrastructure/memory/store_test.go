package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/domain"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/memory"
)

func TestRunInTx_RollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore(time.Second)
	require.NoError(t, s.Tenants().Create(ctx, &entity.Tenant{ID: "T000000001", Name: "A", Active: true}))

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		require.NoError(t, uow.Warehouses().Create(ctx, &entity.Warehouse{TenantID: "T000000001", Name: "W"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := s.Warehouses().CountByTenant(ctx, "T000000001")
	require.NoError(t, err)
	assert.Zero(t, n, "la boutique creada en la transacción fallida no debe verse")
}

func TestRunInTx_CommitPublica(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore(0)
	err := s.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Tenants().Create(ctx, &entity.Tenant{ID: "T000000002", Name: "B", Active: true})
	})
	require.NoError(t, err)

	got, err := s.Tenants().GetByID(ctx, "T000000002")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "B", got.Name)
}

func TestRunInTx_DeadlineAborta(t *testing.T) {
	s := memory.NewStore(10 * time.Millisecond)
	err := s.RunInTx(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		if err := uow.Tenants().Create(ctx, &entity.Tenant{ID: "T000000003", Name: "C"}); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	})
	require.Error(t, err)
	got, _ := s.Tenants().GetByID(context.Background(), "T000000003")
	assert.Nil(t, got)
}

func TestSequence_NextCreaYIncrementa(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore(0)
	s.SeedSequence(entity.InvoiceSequence{WarehouseID: 7, Year: 2025, Month: 10, LastNumber: 12})

	n, err := s.Sequences().Next(ctx, 7, 2025, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(13), n)

	n, err = s.Sequences().Next(ctx, 7, 2025, 11)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "cada mes materializa su propia fila")
}

func TestUsage_EnsureArrastraAcumulado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore(0)
	oct := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	nov := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.Usage().Ensure(ctx, "T1", oct)
	require.NoError(t, err)
	require.NoError(t, s.Usage().IncrementInvoices(ctx, "T1", oct))
	require.NoError(t, s.Usage().IncrementInvoices(ctx, "T1", oct))

	u, err := s.Usage().Ensure(ctx, "T1", nov)
	require.NoError(t, err)
	assert.Zero(t, u.InvoicesThisPeriod)
	assert.Equal(t, int64(2), u.InvoicesTotal)

	again, err := s.Usage().Ensure(ctx, "T1", nov)
	require.NoError(t, err)
	assert.Equal(t, u.InvoicesTotal, again.InvoicesTotal)
}

func TestProduct_SKUDuplicado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore(0)
	require.NoError(t, s.Products().Create(ctx, &entity.Product{TenantID: "A", SKU: "SKU-1"}))
	err := s.Products().Create(ctx, &entity.Product{TenantID: "B", SKU: "SKU-1"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestOutbox_ClaimYMarcado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore(0)
	require.NoError(t, s.Outbox().Enqueue(ctx, &entity.OutboxMessage{ID: "m1", Kind: entity.NotifyTransfer}))

	now := time.Now()
	claimed, err := s.Outbox().ClaimPending(ctx, 10, now, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.NotNil(t, claimed[0].ClaimedAt)

	again, err := s.Outbox().ClaimPending(ctx, 10, now.Add(30*time.Second), time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again, "un mensaje en proceso no se entrega dos veces")

	require.NoError(t, s.Outbox().MarkSent(ctx, "m1", time.Now()))
	assert.Equal(t, entity.OutboxSent, s.Messages()[0].Status)
}

func TestOutbox_LeaseVencidoSeReclama(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore(0)
	require.NoError(t, s.Outbox().Enqueue(ctx, &entity.OutboxMessage{ID: "m1", Kind: entity.NotifyTransfer}))
	now := time.Now()

	_, err := s.Outbox().ClaimPending(ctx, 10, now, time.Minute)
	require.NoError(t, err)

	// el worker cae sin marcar: dentro del lease nadie lo toma, después sí
	again, err := s.Outbox().ClaimPending(ctx, 10, now.Add(59*time.Second), time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)

	again, err = s.Outbox().ClaimPending(ctx, 10, now.Add(2*time.Minute), time.Minute)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "m1", again[0].ID)
	assert.Equal(t, now.Add(2*time.Minute), *again[0].ClaimedAt)

	require.NoError(t, s.Outbox().MarkSent(ctx, "m1", now))
	again, err = s.Outbox().ClaimPending(ctx, 10, now.Add(time.Hour), time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again, "un mensaje enviado no se reclama")
}
