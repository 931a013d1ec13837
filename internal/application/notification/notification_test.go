package notification_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/application/notification"
	"github.com/jhoicas/Boutique-api/internal/application/outbox"
	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
	"github.com/jhoicas/Boutique-api/internal/testutil"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []ports.Mail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, mail ports.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

func enqueue(t *testing.T, env *testutil.Env, m *entity.OutboxMessage) {
	t.Helper()
	require.NoError(t, env.Store.RunInTx(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		return outbox.Enqueue(ctx, uow, m)
	}))
}

func byKind(env *testutil.Env, kind string) []entity.OutboxMessage {
	var out []entity.OutboxMessage
	for _, m := range env.Store.Messages() {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// ─── Worker ──────────────────────────────────────────────────────────────────

func TestWorker_EntregaYMarcaEnviado(t *testing.T) {
	env := testutil.NewEnv(t)
	enqueue(t, env, outbox.TrialEnding("TENANT0001", []string{"a@mail.test"}, 3))
	mailer := &fakeMailer{}
	w := notification.NewWorker(env.Store, mailer, nil, notification.WorkerConfig{From: "noreply@boutique.test"}, env.Log.Zerolog())

	res, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "noreply@boutique.test", mailer.sent[0].From)
	assert.Equal(t, []string{"a@mail.test"}, mailer.sent[0].To)

	msgs := env.Store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, entity.OutboxSent, msgs[0].Status)
	assert.NotNil(t, msgs[0].SentAt)

	res, err = w.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Sent, "un mensaje enviado no se reenvía")
}

func TestWorker_ReintentaHastaElMaximo(t *testing.T) {
	env := testutil.NewEnv(t)
	enqueue(t, env, outbox.TrialEnding("TENANT0001", []string{"a@mail.test"}, 3))
	mailer := &fakeMailer{err: errors.New("smtp caído")}
	w := notification.NewWorker(env.Store, mailer, nil, notification.WorkerConfig{MaxAttempts: 3}, env.Log.Zerolog())

	for i := 0; i < 2; i++ {
		res, err := w.Drain(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, entity.OutboxPending, env.Store.Messages()[0].Status)
	}
	_, err := w.Drain(context.Background())
	require.NoError(t, err)
	m := env.Store.Messages()[0]
	assert.Equal(t, entity.OutboxFailed, m.Status)
	assert.Equal(t, 3, m.Attempts)
	assert.Equal(t, "smtp caído", m.LastError)

	res, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Failed+res.Sent)
}

func TestWorker_ReclamaMensajeAbandonadoEnProceso(t *testing.T) {
	env := testutil.NewEnv(t)
	enqueue(t, env, outbox.TrialEnding("TENANT0001", []string{"a@mail.test"}, 3))

	// otro worker lo tomó hace diez minutos y cayó antes de marcarlo
	require.NoError(t, env.Store.RunInTx(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		_, err := uow.Outbox().ClaimPending(ctx, 10, time.Now().Add(-10*time.Minute), time.Minute)
		return err
	}))
	require.Equal(t, entity.OutboxProcessing, env.Store.Messages()[0].Status)

	mailer := &fakeMailer{}
	w := notification.NewWorker(env.Store, mailer, nil, notification.WorkerConfig{ClaimLease: 5 * time.Minute}, env.Log.Zerolog())
	res, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, entity.OutboxSent, env.Store.Messages()[0].Status)
}

func TestWorker_DentroDelLeaseNoDuplica(t *testing.T) {
	env := testutil.NewEnv(t)
	enqueue(t, env, outbox.TrialEnding("TENANT0001", []string{"a@mail.test"}, 3))
	require.NoError(t, env.Store.RunInTx(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		_, err := uow.Outbox().ClaimPending(ctx, 10, time.Now(), time.Minute)
		return err
	}))

	mailer := &fakeMailer{}
	w := notification.NewWorker(env.Store, mailer, nil, notification.WorkerConfig{ClaimLease: 5 * time.Minute}, env.Log.Zerolog())
	res, err := w.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Sent)
	assert.Empty(t, mailer.sent)
}

// cancelMailer entrega el correo y cancela el contexto del worker, como un apagado a mitad de lote.
type cancelMailer struct {
	cancel context.CancelFunc
}

func (m *cancelMailer) Send(context.Context, ports.Mail) error {
	m.cancel()
	return nil
}

func TestWorker_MarcaEnviadoTrasCancelacion(t *testing.T) {
	env := testutil.NewEnv(t)
	enqueue(t, env, outbox.TrialEnding("TENANT0001", []string{"a@mail.test"}, 3))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := notification.NewWorker(env.Store, &cancelMailer{cancel: cancel}, nil, notification.WorkerConfig{}, env.Log.Zerolog())
	res, err := w.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, entity.OutboxSent, env.Store.Messages()[0].Status, "el envío confirmado no queda en processing")
}

// ─── Scanner ─────────────────────────────────────────────────────────────────

func scannerAt(env *testutil.Env, at time.Time) *notification.Scanner {
	return notification.NewScanner(env.Store, env.Manager, env.Guard, env.Tracker, env.Log.Zerolog(), func() time.Time { return at })
}

func setMinStock(t *testing.T, env *testutil.Env, p *entity.Product, min int64) {
	t.Helper()
	require.NoError(t, env.Store.RunInTx(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		p.MinStock = min
		return uow.Products().Update(ctx, p)
	}))
}

func TestScanner_AgrupaAlertasDeStockPorTipo(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	env.SetPlan(t, "TENANT0001", entity.PlanBasic)
	w := env.Warehouse(t, "TENANT0001", "Centre")
	env.User(t, "TENANT0001", "boss", entity.RoleSuperadmin, nil)
	low1 := env.Product(t, "TENANT0001", "LOW-1", 1, 2)
	low2 := env.Product(t, "TENANT0001", "LOW-2", 1, 2)
	out := env.Product(t, "TENANT0001", "OUT-1", 1, 2)
	ok := env.Product(t, "TENANT0001", "OK-1", 1, 2)
	for _, p := range []*entity.Product{low1, low2, out, ok} {
		setMinStock(t, env, p, 5)
	}
	env.Stock(t, low1.ID, w.ID, 2)
	env.Stock(t, low2.ID, w.ID, 4)
	env.Stock(t, out.ID, w.ID, 0)
	env.Stock(t, ok.ID, w.ID, 9)

	rep, err := scannerAt(env, testutil.Now).Scan(context.Background(), dto.SendNotificationsRequest{Stock: true})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.StockAlerts)

	lowMsgs := byKind(env, entity.NotifyStockLow)
	require.Len(t, lowMsgs, 1)
	assert.Equal(t, []string{"boss@mail.test"}, lowMsgs[0].Recipients)
	assert.Contains(t, lowMsgs[0].Body, "LOW-1")
	assert.Contains(t, lowMsgs[0].Body, "LOW-2")
	assert.NotContains(t, lowMsgs[0].Body, "OK-1")
	outMsgs := byKind(env, entity.NotifyStockOut)
	require.Len(t, outMsgs, 1)
	assert.Contains(t, outMsgs[0].Body, "OUT-1")
}

func TestScanner_FinDePruebaUnaVez(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	at := testutil.Now.AddDate(0, 0, 7)

	rep, err := scannerAt(env, at).Scan(context.Background(), dto.SendNotificationsRequest{Subscription: true})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Lifecycle)
	msgs := byKind(env, entity.NotifyTrialEnding)
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"contact@TENANT0001.test"}, msgs[0].Recipients, "sin superadmin se usa el email de la entreprise")
	assert.Contains(t, msgs[0].Subject, "7")

	rep, err = scannerAt(env, at).Scan(context.Background(), dto.SendNotificationsRequest{Subscription: true})
	require.NoError(t, err)
	assert.Zero(t, rep.Lifecycle)
	assert.Len(t, byKind(env, entity.NotifyTrialEnding), 1)
}

func TestScanner_FueraDeLosDiasNoAvisa(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")

	rep, err := scannerAt(env, testutil.Now.AddDate(0, 0, 5)).Scan(context.Background(), dto.SendNotificationsRequest{Subscription: true})
	require.NoError(t, err)
	assert.Zero(t, rep.Lifecycle)
}

func TestScanner_ExpiraVencidas(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	require.NoError(t, env.Store.RunInTx(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		s, err := uow.Subscriptions().GetForUpdate(ctx, "TENANT0001")
		if err != nil {
			return err
		}
		end := testutil.Now.Add(-time.Hour)
		s.EndAt = &end
		s.TrialEndAt = nil
		return uow.Subscriptions().Update(ctx, s)
	}))

	rep, err := scannerAt(env, testutil.Now).Scan(context.Background(), dto.SendNotificationsRequest{Subscription: true})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Expired)
	s, err := env.Store.Subscriptions().GetByTenant(context.Background(), "TENANT0001")
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionExpired, s.Status)
}

func TestScanner_AvisoDeLimiteUnaVezPorMes(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	env.SetPlan(t, "TENANT0001", entity.PlanFree)
	env.Warehouse(t, "TENANT0001", "Centre") // 1/1 boutiques

	rep, err := scannerAt(env, testutil.Now).Scan(context.Background(), dto.SendNotificationsRequest{Subscription: true})
	require.NoError(t, err)
	require.Equal(t, 1, rep.LimitWarning)
	msgs := byKind(env, entity.NotifyLimitWarning)
	require.Len(t, msgs, 1)
	assert.True(t, strings.Contains(msgs[0].Subject, "95%"), msgs[0].Subject)

	rep, err = scannerAt(env, testutil.Now.AddDate(0, 0, 2)).Scan(context.Background(), dto.SendNotificationsRequest{Subscription: true})
	require.NoError(t, err)
	assert.Zero(t, rep.LimitWarning)

	rep, err = scannerAt(env, testutil.Now.AddDate(0, 1, 0)).Scan(context.Background(), dto.SendNotificationsRequest{Subscription: true})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.LimitWarning, "el mes siguiente vuelve a avisar")
}

func TestScanner_ResumenPorTenant(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Tenant(t, "TENANT0001", "Boutique A")
	env.Tenant(t, "TENANT0002", "Boutique B")

	rep, err := scannerAt(env, testutil.Now).Scan(context.Background(), dto.SendNotificationsRequest{Summary: true})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Tenants)
	assert.Equal(t, 2, rep.Summaries)
	for _, m := range byKind(env, entity.NotifySummary) {
		assert.Contains(t, m.Body, "Plan : Gratuit")
	}
}
