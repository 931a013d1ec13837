// Package notification despacha el outbox y ejecuta las pasadas periódicas de avisos.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/internal/domain/entity"
	"github.com/jhoicas/Boutique-api/internal/domain/repository"
)

// WorkerConfig parámetros del drenado del outbox.
type WorkerConfig struct {
	From         string
	BatchSize    int
	MaxAttempts  int
	PollInterval time.Duration
	// ClaimLease tiempo tras el cual un mensaje en processing sin marcar se vuelve a tomar.
	ClaimLease time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.ClaimLease <= 0 {
		c.ClaimLease = 5 * time.Minute
	}
	return c
}

// Worker entrega los mensajes del outbox ya confirmados. El envío nunca ocurre dentro
// de la transacción que los encoló.
type Worker struct {
	store   repository.Store
	mailer  ports.Mailer
	metrics ports.Metrics
	cfg     WorkerConfig
	log     zerolog.Logger
	now     func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker construye el worker.
func NewWorker(store repository.Store, mailer ports.Mailer, metrics ports.Metrics, cfg WorkerConfig, log zerolog.Logger) *Worker {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Worker{store: store, mailer: mailer, metrics: metrics, cfg: cfg.withDefaults(), log: log, now: time.Now}
}

// DrainResult resultado de un lote.
type DrainResult struct {
	Sent   int
	Failed int
}

// Drain toma un lote de pendientes y los entrega. Un fallo de envío deja el mensaje
// pendiente hasta MaxAttempts; después queda en failed.
func (w *Worker) Drain(ctx context.Context) (DrainResult, error) {
	var (
		res   DrainResult
		batch []*entity.OutboxMessage
	)
	err := w.store.RunInTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		batch, err = uow.Outbox().ClaimPending(ctx, w.cfg.BatchSize, w.now(), w.cfg.ClaimLease)
		return err
	})
	if err != nil {
		return res, err
	}
	// El marcado sobrevive a la cancelación: un mensaje enviado no debe quedar en processing.
	mark := context.WithoutCancel(ctx)
	for _, m := range batch {
		mail := ports.Mail{From: w.cfg.From, To: m.Recipients, CC: m.CC, Subject: m.Subject, Body: m.Body}
		if err := w.mailer.Send(ctx, mail); err != nil {
			final := m.Attempts+1 >= w.cfg.MaxAttempts
			if merr := w.store.Outbox().MarkFailed(mark, m.ID, err.Error(), final); merr != nil {
				w.log.Error().Err(merr).Str("id", m.ID).Msg("no se pudo marcar el mensaje")
			}
			ev := w.log.Warn()
			if final {
				ev = w.log.Error()
			}
			ev.Err(err).Str("id", m.ID).Str("kind", m.Kind).Int("attempt", m.Attempts+1).Bool("final", final).Msg("envío fallido")
			res.Failed++
			continue
		}
		if err := w.store.Outbox().MarkSent(mark, m.ID, w.now()); err != nil {
			w.log.Error().Err(err).Str("id", m.ID).Msg("no se pudo marcar el mensaje")
		}
		w.metrics.NotificationSent(m.Kind)
		res.Sent++
	}
	return res, nil
}

// Start arranca el bucle de sondeo en segundo plano.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)
	w.log.Info().Int("batch", w.cfg.BatchSize).Dur("poll", w.cfg.PollInterval).Msg("worker de outbox iniciado")
}

// Stop detiene el bucle y espera al lote en curso o al fin de ctx.
func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop(ctx context.Context) {
	defer w.wg.Done()
	t := time.NewTicker(w.cfg.PollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			for {
				res, err := w.Drain(ctx)
				if err != nil {
					if ctx.Err() == nil {
						w.log.Error().Err(err).Msg("drenado del outbox")
					}
					break
				}
				// Los fallidos vuelven a pending; se reintentan en el siguiente tick.
				if res.Failed > 0 || res.Sent < w.cfg.BatchSize {
					break
				}
			}
		}
	}
}
