// Comando send_notifications: una pasada del despachador de avisos, pensado para cron.
//
//	notify --stock --subscription --summary   (sin banderas = todas)
package main

import (
	"context"
	"time"

	"github.com/spf13/pflag"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/bootstrap"
	"github.com/jhoicas/Boutique-api/pkg/config"
	"github.com/jhoicas/Boutique-api/pkg/logger"
)

func main() {
	var req dto.SendNotificationsRequest
	pflag.BoolVar(&req.Stock, "stock", false, "alertas de stock bajo y agotado")
	pflag.BoolVar(&req.Subscription, "subscription", false, "vencimientos, expiraciones y avisos de límite")
	pflag.BoolVar(&req.Summary, "summary", false, "resumen semanal")
	all := pflag.Bool("all", false, "todas las familias")
	drain := pflag.Duration("drain", 30*time.Second, "tiempo máximo para vaciar el outbox tras la pasada")
	pflag.Parse()
	if *all {
		req = dto.SendNotificationsRequest{}
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})

	ctx := context.Background()
	svc, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización")
	}
	defer svc.Close()

	rep, err := svc.Scanner.Scan(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("send_notifications")
	}
	log.Info().
		Int("tenants", rep.Tenants).
		Int("stock_alerts", rep.StockAlerts).
		Int("lifecycle", rep.Lifecycle).
		Int("limit_warnings", rep.LimitWarning).
		Int("summaries", rep.Summaries).
		Int("expired", rep.Expired).
		Msg("pasada de notificaciones completada")

	drainCtx, cancel := context.WithTimeout(ctx, *drain)
	defer cancel()
	for drainCtx.Err() == nil {
		res, err := svc.Worker.Drain(drainCtx)
		if err != nil {
			log.Error().Err(err).Msg("vaciado del outbox")
			break
		}
		if res.Sent+res.Failed == 0 {
			break
		}
	}
}
