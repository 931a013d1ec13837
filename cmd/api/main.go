package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Boutique-api/internal/application/dto"
	"github.com/jhoicas/Boutique-api/internal/bootstrap"
	httpRouter "github.com/jhoicas/Boutique-api/internal/interfaces/http"
	"github.com/jhoicas/Boutique-api/pkg/config"
	"github.com/jhoicas/Boutique-api/pkg/logger"

	_ "github.com/jhoicas/Boutique-api/docs"
)

// @title						Boutique API
// @version					1.0
// @description				Inventario y facturación multi-entreprise para boutiques.
// @BasePath					/api
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	svc, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización")
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error().Err(err).Msg("cierre de conexiones")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 * 1024 * 1024,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Boutique API",
	}))

	httpRouter.Router(app, svc.Router)

	svc.Worker.Start(ctx)
	go scanLoop(ctx, svc, cfg.Notify.Interval)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := svc.Worker.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del worker de outbox")
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// scanLoop ejecuta todas las familias de avisos cada interval. interval <= 0 lo desactiva
// (el cron externo llama a cmd/notify).
func scanLoop(ctx context.Context, svc *bootstrap.App, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rep, err := svc.Scanner.Scan(ctx, dto.SendNotificationsRequest{})
			if err != nil {
				svc.Log.Error().Err(err).Msg("ciclo de notificaciones")
				continue
			}
			svc.Log.Info().Interface("report", rep).Msg("ciclo de notificaciones completado")
		}
	}
}
