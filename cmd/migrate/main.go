// Comando migrate: aplica las migraciones embebidas y siembra el catálogo de planes.
//
//	migrate up | down | steps N | version | force V
//	migrate up --seed-plans --plans config/plans.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/jhoicas/Boutique-api/internal/application/subscription"
	"github.com/jhoicas/Boutique-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Boutique-api/pkg/config"
	"github.com/jhoicas/Boutique-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})

	seed := pflag.Bool("seed-plans", false, "insertar o actualizar los planes tras migrar")
	plansFile := pflag.String("plans", cfg.Subscription.PlansFile, "archivo YAML del catálogo de planes")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "uso: migrate [flags] up|down|steps N|version|force V|seed")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), cfg, log, pflag.Args(), *seed, *plansFile); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string, seed bool, plansFile string) error {
	cmd := args[0]
	if cmd != "seed" {
		m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			return err
		}
		defer m.Close()
		switch cmd {
		case "up":
			err = m.Up()
		case "down":
			err = m.Down()
		case "steps", "force":
			if len(args) < 2 {
				return fmt.Errorf("%s requiere un número", cmd)
			}
			n, perr := strconv.Atoi(args[1])
			if perr != nil {
				return fmt.Errorf("%s: %w", cmd, perr)
			}
			if cmd == "steps" {
				err = m.Steps(n)
			} else {
				err = m.Force(n)
			}
		case "version":
			v, dirty, verr := m.Version()
			if verr != nil {
				return verr
			}
			log.Info().Uint("version", v).Bool("dirty", dirty).Msg("versión de esquema")
		default:
			return fmt.Errorf("comando desconocido %q", cmd)
		}
		if err != nil {
			return err
		}
		if !seed {
			return nil
		}
	}
	return seedPlans(ctx, cfg, log, plansFile)
}

func seedPlans(ctx context.Context, cfg *config.Config, log *logger.Logger, path string) error {
	plans, err := subscription.LoadPlansFile(path)
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	store := postgres.NewStore(pool, postgres.Options{Timeout: cfg.DB.TxTimeout, LockTimeout: cfg.DB.LockTimeout}, log)
	if err := subscription.Seed(ctx, store, plans); err != nil {
		return err
	}
	log.Info().Int("plans", len(plans)).Str("file", path).Msg("catálogo de planes sembrado")
	return nil
}
