package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/scopegate/internal/config"
	httpserver "github.com/dropDatabas3/scopegate/internal/http"
	"github.com/dropDatabas3/scopegate/internal/observability/logger"
	"github.com/dropDatabas3/scopegate/internal/store"
	pgmigrations "github.com/dropDatabas3/scopegate/migrations/postgres"
)

const version = "0.3.0"

func main() {
	// .env opcional: en dev pisa el entorno antes de cargar config.
	_ = godotenv.Load()

	var cfgPath string

	root := &cobra.Command{
		Use:     "scopegate",
		Short:   "Servicio de políticas de scopes y consent OAuth2/OIDC",
		Version: version,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "ruta al archivo de configuración")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				Level:       "info",
				ServiceName: "scopegate",
				Version:     version,
			})
			defer logger.Sync()

			srv, err := httpserver.NewServer(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				logger.L().Info("shutting down", logger.String("signal", sig.String()))
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga el catálogo estándar (scopes, claim mappings, client demo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: "info", ServiceName: "scopegate"})
			defer logger.Sync()

			da, err := store.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer da.Close()

			if err := store.Seed(cmd.Context(), da); err != nil {
				return err
			}
			fmt.Println("seed ok")
			return nil
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones embebidas al Postgres configurado",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate requiere storage.driver=postgres (actual: %q)", cfg.Storage.Driver)
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: "info", ServiceName: "scopegate"})
			defer logger.Sync()

			st, err := store.NewPostgres(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(cmd.Context(), pgmigrations.FS); err != nil {
				return err
			}
			fmt.Println("migrations ok")
			return nil
		},
	}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Verifica conectividad con el storage configurado",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			da, err := store.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer da.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			if err := da.Ping(ctx); err != nil {
				return fmt.Errorf("ping falló: %w", err)
			}
			fmt.Println("ok")
			return nil
		},
	}

	root.AddCommand(serveCmd, seedCmd, migrateCmd, pingCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
