package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jwtpizza/pizza-e2e/internal/config"
	"github.com/jwtpizza/pizza-e2e/internal/mockapi"
	"github.com/jwtpizza/pizza-e2e/internal/orderjwt"
	"github.com/jwtpizza/pizza-e2e/internal/scenario"
)

func newServeCmd(v *viper.Viper, load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a scenario over HTTP",
		Long: `Serve answers JWT Pizza API calls from the chosen scenario until
interrupted. Requests the scenario does not declare get a 404.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().IntP("port", "p", 3000, "Port to listen on")
	cmd.Flags().StringP("scenario", "s", "purchase-with-login", "Scenario to serve")
	cmd.Flags().Bool("watch", false, "Reload the scenario when its directory changes")
	bindFlag(v, "server.port", cmd, "port")
	bindFlag(v, "scenario.name", cmd, "scenario")
	bindFlag(v, "scenario.watch", cmd, "watch")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	sc, err := scenario.Resolve(cfg.Scenario.Dir, cfg.Scenario.Name)
	if err != nil {
		return err
	}

	opts := mockapi.Options{
		Signer:      orderjwt.New(cfg.JWT.Secret, cfg.JWT.TTL),
		LogRequests: cfg.Logging.Requests,
	}
	if cfg.CORS.Enabled {
		opts.CORSOrigins = cfg.CORS.Origins
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}
	srv := mockapi.New(sc, opts)
	log.Printf("[pizzamock] scenario %q active (%d routes)", sc.Name, len(sc.Routes))

	if cfg.Scenario.Watch && cfg.Scenario.Dir != "" {
		r, err := mockapi.NewReloader(srv, cfg.Scenario.Dir, cfg.Scenario.Name)
		if err != nil {
			return err
		}
		go r.Run(ctx)
	}

	return srv.Run(ctx, cfg.Server.GetServerAddr(), cfg.Server.ShutdownTimeout)
}
