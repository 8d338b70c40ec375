package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/owif/web-portal/internal/api"
	"github.com/owif/web-portal/internal/logging"
	"github.com/owif/web-portal/internal/metrics"
	"github.com/owif/web-portal/internal/site"
)

func newServeCmd() *cobra.Command {
	var variant, addr string
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the preview server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				if err := cfg.Server.SetAddr(addr); err != nil {
					return fmt.Errorf("--addr: %w", err)
				}
			}

			m := metrics.New()
			b, err := site.NewBuilder(cfg, variant, m)
			if err != nil {
				return err
			}
			server := api.NewServer(cfg, b, m)
			logger := logging.NewLogger("cli")

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if err := server.Rebuild(ctx); err != nil {
				logger.WithError(err).Warn("Initial build failed, serving pages from source only")
			}

			if watch {
				if cfg.Site.Source == "" {
					logger.Warn("--watch needs site.source; embedded pages never change")
				} else if err := server.Watch(ctx, cfg.Site.Source); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Previewing variant %s on http://%s\n", b.Variant, cfg.Server.Addr())
			fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")
			return server.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "", "Variant to preview (default from config)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address host:port")
	cmd.Flags().BoolVar(&watch, "watch", false, "Rebuild and reload pages when the source changes")
	return cmd
}
