package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/owif/web-portal/internal/metrics"
	"github.com/owif/web-portal/internal/site"
)

func newBuildCmd() *cobra.Command {
	var variant, out, src string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Decorate the portal pages and write them to the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if out != "" {
				cfg.Site.Output = out
			}
			if src != "" {
				cfg.Site.Source = src
			}

			b, err := site.NewBuilder(cfg, variant, metrics.New())
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			rec, err := b.Build(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.JSONOutput {
				return json.NewEncoder(w).Encode(rec)
			}
			fmt.Fprintf(w, "Built variant %s into %s: %d pages, %d files copied (%dms)\n",
				rec.Variant, b.Output, rec.Pages, rec.Copied, rec.DurationMs)
			return nil
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "", "Variant to build (default from config)")
	cmd.Flags().StringVar(&out, "out", "", "Output directory")
	cmd.Flags().StringVar(&src, "src", "", "Source directory (default: embedded pages)")
	return cmd
}
