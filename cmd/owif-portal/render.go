package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/owif/web-portal/internal/nav"
)

func newRenderCmd() *cobra.Command {
	var variant, location string
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the navigation bar for a location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			v, name, err := cfg.Variant(variant)
			if err != nil {
				return err
			}

			bar := nav.Build(v.Entries, location, v.Options())
			w := cmd.OutOrStdout()

			switch {
			case opts.JSONOutput:
				return json.NewEncoder(w).Encode(map[string]interface{}{
					"variant": name,
					"path":    nav.NormalizePath(location),
					"links":   bar.Links,
				})
			case asHTML:
				fmt.Fprintln(w, bar.HTML())
				return nil
			}

			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			for _, l := range bar.Links {
				marker := " "
				if l.Active {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", marker, l.Label, l.Href)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&location, "path", "", "Current location, for example /config")
	cmd.Flags().StringVar(&variant, "variant", "", "Variant to render (default from config)")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Print the markup instead of a listing")
	cmd.MarkFlagRequired("path")
	return cmd
}
