package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the configured navigation variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.JSONOutput {
				return json.NewEncoder(w).Encode(map[string]interface{}{
					"default":  cfg.DefaultVariant,
					"variants": cfg.Variants,
				})
			}

			for _, name := range cfg.VariantNames() {
				v := cfg.Variants[name]
				suffix := ""
				if name == cfg.DefaultVariant {
					suffix = " (default)"
				}
				fmt.Fprintf(w, "%s%s\n", name, suffix)
				for _, e := range v.Entries {
					fmt.Fprintf(w, "  %-16s %s\n", e.Label, e.Href)
				}
			}
			return nil
		},
	}
}
