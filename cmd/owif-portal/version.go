package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=..."
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// VersionInfo holds version information for the binary
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	BuildArch string `json:"build_arch"`
}

var info = VersionInfo{
	Version:   version,
	Commit:    commit,
	BuildDate: buildDate,
	BuildArch: runtime.GOOS + "/" + runtime.GOARCH,
}

func setVersionTemplate(cmd *cobra.Command) {
	cmd.SetVersionTemplate(fmt.Sprintf(`{{.Name}} {{.Version}}
  Commit:    %s
  Built:     %s
  Arch:      %s
`, info.Commit, info.BuildDate, info.BuildArch))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of owif-portal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if getOptions(cmd).JSONOutput {
				return json.NewEncoder(out).Encode(info)
			}
			fmt.Fprintf(out, "owif-portal %s\n", info.Version)
			fmt.Fprintf(out, "  Commit:    %s\n", info.Commit)
			fmt.Fprintf(out, "  Built:     %s\n", info.BuildDate)
			fmt.Fprintf(out, "  Arch:      %s\n", info.BuildArch)
			return nil
		},
	}
}
