package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/euklid/internal/euklid/render"
	"github.com/msto63/euklid/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		format, err := render.ParseFormat(outputFlag)
		if err != nil {
			return err
		}
		if format != render.FormatText {
			return (&render.Printer{Out: stdout, Format: format}).Print(info)
		}
		fmt.Fprintf(stdout, "euklid v%s\n", info.Version)
		fmt.Fprintf(stdout, "  API:        %s\n", info.API)
		fmt.Fprintf(stdout, "  Git Commit: %s\n", info.Commit)
		fmt.Fprintf(stdout, "  Build Date: %s\n", info.BuildDate)
		fmt.Fprintf(stdout, "  Go Version: %s\n", info.GoVersion)
		fmt.Fprintf(stdout, "  OS/Arch:    %s\n", info.Platform)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
