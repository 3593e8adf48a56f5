package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/msto63/euklid/internal/repl"
	"github.com/msto63/euklid/internal/tui"
	"github.com/msto63/euklid/pkg/core/version"
)

var noHistoryFile bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive prompt",
	Long: `Start the interactive prompt. Type expressions such as 1/2 + 3/4 and
use :help for commands. Typed lines are kept in ~/.euklid_history.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			historyFile := repl.DefaultHistoryFile()
			if noHistoryFile {
				historyFile = ""
			}
			return repl.Start(context.Background(), repl.Options{
				Calculator:  s.calc,
				Presenter:   s.local,
				History:     s.history(),
				Locale:      s.printer.Locale,
				Steps:       s.printer.Steps,
				Format:      s.printer.Format,
				Out:         s.printer.Out,
				HistoryFile: historyFile,
				Version:     version.Platform,
			})
		})
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the terminal user interface",
	Long: `Start the terminal user interface.

Views: calculate, LCD and compare, decimal conversion, history.

Keys:
  Tab / Shift+Tab  switch view
  Enter            compute
  Ctrl+S           toggle steps
  Ctrl+L           clear the view
  Ctrl+R           refresh history
  Ctrl+C / Esc     quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			target := "local"
			if remoteFlag != "" {
				target = remoteFlag
			}
			return tui.Run(tui.Options{
				Calculator: s.calc,
				Presenter:  s.local,
				Locale:     s.printer.Locale,
				Steps:      s.printer.Steps,
				History:    s.history(),
				Target:     target,
			})
		})
	},
}

func init() {
	replCmd.Flags().BoolVar(&noHistoryFile, "no-history-file", false, "do not read or write the line history file")
	rootCmd.AddCommand(replCmd, tuiCmd)
}
