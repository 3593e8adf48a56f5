package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	"github.com/msto63/euklid/internal/euklid/render"
	"github.com/msto63/euklid/internal/euklid/store"
)

var (
	historyKind   string
	historyFailed bool
	historySince  time.Duration
	historySearch string
	historyLimit  int
	historyVacuum bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and maintain recorded calculations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, s *session) error {
			filter := store.Filter{
				Kind:       store.Kind(historyKind),
				FailedOnly: historyFailed,
				Search:     historySearch,
				Limit:      historyLimit,
			}
			if historySince > 0 {
				filter.Since = time.Now().Add(-historySince)
			}
			return s.show(s.local.History(ctx, filter))
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded calculation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, s *session) error {
			rec, err := s.local.HistoryEntry(ctx, args[0])
			if err != nil {
				return s.show(nil, err)
			}
			if s.printer.Format == render.FormatText {
				return s.printer.Print([]*store.Record{rec})
			}
			return s.printer.Print(rec)
		})
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count recorded calculations by kind",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, s *session) error {
			return s.show(s.local.HistoryStats(ctx))
		})
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention settings now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, s *session) error {
			removed, err := s.local.PruneHistory(ctx, retention(s.cfg))
			if err != nil {
				return s.show(nil, err)
			}
			fmt.Fprintf(s.printer.Out, "removed %d records\n", removed)
			if historyVacuum {
				return s.local.VacuumHistory(ctx)
			}
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "only this kind: parse, calculate, evaluate, lcd, compare, decimal, todecimal")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "only failed calculations")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only calculations newer than this, e.g. 24h")
	historyCmd.Flags().StringVar(&historySearch, "search", "", "only inputs containing this text")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of records")
	historyPruneCmd.Flags().BoolVar(&historyVacuum, "vacuum", false, "compact the database afterwards")

	historyCmd.AddCommand(historyShowCmd, historyStatsCmd, historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

// withHistory runs fn against a local session with history enabled
func withHistory(fn func(context.Context, *session) error) error {
	if remoteFlag != "" {
		return mdwerror.New("history is only available locally").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("history")
	}
	return withSession(func(s *session) error {
		if !s.local.HistoryEnabled() {
			return s.show(nil, s.local.PingHistory(context.Background()))
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return fn(ctx, s)
	})
}
