package cmd

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/reqctl/packages/core/config"
	"github.com/abdul-hamid-achik/reqctl/packages/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded invocations",
	Long: `List past reqctl invocations recorded in the local history database,
newest first.

Examples:
  reqctl history
  reqctl history --limit 10
  reqctl history stats
  reqctl history clear`,
	Args: cobra.NoArgs,
	RunE: historyListCommand,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show latency percentiles across recorded invocations",
	Args:  cobra.NoArgs,
	RunE:  historyStatsCommand,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded invocations",
	Args:  cobra.NoArgs,
	RunE:  historyClearCommand,
}

var (
	historyLimitFlag int
	historyDBFlag    string
)

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDBFlag, "db", getEnvString("REQCTL_HISTORY_DB", ""), "Path to history database (env: REQCTL_HISTORY_DB)")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Maximum number of entries to show (0 for all)")

	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func openHistoryStore() (*history.Store, error) {
	path := historyDBFlag
	if path == "" {
		// A broken config file must not take the history commands
		// down with it; fall back to defaults.
		fileConfig, err := config.LoadConfig("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: ignoring config: %v\n", err)
			fileConfig = config.DefaultConfig()
		}
		path = fileConfig.HistoryDB
	}
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return history.Open(path)
}

func historyListCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(historyLimitFlag)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing in history.")
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, e := range entries {
		status := green("ok")
		if e.ExitCode != 0 {
			status = red(fmt.Sprintf("exit %d", e.ExitCode))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-7s %s  [%s]  %dms  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Method, e.URL, e.ContentType, e.Duration.Milliseconds(), status)
	}

	return nil
}

func historyStatsCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Percentiles()
	if err != nil {
		return err
	}

	if stats.Count == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing in history.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Invocations: %d\n", stats.Count)
	fmt.Fprintf(cmd.OutOrStdout(), "Min:  %v\n", stats.Min)
	fmt.Fprintf(cmd.OutOrStdout(), "Max:  %v\n", stats.Max)
	fmt.Fprintf(cmd.OutOrStdout(), "Mean: %v\n", stats.Mean)
	fmt.Fprintf(cmd.OutOrStdout(), "P50:  %v\n", stats.P50)
	fmt.Fprintf(cmd.OutOrStdout(), "P90:  %v\n", stats.P90)
	fmt.Fprintf(cmd.OutOrStdout(), "P95:  %v\n", stats.P95)
	fmt.Fprintf(cmd.OutOrStdout(), "P99:  %v\n", stats.P99)

	return nil
}

func historyClearCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
	return nil
}
