package cmd

import (
	"time"

	"github.com/abdul-hamid-achik/hitstudio/packages/history"
	"github.com/abdul-hamid-achik/hitstudio/packages/output"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the request history",
	Long: `Show the most recent requests, newest first, or summarize their latencies.

Examples:
  hitstudio history list
  hitstudio history list --limit 5 -o json
  hitstudio history stats
  hitstudio history clear`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded requests, newest first",
	Args:  cobra.NoArgs,
	RunE:  historyListCommand,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize latency and error rate across the history",
	Args:  cobra.NoArgs,
	RunE:  historyStatsCommand,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every history record",
	Args:  cobra.NoArgs,
	RunE:  historyClearCommand,
}

var (
	historyLimitFlag int
	prometheusFlag   bool
)

func init() {
	historyListCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", getEnvInt("HITSTUDIO_HISTORY_LIMIT", 0), "Show at most n records, 0 for all (env: HITSTUDIO_HISTORY_LIMIT)")

	historyStatsCmd.Flags().BoolVar(&prometheusFlag, "prometheus", false, "Write the summary in Prometheus text format")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func historyListCommand(cmd *cobra.Command, args []string) error {
	formatter, ws, err := historySetup(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	records := ws.ledger.Records()
	if historyLimitFlag > 0 && len(records) > historyLimitFlag {
		records = records[:historyLimitFlag]
	}
	formatter.FormatHistory(records)
	return nil
}

func historyStatsCommand(cmd *cobra.Command, args []string) error {
	formatter, ws, err := historySetup(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	records := ws.ledger.Records()
	if prometheusFlag {
		output.WritePrometheus(cmd.OutOrStdout(), records, time.Now())
		return nil
	}
	formatter.FormatStats(history.Summarize(records))
	return nil
}

func historyClearCommand(cmd *cobra.Command, args []string) error {
	_, ws, err := historySetup(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	n := ws.ledger.Len()
	if err := ws.ledger.Clear(cmd.Context()); err != nil {
		return err
	}
	logger.Sugar().Infof("cleared %d history records", n)
	return nil
}

func historySetup(cmd *cobra.Command) (output.Formatter, *workspace, error) {
	formatter, err := output.NewFormatter(outputFlag, cmd.OutOrStdout(), appConfig.GetNoColor(), verboseFlag)
	if err != nil {
		return nil, nil, &exitError{code: ExitUsageError, err: err}
	}
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return formatter, ws, nil
}
