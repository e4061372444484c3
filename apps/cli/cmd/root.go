package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/config"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/db"
	"github.com/abdul-hamid-achik/hitstudio/packages/history"
	"github.com/abdul-hamid-achik/hitstudio/packages/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag    string
	databaseFlag  string
	noColorFlag   bool
	logLevelFlag  string
	logFormatFlag string
	outputFlag    string
	verboseFlag   bool
)

// loaded by PersistentPreRunE
var (
	appConfig *config.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "hitstudio",
	Short: "Send templated API requests from the terminal.",
	Long: `hitstudio resolves {{variables}} and {{$generators}} in a request
definition, sends it through a forwarding proxy, and keeps the last
requests in a local history.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		if !isOutcomeError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("HITSTUDIO_CONFIG", ""), "Path to config file (env: HITSTUDIO_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&databaseFlag, "db", getEnvString("HITSTUDIO_DB", ""), "Path to the workspace database (env: HITSTUDIO_DB)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("HITSTUDIO_NO_COLOR", false), "Disable colored output (env: HITSTUDIO_NO_COLOR)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", getEnvString("HITSTUDIO_LOG_LEVEL", ""), "Log level: debug, info, warn, error (env: HITSTUDIO_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", getEnvString("HITSTUDIO_LOG_FORMAT", ""), "Log format: console, json (env: HITSTUDIO_LOG_FORMAT)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", getEnvString("HITSTUDIO_OUTPUT", "console"), "Output format: console, json (env: HITSTUDIO_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show headers and extra detail")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(proxyCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return &exitError{code: ExitConfigError, err: fmt.Errorf("loading config: %w", err)}
	}

	overrides := &config.Config{
		Database: databaseFlag,
		Log: config.LogConfig{
			Level:  logLevelFlag,
			Format: logFormatFlag,
		},
	}
	if noColorFlag {
		overrides.NoColor = config.BoolPtr(true)
	}
	appConfig = cfg.Merge(overrides)

	l, err := logging.New(appConfig.Log, appConfig.GetNoColor())
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}
	logger = l
	return nil
}

// workspace is the persisted state shared by commands.
type workspace struct {
	store   *db.Store
	ledger  *history.Ledger
	catalog *env.Catalog
}

func openWorkspace(ctx context.Context) (*workspace, error) {
	store, err := db.Open(appConfig.Database)
	if err != nil {
		return nil, &exitError{code: ExitConfigError, err: err}
	}

	ws := &workspace{
		store:   store,
		ledger:  history.NewLedger(history.WithCapacity(appConfig.HistoryLimit), history.WithStore(store)),
		catalog: env.NewCatalog(env.WithStore(store)),
	}
	if err := ws.ledger.Load(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := ws.catalog.Load(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return ws, nil
}

func (w *workspace) Close() error {
	return w.store.Close()
}
