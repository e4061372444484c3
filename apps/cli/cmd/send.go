package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hitstudio/packages/capture"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/executor"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/model"
	hithttp "github.com/abdul-hamid-achik/hitstudio/packages/http"
	"github.com/abdul-hamid-achik/hitstudio/packages/output"
	"github.com/abdul-hamid-achik/hitstudio/packages/proxy"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var sendCmd = &cobra.Command{
	Use:   "send <request-file>",
	Short: "Resolve and send a request definition",
	Long: `Resolve a request definition (.json or .yaml) against an environment
and send it through the forwarding proxy. The result is added to history.

Examples:
  hitstudio send users.yaml
  hitstudio send users.yaml --env-name staging
  hitstudio send login.json --env-file .env --capture token=body.token
  hitstudio send users.yaml --proxy http://localhost:4000/proxy --timeout 5s
  hitstudio send users.yaml --watch`,
	Args: cobra.ExactArgs(1),
	RunE: sendCommand,
}

var (
	envFileFlag  string
	envNameFlag  string
	proxyFlag    string
	timeoutFlag  string
	captureFlags []string
	watchFlag    bool
	tabFlag      string
)

func init() {
	sendCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("HITSTUDIO_ENV_FILE", ""), "Environment file (.json, .yaml or .env) (env: HITSTUDIO_ENV_FILE)")
	sendCmd.Flags().StringVarP(&envNameFlag, "env-name", "e", getEnvString("HITSTUDIO_ENV", ""), "Stored environment to use instead of the active one (env: HITSTUDIO_ENV)")
	sendCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("HITSTUDIO_PROXY", ""), "Proxy endpoint (env: HITSTUDIO_PROXY)")
	sendCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("HITSTUDIO_TIMEOUT", ""), "Deadline for the send, e.g. 30s (default: none) (env: HITSTUDIO_TIMEOUT)")
	sendCmd.Flags().StringArrayVarP(&captureFlags, "capture", "c", nil, "Capture a response value into the environment: name=path (repeatable)")
	sendCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-send when the request or environment file changes")
	sendCmd.Flags().StringVar(&tabFlag, "tab", "default", "Tab id the send is tracked under")
}

func sendCommand(cmd *cobra.Command, args []string) error {
	path := args[0]

	formatter, err := output.NewFormatter(outputFlag, cmd.OutOrStdout(), appConfig.GetNoColor(), verboseFlag)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}

	captures, err := parseCaptures(captureFlags)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}

	timeout := appConfig.TimeoutDuration()
	if timeoutFlag != "" {
		timeout, err = time.ParseDuration(timeoutFlag)
		if err != nil {
			return &exitError{code: ExitUsageError, err: fmt.Errorf("invalid timeout: %w", err)}
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	controller := newController(ws, timeout)

	sendOnce := func() error {
		def, err := model.LoadRequestFile(path)
		if err != nil {
			return &exitError{code: ExitParseError, err: err}
		}

		environment, stored, err := selectEnvironment(ws)
		if err != nil {
			return err
		}

		out := controller.Send(ctx, tabFlag, def, environment)

		var captured map[string]any
		if out.Record != nil && len(captures) > 0 {
			captured = capture.Apply(*out.Record, captures, environment)
			if stored && len(captured) > 0 {
				if err := ws.catalog.Update(ctx, *environment); err != nil {
					logger.Sugar().Warnf("saving captured values to %s: %v", environment.Name, err)
				}
			}
		}

		formatter.FormatOutcome(out, captured)
		return outcomeError(out)
	}

	err = sendOnce()
	if !watchFlag {
		return err
	}
	if err != nil && !isOutcomeError(err) {
		formatter.FormatError(err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watched := []string{path}
	if envFileFlag != "" {
		watched = append(watched, envFileFlag)
	}
	return watchFiles(ctx, cmd, watched, func() {
		if err := sendOnce(); err != nil && !isOutcomeError(err) {
			formatter.FormatError(err)
		}
	}, formatter)
}

func newController(ws *workspace, timeout time.Duration) *executor.Controller {
	resolver := env.NewResolver(env.WithWarnFunc(func(format string, args ...any) {
		logger.Sugar().Warnf(format, args...)
	}))

	endpoint := appConfig.ProxyEndpoint
	if proxyFlag != "" {
		endpoint = proxyFlag
	}

	dispatcher := proxy.NewClient(
		proxy.WithEndpoint(endpoint),
		proxy.WithRateLimit(appConfig.RateLimit),
		proxy.WithLogger(logger),
	)

	return executor.NewController(dispatcher,
		executor.WithAssembler(hithttp.NewAssembler(resolver, hithttp.WithDeleteBody(appConfig.GetAllowDeleteBody()))),
		executor.WithLedger(ws.ledger),
		executor.WithLogger(logger),
		executor.WithTimeout(timeout),
		executor.WithRecordTransportErrors(appConfig.GetRecordTransportErrors()),
	)
}

// selectEnvironment returns the environment for this send and whether it
// lives in the catalog. An env file wins over a stored name, which wins
// over the active environment.
func selectEnvironment(ws *workspace) (*env.Environment, bool, error) {
	switch {
	case envFileFlag != "":
		environment, err := env.LoadEnvironmentFile(envFileFlag)
		if err != nil {
			return nil, false, &exitError{code: ExitParseError, err: err}
		}
		return environment, false, nil
	case envNameFlag != "":
		environment, ok := ws.catalog.FindByName(envNameFlag)
		if !ok {
			return nil, false, &exitError{code: ExitUsageError, err: fmt.Errorf("%w: %s", env.ErrEnvironmentNotFound, envNameFlag)}
		}
		return environment, true, nil
	default:
		environment := ws.catalog.Active()
		return environment, environment != nil, nil
	}
}

func parseCaptures(flags []string) ([]capture.Capture, error) {
	captures := make([]capture.Capture, 0, len(flags))
	for _, f := range flags {
		name, expr, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid capture %q: expected name=path", f)
		}
		c, err := capture.Parse(name, expr)
		if err != nil {
			return nil, err
		}
		captures = append(captures, c)
	}
	return captures, nil
}

func outcomeError(out executor.Outcome) error {
	if out.Err == nil {
		return nil
	}
	var upstream *executor.UpstreamError
	if errors.As(out.Err, &upstream) {
		return &exitError{code: ExitUpstreamError, err: out.Err, silent: true}
	}
	return &exitError{code: ExitNetworkError, err: out.Err, silent: true}
}

func watchFiles(ctx context.Context, cmd *cobra.Command, files []string, onChange func(), formatter output.Formatter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]bool)
	watchedDirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				formatter.FormatError(fmt.Errorf("failed to watch %s: %w", dir, err))
			}
			watchedDirs[dir] = true
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n")

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(event.Name)
			if !targets[name] || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.ErrOrStderr(), "\nFile changed: %s\n", event.Name)
				onChange()
				fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}
