package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/output"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage stored environments",
	Long: `Store environments in the workspace and choose the active one.

Examples:
  hitstudio env import staging.yaml
  hitstudio env import .env --name local
  hitstudio env use staging
  hitstudio env use --clear
  hitstudio env list`,
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored environments",
	Args:  cobra.NoArgs,
	RunE:  envListCommand,
}

var envImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store an environment file (.json, .yaml or .env)",
	Args:  cobra.ExactArgs(1),
	RunE:  envImportCommand,
}

var envUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Select the active environment",
	Args:  cobra.MaximumNArgs(1),
	RunE:  envUseCommand,
}

var (
	envImportName string
	envUseClear   bool
)

func init() {
	envImportCmd.Flags().StringVar(&envImportName, "name", "", "Name to store the environment under (default: from the file)")
	envUseCmd.Flags().BoolVar(&envUseClear, "clear", false, "Clear the active environment")

	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envImportCmd)
	envCmd.AddCommand(envUseCmd)
}

func envListCommand(cmd *cobra.Command, args []string) error {
	formatter, err := output.NewFormatter(outputFlag, cmd.OutOrStdout(), appConfig.GetNoColor(), verboseFlag)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	formatter.FormatEnvironments(ws.catalog.List(), ws.catalog.ActiveID())
	return nil
}

func envImportCommand(cmd *cobra.Command, args []string) error {
	environment, err := env.LoadEnvironmentFile(args[0])
	if err != nil {
		return &exitError{code: ExitParseError, err: err}
	}
	if envImportName != "" {
		environment.Name = envImportName
	}
	if environment.Name == "" {
		base := filepath.Base(args[0])
		environment.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	if _, exists := ws.catalog.FindByName(environment.Name); exists {
		return &exitError{code: ExitUsageError, err: fmt.Errorf("environment %q already exists", environment.Name)}
	}

	id, err := ws.catalog.Add(cmd.Context(), *environment)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d variables) as %s\n", environment.Name, len(environment.Variables), id)
	return nil
}

func envUseCommand(cmd *cobra.Command, args []string) error {
	if !envUseClear && len(args) == 0 {
		return &exitError{code: ExitUsageError, err: fmt.Errorf("environment name is required (or pass --clear)")}
	}

	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	if envUseClear {
		return ws.catalog.SetActive(cmd.Context(), "")
	}

	environment, ok := ws.catalog.FindByName(args[0])
	if !ok {
		return &exitError{code: ExitUsageError, err: fmt.Errorf("%w: %s", env.ErrEnvironmentNotFound, args[0])}
	}
	if err := ws.catalog.SetActive(cmd.Context(), environment.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Active environment: %s\n", environment.Name)
	return nil
}
