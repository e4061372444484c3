package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/config"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new hitstudio workspace",
	Long: `Initialize a new hitstudio workspace in the current directory.

This creates:
  - hitstudio.yaml  - Configuration file with the defaults spelled out
  - example.yaml    - Example request definition
  - example.env     - Example environment for the request

Examples:
  hitstudio init
  hitstudio init --force`,
	Args: cobra.NoArgs,
	// init must work next to a broken config it is about to replace
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

const exampleEnv = `# Variables for example.yaml
baseUrl=https://httpbin.org
token=change-me
`

func exampleRequest() model.RequestDefinition {
	return model.RequestDefinition{
		ID:     "example",
		Name:   "Create a user",
		Method: "POST",
		URL:    "{{baseUrl}}/anything/users",
		Params: []model.KeyValue{
			{Key: "trace", Value: "{{$guid}}", Active: true},
		},
		Headers: []model.KeyValue{
			{Key: "Accept", Value: "application/json", Active: true},
		},
		BodyType: model.BodyRaw,
		RawType:  model.RawJSON,
		Body:     "{\n  \"name\": \"{{$randomFullName}}\",\n  \"email\": \"{{$randomEmail}}\",\n  \"createdAt\": \"{{$isoTimestamp}}\"\n}",
		AuthType: model.AuthBearer,
		AuthData: model.AuthData{Token: "{{token}}"},
	}
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "hitstudio.yaml")
	requestFile := filepath.Join(cwd, "example.yaml")
	envFile := filepath.Join(cwd, "example.env")

	if !forceInit {
		for _, f := range []string{configFile, requestFile, envFile} {
			if _, err := os.Stat(f); err == nil {
				return &exitError{code: ExitUsageError, err: fmt.Errorf("file already exists: %s (use --force to overwrite)", f)}
			}
		}
	}

	if err := config.DefaultConfig().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	requestYAML, err := yaml.Marshal(exampleRequest())
	if err != nil {
		return err
	}
	if err := os.WriteFile(requestFile, requestYAML, 0644); err != nil {
		return fmt.Errorf("failed to create example request: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", requestFile)

	if err := os.WriteFile(envFile, []byte(exampleEnv), 0644); err != nil {
		return fmt.Errorf("failed to create example environment: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", envFile)

	fmt.Fprintln(cmd.OutOrStdout(), "\nStart the proxy with 'hitstudio proxy', then run 'hitstudio send example.yaml --env-file example.env'")
	return nil
}
