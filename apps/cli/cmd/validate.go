package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/model"
	hithttp "github.com/abdul-hamid-achik/hitstudio/packages/http"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <request-file>...",
	Short: "Check request definitions without sending them",
	Long: `Resolve request definitions against an environment without sending
them. Reports files that fail to load, placeholders left unresolved and
JSON bodies that would be sent as text.

Uses the same environment selection as send.

Examples:
  hitstudio validate users.yaml
  hitstudio validate *.yaml --env-file .env`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func init() {
	validateCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("HITSTUDIO_ENV_FILE", ""), "Environment file (.json, .yaml or .env) (env: HITSTUDIO_ENV_FILE)")
	validateCmd.Flags().StringVarP(&envNameFlag, "env-name", "e", getEnvString("HITSTUDIO_ENV", ""), "Stored environment to use instead of the active one (env: HITSTUDIO_ENV)")
	rootCmd.AddCommand(validateCmd)
}

func validateCommand(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	environment, _, err := selectEnvironment(ws)
	if err != nil {
		return err
	}

	assembler := hithttp.NewAssembler(env.NewResolver(), hithttp.WithDeleteBody(appConfig.GetAllowDeleteBody()))

	hasErrors := false
	for _, file := range args {
		def, err := model.LoadRequestFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}

		problems := checkRequest(assembler.Assemble(def, environment))
		if len(problems) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
			continue
		}
		hasErrors = true
		fmt.Fprintf(cmd.OutOrStdout(), "Problems in %s:\n", file)
		for _, p := range problems {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", p)
		}
	}

	if hasErrors {
		return &exitError{code: ExitParseError, err: fmt.Errorf("validation failed")}
	}
	return nil
}

// checkRequest lists what would be sent differently than written.
func checkRequest(r *hithttp.WireRequest) []string {
	var problems []string

	unresolved := make(map[string]bool)
	collect := func(s string) {
		for _, name := range env.Unresolved(s) {
			unresolved[name] = true
		}
	}
	collect(r.URL)
	for _, v := range r.Params {
		collect(v)
	}
	for _, v := range r.Headers {
		collect(v)
	}
	switch body := r.Body.(type) {
	case nil:
	case string:
		collect(body)
	default:
		if data, err := json.Marshal(body); err == nil {
			collect(string(data))
		}
	}

	names := make([]string, 0, len(unresolved))
	for name := range unresolved {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		problems = append(problems, fmt.Sprintf("unresolved placeholder {{%s}}", name))
	}

	if r.Degraded {
		problems = append(problems, "body is not valid JSON and will be sent as text")
	}
	if err := hithttp.ValidateURL(r.BuildURL()); err != nil {
		problems = append(problems, err.Error())
	}
	return problems
}
