package output

import (
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/executor"
	"github.com/abdul-hamid-achik/hitstudio/packages/history"
)

// Formatter renders CLI results
type Formatter interface {
	FormatOutcome(out executor.Outcome, captures map[string]any)
	FormatHistory(records []history.Record)
	FormatStats(stats history.Stats)
	FormatEnvironments(environments []*env.Environment, activeID string)
	FormatError(err error)
}

// NewFormatter returns the formatter called name ("console" or "json").
func NewFormatter(name string, w io.Writer, noColor, verbose bool) (Formatter, error) {
	switch name {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithNoColor(noColor), WithVerbose(verbose)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", name)
	}
}
