package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/abdul-hamid-achik/hitstudio/packages/core/env"
	"github.com/abdul-hamid-achik/hitstudio/packages/core/executor"
	"github.com/abdul-hamid-achik/hitstudio/packages/history"
	"github.com/fatih/color"
)

const maxBodyLen = 4000

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatOutcome(out executor.Outcome, captures map[string]any) {
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s %s\n", bold(out.Request.Method), out.Request.URL)
	if out.Request.Degraded {
		fmt.Fprintf(f.writer, "  %s\n", yellow("body is not valid JSON, sent as text"))
	}

	if f.verbose {
		writeMap(f.writer, "  > ", out.Request.Params)
		writeMap(f.writer, "  > ", out.Request.Headers)
	}

	if out.Response == nil {
		fmt.Fprintf(f.writer, "  %s %v\n", red("x"), out.Err)
		return
	}

	resp := out.Response
	fmt.Fprintf(f.writer, "  %s %s\n",
		statusColor(resp.Status)(fmt.Sprintf("%d %s", resp.Status, resp.StatusText)),
		cyan(fmt.Sprintf("(%dms, %s)", resp.ElapsedMs, formatSize(resp.SizeBytes))),
	)

	if f.verbose {
		writeMap(f.writer, "  < ", resp.Headers)
	}

	if body := formatBody(resp.Data); body != "" {
		fmt.Fprintf(f.writer, "\n%s\n", body)
	}

	if len(captures) > 0 {
		fmt.Fprintf(f.writer, "\n  Captures:\n")
		for _, name := range sortedKeys(captures) {
			fmt.Fprintf(f.writer, "    %s = %v\n", name, captures[name])
		}
	}
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) FormatHistory(records []history.Record) {
	dim := color.New(color.Faint).SprintFunc()

	if len(records) == 0 {
		fmt.Fprintf(f.writer, "%s\n", dim("No history"))
		return
	}

	for _, r := range records {
		status := "ERR"
		if r.Status != history.StatusTransportError {
			status = fmt.Sprintf("%d", r.Status)
		}
		fmt.Fprintf(f.writer, "%s  %s %-6s %s %s\n",
			dim(r.Timestamp.Local().Format("2006-01-02 15:04:05")),
			statusColor(r.Status)(fmt.Sprintf("%3s", status)),
			r.Method,
			r.URL,
			dim(fmt.Sprintf("%dms", r.ElapsedMs)),
		)
		if f.verbose && r.Error != "" {
			fmt.Fprintf(f.writer, "    %s\n", r.Error)
		}
	}
}

func (f *ConsoleFormatter) FormatStats(stats history.Stats) {
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s\n", bold("History"))
	fmt.Fprintf(f.writer, "  Requests: %d\n", stats.Count)
	fmt.Fprintf(f.writer, "  Errors:   %d (%.1f%%)\n", stats.Errors, stats.ErrorRate()*100)
	if stats.Count == 0 {
		return
	}
	fmt.Fprintf(f.writer, "  Latency:  min %dms, p50 %dms, p95 %dms, p99 %dms, max %dms\n",
		stats.Min.Milliseconds(),
		stats.P50.Milliseconds(),
		stats.P95.Milliseconds(),
		stats.P99.Milliseconds(),
		stats.Max.Milliseconds(),
	)
}

func (f *ConsoleFormatter) FormatEnvironments(environments []*env.Environment, activeID string) {
	green := color.New(color.FgGreen).SprintFunc()

	if len(environments) == 0 {
		fmt.Fprintf(f.writer, "No environments\n")
		return
	}
	for _, e := range environments {
		marker := " "
		if e.ID == activeID {
			marker = green("*")
		}
		fmt.Fprintf(f.writer, "%s %s (%d variables)\n", marker, e.Name, len(e.Variables))
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("hitstudio"), version)
}

func statusColor(status int) func(a ...any) string {
	switch {
	case status >= 200 && status < 300:
		return color.New(color.FgGreen).SprintFunc()
	case status >= 300 && status < 400:
		return color.New(color.FgCyan).SprintFunc()
	case status >= 400 && status < 500:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgRed).SprintFunc()
	}
}

func formatBody(data any) string {
	var s string
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		s = v
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			s = fmt.Sprintf("%v", v)
		} else {
			s = string(b)
		}
	}
	if len(s) > maxBodyLen {
		return s[:maxBodyLen] + "..."
	}
	return s
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func writeMap(w io.Writer, prefix string, m map[string]string) {
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(w, "%s%s: %s\n", prefix, k, m[k])
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrorKind names the error class of an outcome for display.
func ErrorKind(err error) string {
	var upstream *executor.UpstreamError
	var transport *executor.TransportError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &upstream):
		return "upstream"
	case errors.As(err, &transport):
		return "transport"
	default:
		return "unknown"
	}
}
