package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitstudio/packages/history"
)

// WritePrometheus writes a history summary in the Prometheus text
// exposition format. Transport failures are counted under status "0".
func WritePrometheus(w io.Writer, records []history.Record, now time.Time) {
	stats := history.Summarize(records)
	ts := now.UnixMilli()

	fmt.Fprintf(w, "# HELP hitstudio_requests_total Requests recorded in history\n")
	fmt.Fprintf(w, "# TYPE hitstudio_requests_total gauge\n")
	fmt.Fprintf(w, "hitstudio_requests_total %d %d\n", stats.Count, ts)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP hitstudio_requests_failed_total Recorded requests that did not succeed\n")
	fmt.Fprintf(w, "# TYPE hitstudio_requests_failed_total gauge\n")
	fmt.Fprintf(w, "hitstudio_requests_failed_total %d %d\n", stats.Errors, ts)
	fmt.Fprintln(w)

	if stats.Count > 0 {
		fmt.Fprintf(w, "# HELP hitstudio_request_duration_ms Request duration in milliseconds\n")
		fmt.Fprintf(w, "# TYPE hitstudio_request_duration_ms gauge\n")
		quantiles := []struct {
			label string
			value time.Duration
		}{
			{"min", stats.Min},
			{"0.50", stats.P50},
			{"0.95", stats.P95},
			{"0.99", stats.P99},
			{"max", stats.Max},
		}
		for _, q := range quantiles {
			fmt.Fprintf(w, "hitstudio_request_duration_ms{quantile=\"%s\"} %d %d\n", q.label, q.value.Milliseconds(), ts)
		}
		fmt.Fprintf(w, "hitstudio_request_duration_ms{quantile=\"avg\"} %.2f %d\n", float64(stats.Mean)/float64(time.Millisecond), ts)
		fmt.Fprintln(w)
	}

	byStatus := make(map[int]int)
	byHost := make(map[string]int)
	for _, r := range records {
		byStatus[r.Status]++
		byHost[hostOf(r.URL)]++
	}

	fmt.Fprintf(w, "# HELP hitstudio_requests_by_status Requests by response status\n")
	fmt.Fprintf(w, "# TYPE hitstudio_requests_by_status gauge\n")
	codes := make([]int, 0, len(byStatus))
	for code := range byStatus {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "hitstudio_requests_by_status{status=\"%d\"} %d %d\n", code, byStatus[code], ts)
	}

	if len(byHost) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "# HELP hitstudio_requests_by_host Requests by target host\n")
		fmt.Fprintf(w, "# TYPE hitstudio_requests_by_host gauge\n")
		for _, host := range sortedKeys(byHost) {
			fmt.Fprintf(w, "hitstudio_requests_by_host{host=\"%s\"} %d %d\n", escapeLabel(host), byHost[host], ts)
		}
	}
}

func hostOf(rawURL string) string {
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// escapeLabel makes s safe as a Prometheus label value.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
