package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"fitreport/internal/usage"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
)

// usageCmd prints recorded generation token usage
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show text generation token usage recorded by past reports",
	Args:  cobra.NoArgs,
	RunE:  runUsage,
}

func runUsage(cmd *cobra.Command, args []string) error {
	if cfg.Report.UsageFile == "" {
		return fmt.Errorf("usage tracking is disabled (report.usage_file is empty)")
	}
	tracker, err := usage.NewTracker(cfg.Report.UsageFile)
	if err != nil {
		return err
	}
	stats := tracker.Stats()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s, %s tokens (%s in, %s out)\n",
		english.Plural(int(stats.Calls), "call", "calls"),
		humanize.Comma(stats.Total.Total), humanize.Comma(stats.Total.Input), humanize.Comma(stats.Total.Output))
	if events := tracker.Events(); len(events) > 0 {
		fmt.Fprintf(out, "Last call %s\n", humanize.Time(events[len(events)-1].Timestamp))
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeBreakdown(w, "MODEL", stats.ByModel)
	writeBreakdown(w, "REPORT", stats.ByReport)
	return w.Flush()
}

func writeBreakdown(w *tabwriter.Writer, heading string, counts map[string]usage.TokenCounts) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\n%s\tINPUT\tOUTPUT\tTOTAL\n", heading)
	for _, k := range keys {
		c := counts[k]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", k, humanize.Comma(c.Input), humanize.Comma(c.Output), humanize.Comma(c.Total))
	}
}
