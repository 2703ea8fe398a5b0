package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"fitreport/internal/report"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
)

// renderReport writes a human-readable view of a report.
func renderReport(w io.Writer, rep *report.Report, now time.Time) {
	unit := "steps"
	if rep.Kind == report.KindSleep {
		unit = "min"
	}

	title, _ := rep.Narrative["title"].(string)
	if title == "" {
		title = strings.ToUpper(string(rep.Kind[:1])) + string(rep.Kind[1:]) + " report"
	}
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "%s to %s  (%s, generated %s)\n\n",
		rep.Window.Start, rep.Window.End, rep.RequestID, humanize.RelTime(rep.GeneratedAt, now, "ago", "from now"))

	fmt.Fprintf(w, "  Assessment:    %s\n", rep.Assessment)
	fmt.Fprintf(w, "  Total:         %s %s\n", humanize.Comma(int64(rep.Stats.Total)), unit)
	fmt.Fprintf(w, "  Daily average: %s %s\n", humanize.CommafWithDigits(rep.Stats.Average, 1), unit)
	fmt.Fprintf(w, "  Range:         %s - %s %s\n",
		humanize.Comma(int64(rep.Stats.Min)), humanize.Comma(int64(rep.Stats.Max)), unit)
	fmt.Fprintf(w, "  Days with data: %d of %d (%s%%)\n",
		rep.Stats.DaysWithData, len(rep.Series), humanize.FtoaWithDigits(rep.Completeness, 1))
	if rep.PeakDay != "" {
		fmt.Fprintf(w, "  Peak day:      %s\n", rep.PeakDay)
	}
	if rep.SourceTier != "" {
		fmt.Fprintf(w, "  Source:        %s\n", rep.SourceTier)
	}

	fmt.Fprintln(w, "\nDaily")
	for _, p := range rep.Series {
		fmt.Fprintf(w, "  %s  %10s\n", p.Date, humanize.Comma(int64(p.Value)))
	}

	if text, ok := rep.Narrative["sleep_assessment"].(string); ok && text != "" {
		fmt.Fprintf(w, "\n%s\n", text)
	}
	writeList(w, "Insights", rep.Narrative["insights"])
	writeList(w, "Recommendations", rep.Narrative["recommendations"])

	if len(rep.Warnings) > 0 {
		warnings := append([]string(nil), rep.Warnings...)
		sort.Strings(warnings)
		fmt.Fprintf(w, "\n%s:\n", english.Plural(len(warnings), "warning", "warnings"))
		for _, warning := range warnings {
			fmt.Fprintf(w, "  ! %s\n", warning)
		}
	}
}

func writeList(w io.Writer, heading string, v any) {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", heading)
	for _, item := range items {
		fmt.Fprintf(w, "  - %v\n", item)
	}
}
