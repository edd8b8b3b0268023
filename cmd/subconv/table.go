package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"subconv/internal/batch"
	"subconv/internal/history"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const maxDetailColumn = 60

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderRunSummary tabulates the per-file outcomes of a finished run and
// appends the tallies.
func renderRunSummary(report batch.Report) string {
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		rows = append(rows, []string{
			r.Input.Name,
			r.OutputName(),
			string(r.Status),
			formatDuration(r.Duration),
			truncate(r.Detail, maxDetailColumn),
		})
	}
	tbl := renderTable(
		[]string{"Input", "Output", "Status", "Time", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
	return fmt.Sprintf("%s\n%s", tbl, tallyLine(report.Succeeded, report.Failed, report.Skipped))
}

func renderHistoryRuns(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Dir,
			fmt.Sprintf("%s -> %s", run.SourceExt, run.TargetExt),
			fmt.Sprintf("%d", run.Succeeded),
			fmt.Sprintf("%d", run.Failed),
			run.Outcome(),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Directory", "Formats", "OK", "Failed", "Outcome"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func renderHistoryResults(results []history.FileResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Seq),
			r.Input,
			r.Output,
			r.Status,
			formatDuration(r.Duration),
			truncate(r.Detail, maxDetailColumn),
		})
	}
	return renderTable(
		[]string{"#", "Input", "Output", "Status", "Time", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func tallyLine(succeeded, failed, skipped int) string {
	line := fmt.Sprintf("%d converted, %d failed", succeeded, failed)
	if skipped > 0 {
		line += fmt.Sprintf(", %d skipped", skipped)
	}
	return line
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
