package controller

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	m "sieve.dev/pkg/sieve/internal/model"
)

// renderRejections tabulates the rejected candidates per stage and reason in
// pipeline order.
func renderRejections(report m.Report) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Stage", "Rejected"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, stage := range m.Stages {
		table.Append([]string{string(stage), strconv.Itoa(report.RejectedBy[stage])})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Generated %d", report.Generated),
		strconv.Itoa(report.Rejected()),
	})

	table.Render()

	if len(report.RejectedFor) > 0 {
		reasons := make([]string, 0, len(report.RejectedFor))
		for reason := range report.RejectedFor {
			reasons = append(reasons, string(reason))
		}

		sort.Strings(reasons)

		buf.WriteString("\nRejected by reason:\n")

		for _, reason := range reasons {
			fmt.Fprintf(&buf, "  %-18s %d\n", reason, report.RejectedFor[m.Reason(reason)])
		}
	}

	return buf.String()
}

// renderSurvivors lists the accepted tests with the lines they add.
func renderSurvivors(report m.Report) string {
	if len(report.Survivors) == 0 {
		return "No candidate survived the filtration.\n"
	}

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Test", "Strategy", "Temperature", "New lines", "New files"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	added := 0

	for _, survivor := range report.Survivors {
		table.Append([]string{
			survivor.Candidate.Label(),
			survivor.Candidate.Strategy,
			strconv.FormatFloat(survivor.Candidate.Temperature, 'f', 2, 64),
			strconv.Itoa(survivor.LinesAdded),
			strconv.Itoa(len(survivor.FilesNewlyCovered)),
		})

		added += survivor.LinesAdded
	}

	table.SetFooter([]string{fmt.Sprintf("Survivors %d", len(report.Survivors)), "", "", strconv.Itoa(added), ""})
	table.Render()

	return buf.String()
}

func renderReport(report m.Report) string {
	return fmt.Sprintf("\nBaseline: %d covered line(s), %d generation request(s)\n\n%s\n%s",
		report.BaselineLines, report.Requests, renderRejections(report), renderSurvivors(report))
}
