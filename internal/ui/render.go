// Package ui renders policy and summary tables for the terminal.
package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/regsweep/regsweep/internal/policy"
	"github.com/regsweep/regsweep/internal/summary"
	"github.com/regsweep/regsweep/pkg/bytesize"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")).Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// RenderPolicyTable shows the effective per-image policy, for review before a
// run.
func RenderPolicyTable(policies []policy.EffectivePolicy) string {
	t := newTable("Image", "Days Old", "Keep Minimum")
	for _, p := range policies {
		t.Row(p.Target.String(), strconv.Itoa(p.Policy.DaysOld), strconv.Itoa(p.Policy.KeepMinimum))
	}
	return titleStyle.Render("Cleanup Configuration") + "\n" + t.Render()
}

// RenderRepositoryTable breaks the run down per repository.
func RenderRepositoryTable(report summary.Report) string {
	t := newTable("Repository", "Considered", "Kept", "Deleted", "Failed", "Errors")
	for _, repo := range report.Repositories {
		t.Row(
			repo.Repository,
			strconv.Itoa(repo.Counts.Considered),
			strconv.Itoa(repo.Counts.Kept),
			strconv.Itoa(repo.Counts.Deleted),
			strconv.Itoa(repo.Counts.FailedDeletes),
			strconv.Itoa(repo.Counts.Errors),
		)
	}
	return titleStyle.Render("Per-Repository Results") + "\n" + t.Render()
}

// RenderSummary shows the overall run totals.
func RenderSummary(report summary.Report) string {
	deletedLabel := "Tags deleted"
	reclaimedLabel := "Space reclaimed"
	if report.DryRun {
		deletedLabel = "Tags to delete (dry-run)"
		reclaimedLabel = "Space reclaimable (dry-run)"
	}

	t := newTable("Metric", "Count")
	t.Row("Repositories processed", strconv.Itoa(len(report.Repositories)))
	t.Row("Images processed", strconv.Itoa(len(report.Images)))
	t.Row("Tags considered", strconv.Itoa(report.Total.Considered))
	t.Row("Tags kept", strconv.Itoa(report.Total.Kept))
	t.Row(deletedLabel, strconv.Itoa(report.Total.Deleted))
	t.Row("Failed deletions", strconv.Itoa(report.Total.FailedDeletes))
	t.Row("Errors", strconv.Itoa(report.Total.Errors))
	t.Row(reclaimedLabel, bytesize.Format(report.Total.ReclaimedBytes))

	return titleStyle.Render("Overall Summary") + "\n" + t.Render()
}
