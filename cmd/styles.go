package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dbflute/dbflute-core-sub011/internal/schema"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).BorderStyle(lipgloss.DoubleBorder()).BorderBottom(true).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	labelStyle     = lipgloss.NewStyle().Width(14)
)

// renderSummary renders the counts of a snapshot for the terminal.
func renderSummary(snap *schema.Snapshot) string {
	var cols, fks, uqs, idxs, views int
	for _, t := range snap.Tables {
		cols += len(t.Columns)
		fks += len(t.ForeignKeys)
		uqs += t.UniqueKeys.Len()
		idxs += t.Indexes.Len()
		if t.Table.IsView() {
			views++
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", snap.Engine, snap.MainSchema.Identity())))
	b.WriteString("\n")
	row := func(label string, n int, extra string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(highlightStyle.Render(fmt.Sprintf("%d", n)))
		if extra != "" {
			b.WriteString(" " + dimStyle.Render(extra))
		}
		b.WriteString("\n")
	}
	row("Tables", len(snap.Tables), fmt.Sprintf("(%d views)", views))
	row("Columns", cols, "")
	row("Foreign keys", fks, "")
	row("Unique keys", uqs, "")
	row("Indexes", idxs, "")
	row("Procedures", len(snap.Procedures), "")
	return b.String()
}
