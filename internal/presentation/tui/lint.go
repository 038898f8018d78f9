package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/lattice/pkg/spec"
)

// FormatLintReport renders a lint report with severity colors: red for
// errors, yellow for warnings, green for a clean graph.
func FormatLintReport(report *spec.Report) string {
	p := termenv.ColorProfile()
	var sb strings.Builder

	if len(report.Findings) == 0 {
		ok := termenv.String("graph is clean").Foreground(p.Color("#4ade80"))
		sb.WriteString(ok.String())
		sb.WriteString("\n")
		return sb.String()
	}

	for _, f := range report.Findings {
		tag := termenv.String(f.Code).Foreground(p.Color("#facc15"))
		if f.Severity != spec.SeverityWarning {
			tag = termenv.String(f.Code).Foreground(p.Color("#f87171")).Bold()
		}
		if f.NodeID != "" {
			sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", tag, f.NodeID, f.Message))
		} else {
			sb.WriteString(fmt.Sprintf("  %s  %s\n", tag, f.Message))
		}
	}

	errs, warns := 0, 0
	for _, f := range report.Findings {
		if f.Severity == spec.SeverityWarning {
			warns++
		} else {
			errs++
		}
	}
	sb.WriteString(fmt.Sprintf("\n%d error(s), %d warning(s)\n", errs, warns))
	return sb.String()
}
