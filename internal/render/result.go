// Package render formats chain results for the terminal
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Dizabanik/droll/internal/entities/roll"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	skippedStyle = cellStyle.Foreground(lipgloss.Color("#999999"))
	critStyle    = cellStyle.Bold(true).Foreground(lipgloss.Color("#F25D94"))

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)
)

var headers = []string{"Step", "Formula", "Dice", "Mod", "Total", "Type", "Notes"}

// ChainResult renders the result as a title, a table with one row per step
// and a boxed grand total
func ChainResult(title string, result *roll.ChainResult) string {
	rows := make([][]string, 0, len(result.StepResults))
	for _, r := range result.StepResults {
		rows = append(rows, stepRow(r))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#874BFD"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(result.StepResults) {
				return cellStyle
			}
			switch r := result.StepResults[row]; {
			case r.Skipped:
				return skippedStyle
			case r.WasCrit:
				return critStyle
			}
			return cellStyle
		})

	total := fmt.Sprintf("Total: %d", result.GrandTotal)
	if breakdown := result.BreakdownString(); breakdown != "" {
		total += "  (" + breakdown + ")"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		t.String(),
		totalStyle.Render(total),
	)
}

func stepRow(r *roll.StepResult) []string {
	if r.Skipped {
		return []string{r.Label, r.Formula, "-", "-", "-", category(r), "skipped"}
	}
	return []string{
		r.Label,
		r.Formula,
		dice(r.Rolls),
		signed(r.Modifier),
		strconv.Itoa(r.Total),
		category(r),
		notes(r),
	}
}

func dice(rolls []roll.RolledDie) string {
	if len(rolls) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(rolls))
	for _, d := range rolls {
		switch d.Role {
		case roll.DieRoleHope:
			parts = append(parts, fmt.Sprintf("H%d", d.Value))
		case roll.DieRoleFear:
			parts = append(parts, fmt.Sprintf("F%d", d.Value))
		case roll.DieRoleStandard:
			if d.Negative {
				parts = append(parts, fmt.Sprintf("-%d/d%d", d.Value, d.Sides))
				continue
			}
			parts = append(parts, fmt.Sprintf("%d/d%d", d.Value, d.Sides))
		default:
			parts = append(parts, fmt.Sprintf("%d/d%d", d.Value, d.Sides))
		}
	}
	return strings.Join(parts, " ")
}

func signed(n int) string {
	if n >= 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func category(r *roll.StepResult) string {
	if r.DamageCategory == "" || r.DamageCategory == roll.DamageCategoryNone {
		return ""
	}
	return r.DamageCategory
}

func notes(r *roll.StepResult) string {
	var out []string
	if r.Duality != nil {
		out = append(out, "with "+string(r.Duality.Outcome))
	}
	if r.WasCrit {
		out = append(out, "crit")
	} else if r.NaturalCrit {
		out = append(out, "nat 20")
	}
	if !r.IncludeInTotal {
		out = append(out, "not totalled")
	}
	return strings.Join(out, ", ")
}
