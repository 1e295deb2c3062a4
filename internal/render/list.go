package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Dizabanik/droll/internal/entities/roll"
)

// Items renders one row per item with its chain IDs
func Items(items []*roll.Item) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		chains := make([]string, 0, len(it.Chains))
		for _, c := range it.Chains {
			chains = append(chains, c.ID)
		}
		rows = append(rows, []string{it.ID, it.Name, strings.Join(chains, ", ")})
	}
	return listTable([]string{"ID", "Name", "Chains"}, rows)
}

// History renders past chain results, one row each, in the order given
func History(results []*roll.ChainResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.RolledAt.Format(time.DateTime),
			r.ItemID,
			r.ChainID,
			strconv.Itoa(r.GrandTotal),
			r.BreakdownString(),
		})
	}
	return listTable([]string{"Rolled", "Item", "Chain", "Total", "Breakdown"}, rows)
}

func listTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#874BFD"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
