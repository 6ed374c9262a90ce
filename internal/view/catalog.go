package view

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"hyperiq/internal/catalog"
)

// RenderCatalog lists every instrument of cat, one per row, in fetch order.
func RenderCatalog(cat catalog.Catalog) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Category", "Name", "Symbol").
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, inst := range cat.All() {
		t.Row(inst.Category.String(), inst.Name, inst.Key)
	}
	return t.String() + "\n"
}
