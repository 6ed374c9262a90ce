package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"hyperiq/internal/aggregate"
	"hyperiq/internal/coordinator"
)

// ErrorHeader introduces the error notification of a snapshot.
const ErrorHeader = "The following errors occurred while fetching data:\n\n"

// Terminal renders snapshots as tables on a writer.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer

	titleStyle  lipgloss.Style
	headerStyle lipgloss.Style
	borderStyle lipgloss.Style
	gainStyle   lipgloss.Style
	lossStyle   lipgloss.Style
	dimStyle    lipgloss.Style
}

// NewTerminal creates a presenter writing to out. Colours follow what out supports.
func NewTerminal(out io.Writer) *Terminal {
	r := lipgloss.NewRenderer(out)
	return &Terminal{
		out:         out,
		titleStyle:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		headerStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("245")).Padding(0, 1),
		borderStyle: r.NewStyle().Foreground(lipgloss.Color("240")),
		gainStyle:   r.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1),
		lossStyle:   r.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1),
		dimStyle:    r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Present implements coordinator.Presenter
func (t *Terminal) Present(s coordinator.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.out, t.Render(s))
}

// Render returns the text Present writes for s.
func (t *Terminal) Render(s coordinator.Snapshot) string {
	var b strings.Builder

	b.WriteString(t.section("Current Prices", t.priceTable(s.Prices.Rows)))
	b.WriteString(t.section("Commodities", t.growthTable(s.Commodities.Rows)))
	b.WriteString(t.section("Stocks (Short-term)", t.growthTable(s.ShortStocks.Rows)))
	b.WriteString(t.section("Stocks (Long-term)", t.growthTable(s.LongStocks.Rows)))

	if errs := s.Errors(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Message
		}
		b.WriteString(ErrorHeader)
		b.WriteString(strings.Join(msgs, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString(t.dimStyle.Render("Data updated: " + s.UpdatedAt.Format("15:04:05")))
	b.WriteString("\n")
	return b.String()
}

func (t *Terminal) section(title, body string) string {
	return t.titleStyle.Render(title) + "\n" + body + "\n\n"
}

func (t *Terminal) priceTable(rows []aggregate.PriceRow) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Label(), r.PriceFormatted, r.Change()}
	}

	return t.newTable(cells, func(row, col int) lipgloss.Style {
		if col == 2 {
			return t.signStyle(rows[row].Change24hPct)
		}
		return lipgloss.NewStyle().Padding(0, 1)
	}).Headers("Asset", "Current Price (USD)", "24h Change").String()
}

func (t *Terminal) growthTable(rows []aggregate.GrowthRow) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Name, r.Growth(), r.Reason.String()}
	}

	return t.newTable(cells, func(row, col int) lipgloss.Style {
		if col == 1 {
			return t.signStyle(rows[row].GrowthPct)
		}
		return lipgloss.NewStyle().Padding(0, 1)
	}).Headers("Name", "Growth Forecast", "Reason").String()
}

func (t *Terminal) newTable(cells [][]string, cell func(row, col int) lipgloss.Style) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(t.borderStyle).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return t.headerStyle
			}
			return cell(row, col)
		})
}

func (t *Terminal) signStyle(v float64) lipgloss.Style {
	switch {
	case v > 0:
		return t.gainStyle
	case v < 0:
		return t.lossStyle
	default:
		return lipgloss.NewStyle().Padding(0, 1)
	}
}
