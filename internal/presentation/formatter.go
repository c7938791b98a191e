package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Format selects the output encoding
type Format string

const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat validates a --format flag value
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatTable:
		return Format(s), nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or table)", s)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	aliasStyle  = cellStyle.Faint(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatJSON writes v as indented JSON
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatFactories writes registered names
func (f *Formatter) FormatFactories(dtos []FactoryDTO, format Format) error {
	if format == FormatJSON {
		return f.FormatJSON(dtos)
	}
	rows := make([][]string, len(dtos))
	for i, d := range dtos {
		rows[i] = []string{d.Name, d.Factory, d.Product}
	}
	t := newTable([]string{"NAME", "FACTORY", "PRODUCT"}, rows)
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case row >= 0 && row < len(dtos) && dtos[row].Alias:
			return aliasStyle
		default:
			return cellStyle
		}
	})
	return f.render(t)
}

// FormatAliases writes configured aliases
func (f *Formatter) FormatAliases(dtos []AliasDTO, format Format) error {
	if format == FormatJSON {
		return f.FormatJSON(dtos)
	}
	rows := make([][]string, len(dtos))
	for i, d := range dtos {
		rows[i] = []string{d.Alias, d.Target}
	}
	return f.render(newTable([]string{"ALIAS", "TARGET"}, rows))
}

// FormatResolve writes the outcome of a colon list lookup
func (f *Formatter) FormatResolve(dto ResolveDTO, format Format) error {
	if format == FormatJSON {
		return f.FormatJSON(dto)
	}
	_, err := fmt.Fprintln(f.writer, dto.Factory)
	return err
}

// FormatExpressions writes expression rows
func (f *Formatter) FormatExpressions(dtos []ExpressionDTO, format Format) error {
	if format == FormatJSON {
		return f.FormatJSON(dtos)
	}
	rows := make([][]string, len(dtos))
	for i, d := range dtos {
		rows[i] = []string{
			d.Owner,
			d.Name,
			d.Status,
			d.ValueType,
			strconv.Itoa(int(d.DeltaInterval)),
			d.Expression,
			d.Comment,
		}
	}
	return f.render(newTable([]string{"OWNER", "NAME", "STATUS", "TYPE", "DELTA", "EXPRESSION", "COMMENT"}, rows))
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func (f *Formatter) render(t *table.Table) error {
	_, err := fmt.Fprintln(f.writer, t.Render())
	return err
}
