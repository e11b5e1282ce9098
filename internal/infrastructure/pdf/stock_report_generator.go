// Package pdf genera el reporte de existencias por bodega.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Código + nombre de bodega │ Fecha de corte          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Unidad | Cantidad | Reorden | Alerta │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: productos / unidades                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var _ inventory.StockReportGenerator = (*MarotoReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// MarotoReportGenerator implementa inventory.StockReportGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateStockReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateStockReport(_ context.Context, report *inventory.StockReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Existencias "+report.Warehouse.Code, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	if len(report.Lines) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin existencias registradas.", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	for _, r := range tableRows(report.Lines) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report *inventory.StockReport) core.Row {
	w := report.Warehouse
	return row.New(18).Add(
		col.New(8).Add(
			text.New(w.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Bodega "+w.Code+addressSuffix(w.Address), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("REPORTE DE EXISTENCIAS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Corte: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Unidad", 1, align.Center),
		h("Cantidad", 2, align.Right),
		h("Reorden", 2, align.Right),
		h("", 1, align.Center),
	)
}

func tableRows(lines []inventory.StockReportLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		alert := ""
		if l.LowStock {
			alert = "BAJO"
		}
		out = append(out, row.New(7).Add(
			col.New(2).Add(text.New(l.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(l.UnitOfMeasure, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(formatThousands(l.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatThousands(l.ReorderThreshold), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(alert, props.Text{Style: fontstyle.Bold, Size: 7, Align: align.Center, Top: 1, Color: colorAlert})),
		))
	}
	return out
}

func totalsRow(report *inventory.StockReport) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(label("Productos:"), label("Unidades:")),
		col.New(3).Add(
			value(strconv.Itoa(len(report.Lines))),
			value(formatThousands(report.TotalUnits)),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func addressSuffix(addr string) string {
	if addr == "" {
		return ""
	}
	return "  |  " + addr
}

// formatThousands inserta puntos de miles. Ej: 25000 → "25.000", -1500 → "-1.500".
func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	l := len(s)
	if l <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, l+l/3)
	for i, c := range []byte(s) {
		if i > 0 && (l-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
