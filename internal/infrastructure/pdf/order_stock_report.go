// Package pdf implementa la hoja de existencias de una orden de producción (reporte imprimible).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Orden + código        │  Estado + fecha de emisión   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ítem | Pedido | Pool orden | Pool general | Faltante  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Pedido / Disponible / Faltante / Despachado         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID de la orden                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
)

var _ inventory.ReportRenderer = (*OrderStockRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// OrderStockRenderer implementa inventory.ReportRenderer usando Maroto v2.
type OrderStockRenderer struct {
	printer *message.Printer
	now     func() time.Time
}

// NewOrderStockRenderer construye el renderer con formato numérico en español.
func NewOrderStockRenderer() *OrderStockRenderer {
	return &OrderStockRenderer{
		printer: message.NewPrinter(language.Spanish),
		now:     time.Now,
	}
}

// RenderOrderStock genera el PDF y devuelve sus bytes.
func (r *OrderStockRenderer) RenderOrderStock(_ context.Context, report *dto.OrderStockReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Existencias de orden "+report.OrderID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(r.headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, lr := range r.tableLineRows(report.Lines) {
		m.AddRows(lr)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(r.totalsRow(report))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (r *OrderStockRenderer) headerRow(report *dto.OrderStockReport) core.Row {
	status := "INCOMPLETA"
	statusColor := colorAlert
	switch {
	case report.OrderDispatched:
		status, statusColor = "DESPACHADA", colorPrimary
	case report.OrderComplete:
		status, statusColor = "COMPLETA", colorPrimary
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("Orden "+report.OrderID, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Código: "+nonEmpty(report.OrderCode, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("HOJA DE EXISTENCIAS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(status, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7, Color: statusColor,
			}),
			text.New("Emitida: "+r.now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
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
		h("Ítem", 3, align.Left),
		h("Pedido", 2, align.Right),
		h("Pool orden", 2, align.Right),
		h("Pool general", 2, align.Right),
		h("Faltante", 2, align.Right),
		h("Estado", 1, align.Center),
	)
}

func (r *OrderStockRenderer) tableLineRows(lines []dto.LineStockReport) []core.Row {
	result := make([]core.Row, 0, len(lines))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for _, l := range lines {
		state := "-"
		switch {
		case l.LineDispatched:
			state = "DESP"
		case l.LineComplete:
			state = "OK"
		}
		shortfall := col.New(2).Add(text.New(r.quantity(l.Shortfall), props.Text{
			Size: 8, Align: align.Right, Top: 1, Right: 1, Color: shortfallColor(l.Shortfall),
		}))
		result = append(result, row.New(7).Add(
			cell(l.ItemID, 3, align.Left),
			cell(r.quantity(l.QuantityOrdered), 2, align.Right),
			cell(r.quantity(l.OrderPoolOnHand), 2, align.Right),
			cell(r.quantity(l.GeneralPoolOnHand), 2, align.Right),
			shortfall,
			cell(state, 1, align.Center),
		))
	}
	return result
}

func (r *OrderStockRenderer) totalsRow(report *dto.OrderStockReport) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(30).Add(
		col.New(4),
		col.New(4).Add(
			label("Total pedido:"),
			label("Total disponible:"),
			label("Total faltante:"),
			label("Total despachado:"),
			label("Pendiente por despachar:"),
		),
		col.New(4).Add(
			value(r.quantity(report.TotalOrdered)),
			value(r.quantity(report.TotalAvailable)),
			value(r.quantity(report.TotalShortfall)),
			value(r.quantity(report.TotalDispatched)),
			value(r.quantity(report.TotalPending)),
		),
	)
}

func footerRow(report *dto.OrderStockReport) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(report.OrderID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Las cantidades se calculan a partir del libro de movimientos al momento de la emisión.", props.Text{
				Size: 7, Top: 4, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// quantity formatea una cantidad con separador de miles y hasta 3 decimales ("12.500,25").
func (r *OrderStockRenderer) quantity(d decimal.Decimal) string {
	s := d.Round(3).String()
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	n, err := strconv.ParseInt(strings.TrimPrefix(intPart, "-"), 10, 64)
	if err != nil {
		return s
	}
	out := r.printer.Sprintf("%d", n)
	if frac != "" {
		out += "," + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

func shortfallColor(d decimal.Decimal) *props.Color {
	if d.IsPositive() {
		return colorAlert
	}
	return colorGray
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
