// Package pdf genera la hoja de picking imprimible que acompaña al operario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Orden de origen + prioridad │ QR de la orden        │
//	│  Operario / estado / fecha de generación                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ubicación | SKU | Producto | Lote | Vence | Cant.    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: firmas de preparación y verificación                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

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

	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.PickListGenerator = (*MarotoPickListGenerator)(nil)

// MarotoPickListGenerator implementa ports.PickListGenerator usando Maroto v2.
type MarotoPickListGenerator struct{}

// NewMarotoPickListGenerator construye el generador.
func NewMarotoPickListGenerator() *MarotoPickListGenerator { return &MarotoPickListGenerator{} }

// Generate genera el PDF y devuelve sus bytes.
func (g *MarotoPickListGenerator) Generate(doc ports.PickListDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Hoja de picking "+doc.SourceOrderID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(doc.Lines) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(line.NewRow(8))
	m.AddRows(signatureRow())

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar hoja de picking: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: orden de origen, prioridad y operario (izq) y QR con el id de la orden de picking (der).
func headerRow(doc ports.PickListDocument) core.Row {
	return row.New(32).Add(
		col.New(9).Add(
			text.New("HOJA DE PICKING", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New("Orden "+doc.SourceOrderID, props.Text{
				Style: fontstyle.Bold, Size: 14, Top: 6,
			}),
			text.New(fmt.Sprintf("Prioridad: %d   |   Estado: %s", doc.Priority, doc.State), props.Text{
				Size: 9, Top: 15, Color: colorGray,
			}),
			text.New(fmt.Sprintf("Operario: %s   |   Generada: %s",
				nonEmpty(doc.WorkerName, "sin asignar"),
				doc.GeneratedAt,
			), props.Text{Size: 8, Top: 21, Color: colorGray}),
		),
		col.New(3).Add(code.NewQr(doc.PickingOrderID, props.Rect{
			Percent: 90,
			Center:  true,
		})),
	)
}

// tableHeaderRow: cabecera de la tabla, ordenada como se recorre la bodega.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ubicación", 2, align.Left),
		h("SKU", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Lote", 2, align.Left),
		h("Vence", 1, align.Center),
		h("Cant.", 1, align.Right),
		h("Check", 1, align.Center),
	)
}

// tableLineRows: una fila por línea de picking.
func tableLineRows(lines []ports.PickListLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for _, l := range lines {
		qty := l.Requested.String()
		if l.Picked.IsPositive() {
			qty = l.Picked.String() + "/" + qty
		}
		result = append(result, row.New(7).Add(
			cell(nonEmpty(l.LocationCode, "-"), 2, align.Left),
			cell(nonEmpty(l.SKU, "-"), 2, align.Left),
			cell(nonEmpty(l.ProductName, "-"), 3, align.Left),
			cell(nonEmpty(l.LotNumber, "-"), 2, align.Left),
			cell(nonEmpty(l.ExpiresAt, "-"), 1, align.Center),
			cell(qty+" "+l.Unit, 1, align.Right),
			cell(checkMark(l.LineState), 1, align.Center),
		))
	}
	return result
}

// signatureRow: espacios de firma.
func signatureRow() core.Row {
	sign := func(label string) core.Col {
		return col.New(6).Add(
			text.New("______________________________", props.Text{Size: 9, Align: align.Center, Top: 4}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 10, Color: colorGray}),
		)
	}
	return row.New(18).Add(sign("Preparó"), sign("Verificó"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func checkMark(state string) string {
	switch state {
	case entity.LineCompleted:
		return "OK"
	case entity.LinePartial:
		return "½"
	}
	return ""
}
