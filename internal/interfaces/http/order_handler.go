package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
)

// OrderHandler reporte de existencias por orden (protegido).
type OrderHandler struct {
	reconcile *inventory.ReconcileUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(reconcile *inventory.ReconcileUseCase) *OrderHandler {
	return &OrderHandler{reconcile: reconcile}
}

// Stock godoc
// @Summary      Existencias de una orden
// @Description  Combina el pool de la orden con el pool general por línea; solo lectura.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderStockReport
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/stock [get]
func (h *OrderHandler) Stock(c *fiber.Ctx) error {
	report, err := h.reconcile.Reconcile(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// StockPDF godoc
// @Summary      Hoja de existencias de una orden en PDF
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/stock.pdf [get]
func (h *OrderHandler) StockPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.reconcile.RenderPDF(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="existencias-`+id+`.pdf"`)
	return c.Send(out)
}
