package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// InventoryHandler maneja asignaciones FIFO, saldos, lotes y ajustes directos (protegido).
type InventoryHandler struct {
	allocate *inventory.AllocateUseCase
	balances *inventory.BalanceUseCase
	adjust   *inventory.AdjustUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(allocate *inventory.AllocateUseCase, balances *inventory.BalanceUseCase, adjust *inventory.AdjustUseCase) *InventoryHandler {
	return &InventoryHandler{allocate: allocate, balances: balances, adjust: adjust}
}

// Allocate godoc
// @Summary      Asignar consumo FIFO
// @Description  Cubre la demanda con salidas vinculadas a los lotes más antiguos; no escribe nada si no alcanza.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocateRequest  true  "item_id, demand_base_units, packaging_conversion_factor, event_ref"
// @Success      201   {object}  dto.AllocateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/allocations [post]
func (h *InventoryHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	exits, err := h.allocate.Allocate(c.Context(), toAllocationInput(in, GetActor(c)))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AllocateResponse{ExitsCreated: inventory.ToMovementResponses(exits)})
}

// AllocateBatch godoc
// @Summary      Asignar consumo FIFO de varios ítems
// @Description  Procesa cada ítem en orden; un fallo no revierte los ítems ya asignados. Resultado por ítem.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocateBatchRequest  true  "items"
// @Success      200   {object}  dto.AllocateBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/allocations/batch [post]
func (h *InventoryHandler) AllocateBatch(c *fiber.Ctx) error {
	var in dto.AllocateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items requerido"})
	}
	actor := GetActor(c)
	inputs := make([]inventory.AllocationInput, 0, len(in.Items))
	for _, it := range in.Items {
		inputs = append(inputs, toAllocationInput(it, actor))
	}
	results := h.allocate.AllocateMany(c.Context(), inputs)
	out := dto.AllocateBatchResponse{Results: results}
	for _, r := range results {
		if r.Status == dto.AllocationStatusAllocated {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}
	return c.JSON(out)
}

// Balance godoc
// @Summary      Saldo de un ítem en una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "ID del ítem"
// @Param        location  query  string  false  "Ubicación (orden); vacío = pool general"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/balance [get]
func (h *InventoryHandler) Balance(c *fiber.Ctx) error {
	out, err := h.balances.Breakdown(c.Context(), c.Params("id"), c.Query("location"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Batches godoc
// @Summary      Lotes de un ítem con su capacidad restante
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "ID del ítem"
// @Param        location  query  string  false  "Ubicación; vacío = pool general"
// @Success      200  {array}   dto.BatchStatusResponse
// @Router       /api/inventory/items/{id}/batches [get]
func (h *InventoryHandler) Batches(c *fiber.Ctx) error {
	list, err := h.balances.ListBatches(c.Context(), c.Params("id"), c.Query("location"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Movements godoc
// @Summary      Historial de movimientos de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "ID del ítem"
// @Param        location  query  string  false  "Filtrar por ubicación (GENERAL para el pool general)"
// @Param        type      query  string  false  "ENTRY | EXIT"
// @Param        order     query  string  false  "asc | desc"
// @Param        limit     query  int     false  "máximo 100, por defecto 20"
// @Param        offset    query  int     false  "desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Header       200  {int}     X-Total-Count  "total de movimientos del filtro"
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		ItemID: c.Params("id"),
		Type:   strings.ToUpper(c.Query("type")),
		Desc:   strings.EqualFold(c.Query("order"), "desc"),
	}
	if loc := c.Query("location"); loc != "" {
		filter.LocationID = &loc
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	list, err := h.balances.ListMovements(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	c.Set("X-Total-Count", strconv.Itoa(len(list)))
	return c.JSON(paginate(list, page))
}

// Adjust godoc
// @Summary      Ajuste directo de existencias
// @Description  receive incrementa y discount decrementa el contador del ítem; ambos anexan el movimiento en el pool general.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del ítem"
// @Param        body  body  dto.AdjustmentRequest  true  "operation, quantity, metadata"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/inventory/items/{id}/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	in.ItemID = c.Params("id")
	in.Actor = GetActor(c)
	out, err := h.adjust.Adjust(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// VerifyOnHand godoc
// @Summary      Comparar contador en caché contra el libro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {object}  dto.OnHandCheckResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/on-hand/verify [get]
func (h *InventoryHandler) VerifyOnHand(c *fiber.Ctx) error {
	out, err := h.adjust.VerifyOnHand(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func toAllocationInput(in dto.AllocateRequest, actor string) inventory.AllocationInput {
	var occurredAt time.Time
	if in.OccurredAt != nil {
		occurredAt = *in.OccurredAt
	}
	return inventory.AllocationInput{
		ItemID:          in.ItemID,
		LocationID:      in.LocationID,
		DemandBaseUnits: in.DemandBaseUnits,
		PackagingFactor: in.PackagingConversionFactor,
		EventRef:        in.EventRef,
		Actor:           actor,
		OccurredAt:      occurredAt,
	}
}

// paginate recorta list a la página pedida.
func paginate[T any](list []T, page dto.PageRequest) []T {
	if page.Offset >= len(list) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[page.Offset:end]
}
