package inventory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// maxParallelLines límite de líneas consultadas a la vez contra el almacén.
const maxParallelLines = 8

// ReconcileUseCase responde si la demanda de una orden está cubierta combinando el pool de la orden
// con el pool general. Es una proyección de solo lectura: segura de llamar repetida y concurrentemente.
type ReconcileUseCase struct {
	orderRepo repository.OrderRepository
	balances  *BalanceUseCase
	renderer  ReportRenderer
}

// NewReconcileUseCase construye el caso de uso. renderer puede ser nil si no se exporta PDF.
func NewReconcileUseCase(orderRepo repository.OrderRepository, balances *BalanceUseCase, renderer ReportRenderer) *ReconcileUseCase {
	return &ReconcileUseCase{orderRepo: orderRepo, balances: balances, renderer: renderer}
}

// Reconcile calcula el OrderStockReport por línea y los agregados de la orden.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, orderID string) (*dto.OrderStockReport, error) {
	if orderID == "" || entity.IsGeneralPool(orderID) {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, domain.WrapStore("obtener orden", err)
	}

	lines := make([]inventory.LineStock, len(order.Lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLines)
	for i, line := range order.Lines {
		g.Go(func() error {
			orderPool, err := uc.balances.Fold(gctx, line.ItemID, order.ID)
			if err != nil {
				return fmt.Errorf("línea %s: %w", line.ItemID, err)
			}
			general, err := uc.balances.Fold(gctx, line.ItemID, entity.GeneralPool)
			if err != nil {
				return fmt.Errorf("línea %s: %w", line.ItemID, err)
			}
			lines[i] = inventory.ProjectLine(line, orderPool, general)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return toOrderStockReport(order, inventory.Summarize(order.ID, lines)), nil
}

// RenderPDF genera la hoja de existencias de la orden con el ReportRenderer configurado.
func (uc *ReconcileUseCase) RenderPDF(ctx context.Context, orderID string) ([]byte, error) {
	if uc.renderer == nil {
		return nil, fmt.Errorf("reporte PDF no configurado")
	}
	report, err := uc.Reconcile(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderOrderStock(ctx, report)
}
