package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/application/ports"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/inventory"
	"github.com/jhoicas/scm-api/internal/domain/repository"
	"github.com/jhoicas/scm-api/pkg/logger"
)

// ReconciliationUseCase compara un conteo físico contra el stock del sistema y,
// al aplicarlo, registra un ADJUSTMENT por cada diferencia en una sola transacción.
type ReconciliationUseCase struct {
	movements     *RegisterMovementUseCase
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	stockRepo     repository.StockRepository
	publisher     ports.EventPublisher
	log           *logger.Logger
	now           func() time.Time
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(
	movements *RegisterMovementUseCase,
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	stockRepo repository.StockRepository,
	publisher ports.EventPublisher,
	log *logger.Logger,
) *ReconciliationUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReconciliationUseCase{
		movements:     movements,
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		stockRepo:     stockRepo,
		publisher:     publisher,
		log:           log.Component("reconciliation"),
		now:           time.Now,
	}
}

// Preview calcula las diferencias sin tocar el inventario.
func (uc *ReconciliationUseCase) Preview(ctx context.Context, companyID string, in dto.ReconciliationRequest) (*dto.ReconciliationResponse, error) {
	products, err := uc.validate(ctx, companyID, in)
	if err != nil {
		return nil, err
	}
	out := &dto.ReconciliationResponse{WarehouseID: in.WarehouseID, TotalVarianceValue: decimal.Zero}
	for _, line := range in.Lines {
		stock, err := uc.stockRepo.Get(ctx, line.ProductID, in.WarehouseID)
		if err != nil {
			return nil, err
		}
		addLine(out, compareLine(products[line.ProductID], stock.Quantity, line.CountedQty))
	}
	return out, nil
}

// Apply registra los ajustes. El stock del sistema se relee con bloqueo de fila dentro de la
// transacción, así que la diferencia aplicada es la vigente al momento de confirmar.
func (uc *ReconciliationUseCase) Apply(ctx context.Context, companyID, userID string, in dto.ReconciliationRequest) (*dto.ReconciliationResponse, error) {
	products, err := uc.validate(ctx, companyID, in)
	if err != nil {
		return nil, err
	}
	reference := in.Reference
	if reference == "" {
		reference = "CONTEO " + uc.now().Format("2006-01-02")
	}
	txID := uuid.New().String()
	now := uc.now()

	var out *dto.ReconciliationResponse
	err = uc.txRunner.Run(ctx, func(r Repos) error {
		out = &dto.ReconciliationResponse{WarehouseID: in.WarehouseID, TransactionID: txID, TotalVarianceValue: decimal.Zero}
		for _, line := range in.Lines {
			product := products[line.ProductID]
			stock, err := r.Stock.GetForUpdate(ctx, line.ProductID, in.WarehouseID)
			if err != nil {
				return err
			}
			rl := compareLine(product, stock.Quantity, line.CountedQty)
			if !rl.Variance.IsZero() {
				err := uc.movements.ApplyInTx(ctx, r, product, MovementInputDTO{
					CompanyID:   companyID,
					UserID:      userID,
					ProductID:   line.ProductID,
					WarehouseID: in.WarehouseID,
					Type:        entity.MovementTypeADJUSTMENT,
					Quantity:    rl.Variance,
					Reference:   reference,
				}, now, txID)
				if err != nil {
					return err
				}
				rl.Applied = true
			}
			addLine(out, rl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("warehouse_id", in.WarehouseID).
		Str("transaction_id", txID).
		Int("lines_with_variance", out.LinesWithVariance).
		Str("variance_value", out.TotalVarianceValue.String()).
		Msg("conteo conciliado")

	if out.LinesWithVariance > 0 && uc.publisher != nil {
		ev := ports.Event{
			ID:         uuid.New().String(),
			Type:       ports.EventInventoryReconcile,
			CompanyID:  companyID,
			Subject:    in.WarehouseID,
			OccurredAt: now,
			Data: map[string]any{
				"transaction_id":      txID,
				"lines_with_variance": out.LinesWithVariance,
				"variance_value":      out.TotalVarianceValue.String(),
			},
		}
		if err := uc.publisher.Publish(ctx, ev); err != nil {
			uc.log.Warn().Err(err).Str("event", ev.Type).Msg("no se pudo publicar el evento")
		}
	}
	return out, nil
}

func (uc *ReconciliationUseCase) validate(ctx context.Context, companyID string, in dto.ReconciliationRequest) (map[string]*entity.Product, error) {
	if in.WarehouseID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	products := make(map[string]*entity.Product, len(in.Lines))
	for _, line := range in.Lines {
		if line.CountedQty.IsNegative() {
			return nil, fmt.Errorf("%w: conteo negativo para %s", domain.ErrInvalidInput, line.ProductID)
		}
		if _, dup := products[line.ProductID]; dup {
			return nil, fmt.Errorf("%w: producto %s repetido en el conteo", domain.ErrInvalidInput, line.ProductID)
		}
		p, err := uc.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.CompanyID != companyID {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
		}
		products[line.ProductID] = p
	}
	return products, nil
}

func compareLine(p *entity.Product, system, counted decimal.Decimal) dto.ReconciliationLine {
	variance := counted.Sub(system)
	return dto.ReconciliationLine{
		ProductID:     p.ID,
		SKU:           p.SKU,
		SystemQty:     system,
		CountedQty:    counted,
		Variance:      variance,
		UnitCost:      p.UnitCost,
		VarianceValue: inventory.VarianceValue(variance, p.UnitCost),
	}
}

func addLine(out *dto.ReconciliationResponse, rl dto.ReconciliationLine) {
	out.Lines = append(out.Lines, rl)
	if !rl.Variance.IsZero() {
		out.LinesWithVariance++
		out.TotalVarianceValue = out.TotalVarianceValue.Add(rl.VarianceValue)
	}
}
