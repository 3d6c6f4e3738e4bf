package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/inventory"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos de inventario de forma transaccional
// (IN, OUT, ADJUSTMENT, TRANSFER) con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	now           func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		now:           time.Now,
	}
}

// MovementInputDTO entrada para registrar un movimiento de inventario.
// Para IN/OUT/ADJUSTMENT: ProductID, WarehouseID, Type, Quantity; UnitCost obligatorio en IN.
// Para TRANSFER: ProductID, FromWarehouseID, ToWarehouseID, Type=TRANSFER, Quantity.
// En ADJUSTMENT la cantidad lleva signo (positivo suma, negativo resta).
type MovementInputDTO struct {
	CompanyID       string
	UserID          string
	ProductID       string
	WarehouseID     string
	FromWarehouseID string
	ToWarehouseID   string
	Type            string
	Quantity        decimal.Decimal
	UnitCost        *decimal.Decimal
	Reference       string
}

// RegisterMovementFromRequest adapta el request HTTP al caso de uso.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, companyID, userID string, in dto.RegisterMovementRequest) (string, error) {
	return uc.RegisterMovement(ctx, MovementInputDTO{
		CompanyID:       companyID,
		UserID:          userID,
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Type:            in.Type,
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
		Reference:       in.Reference,
	})
}

// RegisterMovement valida, abre la transacción y aplica el movimiento. Devuelve el transaction_id.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (string, error) {
	if err := validateMovement(input); err != nil {
		return "", err
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return "", err
	}
	if product == nil {
		return "", domain.ErrNotFound
	}
	if product.CompanyID != input.CompanyID {
		return "", domain.ErrForbidden
	}

	whIDs := []string{input.WarehouseID}
	if input.Type == entity.MovementTypeTRANSFER {
		whIDs = []string{input.FromWarehouseID, input.ToWarehouseID}
	}
	for _, id := range whIDs {
		wh, err := uc.warehouseRepo.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if wh == nil || wh.CompanyID != input.CompanyID {
			return "", domain.ErrNotFound
		}
	}

	txID := uuid.New().String()
	now := uc.now()
	err = uc.txRunner.Run(ctx, func(r Repos) error {
		return uc.ApplyInTx(ctx, r, product, input, now, txID)
	})
	if err != nil {
		return "", err
	}
	return txID, nil
}

// ApplyInTx aplica un movimiento ya validado con los repositorios de una transacción abierta.
// Lo usan la conciliación, la recepción de embarques y las entregas de producción.
func (uc *RegisterMovementUseCase) ApplyInTx(
	ctx context.Context,
	r Repos,
	product *entity.Product,
	input MovementInputDTO,
	now time.Time, txID string,
) error {
	switch input.Type {
	case entity.MovementTypeIN:
		return doIN(ctx, r, product, input, now, txID)
	case entity.MovementTypeOUT:
		return doOUT(ctx, r, product, input, now, txID)
	case entity.MovementTypeADJUSTMENT:
		return doADJUSTMENT(ctx, r, product, input, now, txID)
	case entity.MovementTypeTRANSFER:
		return doTRANSFER(ctx, r, product, input, now, txID)
	}
	return domain.ErrInvalidInput
}

func validateMovement(in MovementInputDTO) error {
	switch in.Type {
	case entity.MovementTypeIN, entity.MovementTypeOUT:
		if in.ProductID == "" || in.WarehouseID == "" || !in.Quantity.IsPositive() {
			return domain.ErrInvalidInput
		}
		if in.Type == entity.MovementTypeIN && (in.UnitCost == nil || in.UnitCost.IsNegative()) {
			return fmt.Errorf("%w: unit_cost requerido en entradas", domain.ErrInvalidInput)
		}
	case entity.MovementTypeADJUSTMENT:
		if in.ProductID == "" || in.WarehouseID == "" || in.Quantity.IsZero() {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeTRANSFER:
		if in.ProductID == "" || in.FromWarehouseID == "" || in.ToWarehouseID == "" {
			return domain.ErrInvalidInput
		}
		if in.FromWarehouseID == in.ToWarehouseID || !in.Quantity.IsPositive() {
			return domain.ErrInvalidInput
		}
	default:
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}
	return nil
}

// doIN: bloquea la fila, recalcula el costo promedio ponderado, suma stock y guarda el movimiento.
func doIN(ctx context.Context, r Repos, product *entity.Product, input MovementInputDTO, now time.Time, txID string) error {
	stock, err := r.Stock.GetForUpdate(ctx, input.ProductID, input.WarehouseID)
	if err != nil {
		return err
	}
	unitCost := *input.UnitCost
	newCost := inventory.WeightedAverageCost(stock.Quantity, product.UnitCost, input.Quantity, unitCost)
	if !newCost.Equal(product.UnitCost) {
		if err := r.Products.UpdateCost(ctx, product.ID, newCost); err != nil {
			return err
		}
		product.UnitCost = newCost
	}
	stock.Quantity = stock.Quantity.Add(input.Quantity)
	stock.UpdatedAt = now
	if err := r.Stock.Upsert(ctx, stock); err != nil {
		return err
	}
	return r.Movements.Create(ctx, newMovement(input, input.Type, input.WarehouseID, input.Quantity, unitCost, now, txID))
}

// doOUT: bloquea la fila, verifica existencia suficiente y resta al costo promedio vigente.
func doOUT(ctx context.Context, r Repos, product *entity.Product, input MovementInputDTO, now time.Time, txID string) error {
	stock, err := r.Stock.GetForUpdate(ctx, input.ProductID, input.WarehouseID)
	if err != nil {
		return err
	}
	if stock.Quantity.LessThan(input.Quantity) {
		return domain.ErrInsufficientStock
	}
	stock.Quantity = stock.Quantity.Sub(input.Quantity)
	stock.UpdatedAt = now
	if err := r.Stock.Upsert(ctx, stock); err != nil {
		return err
	}
	return r.Movements.Create(ctx, newMovement(input, input.Type, input.WarehouseID, input.Quantity.Neg(), product.UnitCost, now, txID))
}

// doADJUSTMENT: positivo como IN (al costo vigente salvo que se indique otro), negativo como OUT.
func doADJUSTMENT(ctx context.Context, r Repos, product *entity.Product, input MovementInputDTO, now time.Time, txID string) error {
	if input.Quantity.IsPositive() {
		if input.UnitCost == nil {
			cost := product.UnitCost
			input.UnitCost = &cost
		}
		return doIN(ctx, r, product, input, now, txID)
	}
	input.Quantity = input.Quantity.Neg()
	return doOUT(ctx, r, product, input, now, txID)
}

// doTRANSFER: resta de la bodega origen y suma en la destino en la misma transacción;
// guarda dos registros con el mismo transaction_id.
func doTRANSFER(ctx context.Context, r Repos, product *entity.Product, input MovementInputDTO, now time.Time, txID string) error {
	origin, err := r.Stock.GetForUpdate(ctx, input.ProductID, input.FromWarehouseID)
	if err != nil {
		return err
	}
	if origin.Quantity.LessThan(input.Quantity) {
		return domain.ErrInsufficientStock
	}
	dest, err := r.Stock.GetForUpdate(ctx, input.ProductID, input.ToWarehouseID)
	if err != nil {
		return err
	}
	origin.Quantity = origin.Quantity.Sub(input.Quantity)
	dest.Quantity = dest.Quantity.Add(input.Quantity)
	origin.UpdatedAt = now
	dest.UpdatedAt = now
	if err := r.Stock.Upsert(ctx, origin); err != nil {
		return err
	}
	if err := r.Stock.Upsert(ctx, dest); err != nil {
		return err
	}
	out := newMovement(input, entity.MovementTypeTRANSFER, input.FromWarehouseID, input.Quantity.Neg(), product.UnitCost, now, txID)
	if err := r.Movements.Create(ctx, out); err != nil {
		return err
	}
	in := newMovement(input, entity.MovementTypeTRANSFER, input.ToWarehouseID, input.Quantity, product.UnitCost, now, txID)
	return r.Movements.Create(ctx, in)
}

func newMovement(input MovementInputDTO, typ, warehouseID string, qty, unitCost decimal.Decimal, now time.Time, txID string) *entity.InventoryMovement {
	return &entity.InventoryMovement{
		ID:            uuid.New().String(),
		TransactionID: txID,
		ProductID:     input.ProductID,
		WarehouseID:   warehouseID,
		Type:          typ,
		Quantity:      qty,
		UnitCost:      unitCost,
		TotalCost:     qty.Mul(unitCost),
		Reference:     input.Reference,
		Date:          now,
		CreatedAt:     now,
		CreatedBy:     input.UserID,
	}
}
