package procurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/application/inventory"
	"github.com/jhoicas/scm-api/internal/application/ports"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/repository"
	"github.com/jhoicas/scm-api/pkg/logger"
)

// PurchaseOrderUseCase ciclo de vida de las órdenes de compra y registro de entregas de fábrica.
type PurchaseOrderUseCase struct {
	txRunner      inventory.TxRunner
	movements     *inventory.RegisterMovementUseCase
	poRepo        repository.PurchaseOrderRepository
	deliveryRepo  repository.ProductionDeliveryRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	publisher     ports.EventPublisher
	log           *logger.Logger
	now           func() time.Time
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(
	txRunner inventory.TxRunner,
	movements *inventory.RegisterMovementUseCase,
	poRepo repository.PurchaseOrderRepository,
	deliveryRepo repository.ProductionDeliveryRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	publisher ports.EventPublisher,
	log *logger.Logger,
) *PurchaseOrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PurchaseOrderUseCase{
		txRunner:      txRunner,
		movements:     movements,
		poRepo:        poRepo,
		deliveryRepo:  deliveryRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		publisher:     publisher,
		log:           log.Component("procurement"),
		now:           time.Now,
	}
}

// Create registra la OC en borrador. Las OCs en borrador no cuentan como oferta futura.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	supplier := strings.TrimSpace(in.Supplier)
	if supplier == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	po := &entity.PurchaseOrder{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		PONumber:  newPONumber(now),
		Supplier:  supplier,
		Status:    entity.POStatusDraft,
		OrderDate: now,
		Notes:     in.Notes,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.OrderDate != nil {
		po.OrderDate = *in.OrderDate
	}
	for i, it := range in.Items {
		if !it.Quantity.IsPositive() || it.UnitCost.IsNegative() || it.ExpectedDate.IsZero() {
			return nil, fmt.Errorf("%w: línea %d", domain.ErrInvalidInput, i+1)
		}
		if it.ExpectedDate.Before(po.OrderDate.Truncate(24 * time.Hour)) {
			return nil, fmt.Errorf("%w: línea %d: fecha esperada anterior a la fecha de la orden", domain.ErrInvalidInput, i+1)
		}
		p, err := uc.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.CompanyID != companyID {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
		}
		po.Items = append(po.Items, entity.POItem{
			ID:           uuid.New().String(),
			POID:         po.ID,
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			DeliveredQty: decimal.Zero,
			UnitCost:     it.UnitCost,
			ExpectedDate: it.ExpectedDate,
		})
	}
	if err := uc.poRepo.Create(ctx, po); err != nil {
		return nil, err
	}
	uc.publish(ctx, po, ports.EventPOCreated, map[string]any{
		"po_number": po.PONumber,
		"supplier":  po.Supplier,
		"total":     po.Total().String(),
	})
	return ToPurchaseOrderResponse(po), nil
}

// GetByID devuelve la OC con sus líneas.
func (uc *PurchaseOrderUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.PurchaseOrderResponse, error) {
	po, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToPurchaseOrderResponse(po), nil
}

// List lista OCs filtrando por estado y proveedor.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, companyID, status, supplier string, page dto.PageRequest) (*dto.PurchaseOrderListResponse, error) {
	page.DefaultPage()
	list, err := uc.poRepo.List(ctx, companyID, repository.PurchaseOrderFilter{
		Status: status, Supplier: supplier, Limit: page.Limit, Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.PurchaseOrderListResponse{
		Items: make([]dto.PurchaseOrderResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, po := range list {
		out.Items = append(out.Items, *ToPurchaseOrderResponse(po))
	}
	return out, nil
}

// ChangeStatus aplica una transición válida del ciclo de vida; cualquier otra devuelve ErrInvalidTransition.
func (uc *PurchaseOrderUseCase) ChangeStatus(ctx context.Context, companyID, id string, in dto.ChangePOStatusRequest) (*dto.PurchaseOrderResponse, error) {
	po, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransitionPO(po.Status, in.Status) {
		return nil, fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, po.Status, in.Status)
	}
	from := po.Status
	po.Status = in.Status
	po.UpdatedAt = uc.now()
	if err := uc.poRepo.UpdateStatus(ctx, po.ID, po.Status, po.UpdatedAt); err != nil {
		return nil, err
	}
	uc.log.Info().Str("po_number", po.PONumber).Str("from", from).Str("to", po.Status).Msg("estado de OC actualizado")
	uc.publish(ctx, po, ports.EventPOStatusChanged, map[string]any{
		"po_number": po.PONumber,
		"from":      from,
		"to":        po.Status,
	})
	return ToPurchaseOrderResponse(po), nil
}

// RecordDelivery registra una entrega de fábrica contra una línea de la OC.
// Con bodega, la mercancía entra directo al inventario (movimiento IN al costo de la línea)
// y la entrega queda cerrada para embarques.
func (uc *PurchaseOrderUseCase) RecordDelivery(ctx context.Context, companyID, userID, poID string, in dto.RecordDeliveryRequest) (*dto.DeliveryResponse, error) {
	po, err := uc.load(ctx, companyID, poID)
	if err != nil {
		return nil, err
	}
	if !entity.IsOpenPOStatus(po.Status) {
		return nil, fmt.Errorf("%w: la OC está en estado %s", domain.ErrConflict, po.Status)
	}
	var item *entity.POItem
	for i := range po.Items {
		if po.Items[i].ID == in.ItemID {
			item = &po.Items[i]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("%w: línea %s", domain.ErrNotFound, in.ItemID)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	if in.Quantity.GreaterThan(item.Remaining()) {
		return nil, fmt.Errorf("%w: la entrega (%s) supera lo pendiente (%s)", domain.ErrInvalidInput, in.Quantity, item.Remaining())
	}

	now := uc.now()
	d := &entity.ProductionDelivery{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		POItemID:   item.ID,
		ProductID:  item.ProductID,
		Quantity:   in.Quantity,
		ShippedQty: decimal.Zero,
		ActualDate: in.ActualDate,
		CreatedAt:  now,
	}
	switch {
	case in.PlannedDate != nil:
		d.PlannedDate = *in.PlannedDate
	case in.ActualDate != nil:
		d.PlannedDate = *in.ActualDate
	default:
		d.PlannedDate = item.ExpectedDate
	}

	var product *entity.Product
	if in.WarehouseID != "" {
		wh, err := uc.warehouseRepo.GetByID(ctx, in.WarehouseID)
		if err != nil {
			return nil, err
		}
		if wh == nil || wh.CompanyID != companyID {
			return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, in.WarehouseID)
		}
		product, err = uc.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		if d.ActualDate == nil {
			d.ActualDate = &now
		}
		d.ShippedQty = d.Quantity
	}

	err = uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		if err := r.Deliveries.Create(ctx, d); err != nil {
			return err
		}
		if err := r.PurchaseOrders.AddDelivered(ctx, item.ID, d.Quantity); err != nil {
			return err
		}
		if product == nil {
			return nil
		}
		cost := item.UnitCost
		return uc.movements.ApplyInTx(ctx, r, product, inventory.MovementInputDTO{
			CompanyID:   companyID,
			UserID:      userID,
			ProductID:   item.ProductID,
			WarehouseID: in.WarehouseID,
			Type:        entity.MovementTypeIN,
			Quantity:    d.Quantity,
			UnitCost:    &cost,
			Reference:   po.PONumber,
		}, now, uuid.New().String())
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, po, ports.EventDeliveryRecorded, map[string]any{
		"po_number":    po.PONumber,
		"item_id":      item.ID,
		"product_id":   item.ProductID,
		"quantity":     d.Quantity.String(),
		"warehouse_id": in.WarehouseID,
	})
	out := ToDeliveryResponse(d)
	out.Received = in.WarehouseID != ""
	return out, nil
}

// ListDeliveries entregas registradas para una línea de la OC.
func (uc *PurchaseOrderUseCase) ListDeliveries(ctx context.Context, companyID, poID, itemID string) ([]dto.DeliveryResponse, error) {
	po, err := uc.load(ctx, companyID, poID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, it := range po.Items {
		if it.ID == itemID {
			found = true
		}
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	list, err := uc.deliveryRepo.ListByPOItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DeliveryResponse, 0, len(list))
	for _, d := range list {
		out = append(out, *ToDeliveryResponse(d))
	}
	return out, nil
}

func (uc *PurchaseOrderUseCase) load(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	po, err := uc.poRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil || po.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return po, nil
}

func (uc *PurchaseOrderUseCase) publish(ctx context.Context, po *entity.PurchaseOrder, typ string, data map[string]any) {
	if uc.publisher == nil {
		return
	}
	ev := ports.Event{
		ID:         uuid.New().String(),
		Type:       typ,
		CompanyID:  po.CompanyID,
		Subject:    po.ID,
		OccurredAt: uc.now(),
		Data:       data,
	}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("event", typ).Str("po_number", po.PONumber).Msg("no se pudo publicar el evento")
	}
}

// newPONumber OC-AAAAMMDD-XXXXXX; el sufijo sale de un UUID para no depender de una secuencia.
func newPONumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("OC-%s-%s", now.Format("20060102"), suffix)
}

// ToPurchaseOrderResponse mapea la entidad a DTO.
func ToPurchaseOrderResponse(po *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	out := &dto.PurchaseOrderResponse{
		ID:        po.ID,
		PONumber:  po.PONumber,
		Supplier:  po.Supplier,
		Status:    po.Status,
		OrderDate: po.OrderDate,
		Notes:     po.Notes,
		Total:     po.Total().Round(2),
		Items:     make([]dto.PurchaseOrderItemResponse, 0, len(po.Items)),
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
	for _, it := range po.Items {
		out.Items = append(out.Items, dto.PurchaseOrderItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			DeliveredQty: it.DeliveredQty,
			Remaining:    it.Remaining(),
			UnitCost:     it.UnitCost,
			LineTotal:    it.Quantity.Mul(it.UnitCost).Round(2),
			ExpectedDate: it.ExpectedDate,
		})
	}
	return out
}

// ToDeliveryResponse mapea la entrega a DTO.
func ToDeliveryResponse(d *entity.ProductionDelivery) *dto.DeliveryResponse {
	return &dto.DeliveryResponse{
		ID:          d.ID,
		POItemID:    d.POItemID,
		ProductID:   d.ProductID,
		Quantity:    d.Quantity,
		ShippedQty:  d.ShippedQty,
		PlannedDate: d.PlannedDate,
		ActualDate:  d.ActualDate,
	}
}
