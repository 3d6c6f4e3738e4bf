// Package logistics seguimiento de embarques desde la fábrica hasta la bodega destino.
package logistics

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

// ShipmentUseCase crea embarques y registra zarpe, llegada y anulación.
// La llegada ingresa la mercancía a la bodega destino en la misma transacción que cambia el estado.
type ShipmentUseCase struct {
	txRunner      inventory.TxRunner
	movements     *inventory.RegisterMovementUseCase
	shipmentRepo  repository.ShipmentRepository
	deliveryRepo  repository.ProductionDeliveryRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	publisher     ports.EventPublisher
	log           *logger.Logger
	now           func() time.Time
}

// NewShipmentUseCase construye el caso de uso.
func NewShipmentUseCase(
	txRunner inventory.TxRunner,
	movements *inventory.RegisterMovementUseCase,
	shipmentRepo repository.ShipmentRepository,
	deliveryRepo repository.ProductionDeliveryRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	publisher ports.EventPublisher,
	log *logger.Logger,
) *ShipmentUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ShipmentUseCase{
		txRunner:      txRunner,
		movements:     movements,
		shipmentRepo:  shipmentRepo,
		deliveryRepo:  deliveryRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		publisher:     publisher,
		log:           log.Component("logistics"),
		now:           time.Now,
	}
}

// Create registra un embarque planeado. Las líneas enlazadas a una entrega de fábrica
// descuentan lo pendiente por embarcar de esa entrega.
func (uc *ShipmentUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateShipmentRequest) (*dto.ShipmentResponse, error) {
	tracking := strings.TrimSpace(in.TrackingNumber)
	if tracking == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.PlannedDeparture.IsZero() || in.PlannedArrival.Before(in.PlannedDeparture) {
		return nil, fmt.Errorf("%w: la llegada planeada no puede ser anterior al zarpe", domain.ErrInvalidInput)
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != companyID {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, in.WarehouseID)
	}

	now := uc.now()
	sh := &entity.Shipment{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		TrackingNumber:   tracking,
		Carrier:          in.Carrier,
		WarehouseID:      in.WarehouseID,
		Status:           entity.ShipmentStatusPlanned,
		PlannedDeparture: in.PlannedDeparture,
		PlannedArrival:   in.PlannedArrival,
		CreatedBy:        userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	// pendiente por embarcar de cada entrega, descontando las líneas previas del mismo embarque
	pending := map[string]decimal.Decimal{}
	for i, l := range in.Lines {
		if !l.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: línea %d: cantidad debe ser positiva", domain.ErrInvalidInput, i+1)
		}
		p, err := uc.productRepo.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.CompanyID != companyID {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, l.ProductID)
		}
		if l.DeliveryID != "" {
			left, ok := pending[l.DeliveryID]
			if !ok {
				d, err := uc.deliveryRepo.GetByID(ctx, l.DeliveryID)
				if err != nil {
					return nil, err
				}
				if d == nil || d.CompanyID != companyID {
					return nil, fmt.Errorf("%w: entrega %s", domain.ErrNotFound, l.DeliveryID)
				}
				if d.ProductID != l.ProductID {
					return nil, fmt.Errorf("%w: línea %d: la entrega es de otro producto", domain.ErrInvalidInput, i+1)
				}
				left = d.Unshipped()
			}
			if l.Quantity.GreaterThan(left) {
				return nil, fmt.Errorf("%w: línea %d: supera lo pendiente por embarcar (%s)", domain.ErrInvalidInput, i+1, left)
			}
			pending[l.DeliveryID] = left.Sub(l.Quantity)
		}
		sh.Lines = append(sh.Lines, entity.ShipmentLine{
			ID:         uuid.New().String(),
			ShipmentID: sh.ID,
			ProductID:  l.ProductID,
			DeliveryID: l.DeliveryID,
			Quantity:   l.Quantity,
		})
	}

	err = uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		if err := r.Shipments.Create(ctx, sh); err != nil {
			return err
		}
		for _, l := range sh.Lines {
			if l.DeliveryID == "" {
				continue
			}
			if err := r.Deliveries.AddShipped(ctx, l.DeliveryID, l.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, sh, ports.EventShipmentCreated, map[string]any{
		"tracking_number": sh.TrackingNumber,
		"planned_arrival": sh.PlannedArrival,
	})
	return ToShipmentResponse(sh), nil
}

// GetByID devuelve el embarque con sus líneas.
func (uc *ShipmentUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ShipmentResponse, error) {
	sh, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToShipmentResponse(sh), nil
}

// List lista embarques, opcionalmente por estado.
func (uc *ShipmentUseCase) List(ctx context.Context, companyID, status string, page dto.PageRequest) (*dto.ShipmentListResponse, error) {
	page.DefaultPage()
	list, err := uc.shipmentRepo.List(ctx, companyID, repository.ShipmentFilter{Status: status, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	out := &dto.ShipmentListResponse{
		Items: make([]dto.ShipmentResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, sh := range list {
		out.Items = append(out.Items, *ToShipmentResponse(sh))
	}
	return out, nil
}

// Depart marca el zarpe. Sin llegada estimada explícita, la planeada se corre lo mismo que se
// atrasó el zarpe.
func (uc *ShipmentUseCase) Depart(ctx context.Context, companyID, id string, in dto.DepartShipmentRequest) (*dto.ShipmentResponse, error) {
	sh, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if sh.Status != entity.ShipmentStatusPlanned {
		return nil, fmt.Errorf("%w: el embarque está %s", domain.ErrInvalidTransition, sh.Status)
	}
	now := uc.now()
	departed := now
	if in.ActualDeparture != nil {
		departed = *in.ActualDeparture
	}
	eta := sh.PlannedArrival.Add(departed.Sub(sh.PlannedDeparture))
	if in.EstimatedArrival != nil {
		eta = *in.EstimatedArrival
	}
	if eta.Before(departed) {
		return nil, fmt.Errorf("%w: la llegada estimada no puede ser anterior al zarpe", domain.ErrInvalidInput)
	}
	sh.Status = entity.ShipmentStatusInTransit
	sh.ActualDeparture = &departed
	sh.EstimatedArrival = &eta
	sh.UpdatedAt = now
	if err := uc.shipmentRepo.Update(ctx, sh); err != nil {
		return nil, err
	}
	uc.publish(ctx, sh, ports.EventShipmentDeparted, map[string]any{
		"tracking_number":   sh.TrackingNumber,
		"actual_departure":  departed,
		"estimated_arrival": eta,
	})
	return ToShipmentResponse(sh), nil
}

// Arrive marca la llegada e ingresa cada línea a la bodega destino al costo vigente del SKU.
func (uc *ShipmentUseCase) Arrive(ctx context.Context, companyID, userID, id string, in dto.ArriveShipmentRequest) (*dto.ShipmentResponse, error) {
	sh, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if sh.Status != entity.ShipmentStatusInTransit {
		return nil, fmt.Errorf("%w: el embarque está %s", domain.ErrInvalidTransition, sh.Status)
	}
	now := uc.now()
	arrived := now
	if in.ActualArrival != nil {
		arrived = *in.ActualArrival
	}
	if sh.ActualDeparture != nil && arrived.Before(*sh.ActualDeparture) {
		return nil, fmt.Errorf("%w: la llegada no puede ser anterior al zarpe", domain.ErrInvalidInput)
	}

	txID := uuid.New().String()
	err = uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		for _, l := range sh.Lines {
			product, err := r.Products.GetByID(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, l.ProductID)
			}
			cost := product.UnitCost
			err = uc.movements.ApplyInTx(ctx, r, product, inventory.MovementInputDTO{
				CompanyID:   companyID,
				UserID:      userID,
				ProductID:   l.ProductID,
				WarehouseID: sh.WarehouseID,
				Type:        entity.MovementTypeIN,
				Quantity:    l.Quantity,
				UnitCost:    &cost,
				Reference:   "EMB " + sh.TrackingNumber,
			}, now, txID)
			if err != nil {
				return err
			}
		}
		sh.Status = entity.ShipmentStatusArrived
		sh.ActualArrival = &arrived
		sh.UpdatedAt = now
		return r.Shipments.Update(ctx, sh)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tracking_number", sh.TrackingNumber).Int("lines", len(sh.Lines)).Msg("embarque recibido en bodega")
	uc.publish(ctx, sh, ports.EventShipmentArrived, map[string]any{
		"tracking_number": sh.TrackingNumber,
		"actual_arrival":  arrived,
		"transaction_id":  txID,
	})
	return ToShipmentResponse(sh), nil
}

// Cancel anula un embarque que aún no zarpa y devuelve a las entregas lo que tenían asignado.
func (uc *ShipmentUseCase) Cancel(ctx context.Context, companyID, id string) (*dto.ShipmentResponse, error) {
	sh, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if sh.Status != entity.ShipmentStatusPlanned {
		return nil, fmt.Errorf("%w: solo se anulan embarques planeados", domain.ErrInvalidTransition)
	}
	err = uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		for _, l := range sh.Lines {
			if l.DeliveryID == "" {
				continue
			}
			if err := r.Deliveries.AddShipped(ctx, l.DeliveryID, l.Quantity.Neg()); err != nil {
				return err
			}
		}
		sh.Status = entity.ShipmentStatusCancelled
		sh.UpdatedAt = uc.now()
		return r.Shipments.Update(ctx, sh)
	})
	if err != nil {
		return nil, err
	}
	return ToShipmentResponse(sh), nil
}

func (uc *ShipmentUseCase) load(ctx context.Context, companyID, id string) (*entity.Shipment, error) {
	sh, err := uc.shipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh == nil || sh.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return sh, nil
}

func (uc *ShipmentUseCase) publish(ctx context.Context, sh *entity.Shipment, typ string, data map[string]any) {
	if uc.publisher == nil {
		return
	}
	ev := ports.Event{
		ID:         uuid.New().String(),
		Type:       typ,
		CompanyID:  sh.CompanyID,
		Subject:    sh.ID,
		OccurredAt: uc.now(),
		Data:       data,
	}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("event", typ).Str("tracking_number", sh.TrackingNumber).Msg("no se pudo publicar el evento")
	}
}

// ToShipmentResponse mapea la entidad a DTO.
func ToShipmentResponse(sh *entity.Shipment) *dto.ShipmentResponse {
	out := &dto.ShipmentResponse{
		ID:               sh.ID,
		TrackingNumber:   sh.TrackingNumber,
		Carrier:          sh.Carrier,
		WarehouseID:      sh.WarehouseID,
		Status:           sh.Status,
		PlannedDeparture: sh.PlannedDeparture,
		PlannedArrival:   sh.PlannedArrival,
		ActualDeparture:  sh.ActualDeparture,
		EstimatedArrival: sh.EstimatedArrival,
		ActualArrival:    sh.ActualArrival,
		Lines:            make([]dto.ShipmentLineResponse, 0, len(sh.Lines)),
		CreatedAt:        sh.CreatedAt,
		UpdatedAt:        sh.UpdatedAt,
	}
	for _, l := range sh.Lines {
		out.Lines = append(out.Lines, dto.ShipmentLineResponse{
			ID: l.ID, ProductID: l.ProductID, DeliveryID: l.DeliveryID, Quantity: l.Quantity,
		})
	}
	return out
}
