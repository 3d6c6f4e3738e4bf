// Package apptest repositorios en memoria para las pruebas de los casos de uso.
// Un solo Store respalda todos los puertos; Run simula la transacción restaurando
// el estado previo cuando la función devuelve error.
package apptest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/application/inventory"
	"github.com/jhoicas/scm-api/internal/application/ports"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/planning"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

// Store estado en memoria.
type Store struct {
	warehouses map[string]*entity.Warehouse
	products   map[string]*entity.Product
	stock      map[string]*entity.Stock
	movements  []*entity.InventoryMovement
	demand     map[string]*entity.WeeklyDemand
	pos        map[string]*entity.PurchaseOrder
	deliveries map[string]*entity.ProductionDelivery
	shipments  map[string]*entity.Shipment

	// FailStockReads simula una fuente de datos caída en las lecturas de planeación.
	FailStockReads error
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		warehouses: map[string]*entity.Warehouse{},
		products:   map[string]*entity.Product{},
		stock:      map[string]*entity.Stock{},
		demand:     map[string]*entity.WeeklyDemand{},
		pos:        map[string]*entity.PurchaseOrder{},
		deliveries: map[string]*entity.ProductionDelivery{},
		shipments:  map[string]*entity.Shipment{},
	}
}

func stockKey(productID, warehouseID string) string { return productID + "|" + warehouseID }

// AddWarehouse registra una bodega.
func (s *Store) AddWarehouse(w *entity.Warehouse) { s.warehouses[w.ID] = w }

// AddProduct registra un producto.
func (s *Store) AddProduct(p *entity.Product) { s.products[p.ID] = p }

// SetStock fija la existencia de un producto en una bodega.
func (s *Store) SetStock(productID, warehouseID string, qty decimal.Decimal) {
	s.stock[stockKey(productID, warehouseID)] = &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: qty}
}

// StockOf existencia actual.
func (s *Store) StockOf(productID, warehouseID string) decimal.Decimal {
	if st, ok := s.stock[stockKey(productID, warehouseID)]; ok {
		return st.Quantity
	}
	return decimal.Zero
}

// Product devuelve el producto guardado.
func (s *Store) Product(id string) *entity.Product { return s.products[id] }

// Movements devuelve el kardex en orden de registro.
func (s *Store) Movements() []*entity.InventoryMovement { return s.movements }

// Repos devuelve todos los repositorios respaldados por el Store.
func (s *Store) Repos() inventory.Repos {
	return inventory.Repos{
		Movements:      Movements{s},
		Stock:          Stock{s},
		Products:       Products{s},
		PurchaseOrders: PurchaseOrders{s},
		Deliveries:     Deliveries{s},
		Shipments:      Shipments{s},
	}
}

type snapshot struct {
	products   map[string]entity.Product
	stock      map[string]entity.Stock
	movements  int
	pos        map[string]entity.PurchaseOrder
	deliveries map[string]entity.ProductionDelivery
	shipments  map[string]entity.Shipment
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		products:   map[string]entity.Product{},
		stock:      map[string]entity.Stock{},
		movements:  len(s.movements),
		pos:        map[string]entity.PurchaseOrder{},
		deliveries: map[string]entity.ProductionDelivery{},
		shipments:  map[string]entity.Shipment{},
	}
	for k, v := range s.products {
		snap.products[k] = *v
	}
	for k, v := range s.stock {
		snap.stock[k] = *v
	}
	for k, v := range s.pos {
		c := *v
		c.Items = append([]entity.POItem(nil), v.Items...)
		snap.pos[k] = c
	}
	for k, v := range s.deliveries {
		snap.deliveries[k] = *v
	}
	for k, v := range s.shipments {
		snap.shipments[k] = *v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.products = map[string]*entity.Product{}
	for k, v := range snap.products {
		v := v
		s.products[k] = &v
	}
	s.stock = map[string]*entity.Stock{}
	for k, v := range snap.stock {
		v := v
		s.stock[k] = &v
	}
	s.movements = s.movements[:snap.movements]
	s.pos = map[string]*entity.PurchaseOrder{}
	for k, v := range snap.pos {
		v := v
		s.pos[k] = &v
	}
	s.deliveries = map[string]*entity.ProductionDelivery{}
	for k, v := range snap.deliveries {
		v := v
		s.deliveries[k] = &v
	}
	s.shipments = map[string]*entity.Shipment{}
	for k, v := range snap.shipments {
		v := v
		s.shipments[k] = &v
	}
}

// TxRunner implementa inventory.TxRunner sobre el Store.
type TxRunner struct{ S *Store }

// Run ejecuta fn y deshace los cambios si devuelve error.
func (t TxRunner) Run(_ context.Context, fn func(r inventory.Repos) error) error {
	snap := t.S.snapshot()
	if err := fn(t.S.Repos()); err != nil {
		t.S.restore(snap)
		return err
	}
	return nil
}

// Warehouses implementa repository.WarehouseRepository.
type Warehouses struct{ S *Store }

func (r Warehouses) Create(_ context.Context, w *entity.Warehouse) error {
	r.S.warehouses[w.ID] = w
	return nil
}
func (r Warehouses) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	return r.S.warehouses[id], nil
}
func (r Warehouses) Update(_ context.Context, w *entity.Warehouse) error {
	r.S.warehouses[w.ID] = w
	return nil
}
func (r Warehouses) ListByCompany(_ context.Context, companyID string, _, _ int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	for _, w := range r.S.warehouses {
		if w.CompanyID == companyID {
			out = append(out, w)
		}
	}
	return out, nil
}

// Products implementa repository.ProductRepository.
type Products struct{ S *Store }

func (r Products) Create(_ context.Context, p *entity.Product) error {
	r.S.products[p.ID] = p
	return nil
}
func (r Products) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.S.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}
func (r Products) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	for _, p := range r.S.products {
		if p.CompanyID == companyID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}
func (r Products) Update(_ context.Context, p *entity.Product) error {
	r.S.products[p.ID] = p
	return nil
}
func (r Products) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	if p, ok := r.S.products[id]; ok {
		p.UnitCost = cost
	}
	return nil
}
func (r Products) ListByCompany(ctx context.Context, companyID string, _, _ int) ([]*entity.Product, error) {
	return r.ListActive(ctx, companyID)
}
func (r Products) ListActive(_ context.Context, companyID string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.S.products {
		if p.CompanyID == companyID && p.Active {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

// Stock implementa repository.StockRepository y repository.OnHandReader.
type Stock struct{ S *Store }

func (r Stock) Get(_ context.Context, productID, warehouseID string) (*entity.Stock, error) {
	if st, ok := r.S.stock[stockKey(productID, warehouseID)]; ok {
		c := *st
		return &c, nil
	}
	return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
}
func (r Stock) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	return r.Get(ctx, productID, warehouseID)
}
func (r Stock) Upsert(_ context.Context, st *entity.Stock) error {
	c := *st
	r.S.stock[stockKey(st.ProductID, st.WarehouseID)] = &c
	return nil
}
func (r Stock) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	for _, st := range r.S.stock {
		if st.WarehouseID == warehouseID {
			out = append(out, st)
		}
	}
	return out, nil
}
func (r Stock) OnHandByProduct(_ context.Context, companyID string, productIDs []string) (map[string]decimal.Decimal, error) {
	if r.S.FailStockReads != nil {
		return nil, r.S.FailStockReads
	}
	out := map[string]decimal.Decimal{}
	for _, st := range r.S.stock {
		p := r.S.products[st.ProductID]
		if p == nil || p.CompanyID != companyID || !wanted(productIDs, st.ProductID) {
			continue
		}
		out[st.ProductID] = out[st.ProductID].Add(st.Quantity)
	}
	return out, nil
}
func (r Stock) ListOnHand(_ context.Context, companyID string) ([]repository.OnHandRow, error) {
	rows := map[string]*repository.OnHandRow{}
	for _, st := range r.S.stock {
		p := r.S.products[st.ProductID]
		if p == nil || p.CompanyID != companyID {
			continue
		}
		row, ok := rows[p.ID]
		if !ok {
			row = &repository.OnHandRow{ProductID: p.ID, SKU: p.SKU, Name: p.Name, UnitCost: p.UnitCost}
			rows[p.ID] = row
		}
		row.Quantity = row.Quantity.Add(st.Quantity)
		row.Warehouses++
	}
	out := make([]repository.OnHandRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func wanted(ids []string, id string) bool {
	if len(ids) == 0 {
		return true
	}
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Movements implementa repository.InventoryMovementRepository.
type Movements struct{ S *Store }

func (r Movements) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.S.movements = append(r.S.movements, m)
	return nil
}
func (r Movements) ListByWarehouse(_ context.Context, warehouseID string, _, _ *time.Time, _, _ int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.S.movements {
		if m.WarehouseID == warehouseID {
			out = append(out, m)
		}
	}
	return out, nil
}
func (r Movements) ListByProduct(_ context.Context, productID string, _, _ *time.Time, _, _ int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.S.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

// Demand implementa repository.DemandRepository.
type Demand struct{ S *Store }

func demandKey(productID string, w planning.Week) string { return productID + "|" + w.String() }

func (r Demand) UpsertForecast(_ context.Context, d *entity.WeeklyDemand) error {
	k := demandKey(d.ProductID, planning.Week{Year: d.Year, Week: d.Week})
	if cur, ok := r.S.demand[k]; ok {
		cur.ForecastQty = d.ForecastQty
		cur.UpdatedAt = d.UpdatedAt
		return nil
	}
	c := *d
	r.S.demand[k] = &c
	return nil
}
func (r Demand) RecordActual(_ context.Context, companyID, productID string, w planning.Week, qty decimal.Decimal) error {
	k := demandKey(productID, w)
	cur, ok := r.S.demand[k]
	if !ok {
		cur = &entity.WeeklyDemand{CompanyID: companyID, ProductID: productID, Year: w.Year, Week: w.Week}
		r.S.demand[k] = cur
	}
	q := qty
	cur.ActualQty = &q
	return nil
}
func (r Demand) ListRange(_ context.Context, companyID string, productIDs []string, from, to planning.Week) ([]*entity.WeeklyDemand, error) {
	var out []*entity.WeeklyDemand
	for _, d := range r.S.demand {
		w := planning.Week{Year: d.Year, Week: d.Week}
		if d.CompanyID != companyID || !wanted(productIDs, d.ProductID) || w.Before(from) || w.After(to) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return planning.Week{Year: out[i].Year, Week: out[i].Week}.Before(planning.Week{Year: out[j].Year, Week: out[j].Week})
	})
	return out, nil
}

// PurchaseOrders implementa repository.PurchaseOrderRepository.
type PurchaseOrders struct{ S *Store }

func (r PurchaseOrders) Create(_ context.Context, po *entity.PurchaseOrder) error {
	r.S.pos[po.ID] = po
	return nil
}
func (r PurchaseOrders) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	po, ok := r.S.pos[id]
	if !ok {
		return nil, nil
	}
	c := *po
	c.Items = append([]entity.POItem(nil), po.Items...)
	return &c, nil
}
func (r PurchaseOrders) List(_ context.Context, companyID string, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	for _, po := range r.S.pos {
		if po.CompanyID != companyID || (f.Status != "" && po.Status != f.Status) || (f.Supplier != "" && po.Supplier != f.Supplier) {
			continue
		}
		out = append(out, po)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PONumber < out[j].PONumber })
	return out, nil
}
func (r PurchaseOrders) UpdateStatus(_ context.Context, id, status string, updatedAt time.Time) error {
	if po, ok := r.S.pos[id]; ok {
		po.Status = status
		po.UpdatedAt = updatedAt
	}
	return nil
}

// AddDelivered aplica la misma condición que el UPDATE de PostgreSQL.
func (r PurchaseOrders) AddDelivered(_ context.Context, itemID string, qty decimal.Decimal) error {
	for _, po := range r.S.pos {
		for i := range po.Items {
			if po.Items[i].ID != itemID {
				continue
			}
			next := po.Items[i].DeliveredQty.Add(qty)
			if next.GreaterThan(po.Items[i].Quantity) {
				return fmt.Errorf("%w: la entrega supera lo pendiente de la línea", domain.ErrConflict)
			}
			po.Items[i].DeliveredQty = next
			return nil
		}
	}
	return domain.ErrNotFound
}
func (r PurchaseOrders) CountOpen(_ context.Context, companyID string) (int, error) {
	n := 0
	for _, po := range r.S.pos {
		if po.CompanyID == companyID && entity.IsOpenPOStatus(po.Status) {
			n++
		}
	}
	return n, nil
}

// Deliveries implementa repository.ProductionDeliveryRepository.
type Deliveries struct{ S *Store }

func (r Deliveries) Create(_ context.Context, d *entity.ProductionDelivery) error {
	r.S.deliveries[d.ID] = d
	return nil
}
func (r Deliveries) GetByID(_ context.Context, id string) (*entity.ProductionDelivery, error) {
	d, ok := r.S.deliveries[id]
	if !ok {
		return nil, nil
	}
	c := *d
	return &c, nil
}
func (r Deliveries) ListByPOItem(_ context.Context, itemID string) ([]*entity.ProductionDelivery, error) {
	var out []*entity.ProductionDelivery
	for _, d := range r.S.deliveries {
		if d.POItemID == itemID {
			out = append(out, d)
		}
	}
	return out, nil
}
func (r Deliveries) AddShipped(_ context.Context, id string, qty decimal.Decimal) error {
	d, ok := r.S.deliveries[id]
	if !ok {
		return domain.ErrNotFound
	}
	next := d.ShippedQty.Add(qty)
	if next.IsNegative() || next.GreaterThan(d.Quantity) {
		return fmt.Errorf("%w: el embarque supera lo pendiente de la entrega", domain.ErrConflict)
	}
	d.ShippedQty = next
	return nil
}

// Shipments implementa repository.ShipmentRepository.
type Shipments struct{ S *Store }

func (r Shipments) Create(_ context.Context, sh *entity.Shipment) error {
	r.S.shipments[sh.ID] = sh
	return nil
}
func (r Shipments) GetByID(_ context.Context, id string) (*entity.Shipment, error) {
	sh, ok := r.S.shipments[id]
	if !ok {
		return nil, nil
	}
	c := *sh
	return &c, nil
}
func (r Shipments) List(_ context.Context, companyID string, f repository.ShipmentFilter) ([]*entity.Shipment, error) {
	var out []*entity.Shipment
	for _, sh := range r.S.shipments {
		if sh.CompanyID == companyID && (f.Status == "" || sh.Status == f.Status) {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrackingNumber < out[j].TrackingNumber })
	return out, nil
}
func (r Shipments) Update(_ context.Context, sh *entity.Shipment) error {
	c := *sh
	r.S.shipments[sh.ID] = &c
	return nil
}
func (r Shipments) CountByStatus(_ context.Context, companyID, status string) (int, error) {
	n := 0
	for _, sh := range r.S.shipments {
		if sh.CompanyID == companyID && sh.Status == status {
			n++
		}
	}
	return n, nil
}

// Supply implementa repository.SupplyReader derivando la tubería de OCs, entregas y embarques.
type Supply struct{ S *Store }

func (r Supply) ListOpenPOItems(_ context.Context, companyID string, productIDs []string) ([]repository.OpenPOItem, error) {
	var out []repository.OpenPOItem
	for _, po := range r.S.pos {
		if po.CompanyID != companyID || !entity.IsOpenPOStatus(po.Status) {
			continue
		}
		for _, it := range po.Items {
			if !wanted(productIDs, it.ProductID) || !it.Remaining().IsPositive() {
				continue
			}
			out = append(out, repository.OpenPOItem{
				ItemID: it.ID, PONumber: po.PONumber, ProductID: it.ProductID,
				Remaining: it.Remaining(), ExpectedDate: it.ExpectedDate,
			})
		}
	}
	return out, nil
}
func (r Supply) ListOpenDeliveries(_ context.Context, companyID string, productIDs []string) ([]repository.OpenDelivery, error) {
	var out []repository.OpenDelivery
	for _, d := range r.S.deliveries {
		if d.CompanyID != companyID || !wanted(productIDs, d.ProductID) || !d.Unshipped().IsPositive() {
			continue
		}
		out = append(out, repository.OpenDelivery{
			DeliveryID: d.ID, ProductID: d.ProductID, Unshipped: d.Unshipped(),
			PlannedDate: d.PlannedDate, ActualDate: d.ActualDate,
		})
	}
	return out, nil
}
func (r Supply) ListInboundLines(_ context.Context, companyID string, productIDs []string) ([]repository.InboundLine, error) {
	var out []repository.InboundLine
	for _, sh := range r.S.shipments {
		if sh.CompanyID != companyID || (sh.Status != entity.ShipmentStatusPlanned && sh.Status != entity.ShipmentStatusInTransit) {
			continue
		}
		for _, l := range sh.Lines {
			if !wanted(productIDs, l.ProductID) {
				continue
			}
			out = append(out, repository.InboundLine{
				ShipmentID: sh.ID, TrackingNumber: sh.TrackingNumber, ProductID: l.ProductID,
				Quantity: l.Quantity, PlannedArrival: sh.PlannedArrival, EstimatedArrival: sh.EstimatedArrival,
			})
		}
	}
	return out, nil
}

// Publisher registra los eventos publicados. Si Err no es nil, Publish falla.
type Publisher struct {
	Events []ports.Event
	Err    error
}

// Publish implementa ports.EventPublisher.
func (p *Publisher) Publish(_ context.Context, ev ports.Event) error {
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, ev)
	return nil
}

// Types tipos de los eventos publicados, en orden.
func (p *Publisher) Types() []string {
	out := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, e.Type)
	}
	return out
}

// Demand repositorio de demanda del Store.
func (s *Store) Demand() Demand { return Demand{s} }
