package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/scm-api/internal/application/analytics"
	"github.com/jhoicas/scm-api/internal/application/auth"
	"github.com/jhoicas/scm-api/internal/application/inventory"
	"github.com/jhoicas/scm-api/internal/application/logistics"
	appplanning "github.com/jhoicas/scm-api/internal/application/planning"
	"github.com/jhoicas/scm-api/internal/application/procurement"
	"github.com/jhoicas/scm-api/internal/application/usecase"
	"github.com/jhoicas/scm-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	UserUC           *usecase.UserUseCase
	CompanyUC        *usecase.CompanyUseCase
	Modules          *usecase.ModuleService
	WarehouseUC      *usecase.WarehouseUseCase
	ProductUC        *usecase.ProductUseCase
	DemandUC         *usecase.DemandUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	StockQuery       *inventory.StockQueryUseCase
	Reconciliation   *inventory.ReconciliationUseCase
	PurchaseOrderUC  *procurement.PurchaseOrderUseCase
	PurchaseOrderPDF *procurement.PDFUseCase
	ShipmentUC       *logistics.ShipmentUseCase
	ProjectionUC     *appplanning.ProjectionUseCase
	ReplenishmentUC  *appplanning.ReplenishmentUseCase
	DashboardUC      *appanalytics.DashboardUseCase
	JWTSecret        string
}

var (
	anyRole      = []string{entity.RoleAdmin, entity.RolePlanner, entity.RoleBuyer, entity.RoleWarehouse}
	adminOnly    = []string{entity.RoleAdmin}
	planners     = []string{entity.RoleAdmin, entity.RolePlanner}
	buyers       = []string{entity.RoleAdmin, entity.RoleBuyer}
	warehouseOps = []string{entity.RoleAdmin, entity.RoleWarehouse}
	receivers    = []string{entity.RoleAdmin, entity.RoleBuyer, entity.RoleWarehouse}
)

// Router registra las rutas de la API bajo /api.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.Modules)
	// Alta de empresa pública: el primer usuario se registra contra ella.
	api.Post("/companies", companyHandler.Create)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireRole(anyRole...))
	admin := RequireRole(adminOnly...)

	companies := protected.Group("/companies")
	companies.Get("/", admin, companyHandler.List)
	companies.Get("/:id", admin, companyHandler.GetByID)
	companies.Put("/:id", admin, companyHandler.Update)
	companies.Get("/:id/modules", admin, companyHandler.ListModules)
	companies.Put("/:id/modules", admin, companyHandler.SetModule)

	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/me", userHandler.Me)
	users.Get("/", admin, userHandler.List)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", admin, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", admin, warehouseHandler.Update)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", RequireRole(planners...), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", RequireRole(planners...), productHandler.Update)

	demand := protected.Group("/demand", RequireModule(entity.ModulePlanning, deps.Modules))
	demandHandler := NewDemandHandler(deps.DemandUC)
	demand.Put("/forecast", RequireRole(planners...), demandHandler.UpsertForecast)
	demand.Post("/actual", RequireRole(planners...), demandHandler.RecordActual)
	demand.Get("/:product_id", demandHandler.ListSeries)

	invGroup := protected.Group("/inventory", RequireModule(entity.ModuleInventory, deps.Modules))
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.StockQuery, deps.Reconciliation)
	invGroup.Post("/movements", RequireRole(warehouseOps...), inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/on-hand", inventoryHandler.OnHand)
	invGroup.Post("/reconciliation/preview", RequireRole(warehouseOps...), inventoryHandler.PreviewReconciliation)
	invGroup.Post("/reconciliation/apply", RequireRole(warehouseOps...), inventoryHandler.ApplyReconciliation)

	pos := protected.Group("/purchase-orders", RequireModule(entity.ModulePurchasing, deps.Modules))
	poHandler := NewPurchaseOrderHandler(deps.PurchaseOrderUC, deps.PurchaseOrderPDF)
	pos.Post("/", RequireRole(buyers...), poHandler.Create)
	pos.Get("/", poHandler.List)
	pos.Get("/:id", poHandler.GetByID)
	pos.Patch("/:id/status", RequireRole(buyers...), poHandler.ChangeStatus)
	pos.Post("/:id/deliveries", RequireRole(receivers...), poHandler.RecordDelivery)
	pos.Get("/:id/deliveries", poHandler.ListDeliveries)
	pos.Get("/:id/pdf", poHandler.DownloadPDF)

	shipments := protected.Group("/shipments", RequireModule(entity.ModuleLogistics, deps.Modules))
	shipmentHandler := NewShipmentHandler(deps.ShipmentUC)
	shipments.Post("/", RequireRole(receivers...), shipmentHandler.Create)
	shipments.Get("/", shipmentHandler.List)
	shipments.Get("/:id", shipmentHandler.GetByID)
	shipments.Post("/:id/depart", RequireRole(receivers...), shipmentHandler.Depart)
	shipments.Post("/:id/arrive", RequireRole(receivers...), shipmentHandler.Arrive)
	shipments.Post("/:id/cancel", RequireRole(receivers...), shipmentHandler.Cancel)

	planningGroup := protected.Group("/planning", RequireModule(entity.ModulePlanning, deps.Modules))
	planningHandler := NewPlanningHandler(deps.ProjectionUC, deps.ReplenishmentUC)
	planningGroup.Get("/projections", planningHandler.ListProjections)
	planningGroup.Get("/projections/:product_id", planningHandler.GetProjection)
	planningGroup.Get("/replenishment", planningHandler.GetReplenishment)
	planningGroup.Post("/reverse-schedule", planningHandler.ReverseSchedule)

	dashboard := protected.Group("/dashboard", RequireModule(entity.ModulePlanning, deps.Modules))
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/summary", dashboardHandler.GetSummary)
}
