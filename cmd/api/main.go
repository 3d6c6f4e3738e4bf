package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/scm-api/internal/application/analytics"
	"github.com/jhoicas/scm-api/internal/application/auth"
	"github.com/jhoicas/scm-api/internal/application/inventory"
	"github.com/jhoicas/scm-api/internal/application/logistics"
	appplanning "github.com/jhoicas/scm-api/internal/application/planning"
	"github.com/jhoicas/scm-api/internal/application/procurement"
	"github.com/jhoicas/scm-api/internal/application/usecase"
	"github.com/jhoicas/scm-api/internal/infrastructure/events"
	"github.com/jhoicas/scm-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/scm-api/internal/infrastructure/pdf"
	"github.com/jhoicas/scm-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/scm-api/internal/interfaces/http"
	"github.com/jhoicas/scm-api/pkg/config"
	"github.com/jhoicas/scm-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Int("horizon_weeks", cfg.Planning.HorizonWeeks).
		Bool("events", cfg.Events.Enabled()).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	m := metrics.New()
	publisher, publisherCloser := events.New(cfg.Events, log.Component("events"), m)
	defer func() {
		if err := publisherCloser.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar publicador de eventos")
		}
	}()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	demandRepo := postgres.NewDemandRepository(pool)
	poRepo := postgres.NewPurchaseOrderRepository(pool)
	deliveryRepo := postgres.NewProductionDeliveryRepository(pool)
	shipmentRepo := postgres.NewShipmentRepository(pool)
	supplyRepo := postgres.NewSupplyRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	companyUC := usecase.NewCompanyUseCase(companyRepo)
	moduleSvc := usecase.NewModuleService(companyRepo)
	userUC := usecase.NewUserUseCase(userRepo)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	demandUC := usecase.NewDemandUseCase(demandRepo, productRepo)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	registerMovementUC := inventory.NewRegisterMovementUseCase(txRunner, productRepo, warehouseRepo)
	stockQueryUC := inventory.NewStockQueryUseCase(stockRepo, movementRepo, productRepo, warehouseRepo)
	reconciliationUC := inventory.NewReconciliationUseCase(
		registerMovementUC, txRunner, productRepo, warehouseRepo, stockRepo, publisher, log.Component("inventory"),
	)

	purchaseOrderUC := procurement.NewPurchaseOrderUseCase(
		txRunner, registerMovementUC, poRepo, deliveryRepo, productRepo, warehouseRepo, publisher, log.Component("procurement"),
	)
	// PDF: documento de la orden de compra para el proveedor
	poPDFUC := procurement.NewPDFUseCase(poRepo, companyRepo, productRepo, infrapdf.NewMarotoPDFGenerator())

	shipmentUC := logistics.NewShipmentUseCase(
		txRunner, registerMovementUC, shipmentRepo, deliveryRepo, productRepo, warehouseRepo, publisher, log.Component("logistics"),
	)

	projectionUC := appplanning.NewProjectionUseCase(productRepo, stockRepo, demandRepo, supplyRepo, cfg.Planning, m, log)
	replenishmentUC := appplanning.NewReplenishmentUseCase(projectionUC, productRepo, cfg.Planning, m)
	dashboardUC := appanalytics.NewDashboardUseCase(projectionUC, replenishmentUC, poRepo, shipmentRepo, log.Component("dashboard"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())
	app.Use(httpRouter.AccessLog(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "SCM API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("sin especificación swagger; /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := postgres.Ping(c.UserContext(), pool); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name, "db": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", m.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		UserUC:           userUC,
		CompanyUC:        companyUC,
		Modules:          moduleSvc,
		WarehouseUC:      warehouseUC,
		ProductUC:        productUC,
		DemandUC:         demandUC,
		RegisterMovement: registerMovementUC,
		StockQuery:       stockQueryUC,
		Reconciliation:   reconciliationUC,
		PurchaseOrderUC:  purchaseOrderUC,
		PurchaseOrderPDF: poPDFUC,
		ShipmentUC:       shipmentUC,
		ProjectionUC:     projectionUC,
		ReplenishmentUC:  replenishmentUC,
		DashboardUC:      dashboardUC,
		JWTSecret:        cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
