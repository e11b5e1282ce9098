package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC    *usecase.WarehouseUseCase
	ProductUC      *usecase.ProductUseCase
	Engine         *appinv.MovementUseCase
	Queries        *appinv.QueryUseCase
	Replenishment  *appinv.ReplenishmentUseCase
	Reports        *appinv.ReportUseCase
	DashboardUC    *appanalytics.DashboardUseCase
	Auth           AuthConfig
	MetricsHandler nethttp.Handler // nil = sin /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	// Rutas protegidas (requieren Bearer Token). Las lecturas admiten cualquier rol;
	// las mutaciones solo admin y bodeguero.
	api := app.Group("/api", AuthMiddleware(deps.Auth))
	writer := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)

	// Warehouses
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, deps.Queries, deps.Reports)
	warehouses := api.Group("/warehouses")
	warehouses.Post("/", writer, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", writer, warehouseHandler.Update)
	warehouses.Get("/:id/stock", warehouseHandler.Stock)
	warehouses.Get("/:id/stock/report", warehouseHandler.StockReport)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products")
	products.Post("/", writer, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", writer, productHandler.Update)
	products.Delete("/:id", writer, productHandler.Delete)

	// Movements: /count antes de /:id para que no lo capture el parámetro.
	movementHandler := NewMovementHandler(deps.Engine, deps.Queries)
	movements := api.Group("/movements")
	movements.Post("/", writer, movementHandler.Create)
	movements.Get("/", movementHandler.List)
	movements.Get("/count", movementHandler.Count)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Put("/:id/lines", writer, movementHandler.UpdateLines)
	movements.Post("/:id/:action", writer, movementHandler.Transition)

	// Stock
	stockHandler := NewStockHandler(deps.Queries, deps.Replenishment)
	api.Get("/stock/:productId/:warehouseId", stockHandler.GetLevel)
	api.Get("/inventory/low-stock", stockHandler.LowStock)
	api.Get("/inventory/replenishment", stockHandler.Replenishment)

	// Dashboard
	if deps.DashboardUC != nil {
		dashboardHandler := NewDashboardHandler(deps.DashboardUC)
		api.Get("/dashboard/summary", dashboardHandler.GetSummary)
	}
}
