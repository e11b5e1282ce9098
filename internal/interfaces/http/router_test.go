package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// apiClient envuelve una app Fiber completa sobre el store en memoria.
type apiClient struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	s := memory.NewStore()
	products := memory.NewProductRepository(s)
	warehouses := memory.NewWarehouseRepository(s)
	stock := memory.NewStockLevelRepository(s)
	movements := memory.NewMovementRepository(s)

	lowStock := appinv.NewLowStockAggregator(stock, products, logger.Nop())
	engine := appinv.NewMovementUseCase(memory.NewTxRunner(s), movements, stock, products, warehouses,
		lowStock, nil, nil, logger.Nop(), appinv.DefaultEngineConfig())
	queries := appinv.NewQueryUseCase(movements, stock, products, warehouses, lowStock, appinv.DefaultPageConfig())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC:   usecase.NewWarehouseUseCase(warehouses),
		ProductUC:     usecase.NewProductUseCase(products, lowStock),
		Engine:        engine,
		Queries:       queries,
		Replenishment: appinv.NewReplenishmentUseCase(products, lowStock),
		Reports:       appinv.NewReportUseCase(queries, products, pdf.NewMarotoReportGenerator()),
		DashboardUC:   appanalytics.NewDashboardUseCase(products, warehouses, movements, lowStock),
		Auth:          testAuth,
	})
	return &apiClient{t: t, app: app, token: tokenForRole(t, "admin")}
}

func (a *apiClient) as(role string) *apiClient {
	return &apiClient{t: a.t, app: a.app, token: tokenForRole(a.t, role)}
}

// do ejecuta la petición y decodifica el cuerpo en out (si no es nil).
func (a *apiClient) do(method, path string, body any, out any) int {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", a.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *apiClient) seed() (productID, warehouseID string) {
	a.t.Helper()
	var w dto.WarehouseResponse
	require.Equal(a.t, http.StatusCreated, a.do(http.MethodPost, "/api/warehouses", dto.CreateWarehouseRequest{Code: "main", Name: "Principal"}, &w))
	threshold := int64(5)
	var p dto.ProductResponse
	require.Equal(a.t, http.StatusCreated, a.do(http.MethodPost, "/api/products", dto.CreateProductRequest{SKU: "tor-01", Name: "Tornillo", ReorderThreshold: &threshold}, &p))
	return p.ID, w.ID
}

func (a *apiClient) move(typ, productID, src, dst string, qty int64) dto.MovementResponse {
	a.t.Helper()
	var m dto.MovementResponse
	status := a.do(http.MethodPost, "/api/movements", dto.CreateMovementRequest{
		Type:  typ,
		Lines: []dto.MovementLineRequest{{ProductID: productID, SourceWarehouseID: src, DestWarehouseID: dst, Quantity: qty}},
	}, &m)
	require.Equal(a.t, http.StatusCreated, status)
	return m
}

func (a *apiClient) act(id, action string) (int, dto.MovementResponse) {
	a.t.Helper()
	var m dto.MovementResponse
	status := a.do(http.MethodPost, "/api/movements/"+id+"/"+action, nil, nil)
	if status == http.StatusOK {
		a.do(http.MethodGet, "/api/movements/"+id, nil, &m)
	}
	return status, m
}

func TestRouter_CicloCompletoDeRecepcion(t *testing.T) {
	api := newAPI(t)
	productID, warehouseID := api.seed()

	m := api.move("receipt", productID, "", warehouseID, 12)
	assert.Equal(t, "draft", m.Status)

	for _, action := range []string{"submit", "confirm", "commit"} {
		status, _ := api.act(m.ID, action)
		require.Equal(t, http.StatusOK, status, action)
	}
	_, done := api.act(m.ID, "commit")
	assert.Equal(t, "done", done.Status, "repetir commit es un no-op")

	var level dto.StockLevelResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/stock/"+productID+"/"+warehouseID, nil, &level))
	assert.Equal(t, int64(12), level.Quantity)

	var ws dto.WarehouseStockResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/warehouses/"+warehouseID+"/stock", nil, &ws))
	require.Len(t, ws.Items, 1)
	assert.Equal(t, int64(12), ws.Items[0].Quantity)
}

func TestRouter_EntregaSinStockResponde422(t *testing.T) {
	api := newAPI(t)
	productID, warehouseID := api.seed()

	m := api.move("delivery", productID, warehouseID, "", 3)
	status, _ := api.act(m.ID, "submit")
	require.Equal(t, http.StatusOK, status)

	var errBody dto.ErrorResponse
	status = api.do(http.MethodPost, "/api/movements/"+m.ID+"/confirm", nil, &errBody)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
}

func TestRouter_TransicionInvalidaResponde409(t *testing.T) {
	api := newAPI(t)
	productID, warehouseID := api.seed()
	m := api.move("receipt", productID, "", warehouseID, 1)

	var errBody dto.ErrorResponse
	status := api.do(http.MethodPost, "/api/movements/"+m.ID+"/commit", nil, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE", errBody.Code)

	status = api.do(http.MethodPost, "/api/movements/"+m.ID+"/approve", nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ACTION", errBody.Code)
}

func TestRouter_LineasInvalidasResponden400(t *testing.T) {
	api := newAPI(t)
	productID, warehouseID := api.seed()

	var errBody dto.ErrorResponse
	status := api.do(http.MethodPost, "/api/movements", dto.CreateMovementRequest{
		Type:  "transfer",
		Lines: []dto.MovementLineRequest{{ProductID: productID, SourceWarehouseID: warehouseID, DestWarehouseID: warehouseID, Quantity: 1}},
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errBody.Code)
}

func TestRouter_CantidadesQueDesbordanResponden400(t *testing.T) {
	api := newAPI(t)
	productID, warehouseID := api.seed()

	line := dto.MovementLineRequest{ProductID: productID, SourceWarehouseID: warehouseID, Quantity: math.MaxInt64}
	var errBody dto.ErrorResponse
	status := api.do(http.MethodPost, "/api/movements", dto.CreateMovementRequest{
		Type:  "delivery",
		Lines: []dto.MovementLineRequest{line, line},
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errBody.Code)

	var level dto.StockLevelResponse
	api.do(http.MethodGet, "/api/stock/"+productID+"/"+warehouseID, nil, &level)
	assert.Equal(t, int64(0), level.Quantity)
}

func TestRouter_CancelarDoneCreaReversa(t *testing.T) {
	api := newAPI(t)
	productID, warehouseID := api.seed()
	m := api.move("receipt", productID, "", warehouseID, 4)
	for _, action := range []string{"submit", "confirm", "commit"} {
		status, _ := api.act(m.ID, action)
		require.Equal(t, http.StatusOK, status)
	}

	status, cancelled := api.act(m.ID, "cancel")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "done", cancelled.Status)
	require.NotEmpty(t, cancelled.ReversedBy)

	var reversal dto.MovementResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/movements/"+cancelled.ReversedBy, nil, &reversal))
	assert.Equal(t, m.ID, reversal.ReversalOf)
	assert.True(t, reversal.IsReversal)
	assert.Equal(t, "receipt", reversal.Type)
	assert.False(t, cancelled.IsReversal)

	var count dto.CountResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/movements/count?type=receipt&status=done", nil, &count))
	assert.Equal(t, 2, count.Count, "la reversa se cuenta bajo el tipo del original")

	var level dto.StockLevelResponse
	api.do(http.MethodGet, "/api/stock/"+productID+"/"+warehouseID, nil, &level)
	assert.Equal(t, int64(0), level.Quantity)
}

func TestRouter_RolConsultaSoloLee(t *testing.T) {
	api := newAPI(t)
	productID, warehouseID := api.seed()
	reader := api.as("consulta")

	status := reader.do(http.MethodPost, "/api/movements", dto.CreateMovementRequest{
		Type:  "receipt",
		Lines: []dto.MovementLineRequest{{ProductID: productID, DestWarehouseID: warehouseID, Quantity: 1}},
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var page dto.MovementPageResponse
	assert.Equal(t, http.StatusOK, reader.do(http.MethodGet, "/api/movements", nil, &page))
	assert.Empty(t, page.Items)
}

func TestRouter_ListadoPaginadoYConteo(t *testing.T) {
	api := newAPI(t)
	productID, warehouseID := api.seed()
	for i := 0; i < 3; i++ {
		api.move("receipt", productID, "", warehouseID, int64(i+1))
	}

	var first dto.MovementPageResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/movements?limit=2&type=receipt", nil, &first))
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	var second dto.MovementPageResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/movements?limit=2&type=receipt&cursor="+first.NextCursor, nil, &second))
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.NextCursor)

	var count dto.CountResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/movements/count?type=receipt&status=draft,waiting", nil, &count))
	assert.Equal(t, 3, count.Count)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/movements?from=ayer", nil, &errBody))
}

func TestRouter_BajoStockYReposicion(t *testing.T) {
	api := newAPI(t)
	productID, _ := api.seed()

	var low dto.LowStockResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/inventory/low-stock", nil, &low))
	assert.Equal(t, []string{productID}, low.ProductIDs)

	var suggestions []dto.ReplenishmentSuggestionDTO
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/inventory/replenishment", nil, &suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, productID, suggestions[0].ProductID)
}

func TestRouter_NoEncontrados(t *testing.T) {
	api := newAPI(t)
	productID, _ := api.seed()

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/movements/no-existe", nil, &errBody))
	assert.Equal(t, "NOT_FOUND", errBody.Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/stock/"+productID+"/no-existe", nil, &errBody))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/products/no-existe", nil, &errBody))
}

func TestRouter_ProductoConMovimientosNoSeBorra(t *testing.T) {
	api := newAPI(t)
	productID, warehouseID := api.seed()
	api.move("receipt", productID, "", warehouseID, 1)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, api.do(http.MethodDelete, "/api/products/"+productID, nil, &errBody))
}

func TestRouter_ReportePDF(t *testing.T) {
	api := newAPI(t)
	_, warehouseID := api.seed()

	req := httptest.NewRequest(http.MethodGet, "/api/warehouses/"+warehouseID+"/stock/report", nil)
	req.Header.Set("Authorization", api.token)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestRouter_Dashboard(t *testing.T) {
	api := newAPI(t)
	productID, warehouseID := api.seed()
	api.move("receipt", productID, "", warehouseID, 2)

	var summary dto.DashboardSummaryDTO
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/dashboard/summary", nil, &summary))
	assert.Equal(t, 1, summary.TotalProducts)
	assert.Equal(t, 1, summary.PendingReceipts)
	assert.Len(t, summary.RecentMovements, 1)
}
