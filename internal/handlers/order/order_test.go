package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"newmodern_back_end/internal/models"
	"newmodern_back_end/internal/store"
)

// --- Mock du Store ---

type mockStore struct {
	productPrices map[primitive.ObjectID]float64

	insertedItemIDs []primitive.ObjectID
	items           map[primitive.ObjectID]models.OrderItem

	insertedOrder  *models.Order
	insertOrderErr error

	orders map[primitive.ObjectID]models.Order

	deleteItemsCalled bool
	deletedItemIDs    []primitive.ObjectID

	allOrders  []models.OrderWithUser
	userOrders []models.PopulatedOrder
	populated  map[primitive.ObjectID]models.PopulatedOrder

	totalSales float64
	orderCount int64
}

func newMockStore() *mockStore {
	return &mockStore{
		productPrices: make(map[primitive.ObjectID]float64),
		items:         make(map[primitive.ObjectID]models.OrderItem),
		orders:        make(map[primitive.ObjectID]models.Order),
		populated:     make(map[primitive.ObjectID]models.PopulatedOrder),
	}
}

func (m *mockStore) InsertOrderItem(_ context.Context, item models.OrderItem) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	m.items[id] = item
	m.insertedItemIDs = append(m.insertedItemIDs, id)
	return id, nil
}

func (m *mockStore) FindOrderItemPrice(_ context.Context, itemID primitive.ObjectID) (int, float64, error) {
	item, ok := m.items[itemID]
	if !ok {
		return 0, 0, store.ErrNotFound
	}
	price, ok := m.productPrices[item.ProductID]
	if !ok {
		return 0, 0, store.ErrNotFound
	}
	return item.Quantity, price, nil
}

func (m *mockStore) ProductExists(_ context.Context, productID primitive.ObjectID) (bool, error) {
	_, ok := m.productPrices[productID]
	return ok, nil
}

func (m *mockStore) InsertOrder(_ context.Context, order models.Order) (primitive.ObjectID, error) {
	if m.insertOrderErr != nil {
		return primitive.NilObjectID, m.insertOrderErr
	}
	id := primitive.NewObjectID()
	order.ID = id
	m.insertedOrder = &order
	m.orders[id] = order
	return id, nil
}

func (m *mockStore) FindAllOrders(_ context.Context) ([]models.OrderWithUser, error) {
	return m.allOrders, nil
}

func (m *mockStore) FindOrderByID(_ context.Context, id primitive.ObjectID) (*models.PopulatedOrder, error) {
	o, ok := m.populated[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (m *mockStore) FindOrdersByUser(_ context.Context, _ primitive.ObjectID) ([]models.PopulatedOrder, error) {
	return m.userOrders, nil
}

func (m *mockStore) UpdateOrderStatus(_ context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return &o, nil
}

func (m *mockStore) DeleteOrder(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(m.orders, id)
	return &o, nil
}

func (m *mockStore) DeleteOrderItems(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	m.deleteItemsCalled = true
	m.deletedItemIDs = ids
	for _, id := range ids {
		delete(m.items, id)
	}
	return int64(len(ids)), nil
}

func (m *mockStore) TotalSales(_ context.Context) (float64, error) {
	return m.totalSales, nil
}

func (m *mockStore) CountOrders(_ context.Context) (int64, error) {
	return m.orderCount, nil
}

func (m *mockStore) FindUser(_ context.Context, _ primitive.ObjectID) (*models.User, error) {
	return nil, store.ErrNotFound
}

// --- Helpers ---

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/orders/", h.GetOrders)
	r.GET("/api/orders/:id", h.GetOrderByID)
	r.POST("/api/orders/", h.CreateOrder)
	r.PUT("/api/orders/:id", h.UpdateOrderStatus)
	r.DELETE("/api/orders/:id", h.DeleteOrder)
	r.GET("/api/orders/get/totalsales", h.GetTotalSales)
	r.GET("/api/orders/get/count", h.GetOrderCount)
	r.GET("/api/orders/get/userorders/:userid", h.GetUserOrders)
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func orderPayload(user primitive.ObjectID, lines ...map[string]any) map[string]any {
	return map[string]any{
		"orderItems":   lines,
		"street":       "Rue des Lilas",
		"number":       "12",
		"division":     "Bruxelles-Capitale",
		"city":         "Bruxelles",
		"zip":          "1000",
		"country":      "BE",
		"phone":        "+32400000000",
		"observations": "sonnette cassée",
		"user":         user.Hex(),
	}
}

// --- Tests ---

func TestCreateOrder_ComputesTotalFromStoredPrices(t *testing.T) {
	m := newMockStore()
	productA := primitive.NewObjectID()
	productB := primitive.NewObjectID()
	m.productPrices[productA] = 10
	m.productPrices[productB] = 5

	r := setupRouter(NewHandler(m))

	payload := orderPayload(primitive.NewObjectID(),
		map[string]any{"product": productA.Hex(), "quantity": 2},
		map[string]any{"product": productB.Hex(), "quantity": 1},
	)

	w := doJSON(r, http.MethodPost, "/api/orders/", payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NotNil(t, m.insertedOrder)
	assert.Equal(t, 25.0, m.insertedOrder.TotalPrice)

	var resp models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 25.0, resp.TotalPrice)
	assert.False(t, resp.ID.IsZero())
}

func TestCreateOrder_IgnoresClientSuppliedTotal(t *testing.T) {
	m := newMockStore()
	product := primitive.NewObjectID()
	m.productPrices[product] = 10

	r := setupRouter(NewHandler(m))

	payload := orderPayload(primitive.NewObjectID(),
		map[string]any{"product": product.Hex(), "quantity": 2},
	)
	payload["total_price"] = 1.0 // tentative de falsification du prix

	w := doJSON(r, http.MethodPost, "/api/orders/", payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NotNil(t, m.insertedOrder)
	assert.Equal(t, 20.0, m.insertedOrder.TotalPrice)
	assert.NotEqual(t, 1.0, m.insertedOrder.TotalPrice)
}

func TestCreateOrder_PreservesSubmissionOrder(t *testing.T) {
	m := newMockStore()
	var products []primitive.ObjectID
	var lines []map[string]any
	for i := 0; i < 5; i++ {
		p := primitive.NewObjectID()
		m.productPrices[p] = float64(i + 1)
		products = append(products, p)
		lines = append(lines, map[string]any{"product": p.Hex(), "quantity": 1})
	}

	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodPost, "/api/orders/", orderPayload(primitive.NewObjectID(), lines...))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NotNil(t, m.insertedOrder)
	require.Len(t, m.insertedOrder.OrderItemIDs, 5)
	for i, itemID := range m.insertedOrder.OrderItemIDs {
		assert.Equal(t, products[i], m.items[itemID].ProductID, "ligne %d hors ordre", i)
	}
}

func TestCreateOrder_RejectsNonPositiveQuantity(t *testing.T) {
	m := newMockStore()
	product := primitive.NewObjectID()
	m.productPrices[product] = 10

	r := setupRouter(NewHandler(m))

	for _, qty := range []int{0, -3} {
		w := doJSON(r, http.MethodPost, "/api/orders/", orderPayload(primitive.NewObjectID(),
			map[string]any{"product": product.Hex(), "quantity": qty},
		))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Empty(t, m.insertedItemIDs, "aucune ligne ne doit être persistée")
}

func TestCreateOrder_RejectsUnknownProduct(t *testing.T) {
	m := newMockStore()
	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodPost, "/api/orders/", orderPayload(primitive.NewObjectID(),
		map[string]any{"product": primitive.NewObjectID().Hex(), "quantity": 1},
	))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, m.insertedItemIDs)
}

func TestCreateOrder_RejectsEmptyItems(t *testing.T) {
	m := newMockStore()
	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodPost, "/api/orders/", orderPayload(primitive.NewObjectID()))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrder_NoRollbackOnOrderInsertFailure(t *testing.T) {
	m := newMockStore()
	m.insertOrderErr = fmt.Errorf("insertion refusée")
	product := primitive.NewObjectID()
	m.productPrices[product] = 10

	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodPost, "/api/orders/", orderPayload(primitive.NewObjectID(),
		map[string]any{"product": product.Hex(), "quantity": 2},
	))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// Les lignes déjà créées restent en base (orphelines, pas de rollback)
	assert.Len(t, m.insertedItemIDs, 1)
	assert.Len(t, m.items, 1)
}

func TestDeleteOrder_CascadesToItems(t *testing.T) {
	m := newMockStore()
	orderID := primitive.NewObjectID()
	itemIDs := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	m.orders[orderID] = models.Order{ID: orderID, OrderItemIDs: itemIDs}

	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodDelete, "/api/orders/"+orderID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.True(t, m.deleteItemsCalled)
	assert.Equal(t, itemIDs, m.deletedItemIDs)
	assert.Empty(t, m.orders)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
}

func TestDeleteOrder_NotFoundLeavesStoreUntouched(t *testing.T) {
	m := newMockStore()
	otherID := primitive.NewObjectID()
	m.orders[otherID] = models.Order{ID: otherID}

	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodDelete, "/api/orders/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, m.deleteItemsCalled)
	assert.Len(t, m.orders, 1)
}

func TestUpdateStatus_ChangesOnlyStatus(t *testing.T) {
	m := newMockStore()
	orderID := primitive.NewObjectID()
	before := models.Order{
		ID:           orderID,
		OrderItemIDs: []primitive.ObjectID{primitive.NewObjectID()},
		Street:       "Rue des Lilas",
		City:         "Bruxelles",
		Status:       models.StatusPending,
		TotalPrice:   42.5,
		UserID:       primitive.NewObjectID(),
		DateOrdered:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	m.orders[orderID] = before

	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodPut, "/api/orders/"+orderID.Hex(), map[string]any{"status": models.StatusShipped})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	after := m.orders[orderID]
	assert.Equal(t, models.StatusShipped, after.Status)

	// Tout le reste doit être identique
	after.Status = before.Status
	assert.Equal(t, before, after)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	m := newMockStore()
	orderID := primitive.NewObjectID()
	m.orders[orderID] = models.Order{ID: orderID, Status: models.StatusPending}

	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodPut, "/api/orders/"+orderID.Hex(), map[string]any{"status": "téléporté"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.StatusPending, m.orders[orderID].Status)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	m := newMockStore()
	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodPut, "/api/orders/"+primitive.NewObjectID().Hex(),
		map[string]any{"status": models.StatusShipped})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTotalSales(t *testing.T) {
	m := newMockStore()
	m.totalSales = 125.5

	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodGet, "/api/orders/get/totalsales", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 125.5, resp["totalsales"])
}

func TestGetTotalSales_EmptyStoreIsZero(t *testing.T) {
	m := newMockStore()
	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodGet, "/api/orders/get/totalsales", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp["totalsales"])
}

func TestGetOrderCount(t *testing.T) {
	m := newMockStore()
	m.orderCount = 7

	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodGet, "/api/orders/get/count", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp["quantidadePedidos"])
}

func TestGetOrders_EmptyListIsNotAnError(t *testing.T) {
	m := newMockStore()
	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodGet, "/api/orders/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetOrderByID_NotFound(t *testing.T) {
	m := newMockStore()
	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodGet, "/api/orders/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrderByID_InvalidID(t *testing.T) {
	m := newMockStore()
	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodGet, "/api/orders/pas-un-objectid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderByID_RendersPopulatedShape(t *testing.T) {
	m := newMockStore()
	orderID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	catID := primitive.NewObjectID()
	prodID := primitive.NewObjectID()

	product := models.Product{
		ID:         prodID,
		Name:       "Clavier mécanique",
		Price:      89.9,
		CategoryID: catID,
	}.Populate(&models.Category{ID: catID, Name: "Périphériques"})

	m.populated[orderID] = models.PopulatedOrder{
		ID: orderID,
		OrderItems: []models.PopulatedOrderItem{
			{ID: primitive.NewObjectID(), Quantity: 2, Product: &product},
		},
		Status:     models.StatusPending,
		TotalPrice: 179.8,
		User:       &models.UserRef{ID: userID, Name: "Alice"},
	}

	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodGet, "/api/orders/"+orderID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// `_id` est rendu `id`, l'utilisateur est {id, name}, le produit est
	// développé avec sa catégorie
	assert.Equal(t, orderID.Hex(), resp["id"])
	user := resp["user"].(map[string]any)
	assert.Equal(t, "Alice", user["name"])

	items := resp["orderItems"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	prod := item["product"].(map[string]any)
	assert.Equal(t, "Clavier mécanique", prod["name"])
	cat := prod["category"].(map[string]any)
	assert.Equal(t, "Périphériques", cat["name"])
}

func TestGetUserOrders(t *testing.T) {
	m := newMockStore()
	newer := models.PopulatedOrder{ID: primitive.NewObjectID(), DateOrdered: time.Now()}
	older := models.PopulatedOrder{ID: primitive.NewObjectID(), DateOrdered: time.Now().Add(-time.Hour)}
	m.userOrders = []models.PopulatedOrder{newer, older}

	r := setupRouter(NewHandler(m))

	w := doJSON(r, http.MethodGet, "/api/orders/get/userorders/"+primitive.NewObjectID().Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []models.PopulatedOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, newer.ID, resp[0].ID)
	assert.Equal(t, older.ID, resp[1].ID)
}
