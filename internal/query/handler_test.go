package query

import (
	"errors"
	"testing"
	"time"

	"github.com/example/homemade-market/internal/infrastructure/store/mocks"
	"github.com/example/homemade-market/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueryHandler() (*Handler, *mocks.MockReadStore) {
	readStore := mocks.NewMockReadStore()
	return NewHandler(readStore), readStore
}

// ============================================
// Shop Query Tests
// ============================================

func TestHandler_GetShop(t *testing.T) {
	h, readStore := newTestQueryHandler()
	readStore.SetData("shops", "shop-1", &readmodel.ShopReadModel{ID: "shop-1", Name: "Anna's Kitchen"})

	shop, err := h.GetShop("shop-1")

	require.NoError(t, err)
	assert.Equal(t, "Anna's Kitchen", shop.Name)

	_, err = h.GetShop("shop-missing")
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestHandler_ListShops_ActiveSortedByName(t *testing.T) {
	h, readStore := newTestQueryHandler()
	readStore.SetData("shops", "s1", &readmodel.ShopReadModel{ID: "s1", Name: "Zest Bakery", Status: "active"})
	readStore.SetData("shops", "s2", &readmodel.ShopReadModel{ID: "s2", Name: "Anna's Kitchen", Status: "active"})
	readStore.SetData("shops", "s3", &readmodel.ShopReadModel{ID: "s3", Name: "Paused Place", Status: "paused"})
	readStore.SetData("shops", "s4", &readmodel.ShopReadModel{ID: "s4", Name: "Closed Corner", Status: "closed"})

	shops, err := h.ListShops()

	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "Anna's Kitchen", shops[0].Name)
	assert.Equal(t, "Zest Bakery", shops[1].Name)
}

// ============================================
// Product Query Tests
// ============================================

func TestHandler_ListProductsByShop_ActiveNewestFirst(t *testing.T) {
	h, readStore := newTestQueryHandler()
	now := time.Now()
	readStore.SetData("products", "p1", &readmodel.ProductReadModel{
		ID: "p1", ShopID: "shop-1", IsActive: true, CreatedAt: now.Add(-2 * time.Hour)})
	readStore.SetData("products", "p2", &readmodel.ProductReadModel{
		ID: "p2", ShopID: "shop-1", IsActive: true, CreatedAt: now})
	readStore.SetData("products", "p3", &readmodel.ProductReadModel{
		ID: "p3", ShopID: "shop-1", IsActive: false, CreatedAt: now})
	readStore.SetData("products", "p4", &readmodel.ProductReadModel{
		ID: "p4", ShopID: "shop-2", IsActive: true, CreatedAt: now})

	products, err := h.ListProductsByShop("shop-1")

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p2", products[0].ID)
	assert.Equal(t, "p1", products[1].ID)
}

func TestHandler_GetProduct_NotFound(t *testing.T) {
	h, _ := newTestQueryHandler()

	_, err := h.GetProduct("prod-missing")

	assert.ErrorIs(t, err, ErrProductNotFound)
}

// ============================================
// Cart Query Tests
// ============================================

func TestHandler_GetCart(t *testing.T) {
	h, readStore := newTestQueryHandler()
	readStore.SetData("carts", "user-1", &readmodel.CartReadModel{
		UserID: "user-1", ShopID: "shop-1", SubtotalCents: 1300})

	cart, err := h.GetCart("user-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1300), cart.SubtotalCents)

	_, err = h.GetCart("user-2")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

// ============================================
// Order Query Tests
// ============================================

func seedOrders(readStore *mocks.MockReadStore) {
	now := time.Now()
	readStore.SetData("orders", "o1", &readmodel.OrderReadModel{
		ID: "o1", ShopID: "shop-1", BuyerUID: "user-1", CreatedAt: now.Add(-time.Hour)})
	readStore.SetData("orders", "o2", &readmodel.OrderReadModel{
		ID: "o2", ShopID: "shop-1", BuyerUID: "user-2", CreatedAt: now})
	readStore.SetData("orders", "o3", &readmodel.OrderReadModel{
		ID: "o3", ShopID: "shop-2", BuyerUID: "user-1", CreatedAt: now.Add(-time.Minute)})
}

func TestHandler_ListOrdersByBuyer_NewestFirst(t *testing.T) {
	h, readStore := newTestQueryHandler()
	seedOrders(readStore)

	orders, err := h.ListOrdersByBuyer("user-1")

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o3", orders[0].ID)
	assert.Equal(t, "o1", orders[1].ID)
}

func TestHandler_ListOrdersByShop(t *testing.T) {
	h, readStore := newTestQueryHandler()
	seedOrders(readStore)

	orders, err := h.ListOrdersByShop("shop-1")

	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestHandler_GetOrder_NotFound(t *testing.T) {
	h, _ := newTestQueryHandler()

	_, err := h.GetOrder("order-missing")

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// ============================================
// Seller Stats Tests
// ============================================

func TestHandler_SellerStats(t *testing.T) {
	h, readStore := newTestQueryHandler()
	readStore.SetData("seller_stats", "shop-1", &readmodel.SellerStatsReadModel{
		ShopID: "shop-1", OrderCount: 3, GrossCents: 4500})

	stats, err := h.SellerStats("shop-1")

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.OrderCount)
}

func TestHandler_SellerStats_EmptyShopGetsZeroLine(t *testing.T) {
	h, _ := newTestQueryHandler()

	stats, err := h.SellerStats("shop-new")

	require.NoError(t, err)
	assert.Equal(t, "shop-new", stats.ShopID)
	assert.Zero(t, stats.OrderCount)
	assert.Zero(t, stats.GrossCents)
}

// ============================================
// Error Propagation Tests
// ============================================

func TestHandler_PropagatesStoreErrors(t *testing.T) {
	h, readStore := newTestQueryHandler()
	readStore.GetErr = errors.New("connection reset")

	_, err := h.GetShop("shop-1")

	assert.EqualError(t, err, "connection reset")
}
