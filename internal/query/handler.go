// Package query serves the read models maintained by the projector.
package query

import (
	"errors"
	"sort"

	"github.com/example/homemade-market/internal/infrastructure/store"
	"github.com/example/homemade-market/internal/readmodel"
)

var (
	ErrShopNotFound    = errors.New("shop not found")
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrOrderNotFound   = errors.New("order not found")
)

type Handler struct {
	readStore store.ReadStoreInterface
}

func NewHandler(readStore store.ReadStoreInterface) *Handler {
	return &Handler{readStore: readStore}
}

func (h *Handler) GetShop(id string) (*readmodel.ShopReadModel, error) {
	value, ok, err := h.readStore.Get("shops", id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrShopNotFound
	}
	return value.(*readmodel.ShopReadModel), nil
}

// ListShops returns active shops ordered by name.
func (h *Handler) ListShops() ([]*readmodel.ShopReadModel, error) {
	values, err := h.readStore.GetAll("shops")
	if err != nil {
		return nil, err
	}

	shops := make([]*readmodel.ShopReadModel, 0, len(values))
	for _, value := range values {
		shop := value.(*readmodel.ShopReadModel)
		if shop.Status == "active" {
			shops = append(shops, shop)
		}
	}
	sort.Slice(shops, func(i, j int) bool {
		return shops[i].Name < shops[j].Name
	})
	return shops, nil
}

func (h *Handler) GetProduct(id string) (*readmodel.ProductReadModel, error) {
	value, ok, err := h.readStore.Get("products", id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProductNotFound
	}
	return value.(*readmodel.ProductReadModel), nil
}

// ListProductsByShop returns a shop's active products, newest first.
func (h *Handler) ListProductsByShop(shopID string) ([]*readmodel.ProductReadModel, error) {
	values, err := h.readStore.GetAll("products")
	if err != nil {
		return nil, err
	}

	products := make([]*readmodel.ProductReadModel, 0)
	for _, value := range values {
		product := value.(*readmodel.ProductReadModel)
		if product.ShopID == shopID && product.IsActive {
			products = append(products, product)
		}
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (h *Handler) GetCart(userID string) (*readmodel.CartReadModel, error) {
	value, ok, err := h.readStore.Get("carts", userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCartNotFound
	}
	return value.(*readmodel.CartReadModel), nil
}

func (h *Handler) GetOrder(id string) (*readmodel.OrderReadModel, error) {
	value, ok, err := h.readStore.Get("orders", id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOrderNotFound
	}
	return value.(*readmodel.OrderReadModel), nil
}

// ListOrdersByBuyer returns a buyer's orders, newest first.
func (h *Handler) ListOrdersByBuyer(buyerUID string) ([]*readmodel.OrderReadModel, error) {
	return h.listOrders(func(o *readmodel.OrderReadModel) bool {
		return o.BuyerUID == buyerUID
	})
}

// ListOrdersByShop returns a shop's orders, newest first.
func (h *Handler) ListOrdersByShop(shopID string) ([]*readmodel.OrderReadModel, error) {
	return h.listOrders(func(o *readmodel.OrderReadModel) bool {
		return o.ShopID == shopID
	})
}

func (h *Handler) listOrders(keep func(*readmodel.OrderReadModel) bool) ([]*readmodel.OrderReadModel, error) {
	values, err := h.readStore.GetAll("orders")
	if err != nil {
		return nil, err
	}

	orders := make([]*readmodel.OrderReadModel, 0)
	for _, value := range values {
		o := value.(*readmodel.OrderReadModel)
		if keep(o) {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// SellerStats returns the dashboard line for a shop. A shop with no
// orders yet gets a zero-valued line, not an error.
func (h *Handler) SellerStats(shopID string) (*readmodel.SellerStatsReadModel, error) {
	value, ok, err := h.readStore.Get("seller_stats", shopID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &readmodel.SellerStatsReadModel{ShopID: shopID}, nil
	}
	return value.(*readmodel.SellerStatsReadModel), nil
}

func (h *Handler) GetUser(id string) (*readmodel.UserReadModel, error) {
	value, ok, err := h.readStore.Get("users", id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, store.ErrNotFound
	}
	return value.(*readmodel.UserReadModel), nil
}
