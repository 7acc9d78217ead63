package api

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/homemade-market/internal/api/middleware"
	"github.com/example/homemade-market/internal/domain/budget"
	"github.com/example/homemade-market/internal/domain/cart"
	"github.com/example/homemade-market/internal/domain/order"
	"github.com/example/homemade-market/internal/domain/product"
	"github.com/example/homemade-market/internal/domain/shop"
	"github.com/example/homemade-market/internal/images"
	"github.com/example/homemade-market/internal/query"
	"github.com/example/homemade-market/internal/watersort"
)

type Handlers struct {
	shopService    *shop.Service
	productService *product.Service
	cartService    *cart.Service
	orderService   *order.Service
	budgetService  *budget.Service
	queryHandler   *query.Handler
	uploader       images.Uploader
}

func NewHandlers(
	shopSvc *shop.Service,
	productSvc *product.Service,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	budgetSvc *budget.Service,
	queryHandler *query.Handler,
	uploader images.Uploader,
) *Handlers {
	return &Handlers{
		shopService:    shopSvc,
		productService: productSvc,
		cartService:    cartSvc,
		orderService:   orderSvc,
		budgetService:  budgetSvc,
		queryHandler:   queryHandler,
		uploader:       uploader,
	}
}

// Shop Handlers

func (h *Handlers) CreateShop(w http.ResponseWriter, r *http.Request) {
	ownerUID := getUserID(r)

	var req struct {
		Name       string   `json:"name"`
		Categories []string `json:"categories"`
		PriceBand  string   `json:"price_band"`
		CoverURL   string   `json:"cover_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := h.shopService.Create(r.Context(), ownerUID, req.Name, req.Categories, req.PriceBand, req.CoverURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, s)
}

func (h *Handlers) GetShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.queryHandler.ListShops()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, shops)
}

func (h *Handlers) GetShop(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/shops/")
	s, err := h.queryHandler.GetShop(id)
	if err != nil {
		http.Error(w, "Shop not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handlers) UpdateShop(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/shops/")

	var req struct {
		Name       string   `json:"name"`
		Categories []string `json:"categories"`
		PriceBand  string   `json:"price_band"`
		CoverURL   string   `json:"cover_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := h.shopService.Update(r.Context(), id, getUserID(r), req.Name, req.Categories, req.PriceBand, req.CoverURL)
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handlers) SetShopStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/shops/"), "/status")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.shopService.SetStatus(r.Context(), id, getUserID(r), shop.Status(req.Status)); err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Shop status updated"})
}

func (h *Handlers) GetShopProducts(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/shops/"), "/products")
	products, err := h.queryHandler.ListProductsByShop(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetShopOrders(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/shops/"), "/orders")
	if !h.callerOwnsShop(w, r, id) {
		return
	}

	orders, err := h.queryHandler.ListOrdersByShop(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetShopStats(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/shops/"), "/stats")
	if !h.callerOwnsShop(w, r, id) {
		return
	}

	stats, err := h.queryHandler.SellerStats(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handlers) GetMyShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.shopService.ListByOwner(r.Context(), getUserID(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, shops)
}

// Product Handlers

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShopID     string `json:"shop_id"`
		Name       string `json:"name"`
		PriceCents int64  `json:"price_cents"`
		ImageURL   string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.callerOwnsShop(w, r, req.ShopID) {
		return
	}

	p, err := h.productService.Create(r.Context(), req.ShopID, req.Name, req.PriceCents, req.ImageURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, err := h.queryHandler.GetProduct(id)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	var req struct {
		Name       string `json:"name"`
		PriceCents int64  `json:"price_cents"`
		ImageURL   string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := h.productService.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if !h.callerOwnsShop(w, r, existing.ShopID) {
		return
	}

	p, err := h.productService.Update(r.Context(), id, req.Name, req.PriceCents, req.ImageURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) SetProductActive(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/products/"), "/active")

	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := h.productService.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if !h.callerOwnsShop(w, r, existing.ShopID) {
		return
	}

	if err := h.productService.SetActive(r.Context(), id, req.Active); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product updated"})
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	c, err := h.cartService.Get(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)

	var req struct {
		ProductID string `json:"product_id"`
		Qty       int64  `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Qty == 0 {
		req.Qty = 1
	}

	p, err := h.productService.Get(r.Context(), req.ProductID)
	if err != nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	if err := h.cartService.AddItem(r.Context(), userID, p, req.Qty); err != nil {
		if errors.Is(err, cart.ErrShopConflict) {
			http.Error(w, "Cart holds items from another shop", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) IncrementCartItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	productID := strings.TrimSuffix(extractPathParam(r.URL.Path, "/cart/items/"), "/increment")
	if err := h.cartService.IncrementItem(r.Context(), userID, productID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) DecrementCartItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	productID := strings.TrimSuffix(extractPathParam(r.URL.Path, "/cart/items/"), "/decrement")
	if err := h.cartService.DecrementItem(r.Context(), userID, productID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	productID := extractPathParam(r.URL.Path, "/cart/items/")
	if err := h.cartService.RemoveItem(r.Context(), userID, productID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	if err := h.cartService.Clear(r.Context(), userID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Order Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	o, err := h.orderService.Place(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	orders, err := h.queryHandler.ListOrdersByBuyer(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")

	o, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	// Buyers see their own orders; the shop owner sees the shop's.
	userID := getUserID(r)
	if o.BuyerUID != userID && !h.ownsShop(r, o.ShopID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/cancel")

	o, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	userID := getUserID(r)
	if o.BuyerUID != userID && !h.ownsShop(r, o.ShopID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.orderService.Cancel(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SetOrderStatus moves an order along its pipeline. Only the shop owner
// may call it.
func (h *Handlers) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/status")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if !h.callerOwnsShop(w, r, o.ShopID) {
		return
	}

	var transition func(r *http.Request, id string) error
	switch order.Status(req.Status) {
	case order.StatusAccepted:
		transition = func(r *http.Request, id string) error { return h.orderService.Accept(r.Context(), id) }
	case order.StatusPreparing:
		transition = func(r *http.Request, id string) error { return h.orderService.MarkPreparing(r.Context(), id) }
	case order.StatusReady:
		transition = func(r *http.Request, id string) error { return h.orderService.MarkReady(r.Context(), id) }
	case order.StatusOutForDelivery:
		transition = func(r *http.Request, id string) error { return h.orderService.MarkOutForDelivery(r.Context(), id) }
	case order.StatusCompleted:
		transition = func(r *http.Request, id string) error { return h.orderService.Complete(r.Context(), id) }
	case order.StatusDelivered:
		transition = func(r *http.Request, id string) error { return h.orderService.MarkDelivered(r.Context(), id) }
	case order.StatusCancelled:
		transition = func(r *http.Request, id string) error { return h.orderService.Cancel(r.Context(), id) }
	case order.StatusRefunded:
		transition = func(r *http.Request, id string) error { return h.orderService.Refund(r.Context(), id) }
	default:
		http.Error(w, "Unknown status", http.StatusBadRequest)
		return
	}

	if err := transition(r, id); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order status updated"})
}

// Budget Handlers

func (h *Handlers) GetBudget(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	ctx := r.Context()

	items, err := h.budgetService.ListItems(ctx, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	monthly, err := h.budgetService.MonthlyBudget(ctx, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	month := time.Now().UTC().Format("2006-01")
	spent, err := h.budgetService.MonthSpend(ctx, userID, month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"items":             items,
		"monthly_cents":     monthly,
		"month":             month,
		"month_spent_cents": spent,
		"remaining_cents":   monthly - spent,
	})
}

func (h *Handlers) AddBudgetItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Category    string `json:"category"`
		AmountCents int64  `json:"amount_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.budgetService.AddItem(r.Context(), getUserID(r), req.Title, req.Category, req.AmountCents)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *Handlers) DeleteBudgetItem(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/budget/items/")
	if err := h.budgetService.DeleteItem(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) GetLiabilities(w http.ResponseWriter, r *http.Request) {
	liabilities, err := h.budgetService.ListLiabilities(r.Context(), getUserID(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, liabilities)
}

func (h *Handlers) AddLiability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title        string `json:"title"`
		BalanceCents int64  `json:"balance_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, err := h.budgetService.AddLiability(r.Context(), getUserID(r), req.Title, req.BalanceCents)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, l)
}

func (h *Handlers) PayDownLiability(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/budget/liabilities/"), "/pay")

	var req struct {
		AmountCents int64 `json:"amount_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.budgetService.PayDown(r.Context(), id, req.AmountCents); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string    `json:"title"`
		AmountCents int64     `json:"amount_cents"`
		When        time.Time `json:"when"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.When.IsZero() {
		req.When = time.Now().UTC()
	}

	tx, err := h.budgetService.AddTransaction(r.Context(), getUserID(r), req.Title, req.AmountCents, req.When)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

func (h *Handlers) GetGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.budgetService.ListGoals(r.Context(), getUserID(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, goals)
}

func (h *Handlers) AddGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		TargetCents int64  `json:"target_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g, err := h.budgetService.AddGoal(r.Context(), getUserID(r), req.Title, req.TargetCents)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, g)
}

func (h *Handlers) SaveTowardsGoal(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/budget/goals/"), "/save")

	var req struct {
		AmountCents int64 `json:"amount_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.budgetService.SaveTowards(r.Context(), id, req.AmountCents); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Image Handlers

func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := h.uploader.Upload(r.Context(), header.Filename, contentType, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// Puzzle Handlers

func (h *Handlers) NewPuzzle(w http.ResponseWriter, r *http.Request) {
	colors := 5
	if v := r.URL.Query().Get("colors"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2 || n > 12 {
			http.Error(w, "colors must be between 2 and 12", http.StatusBadRequest)
			return
		}
		colors = n
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	state := watersort.Generate(colors, colors*20, rng)
	respondJSON(w, http.StatusOK, map[string]any{"tubes": state})
}

func (h *Handlers) SolvePuzzle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tubes watersort.State `json:"tubes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	moves, ok := watersort.Solve(req.Tubes, 200000)
	if !ok {
		respondJSON(w, http.StatusOK, map[string]any{"solvable": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"solvable": true, "moves": moves})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// getUserID extracts the caller's user ID from the JWT context.
func getUserID(r *http.Request) string {
	return middleware.GetUserID(r.Context())
}

func (h *Handlers) ownsShop(r *http.Request, shopID string) bool {
	s, err := h.shopService.Get(r.Context(), shopID)
	if err != nil {
		return false
	}
	return s.OwnerUID == getUserID(r)
}

// callerOwnsShop writes the error response itself; callers just return
// when it reports false.
func (h *Handlers) callerOwnsShop(w http.ResponseWriter, r *http.Request, shopID string) bool {
	s, err := h.shopService.Get(r.Context(), shopID)
	if err != nil {
		http.Error(w, "Shop not found", http.StatusNotFound)
		return false
	}
	if s.OwnerUID != getUserID(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func respondShopError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shop.ErrNotOwner):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, shop.ErrShopNotFound):
		http.Error(w, "Shop not found", http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
