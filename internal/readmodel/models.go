package readmodel

import "time"

// ShopReadModel is the storefront as buyers browse it. ProductCount is
// maintained by the projector.
type ShopReadModel struct {
	ID           string    `json:"id"`
	OwnerUID     string    `json:"owner_uid"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Status       string    `json:"status"`
	Categories   []string  `json:"categories,omitempty"`
	PriceBand    string    `json:"price_band,omitempty"`
	CoverURL     string    `json:"cover_url,omitempty"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProductReadModel is the catalog entry for one product.
type ProductReadModel struct {
	ID         string    `json:"id"`
	ShopID     string    `json:"shop_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	ImageURL   string    `json:"image_url,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// CartItemReadModel is one line of a cart.
type CartItemReadModel struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Qty            int64  `json:"qty"`
	ImageURL       string `json:"image_url,omitempty"`
}

// CartReadModel is a buyer's cart with its computed subtotal.
type CartReadModel struct {
	UserID        string              `json:"user_id"`
	ShopID        string              `json:"shop_id"`
	Items         []CartItemReadModel `json:"items"`
	SubtotalCents int64               `json:"subtotal_cents"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderItemReadModel is one snapshotted line of an order.
type OrderItemReadModel struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Qty            int64  `json:"qty"`
	ImageURL       string `json:"image_url,omitempty"`
}

// OrderReadModel is an order with its lines and lifecycle status.
type OrderReadModel struct {
	ID            string               `json:"id"`
	ShopID        string               `json:"shop_id"`
	BuyerUID      string               `json:"buyer_uid"`
	Status        string               `json:"status"`
	SubtotalCents int64                `json:"subtotal_cents"`
	FeesCents     int64                `json:"fees_cents"`
	TotalCents    int64                `json:"total_cents"`
	Items         []OrderItemReadModel `json:"items"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// SellerStatsReadModel is the per-shop dashboard line: orders taken and
// gross value, excluding cancelled and refunded orders.
type SellerStatsReadModel struct {
	ShopID     string `json:"shop_id"`
	OrderCount int64  `json:"order_count"`
	GrossCents int64  `json:"gross_cents"`
}

// SessionReadModel tracks a refresh-token session. Only the token hash
// is stored.
type SessionReadModel struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	IPAddress        string    `json:"ip_address,omitempty"`
	UserAgent        string    `json:"user_agent,omitempty"`
}

// UserReadModel is an account without its credential hash.
type UserReadModel struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
