package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/example/homemade-market/internal/api/middleware"
	"github.com/example/homemade-market/internal/auth"
)

func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, fnHandlers *FunctionHandlers, jwtService *auth.JWTService) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.AuthMiddleware(jwtService)
	requireSeller := func(h http.HandlerFunc) http.Handler {
		return requireAuth(middleware.RequireRole("seller")(h))
	}

	// Auth
	mux.HandleFunc("/api/auth/register", postOnly(authHandlers.Register))
	mux.HandleFunc("/api/auth/login", postOnly(authHandlers.Login))
	mux.HandleFunc("/api/auth/logout", postOnly(authHandlers.Logout))
	mux.HandleFunc("/api/auth/refresh", postOnly(authHandlers.Refresh))
	mux.Handle("/api/auth/me", requireAuth(http.HandlerFunc(authHandlers.Me)))

	// Shops
	mux.Handle("/shops", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetShops(w, r)
		case http.MethodPost:
			handlers.CreateShop(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/shops/mine", requireSeller(handlers.GetMyShops))

	mux.Handle("/shops/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/products") && r.Method == http.MethodGet:
			handlers.GetShopProducts(w, r)
		case strings.HasSuffix(path, "/orders") && r.Method == http.MethodGet:
			handlers.GetShopOrders(w, r)
		case strings.HasSuffix(path, "/stats") && r.Method == http.MethodGet:
			handlers.GetShopStats(w, r)
		case strings.HasSuffix(path, "/status") && r.Method == http.MethodPost:
			handlers.SetShopStatus(w, r)
		case r.Method == http.MethodGet:
			handlers.GetShop(w, r)
		case r.Method == http.MethodPut:
			handlers.UpdateShop(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Products
	mux.Handle("/products", requireSeller(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handlers.CreateProduct(w, r)
	}))

	mux.Handle("/products/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/active") && r.Method == http.MethodPost:
			handlers.SetProductActive(w, r)
		case r.Method == http.MethodGet:
			handlers.GetProduct(w, r)
		case r.Method == http.MethodPut:
			handlers.UpdateProduct(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Cart
	mux.Handle("/cart", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetCart(w, r)
		case http.MethodDelete:
			handlers.ClearCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/cart/items", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handlers.AddToCart(w, r)
	})))

	mux.Handle("/cart/items/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/increment") && r.Method == http.MethodPost:
			handlers.IncrementCartItem(w, r)
		case strings.HasSuffix(path, "/decrement") && r.Method == http.MethodPost:
			handlers.DecrementCartItem(w, r)
		case r.Method == http.MethodDelete:
			handlers.RemoveFromCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Orders
	mux.Handle("/orders", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetOrders(w, r)
		case http.MethodPost:
			handlers.PlaceOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	mux.Handle("/orders/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/cancel") && r.Method == http.MethodPost:
			handlers.CancelOrder(w, r)
		case strings.HasSuffix(path, "/status") && r.Method == http.MethodPost:
			handlers.SetOrderStatus(w, r)
		case r.Method == http.MethodGet:
			handlers.GetOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Budget
	mux.Handle("/budget", requireAuth(getOnlyHandler(handlers.GetBudget)))
	mux.Handle("/budget/items", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handlers.AddBudgetItem(w, r)
	})))
	mux.Handle("/budget/items/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handlers.DeleteBudgetItem(w, r)
	})))
	mux.Handle("/budget/liabilities", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetLiabilities(w, r)
		case http.MethodPost:
			handlers.AddLiability(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/budget/liabilities/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/pay") && r.Method == http.MethodPost {
			handlers.PayDownLiability(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})))
	mux.Handle("/budget/transactions", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handlers.AddTransaction(w, r)
	})))
	mux.Handle("/budget/goals", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetGoals(w, r)
		case http.MethodPost:
			handlers.AddGoal(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/budget/goals/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/save") && r.Method == http.MethodPost {
			handlers.SaveTowardsGoal(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})))

	// Images
	mux.Handle("/images", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handlers.UploadImage(w, r)
	})))

	// Puzzle
	mux.HandleFunc("/puzzle/new", getOnly(handlers.NewPuzzle))
	mux.HandleFunc("/puzzle/solve", postOnly(handlers.SolvePuzzle))

	// Functions (mobile-facing, CORS-open, no auth)
	mux.Handle("/functions/createPaymentIntent", withCORS(postOnlyHandler(fnHandlers.CreatePaymentIntent)))
	mux.Handle("/functions/createIdentitySession", withCORS(postOnlyHandler(fnHandlers.CreateIdentitySession)))
	mux.Handle("/functions/getIdentityStatus", withCORS(postOnlyHandler(fnHandlers.GetIdentityStatus)))
	mux.Handle("/functions/createConnectOnboardingLink", withCORS(postOnlyHandler(fnHandlers.CreateConnectOnboardingLink)))
	mux.Handle("/functions/proxy", withCORS(postOnlyHandler(fnHandlers.Proxy)))

	return withLogging(mux)
}

func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func postOnlyHandler(h http.HandlerFunc) http.Handler {
	return postOnly(h)
}

func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func getOnlyHandler(h http.HandlerFunc) http.Handler {
	return getOnly(h)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
