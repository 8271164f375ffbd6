package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"

	"github.com/bloem-market/bloem-backend/internal/config"
	"github.com/bloem-market/bloem-backend/internal/database"
	"github.com/bloem-market/bloem-backend/internal/modules/auth"
	"github.com/bloem-market/bloem-backend/internal/modules/cart"
	"github.com/bloem-market/bloem-backend/internal/modules/catalog"
	"github.com/bloem-market/bloem-backend/internal/modules/ledger"
	"github.com/bloem-market/bloem-backend/internal/modules/order"
	"github.com/bloem-market/bloem-backend/internal/modules/payment"
	"github.com/bloem-market/bloem-backend/internal/modules/store"
	"github.com/bloem-market/bloem-backend/internal/modules/user"
	"github.com/bloem-market/bloem-backend/internal/modules/wishlist"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	fmt.Println("Successfully connected to the database!")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	staff := auth.Chain(auth.Authenticator(cfg.Auth.JWTSecret), auth.RequireRole(string(user.RoleStaff)))

	// ── Phase 1: Identity ───────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router)

	authService := auth.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Phase 2: Stores & Catalog ───────────────────────────
	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService).RegisterRoutes(router)

	storeRepo := store.NewPostgresRepository(db)
	storeService := store.NewService(storeRepo, catalogRepo)
	store.NewHandler(storeService, staff).RegisterRoutes(router)

	// ── Phase 3: Shopping ───────────────────────────────────
	cartRepo := cart.NewPostgresRepository(db)
	cartService := cart.NewService(cartRepo)
	cart.NewHandler(cartService).RegisterRoutes(router)

	wishlistRepo := wishlist.NewPostgresRepository(db)
	wishlistService := wishlist.NewService(wishlistRepo)
	wishlist.NewHandler(wishlistService).RegisterRoutes(router)

	// ── Phase 4: Orders & Settlement ────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, cfg.Orders.PlatformFeeRate)
	order.NewHandler(orderService).RegisterRoutes(router)

	gateway := payment.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.Payment.StripeBaseURL)
	paymentService := payment.NewService(orderService, gateway, cfg.Payment.Currency)
	payment.NewHandler(paymentService, staff).RegisterRoutes(router)

	ledgerRepo := ledger.NewPostgresRepository(db)
	ledgerService := ledger.NewService(ledgerRepo)
	ledger.NewHandler(ledgerService).RegisterRoutes(router)

	// ── Stale reservation sweeper ───────────────────────────
	if cfg.Orders.ReservationTTL > 0 {
		sweeper := order.NewSweeper(orderService, orderRepo, cfg.Orders.ReservationTTL, cfg.Orders.SweepInterval)
		go sweeper.Run(context.Background())
	}

	// ── Start Server ────────────────────────────────────────
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	fmt.Printf("Bloem API server starting on :%s\n", cfg.Server.Port)
	log.Fatal(server.ListenAndServe())
}
