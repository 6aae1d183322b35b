/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/raw-materials/*      Raw materials and their movement history
  /api/stock-movements/*    Inventory ledger
  /api/products/*           Product catalog with compositions
  /api/clients/*            Client records
  /api/suppliers/*          Supplier records
  /api/production-orders/*  Production workflow
  /api/sales-orders/*       Sales workflow

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/raw-materials", func(r chi.Router) {
			r.Get("/", h.ListRawMaterials)
			r.Post("/", h.CreateRawMaterial)
			r.Get("/{id}", h.GetRawMaterial)
			r.Get("/{id}/movements", h.ListMaterialMovements)
		})

		r.Route("/stock-movements", func(r chi.Router) {
			r.Get("/", h.ListMovements)
			r.Post("/", h.CreateMovement)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/{id}", h.GetProduct)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
			r.Get("/{id}", h.GetClient)
			r.Put("/{id}", h.UpdateClient)
			r.Delete("/{id}", h.DeleteClient)
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.ListSuppliers)
			r.Post("/", h.CreateSupplier)
			r.Get("/{id}", h.GetSupplier)
			r.Put("/{id}", h.UpdateSupplier)
			r.Delete("/{id}", h.DeleteSupplier)
		})

		r.Route("/production-orders", func(r chi.Router) {
			r.Get("/", h.ListProductionOrders)
			r.Post("/", h.CreateProductionOrder)
			r.Get("/{id}", h.GetProductionOrder)
			r.Post("/{id}/transition", h.TransitionProductionOrder)
			r.Delete("/{id}", h.DeleteProductionOrder)
		})

		r.Route("/sales-orders", func(r chi.Router) {
			r.Get("/", h.ListSalesOrders)
			r.Post("/", h.CreateSalesOrder)
			r.Get("/{id}", h.GetSalesOrder)
			r.Post("/{id}/transition", h.TransitionSalesOrder)
			r.Put("/{id}/items", h.UpdateSalesOrderItems)
			r.Put("/{id}/notes", h.UpdateSalesOrderNotes)
			r.Delete("/{id}", h.DeleteSalesOrder)
		})
	})

	return r
}
