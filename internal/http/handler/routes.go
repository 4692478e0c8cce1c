package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"shopapi/internal/http/middleware"
	"shopapi/internal/service"
)

// APIPrefix is the base path of the versioned API.
const APIPrefix = "/api/v1"

// Services are the domain services the HTTP layer dispatches to.
type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Shops      service.ShopService
	Products   service.ProductService
	Photos     service.PhotoService
	Categories service.CategoryService
}

// Options carries optional collaborators of RegisterRoutes.
type Options struct {
	// HealthDeps are pinged by /health in addition to the database.
	HealthDeps []Dependency
	// AuthObserver counts rejected bearer tokens.
	AuthObserver middleware.AuthObserver
}

// RegisterRoutes attaches the operational routes and the /api/v1 routes.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, opts Options) {
	app.Get("/health", HealthCheck(db, opts.HealthDeps...))
	app.Get("/healthz", LivenessProbe())

	requireAuth := middleware.Auth(svc.Auth, opts.AuthObserver)
	api := app.Group(APIPrefix)

	api.Post("/auth/register", Register(svc.Auth))
	api.Post("/auth/login", Login(svc.Auth))
	api.Post("/auth/refresh", Refresh(svc.Auth))
	api.Post("/auth/logout", requireAuth, Logout(svc.Auth))

	me := api.Group("/users/me", requireAuth)
	me.Get("", GetProfile(svc.Users))
	me.Patch("", UpdateProfile(svc.Users))
	me.Delete("", DeactivateAccount(svc.Users, svc.Auth))
	me.Put("/password", ChangePassword(svc.Users))
	me.Get("/delivery", GetDelivery(svc.Users))
	me.Put("/delivery", UpsertDelivery(svc.Users))
	me.Get("/shops", ListMyShops(svc.Shops))

	api.Get("/shops", ListShops(svc.Shops))
	api.Post("/shops", requireAuth, CreateShop(svc.Shops))
	api.Get("/shops/:id", GetShop(svc.Shops))
	api.Patch("/shops/:id", requireAuth, UpdateShop(svc.Shops))
	api.Delete("/shops/:id", requireAuth, DeactivateShop(svc.Shops))
	api.Get("/shops/:id/products", ListShopProducts(svc.Shops, svc.Products))
	api.Post("/shops/:id/products", requireAuth, CreateProduct(svc.Products))

	api.Get("/products", ListProducts(svc.Products))
	api.Get("/products/:id", GetProduct(svc.Products))
	api.Patch("/products/:id", requireAuth, UpdateProduct(svc.Products))
	api.Delete("/products/:id", requireAuth, DeactivateProduct(svc.Products))
	api.Post("/products/:id/photos", requireAuth, UploadPhoto(svc.Photos))
	api.Delete("/products/:id/photos/:photoId", requireAuth, DeletePhoto(svc.Photos))

	api.Get("/categories", ListCategories(svc.Categories))
}
