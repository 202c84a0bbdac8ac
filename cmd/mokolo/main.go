package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"mokolo/internal/config"
	"mokolo/internal/http/handlers"
	applog "mokolo/internal/log"
	"mokolo/internal/permissions"
	"mokolo/internal/session"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	// Session storage: redis when configured, sqlite when a DSN is given,
	// in-process memory otherwise. Tokens are sealed at rest when a key is set.
	var box *session.Box
	if cfg.SessionKey != "" {
		b, err := session.NewBox(cfg.SessionKey)
		if err != nil {
			log.Fatalf("[session] bad SESSION_KEY: %v", err)
		}
		box = b
	}
	var store session.Storage
	switch {
	case cfg.RedisAddr != "":
		s, err := session.OpenRedis(cfg.RedisAddr, box)
		if err != nil {
			log.Fatalf("[session] redis: %v", err)
		}
		store = s
		log.Printf("[session] storage=redis addr=%s", cfg.RedisAddr)
	case cfg.DBDSN != "":
		s, err := session.OpenSQLite(cfg.DBDSN, box)
		if err != nil {
			log.Fatalf("[session] sqlite: %v", err)
		}
		store = s
		log.Printf("[session] storage=sqlite dsn=%s", cfg.DBDSN)
	default:
		store = session.NewMemory()
		log.Printf("[session] storage=memory (sessions do not survive restarts)")
	}

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(string(c.Request().URI().Path()), "/static/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Next: func(c *fiber.Ctx) bool {
			// JSON dashboard endpoints authenticate with bearer-backed
			// sessions and are exercised by non-form clients.
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/admin/api/") || strings.HasPrefix(p, "/supplier/api/") || strings.HasPrefix(p, "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"form": c.FormValue("csrf")})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	app.Static("/static", "./web/static")

	// ---------- App handlers ----------
	deps := handlers.NewDeps(cfg, store)

	// Public storefront
	app.Get("/", deps.ShopHandler.Home)
	app.Get("/search", limiter.New(limiter.Config{Max: 30, Expiration: time.Minute}), deps.ShopHandler.Search)
	app.Get("/category/:slug", deps.ShopHandler.Category)
	app.Get("/product/:slug", deps.ShopHandler.Product)
	app.Get("/track", deps.ShopHandler.Track)
	app.Get("/track/:number", deps.ShopHandler.Track)

	// Cart
	app.Get("/cart", deps.CartHandler.View)
	app.Get("/api/cart", deps.CartHandler.Snapshot)
	app.Post("/cart", deps.CartHandler.Add)
	app.Patch("/api/cart/items/:itemId", deps.CartHandler.Update)
	app.Delete("/api/cart/items/:itemId", deps.CartHandler.Remove)
	app.Post("/api/cart/toggle", deps.CartHandler.Toggle)

	// Checkout
	app.Get("/checkout", deps.CheckoutHandler.Form)
	app.Post("/checkout", deps.CheckoutHandler.Place)

	// Customer auth (login throttled)
	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	})
	app.Get("/login", deps.AccountHandler.LoginForm)
	app.Post("/login", loginLimiter, deps.AccountHandler.Login)
	app.Get("/register", deps.AccountHandler.RegisterForm)
	app.Post("/register", loginLimiter, deps.AccountHandler.Register)
	app.Post("/api/auth/google", deps.AccountHandler.GoogleAuth)
	app.Post("/logout", deps.AccountHandler.Logout)

	// Customer account
	account := app.Group("/account", handlers.RequireCustomer(deps.Customers))
	account.Get("/", deps.AccountHandler.Account)
	account.Put("/profile", deps.AccountHandler.UpdateProfile)
	account.Post("/password", deps.AccountHandler.ChangePassword)
	account.Post("/addresses", deps.AccountHandler.CreateAddress)
	account.Put("/addresses/:id", deps.AccountHandler.UpdateAddress)
	account.Delete("/addresses/:id", deps.AccountHandler.DeleteAddress)
	account.Get("/orders", deps.AccountHandler.Orders)
	account.Get("/orders/:id", deps.AccountHandler.Order)

	// Wishlist (needs a signed-in customer for the backend call)
	wishlist := app.Group("/api/wishlist", handlers.RequireCustomer(deps.Customers))
	wishlist.Get("/", deps.ShopHandler.Wishlist)
	wishlist.Post("/:productId", deps.ShopHandler.SaveToWishlist)
	wishlist.Delete("/:productId", deps.ShopHandler.RemoveFromWishlist)

	// Admin back-office
	app.Get("/admin/login", deps.AdminHandler.LoginForm)
	app.Post("/admin/login", loginLimiter, deps.AdminHandler.Login)
	admin := app.Group("/admin", handlers.RequireAdmin(deps.Admins))
	admin.Post("/logout", deps.AdminHandler.Logout)
	admin.Post("/password", deps.AdminHandler.ChangePassword)
	admin.Get("/", deps.AdminHandler.Dashboard)
	admin.Get("/api/reports/:kind", deps.AdminHandler.Report)
	admin.Get("/api/reports/:kind/download", deps.AdminHandler.DownloadReport)

	admin.Get("/api/products", deps.AdminHandler.Products)
	admin.Post("/api/products", deps.AdminHandler.CreateProduct)
	admin.Get("/api/products/:id", deps.AdminHandler.Product)
	admin.Put("/api/products/:id", deps.AdminHandler.UpdateProduct)
	admin.Delete("/api/products/:id", deps.AdminHandler.DeleteProduct)
	admin.Patch("/api/products/:id/stock", deps.AdminHandler.UpdateStock)
	admin.Get("/api/products/:id/inventory-logs", deps.AdminHandler.InventoryLogs)

	admin.Get("/api/categories", deps.AdminHandler.Categories)
	admin.Post("/api/categories", deps.AdminHandler.CreateCategory)
	admin.Put("/api/categories/:id", deps.AdminHandler.UpdateCategory)
	admin.Delete("/api/categories/:id", deps.AdminHandler.DeleteCategory)
	admin.Post("/api/categories/:id/image", deps.AdminHandler.UploadCategoryImage)

	admin.Get("/api/spec-templates", deps.AdminHandler.SpecTemplates)
	admin.Post("/api/spec-templates", deps.AdminHandler.CreateSpecTemplate)
	admin.Put("/api/spec-templates/:id", deps.AdminHandler.UpdateSpecTemplate)
	admin.Delete("/api/spec-templates/:id", deps.AdminHandler.DeleteSpecTemplate)

	admin.Get("/api/orders", deps.AdminHandler.Orders)
	admin.Get("/api/orders/:id", deps.AdminHandler.Order)
	admin.Patch("/api/orders/:id/delivery-status", deps.AdminHandler.UpdateDeliveryStatus)
	admin.Patch("/api/orders/:id/payment-status", deps.AdminHandler.UpdatePaymentStatus)

	admin.Get("/api/suppliers", deps.AdminHandler.Suppliers)
	admin.Get("/api/suppliers/:id", deps.AdminHandler.Supplier)
	admin.Patch("/api/suppliers/:id", deps.AdminHandler.UpdateSupplier)
	admin.Get("/api/suppliers/:id/users", deps.AdminHandler.SupplierUsers)
	admin.Post("/api/suppliers/:id/users", deps.AdminHandler.CreateSupplierUser)
	admin.Put("/api/suppliers/:id/users/:userId", deps.AdminHandler.UpdateSupplierUser)
	admin.Delete("/api/suppliers/:id/users/:userId", deps.AdminHandler.DeleteSupplierUser)
	admin.Get("/api/suppliers/:id/products", deps.AdminHandler.SupplierProducts)
	admin.Get("/api/suppliers/:id/orders", deps.AdminHandler.SupplierOrders)

	// Supplier dashboard
	app.Get("/supplier/login", deps.SupplierHandler.LoginForm)
	app.Post("/supplier/login", loginLimiter, deps.SupplierHandler.Login)
	supplier := app.Group("/supplier", handlers.RequireSupplier(deps.Suppliers))
	supplier.Post("/logout", deps.SupplierHandler.Logout)
	supplier.Post("/password", deps.SupplierHandler.ChangePassword)
	supplier.Get("/api/me", deps.SupplierHandler.Me)

	supplier.Get("/api/products", deps.SupplierHandler.Products)
	supplier.Get("/api/products/:id", deps.SupplierHandler.Product)
	canWrite := handlers.RequireCap(handlers.CanManageProducts)
	supplier.Post("/api/products", canWrite, deps.SupplierHandler.CreateProduct)
	supplier.Put("/api/products/:id", canWrite, deps.SupplierHandler.UpdateProduct)
	supplier.Delete("/api/products/:id", handlers.RequireCap(func(s permissions.Set) bool { return s.CanDeleteProducts }), deps.SupplierHandler.DeleteProduct)
	supplier.Patch("/api/products/:id/stock", canWrite, deps.SupplierHandler.UpdateStock)

	canOrders := handlers.RequireCap(handlers.CanViewOrders)
	supplier.Get("/api/orders", canOrders, deps.SupplierHandler.Orders)
	supplier.Get("/api/orders/:id", canOrders, deps.SupplierHandler.Order)
	supplier.Patch("/api/orders/:id/items/:itemId/fulfillment",
		handlers.RequireCap(func(s permissions.Set) bool { return s.CanUpdateFulfillment }),
		deps.SupplierHandler.UpdateFulfillment)

	canStaff := handlers.RequireCap(handlers.CanManageStaff)
	supplier.Get("/api/staff", canStaff, deps.SupplierHandler.Staff)
	supplier.Post("/api/staff", canStaff, deps.SupplierHandler.CreateStaff)
	supplier.Put("/api/staff/:userId", canStaff, deps.SupplierHandler.UpdateStaff)
	supplier.Delete("/api/staff/:userId", canStaff, deps.SupplierHandler.DeleteStaff)

	supplier.Get("/api/payouts",
		handlers.RequireCap(func(s permissions.Set) bool { return s.CanViewPayouts }),
		deps.SupplierHandler.Payouts)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
