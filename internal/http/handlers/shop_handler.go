package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mokolo/internal/api"
	applog "mokolo/internal/log"
	"mokolo/internal/orders"
	"mokolo/internal/validate"
)

// ShopHandler serves the public storefront: listings, product pages,
// order tracking and the wishlist.
type ShopHandler struct {
	Shop *api.Shop
}

func (h *ShopHandler) client(c *fiber.Ctx) *api.Shop {
	if tok, _ := c.Locals("token").(string); tok != "" {
		return h.Shop.WithToken(tok)
	}
	return h.Shop
}

func (h *ShopHandler) Home(c *fiber.Ctx) error {
	q := api.ShopQuery{Featured: true, Limit: 12}
	products, err := h.Shop.Products(c.Context(), q)
	if err != nil {
		applog.Error(c, "shop.home.fail", err, nil)
		products = nil
	}
	categories, err := h.Shop.Categories(c.Context())
	if err != nil {
		applog.Error(c, "shop.categories.fail", err, nil)
		categories = nil
	}
	return render(c, "home", fiber.Map{"Products": products, "Categories": categories})
}

func (h *ShopHandler) Category(c *fiber.Ctx) error {
	slug := c.Params("slug")
	q := api.ShopQuery{
		Category: slug,
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     c.QueryInt("page"),
	}
	products, err := h.Shop.Products(c.Context(), q)
	if err != nil {
		if api.IsNotFound(err) {
			return notFound(c, "We could not find that category.", "/")
		}
		applog.Error(c, "shop.category.fail", err, map[string]any{"category": slug})
		return render(c, "category", fiber.Map{"Slug": slug, "Products": nil, "Err": "Could not load products"})
	}
	return render(c, "category", fiber.Map{"Slug": slug, "Products": products, "Err": ""})
}

func (h *ShopHandler) Search(c *fiber.Ctx) error {
	term := c.Query("q")
	if term == "" {
		return c.Redirect("/")
	}
	products, err := h.Shop.Products(c.Context(), api.ShopQuery{Search: term, Page: c.QueryInt("page")})
	if err != nil {
		applog.Error(c, "shop.search.fail", err, map[string]any{"q": term})
		products = nil
	}
	return render(c, "category", fiber.Map{"Slug": "", "Search": term, "Products": products, "Err": ""})
}

func (h *ShopHandler) Product(c *fiber.Ctx) error {
	slug := c.Params("slug")
	product, err := h.Shop.Product(c.Context(), slug)
	if err != nil {
		if api.IsNotFound(err) {
			return notFound(c, "We could not find that product.", "/")
		}
		applog.Error(c, "shop.product.fail", err, map[string]any{"slug": slug})
		return notFound(c, "Something went wrong loading this product.", "/")
	}
	return render(c, "product", fiber.Map{
		"Product":    product,
		"OutOfStock": product.Stock <= 0 && !product.IsPreorder,
	})
}

// Track looks an order up by its public number. The page shows the
// delivery pipeline with the current stage highlighted.
func (h *ShopHandler) Track(c *fiber.Ctx) error {
	number := c.Params("number")
	if number == "" {
		number = c.Query("number")
	}
	if number == "" {
		return render(c, "track", fiber.Map{"Order": nil, "Err": ""})
	}

	order, err := h.Shop.Track(c.Context(), number)
	if err != nil {
		if api.IsNotFound(err) {
			return render(c, "track", fiber.Map{"Order": nil, "Err": "No order found with that number"})
		}
		applog.Error(c, "shop.track.fail", err, map[string]any{"number": number})
		return render(c, "track", fiber.Map{"Order": nil, "Err": "Could not look that order up right now"})
	}

	return render(c, "track", fiber.Map{
		"Order":    order,
		"Stages":   orders.Progression,
		"Progress": orders.ProgressIndex(order.DeliveryStatus),
		"Terminal": orders.IsTerminal(order.DeliveryStatus),
		"Label":    orders.Label(order.DeliveryStatus),
		"Err":      "",
	})
}

// ---------- Wishlist (authenticated customers) ----------

func (h *ShopHandler) Wishlist(c *fiber.Ctx) error {
	products, err := h.client(c).Wishlist(c.Context())
	if err != nil {
		applog.Error(c, "shop.wishlist.fail", err, nil)
		if ae, ok := err.(*api.Error); ok {
			return c.Status(ae.Status).JSON(fiber.Map{"error": ae.Message})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream request failed"})
	}
	return c.JSON(products)
}

func (h *ShopHandler) SaveToWishlist(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Params("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	if err := h.client(c).SaveToWishlist(c.Context(), productID); err != nil {
		applog.Error(c, "shop.wishlist.save.fail", err, map[string]any{"product": productID})
		if ae, ok := err.(*api.Error); ok {
			return c.Status(ae.Status).JSON(fiber.Map{"error": ae.Message})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream request failed"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *ShopHandler) RemoveFromWishlist(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Params("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	if err := h.client(c).RemoveFromWishlist(c.Context(), productID); err != nil {
		applog.Error(c, "shop.wishlist.remove.fail", err, map[string]any{"product": productID})
		if ae, ok := err.(*api.Error); ok {
			return c.Status(ae.Status).JSON(fiber.Map{"error": ae.Message})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream request failed"})
	}
	return c.JSON(fiber.Map{"ok": true})
}
