package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mokolo/internal/api"
	applog "mokolo/internal/log"
	"mokolo/internal/validate"
)

// ---------- Products ----------

func (h *AdminHandler) Products(c *fiber.Ctx) error {
	q := api.ProductQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     c.QueryInt("page"),
		Limit:    c.QueryInt("limit"),
	}
	products, err := h.client(c).Products(c.Context(), q)
	if err != nil {
		return h.fail(c, "admin.products.list.fail", err)
	}
	return c.JSON(products)
}

func (h *AdminHandler) Product(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	product, err := h.client(c).Product(c.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found", "backTo": "/admin/products"})
		}
		return h.fail(c, "admin.products.get.fail", err)
	}
	return c.JSON(product)
}

func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var in api.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if !validate.Money(in.Price) || (in.ComparePrice != nil && !validate.Money(*in.ComparePrice)) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "price must be a non-negative amount"})
	}
	product, err := h.client(c).CreateProduct(c.Context(), in)
	if err != nil {
		return h.fail(c, "admin.products.create.fail", err)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product": product.ID})
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	var in api.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if !validate.Money(in.Price) || (in.ComparePrice != nil && !validate.Money(*in.ComparePrice)) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "price must be a non-negative amount"})
	}
	product, err := h.client(c).UpdateProduct(c.Context(), id, in)
	if err != nil {
		return h.fail(c, "admin.products.update.fail", err)
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product": id})
	return c.JSON(product)
}

func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	if err := h.client(c).DeleteProduct(c.Context(), id); err != nil {
		return h.fail(c, "admin.products.delete.fail", err)
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product": id})
	return c.JSON(fiber.Map{"ok": true})
}

// UpdateStock applies a set/increment/decrement adjustment. The backend
// computes the new stock and appends the inventory log entry.
func (h *AdminHandler) UpdateStock(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	var body struct {
		Quantity  int    `json:"quantity"`
		Operation string `json:"operation"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	op, okOp := validate.StockOp(body.Operation)
	if !okID || !okOp || body.Quantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid stock adjustment"})
	}
	product, err := h.client(c).UpdateStock(c.Context(), id, body.Quantity, op)
	if err != nil {
		return h.fail(c, "admin.stock.update.fail", err)
	}
	applog.Audit(c, "admin.stock.update", map[string]any{"product": id, "op": op, "qty": body.Quantity, "stock": product.Stock})
	return c.JSON(product)
}

func (h *AdminHandler) InventoryLogs(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	logs, err := h.client(c).InventoryLogs(c.Context(), id)
	if err != nil {
		return h.fail(c, "admin.inventory.logs.fail", err)
	}
	return c.JSON(logs)
}

// ---------- Categories ----------

func (h *AdminHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.client(c).Categories(c.Context())
	if err != nil {
		return h.fail(c, "admin.categories.list.fail", err)
	}
	return c.JSON(categories)
}

func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	var in api.CategoryInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if _, ok := validate.Name(in.Name); !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "category name required"})
	}
	category, err := h.client(c).CreateCategory(c.Context(), in)
	if err != nil {
		return h.fail(c, "admin.categories.create.fail", err)
	}
	applog.Audit(c, "admin.categories.create", map[string]any{"category": category.ID})
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *AdminHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
	}
	var in api.CategoryInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	category, err := h.client(c).UpdateCategory(c.Context(), id, in)
	if err != nil {
		return h.fail(c, "admin.categories.update.fail", err)
	}
	applog.Audit(c, "admin.categories.update", map[string]any{"category": id})
	return c.JSON(category)
}

func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
	}
	if err := h.client(c).DeleteCategory(c.Context(), id); err != nil {
		return h.fail(c, "admin.categories.delete.fail", err)
	}
	applog.Audit(c, "admin.categories.delete", map[string]any{"category": id})
	return c.JSON(fiber.Map{"ok": true})
}

// UploadCategoryImage forwards the uploaded file as multipart form data.
func (h *AdminHandler) UploadCategoryImage(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read upload"})
	}
	defer f.Close()

	category, err := h.client(c).UploadCategoryImage(c.Context(), id, fh.Filename, f)
	if err != nil {
		return h.fail(c, "admin.categories.image.fail", err)
	}
	applog.Audit(c, "admin.categories.image", map[string]any{"category": id, "file": fh.Filename})
	return c.JSON(category)
}

// ---------- Specification templates ----------

func (h *AdminHandler) SpecTemplates(c *fiber.Ctx) error {
	templates, err := h.client(c).SpecTemplates(c.Context())
	if err != nil {
		return h.fail(c, "admin.specs.list.fail", err)
	}
	return c.JSON(templates)
}

func (h *AdminHandler) CreateSpecTemplate(c *fiber.Ctx) error {
	var in api.SpecTemplateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if in.Label == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "label required"})
	}
	tpl, err := h.client(c).CreateSpecTemplate(c.Context(), in)
	if err != nil {
		return h.fail(c, "admin.specs.create.fail", err)
	}
	applog.Audit(c, "admin.specs.create", map[string]any{"template": tpl.ID, "key": tpl.Key})
	return c.Status(fiber.StatusCreated).JSON(tpl)
}

func (h *AdminHandler) UpdateSpecTemplate(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid template id"})
	}
	var in api.SpecTemplateInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	tpl, err := h.client(c).UpdateSpecTemplate(c.Context(), id, in)
	if err != nil {
		return h.fail(c, "admin.specs.update.fail", err)
	}
	applog.Audit(c, "admin.specs.update", map[string]any{"template": id})
	return c.JSON(tpl)
}

func (h *AdminHandler) DeleteSpecTemplate(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid template id"})
	}
	if err := h.client(c).DeleteSpecTemplate(c.Context(), id); err != nil {
		return h.fail(c, "admin.specs.delete.fail", err)
	}
	applog.Audit(c, "admin.specs.delete", map[string]any{"template": id})
	return c.JSON(fiber.Map{"ok": true})
}
