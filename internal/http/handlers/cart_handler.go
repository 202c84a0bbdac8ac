package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mokolo/internal/api"
	"mokolo/internal/cart"
	applog "mokolo/internal/log"
	"mokolo/internal/validate"
)

// CartHandler mutates the anonymous cart identified by the cart_id cookie.
// All mutations answer with the full cart snapshot so the page and the
// drawer always agree on totals.
type CartHandler struct {
	Carts *cart.Store
}

func (h *CartHandler) cartErr(c *fiber.Ctx, action string, err error) error {
	if errors.Is(err, cart.ErrItemBusy) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "item update already in progress"})
	}
	applog.Error(c, action, err, nil)
	if ae, ok := err.(*api.Error); ok {
		return c.Status(ae.Status).JSON(fiber.Map{"error": ae.Message, "errors": ae.Errors})
	}
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "cart service unavailable"})
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cartID := ensureCartID(c)
	snap, err := h.Carts.Get(c.Context(), cartID)
	if err != nil {
		return h.cartErr(c, "cart.view.fail", err)
	}
	return render(c, "cart", fiber.Map{"Cart": snap})
}

func (h *CartHandler) Snapshot(c *fiber.Ctx) error {
	cartID := ensureCartID(c)
	snap, err := h.Carts.Get(c.Context(), cartID)
	if err != nil {
		return h.cartErr(c, "cart.snapshot.fail", err)
	}
	return c.JSON(snap)
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	cartID := ensureCartID(c)
	productID, ok := validate.ID(c.FormValue("product_id", c.Query("product_id")))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	qty := validate.Qty(c.FormValue("quantity", "1"))

	snap, err := h.Carts.AddItem(c.Context(), cartID, productID, qty)
	if err != nil {
		return h.cartErr(c, "cart.add.fail", err)
	}
	applog.Info(c, "cart.add", map[string]any{"product": productID, "qty": qty})
	return c.JSON(snap)
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	cartID := ensureCartID(c)
	itemID, ok := validate.ID(c.Params("itemId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	snap, err := h.Carts.UpdateQuantity(c.Context(), cartID, itemID, body.Quantity)
	if err != nil {
		return h.cartErr(c, "cart.update.fail", err)
	}
	return c.JSON(snap)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	cartID := ensureCartID(c)
	itemID, ok := validate.ID(c.Params("itemId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}
	snap, err := h.Carts.RemoveItem(c.Context(), cartID, itemID)
	if err != nil {
		return h.cartErr(c, "cart.remove.fail", err)
	}
	return c.JSON(snap)
}

func (h *CartHandler) Toggle(c *fiber.Ctx) error {
	cartID := ensureCartID(c)
	open := h.Carts.ToggleCart(cartID)
	return c.JSON(fiber.Map{"open": open})
}
