package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mokolo/internal/api"
	"mokolo/internal/cart"
	"mokolo/internal/domain"
	applog "mokolo/internal/log"
	"mokolo/internal/validate"
)

// CheckoutHandler turns a cart into an order. Payment happens on the
// backend (Mobile Money or cash on delivery); we validate contact details,
// hand the cart over and drop our local copy once the order exists.
type CheckoutHandler struct {
	Shop  *api.Shop
	Carts *cart.Store
}

func (h *CheckoutHandler) Form(c *fiber.Ctx) error {
	cartID := ensureCartID(c)
	snap, err := h.Carts.Get(c.Context(), cartID)
	if err != nil {
		applog.Error(c, "checkout.form.fail", err, nil)
		return render(c, "cart", fiber.Map{"Cart": cart.Snapshot{}, "Err": "Could not load your cart"})
	}
	if snap.ItemCount == 0 {
		return c.Redirect("/cart")
	}
	return render(c, "checkout", fiber.Map{"Cart": snap, "Err": ""})
}

func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	cartID := ensureCartID(c)
	snap, err := h.Carts.Get(c.Context(), cartID)
	if err != nil || snap.ItemCount == 0 {
		return c.Redirect("/cart")
	}

	name, okName := validate.Name(c.FormValue("name"))
	phone, okPhone := validate.Phone(c.FormValue("phone"))
	address := c.FormValue("address")
	city := c.FormValue("city")
	zone := c.FormValue("delivery_zone")
	payment := c.FormValue("payment_method")
	switch payment {
	case "MTN_MOMO", "ORANGE_MONEY", "CASH":
	default:
		payment = ""
	}
	if !okName || !okPhone || address == "" || city == "" || zone == "" || payment == "" {
		return c.Status(fiber.StatusUnprocessableEntity).Render("checkout", fiber.Map{
			"Cart": snap,
			"Err":  "Fill in your name, phone, address, delivery zone and payment method",
		})
	}

	in := api.CheckoutInput{
		CartID:        cartID,
		CustomerName:  name,
		CustomerPhone: phone,
		CustomerEmail: c.FormValue("email"),
		Address: domain.Address{
			Name: name, Phone: phone, Address: address,
			City: city, Landmark: c.FormValue("landmark"),
		},
		DeliveryZone:  zone,
		PaymentMethod: payment,
	}

	shop := h.Shop
	if tok, _ := c.Locals("token").(string); tok != "" {
		shop = shop.WithToken(tok)
	}
	order, err := shop.Checkout(c.Context(), in)
	if err != nil {
		applog.Error(c, "checkout.place.fail", err, map[string]any{"cart": cartID})
		msg := "Could not place your order, please try again"
		status := fiber.StatusBadGateway
		if ae, ok := err.(*api.Error); ok {
			msg = ae.Message
			status = ae.Status
		}
		return c.Status(status).Render("checkout", fiber.Map{"Cart": snap, "Err": msg})
	}

	// The cart is consumed server-side; forget our copy and rotate the id.
	h.Carts.Forget(cartID)
	clearCookie(c, cookieCartID)

	applog.Audit(c, "checkout.placed", map[string]any{
		"order": order.ID, "number": order.OrderNumber, "total": order.Total, "payment": payment,
	})
	return c.Redirect("/track/" + order.OrderNumber)
}
