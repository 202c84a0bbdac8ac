package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject the logged-in customer if the middleware attached one.
	if cu := c.Locals("customer"); cu != nil {
		data["Customer"] = cu
	}
	if tok, _ := c.Locals("CSRFToken").(string); tok != "" {
		data["CSRFToken"] = tok
	} else if cookTok := c.Cookies("csrf_"); cookTok != "" {
		data["CSRFToken"] = cookTok
	}
	return c.Render(tmpl, data)
}

// notFound renders the dedicated not-found state with a way back to the
// parent list instead of treating a missing entity as fatal.
func notFound(c *fiber.Ctx, message, backTo string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{
		"Message": message,
		"BackTo":  backTo,
	})
}
