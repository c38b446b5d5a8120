package handlers

import (
	"encoding/json"

	"productapi/internal/domain"
	"productapi/internal/log"
	"productapi/internal/services"
	"productapi/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	Products *services.ProductService
}

// price is emitted as a bare JSON number without going through float64.
type productResponse struct {
	ID     string      `json:"id"`
	Price  json.Number `json:"price"`
	Active bool        `json:"active"`
}

func toResponse(v services.ProductView) productResponse {
	return productResponse{ID: v.ID, Price: json.Number(v.Price.String()), Active: v.Active}
}

type createProductRequest struct {
	Price *decimal.Decimal `json:"price"`
}

type updateProductRequest struct {
	Price  *decimal.Decimal `json:"price"`
	Active *bool            `json:"active"`
}

type changePriceRequest struct {
	NewPrice *decimal.Decimal `json:"newPrice"`
}

// an absent amount is rejected like a zero one
func amountOf(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func decodeJSON(c *fiber.Ctx, v any) error {
	if err := c.App().Config().JSONDecoder(c.Body(), v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Corps de requête JSON invalide.")
	}
	return nil
}

// productID treats a malformed id like an unknown one.
func productID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := validate.ProductID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "id"})
		return uuid.Nil, domain.ErrProductNotFound
	}
	return id, nil
}

// audit records a product mutation under the caller's name.
func audit(c *fiber.Ctx, action string, fields map[string]any) {
	if claims, ok := ClaimsOf(c); ok {
		fields["username"] = claims.Name
	}
	log.Audit(c, action, fields)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req createProductRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	v, err := h.Products.Create(c.UserContext(), amountOf(req.Price))
	if err != nil {
		return err
	}
	audit(c, "product.create", map[string]any{"id": v.ID, "price": v.Price.String()})
	c.Location("/api/products/" + v.ID)
	return c.Status(fiber.StatusCreated).JSON(toResponse(v))
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	v, err := h.Products.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(v))
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	all, err := h.Products.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]productResponse, 0, len(all))
	for _, v := range all {
		out = append(out, toResponse(v))
	}
	return c.JSON(out)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	var req updateProductRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	v, err := h.Products.Update(c.UserContext(), id, amountOf(req.Price), req.Active)
	if err != nil {
		return err
	}
	audit(c, "product.update", map[string]any{"id": v.ID, "price": v.Price.String(), "active": v.Active})
	return c.JSON(toResponse(v))
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	if err := h.Products.Delete(c.UserContext(), id); err != nil {
		return err
	}
	audit(c, "product.delete", map[string]any{"id": id.String()})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) ChangePrice(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	var req changePriceRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := h.Products.ChangePrice(c.UserContext(), id, amountOf(req.NewPrice)); err != nil {
		return err
	}
	audit(c, "product.price.change", map[string]any{"id": id.String(), "price": amountOf(req.NewPrice).String()})
	return c.SendStatus(fiber.StatusNoContent)
}
