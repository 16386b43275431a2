package handlers

import (
	"campuspay/internal/middleware"
	"campuspay/internal/services/catalog"
	"campuspay/internal/services/settlement"
	"campuspay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler exposes product management and the purchase flows.
type ProductHandler struct {
	catalogService    catalog.Service
	settlementService settlement.Service
}

func NewProductHandler(catalogService catalog.Service, settlementService settlement.Service) *ProductHandler {
	return &ProductHandler{
		catalogService:    catalogService,
		settlementService: settlementService,
	}
}

// CreateProduct creates a product in a shop. OWNER principals are
// limited to their own shops.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input catalog.CreateProductInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	product, err := h.catalogService.CreateProduct(c.Context(), claims, input)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Created(c, fiber.Map{"message": "product created", "product": product})
}

// GetProductsByShop lists a shop's active products, optionally narrowed
// to one category.
func (h *ProductHandler) GetProductsByShop(c *fiber.Ctx) error {
	var input struct {
		ShopID     uint `json:"shop_id" validate:"required"`
		CategoryID uint `json:"category_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	products, err := h.catalogService.ListProducts(c.Context(), input.ShopID, input.CategoryID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, products)
}

// UpdateProduct changes a product's name, price or category. OWNER
// principals are limited to their own shops.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input catalog.UpdateProductInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	product, err := h.catalogService.UpdateProduct(c.Context(), claims, input)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "product updated", "product": product})
}

// DeleteProduct soft-deletes a product. OWNER principals are limited to
// their own shops.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		ProductID uint `json:"product_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	name, err := h.catalogService.DeleteProduct(c.Context(), claims, input.ProductID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "product deleted", "product": name})
}

// Buy settles a basket against the authenticated user's balance.
func (h *ProductHandler) Buy(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Items []settlement.PurchaseItem `json:"items"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	result, err := h.settlementService.Purchase(c.Context(), claims.UserID, input.Items)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message":    "purchase completed",
		"total_paid": result.TotalPaid,
		"balance":    result.NewBalance,
		"purchases":  result.Purchases,
	})
}

// ManualBuy settles a basket against another user's balance, resolved by
// handle. Route is gated to TREASURER.
func (h *ProductHandler) ManualBuy(c *fiber.Ctx) error {
	var input struct {
		Handle string                    `json:"handle" validate:"required"`
		Items  []settlement.PurchaseItem `json:"items"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	result, err := h.settlementService.PurchaseFor(c.Context(), input.Handle, input.Items)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message":    "purchase completed",
		"total_paid": result.TotalPaid,
		"balance":    result.NewBalance,
		"purchases":  result.Purchases,
	})
}
