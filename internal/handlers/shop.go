package handlers

import (
	"fmt"
	"time"

	"campuspay/internal/middleware"
	"campuspay/internal/services/catalog"
	"campuspay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// ShopHandler exposes shop and category management endpoints.
type ShopHandler struct {
	catalogService catalog.Service
}

func NewShopHandler(catalogService catalog.Service) *ShopHandler {
	return &ShopHandler{catalogService: catalogService}
}

// CreateShop creates a shop owned by the given user. Route is gated to
// TREASURER.
func (h *ShopHandler) CreateShop(c *fiber.Ctx) error {
	var input struct {
		Name        string `json:"name" validate:"required"`
		OwnerHandle string `json:"owner_handle" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	shop, err := h.catalogService.CreateShop(c.Context(), input.Name, input.OwnerHandle)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Created(c, fiber.Map{"message": "shop created", "shop": shop})
}

// GetAllShops lists the active shops.
func (h *ShopHandler) GetAllShops(c *fiber.Ctx) error {
	shops, err := h.catalogService.ListShops(c.Context())
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, shops)
}

// UpdateShop renames a shop or changes its owner. Route is gated to
// TREASURER.
func (h *ShopHandler) UpdateShop(c *fiber.Ctx) error {
	var input struct {
		ShopID      uint   `json:"shop_id" validate:"required"`
		Name        string `json:"name"`
		OwnerHandle string `json:"owner_handle"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	shop, err := h.catalogService.UpdateShop(c.Context(), input.ShopID, input.Name, input.OwnerHandle)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "shop updated", "shop": shop})
}

// DeleteShop soft-deletes a shop, optionally cascading to its products
// and categories. Route is gated to TREASURER.
func (h *ShopHandler) DeleteShop(c *fiber.Ctx) error {
	var input struct {
		ShopID    uint `json:"shop_id" validate:"required"`
		DeleteAll bool `json:"delete_all"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	name, err := h.catalogService.DeleteShop(c.Context(), input.ShopID, input.DeleteAll)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "shop deleted", "shop": name})
}

// ExportOperations streams a shop's purchases since a date as CSV. Route
// is gated to TREASURER.
func (h *ShopHandler) ExportOperations(c *fiber.Ctx) error {
	var input struct {
		ShopID uint   `json:"shop_id" validate:"required"`
		From   string `json:"from" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	from, err := time.Parse(time.RFC3339, input.From)
	if err != nil {
		if from, err = time.Parse("2006-01-02", input.From); err != nil {
			return utils.BadRequest(c, "invalid date")
		}
	}

	data, err := h.catalogService.ExportOperations(c.Context(), input.ShopID, from)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=shop_%d_operations.csv`, input.ShopID))
	return c.Send(data)
}

// CreateCategory creates a category in a shop. OWNER principals are
// limited to their own shops.
func (h *ShopHandler) CreateCategory(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Name   string `json:"name" validate:"required"`
		ShopID uint   `json:"shop_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	category, err := h.catalogService.CreateCategory(c.Context(), claims, input.Name, input.ShopID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Created(c, fiber.Map{"message": "category created", "category": category})
}

// GetCategories lists a shop's active categories.
func (h *ShopHandler) GetCategories(c *fiber.Ctx) error {
	var input struct {
		ShopID uint `json:"shop_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	categories, err := h.catalogService.ListCategories(c.Context(), input.ShopID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, categories)
}

// UpdateCategory renames a category. OWNER principals are limited to
// their own shops.
func (h *ShopHandler) UpdateCategory(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		CategoryID uint   `json:"category_id" validate:"required"`
		Name       string `json:"name" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	category, err := h.catalogService.UpdateCategory(c.Context(), claims, input.CategoryID, input.Name)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "category updated", "category": category})
}

// DeleteCategory soft-deletes a category, optionally cascading to its
// products. OWNER principals are limited to their own shops.
func (h *ShopHandler) DeleteCategory(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		CategoryID uint `json:"category_id" validate:"required"`
		DeleteAll  bool `json:"delete_all"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	name, err := h.catalogService.DeleteCategory(c.Context(), claims, input.CategoryID, input.DeleteAll)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "category deleted", "category": name})
}
