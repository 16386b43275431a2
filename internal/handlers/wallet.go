package handlers

import (
	"campuspay/internal/middleware"
	"campuspay/internal/services/settlement"
	"campuspay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// WalletHandler exposes balance reads and the credit/transfer flows.
type WalletHandler struct {
	settlementService settlement.Service
}

func NewWalletHandler(settlementService settlement.Service) *WalletHandler {
	return &WalletHandler{settlementService: settlementService}
}

// GetBalance returns the authenticated user's balance.
func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	view, err := h.settlementService.Balance(c.Context(), claims.UserID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, view)
}

// GetUserBalance returns any user's balance by handle. Route is gated to
// TREASURER.
func (h *WalletHandler) GetUserBalance(c *fiber.Ctx) error {
	var input struct {
		Handle string `json:"handle" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	view, err := h.settlementService.BalanceByHandle(c.Context(), input.Handle)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, view)
}

// TopUp creates a provider checkout for the authenticated user. No
// balance is touched until the payment is confirmed.
func (h *WalletHandler) TopUp(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount float64 `json:"amount" validate:"required,gt=0"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	checkoutID, err := h.settlementService.CreateTopUp(c.Context(), claims.UserID, input.Amount)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"checkout": checkoutID})
}

// VerifyTopUp confirms a checkout with the provider and credits the
// reported amount.
func (h *WalletHandler) VerifyTopUp(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		CheckoutID string `json:"checkout_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	result, err := h.settlementService.ConfirmTopUp(c.Context(), claims.UserID, input.CheckoutID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message": "wallet credited",
		"amount":  result.Amount,
		"balance": result.NewBalance,
	})
}

// ManualTopUp credits a user by handle. Route is gated to TREASURER.
func (h *WalletHandler) ManualTopUp(c *fiber.Ctx) error {
	var input struct {
		Handle string  `json:"handle" validate:"required"`
		Amount float64 `json:"amount" validate:"required,gt=0"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	result, err := h.settlementService.ManualCredit(c.Context(), input.Handle, input.Amount)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message": "wallet credited",
		"handle":  result.Handle,
		"amount":  result.Amount,
		"balance": result.NewBalance,
	})
}

// Transfer moves funds from the authenticated user to another account.
func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Handle string  `json:"handle" validate:"required"`
		Amount float64 `json:"amount" validate:"required,gt=0"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	result, err := h.settlementService.Transfer(c.Context(), claims.UserID, input.Handle, input.Amount)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message": "transfer completed",
		"to":      result.To,
		"amount":  result.Amount,
		"balance": result.NewBalance,
	})
}

// History returns the authenticated user's transaction history.
func (h *WalletHandler) History(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	history, err := h.settlementService.History(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"transactions": history})
}

// Purchases returns the authenticated user's purchase history.
func (h *WalletHandler) Purchases(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	purchases, err := h.settlementService.PurchaseHistory(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"purchases": purchases})
}
