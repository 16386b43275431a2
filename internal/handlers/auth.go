package handlers

import (
	"campuspay/internal/middleware"
	"campuspay/internal/services/auth"
	"campuspay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account. Route is gated to ADMIN.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input auth.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	user, err := h.authService.Register(input)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Created(c, fiber.Map{
		"message": "user created",
		"user_id": user.ID,
		"handle":  user.Handle,
		"role":    user.Role,
	})
}

// Login authenticates a user and returns the token pair.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Handle   string `json:"handle"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	user, accessToken, refreshToken, err := h.authService.Login(input.Handle, input.Password)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"token":         accessToken,
		"refresh_token": refreshToken,
		"user": fiber.Map{
			"id":     user.ID,
			"handle": user.Handle,
			"role":   user.Role,
		},
	})
}

// Refresh exchanges a stored refresh token for a new access token.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	token, err := h.authService.Refresh(input.RefreshToken)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Created(c, fiber.Map{"token": token})
}

// Logout deletes the refresh token, ending the session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := h.authService.Logout(input.RefreshToken); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "logged out"})
}

// ChangePassword lets the authenticated user rotate their own password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		OldPassword     string `json:"old_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	if err := h.authService.ChangePassword(claims.UserID, input.OldPassword, input.NewPassword, input.ConfirmPassword); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "password changed"})
}

// ResetPassword resets any user's password by handle. Route is gated to
// ADMIN.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var input struct {
		Handle          string `json:"handle"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	if err := h.authService.ResetPassword(input.Handle, input.NewPassword, input.ConfirmPassword); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message": "password reset",
		"handle":  input.Handle,
	})
}

// BatchImport creates accounts from an uploaded CSV file. Route is gated
// to ADMIN.
func (h *AuthHandler) BatchImport(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequest(c, "no file provided")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return utils.BadRequest(c, "failed to open file")
	}
	defer file.Close()

	result, err := h.authService.BatchImport(file)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message":       "import finished",
		"created_count": result.CreatedCount,
		"invalid_lines": result.InvalidLines,
	})
}
