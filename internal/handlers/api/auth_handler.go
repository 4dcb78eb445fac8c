package api

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/agicotech/ForumApp/internal/audit"
	"github.com/agicotech/ForumApp/internal/auth"
	"github.com/agicotech/ForumApp/internal/middlewares"
	"github.com/agicotech/ForumApp/internal/users"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	userService UserService
}

func (h *AuthHandler) PostRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if fieldErrors := validateFields(map[string]error{
		"username": validateUsername(req.Username),
		"email":    validateEmail(req.Email),
		"password": validatePassword(req.Password),
	}); fieldErrors != nil {
		return renderValidationError(c, fieldErrors)
	}

	user, err := h.userService.Register(c.UserContext(), users.RegisterOptions{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if errors.Is(err, users.ErrUsernameTaken) || errors.Is(err, users.ErrEmailRegistered) {
		return fiber.NewError(fiber.StatusBadRequest, "A user with this username or email already exists")
	}
	if err != nil {
		return err
	}

	recordAudit(audit.RecordRegister(c.UserContext(), user.ID))

	return c.JSON(fiber.Map{
		"message": "Registration successful",
		"user":    newUserInfoResponse(user),
	})
}

func (h *AuthHandler) PostLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	// The failure shape is identical for unknown username and wrong
	// password to prevent username enumeration.
	user, token, err := h.userService.Login(c.UserContext(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
	}
	if err != nil {
		return err
	}

	recordAudit(audit.RecordLogin(c.UserContext(), user.ID))

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    newUserInfoResponse(user),
	})
}

func (h *AuthHandler) PostChangePassword(c *fiber.Ctx) error {
	claims := middlewares.ClaimsFromCtx(c)

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if fieldErrors := validateFields(map[string]error{
		"newPassword": validatePassword(req.NewPassword),
	}); fieldErrors != nil {
		return renderValidationError(c, fieldErrors)
	}

	err := h.userService.ChangePassword(c.UserContext(), claims.UserID, req.OldPassword, req.NewPassword)
	if errors.Is(err, users.ErrWrongPassword) || errors.Is(err, users.ErrUserNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "Wrong old password")
	}
	if err != nil {
		return err
	}

	recordAudit(audit.RecordPasswordChange(c.UserContext(), claims.UserID))

	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

func (h *AuthHandler) PostPromoteToAdmin(c *fiber.Ctx) error {
	claims := middlewares.ClaimsFromCtx(c)

	targetID, err := parseIDParam(c, "userId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
	}

	user, err := h.userService.PromoteToAdmin(c.UserContext(), targetID)
	if errors.Is(err, users.ErrUserNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to promote user to admin")
	}
	if err != nil {
		return err
	}

	recordAudit(audit.RecordPromotion(c.UserContext(), claims.UserID, user.ID))

	return c.JSON(fiber.Map{"message": "User promoted to admin successfully"})
}

func (h *AuthHandler) GetUsers(c *fiber.Ctx) error {
	list, err := h.userService.ListUsers(c.UserContext())
	if err != nil {
		return err
	}

	response := make([]UserDetailResponse, 0, len(list))
	for _, user := range list {
		response = append(response, UserDetailResponse{
			UserInfoResponse: newUserInfoResponse(user),
			CreatedAt:        user.CreatedAt,
		})
	}
	return c.JSON(response)
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	return uint(id), err
}

// recordAudit logs a failed semantic audit write without affecting the
// response.
func recordAudit(err error) {
	if err != nil {
		slog.Warn("Failed to record audit entry", "error", err)
	}
}

func NewAuthHandler(userService UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}
