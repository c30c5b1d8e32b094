package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kursadbilgin/auth-gate/internal/domain"
	"github.com/kursadbilgin/auth-gate/internal/service"
)

type AuthVerifier interface {
	Verify(ctx context.Context, email, secret string) (*service.VerifyResult, error)
}

type AuthHandler struct {
	service AuthVerifier
}

func NewAuthHandler(service AuthVerifier) (*AuthHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	return &AuthHandler{service: service}, nil
}

// RegisterAuthRoutes mounts the login endpoint. Middleware (such as the login
// throttle) runs before the handler in the order given.
func RegisterAuthRoutes(router fiber.Router, service AuthVerifier, middleware ...fiber.Handler) error {
	h, err := NewAuthHandler(service)
	if err != nil {
		return err
	}

	handlers := append(middleware, h.Login)
	router.Post("/auth/login", handlers...)

	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
	User      userResponse `json:"user"`
}

type userResponse struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Verify(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(loginResponse{
		Token:     result.Token,
		ExpiresIn: int64(result.ExpiresIn.Seconds()),
		User: userResponse{
			ID:   result.AccountID,
			Role: result.Role.String(),
		},
	})
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrLockedOut):
		return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrInvalidCredential):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}

func paramID(c *fiber.Ctx, name string) string {
	return strings.TrimSpace(c.Params(name))
}
