package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kursadbilgin/auth-gate/internal/domain"
	"github.com/kursadbilgin/auth-gate/internal/repository"
	"github.com/kursadbilgin/auth-gate/internal/transport"
)

const (
	defaultPage         = 1
	defaultPageSize     = 50
	maxPageSize         = 100
	defaultAttemptLimit = 20
	maxAttemptLimit     = 100
)

type AccountService interface {
	Register(ctx context.Context, account *domain.Account, password string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context, params repository.ListParams) ([]domain.Account, int64, error)
	UpdateProfile(ctx context.Context, account *domain.Account) error
	Deactivate(ctx context.Context, id string) error
	ListAttempts(ctx context.Context, accountID string, limit int) ([]domain.LoginAttempt, error)
}

type AccountHandler struct {
	service AccountService
}

func NewAccountHandler(service AccountService) (*AccountHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("account service is required")
	}
	return &AccountHandler{service: service}, nil
}

// RegisterAccountRoutes mounts account management. Registration is public,
// reads require a token, administration requires the admin role.
func RegisterAccountRoutes(router fiber.Router, service AccountService, authRequired fiber.Handler, adminOnly fiber.Handler) error {
	h, err := NewAccountHandler(service)
	if err != nil {
		return err
	}

	accounts := router.Group("/accounts")
	accounts.Post("/", h.Register)
	accounts.Get("/", authRequired, adminOnly, h.List)
	accounts.Get("/:id", authRequired, h.Get)
	accounts.Put("/:id", authRequired, h.Update)
	accounts.Delete("/:id", authRequired, adminOnly, h.Deactivate)
	accounts.Get("/:id/attempts", authRequired, adminOnly, h.ListAttempts)

	return nil
}

type registerAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type updateAccountRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

type listAccountsResponse struct {
	Data []accountResponse `json:"data"`
	Meta listMeta          `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

type attemptResponse struct {
	ID         string    `json:"id"`
	Succeeded  bool      `json:"succeeded"`
	Locked     bool      `json:"locked"`
	OccurredAt time.Time `json:"occurredAt"`
}

type listAttemptsResponse struct {
	AccountID string            `json:"accountId"`
	Attempts  []attemptResponse `json:"attempts"`
}

func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var req registerAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	account := &domain.Account{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if rawRole := strings.TrimSpace(req.Role); rawRole != "" {
		role, err := domain.ParseRoleFromString(rawRole)
		if err != nil {
			return toHTTPError(err)
		}
		account.Role = role
	}

	created, err := h.service.Register(c.UserContext(), account, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toAccountResponse(created))
}

func (h *AccountHandler) Get(c *fiber.Ctx) error {
	id := paramID(c, "id")
	if err := requireSelfOrAdmin(c, id); err != nil {
		return err
	}

	account, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toAccountResponse(account))
}

func (h *AccountHandler) List(c *fiber.Ctx) error {
	params, err := parseListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	accounts, total, err := h.service.List(c.UserContext(), params)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, toAccountResponse(&accounts[i]))
	}

	return c.Status(fiber.StatusOK).JSON(listAccountsResponse{
		Data: responses,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func (h *AccountHandler) Update(c *fiber.Ctx) error {
	id := paramID(c, "id")
	if err := requireSelfOrAdmin(c, id); err != nil {
		return err
	}

	var req updateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	account := &domain.Account{
		ID:    id,
		Name:  req.Name,
		Phone: req.Phone,
	}
	if err := h.service.UpdateProfile(c.UserContext(), account); err != nil {
		return toHTTPError(err)
	}

	updated, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toAccountResponse(updated))
}

func (h *AccountHandler) Deactivate(c *fiber.Ctx) error {
	id := paramID(c, "id")
	if err := h.service.Deactivate(c.UserContext(), id); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"accountId": id,
		"active":    false,
	})
}

func (h *AccountHandler) ListAttempts(c *fiber.Ctx) error {
	id := paramID(c, "id")

	limit := c.QueryInt("limit", defaultAttemptLimit)
	if limit < 1 || limit > maxAttemptLimit {
		return toHTTPError(fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, maxAttemptLimit))
	}

	attempts, err := h.service.ListAttempts(c.UserContext(), id, limit)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]attemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, attemptResponse{
			ID:         attempt.ID,
			Succeeded:  attempt.Succeeded,
			Locked:     attempt.Locked,
			OccurredAt: attempt.OccurredAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(listAttemptsResponse{
		AccountID: id,
		Attempts:  responses,
	})
}

func parseListParams(c *fiber.Ctx) (repository.ListParams, error) {
	params := repository.ListParams{
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.ListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.ListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawRole := strings.TrimSpace(c.Query("role")); rawRole != "" {
		role, err := domain.ParseRoleFromString(rawRole)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Role = &role
	}

	return params, nil
}

// requireSelfOrAdmin lets an account read and edit itself; any other account
// requires the admin role.
func requireSelfOrAdmin(c *fiber.Ctx, accountID string) error {
	callerID, _ := c.Locals(transport.LocalAccountID).(string)
	callerRole, _ := c.Locals(transport.LocalRole).(string)

	if callerID == accountID || callerRole == domain.RoleAdmin.String() {
		return nil
	}
	return fiber.NewError(fiber.StatusForbidden, "insufficient role")
}

func toAccountResponse(a *domain.Account) accountResponse {
	if a == nil {
		return accountResponse{}
	}

	return accountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Role:      a.Role.String(),
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
