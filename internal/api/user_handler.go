package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/service"
)

// Signup registers a customer --> /signup
func (h *Handler) Signup(c echo.Context) error {
	return h.signup(c, false)
}

// CreateUser registers a customer or admin on behalf of an admin --> /admin/users
func (h *Handler) CreateUser(c echo.Context) error {
	return h.signup(c, true)
}

func (h *Handler) signup(c echo.Context, callerIsAdmin bool) error {
	var req service.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	customer, err := h.users.Signup(c.Request().Context(), req, callerIsAdmin)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, customer)
}

// Login returns a token for valid credentials --> /login
func (h *Handler) Login(c echo.Context) error {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	token, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// UpsertItem adds or updates a catalog item --> /admin/items
func (h *Handler) UpsertItem(c echo.Context) error {
	var req service.UpsertItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	item, err := h.admin.UpsertItem(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, item)
}
