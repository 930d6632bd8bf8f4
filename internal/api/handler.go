package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront-service/internal/entity"
	"storefront-service/internal/service"
	"storefront-service/internal/session"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type Catalog interface {
	GetItemPricing(ctx context.Context, itemID int64, asOf time.Time) (*entity.ItemPricing, error)
	ListItems(ctx context.Context, filter entity.ItemFilter) ([]entity.ItemListing, error)
}

type CartLedger interface {
	AddLine(ctx context.Context, req service.AddLineRequest) (*entity.Cart, error)
	ChangeQuantity(ctx context.Context, cartID, itemID int64, delta int, confirm service.RemovalConfirmer) (*service.QuantityChange, error)
	ListLines(ctx context.Context, cartID int64) ([]entity.CartLine, error)
	GetCart(ctx context.Context, cartID int64) (*entity.Cart, error)
}

type PricingEngine interface {
	ComputeCartTotal(ctx context.Context, cartID int64) (decimal.Decimal, error)
	StartCheckout(ctx context.Context, cartID int64) (*entity.CheckoutSession, error)
	ApplyPromoCode(ctx context.Context, session *entity.CheckoutSession, code string) (decimal.Decimal, error)
}

type PaymentFinalizer interface {
	ConfirmPayment(ctx context.Context, session *entity.CheckoutSession, req service.PaymentRequest) (*entity.Payment, error)
}

type Users interface {
	Signup(ctx context.Context, req service.SignupRequest, callerIsAdmin bool) (*entity.Customer, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, email, token string) error
}

type AdminCatalog interface {
	UpsertItem(ctx context.Context, req service.UpsertItemRequest) (*entity.Item, error)
}

type CheckoutStore interface {
	SaveCheckout(ctx context.Context, checkout *entity.CheckoutSession) error
	LoadCheckout(ctx context.Context, id string) (*entity.CheckoutSession, error)
	DeleteCheckout(ctx context.Context, id string) error
	ClaimIdempotencyKey(ctx context.Context, key string) error
	ReleaseIdempotencyKey(ctx context.Context, key string) error
}

type Handler struct {
	catalog   Catalog
	carts     CartLedger
	pricing   PricingEngine
	payments  PaymentFinalizer
	users     Users
	admin     AdminCatalog
	checkouts CheckoutStore
}

// NewHandler creates a new instance of Handler
func NewHandler(catalog Catalog, carts CartLedger, pricing PricingEngine, payments PaymentFinalizer, users Users, admin AdminCatalog, checkouts CheckoutStore) *Handler {
	return &Handler{
		catalog:   catalog,
		carts:     carts,
		pricing:   pricing,
		payments:  payments,
		users:     users,
		admin:     admin,
		checkouts: checkouts,
	}
}

// Register mounts the public routes and the token protected routes on e.
func (h *Handler) Register(e *echo.Echo, jwtSecret string) {
	e.POST("/signup", h.Signup)
	e.POST("/login", h.Login)
	e.GET("/items", h.ListItems)
	e.GET("/items/:id/pricing", h.GetItemPricing)

	jwtAuth := echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		},
	})
	authed := []echo.MiddlewareFunc{jwtAuth, h.requireSession}
	admin := []echo.MiddlewareFunc{jwtAuth, h.requireSession, requireAdmin}

	e.POST("/cart/items", h.AddLine, authed...)
	e.GET("/carts/:id", h.GetCart, authed...)
	e.PATCH("/carts/:id/items/:item_id", h.ChangeQuantity, authed...)
	e.POST("/checkout", h.StartCheckout, authed...)
	e.POST("/checkout/:session/promocodes", h.ApplyPromoCode, authed...)
	e.POST("/checkout/:session/confirm", h.ConfirmPayment, authed...)

	e.POST("/admin/items", h.UpsertItem, admin...)
	e.POST("/admin/users", h.CreateUser, admin...)
}

func claimsOf(c echo.Context) *service.JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, _ := token.Claims.(*service.JwtCustomClaims)
	return claims
}

// requireSession rejects tokens that are not the customer's current login.
func (h *Handler) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, _ := c.Get("user").(*jwt.Token)
		claims := claimsOf(c)
		if token == nil || claims == nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		}
		if err := h.users.ValidateToken(c.Request().Context(), claims.Email, token.Raw); err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "session expired, please log in again"})
		}
		return next(c)
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := claimsOf(c)
		if claims == nil || !claims.Admin {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "admin only"})
		}
		return next(c)
	}
}

// respondError maps service errors to status codes.
func respondError(c echo.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, session.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOutOfStock), errors.Is(err, service.ErrCartClosed), errors.Is(err, session.ErrDuplicateKey):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidPromoCode):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		logger.Error().Err(err).Msgf("%s %s failed", c.Request().Method, c.Path())
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func paramID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
