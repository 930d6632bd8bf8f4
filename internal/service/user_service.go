package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
)

const tokenTTL = 24 * time.Hour

var (
	emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	phonePattern = regexp.MustCompile(`^\+20(10|11|12|15)\d{8}$`)
)

type CustomerStore interface {
	CreateCustomer(ctx context.Context, customer *entity.Customer) error
	GetCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error)
}

// TokenStore keeps the current login token per customer.
type TokenStore interface {
	SaveToken(ctx context.Context, email, token string, ttl time.Duration) error
	GetToken(ctx context.Context, email string) (string, error)
}

type JwtCustomClaims struct {
	Email string `json:"email"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PhoneNumber     string `json:"phone_number"`
	Admin           bool   `json:"admin"`
}

type UserService struct {
	customers CustomerStore
	tokens    TokenStore
	secret    []byte
}

// NewUserService creates a new instance of UserService.
func NewUserService(customers CustomerStore, tokens TokenStore, secret string) *UserService {
	return &UserService{customers: customers, tokens: tokens, secret: []byte(secret)}
}

// Signup registers a customer. Only an admin caller may create admins.
func (s *UserService) Signup(ctx context.Context, req SignupRequest, callerIsAdmin bool) (*entity.Customer, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || req.ConfirmPassword == "" ||
		strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" || req.PhoneNumber == "" {
		return nil, invalid("", "all fields are required")
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, invalid("email", "invalid email format")
	}
	if len(req.Password) < 8 {
		return nil, invalid("password", "password must be at least 8 characters long")
	}
	if req.Password != req.ConfirmPassword {
		return nil, invalid("confirm_password", "passwords do not match")
	}
	if !phonePattern.MatchString(req.PhoneNumber) {
		return nil, invalid("phone_number", "invalid phone number")
	}
	if req.Admin && !callerIsAdmin {
		return nil, invalid("admin", "only admins can create admins")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	customer := &entity.Customer{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PhoneNumber:  req.PhoneNumber,
		Admin:        req.Admin,
	}
	err = s.customers.CreateCustomer(ctx, customer)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, invalid("email", "email already registered")
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error creating customer")
		return nil, err
	}

	logger.Info().Msgf("Customer %s signed up", customer.Email)
	return customer, nil
}

// Login checks the credentials and returns a signed token, which is also kept
// in the token store keyed by email.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	customer, err := s.customers.GetCustomerByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)) != nil {
		return "", ErrUnauthorized
	}

	claims := &JwtCustomClaims{
		Email: customer.Email,
		Admin: customer.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customer.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}

	t, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	if err := s.tokens.SaveToken(ctx, customer.Email, t, tokenTTL); err != nil {
		return "", err
	}

	return t, nil
}

// ValidateToken reports whether token is the current session of email.
func (s *UserService) ValidateToken(ctx context.Context, email, token string) error {
	stored, err := s.tokens.GetToken(ctx, email)
	if err != nil {
		return err
	}
	if stored != token {
		return ErrUnauthorized
	}
	return nil
}
