package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
)

type ItemWriter interface {
	FindItemByNameAndBrand(ctx context.Context, name string, brandID int64) (*entity.Item, error)
	CreateItem(ctx context.Context, item *entity.Item) (*entity.Item, error)
	UpdateItem(ctx context.Context, item *entity.Item) error
}

type BrandStore interface {
	CreateBrand(ctx context.Context, brand *entity.Brand) (*entity.Brand, error)
	GetBrandByName(ctx context.Context, name string) (*entity.Brand, error)
}

type UpsertItemRequest struct {
	Name             string          `json:"name"`
	BrandName        string          `json:"brand_name"`
	BrandNationality string          `json:"brand_nationality"`
	Price            decimal.Decimal `json:"price"`
	Quantity         int             `json:"quantity"`
	ExpiryDate       string          `json:"expiry_date"` // YYYY-MM-DD
}

type AdminService struct {
	tx     Transactor
	items  ItemWriter
	brands BrandStore
}

// NewAdminService creates a new instance of AdminService.
func NewAdminService(tx Transactor, items ItemWriter, brands BrandStore) *AdminService {
	return &AdminService{tx: tx, items: items, brands: brands}
}

// UpsertItem adds an item to the catalog, or updates price, quantity and
// expiry of the item with the same name and brand.
func (s *AdminService) UpsertItem(ctx context.Context, req UpsertItemRequest) (*entity.Item, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.BrandName = strings.TrimSpace(req.BrandName)
	req.BrandNationality = strings.TrimSpace(req.BrandNationality)
	if req.Name == "" || req.BrandName == "" || req.ExpiryDate == "" {
		return nil, invalid("", "all fields are required")
	}
	if !req.Price.IsPositive() {
		return nil, invalid("price", "price must be positive")
	}
	if req.Quantity <= 0 {
		return nil, invalid("quantity", "quantity must be positive")
	}
	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		return nil, invalid("expiry_date", "invalid expiry date, use YYYY-MM-DD")
	}

	var item *entity.Item
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		brand, err := s.resolveBrand(ctx, req.BrandName, req.BrandNationality)
		if err != nil {
			return err
		}

		existing, err := s.items.FindItemByNameAndBrand(ctx, req.Name, brand.ID)
		switch {
		case err == nil:
			existing.Price = req.Price
			existing.Quantity = req.Quantity
			existing.ExpiryDate = expiry
			if err := s.items.UpdateItem(ctx, existing); err != nil {
				return err
			}
			item = existing
			logger.Info().Msgf("Updated item %d (%s)", item.ID, item.Name)
			return nil
		case errors.Is(err, repository.ErrNotFound):
			item, err = s.items.CreateItem(ctx, &entity.Item{
				Name:       req.Name,
				Quantity:   req.Quantity,
				Price:      req.Price,
				BrandID:    brand.ID,
				ExpiryDate: expiry,
			})
			if err != nil {
				return err
			}
			logger.Info().Msgf("Created item %d (%s)", item.ID, item.Name)
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *AdminService) resolveBrand(ctx context.Context, name, nationality string) (*entity.Brand, error) {
	brand, err := s.brands.GetBrandByName(ctx, name)
	if err == nil {
		return brand, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if nationality == "" {
		return nil, notFoundf("brand %s", name)
	}
	return s.brands.CreateBrand(ctx, &entity.Brand{Name: name, Nationality: nationality})
}
