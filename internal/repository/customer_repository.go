package repository

import (
	"context"
	"database/sql"

	"storefront-service/internal/entity"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db}
}

func (r *CustomerRepository) CreateCustomer(ctx context.Context, customer *entity.Customer) error {
	query := `INSERT INTO customers (email, password_hash, first_name, last_name, phone_number, admin) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, customer.Email, customer.PasswordHash, customer.FirstName,
		customer.LastName, customer.PhoneNumber, customer.Admin)
	return duplicate(err)
}

func (r *CustomerRepository) GetCustomerByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	query := `SELECT email, password_hash, first_name, last_name, phone_number, admin FROM customers WHERE email = ?`
	customer := &entity.Customer{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, email).Scan(&customer.Email, &customer.PasswordHash,
		&customer.FirstName, &customer.LastName, &customer.PhoneNumber, &customer.Admin)
	if err != nil {
		return nil, notFound(err)
	}
	return customer, nil
}

type BrandRepository struct {
	db *sql.DB
}

func NewBrandRepository(db *sql.DB) *BrandRepository {
	return &BrandRepository{db}
}

func (r *BrandRepository) CreateBrand(ctx context.Context, brand *entity.Brand) (*entity.Brand, error) {
	query := `INSERT INTO brands (name, nationality) VALUES (?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, brand.Name, brand.Nationality)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	brand.ID = id
	return brand, nil
}

// GetBrandByName returns the newest brand with the given name.
func (r *BrandRepository) GetBrandByName(ctx context.Context, name string) (*entity.Brand, error) {
	query := `SELECT brand_id, name, nationality FROM brands WHERE name = ? ORDER BY brand_id DESC LIMIT 1`
	brand := &entity.Brand{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, name).Scan(&brand.ID, &brand.Name, &brand.Nationality)
	if err != nil {
		return nil, notFound(err)
	}
	return brand, nil
}
