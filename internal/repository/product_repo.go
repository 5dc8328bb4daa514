package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pos_service/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
)

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

func constraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case pqUniqueViolation, pqCheckViolation:
		return domain.NewValidationError(fmt.Sprintf("constraint violation: %s", pqErr.Message))
	}
	return nil
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
        INSERT INTO products (id, name, price, image_url, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at`
	var imageURL sql.NullString
	if product.ImageURL != nil {
		imageURL = sql.NullString{String: *product.ImageURL, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, product.ID, product.Name, product.Price, imageURL, product.CreatedAt).Scan(&product.CreatedAt)
	if err != nil {
		if cErr := constraintError(err); cErr != nil {
			r.log.Warnf("Repository: Constraint violation creating product '%s': %v", product.Name, err)
			return nil, cErr
		}
		r.log.Errorf("Repository: Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	r.log.Infof("Repository: Product created successfully with ID: %s, Name: %s", product.ID, product.Name)
	return product, nil
}

func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	product := &domain.Product{}
	var imageURL sql.NullString
	if err := row.Scan(&product.ID, &product.Name, &product.Price, &imageURL, &product.CreatedAt); err != nil {
		return nil, err
	}
	if imageURL.Valid && imageURL.String != "" {
		product.ImageURL = &imageURL.String
	}
	return product, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
        SELECT id, name, price, image_url, created_at
        FROM products
        WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %s not found", id)
			return nil, domain.NewNotFoundError("product with id %s not found", id)
		}
		r.log.Errorf("Repository: Failed to get product by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}
	return product, nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
        UPDATE products SET name = $1, price = $2, image_url = $3
        WHERE id = $4`
	var imageURL sql.NullString
	if product.ImageURL != nil {
		imageURL = sql.NullString{String: *product.ImageURL, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query, product.Name, product.Price, imageURL, product.ID)
	if err != nil {
		if cErr := constraintError(err); cErr != nil {
			r.log.Warnf("Repository: Constraint violation updating product ID %s: %v", product.ID, err)
			return nil, cErr
		}
		r.log.Errorf("Repository: Failed to update product ID %s: %v", product.ID, err)
		return nil, fmt.Errorf("could not update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after update for ID %s: %v", product.ID, err)
		return nil, fmt.Errorf("could not confirm product update: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Product with ID %s not found for update", product.ID)
		return nil, domain.NewNotFoundError("product with id %s not found", product.ID)
	}

	r.log.Infof("Repository: Product ID %s updated", product.ID)
	return product, nil
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete product ID %s: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after deleting product ID %s: %v", id, err)
		return fmt.Errorf("could not confirm product deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent product ID %s", id)
		return domain.NewNotFoundError("product with id %s not found", id)
	}
	r.log.Infof("Repository: Product deleted successfully with ID: %s", id)
	return nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context, order domain.ProductOrder) ([]domain.Product, error) {
	orderBy := "name ASC"
	if order == domain.ProductOrderNewest {
		orderBy = "created_at DESC"
	}
	query := `
        SELECT id, name, price, image_url, created_at
        FROM products
        ORDER BY ` + orderBy

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Repository: Failed to list products: %v", err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.log.Errorf("Repository: Skipping unreadable product row: %v", err)
			continue
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Repository: Error iterating product rows: %v", err)
		return nil, fmt.Errorf("error reading products: %w", err)
	}

	r.log.Debugf("Repository: Listed %d products ordered by %s", len(products), order)
	return products, nil
}
