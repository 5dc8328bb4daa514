package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pos_service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProductForm carries the raw values of the product edit form.
type ProductForm struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	ImageURL string `json:"image_url"`
}

type ProductUseCase interface {
	CreateProduct(ctx context.Context, form ProductForm) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, form ProductForm) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, order domain.ProductOrder, query string) []domain.Product
}

var _ ProductUseCase = (*productUseCase)(nil)

type productUseCase struct {
	productRepo domain.ProductRepository
	now         func() time.Time
	log         *logrus.Logger
}

func NewProductUseCase(repo domain.ProductRepository, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo: repo,
		now:         time.Now,
		log:         logger,
	}
}

// parseForm validates the form without touching the store.
func parseForm(form ProductForm) (name string, price int64, imageURL *string, err error) {
	name = strings.ToUpper(strings.TrimSpace(form.Name))
	if name == "" {
		return "", 0, nil, domain.NewValidationError("product name cannot be empty")
	}
	rawPrice := strings.TrimSpace(form.Price)
	if rawPrice == "" {
		return "", 0, nil, domain.NewValidationError("product price cannot be empty")
	}
	price, parseErr := strconv.ParseInt(rawPrice, 10, 64)
	if parseErr != nil {
		return "", 0, nil, domain.NewValidationError(fmt.Sprintf("invalid product price '%s'", form.Price))
	}
	if price < 0 {
		return "", 0, nil, domain.NewValidationError("product price cannot be negative")
	}
	if form.ImageURL != "" {
		img := form.ImageURL
		imageURL = &img
	}
	return name, price, imageURL, nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, form ProductForm) (*domain.Product, error) {
	name, price, imageURL, err := parseForm(form)
	if err != nil {
		uc.log.Warnf("Use Case: Rejected new product: %v", err)
		return nil, err
	}

	product := &domain.Product{
		ID:        uuid.NewString(),
		Name:      name,
		Price:     price,
		ImageURL:  imageURL,
		CreatedAt: uc.now(),
	}

	uc.log.Infof("Use Case: Attempting to create product '%s'", product.Name)
	created, err := uc.productRepo.CreateProduct(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		if domain.KindOf(err) == domain.KindValidation {
			return nil, err
		}
		return nil, domain.NewPersistenceError("failed to save product", err)
	}

	uc.log.Infof("Use Case: Product '%s' created successfully with ID %s", created.Name, created.ID)
	return created, nil
}

func (uc *productUseCase) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("invalid product ID")
	}
	product, err := uc.productRepo.GetProductByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get product ID %s: %v", id, err)
		return nil, err
	}
	return product, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id string, form ProductForm) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("invalid product ID")
	}
	name, price, imageURL, err := parseForm(form)
	if err != nil {
		uc.log.Warnf("Use Case: Rejected update for product ID %s: %v", id, err)
		return nil, err
	}

	existing, err := uc.productRepo.GetProductByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Product ID %s not found for update: %v", id, err)
		return nil, err
	}

	existing.Name = name
	existing.Price = price
	existing.ImageURL = imageURL

	updated, err := uc.productRepo.UpdateProduct(ctx, existing)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update product ID %s: %v", id, err)
		switch domain.KindOf(err) {
		case domain.KindNotFound, domain.KindValidation:
			return nil, err
		}
		return nil, domain.NewPersistenceError("failed to update product", err)
	}

	uc.log.Infof("Use Case: Product ID %s updated successfully", id)
	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError("invalid product ID")
	}
	if err := uc.productRepo.DeleteProduct(ctx, id); err != nil {
		uc.log.Errorf("Use Case: Repository failed to delete product ID %s: %v", id, err)
		if domain.KindOf(err) == domain.KindNotFound {
			return err
		}
		return domain.NewPersistenceError("failed to delete product", err)
	}
	uc.log.Infof("Use Case: Product ID %s deleted successfully", id)
	return nil
}

// ListProducts never fails. A store error yields an empty catalog.
func (uc *productUseCase) ListProducts(ctx context.Context, order domain.ProductOrder, query string) []domain.Product {
	if !domain.IsValidProductOrder(order) {
		order = domain.ProductOrderName
	}
	products, err := uc.productRepo.ListProducts(ctx, order)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to list products (order %s): %v", order, err)
		return []domain.Product{}
	}
	return domain.FilterProducts(products, query)
}
