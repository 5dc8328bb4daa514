package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pos_service/internal/domain"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const catalogKeyPrefix = "pos:catalog:"

func productListKey(order domain.ProductOrder) string {
	return catalogKeyPrefix + "products:" + string(order)
}

func productKey(id string) string {
	return catalogKeyPrefix + "product:" + id
}

type cachedProductRepository struct {
	inner  domain.ProductRepository
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// NewCachedProductRepository puts a Redis read-through cache in front of
// inner. Cache failures are logged and the store is used directly.
func NewCachedProductRepository(inner domain.ProductRepository, client *redis.Client, ttl time.Duration, logger *logrus.Logger) domain.ProductRepository {
	return &cachedProductRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		log:    logger,
	}
}

func (r *cachedProductRepository) load(ctx context.Context, key string, dst interface{}) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warnf("Cache: Failed to read %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.log.Warnf("Cache: Discarding undecodable entry %s: %v", key, err)
		return false
	}
	return true
}

func (r *cachedProductRepository) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		r.log.Warnf("Cache: Failed to encode %s: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.log.Warnf("Cache: Failed to write %s: %v", key, err)
	}
}

func (r *cachedProductRepository) invalidate(ctx context.Context, ids ...string) {
	keys := []string{
		productListKey(domain.ProductOrderName),
		productListKey(domain.ProductOrderNewest),
	}
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.log.Warnf("Cache: Failed to invalidate catalog: %v", err)
	}
}

func (r *cachedProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	created, err := r.inner.CreateProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return created, nil
}

func (r *cachedProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var cached domain.Product
	if r.load(ctx, productKey(id), &cached) {
		return &cached, nil
	}
	product, err := r.inner.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, productKey(id), product)
	return product, nil
}

func (r *cachedProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	updated, err := r.inner.UpdateProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, product.ID)
	return updated, nil
}

func (r *cachedProductRepository) DeleteProduct(ctx context.Context, id string) error {
	if err := r.inner.DeleteProduct(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *cachedProductRepository) ListProducts(ctx context.Context, order domain.ProductOrder) ([]domain.Product, error) {
	key := productListKey(order)
	var cached []domain.Product
	if r.load(ctx, key, &cached) {
		return cached, nil
	}
	products, err := r.inner.ListProducts(ctx, order)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, products)
	return products, nil
}
