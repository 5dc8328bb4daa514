package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"pos_service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CartView is a read-only copy of a cart session.
type CartView struct {
	ID           string            `json:"id"`
	CustomerName string            `json:"customer_name"`
	Lines        []domain.CartLine `json:"lines"`
	Total        int64             `json:"total"`
	ItemCount    int               `json:"item_count"`
	CreatedAt    time.Time         `json:"created_at"`
}

type cartSession struct {
	mu           sync.Mutex
	id           string
	cart         *domain.Cart
	customerName string
	createdAt    time.Time
}

func (s *cartSession) view() *CartView {
	return &CartView{
		ID:           s.id,
		CustomerName: s.customerName,
		Lines:        s.cart.Lines(),
		Total:        s.cart.Total(),
		ItemCount:    s.cart.ItemCount(),
		CreatedAt:    s.createdAt,
	}
}

// CartRegistry holds the open cart sessions in memory.
type CartRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*cartSession
	now      func() time.Time
}

func NewCartRegistry() *CartRegistry {
	return &CartRegistry{
		sessions: make(map[string]*cartSession),
		now:      time.Now,
	}
}

func (r *CartRegistry) open() *cartSession {
	s := &cartSession{
		id:        uuid.NewString(),
		cart:      domain.NewCart(),
		createdAt: r.now(),
	}
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	return s
}

func (r *CartRegistry) lookup(id string) (*cartSession, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.NewNotFoundError("cart with id %s not found", id)
	}
	return s, nil
}

type CartUseCase interface {
	NewCart(ctx context.Context) *CartView
	GetCart(ctx context.Context, cartID string) (*CartView, error)
	AdjustItem(ctx context.Context, cartID, productID string, delta int) (*CartView, error)
	SetCustomerName(ctx context.Context, cartID, name string) (*CartView, error)
}

var _ CartUseCase = (*cartUseCase)(nil)

type cartUseCase struct {
	registry    *CartRegistry
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewCartUseCase(registry *CartRegistry, productRepo domain.ProductRepository, logger *logrus.Logger) CartUseCase {
	return &cartUseCase{
		registry:    registry,
		productRepo: productRepo,
		log:         logger,
	}
}

func (uc *cartUseCase) NewCart(_ context.Context) *CartView {
	s := uc.registry.open()
	uc.log.Infof("Use Case: Opened cart %s", s.id)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (uc *cartUseCase) GetCart(_ context.Context, cartID string) (*CartView, error) {
	s, err := uc.registry.lookup(cartID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// AdjustItem applies delta to the product's line. The product is only
// looked up when it is not in the cart yet, so the line keeps the price it
// was added at.
func (uc *cartUseCase) AdjustItem(ctx context.Context, cartID, productID string, delta int) (*CartView, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domain.NewValidationError("product_id is required")
	}
	if delta == 0 {
		return nil, domain.NewValidationError("delta must be non-zero")
	}
	s, err := uc.registry.lookup(cartID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	line, inCart := s.cart.Line(productID)
	s.mu.Unlock()

	product := line.Product
	if !inCart {
		if delta < 0 {
			uc.log.Infof("Use Case: Ignoring removal of product %s absent from cart %s", productID, cartID)
			return uc.GetCart(ctx, cartID)
		}
		p, err := uc.productRepo.GetProductByID(ctx, productID)
		if err != nil {
			uc.log.Warnf("Use Case: Product %s lookup failed for cart %s: %v", productID, cartID, err)
			if domain.KindOf(err) == domain.KindNotFound {
				return nil, err
			}
			return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
		}
		product = *p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.AdjustQuantity(product, delta)
	uc.log.Infof("Use Case: Cart %s product %s adjusted by %d (qty now %d)", cartID, productID, delta, s.cart.Quantity(productID))
	return s.view(), nil
}

func (uc *cartUseCase) SetCustomerName(_ context.Context, cartID, name string) (*CartView, error) {
	s, err := uc.registry.lookup(cartID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerName = name
	return s.view(), nil
}
