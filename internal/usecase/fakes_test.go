package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"pos_service/internal/clients"
	"pos_service/internal/domain"

	"github.com/sirupsen/logrus"
)

var errStoreDown = errors.New("connection refused")

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var (
	kopi = domain.Product{ID: "p-kopi", Name: "KOPI", Price: 15000}
	teh  = domain.Product{ID: "p-teh", Name: "TEH", Price: 10000}
)

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]domain.Product
	calls    int
	err      error
}

func newMemProductRepo(products ...domain.Product) *memProductRepo {
	r := &memProductRepo{products: make(map[string]domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memProductRepo) CreateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	r.products[p.ID] = *p
	out := *p
	return &out, nil
}

func (r *memProductRepo) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, domain.NewNotFoundError("product with id %s not found", id)
	}
	return &p, nil
}

func (r *memProductRepo) UpdateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.products[p.ID]; !ok {
		return nil, domain.NewNotFoundError("product with id %s not found", p.ID)
	}
	r.products[p.ID] = *p
	out := *p
	return &out, nil
}

func (r *memProductRepo) DeleteProduct(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	if _, ok := r.products[id]; !ok {
		return domain.NewNotFoundError("product with id %s not found", id)
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) ListProducts(_ context.Context, order domain.ProductOrder) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if order == domain.ProductOrderNewest {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type memTxRepo struct {
	mu  sync.Mutex
	txs []domain.Transaction
	err error
}

func (r *memTxRepo) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.txs = append(r.txs, *tx)
	out := *tx
	return &out, nil
}

func (r *memTxRepo) GetTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, tx := range r.txs {
		if tx.ID == id {
			out := tx
			return &out, nil
		}
	}
	return nil, domain.NewNotFoundError("transaction with id %s not found", id)
}

func (r *memTxRepo) ListTransactionsSince(_ context.Context, since time.Time, order domain.SortOrder) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Transaction, 0, len(r.txs))
	for _, tx := range r.txs {
		if !tx.CreatedAt.Before(since) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == domain.SortDescending {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memTxRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.txs)
}

type fakeRenderer struct {
	requests []clients.DocumentRequest
	err      error
}

func (f *fakeRenderer) RenderToFile(_ context.Context, req clients.DocumentRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.requests = append(f.requests, req)
	return "file:///receipts/" + req.Name + ".html", nil
}

type fakeSharer struct {
	shared []string
	err    error
}

func (f *fakeSharer) Share(_ context.Context, uri string) error {
	if f.err != nil {
		return f.err
	}
	f.shared = append(f.shared, uri)
	return nil
}
