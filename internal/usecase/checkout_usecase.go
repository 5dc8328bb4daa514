package usecase

import (
	"context"
	"time"

	"pos_service/internal/clients"
	"pos_service/internal/domain"
	"pos_service/internal/receipt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "pos_service/usecase"

type CheckoutRequest struct {
	CartID string
	// CustomerName overrides the name stored on the cart when set.
	CustomerName  *string
	PaymentMethod string
}

type CheckoutResult struct {
	Transaction *domain.Transaction `json:"transaction"`
	Receipt     *receipt.Document   `json:"receipt,omitempty"`
	URI         string              `json:"uri,omitempty"`
}

type PaymentLink struct {
	CartID string `json:"cart_id"`
	Link   string `json:"link"`
	Amount int64  `json:"amount"`
}

type CheckoutUseCase interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
	PaymentLink(ctx context.Context, cartID string) (*PaymentLink, error)
}

type CheckoutOption func(*checkoutUseCase)

// WithPrinter also sends every receipt to a thermal printer.
func WithPrinter(p receipt.ThermalPrinter) CheckoutOption {
	return func(uc *checkoutUseCase) { uc.printer = p }
}

func WithClock(now func() time.Time) CheckoutOption {
	return func(uc *checkoutUseCase) { uc.now = now }
}

// WithLocation formats receipt timestamps in loc, whatever zone the
// repository returns them in.
func WithLocation(loc *time.Location) CheckoutOption {
	return func(uc *checkoutUseCase) { uc.location = loc }
}

func WithTracer(t trace.Tracer) CheckoutOption {
	return func(uc *checkoutUseCase) { uc.tracer = t }
}

var _ CheckoutUseCase = (*checkoutUseCase)(nil)

type checkoutUseCase struct {
	registry *CartRegistry
	txRepo   domain.TransactionRepository
	renderer clients.DocumentRenderer
	sharer   clients.Sharer
	printer  receipt.ThermalPrinter
	profile  receipt.Profile
	qrisLink string
	now      func() time.Time
	location *time.Location
	tracer   trace.Tracer
	log      *logrus.Logger
}

func NewCheckoutUseCase(
	registry *CartRegistry,
	txRepo domain.TransactionRepository,
	renderer clients.DocumentRenderer,
	sharer clients.Sharer,
	profile receipt.Profile,
	qrisLink string,
	logger *logrus.Logger,
	opts ...CheckoutOption,
) CheckoutUseCase {
	uc := &checkoutUseCase{
		registry: registry,
		txRepo:   txRepo,
		renderer: renderer,
		sharer:   sharer,
		profile:  profile,
		qrisLink: qrisLink,
		now:      time.Now,
		tracer:   otel.Tracer(tracerName),
		log:      logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Checkout records the cart as a transaction and then produces its receipt.
// An empty cart is a no-op and yields a nil result. A persistence failure
// leaves the cart untouched. A receipt failure is reported with the result
// still carrying the recorded transaction, and the cart is cleared anyway.
func (uc *checkoutUseCase) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := uc.tracer.Start(ctx, "Checkout", trace.WithAttributes(attribute.String("cart.id", req.CartID)))
	defer span.End()

	s, err := uc.registry.lookup(req.CartID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.cart.IsEmpty() {
		s.mu.Unlock()
		uc.log.Infof("Use Case: Checkout of empty cart %s ignored", req.CartID)
		return nil, nil
	}

	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		s.mu.Unlock()
		uc.log.Warnf("Use Case: Checkout of cart %s rejected: %v", req.CartID, err)
		return nil, err
	}

	customer := s.customerName
	if req.CustomerName != nil {
		customer = *req.CustomerName
	}

	tx := domain.NewTransaction(uuid.NewString(), customer, method, s.cart.Lines(), uc.localize(uc.now()))
	if err := tx.Validate(); err != nil {
		s.mu.Unlock()
		uc.log.Errorf("Use Case: Built invalid transaction from cart %s: %v", req.CartID, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("transaction.id", tx.ID),
		attribute.Int64("transaction.total", tx.TotalAmount),
		attribute.String("transaction.method", string(tx.PaymentMethod)),
	)

	saved, err := uc.persist(ctx, tx)
	if err != nil {
		s.mu.Unlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, err
	}
	saved.CreatedAt = uc.localize(saved.CreatedAt)

	s.cart.Clear()
	s.customerName = ""
	s.mu.Unlock()

	result := &CheckoutResult{Transaction: saved}
	doc, uri, err := uc.produceReceipt(ctx, saved)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "receipt failed")
		return result, err
	}
	result.Receipt = &doc
	result.URI = uri

	uc.log.Infof("Use Case: Checkout of cart %s completed as transaction %s (total %d, %s)", req.CartID, saved.ID, saved.TotalAmount, saved.PaymentMethod)
	return result, nil
}

func (uc *checkoutUseCase) localize(t time.Time) time.Time {
	if uc.location == nil {
		return t
	}
	return t.In(uc.location)
}

func (uc *checkoutUseCase) persist(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := uc.tracer.Start(ctx, "Checkout.persist")
	defer span.End()

	uc.log.Infof("Use Case: Attempting to save transaction %s (total %d)", tx.ID, tx.TotalAmount)
	saved, err := uc.txRepo.CreateTransaction(ctx, tx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to save transaction %s: %v", tx.ID, err)
		span.RecordError(err)
		return nil, domain.NewPersistenceError("failed to save transaction", err)
	}
	return saved, nil
}

func (uc *checkoutUseCase) produceReceipt(ctx context.Context, tx *domain.Transaction) (receipt.Document, string, error) {
	ctx, span := uc.tracer.Start(ctx, "Checkout.receipt")
	defer span.End()

	doc, err := receipt.Render(tx, uc.profile)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to render receipt for transaction %s: %v", tx.ID, err)
		return receipt.Document{}, "", domain.NewRenderError("failed to render receipt", err)
	}

	uri, err := uc.renderer.RenderToFile(ctx, clients.DocumentRequest{
		Name:   doc.Name,
		Markup: doc.Markup,
		Width:  doc.Width,
		Height: doc.Height,
	})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to write receipt for transaction %s: %v", tx.ID, err)
		return doc, "", domain.NewRenderError("failed to write receipt document", err)
	}

	if err := uc.sharer.Share(ctx, uri); err != nil {
		uc.log.Errorf("Use Case: Failed to share receipt %s: %v", uri, err)
		return doc, uri, domain.NewRenderError("failed to share receipt", err)
	}

	if uc.printer != nil {
		if err := receipt.PrintReceipt(ctx, uc.printer, doc); err != nil {
			uc.log.Errorf("Use Case: Failed to print receipt for transaction %s: %v", tx.ID, err)
			return doc, uri, domain.NewRenderError("failed to print receipt", err)
		}
	}
	span.SetAttributes(attribute.String("receipt.uri", uri))
	return doc, uri, nil
}

func (uc *checkoutUseCase) PaymentLink(_ context.Context, cartID string) (*PaymentLink, error) {
	if uc.qrisLink == "" {
		return nil, domain.NewNotFoundError("no QRIS payment link configured")
	}
	s, err := uc.registry.lookup(cartID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return &PaymentLink{CartID: cartID, Link: uc.qrisLink, Amount: s.cart.Total()}, nil
}
