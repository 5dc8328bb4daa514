package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentQRIS PaymentMethod = "QRIS"
)

// DefaultCustomerName is recorded when the cashier leaves the customer blank.
const DefaultCustomerName = "UMUM"

func IsValidPaymentMethod(method PaymentMethod) bool {
	switch method {
	case PaymentCash, PaymentQRIS:
		return true
	default:
		return false
	}
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !IsValidPaymentMethod(method) {
		return "", NewValidationError(fmt.Sprintf("invalid payment method '%s'", s))
	}
	return method, nil
}

// NormalizeCustomerName trims name and substitutes DefaultCustomerName when
// nothing is left.
func NormalizeCustomerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultCustomerName
	}
	return name
}

// LineItem is a frozen copy of a cart line, independent of the live product.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"qty"`
	Price     int64  `json:"price"`
}

func (li LineItem) Subtotal() int64 {
	return int64(li.Quantity) * li.Price
}

type Transaction struct {
	ID            string        `json:"id"`
	CustomerName  string        `json:"customer_name"`
	TotalAmount   int64         `json:"total_amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Items         []LineItem    `json:"items"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewTransaction snapshots lines into a transaction. The total is computed
// once here and never recomputed afterwards.
func NewTransaction(id, customerName string, method PaymentMethod, lines []CartLine, createdAt time.Time) *Transaction {
	items := make([]LineItem, 0, len(lines))
	var total int64
	for _, l := range lines {
		item := LineItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
		}
		total += item.Subtotal()
		items = append(items, item)
	}
	return &Transaction{
		ID:            id,
		CustomerName:  NormalizeCustomerName(customerName),
		TotalAmount:   total,
		PaymentMethod: method,
		Items:         items,
		CreatedAt:     createdAt,
	}
}

// ItemsTotal sums the line subtotals.
func (t *Transaction) ItemsTotal() int64 {
	var total int64
	for _, item := range t.Items {
		total += item.Subtotal()
	}
	return total
}

// Validate checks a transaction about to be recorded.
func (t *Transaction) Validate() error {
	if !IsValidPaymentMethod(t.PaymentMethod) {
		return NewValidationError(fmt.Sprintf("invalid payment method '%s'", t.PaymentMethod))
	}
	if t.TotalAmount < 0 {
		return NewValidationError("total amount cannot be negative")
	}
	for i, item := range t.Items {
		if item.Quantity <= 0 {
			return NewValidationError(fmt.Sprintf("item %d (%s): quantity must be positive", i, item.Name))
		}
		if item.Price < 0 {
			return NewValidationError(fmt.Sprintf("item %d (%s): price cannot be negative", i, item.Name))
		}
	}
	if sum := t.ItemsTotal(); sum != t.TotalAmount {
		return NewValidationError(fmt.Sprintf("total amount %d does not match items total %d", t.TotalAmount, sum))
	}
	return nil
}

type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) (*Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*Transaction, error)
	ListTransactionsSince(ctx context.Context, since time.Time, order SortOrder) ([]Transaction, error)
}
