package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"pos_service/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	txColumns      = []string{"id", "customer_name", "total_amount", "payment_method", "items", "created_at"}
	productColumns = []string{"id", "name", "price", "image_url", "created_at"}
	created        = time.Date(2026, 10, 15, 7, 30, 0, 0, time.UTC)
)

const validItems = `[{"product_id":"p-kopi","name":"KOPI","qty":2,"price":15000},{"product_id":"p-teh","name":"TEH","qty":1,"price":10000}]`

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestDecodeTransactionRow(t *testing.T) {
	valid := transactionRow{
		ID:            "tx-1",
		CustomerName:  sql.NullString{String: "Ali", Valid: true},
		TotalAmount:   sql.NullInt64{Int64: 40000, Valid: true},
		PaymentMethod: sql.NullString{String: "CASH", Valid: true},
		Items:         []byte(validItems),
		CreatedAt:     sql.NullTime{Time: created, Valid: true},
	}

	tx, err := decodeTransactionRow(valid)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), tx.TotalAmount)
	assert.Len(t, tx.Items, 2)
	assert.Equal(t, 2, tx.Items[0].Quantity)

	noName := valid
	noName.CustomerName = sql.NullString{}
	tx, err = decodeTransactionRow(noName)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCustomerName, tx.CustomerName)

	tests := []struct {
		name   string
		mutate func(r *transactionRow)
	}{
		{"null total", func(r *transactionRow) { r.TotalAmount = sql.NullInt64{} }},
		{"null method", func(r *transactionRow) { r.PaymentMethod = sql.NullString{} }},
		{"unknown method", func(r *transactionRow) { r.PaymentMethod = sql.NullString{String: "DEBIT", Valid: true} }},
		{"null created_at", func(r *transactionRow) { r.CreatedAt = sql.NullTime{} }},
		{"broken items", func(r *transactionRow) { r.Items = []byte(`[{"name":`) }},
		{"unknown item field", func(r *transactionRow) { r.Items = []byte(`[{"product_id":"p","name":"X","qty":1,"price":40000,"discount":5}]`) }},
		{"total mismatch", func(r *transactionRow) { r.TotalAmount = sql.NullInt64{Int64: 39000, Valid: true} }},
		{"missing id", func(r *transactionRow) { r.ID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := valid
			tt.mutate(&row)
			_, err := decodeTransactionRow(row)
			assert.Error(t, err)
		})
	}
}

func TestTransactionRepository_ListSkipsMalformedRows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresTransactionRepository(db, quietLogger())
	since := created.Add(-24 * time.Hour)

	rows := sqlmock.NewRows(txColumns).
		AddRow("tx-1", "Ali", int64(40000), "CASH", []byte(validItems), created).
		AddRow("tx-bad", "Budi", int64(1), "CASH", []byte(`not json`), created).
		AddRow("tx-2", nil, int64(40000), "QRIS", []byte(validItems), created.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions")).
		WithArgs(since).
		WillReturnRows(rows)

	txs, err := repo.ListTransactionsSince(context.Background(), since, domain.SortDescending)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "tx-1", txs[0].ID)
	assert.Equal(t, domain.DefaultCustomerName, txs[1].CustomerName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListOrder(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresTransactionRepository(db, quietLogger())

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC")).
		WillReturnRows(sqlmock.NewRows(txColumns))

	txs, err := repo.ListTransactionsSince(context.Background(), created, domain.SortAscending)
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresTransactionRepository(db, quietLogger())

	tx := domain.NewTransaction("tx-1", "", domain.PaymentCash, []domain.CartLine{
		{Product: domain.Product{ID: "p-kopi", Name: "KOPI", Price: 15000}, Quantity: 2},
	}, created)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs("tx-1", domain.DefaultCustomerName, int64(30000), "CASH", sqlmock.AnyArg(), created).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	saved, err := repo.CreateTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, "tx-1", saved.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_CreateConstraintViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresTransactionRepository(db, quietLogger())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WillReturnError(&pq.Error{Code: pqCheckViolation, Message: "total_amount_check"})

	_, err := repo.CreateTransaction(context.Background(), &domain.Transaction{ID: "tx-1", PaymentMethod: domain.PaymentCash})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTransactionRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresTransactionRepository(db, quietLogger())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("tx-1").
		WillReturnRows(sqlmock.NewRows(txColumns).AddRow("tx-1", "Ali", int64(40000), "CASH", []byte(validItems), created))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	tx, err := repo.GetTransactionByID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "Ali", tx.CustomerName)

	_, err = repo.GetTransactionByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListOrderAndImage(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresProductRepository(db, quietLogger())

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("p-teh", "TEH", int64(10000), "file:///img/teh.jpg", created).
			AddRow("p-kopi", "KOPI", int64(15000), nil, created.Add(-time.Hour)))

	products, err := repo.ListProducts(context.Background(), domain.ProductOrderNewest)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.NotNil(t, products[0].ImageURL)
	assert.Equal(t, "file:///img/teh.jpg", *products[0].ImageURL)
	assert.Nil(t, products[1].ImageURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresProductRepository(db, quietLogger())

	mock.ExpectQuery(regexp.QuoteMeta("FROM products")).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products")).WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	_, err := repo.GetProductByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.UpdateProduct(ctx, &domain.Product{ID: "missing", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteProduct(ctx, "missing"), domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresProductRepository(db, quietLogger())
	img := "file:///img/kopi.jpg"

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
		WithArgs("p-kopi", "KOPI", int64(15000), img, created).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Message: "products_pkey"})

	ctx := context.Background()
	_, err := repo.CreateProduct(ctx, &domain.Product{ID: "p-kopi", Name: "KOPI", Price: 15000, ImageURL: &img, CreatedAt: created})
	require.NoError(t, err)

	_, err = repo.CreateProduct(ctx, &domain.Product{ID: "p-kopi", Name: "KOPI", Price: 15000, CreatedAt: created})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
