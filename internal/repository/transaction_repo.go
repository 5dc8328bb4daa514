package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pos_service/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresTransactionRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresTransactionRepository(db *sql.DB, logger *logrus.Logger) domain.TransactionRepository {
	return &postgresTransactionRepository{
		db:  db,
		log: logger,
	}
}

// transactionRow mirrors the transactions table before any checks.
type transactionRow struct {
	ID            string
	CustomerName  sql.NullString
	TotalAmount   sql.NullInt64
	PaymentMethod sql.NullString
	Items         []byte
	CreatedAt     sql.NullTime
}

const transactionColumns = `id, customer_name, total_amount, payment_method, items, created_at`

func (row *transactionRow) scan(s interface{ Scan(...interface{}) error }) error {
	return s.Scan(&row.ID, &row.CustomerName, &row.TotalAmount, &row.PaymentMethod, &row.Items, &row.CreatedAt)
}

// decodeTransactionRow turns a stored row into a Transaction, rejecting rows
// with missing columns, unknown item fields or a total that does not match
// its items.
func decodeTransactionRow(row transactionRow) (domain.Transaction, error) {
	if row.ID == "" {
		return domain.Transaction{}, fmt.Errorf("row has no id")
	}
	if !row.TotalAmount.Valid {
		return domain.Transaction{}, fmt.Errorf("transaction %s: total_amount is null", row.ID)
	}
	if !row.PaymentMethod.Valid {
		return domain.Transaction{}, fmt.Errorf("transaction %s: payment_method is null", row.ID)
	}
	if !row.CreatedAt.Valid {
		return domain.Transaction{}, fmt.Errorf("transaction %s: created_at is null", row.ID)
	}

	var items []domain.LineItem
	dec := json.NewDecoder(bytes.NewReader(row.Items))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&items); err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: invalid items: %w", row.ID, err)
	}
	if items == nil {
		items = []domain.LineItem{}
	}

	tx := domain.Transaction{
		ID:            row.ID,
		CustomerName:  domain.NormalizeCustomerName(row.CustomerName.String),
		TotalAmount:   row.TotalAmount.Int64,
		PaymentMethod: domain.PaymentMethod(row.PaymentMethod.String),
		Items:         items,
		CreatedAt:     row.CreatedAt.Time,
	}
	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", row.ID, err)
	}
	return tx, nil
}

func (r *postgresTransactionRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	items, err := json.Marshal(tx.Items)
	if err != nil {
		r.log.Errorf("Repository: Failed to encode items for transaction %s: %v", tx.ID, err)
		return nil, fmt.Errorf("could not encode transaction items: %w", err)
	}

	query := `
        INSERT INTO transactions (` + transactionColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`
	err = r.db.QueryRowContext(ctx, query,
		tx.ID, tx.CustomerName, tx.TotalAmount, string(tx.PaymentMethod), items, tx.CreatedAt,
	).Scan(&tx.CreatedAt)
	if err != nil {
		if cErr := constraintError(err); cErr != nil {
			r.log.Warnf("Repository: Constraint violation saving transaction %s: %v", tx.ID, err)
			return nil, cErr
		}
		r.log.Errorf("Repository: Failed to insert transaction %s: %v", tx.ID, err)
		return nil, fmt.Errorf("could not create transaction: %w", err)
	}

	r.log.Infof("Repository: Transaction %s created with %d items, total %d", tx.ID, len(tx.Items), tx.TotalAmount)
	return tx, nil
}

func (r *postgresTransactionRepository) GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	var row transactionRow
	if err := row.scan(r.db.QueryRowContext(ctx, query, id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Transaction with ID %s not found", id)
			return nil, domain.NewNotFoundError("transaction with id %s not found", id)
		}
		r.log.Errorf("Repository: Failed to get transaction by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not retrieve transaction: %w", err)
	}

	tx, err := decodeTransactionRow(row)
	if err != nil {
		r.log.Errorf("Repository: Stored transaction %s is malformed: %v", id, err)
		return nil, fmt.Errorf("could not decode transaction: %w", err)
	}
	return &tx, nil
}

// ListTransactionsSince returns the transactions created at or after since.
// Malformed rows are logged and left out.
func (r *postgresTransactionRepository) ListTransactionsSince(ctx context.Context, since time.Time, order domain.SortOrder) ([]domain.Transaction, error) {
	direction := "DESC"
	if order == domain.SortAscending {
		direction = "ASC"
	}
	query := `SELECT ` + transactionColumns + `
        FROM transactions
        WHERE created_at >= $1
        ORDER BY created_at ` + direction

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		r.log.Errorf("Repository: Failed to list transactions since %s: %v", since.Format(time.RFC3339), err)
		return nil, fmt.Errorf("could not list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		var row transactionRow
		if err := row.scan(rows); err != nil {
			r.log.Errorf("Repository: Skipping unreadable transaction row: %v", err)
			continue
		}
		tx, err := decodeTransactionRow(row)
		if err != nil {
			r.log.Errorf("Repository: Skipping malformed transaction row: %v", err)
			continue
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Repository: Error iterating transaction rows: %v", err)
		return nil, fmt.Errorf("error reading transactions: %w", err)
	}

	r.log.Debugf("Repository: Listed %d transactions since %s", len(txs), since.Format(time.RFC3339))
	return txs, nil
}
