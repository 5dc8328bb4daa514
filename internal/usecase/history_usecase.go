package usecase

import (
	"bytes"
	"context"
	"strings"
	"time"

	"pos_service/internal/domain"
	"pos_service/internal/report"

	"github.com/sirupsen/logrus"
)

type HistorySummary struct {
	TotalRevenue int64 `json:"total_revenue"`
	OrderCount   int   `json:"order_count"`
	CashRevenue  int64 `json:"cash_revenue"`
	QrisRevenue  int64 `json:"qris_revenue"`
}

type HistoryView struct {
	Range        domain.DateRange     `json:"range"`
	Summary      HistorySummary       `json:"summary"`
	Transactions []domain.Transaction `json:"transactions"`
}

// Summarize totals the transactions created at or after the start of r.
// Anything not paid by QRIS counts as cash.
func Summarize(txs []domain.Transaction, r domain.DateRange, now time.Time) HistorySummary {
	start := r.Start(now)
	var s HistorySummary
	for _, tx := range txs {
		if tx.CreatedAt.Before(start) {
			continue
		}
		s.OrderCount++
		s.TotalRevenue += tx.TotalAmount
		if tx.PaymentMethod == domain.PaymentQRIS {
			s.QrisRevenue += tx.TotalAmount
		} else {
			s.CashRevenue += tx.TotalAmount
		}
	}
	return s
}

// FilterByCustomer keeps transactions whose customer name contains query,
// ignoring case. A blank query returns txs unchanged.
func FilterByCustomer(txs []domain.Transaction, query string) []domain.Transaction {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return txs
	}
	filtered := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if strings.Contains(strings.ToLower(tx.CustomerName), q) {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

type HistoryUseCase interface {
	History(ctx context.Context, r domain.DateRange, query string) *HistoryView
	Get(ctx context.Context, id string) (*domain.Transaction, error)
	Export(ctx context.Context, r domain.DateRange) ([]byte, error)
}

var _ HistoryUseCase = (*historyUseCase)(nil)

type historyUseCase struct {
	txRepo   domain.TransactionRepository
	location *time.Location
	now      func() time.Time
	log      *logrus.Logger
}

func NewHistoryUseCase(repo domain.TransactionRepository, location *time.Location, logger *logrus.Logger) HistoryUseCase {
	if location == nil {
		location = time.Local
	}
	return &historyUseCase{
		txRepo:   repo,
		location: location,
		now:      time.Now,
		log:      logger,
	}
}

func (uc *historyUseCase) History(ctx context.Context, r domain.DateRange, query string) *HistoryView {
	now := uc.now().In(uc.location)
	view := &HistoryView{Range: r, Transactions: []domain.Transaction{}}

	txs, err := uc.txRepo.ListTransactionsSince(ctx, r.Start(now), domain.SortDescending)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to load history for range %s: %v", r, err)
		return view
	}

	view.Summary = Summarize(txs, r, now)
	if filtered := FilterByCustomer(txs, query); filtered != nil {
		view.Transactions = filtered
	}
	return view
}

func (uc *historyUseCase) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("invalid transaction ID")
	}
	tx, err := uc.txRepo.GetTransactionByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get transaction %s: %v", id, err)
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, err
		}
		return nil, domain.NewPersistenceError("failed to load transaction", err)
	}
	return tx, nil
}

// Export writes the range's transactions and summary as an XLSX workbook.
// Unlike History it reports read failures.
func (uc *historyUseCase) Export(ctx context.Context, r domain.DateRange) ([]byte, error) {
	now := uc.now().In(uc.location)
	txs, err := uc.txRepo.ListTransactionsSince(ctx, r.Start(now), domain.SortAscending)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load transactions for export (range %s): %v", r, err)
		return nil, domain.NewPersistenceError("failed to load transactions", err)
	}

	s := Summarize(txs, r, now)
	var buf bytes.Buffer
	err = report.WriteHistory(&buf, report.History{
		Title:        "Riwayat Transaksi " + string(r),
		Location:     uc.location,
		Transactions: txs,
		TotalRevenue: s.TotalRevenue,
		CashRevenue:  s.CashRevenue,
		QrisRevenue:  s.QrisRevenue,
	})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to build export workbook (range %s): %v", r, err)
		return nil, domain.NewRenderError("failed to build export", err)
	}
	uc.log.Infof("Use Case: Exported %d transactions for range %s", len(txs), r)
	return buf.Bytes(), nil
}
