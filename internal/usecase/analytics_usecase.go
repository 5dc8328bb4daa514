package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pos_service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MaxBuckets is the number of most recent buckets a series keeps.
const MaxBuckets = 7

var shortMonths = [12]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

var thousand = decimal.NewFromInt(1000)

// Point is one bucket of the sales chart. Value is revenue in thousands.
type Point struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label string      `json:"label"`
		Value json.Number `json:"value"`
	}{p.Label, json.Number(p.Value.String())})
}

type AnalyticsView struct {
	Range      domain.DateRange `json:"range"`
	Series     []Point          `json:"series"`
	TotalSales int64            `json:"total_sales"`
}

// bucketLabel keys YEAR buckets by month and two-digit year so the same
// month of consecutive years stays apart.
func bucketLabel(t time.Time, r domain.DateRange) string {
	if r == domain.RangeYear {
		return fmt.Sprintf("%s %02d", shortMonths[t.Month()-1], t.Year()%100)
	}
	return t.Format("02/01")
}

// Bucket groups revenue by day, or by month for YEAR, in the order the
// labels first appear in txs. Only the last MaxBuckets buckets are kept.
// Bucketing uses each timestamp's own location; callers convert first.
func Bucket(txs []domain.Transaction, r domain.DateRange) []Point {
	if len(txs) == 0 {
		return []Point{{Label: "", Value: decimal.Zero}}
	}

	index := make(map[string]int)
	sums := make([]int64, 0)
	labels := make([]string, 0)
	for _, tx := range txs {
		label := bucketLabel(tx.CreatedAt, r)
		i, ok := index[label]
		if !ok {
			i = len(labels)
			index[label] = i
			labels = append(labels, label)
			sums = append(sums, 0)
		}
		sums[i] += tx.TotalAmount
	}

	first := 0
	if len(labels) > MaxBuckets {
		first = len(labels) - MaxBuckets
	}
	points := make([]Point, 0, len(labels)-first)
	for i := first; i < len(labels); i++ {
		points = append(points, Point{
			Label: labels[i],
			Value: decimal.NewFromInt(sums[i]).Div(thousand),
		})
	}
	return points
}

type AnalyticsUseCase interface {
	Analytics(ctx context.Context, r domain.DateRange) *AnalyticsView
}

var _ AnalyticsUseCase = (*analyticsUseCase)(nil)

type analyticsUseCase struct {
	txRepo   domain.TransactionRepository
	location *time.Location
	now      func() time.Time
	log      *logrus.Logger
}

func NewAnalyticsUseCase(repo domain.TransactionRepository, location *time.Location, logger *logrus.Logger) AnalyticsUseCase {
	if location == nil {
		location = time.Local
	}
	return &analyticsUseCase{
		txRepo:   repo,
		location: location,
		now:      time.Now,
		log:      logger,
	}
}

// Analytics never fails. A read error yields the empty series.
func (uc *analyticsUseCase) Analytics(ctx context.Context, r domain.DateRange) *AnalyticsView {
	now := uc.now().In(uc.location)
	txs, err := uc.txRepo.ListTransactionsSince(ctx, r.Start(now), domain.SortAscending)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to load analytics for range %s: %v", r, err)
		txs = nil
	}

	local := make([]domain.Transaction, len(txs))
	var total int64
	for i, tx := range txs {
		tx.CreatedAt = tx.CreatedAt.In(uc.location)
		local[i] = tx
		total += tx.TotalAmount
	}

	return &AnalyticsView{
		Range:      r,
		Series:     Bucket(local, r),
		TotalSales: total,
	}
}
