package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"pos_service/internal/domain"
	"pos_service/internal/receipt"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

type checkoutTestContext struct {
	products map[string]domain.Product
	txRepo   *memTxRepo
	renderer *fakeRenderer
	sharer   *fakeSharer
	carts    CartUseCase
	checkout CheckoutUseCase
	cartID   string
	result   *CheckoutResult
	err      error
	series   []Point
	matches  int
}

func (c *checkoutTestContext) reset() {
	c.products = make(map[string]domain.Product)
	c.txRepo = &memTxRepo{}
	c.renderer = &fakeRenderer{}
	c.sharer = &fakeSharer{}
	c.carts = nil
	c.checkout = nil
	c.cartID = ""
	c.result = nil
	c.err = nil
	c.series = nil
	c.matches = 0
}

func (c *checkoutTestContext) theCatalogHasPriced(name string, price int) error {
	id := "p-" + strings.ToLower(name)
	c.products[name] = domain.Product{ID: id, Name: name, Price: int64(price)}
	return nil
}

func (c *checkoutTestContext) anOpenCart() error {
	repo := newMemProductRepo()
	for _, p := range c.products {
		repo.products[p.ID] = p
	}
	registry := NewCartRegistry()
	c.carts = NewCartUseCase(registry, repo, quietLogger())
	c.checkout = NewCheckoutUseCase(registry, c.txRepo, c.renderer, c.sharer, receipt.DefaultProfile(), "", quietLogger(),
		WithClock(func() time.Time { return fixedNow }))
	c.cartID = c.carts.NewCart(context.Background()).ID
	return nil
}

func (c *checkoutTestContext) product(name string) (domain.Product, error) {
	p, ok := c.products[name]
	if !ok {
		return domain.Product{}, fmt.Errorf("no product named %s in the catalog", name)
	}
	return p, nil
}

func (c *checkoutTestContext) iAddTimes(name string, times int) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	for i := 0; i < times; i++ {
		if _, err := c.carts.AdjustItem(context.Background(), c.cartID, p.ID, 1); err != nil {
			return err
		}
	}
	return nil
}

func (c *checkoutTestContext) iRemove(name string) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	_, err = c.carts.AdjustItem(context.Background(), c.cartID, p.ID, -1)
	return err
}

func (c *checkoutTestContext) theTransactionStoreIsUnavailable() error {
	c.txRepo.err = errStoreDown
	return nil
}

func (c *checkoutTestContext) iCheckOutPaying(method string) error {
	c.result, c.err = c.checkout.Checkout(context.Background(), CheckoutRequest{CartID: c.cartID, PaymentMethod: method})
	return nil
}

func (c *checkoutTestContext) theCheckoutSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	if c.result == nil {
		return fmt.Errorf("expected a checkout result")
	}
	return nil
}

func (c *checkoutTestContext) theTransactionTotalIsPaidBy(total int, method string) error {
	tx := c.result.Transaction
	if tx.TotalAmount != int64(total) {
		return fmt.Errorf("expected total %d, got %d", total, tx.TotalAmount)
	}
	if string(tx.PaymentMethod) != method {
		return fmt.Errorf("expected method %s, got %s", method, tx.PaymentMethod)
	}
	return nil
}

func (c *checkoutTestContext) theReceiptTotalLineReads(amount string) error {
	if c.result == nil || c.result.Receipt == nil {
		return fmt.Errorf("no receipt was rendered")
	}
	for _, line := range c.result.Receipt.Lines() {
		if strings.HasPrefix(line, "TOTAL") {
			if strings.HasSuffix(line, " "+amount) {
				return nil
			}
			return fmt.Errorf("total line reads %q", line)
		}
	}
	return fmt.Errorf("receipt has no TOTAL line")
}

func (c *checkoutTestContext) theCartHasLines(n int) error {
	view, err := c.carts.GetCart(context.Background(), c.cartID)
	if err != nil {
		return err
	}
	if len(view.Lines) != n {
		return fmt.Errorf("expected %d lines, got %d", n, len(view.Lines))
	}
	return nil
}

func (c *checkoutTestContext) theCartTotalIs(total int) error {
	view, err := c.carts.GetCart(context.Background(), c.cartID)
	if err != nil {
		return err
	}
	if view.Total != int64(total) {
		return fmt.Errorf("expected total %d, got %d", total, view.Total)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutFailsWith(kind string) error {
	if c.err == nil {
		return fmt.Errorf("expected %s, checkout succeeded", kind)
	}
	if got := domain.KindOf(c.err).String(); got != kind {
		return fmt.Errorf("expected %s, got %s (%v)", kind, got, c.err)
	}
	return nil
}

func (c *checkoutTestContext) noReceiptWasProduced() error {
	if len(c.renderer.requests) > 0 || len(c.sharer.shared) > 0 {
		return fmt.Errorf("a receipt was produced")
	}
	return nil
}

func (c *checkoutTestContext) nothingWasRecorded() error {
	if c.err != nil || c.result != nil {
		return fmt.Errorf("expected a no-op, got result %v and error %v", c.result, c.err)
	}
	if n := c.txRepo.count(); n != 0 {
		return fmt.Errorf("expected no transactions, found %d", n)
	}
	return nil
}

func (c *checkoutTestContext) salesOnConsecutiveDays(days int) error {
	first := time.Date(fixedNow.Year(), fixedNow.Month(), fixedNow.Day(), 10, 0, 0, 0, fixedNow.Location()).AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		c.txRepo.txs = append(c.txRepo.txs, makeTx(fmt.Sprintf("t%d", i), "X", domain.PaymentCash, 1000, first.AddDate(0, 0, i)))
	}
	return nil
}

func (c *checkoutTestContext) monthlySalesThroughThisMonth() error {
	c.txRepo.txs = append(c.txRepo.txs, monthlySales()...)
	return nil
}

func (c *checkoutTestContext) iChartThe(period string) error {
	r, err := domain.ParseDateRange(strings.ToUpper(period), domain.RangeWeek)
	if err != nil {
		return err
	}
	uc := NewAnalyticsUseCase(c.txRepo, fixedNow.Location(), quietLogger()).(*analyticsUseCase)
	uc.now = func() time.Time { return fixedNow }
	c.series = uc.Analytics(context.Background(), r).Series
	return nil
}

func (c *checkoutTestContext) iBucketTheSalesForTheWeek() error {
	c.series = Bucket(c.txRepo.txs, domain.RangeWeek)
	return nil
}

func (c *checkoutTestContext) theChartHasPoints(n int) error {
	if len(c.series) != n {
		return fmt.Errorf("expected %d points, got %d", n, len(c.series))
	}
	return nil
}

func (c *checkoutTestContext) theLastPointIsWorthThousand(label string, value int) error {
	if len(c.series) == 0 {
		return fmt.Errorf("expected points, got none")
	}
	last := c.series[len(c.series)-1]
	if last.Label != label || !last.Value.Equal(decimal.NewFromInt(int64(value))) {
		return fmt.Errorf("expected last point %s=%d, got %s=%s", label, value, last.Label, last.Value)
	}
	return nil
}

func (c *checkoutTestContext) theChartHasPointsEndingAtTheLatestDay(n int) error {
	if len(c.series) != n {
		return fmt.Errorf("expected %d points, got %d", n, len(c.series))
	}
	if last := c.series[len(c.series)-1].Label; last != fixedNow.Format("02/01") {
		return fmt.Errorf("expected last label %s, got %s", fixedNow.Format("02/01"), last)
	}
	return nil
}

func (c *checkoutTestContext) theChartHasASingleEmptyPoint() error {
	if len(c.series) != 1 || c.series[0].Label != "" || !c.series[0].Value.IsZero() {
		return fmt.Errorf("expected one empty point, got %v", c.series)
	}
	return nil
}

func (c *checkoutTestContext) recordedSalesFor(a, b, d, e string) error {
	for i, name := range []string{a, b, d, e} {
		c.txRepo.txs = append(c.txRepo.txs, makeTx(fmt.Sprintf("t%d", i), name, domain.PaymentCash, 1000, fixedNow.Add(-time.Hour)))
	}
	return nil
}

func (c *checkoutTestContext) iSearchHistoryFor(query string) error {
	uc := newHistory(c.txRepo)
	c.matches = len(uc.History(context.Background(), domain.RangeYear, query).Transactions)
	return nil
}

func (c *checkoutTestContext) transactionsMatch(n int) error {
	if c.matches != n {
		return fmt.Errorf("expected %d matches, got %d", n, c.matches)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^the catalog has "([^"]*)" priced (\d+)$`, tc.theCatalogHasPriced)
	ctx.Step(`^an open cart$`, tc.anOpenCart)
	ctx.Step(`^the transaction store is unavailable$`, tc.theTransactionStoreIsUnavailable)
	ctx.Step(`^sales on (\d+) consecutive days$`, tc.salesOnConsecutiveDays)
	ctx.Step(`^monthly sales through this month$`, tc.monthlySalesThroughThisMonth)
	ctx.Step(`^recorded sales for "([^"]*)", "([^"]*)", "([^"]*)" and "([^"]*)"$`, tc.recordedSalesFor)

	ctx.Step(`^I add "([^"]*)" (\d+) times$`, tc.iAddTimes)
	ctx.Step(`^I remove "([^"]*)"$`, tc.iRemove)
	ctx.Step(`^I check out paying "([^"]*)"$`, tc.iCheckOutPaying)
	ctx.Step(`^I chart the (week|month|year)$`, tc.iChartThe)
	ctx.Step(`^I bucket the sales for the week$`, tc.iBucketTheSalesForTheWeek)
	ctx.Step(`^I search history for "([^"]*)"$`, tc.iSearchHistoryFor)

	ctx.Step(`^the checkout succeeds$`, tc.theCheckoutSucceeds)
	ctx.Step(`^the transaction total is (\d+) paid by "([^"]*)"$`, tc.theTransactionTotalIsPaidBy)
	ctx.Step(`^the receipt total line reads "([^"]*)"$`, tc.theReceiptTotalLineReads)
	ctx.Step(`^the cart has (\d+) lines$`, tc.theCartHasLines)
	ctx.Step(`^the cart total is (\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^the checkout fails with "([^"]*)"$`, tc.theCheckoutFailsWith)
	ctx.Step(`^no receipt was produced$`, tc.noReceiptWasProduced)
	ctx.Step(`^nothing was recorded$`, tc.nothingWasRecorded)
	ctx.Step(`^the chart has (\d+) points ending at the latest day$`, tc.theChartHasPointsEndingAtTheLatestDay)
	ctx.Step(`^the chart has (\d+) points$`, tc.theChartHasPoints)
	ctx.Step(`^the last point is "([^"]*)" worth (\d+) thousand$`, tc.theLastPointIsWorthThousand)
	ctx.Step(`^the chart has a single empty point$`, tc.theChartHasASingleEmptyPoint)
	ctx.Step(`^(\d+) transactions match$`, tc.transactionsMatch)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
