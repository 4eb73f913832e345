package workers

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	orderApp "github.com/felixgeelhaar/shopcore/internal/orders/application"
	orderDomain "github.com/felixgeelhaar/shopcore/internal/orders/domain"
)

// DailyReport summarizes the orders created in a time window.
type DailyReport struct {
	From     time.Time
	To       time.Time
	Total    int
	ByStatus map[string]int
	// Revenue sums confirmed order totals per currency.
	Revenue map[string]decimal.Decimal
}

// BuildDailyReport aggregates orders into a report for [from, to).
func BuildDailyReport(from, to time.Time, orders []orderApp.OrderDTO) (DailyReport, error) {
	report := DailyReport{
		From:     from,
		To:       to,
		Total:    len(orders),
		ByStatus: make(map[string]int),
		Revenue:  make(map[string]decimal.Decimal),
	}

	for _, o := range orders {
		report.ByStatus[o.Status]++
		if o.Status != orderDomain.StatusConfirmed.String() {
			continue
		}
		amount, err := decimal.NewFromString(o.TotalAmount)
		if err != nil {
			return DailyReport{}, fmt.Errorf("order %s has invalid total %q: %w", o.ID, o.TotalAmount, err)
		}
		report.Revenue[o.Currency] = report.Revenue[o.Currency].Add(amount)
	}

	return report, nil
}

// LogAttrs flattens the report into slog key/value pairs.
func (r DailyReport) LogAttrs() []any {
	attrs := []any{
		"from", r.From.Format(time.RFC3339),
		"to", r.To.Format(time.RFC3339),
		"total_orders", r.Total,
	}
	for _, status := range sortedKeys(r.ByStatus) {
		attrs = append(attrs, "status_"+status, r.ByStatus[status])
	}
	for _, currency := range sortedKeys(r.Revenue) {
		attrs = append(attrs, "revenue_"+currency, r.Revenue[currency].StringFixed(2))
	}
	return attrs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
