package finance

import (
	"fmt"
	"time"

	"github.com/theirongolddev/poupa/internal/api"
)

// PeriodStart returns the first day covered by period at now: the first of
// the month for "month", Monday of the current week for "week". "all" has
// no start.
func PeriodStart(period string, now time.Time) (time.Time, bool) {
	y, m, d := now.Date()
	switch period {
	case api.PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), true
	case api.PeriodWeek:
		wd := int(now.Weekday())
		if wd == 0 {
			wd = 7
		}
		return time.Date(y, m, d-wd+1, 0, 0, 0, 0, now.Location()), true
	default:
		return time.Time{}, false
	}
}

// Filter is what the transactions view lets the user pick.
type Filter struct {
	Type       string
	CategoryID int
	Period     string
}

// Query turns f into the API filter at now.
func (f Filter) Query(now time.Time) (api.TransactionFilter, error) {
	if f.Type != "" && !api.ValidType(f.Type) {
		return api.TransactionFilter{}, &ValidationError{Fields: map[string]string{
			"type": fmt.Sprintf("type must be income or expense, got %q", f.Type),
		}}
	}
	if f.Period != "" && !api.ValidPeriod(f.Period) {
		return api.TransactionFilter{}, &ValidationError{Fields: map[string]string{
			"period": fmt.Sprintf("period must be all, month or week, got %q", f.Period),
		}}
	}
	q := api.TransactionFilter{Type: f.Type, CategoryID: f.CategoryID}
	if start, ok := PeriodStart(f.Period, now); ok {
		q.StartDate = start.Format("2006-01-02")
	}
	return q, nil
}

// DailySeries sums amounts of type typ per calendar day from start through
// end inclusive. Labels are "dd/mm". Transactions with unparseable dates are
// skipped.
func DailySeries(txs []api.Transaction, typ string, start, end time.Time) ([]float64, []string) {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return nil, nil
	}
	days := int(end.Sub(start).Hours()/24) + 1

	values := make([]float64, days)
	labels := make([]string, days)
	for i := range labels {
		labels[i] = start.AddDate(0, 0, i).Format("02/01")
	}
	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}
		d, err := time.Parse("2006-01-02", tx.Date)
		if err != nil {
			continue
		}
		i := int(d.Sub(start).Hours() / 24)
		if i >= 0 && i < days {
			values[i] += tx.Amount
		}
	}
	return values, labels
}
