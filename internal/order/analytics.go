package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyBreakdownDays is the length of Analytics.DailyOrders.
const DailyBreakdownDays = 30

const dateLayout = "2006-01-02"

type DailyStat struct {
	Date      string          `json:"date"`
	Orders    int             `json:"orders"`
	Delivered int             `json:"delivered"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type StatusCount struct {
	Status OrderStatus `json:"status"`
	Name   string      `json:"name"`
	Value  int         `json:"value"`
}

// Analytics is recomputed from the full order set on every request.
type Analytics struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	Processing int `json:"processing"`
	Delivered  int `json:"delivered"`
	Cancelled  int `json:"cancelled"`

	TodayOrders int `json:"today_orders"`
	WeekOrders  int `json:"week_orders"`
	MonthOrders int `json:"month_orders"`

	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TodayRevenue decimal.Decimal `json:"today_revenue"`
	WeekRevenue  decimal.Decimal `json:"week_revenue"`
	MonthRevenue decimal.Decimal `json:"month_revenue"`

	ConversionRate   float64 `json:"conversion_rate"`
	CancellationRate float64 `json:"cancellation_rate"`

	DailyOrders        []DailyStat   `json:"daily_orders"`
	StatusDistribution []StatusCount `json:"status_distribution"`
}

// ComputeAnalytics aggregates orders relative to now. "Today" and "this month"
// start at local calendar boundaries in loc, "this week" is the trailing 7x24h.
func ComputeAnalytics(orders []Order, now time.Time, loc *time.Location, unitPrice decimal.Decimal) Analytics {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	weekStart := now.Add(-7 * 24 * time.Hour)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	var a Analytics
	var todayDelivered, weekDelivered, monthDelivered int
	a.Total = len(orders)

	for _, o := range orders {
		delivered := o.Status == StatusDelivered

		switch o.Status {
		case StatusNew:
			a.New++
		case StatusProcessing:
			a.Processing++
		case StatusDelivered:
			a.Delivered++
		case StatusCancelled:
			a.Cancelled++
		}

		if !o.CreatedAt.Before(todayStart) {
			a.TodayOrders++
			if delivered {
				todayDelivered++
			}
		}
		if !o.CreatedAt.Before(weekStart) {
			a.WeekOrders++
			if delivered {
				weekDelivered++
			}
		}
		if !o.CreatedAt.Before(monthStart) {
			a.MonthOrders++
			if delivered {
				monthDelivered++
			}
		}
	}

	a.TotalRevenue = revenue(a.Delivered, unitPrice)
	a.TodayRevenue = revenue(todayDelivered, unitPrice)
	a.WeekRevenue = revenue(weekDelivered, unitPrice)
	a.MonthRevenue = revenue(monthDelivered, unitPrice)

	a.ConversionRate, a.CancellationRate = rates(a.Delivered, a.Cancelled, a.Total)

	a.DailyOrders = dailyBreakdown(orders, todayStart, loc, unitPrice)

	a.StatusDistribution = []StatusCount{
		{Status: StatusNew, Name: StatusNew.Label(), Value: a.New},
		{Status: StatusProcessing, Name: StatusProcessing.Label(), Value: a.Processing},
		{Status: StatusDelivered, Name: StatusDelivered.Label(), Value: a.Delivered},
		{Status: StatusCancelled, Name: StatusCancelled.Label(), Value: a.Cancelled},
	}

	return a
}

func dailyBreakdown(orders []Order, todayStart time.Time, loc *time.Location, unitPrice decimal.Decimal) []DailyStat {
	days := make([]DailyStat, DailyBreakdownDays)
	index := make(map[string]int, DailyBreakdownDays)

	for i := 0; i < DailyBreakdownDays; i++ {
		day := todayStart.AddDate(0, 0, i-(DailyBreakdownDays-1))
		key := day.Format(dateLayout)
		days[i] = DailyStat{Date: key, Revenue: decimal.Zero}
		index[key] = i
	}

	for _, o := range orders {
		i, ok := index[o.CreatedAt.In(loc).Format(dateLayout)]
		if !ok {
			continue
		}
		days[i].Orders++
		if o.Status == StatusDelivered {
			days[i].Delivered++
		}
	}

	for i := range days {
		days[i].Revenue = revenue(days[i].Delivered, unitPrice)
	}

	return days
}

func revenue(delivered int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(delivered)))
}

// rates returns the conversion and cancellation percentages rounded to one
// decimal. Their sum never exceeds 100: cancellation takes what rounding
// left after conversion.
func rates(delivered, cancelled, total int) (float64, float64) {
	conversion := percent(delivered, total)
	cancellation := percent(cancelled, total)
	if rest := decimal.NewFromInt(100).Sub(conversion); cancellation.GreaterThan(rest) {
		cancellation = rest
	}
	return conversion.InexactFloat64(), cancellation.InexactFloat64()
}

// percent returns part/total*100 rounded to one decimal, 0 for an empty total.
func percent(part, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 1)
}
