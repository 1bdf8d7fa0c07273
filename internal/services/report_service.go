package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Report range presets.
const (
	RangeToday      = "today"
	RangeLast7Days  = "last_7_days"
	RangeLast30Days = "last_30_days"
	RangeThisMonth  = "this_month"
	RangeCustom     = "custom"
)

const dayLayout = "2006-01-02"

// ResolveRange turns a preset into created_at bounds relative to now. A
// custom range takes start and end as YYYY-MM-DD and covers both days fully.
// Day boundaries are taken in now's location.
func ResolveRange(preset, start, end string, now time.Time) (TimeRange, error) {
	loc := now.Location()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch preset {
	case RangeToday:
		return TimeRange{From: midnight, To: now}, nil
	case RangeLast7Days, "":
		return TimeRange{From: midnight.AddDate(0, 0, -7), To: now}, nil
	case RangeLast30Days:
		return TimeRange{From: midnight.AddDate(0, 0, -30), To: now}, nil
	case RangeThisMonth:
		return TimeRange{From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc), To: now}, nil
	case RangeCustom:
		from, err := time.ParseInLocation(dayLayout, start, loc)
		if err != nil {
			return TimeRange{}, invalid("start", "expected YYYY-MM-DD")
		}
		to, err := time.ParseInLocation(dayLayout, end, loc)
		if err != nil {
			return TimeRange{}, invalid("end", "expected YYYY-MM-DD")
		}
		if to.Before(from) {
			return TimeRange{}, invalid("end", "must not be before start")
		}
		return TimeRange{From: from, To: to.AddDate(0, 0, 1).Add(-time.Nanosecond)}, nil
	default:
		return TimeRange{}, invalid("range", "must be one of today, last_7_days, last_30_days, this_month, custom")
	}
}

// SalesReport summarizes the orders and new customers of a period.
type SalesReport struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	TotalOrders  int             `json:"total_orders"`
	NewCustomers int             `json:"new_customers"`
	TopProducts  []ProductSales  `json:"top_products"`
	SalesByDay   []DaySales      `json:"sales_by_day"`
}

// ProductSales is the number of units of one product sold in the period.
type ProductSales struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Quantity  int       `json:"quantity"`
}

// DaySales is the order total of one calendar day.
type DaySales struct {
	Date  string          `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}

const topProductsLimit = 5

// ReportService aggregates sales figures from stored orders and customers.
type ReportService struct {
	store Store
}

// NewReportService constructs ReportService.
func NewReportService(store Store) *ReportService {
	return &ReportService{store: store}
}

// Summary reports every order created in r regardless of status, matching
// what the order list shows for the same period. Days are bucketed in the
// location of r.From.
func (s *ReportService) Summary(ctx context.Context, r TimeRange) (*SalesReport, error) {
	orders, _, err := s.store.ListOrders(ctx, OrderFilter{Created: r})
	if err != nil {
		return nil, err
	}
	_, newCustomers, err := s.store.ListCustomers(ctx, CustomerFilter{Created: r, Limit: 1})
	if err != nil {
		return nil, err
	}

	loc := r.From.Location()
	report := &SalesReport{
		From:         r.From,
		To:           r.To,
		TotalSales:   decimal.Zero,
		TotalOrders:  len(orders),
		NewCustomers: int(newCustomers),
		TopProducts:  []ProductSales{},
		SalesByDay:   []DaySales{},
	}

	units := make(map[uuid.UUID]*ProductSales)
	days := make(map[string]decimal.Decimal)
	for _, order := range orders {
		report.TotalSales = report.TotalSales.Add(order.TotalAmount)
		day := order.CreatedAt.In(loc).Format(dayLayout)
		days[day] = days[day].Add(order.TotalAmount)

		for _, item := range order.Items {
			sold, ok := units[item.ProductID]
			if !ok {
				sold = &ProductSales{ProductID: item.ProductID, Name: item.Name}
				units[item.ProductID] = sold
			}
			sold.Quantity += item.Quantity
		}
	}

	for _, sold := range units {
		report.TopProducts = append(report.TopProducts, *sold)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	if len(report.TopProducts) > topProductsLimit {
		report.TopProducts = report.TopProducts[:topProductsLimit]
	}
	for i := range report.TopProducts {
		top := &report.TopProducts[i]
		product, err := s.store.GetProduct(ctx, top.ProductID)
		if errors.Is(err, ErrNotFound) {
			// deleted products keep the name they were sold under
			continue
		}
		if err != nil {
			return nil, err
		}
		top.Name = product.Name
		top.Image = firstImage(product.Images)
		if top.Image == "" && len(product.Variations) > 0 {
			top.Image = firstImage(product.Variations[0].Images)
		}
	}

	for day, sales := range days {
		report.SalesByDay = append(report.SalesByDay, DaySales{Date: day, Sales: sales})
	}
	sort.Slice(report.SalesByDay, func(i, j int) bool {
		return report.SalesByDay[i].Date < report.SalesByDay[j].Date
	})
	return report, nil
}

func firstImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[0]
}
