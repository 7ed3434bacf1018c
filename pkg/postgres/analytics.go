package postgres

import (
	"context"
	"time"

	"github.com/lumenshop/api/pkg/models"
)

type SalesPoint struct {
	Day       time.Time `json:"day"`
	Orders    int       `json:"orders"`
	Revenue   float64   `json:"revenue"`
	UnitsSold int       `json:"units_sold"`
}

type SalesSummary struct {
	From         time.Time    `json:"from"`
	To           time.Time    `json:"to"`
	TotalOrders  int          `json:"total_orders"`
	TotalRevenue float64      `json:"total_revenue"`
	Points       []SalesPoint `json:"points"`
}

// SalesAnalytics aggregates finalized revenue per day. Pending and
// cancelled orders never count toward revenue.
func (s *Store) SalesAnalytics(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date_trunc('day', o.created_at) AS day,
			COUNT(*),
			COALESCE(SUM(o.total_amount), 0),
			COALESCE(SUM((SELECT SUM(oi.quantity) FROM order_items oi WHERE oi.order_id = o.id)), 0)
		 FROM orders o
		 WHERE o.status IN ($1, $2, $3) AND o.created_at >= $4 AND o.created_at < $5
		 GROUP BY 1 ORDER BY 1`,
		models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusDelivered,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &SalesSummary{From: from, To: to}
	for rows.Next() {
		var p SalesPoint
		if err := rows.Scan(&p.Day, &p.Orders, &p.Revenue, &p.UnitsSold); err != nil {
			return nil, err
		}
		summary.Points = append(summary.Points, p)
		summary.TotalOrders += p.Orders
		summary.TotalRevenue += p.Revenue
	}
	return summary, rows.Err()
}

type TopProduct struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	UnitsSold int     `json:"units_sold"`
	Revenue   float64 `json:"revenue"`
}

func (s *Store) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT oi.product_id, oi.title,
			SUM(oi.quantity) AS units,
			SUM(oi.effective_price * oi.quantity) AS revenue
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 WHERE o.status IN ($1, $2, $3)
		 GROUP BY oi.product_id, oi.title
		 ORDER BY units DESC
		 LIMIT $4`,
		models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusDelivered,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []TopProduct
	for rows.Next() {
		var t TopProduct
		if err := rows.Scan(&t.ProductID, &t.Title, &t.UnitsSold, &t.Revenue); err != nil {
			return nil, err
		}
		top = append(top, t)
	}
	return top, rows.Err()
}
