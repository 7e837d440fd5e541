package entity

import (
	"net/http"

	"easyorders/internal/lib/validate"
)

// StatusUpdate is a request to move an order to another status.
type StatusUpdate struct {
	OrderID  int64  `json:"order_id" validate:"required,min=1"`
	Status   string `json:"status" validate:"required,max=32"`
	Nonce    string `json:"-"`
	RemoteIP string `json:"-"`
}

func (s *StatusUpdate) Bind(_ *http.Request) error {
	s.Status = PlainStatus(s.Status)
	return validate.Struct(s)
}

// StatusChange is the outcome of an applied transition, broadcast to live
// subscribers.
type StatusChange struct {
	OrderID     int64  `json:"order_id"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
	StatusLabel string `json:"status_label"`
	UserID      int64  `json:"user_id"`
	UserName    string `json:"user_name"`
	ChangedAt   string `json:"changed_at"`
}

// OrderRow is one rendered line of the orders table, cells keyed by column.
type OrderRow struct {
	ID     int64             `json:"id"`
	Status string            `json:"status"`
	Cells  map[string]string `json:"cells"`
}

// OrderPage is the orders page view model.
type OrderPage struct {
	Columns    []ColumnDef       `json:"columns"`
	Rows       []OrderRow        `json:"rows"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
	Statuses   []string          `json:"statuses"`
	Labels     map[string]string `json:"status_labels"`
	Nonce      string            `json:"nonce"`
}
