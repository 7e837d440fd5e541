package entity

import "time"

// LogEntry is one row of the activity log.
type LogEntry struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	OrderID   string    `json:"order_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

const LogActionStatusChanged = "status_changed"

type LogPage struct {
	Entries    []*LogEntry `json:"entries"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
}
