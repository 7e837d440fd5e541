package entity

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

const (
	SortByDate   = "date"
	SortByID     = "id"
	SortByTotal  = "total"
	SortByStatus = "status"

	SortAsc  = "ASC"
	SortDesc = "DESC"
)

var sortFields = map[string]bool{
	SortByDate:   true,
	SortByID:     true,
	SortByTotal:  true,
	SortByStatus: true,
}

// OrderFilter is the list request of the orders page.
type OrderFilter struct {
	Page          int      `json:"page"`
	PageSize      int      `json:"page_size"`
	SortField     string   `json:"sort_field"`
	SortDirection string   `json:"sort_direction"`
	Statuses      []string `json:"statuses"`
	Search        string   `json:"search"`
	DateFrom      string   `json:"date_from"`
	DateTo        string   `json:"date_to"`
}

// Normalize coerces every field into its valid range. allowed is the set of
// statuses the panel manages; an empty Statuses selects all of them.
func (f *OrderFilter) Normalize(allowed []string, defaultPageSize int) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultOrdersPerPage
	}

	f.SortField = strings.ToLower(strings.TrimSpace(f.SortField))
	if !sortFields[f.SortField] {
		f.SortField = SortByDate
	}
	f.SortDirection = strings.ToUpper(strings.TrimSpace(f.SortDirection))
	if f.SortDirection != SortAsc && f.SortDirection != SortDesc {
		f.SortDirection = SortDesc
	}

	permitted := make(map[string]bool, len(allowed))
	for _, s := range allowed {
		permitted[s] = true
	}
	statuses := make([]string, 0, len(f.Statuses))
	for _, s := range f.Statuses {
		s = PlainStatus(strings.TrimSpace(s))
		if permitted[s] {
			statuses = append(statuses, s)
		}
	}
	if len(statuses) == 0 {
		statuses = append(statuses, allowed...)
	}
	f.Statuses = statuses

	f.Search = strings.TrimSpace(f.Search)
	if _, err := time.Parse(DateLayout, f.DateFrom); err != nil {
		f.DateFrom = ""
	}
	if _, err := time.Parse(DateLayout, f.DateTo); err != nil {
		f.DateTo = ""
	}
}

// Offset is the number of rows skipped before the current page.
func (f *OrderFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
