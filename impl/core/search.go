package core

import (
	"strconv"
	"time"

	"easyorders/entity"
	"easyorders/internal/lib/sanitize"
)

var searchFields = []string{
	"billing_first_name",
	"billing_last_name",
	"billing_email",
	"billing_company",
	"_billing_first_name",
	"_billing_last_name",
	"_billing_email",
	"_billing_company",
}

// buildQuery translates a normalized filter into a host order query.
func (c *Core) buildQuery(filter *entity.OrderFilter) *entity.OrderQuery {
	q := &entity.OrderQuery{
		Limit:    filter.PageSize,
		Page:     filter.Page,
		OrderBy:  filter.SortField,
		Order:    filter.SortDirection,
		Statuses: append([]string(nil), filter.Statuses...),
		Type:     entity.OrderTypePurchase,
		Search:   filter.Search,
		Return:   entity.ReturnObjects,
	}

	if filter.DateFrom != "" {
		if from, err := time.ParseInLocation(entity.DateLayout, filter.DateFrom, c.loc); err == nil {
			q.DateAfter = &from
		}
	}
	if filter.DateTo != "" {
		if to, err := time.ParseInLocation(entity.DateLayout, filter.DateTo, c.loc); err == nil {
			end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, c.loc)
			q.DateBefore = &end
		}
	}

	if q.Search != "" {
		widenSearch(q)
	}
	return q
}

// widenSearch replaces the plain text search with a group matching billing
// fields, the order number and, for numeric terms, the order id.
func widenSearch(q *entity.OrderQuery) {
	term := q.Search
	q.Search = ""

	group := &entity.ConditionGroup{Relation: entity.RelationOr}
	for _, field := range searchFields {
		group.Clauses = append(group.Clauses, entity.Clause{
			Key:     field,
			Value:   term,
			Compare: entity.CompareLike,
		})
	}
	group.Clauses = append(group.Clauses, entity.Clause{
		Key:     "_order_number",
		Value:   term,
		Compare: entity.CompareEqual,
	})
	if sanitize.IsNumeric(term) {
		if id, err := strconv.ParseInt(term, 10, 64); err == nil {
			group.IDs = []int64{id}
		}
	}

	q.AndConditions(group)
}

// countQuery is q without pagination, returning ids only.
func countQuery(q *entity.OrderQuery) *entity.OrderQuery {
	count := *q
	count.Limit = -1
	count.Page = 1
	count.Return = entity.ReturnIDs
	return &count
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func scalarText(v interface{}) string {
	return sanitize.String(v)
}
