package database

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"easyorders/entity"
)

func TestBuildOrderQuery_Filters(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	after := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	before := time.Date(2024, 3, 31, 23, 59, 59, 0, loc)

	q := &entity.OrderQuery{
		Limit:      20,
		Page:       3,
		OrderBy:    entity.SortByTotal,
		Order:      "asc",
		Statuses:   []string{"processing", "wc-completed"},
		Type:       entity.OrderTypePurchase,
		DateAfter:  &after,
		DateBefore: &before,
	}

	query, args := buildOrderQuery("wp_", q)

	wantQuery := "SELECT o.id FROM wp_wc_orders o" +
		" LEFT JOIN wp_wc_order_addresses b ON b.order_id = o.id AND b.address_type = 'billing'" +
		" WHERE o.type = ? AND o.status IN (?,?) AND o.date_created_gmt >= ? AND o.date_created_gmt <= ?" +
		" ORDER BY o.total_amount ASC, o.id ASC LIMIT ? OFFSET ?"
	if query != wantQuery {
		t.Errorf("query =\n%s\nwant\n%s", query, wantQuery)
	}

	wantArgs := []interface{}{
		"shop_order", "wc-processing", "wc-completed",
		"2024-02-29 23:00:00", "2024-03-31 22:59:59",
		20, 40,
	}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}

func TestBuildOrderQuery_Unpaginated(t *testing.T) {
	query, args := buildOrderQuery("wp_", &entity.OrderQuery{Limit: -1, Return: entity.ReturnIDs, OrderBy: "bogus"})

	if strings.Contains(query, "LIMIT") {
		t.Errorf("unpaginated query has LIMIT: %s", query)
	}
	if strings.Contains(query, "WHERE") {
		t.Errorf("unexpected WHERE: %s", query)
	}
	if !strings.HasSuffix(query, "ORDER BY o.date_created_gmt DESC, o.id DESC") {
		t.Errorf("default ordering missing: %s", query)
	}
	if len(args) != 0 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildOrderQuery_SearchGroup(t *testing.T) {
	search := &entity.ConditionGroup{
		Relation: entity.RelationOr,
		Clauses: []entity.Clause{
			{Key: "billing_last_name", Value: "Nowak", Compare: entity.CompareLike},
			{Key: "_billing_email", Value: "50%_off", Compare: entity.CompareLike},
			{Key: "_order_number", Value: "A-17", Compare: entity.CompareEqual},
		},
		IDs: []int64{17},
	}
	q := &entity.OrderQuery{Statuses: []string{"on-hold"}}
	q.AndConditions(search)

	query, args := buildOrderQuery("wp_", q)

	wantWhere := " WHERE o.status IN (?) AND (LOWER(b.last_name) LIKE ?" +
		" OR EXISTS (SELECT 1 FROM wp_wc_orders_meta m WHERE m.order_id = o.id AND m.meta_key = ? AND LOWER(m.meta_value) LIKE ?)" +
		" OR EXISTS (SELECT 1 FROM wp_wc_orders_meta m WHERE m.order_id = o.id AND m.meta_key = ? AND m.meta_value = ?)" +
		" OR o.id IN (?))"
	if !strings.Contains(query, wantWhere) {
		t.Errorf("query =\n%s\nwant WHERE\n%s", query, wantWhere)
	}

	wantArgs := []interface{}{
		"wc-on-hold",
		"%nowak%",
		"_billing_email", `%50\%\_off%`,
		"_order_number", "A-17",
		int64(17),
	}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}

func TestBuildOrderQuery_NestedGroups(t *testing.T) {
	existing := &entity.ConditionGroup{
		Relation: entity.RelationAnd,
		Clauses:  []entity.Clause{{Key: "_created_via", Value: "checkout", Compare: entity.CompareEqual}},
	}
	q := &entity.OrderQuery{Conditions: existing}
	q.AndConditions(&entity.ConditionGroup{
		Relation: entity.RelationOr,
		Clauses:  []entity.Clause{{Key: "billing_email", Value: "x", Compare: entity.CompareLike}},
	})

	query, _ := buildOrderQuery("", q)
	want := "WHERE ((EXISTS (SELECT 1 FROM wc_orders_meta m WHERE m.order_id = o.id AND m.meta_key = ? AND m.meta_value = ?)) AND (LOWER(o.billing_email) LIKE ?))"
	if !strings.Contains(query, want) {
		t.Errorf("query =\n%s\nwant\n%s", query, want)
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(3); got != "?,?,?" {
		t.Errorf("placeholders(3) = %q", got)
	}
	if got := placeholders(0); got != "" {
		t.Errorf("placeholders(0) = %q", got)
	}
}
