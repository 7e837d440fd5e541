package core

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"easyorders/entity"

	"github.com/shopspring/decimal"
)

func purchase(id int64, status string) *entity.Order {
	return &entity.Order{
		ID:               id,
		Type:             entity.OrderTypePurchase,
		Status:           status,
		Created:          time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		BillingFirstName: "Jan",
		BillingLastName:  "Kowalski",
		BillingEmail:     "jan@example.com",
		Total:            decimal.RequireFromString("123.4"),
		Currency:         "PLN",
		Shipping: entity.Address{
			FirstName: "Jan",
			LastName:  "Kowalski",
			Address1:  "Prosta 1",
			City:      "Warszawa",
			Postcode:  "00-001",
			Country:   "PL",
		},
		PaymentMethodTitle: "Bank transfer",
		Meta: map[string][]string{
			"gift_note": {`["wrap","card"]`},
		},
	}
}

func TestGetOrdersNumericSearch(t *testing.T) {
	env := newTestEnv(testConfig(), purchase(123, entity.StatusProcessing))

	orders, err := env.core.GetOrders(context.Background(), admin, entity.OrderFilter{
		Search:   "123",
		Statuses: []string{entity.StatusCompleted},
	})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != 123 {
		t.Fatalf("orders = %+v, want only #123", orders)
	}
	if len(env.orders.queries) != 0 {
		t.Errorf("direct lookup issued %d queries", len(env.orders.queries))
	}

	total, err := env.core.GetTotalOrders(context.Background(), admin, entity.OrderFilter{Search: "123"})
	if err != nil {
		t.Fatalf("GetTotalOrders: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestGetOrdersNumericSearchFallsThrough(t *testing.T) {
	refund := purchase(7, entity.StatusRefunded)
	refund.Type = entity.OrderTypeRefund
	env := newTestEnv(testConfig(), refund)

	for _, search := range []string{"7", "999"} {
		env.orders.queries = nil
		if _, err := env.core.GetOrders(context.Background(), admin, entity.OrderFilter{Search: search}); err != nil {
			t.Fatalf("GetOrders(%q): %v", search, err)
		}
		if len(env.orders.queries) != 1 {
			t.Fatalf("search %q: expected a query, got %d", search, len(env.orders.queries))
		}
		q := env.orders.queries[0]
		if q.Conditions == nil || len(q.Conditions.IDs) != 1 || formatID(q.Conditions.IDs[0]) != search {
			t.Errorf("search %q: ids = %+v", search, q.Conditions)
		}
	}
}

func TestGetOrdersStoreError(t *testing.T) {
	env := newTestEnv(testConfig())
	env.orders.getErr = errors.New("connection lost")

	if _, err := env.core.GetOrders(context.Background(), admin, entity.OrderFilter{Search: "5"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetOrdersTextSearch(t *testing.T) {
	env := newTestEnv(testConfig())

	_, err := env.core.GetOrders(context.Background(), shop, entity.OrderFilter{
		Search:   " kowalski ",
		Statuses: []string{"wc-processing", "bogus"},
		DateFrom: "2025-03-01",
		DateTo:   "2025-03-31",
		PageSize: 10,
		Page:     2,
	})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(env.orders.queries) != 1 {
		t.Fatalf("queries = %d, want 1", len(env.orders.queries))
	}
	q := env.orders.queries[0]

	if q.Search != "" {
		t.Errorf("plain search = %q, want cleared", q.Search)
	}
	if q.Type != entity.OrderTypePurchase {
		t.Errorf("type = %q", q.Type)
	}
	if len(q.Statuses) != 1 || q.Statuses[0] != entity.StatusProcessing {
		t.Errorf("statuses = %v", q.Statuses)
	}
	if q.Limit != 10 || q.Page != 2 {
		t.Errorf("limit/page = %d/%d", q.Limit, q.Page)
	}
	wantFrom := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	if q.DateAfter == nil || !q.DateAfter.Equal(wantFrom) {
		t.Errorf("date after = %v, want %v", q.DateAfter, wantFrom)
	}
	if q.DateBefore == nil || !q.DateBefore.Equal(wantTo) {
		t.Errorf("date before = %v, want %v", q.DateBefore, wantTo)
	}

	g := q.Conditions
	if g == nil || g.Relation != entity.RelationOr {
		t.Fatalf("conditions = %+v, want OR group", g)
	}
	if len(g.IDs) != 0 {
		t.Errorf("ids = %v, want none for text search", g.IDs)
	}
	keys := map[string]entity.Compare{}
	for _, cl := range g.Clauses {
		if cl.Value != "kowalski" {
			t.Errorf("clause %s value = %q", cl.Key, cl.Value)
		}
		keys[cl.Key] = cl.Compare
	}
	for _, field := range searchFields {
		if keys[field] != entity.CompareLike {
			t.Errorf("field %s compare = %q, want LIKE", field, keys[field])
		}
	}
	if keys["_order_number"] != entity.CompareEqual {
		t.Errorf("_order_number compare = %q, want =", keys["_order_number"])
	}
}

func TestSearchAndsExistingConditions(t *testing.T) {
	existing := &entity.ConditionGroup{
		Relation: entity.RelationAnd,
		Clauses:  []entity.Clause{{Key: "_channel", Value: "web", Compare: entity.CompareEqual}},
	}
	q := &entity.OrderQuery{Search: "anna", Conditions: existing}
	widenSearch(q)

	if q.Conditions.Relation != entity.RelationAnd || len(q.Conditions.Groups) != 2 {
		t.Fatalf("conditions = %+v, want AND of two groups", q.Conditions)
	}
	if q.Conditions.Groups[0] != existing {
		t.Error("existing group not kept first")
	}
	if q.Conditions.Groups[1].Relation != entity.RelationOr {
		t.Error("search group is not OR")
	}
}

func TestGetTotalOrdersCountQuery(t *testing.T) {
	env := newTestEnv(testConfig())
	env.orders.ids = []int64{4, 5, 6}

	total, err := env.core.GetTotalOrders(context.Background(), admin, entity.OrderFilter{Page: 3})
	if err != nil {
		t.Fatalf("GetTotalOrders: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	q := env.orders.queries[0]
	if q.Limit != -1 || q.Return != entity.ReturnIDs {
		t.Errorf("count query limit=%d return=%s", q.Limit, q.Return)
	}
}

func TestOrdersWithoutCapability(t *testing.T) {
	env := newTestEnv(testConfig(), purchase(1, entity.StatusProcessing))

	for _, actor := range []*entity.UserAuth{guest, buyer} {
		orders, err := env.core.GetOrders(context.Background(), actor, entity.OrderFilter{})
		if err != nil || len(orders) != 0 {
			t.Errorf("GetOrders(%s) = %v, %v", actor.Login, orders, err)
		}
		total, err := env.core.GetTotalOrders(context.Background(), actor, entity.OrderFilter{})
		if err != nil || total != 0 {
			t.Errorf("GetTotalOrders(%s) = %d, %v", actor.Login, total, err)
		}
	}
	if len(env.orders.queries) != 0 {
		t.Errorf("store queried %d times", len(env.orders.queries))
	}
}

func TestListOrdersRendersRows(t *testing.T) {
	env := newTestEnv(testConfig())
	env.orders.result = []*entity.Order{purchase(42, entity.StatusOnHold)}
	env.orders.ids = []int64{42}
	env.options.values[entity.SettingsOptionKey] = `{"order_columns":{"order_number":true,"order_date":true,"order_status":true,"order_total":true,"shipping_address":true,"payment_method":true,"field_gift_note":true,"customer_name":false},"orders_per_page":20,"status_labels":{"on-hold":"Waiting"}}`

	page, err := env.core.ListOrders(context.Background(), admin, entity.OrderFilter{})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if page.Total != 1 || page.TotalPages != 1 || page.Page != 1 || page.PerPage != 20 {
		t.Errorf("page = %d/%d/%d/%d", page.Total, page.TotalPages, page.Page, page.PerPage)
	}
	if page.Nonce != "nonce-"+entity.ActionUpdateStatus {
		t.Errorf("nonce = %q", page.Nonce)
	}
	if len(page.Columns) != 7 || page.Columns[6].Label != "Gift Note" {
		t.Fatalf("columns = %+v", page.Columns)
	}

	cells := page.Rows[0].Cells
	want := map[string]string{
		entity.ColumnOrderNumber:     "#42",
		entity.ColumnOrderDate:       "14.03.2025",
		entity.ColumnOrderStatus:     "Waiting",
		entity.ColumnOrderTotal:      "123.40 PLN",
		entity.ColumnShippingAddress: "Jan Kowalski, Prosta 1, Warszawa, 00-001, Poland",
		entity.ColumnPaymentMethod:   "Bank transfer",
		"field_gift_note":            "wrap, card",
	}
	for key, v := range want {
		if cells[key] != v {
			t.Errorf("cell %s = %q, want %q", key, cells[key], v)
		}
	}
	if _, ok := cells[entity.ColumnCustomerName]; ok {
		t.Error("disabled column rendered")
	}
	if page.Labels[entity.StatusOnHold] != "Waiting" || page.Labels[entity.StatusCompleted] != "Completed" {
		t.Errorf("labels = %v", page.Labels)
	}
}

func TestJoinMeta(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"nil", nil, ""},
		{"single", []string{"a"}, "a"},
		{"multiple", []string{"a", "", "b"}, "a, b"},
		{"json array", []string{`["x", 2]`}, "x, 2"},
		{"broken json kept", []string{"[x"}, "[x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinMeta(tt.values); got != tt.want {
				t.Errorf("joinMeta() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDateWindowAcrossClockChanges(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Fatal(err)
	}
	conf := testConfig()
	conf.Location = "Europe/Warsaw"

	tests := []struct {
		name string
		day  string
	}{
		{"ordinary day", "2025-03-14"},
		{"clocks go forward", "2025-03-30"},
		{"clocks go back", "2025-10-26"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(conf)
			_, err := env.core.GetOrders(context.Background(), admin, entity.OrderFilter{
				DateFrom: tt.day,
				DateTo:   tt.day,
			})
			if err != nil {
				t.Fatalf("GetOrders: %v", err)
			}
			q := env.orders.queries[0]

			day, _ := time.ParseInLocation(entity.DateLayout, tt.day, warsaw)
			wantFrom := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, warsaw)
			wantTo := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, warsaw)
			if q.DateAfter == nil || !q.DateAfter.Equal(wantFrom) {
				t.Errorf("date after = %v, want %v", q.DateAfter, wantFrom)
			}
			if q.DateBefore == nil || !q.DateBefore.Equal(wantTo) {
				t.Errorf("date before = %v, want %v", q.DateBefore, wantTo)
			}
			if got := q.DateBefore.In(warsaw).Format("2006-01-02 15:04:05"); got != tt.day+" 23:59:59" {
				t.Errorf("window ends at %s", got)
			}
		})
	}
}
