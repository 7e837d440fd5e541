package entity

import (
	"reflect"
	"testing"
)

func TestOrderFilter_Normalize(t *testing.T) {
	allowed := []string{StatusOnHold, StatusProcessing, StatusCompleted}

	tests := []struct {
		name   string
		filter OrderFilter
		want   OrderFilter
	}{
		{
			name:   "zero value gets defaults",
			filter: OrderFilter{},
			want: OrderFilter{
				Page: 1, PageSize: 20, SortField: SortByDate, SortDirection: SortDesc,
				Statuses: allowed,
			},
		},
		{
			name: "bad values coerced",
			filter: OrderFilter{
				Page: -3, PageSize: 0, SortField: "password", SortDirection: "sideways",
				Statuses: []string{"trash", "wc-completed"}, DateFrom: "31/12/2024", DateTo: "2024-02-30",
				Search: "  kowalski ",
			},
			want: OrderFilter{
				Page: 1, PageSize: 20, SortField: SortByDate, SortDirection: SortDesc,
				Statuses: []string{StatusCompleted}, Search: "kowalski",
			},
		},
		{
			name: "valid values kept",
			filter: OrderFilter{
				Page: 3, PageSize: 50, SortField: "Total", SortDirection: "asc",
				Statuses: []string{StatusProcessing}, DateFrom: "2024-01-01", DateTo: "2024-01-31",
			},
			want: OrderFilter{
				Page: 3, PageSize: 50, SortField: SortByTotal, SortDirection: SortAsc,
				Statuses: []string{StatusProcessing}, DateFrom: "2024-01-01", DateTo: "2024-01-31",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.filter
			f.Normalize(allowed, 20)
			if !reflect.DeepEqual(f, tt.want) {
				t.Errorf("Normalize() = %+v, want %+v", f, tt.want)
			}
		})
	}
}

func TestOrderFilter_Offset(t *testing.T) {
	f := OrderFilter{Page: 3, PageSize: 20}
	if got := f.Offset(); got != 40 {
		t.Errorf("Offset() = %d, want 40", got)
	}
}

func TestOrderQuery_AndConditions(t *testing.T) {
	search := &ConditionGroup{Relation: RelationOr, Clauses: []Clause{{Key: "billing_email", Value: "a", Compare: CompareLike}}}

	q := &OrderQuery{}
	q.AndConditions(search)
	if q.Conditions != search {
		t.Fatal("first group should be attached as is")
	}

	existing := &ConditionGroup{Relation: RelationAnd, Clauses: []Clause{{Key: "_channel", Value: "pos", Compare: CompareEqual}}}
	q = &OrderQuery{Conditions: existing}
	q.AndConditions(search)
	if q.Conditions.Relation != RelationAnd || len(q.Conditions.Groups) != 2 {
		t.Fatalf("Conditions = %+v", q.Conditions)
	}
	if q.Conditions.Groups[0] != existing || q.Conditions.Groups[1] != search {
		t.Error("groups should keep existing first and new second")
	}

	q.AndConditions(&ConditionGroup{Relation: RelationOr})
	if len(q.Conditions.Groups) != 2 {
		t.Error("empty group must not be attached")
	}
}
