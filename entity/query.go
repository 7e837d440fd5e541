package entity

import "time"

type Compare string

const (
	CompareLike  Compare = "LIKE"
	CompareEqual Compare = "="
)

type Relation string

const (
	RelationAnd Relation = "AND"
	RelationOr  Relation = "OR"
)

// Projection selects what a host query returns.
type Projection string

const (
	ReturnObjects Projection = "objects"
	ReturnIDs     Projection = "ids"
)

// Clause matches one order field or meta key.
type Clause struct {
	Key     string  `json:"key"`
	Value   string  `json:"value"`
	Compare Compare `json:"compare"`
}

// ConditionGroup is a tree of clauses joined by Relation. IDs, when set,
// adds an "order id in IDs" branch to the group.
type ConditionGroup struct {
	Relation Relation          `json:"relation"`
	Clauses  []Clause          `json:"clauses,omitempty"`
	Groups   []*ConditionGroup `json:"groups,omitempty"`
	IDs      []int64           `json:"ids,omitempty"`
}

func (g *ConditionGroup) Empty() bool {
	return g == nil || (len(g.Clauses) == 0 && len(g.Groups) == 0 && len(g.IDs) == 0)
}

// OrderQuery mirrors the parameters of the host order query. Limit -1 means
// no pagination.
type OrderQuery struct {
	Limit      int             `json:"limit"`
	Page       int             `json:"page"`
	OrderBy    string          `json:"orderby"`
	Order      string          `json:"order"`
	Statuses   []string        `json:"status"`
	Type       OrderType       `json:"type"`
	DateAfter  *time.Time      `json:"date_after,omitempty"`
	DateBefore *time.Time      `json:"date_before,omitempty"`
	Search     string          `json:"search,omitempty"`
	Conditions *ConditionGroup `json:"conditions,omitempty"`
	Return     Projection      `json:"return"`
}

// AndConditions attaches group to the query, ANDing it with any group
// already present.
func (q *OrderQuery) AndConditions(group *ConditionGroup) {
	if group.Empty() {
		return
	}
	if q.Conditions.Empty() {
		q.Conditions = group
		return
	}
	q.Conditions = &ConditionGroup{
		Relation: RelationAnd,
		Groups:   []*ConditionGroup{q.Conditions, group},
	}
}
