package database

import (
	"fmt"
	"strings"

	"easyorders/entity"
)

const mysqlDateTime = "2006-01-02 15:04:05"

var orderByColumns = map[string]string{
	entity.SortByDate:   "o.date_created_gmt",
	entity.SortByID:     "o.id",
	entity.SortByTotal:  "o.total_amount",
	entity.SortByStatus: "o.status",
}

// addressFields maps order field keys onto the joined billing address row.
var addressFields = map[string]string{
	"billing_first_name": "b.first_name",
	"billing_last_name":  "b.last_name",
	"billing_company":    "b.company",
	"billing_email":      "o.billing_email",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// orderQuery renders an entity.OrderQuery as one SELECT over the orders table.
type orderQuery struct {
	prefix string
	where  []string
	args   []interface{}
}

func buildOrderQuery(prefix string, q *entity.OrderQuery) (string, []interface{}) {
	b := &orderQuery{prefix: prefix}
	b.build(q)

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT o.id FROM %swc_orders o", prefix)
	fmt.Fprintf(&sb, " LEFT JOIN %swc_order_addresses b ON b.order_id = o.id AND b.address_type = 'billing'", prefix)
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}

	column, ok := orderByColumns[q.OrderBy]
	if !ok {
		column = orderByColumns[entity.SortByDate]
	}
	direction := entity.SortDesc
	if strings.EqualFold(q.Order, entity.SortAsc) {
		direction = entity.SortAsc
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s, o.id %s", column, direction, direction)

	args := b.args
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.Limit, (page-1)*q.Limit)
	}
	return sb.String(), args
}

func (b *orderQuery) build(q *entity.OrderQuery) {
	if q.Type != "" {
		b.add("o.type = ?", string(q.Type))
	}
	if len(q.Statuses) > 0 {
		args := make([]interface{}, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			args = append(args, entity.StorageStatus(s))
		}
		b.add("o.status IN ("+placeholders(len(args))+")", args...)
	}
	if q.DateAfter != nil {
		b.add("o.date_created_gmt >= ?", q.DateAfter.UTC().Format(mysqlDateTime))
	}
	if q.DateBefore != nil {
		b.add("o.date_created_gmt <= ?", q.DateBefore.UTC().Format(mysqlDateTime))
	}
	if q.Search != "" {
		b.addGroup(&entity.ConditionGroup{
			Relation: entity.RelationOr,
			Clauses: []entity.Clause{
				{Key: "billing_first_name", Value: q.Search, Compare: entity.CompareLike},
				{Key: "billing_last_name", Value: q.Search, Compare: entity.CompareLike},
				{Key: "billing_email", Value: q.Search, Compare: entity.CompareLike},
			},
		})
	}
	if !q.Conditions.Empty() {
		b.addGroup(q.Conditions)
	}
}

func (b *orderQuery) add(cond string, args ...interface{}) {
	b.where = append(b.where, cond)
	b.args = append(b.args, args...)
}

func (b *orderQuery) addGroup(g *entity.ConditionGroup) {
	cond, args := b.group(g)
	if cond != "" {
		b.add(cond, args...)
	}
}

func (b *orderQuery) group(g *entity.ConditionGroup) (string, []interface{}) {
	if g.Empty() {
		return "", nil
	}
	var parts []string
	var args []interface{}
	for _, c := range g.Clauses {
		cond, a := b.clause(c)
		parts = append(parts, cond)
		args = append(args, a...)
	}
	for _, sub := range g.Groups {
		cond, a := b.group(sub)
		if cond == "" {
			continue
		}
		parts = append(parts, cond)
		args = append(args, a...)
	}
	if len(g.IDs) > 0 {
		parts = append(parts, "o.id IN ("+placeholders(len(g.IDs))+")")
		for _, id := range g.IDs {
			args = append(args, id)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	relation := " AND "
	if g.Relation == entity.RelationOr {
		relation = " OR "
	}
	return "(" + strings.Join(parts, relation) + ")", args
}

func (b *orderQuery) clause(c entity.Clause) (string, []interface{}) {
	value := c.Value
	op := "= ?"
	if c.Compare == entity.CompareLike {
		value = "%" + likeEscaper.Replace(strings.ToLower(c.Value)) + "%"
		op = "LIKE ?"
	}

	if column, ok := addressFields[c.Key]; ok {
		if c.Compare == entity.CompareLike {
			column = "LOWER(" + column + ")"
		}
		return column + " " + op, []interface{}{value}
	}

	metaValue := "m.meta_value"
	if c.Compare == entity.CompareLike {
		metaValue = "LOWER(m.meta_value)"
	}
	cond := fmt.Sprintf(
		"EXISTS (SELECT 1 FROM %swc_orders_meta m WHERE m.order_id = o.id AND m.meta_key = ? AND %s %s)",
		b.prefix, metaValue, op,
	)
	return cond, []interface{}{c.Key, value}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
