package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"easyorders/entity"

	"github.com/shopspring/decimal"
)

func (s *MySql) GetOrder(ctx context.Context, id int64) (*entity.Order, error) {
	stmt, err := s.stmtSelectOrder()
	if err != nil {
		return nil, err
	}

	var (
		order                                         entity.Order
		orderType, status, currency, email, payMethod sql.NullString
		total                                         decimal.NullDecimal
		created                                       sql.NullTime
	)
	err = stmt.QueryRowContext(ctx, id).Scan(
		&order.ID,
		&orderType,
		&status,
		&currency,
		&total,
		&email,
		&payMethod,
		&created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrOrderNotFound
		}
		return nil, fmt.Errorf("select order %d: %w", id, err)
	}

	order.Type = entity.OrderType(orderType.String)
	order.Status = entity.PlainStatus(status.String)
	order.Currency = currency.String
	order.BillingEmail = email.String
	order.PaymentMethodTitle = payMethod.String
	if total.Valid {
		order.Total = total.Decimal
	}
	if created.Valid {
		order.Created = created.Time.In(s.loc)
	}

	if err = s.addAddresses(ctx, &order); err != nil {
		return nil, fmt.Errorf("order %d addresses: %w", id, err)
	}
	if err = s.addMeta(ctx, &order); err != nil {
		return nil, fmt.Errorf("order %d meta: %w", id, err)
	}
	return &order, nil
}

func (s *MySql) addAddresses(ctx context.Context, order *entity.Order) error {
	stmt, err := s.stmtSelectOrderAddresses()
	if err != nil {
		return err
	}
	rows, err := stmt.QueryContext(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var kind string
		var a entity.Address
		if err = rows.Scan(
			&kind,
			&a.FirstName,
			&a.LastName,
			&a.Company,
			&a.Address1,
			&a.Address2,
			&a.City,
			&a.State,
			&a.Postcode,
			&a.Country,
		); err != nil {
			return err
		}
		switch kind {
		case "billing":
			order.BillingFirstName = a.FirstName
			order.BillingLastName = a.LastName
			order.BillingCompany = a.Company
		case "shipping":
			order.Shipping = a
		}
	}
	return rows.Err()
}

func (s *MySql) addMeta(ctx context.Context, order *entity.Order) error {
	stmt, err := s.stmtSelectOrderMeta()
	if err != nil {
		return err
	}
	rows, err := stmt.QueryContext(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	order.Meta = make(map[string][]string)
	for rows.Next() {
		var key, value string
		if err = rows.Scan(&key, &value); err != nil {
			return err
		}
		order.Meta[key] = append(order.Meta[key], value)
	}
	return rows.Err()
}

// QueryOrderIDs returns the ids matching q in query order.
func (s *MySql) QueryOrderIDs(ctx context.Context, q *entity.OrderQuery) ([]int64, error) {
	query, args := buildOrderQuery(s.prefix, q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var ids []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// QueryOrders loads the orders matching q. Orders deleted between the id
// lookup and the load are skipped.
func (s *MySql) QueryOrders(ctx context.Context, q *entity.OrderQuery) ([]*entity.Order, error) {
	ids, err := s.QueryOrderIDs(ctx, q)
	if err != nil {
		return nil, err
	}
	orders := make([]*entity.Order, 0, len(ids))
	for _, id := range ids {
		order, err := s.GetOrder(ctx, id)
		if err != nil {
			if errors.Is(err, entity.ErrOrderNotFound) {
				continue
			}
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// UpdateOrderStatus moves the order to status and records note as an order
// note, both in one transaction.
func (s *MySql) UpdateOrderStatus(ctx context.Context, id int64, status, note string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now()
	updateQuery := fmt.Sprintf("UPDATE %swc_orders SET status = ?, date_updated_gmt = ? WHERE id = ?", s.prefix)
	_, err = tx.ExecContext(ctx, updateQuery, entity.StorageStatus(status), now.UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if note != "" {
		rec := map[string]interface{}{
			"comment_post_ID":  id,
			"comment_author":   "WooCommerce",
			"comment_content":  note,
			"comment_type":     "order_note",
			"comment_approved": "1",
			"comment_agent":    "WooCommerce",
			"comment_date":     now.In(s.loc).Format(mysqlDateTime),
			"comment_date_gmt": now.UTC().Format(mysqlDateTime),
		}
		if _, err = s.insert(ctx, tx, "comments", rec); err != nil {
			return fmt.Errorf("insert order note: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
