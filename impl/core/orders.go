package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"easyorders/entity"
	"easyorders/internal/lib/api/response"
	"easyorders/internal/lib/sanitize"
)

// GetOrders returns the orders matching filter for actor. Actors without
// the order capability get an empty list.
func (c *Core) GetOrders(ctx context.Context, actor *entity.UserAuth, filter entity.OrderFilter) ([]*entity.Order, error) {
	if !actor.CanManageOrders() {
		return []*entity.Order{}, nil
	}
	if _, err := c.normalize(ctx, &filter); err != nil {
		return nil, err
	}
	return c.findOrders(ctx, &filter)
}

// GetTotalOrders counts the orders matching filter, ignoring pagination.
func (c *Core) GetTotalOrders(ctx context.Context, actor *entity.UserAuth, filter entity.OrderFilter) (int, error) {
	if !actor.CanManageOrders() {
		return 0, nil
	}
	if _, err := c.normalize(ctx, &filter); err != nil {
		return 0, err
	}
	return c.countOrders(ctx, &filter)
}

// ListOrders renders one page of the orders table.
func (c *Core) ListOrders(ctx context.Context, actor *entity.UserAuth, filter entity.OrderFilter) (*entity.OrderPage, error) {
	settings, err := c.normalize(ctx, &filter)
	if err != nil {
		return nil, err
	}

	orders := []*entity.Order{}
	total := 0
	if actor.CanManageOrders() {
		if orders, err = c.findOrders(ctx, &filter); err != nil {
			return nil, err
		}
		if total, err = c.countOrders(ctx, &filter); err != nil {
			return nil, err
		}
	}

	columns := c.visibleColumns(settings)
	page := &entity.OrderPage{
		Columns:    columns,
		Rows:       make([]entity.OrderRow, 0, len(orders)),
		Total:      total,
		TotalPages: response.TotalPages(total, filter.PageSize),
		Page:       filter.Page,
		PerPage:    filter.PageSize,
		Statuses:   c.Statuses(),
		Labels:     make(map[string]string, len(c.statuses)),
	}
	for _, status := range c.statuses {
		page.Labels[status] = settings.StatusLabel(status)
	}
	for _, order := range orders {
		page.Rows = append(page.Rows, c.renderRow(order, columns, settings))
	}

	if c.tokens != nil && actor.LoggedIn() {
		if page.Nonce, err = c.tokens.CreateNonce(entity.ActionUpdateStatus, actor.ID); err != nil {
			return nil, fmt.Errorf("create nonce: %w", err)
		}
	}
	return page, nil
}

func (c *Core) normalize(ctx context.Context, filter *entity.OrderFilter) (*entity.Settings, error) {
	settings, err := c.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	filter.Normalize(c.statuses, settings.OrdersPerPage)
	return settings, nil
}

func (c *Core) findOrders(ctx context.Context, filter *entity.OrderFilter) ([]*entity.Order, error) {
	if c.orders == nil {
		return nil, fmt.Errorf("order store not set")
	}
	order, err := c.lookupByNumber(ctx, filter.Search)
	if err != nil {
		return nil, err
	}
	if order != nil {
		return []*entity.Order{order}, nil
	}

	orders, err := c.orders.QueryOrders(ctx, c.buildQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	return orders, nil
}

func (c *Core) countOrders(ctx context.Context, filter *entity.OrderFilter) (int, error) {
	if c.orders == nil {
		return 0, fmt.Errorf("order store not set")
	}
	order, err := c.lookupByNumber(ctx, filter.Search)
	if err != nil {
		return 0, err
	}
	if order != nil {
		return 1, nil
	}

	ids, err := c.orders.QueryOrderIDs(ctx, countQuery(c.buildQuery(filter)))
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return len(ids), nil
}

// lookupByNumber resolves a purely numeric search term as an order id. It
// returns nil when the term is not numeric or names no purchase order.
func (c *Core) lookupByNumber(ctx context.Context, search string) (*entity.Order, error) {
	if !sanitize.IsNumeric(search) {
		return nil, nil
	}
	id, err := strconv.ParseInt(search, 10, 64)
	if err != nil {
		return nil, nil
	}
	order, err := c.orders.GetOrder(ctx, id)
	if errors.Is(err, entity.ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	if !order.IsPurchase() {
		c.log.Debug("numeric search matched a non purchase order", slog.Int64("order_id", id))
		return nil, nil
	}
	return order, nil
}
