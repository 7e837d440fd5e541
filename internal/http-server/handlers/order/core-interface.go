package order

import (
	"context"

	"easyorders/entity"
)

type Core interface {
	ListOrders(ctx context.Context, actor *entity.UserAuth, filter entity.OrderFilter) (*entity.OrderPage, error)
	UpdateOrderStatus(ctx context.Context, actor *entity.UserAuth, update *entity.StatusUpdate) (*entity.StatusChange, error)
}
