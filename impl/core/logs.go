package core

import (
	"context"
	"fmt"

	"easyorders/entity"
	"easyorders/internal/lib/api/response"
)

const logsPerPage = 20

// GetLogs returns one page of the activity log, newest first. Actors without
// the order capability see an empty log.
func (c *Core) GetLogs(ctx context.Context, actor *entity.UserAuth, page int) (*entity.LogPage, error) {
	if page < 1 {
		page = 1
	}
	result := &entity.LogPage{
		Entries: []*entity.LogEntry{},
		Page:    page,
		PerPage: logsPerPage,
	}
	if !actor.CanManageOrders() || c.activity == nil {
		return result, nil
	}

	total, err := c.activity.CountLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("count logs: %w", err)
	}
	entries, err := c.activity.GetLogs(ctx, (page-1)*logsPerPage, logsPerPage)
	if err != nil {
		return nil, fmt.Errorf("get logs: %w", err)
	}

	result.Total = total
	result.TotalPages = response.TotalPages(total, logsPerPage)
	if entries != nil {
		result.Entries = entries
	}
	return result, nil
}
