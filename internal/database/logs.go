package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"easyorders/entity"
)

func (s *MySql) AddLog(ctx context.Context, entry *entity.LogEntry) error {
	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	rec := map[string]interface{}{
		"created_at": created.UTC().Format(mysqlDateTime),
		"user_id":    entry.UserID,
		"order_id":   entry.OrderID,
		"action":     entry.Action,
		"details":    entry.Details,
	}
	id, err := s.insert(ctx, nil, "eom_logs", rec)
	if err != nil {
		return err
	}
	entry.ID = id
	entry.CreatedAt = created
	return nil
}

// GetLogs returns a page of entries, newest first, with the actor's display name.
func (s *MySql) GetLogs(ctx context.Context, offset, limit int) ([]*entity.LogEntry, error) {
	stmt, err := s.stmtSelectLogs()
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var entries []*entity.LogEntry
	for rows.Next() {
		var e entity.LogEntry
		var created time.Time
		if err = rows.Scan(
			&e.ID,
			&created,
			&e.UserID,
			&e.UserName,
			&e.OrderID,
			&e.Action,
			&e.Details,
		); err != nil {
			return nil, err
		}
		e.CreatedAt = created.In(s.loc)
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *MySql) CountLogs(ctx context.Context) (int, error) {
	stmt, err := s.stmtCountLogs()
	if err != nil {
		return 0, err
	}
	var total int
	if err = stmt.QueryRowContext(ctx).Scan(&total); err != nil {
		return 0, fmt.Errorf("count logs: %w", err)
	}
	return total, nil
}
