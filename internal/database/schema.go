package database

import (
	"context"
	"fmt"
)

// CreateTables creates the activity log table when it does not exist.
func (s *MySql) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %seom_logs (
			id BIGINT(20) UNSIGNED NOT NULL AUTO_INCREMENT,
			created_at DATETIME NOT NULL,
			user_id BIGINT(20) UNSIGNED NOT NULL DEFAULT 0,
			order_id VARCHAR(64) NOT NULL DEFAULT '',
			action VARCHAR(64) NOT NULL DEFAULT '',
			details TEXT NOT NULL,
			PRIMARY KEY (id),
			KEY created_at (created_at),
			KEY order_id (order_id)
		) DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		s.prefix,
	)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %seom_logs: %w", s.prefix, err)
	}
	return nil
}

// DropTables removes the activity log table.
func (s *MySql) DropTables(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %seom_logs", s.prefix)); err != nil {
		return fmt.Errorf("drop table %seom_logs: %w", s.prefix, err)
	}
	return nil
}
