package database

import (
	"database/sql"
	"fmt"
	"sort"
)

func (s *MySql) prepareStmt(name, query string) (*sql.Stmt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stmt, ok := s.statements[name]; ok {
		return stmt, nil
	}

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("prepare statement [%s]: %w", name, err)
	}

	s.statements[name] = stmt
	return stmt, nil
}

func (s *MySql) closeStmt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, stmt := range s.statements {
		_ = stmt.Close()
		delete(s.statements, name)
	}
}

func (s *MySql) statementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.statements)
}

func sortedKeys(rec map[string]interface{}) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *MySql) stmtSelectOrder() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`SELECT
			o.id,
			o.type,
			o.status,
			o.currency,
			o.total_amount,
			o.billing_email,
			o.payment_method_title,
			o.date_created_gmt
		 FROM %swc_orders o
		 WHERE o.id = ?`,
		s.prefix,
	)
	return s.prepareStmt("selectOrder", query)
}

func (s *MySql) stmtSelectOrderAddresses() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`SELECT
			address_type,
			COALESCE(first_name, ''),
			COALESCE(last_name, ''),
			COALESCE(company, ''),
			COALESCE(address_1, ''),
			COALESCE(address_2, ''),
			COALESCE(city, ''),
			COALESCE(state, ''),
			COALESCE(postcode, ''),
			COALESCE(country, '')
		 FROM %swc_order_addresses
		 WHERE order_id = ?`,
		s.prefix,
	)
	return s.prepareStmt("selectOrderAddresses", query)
}

func (s *MySql) stmtSelectOrderMeta() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`SELECT meta_key, COALESCE(meta_value, '')
		 FROM %swc_orders_meta
		 WHERE order_id = ?
		 ORDER BY id`,
		s.prefix,
	)
	return s.prepareStmt("selectOrderMeta", query)
}

func (s *MySql) stmtSelectOption() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`SELECT option_value FROM %soptions WHERE option_name = ? LIMIT 1`,
		s.prefix,
	)
	return s.prepareStmt("selectOption", query)
}

func (s *MySql) stmtUpsertOption() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`INSERT INTO %soptions (option_name, option_value, autoload)
		 VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE option_value = VALUES(option_value)`,
		s.prefix,
	)
	return s.prepareStmt("upsertOption", query)
}

func (s *MySql) stmtDeleteOption() (*sql.Stmt, error) {
	query := fmt.Sprintf(`DELETE FROM %soptions WHERE option_name = ?`, s.prefix)
	return s.prepareStmt("deleteOption", query)
}

func (s *MySql) stmtSelectLogs() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`SELECT
			l.id,
			l.created_at,
			l.user_id,
			COALESCE(u.display_name, ''),
			l.order_id,
			l.action,
			l.details
		 FROM %seom_logs l
		 LEFT JOIN %susers u ON u.ID = l.user_id
		 ORDER BY l.created_at DESC, l.id DESC
		 LIMIT ? OFFSET ?`,
		s.prefix, s.prefix,
	)
	return s.prepareStmt("selectLogs", query)
}

func (s *MySql) stmtCountLogs() (*sql.Stmt, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %seom_logs`, s.prefix)
	return s.prepareStmt("countLogs", query)
}

func (s *MySql) stmtSelectUserByLogin() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`SELECT
			u.ID,
			u.user_login,
			u.display_name,
			u.user_pass,
			COALESCE(m.meta_value, '')
		 FROM %susers u
		 LEFT JOIN %susermeta m ON m.user_id = u.ID AND m.meta_key = ?
		 WHERE u.user_login = ? OR u.user_email = ?
		 LIMIT 1`,
		s.prefix, s.prefix,
	)
	return s.prepareStmt("selectUserByLogin", query)
}
