package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	transientPrefix        = "_transient_"
	transientTimeoutPrefix = "_transient_timeout_"
)

// GetOption returns the raw option value and whether the option exists.
func (s *MySql) GetOption(ctx context.Context, name string) (string, bool, error) {
	stmt, err := s.stmtSelectOption()
	if err != nil {
		return "", false, err
	}
	var value string
	err = stmt.QueryRowContext(ctx, name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select option %s: %w", name, err)
	}
	return value, true, nil
}

func (s *MySql) UpdateOption(ctx context.Context, name, value string) error {
	return s.setOption(ctx, name, value, "yes")
}

func (s *MySql) setOption(ctx context.Context, name, value, autoload string) error {
	stmt, err := s.stmtUpsertOption()
	if err != nil {
		return err
	}
	if _, err = stmt.ExecContext(ctx, name, value, autoload); err != nil {
		return fmt.Errorf("upsert option %s: %w", name, err)
	}
	return nil
}

func (s *MySql) DeleteOption(ctx context.Context, name string) error {
	stmt, err := s.stmtDeleteOption()
	if err != nil {
		return err
	}
	if _, err = stmt.ExecContext(ctx, name); err != nil {
		return fmt.Errorf("delete option %s: %w", name, err)
	}
	return nil
}

// GetCounter reads an integer transient. Expired transients are reported as
// missing.
func (s *MySql) GetCounter(ctx context.Context, key string) (int, time.Time, bool, error) {
	timeout, found, err := s.GetOption(ctx, transientTimeoutPrefix+key)
	if err != nil || !found {
		return 0, time.Time{}, false, err
	}
	unix, err := strconv.ParseInt(timeout, 10, 64)
	if err != nil {
		return 0, time.Time{}, false, nil
	}
	expires := time.Unix(unix, 0)
	if !expires.After(time.Now()) {
		return 0, time.Time{}, false, nil
	}

	value, found, err := s.GetOption(ctx, transientPrefix+key)
	if err != nil || !found {
		return 0, time.Time{}, false, err
	}
	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, time.Time{}, false, nil
	}
	return count, expires, true, nil
}

// SetCounter stores an integer transient expiring at expires.
func (s *MySql) SetCounter(ctx context.Context, key string, count int, expires time.Time) error {
	if err := s.setOption(ctx, transientTimeoutPrefix+key, strconv.FormatInt(expires.Unix(), 10), "no"); err != nil {
		return err
	}
	return s.setOption(ctx, transientPrefix+key, strconv.Itoa(count), "no")
}

// DeleteExpired removes transients whose timeout has passed, together with
// their values. Returns the number of deleted rows.
func (s *MySql) DeleteExpired(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(
		`DELETE a, b FROM %soptions a
		 LEFT JOIN %soptions b ON b.option_name = CONCAT(?, SUBSTRING(a.option_name, ?))
		 WHERE a.option_name LIKE ? AND CAST(a.option_value AS UNSIGNED) < ?`,
		s.prefix, s.prefix,
	)
	res, err := s.db.ExecContext(ctx, query,
		transientPrefix,
		len(transientTimeoutPrefix)+1,
		`\_transient\_timeout\_eom\_%`,
		time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired transients: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("deleted expired transients", "rows", n)
	}
	return n, nil
}

// DeleteCounters removes every transient, live or expired, whose key starts
// with prefix.
func (s *MySql) DeleteCounters(ctx context.Context, prefix string) (int64, error) {
	query := fmt.Sprintf(
		`DELETE FROM %soptions WHERE option_name LIKE ? OR option_name LIKE ?`,
		s.prefix,
	)
	patterns := counterPatterns(prefix)
	res, err := s.db.ExecContext(ctx, query, patterns[0], patterns[1])
	if err != nil {
		return 0, fmt.Errorf("delete counters %s: %w", prefix, err)
	}
	return res.RowsAffected()
}

// counterPatterns matches the value and timeout rows of transients under prefix.
func counterPatterns(prefix string) [2]string {
	pattern := likeEscaper.Replace(prefix) + "%"
	return [2]string{
		likeEscaper.Replace(transientPrefix) + pattern,
		likeEscaper.Replace(transientTimeoutPrefix) + pattern,
	}
}
