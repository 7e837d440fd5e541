package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"easyorders/internal/config"
	"easyorders/internal/lib/sl"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

type MySql struct {
	db         *sql.DB
	loc        *time.Location
	prefix     string
	statements map[string]*sql.Stmt
	mu         sync.Mutex
	log        *slog.Logger
}

func NewSQLClient(conf *config.Config, log *slog.Logger) (*MySql, error) {
	if !conf.SQL.Enabled {
		return nil, fmt.Errorf("SQL client is disabled in configuration")
	}
	connectionURI := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		conf.SQL.UserName, conf.SQL.Password, conf.SQL.HostName, conf.SQL.Port, conf.SQL.Database)
	db, err := sql.Open(conf.SQL.Driver, connectionURI)
	if err != nil {
		return nil, fmt.Errorf("sql connect: %w", err)
	}

	// the database may still be starting; three attempts 30 seconds apart
	for i := 0; i < 3; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i == 2 {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		time.Sleep(30 * time.Second)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &MySql{
		db:         db,
		loc:        conf.TimeLocation(),
		prefix:     conf.SQL.Prefix,
		statements: make(map[string]*sql.Stmt),
		log:        log.With(sl.Module("mysql")),
	}

	return sdb, nil
}

func (s *MySql) Close() {
	s.closeStmt()
	_ = s.db.Close()
}

// Stats returns database info only if there are connections inUse
func (s *MySql) Stats() string {
	stats := s.db.Stats()
	if stats.InUse > 0 {
		return fmt.Sprintf("open: %d, inuse: %d, idle: %d, stmts: %d",
			stats.OpenConnections,
			stats.InUse,
			stats.Idle,
			s.statementCount())
	}
	return ""
}

func (s *MySql) table(name string) string {
	return s.prefix + name
}

// insert adds one row built from rec and returns its auto-increment id.
func (s *MySql) insert(ctx context.Context, tx *sql.Tx, table string, rec map[string]interface{}) (int64, error) {
	keys := sortedKeys(rec)
	args := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		args = append(args, rec[k])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table(table), strings.Join(keys, ", "), placeholders(len(keys)))

	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, args...)
	} else {
		res, err = s.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	return res.LastInsertId()
}
