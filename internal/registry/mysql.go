// Package registry reads the main company registry from MySQL.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
	"github.com/JonMunkholm/CompanyPortal/internal/logging"
)

// DefaultTable is the registry table read when none is configured.
const DefaultTable = "ts_entity_company_profile"

// DefaultTimeout bounds a single full-table read.
const DefaultTimeout = 30 * time.Second

var tableNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Source implements core.RegistrySource over a MySQL table with
// name, website, status and deleted columns.
type Source struct {
	db      *sql.DB
	query   string
	timeout time.Duration
}

var _ core.RegistrySource = (*Source)(nil)

// Open validates the DSN and table name and prepares a connection pool.
// No connection is made until the first fetch.
func Open(dsn, table string, timeout time.Duration) (*Source, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid registry DSN: %w", err)
	}
	if table == "" {
		table = DefaultTable
	}
	query, err := selectQuery(table)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cfg.ParseTime = true
	if cfg.Timeout == 0 {
		cfg.Timeout = timeout
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("registry connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Source{db: db, query: query, timeout: timeout}, nil
}

// selectQuery builds the read query for a validated table identifier.
func selectQuery(table string) (string, error) {
	if !tableNameRE.MatchString(table) {
		return "", fmt.Errorf("invalid registry table name %q", table)
	}
	quoted := "`" + strings.ReplaceAll(table, ".", "`.`") + "`"
	return "SELECT name, website, status, deleted FROM " + quoted, nil
}

// FetchAll reads every registry row. Errors are returned to the caller,
// which decides whether to fail open.
func (s *Source) FetchAll(ctx context.Context) ([]core.RegistryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("query registry: %w", err)
	}
	defer rows.Close()

	var entries []core.RegistryEntry
	for rows.Next() {
		var name, website, status, deleted sql.NullString
		if err := rows.Scan(&name, &website, &status, &deleted); err != nil {
			return nil, fmt.Errorf("scan registry row: %w", err)
		}
		entries = append(entries, core.RegistryEntry{
			Name:    name.String,
			Website: website.String,
			Status:  status.String,
			Deleted: deleted.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read registry rows: %w", err)
	}

	logging.FromContext(ctx).Debug("registry rows read",
		"rows", len(entries),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return entries, nil
}

// Ping checks that the registry is reachable.
func (s *Source) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Source) Close() error {
	return s.db.Close()
}
