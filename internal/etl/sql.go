package etl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/BartekS5/feedsync/pkg/database"
	"github.com/BartekS5/feedsync/pkg/logger"
	"github.com/BartekS5/feedsync/pkg/models"
)

// SQLLoader replaces the rows of a SQL Server table inside one transaction,
// so a failed run leaves the previous rows in place.
type SQLLoader[R models.SQLRow] struct {
	ConnString string
	Table      string
	Timeout    time.Duration

	db *sql.DB
}

func NewSQLLoader[R models.SQLRow](connString, table string, timeout time.Duration) *SQLLoader[R] {
	return &SQLLoader[R]{ConnString: connString, Table: table, Timeout: timeout}
}

// NewSQLLoaderWithDB uses db for every Load and never closes it.
func NewSQLLoaderWithDB[R models.SQLRow](db *sql.DB, table string, timeout time.Duration) *SQLLoader[R] {
	l := NewSQLLoader[R]("", table, timeout)
	l.db = db
	return l
}

func (l *SQLLoader[R]) Load(ctx context.Context, records []R) (int, error) {
	if len(records) == 0 {
		logger.Info("No data to load.")
		return 0, nil
	}

	logger.Infof("SQL Loader: Processing %d records into %s...", len(records), l.Table)

	db := l.db
	if db == nil {
		conn, err := database.ConnectSQL(ctx, l.ConnString)
		if err != nil {
			return 0, err
		}
		defer conn.Close()
		db = conn
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	var zero R
	cols := zero.SQLColumns()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createTableQuery(l.Table, cols)); err != nil {
		return 0, fmt.Errorf("ensure table %s: %w", l.Table, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(l.Table))
	if err != nil {
		return 0, fmt.Errorf("delete existing rows in %s: %w", l.Table, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		logger.Infof("Deleted %d existing rows from '%s'.", n, l.Table)
	}

	stmt, err := tx.PrepareContext(ctx, insertQuery(l.Table, cols))
	if err != nil {
		return 0, fmt.Errorf("prepare insert into %s: %w", l.Table, err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.SQLValues()...); err != nil {
			return 0, fmt.Errorf("insert row %d into %s: %w", i, l.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	logger.Infof("Successfully loaded %d rows into '%s'.", len(records), l.Table)
	return len(records), nil
}

// quoteIdent brackets a SQL Server identifier.
func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func createTableQuery(table string, cols []models.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c.Name) + " " + c.Type
	}
	literal := strings.ReplaceAll(table, "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)",
		literal, quoteIdent(table), strings.Join(defs, ", "))
}

func insertQuery(table string, cols []models.Column) string {
	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(names, ", "), strings.Join(placeholders, ", "))
}
