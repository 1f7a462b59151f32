package driver

import (
	"context"
	"database/sql"
	"strings"
	"time"

	// mysql driver
	_ "github.com/go-sql-driver/mysql"
)

// SQLWrapper Wraps a *sql.db object and provides the implementation of ITransactionalDB.
//
// it uses zap for default logging
type SQLWrapper struct {
	db *sql.DB
}

// SQLWrapperTx transaction wrapper
type SQLWrapperTx struct {
	tx *sql.Tx
}

var (
	_ ITransactionalDB = &SQLWrapper{}
	_ ITransactionalDB = &SQLWrapperTx{}
)

// NewMySQLConn Returns a MySQL connection pool
func NewMySQLConn(dsn string, cfg *DBConfig) (ITransactionalDB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(int(cfg.MaxConn))
	return &SQLWrapper{conn}, err
}

// BeginTx start a new transaction context
func (mw *SQLWrapper) BeginTx(ctx context.Context, opts *TxOptions) (ITransactionalDB, error) {
	startTime := time.Now()
	tx, err := mw.db.BeginTx(ctx, mysqlTxOptionAdapter(opts))
	logStatement(ctx, "BeginTx", "", startTime, err, nil)
	if err != nil {
		return nil, err
	}
	return &SQLWrapperTx{tx}, nil
}

func mysqlTxOptionAdapter(opts *TxOptions) *sql.TxOptions {
	if opts == nil {
		return nil
	}
	return &sql.TxOptions{
		Isolation: opts.Isolation,
		ReadOnly:  opts.AccessMode == AccessReadOnly,
	}
}

func (mw *SQLWrapper) Commit(ctx context.Context) error {
	return nil
}

func (mw *SQLWrapper) Rollback(ctx context.Context) error {
	return nil
}

func (mw *SQLWrapper) Close(ctx context.Context) error {
	return mw.db.Close()
}

func (mw *SQLWrapper) Ping() error {
	return mw.db.Ping()
}

func (mw *SQLWrapper) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	startTime := time.Now()
	query = mysqlAdapter(query)
	res, err := mw.db.ExecContext(ctx, query, args...)
	logStatement(ctx, "Exec", query, startTime, err, args)
	return res, err
}

func (mw *SQLWrapper) QueryContext(ctx context.Context, query string, args ...interface{}) (ISQLRows, error) {
	startTime := time.Now()
	query = mysqlAdapter(query)
	rows, err := mw.db.QueryContext(ctx, query, args...)
	logStatement(ctx, "Query", query, startTime, err, args)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (mwt *SQLWrapperTx) BeginTx(ctx context.Context, opts *TxOptions) (ITransactionalDB, error) {
	panic("create transaction inside a transaction")
}

func (mwt *SQLWrapperTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	startTime := time.Now()
	query = mysqlAdapter(query)
	res, err := mwt.tx.ExecContext(ctx, query, args...)
	logStatement(ctx, "Exec", query, startTime, err, args)
	return res, err
}

func (mwt *SQLWrapperTx) QueryContext(ctx context.Context, query string, args ...interface{}) (ISQLRows, error) {
	startTime := time.Now()
	query = mysqlAdapter(query)
	rows, err := mwt.tx.QueryContext(ctx, query, args...)
	logStatement(ctx, "Query", query, startTime, err, args)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (mwt *SQLWrapperTx) Commit(ctx context.Context) error {
	startTime := time.Now()
	err := mwt.tx.Commit()
	logStatement(ctx, "Commit", "", startTime, err, nil)
	return err
}

func (mwt *SQLWrapperTx) Rollback(ctx context.Context) error {
	startTime := time.Now()
	err := mwt.tx.Rollback()
	logStatement(ctx, "RollBack", "", startTime, err, nil)
	return err
}

func (mwt *SQLWrapperTx) Close(ctx context.Context) error {
	return nil
}

func (mwt *SQLWrapperTx) Ping() error {
	return nil
}

func mysqlAdapter(query string) string {
	query = strings.Replace(query, "\"", "`", -1)
	query = DollarPlaceholderPattern.ReplaceAllString(query, "?")
	query = SpacePattern.ReplaceAllString(query, " ")
	return strings.TrimSpace(query)
}
