package db

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// mysqlNoSuchTable ER_NO_SUCH_TABLE
	mysqlNoSuchTable = 1146
	// pgUndefinedTable SQLSTATE undefined_table
	pgUndefinedTable = "42P01"
)

// IsMissingTable 判断错误是否由表不存在引起
func IsMissingTable(err error) bool {
	if err == nil {
		return false
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlNoSuchTable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}

	// SQLite 驱动只提供错误文本
	return strings.Contains(strings.ToLower(err.Error()), "no such table")
}
