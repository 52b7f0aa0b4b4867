package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const maxChainLinks = 8

// Constraint classes reported in ErrorDump.DBClass.
const (
	DBClassUnique     = "unique_violation"
	DBClassForeignKey = "foreign_key_violation"
	DBClassCheck      = "check_violation"
	DBClassNotNull    = "not_null_violation"
)

var pgClasses = map[string]string{
	"23505": DBClassUnique,
	"23503": DBClassForeignKey,
	"23514": DBClassCheck,
	"23502": DBClassNotNull,
}

var sqliteClasses = map[sqlite3.ErrNoExtended]string{
	sqlite3.ErrConstraintUnique:     DBClassUnique,
	sqlite3.ErrConstraintPrimaryKey: DBClassUnique,
	sqlite3.ErrConstraintForeignKey: DBClassForeignKey,
	sqlite3.ErrConstraintCheck:      DBClassCheck,
	sqlite3.ErrConstraintNotNull:    DBClassNotNull,
}

// ErrorDump is a log-friendly flattening of an error chain.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`

	Chain []string `json:"chain,omitempty"`

	DBBackend string `json:"db_backend,omitempty"`
	DBClass   string `json:"db_class,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

// Dump walks err, keeping at most maxChainLinks links, and extracts driver
// details from Postgres (pgx or lib/pq) and SQLite errors.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		if len(d.Chain) == maxChainLinks {
			d.Chain = append(d.Chain, "...")
			break
		}
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pgxErr):
		d.DBBackend = "postgres"
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
		d.DBClass = pgClasses[pgxErr.Code]
	case errors.As(err, &pqErr):
		d.DBBackend = "postgres"
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGDetail = pqErr.Detail
		d.PGMessage = pqErr.Message
		d.DBClass = pgClasses[d.PGCode]
	case errors.As(err, &liteErr):
		d.DBBackend = "sqlite"
		d.DBClass = sqliteClasses[liteErr.ExtendedCode]
	}
	return d
}
