package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Kinded is implemented by domain errors that classify their failure, such
// as a RecordSale error kind.
type Kinded interface {
	ErrorKindName() string
}

// ErrorDump flattens an error chain into log fields.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	var kinded Kinded
	if errors.As(err, &kinded) {
		d.Kind = kinded.ErrorKindName()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	// pgx is the gorm postgres driver; lib/pq backs goose migrations.
	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.PGCode, d.PGConstraint, d.PGDetail, d.PGMessage = pgxErr.Code, pgxErr.ConstraintName, pgxErr.Detail, pgxErr.Message
		d.PGTable, d.PGColumn = pgxErr.TableName, pgxErr.ColumnName
	case errors.As(err, &pqErr):
		d.PGCode, d.PGConstraint, d.PGDetail, d.PGMessage = string(pqErr.Code), pqErr.Constraint, pqErr.Detail, pqErr.Message
		d.PGTable, d.PGColumn = pqErr.Table, pqErr.Column
	}
	return d
}
