package db

import (
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
)

// newTracer traces queries without their arguments, which carry password hashes.
func newTracer() pgx.QueryTracer {
	return otelpgx.NewTracer(otelpgx.WithTrimSQLInSpanName())
}
