package db_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
)

func TestPgErrorHelpers(t *testing.T) {
	unique := fmt.Errorf("insert category: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "categories_category_name_key",
	})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "products_category_id_fkey"}

	assert.True(t, db.IsUniqueViolation(unique, ""))
	assert.True(t, db.IsUniqueViolation(unique, "categories_category_name_key"))
	assert.False(t, db.IsUniqueViolation(unique, "users_email_key"))
	assert.False(t, db.IsUniqueViolation(fk, ""))

	assert.True(t, db.IsForeignKeyViolation(fk, "products_category_id_fkey"))
	assert.False(t, db.IsForeignKeyViolation(errors.New("boom"), ""))
}
