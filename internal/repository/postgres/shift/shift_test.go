package shift

import (
	"context"
	"database/sql"
	"testing"

	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/pkg/repository/postgresql"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// offline builds queries without ever opening a connection.
func offline(t *testing.T) *Repository {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector())
	t.Cleanup(func() { _ = sqldb.Close() })
	return NewRepository(&postgresql.Database{DB: bun.NewDB(sqldb, pgdialect.New())})
}

func TestUpdateQueryReturnsStoredRow(t *testing.T) {
	t.Parallel()
	r := offline(t)

	s := entity.Shift{TenantID: 1, Name: "Morning", StartTime: "09:00", EndTime: "17:00", GraceMinutes: 10}
	s.ID = 4

	q := r.updateQuery(&s).String()
	assert.Contains(t, q, `RETURNING *`)
	assert.Contains(t, q, `WHERE (id = 4 AND tenant_id = 1)`)
	assert.NotContains(t, q, `"created_at" =`)
}

func TestUpdateValidates(t *testing.T) {
	t.Parallel()
	r := offline(t)

	_, err := r.Update(context.Background(), entity.Shift{TenantID: 1, StartTime: "09:00", EndTime: "17:00"})
	assert.ErrorIs(t, err, entity.ErrValidation)
}
