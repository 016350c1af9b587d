// Package postgresql owns the bun connection shared by the postgres repositories.
package postgresql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"coaching/attendance/internal/entity"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

type Config struct {
	User       string
	Password   string
	Host       string
	Name       string
	DisableTLS bool
	Debug      bool
}

type Database struct {
	*bun.DB
	validate *validator.Validate
}

// New opens the pool and checks that the server answers.
func New(ctx context.Context, cfg Config) (*Database, error) {
	connector := pgdriver.NewConnector(
		pgdriver.WithAddr(cfg.Host),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithDatabase(cfg.Name),
		pgdriver.WithInsecure(cfg.DisableTLS),
		pgdriver.WithApplicationName("attendance"),
	)

	sqldb := sql.OpenDB(connector)
	sqldb.SetMaxOpenConns(25)
	sqldb.SetMaxIdleConns(5)

	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}

	return &Database{DB: db, validate: validator.New()}, nil
}

// ValidateStruct runs the `validate` tags of s. When fields are given only
// those struct fields are checked and they must be non-zero.
func (d Database) ValidateStruct(s interface{}, fields ...string) error {
	v := d.validate
	if v == nil {
		v = validator.New()
	}

	var err error
	if len(fields) > 0 {
		err = v.StructPartial(s, fields...)
		if err == nil {
			err = requireFields(s, fields)
		}
	} else {
		err = v.Struct(s)
	}
	if err != nil {
		return errors.Wrap(entity.ErrValidation, err.Error())
	}
	return nil
}

// DeleteRow deletes the row id of table inside tenantID.
func (d Database) DeleteRow(ctx context.Context, table string, tenantID, id int) error {
	res, err := d.NewDelete().
		TableExpr(table).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Exec(ctx)
	if err != nil {
		return Wrap(err, fmt.Sprintf("deleting %s", table))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(entity.ErrNotFound, "%s %d", table, id)
	}
	return nil
}

// Wrap adds msg to err and marks connection loss, deadlocks and
// serialization failures as entity.ErrTransient so the caller may retry.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return errors.Wrapf(entity.ErrTransient, "%s: %v", msg, err)
	}
	return errors.Wrap(err, msg)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Field('C') {
		case "40001", "40P01", "57P01", "08000", "08003", "08006":
			return true
		}
		return false
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func requireFields(s interface{}, fields []string) error {
	var missing []string
	for _, f := range fields {
		if isZeroField(s, f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("required: %s", strings.Join(missing, ", "))
	}
	return nil
}
