package commands

import (
	"context"
	"database/sql"

	"coaching/attendance/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Scheme struct {
	Index       int
	Description string
	Query       string
}

// branch, batch, enrollment and teacher are owned by the academic side of the
// system; they are created here only when missing so the engine can run on
// its own.
var scheme = []Scheme{
	{
		Index:       1,
		Description: "Create table: branch.",
		Query: `
        CREATE TABLE IF NOT EXISTS branch (
            id serial primary key,
            tenant_id int not null,
            name text
        );`,
	},
	{
		Index:       2,
		Description: "Create table: batch.",
		Query: `
        CREATE TABLE IF NOT EXISTS batch (
            id serial primary key,
            tenant_id int not null,
            branch_id int not null references branch(id),
            name text
        );`,
	},
	{
		Index:       3,
		Description: "Create table: enrollment.",
		Query: `
        CREATE TABLE IF NOT EXISTS enrollment (
            batch_id int not null references batch(id),
            student_id int not null,
            primary key (batch_id, student_id)
        );`,
	},
	{
		Index:       4,
		Description: "Create table: shift.",
		Query: `
        CREATE TABLE IF NOT EXISTS shift (
            id serial primary key,
            tenant_id int not null,
            name text not null,
            start_time time not null,
            end_time time not null,
            grace_minutes int not null default 0 check (grace_minutes >= 0),
            created_at timestamp default now(),
            updated_at timestamp
        );
        CREATE INDEX IF NOT EXISTS shift_tenant_idx ON shift (tenant_id);`,
	},
	{
		Index:       5,
		Description: "Create table: teacher.",
		Query: `
        CREATE TABLE IF NOT EXISTS teacher (
            id int primary key,
            tenant_id int not null,
            branch_id int not null references branch(id),
            shift_id int references shift(id) on delete set null
        );`,
	},
	{
		Index:       6,
		Description: "Create table: holiday_rule.",
		Query: `
        CREATE TABLE IF NOT EXISTS holiday_rule (
            id serial primary key,
            tenant_id int not null,
            branch_id int references branch(id),
            name text not null,
            type text not null check (type in ('SingleDay', 'DateRange', 'WeeklyOff', 'Government', 'Religious')),
            start_date date,
            end_date date,
            days_of_week int[],
            is_recurring bool not null default false,
            is_active bool not null default true,
            created_at timestamp default now(),
            updated_at timestamp,
            check (end_date is null or start_date is null or end_date >= start_date)
        );
        CREATE INDEX IF NOT EXISTS holiday_rule_tenant_idx ON holiday_rule (tenant_id, branch_id) WHERE is_active;`,
	},
	{
		Index:       7,
		Description: "Create table: attendance_record.",
		Query: `
        CREATE TABLE IF NOT EXISTS attendance_record (
            id serial primary key,
            tenant_id int not null,
            branch_id int not null,
            subject_type text not null check (subject_type in ('Student', 'TeacherSelf')),
            subject_id int not null,
            batch_id int,
            date date not null,
            status text not null check (status in ('Present', 'Absent', 'Late')),
            remarks text,
            approval_state text not null check (approval_state in ('NotRequired', 'Pending', 'Approved')),
            approved_by int,
            approved_at timestamp,
            created_at timestamp default now(),
            updated_at timestamp
        );`,
	},
	{
		Index:       8,
		Description: "Create unique index: attendance_record natural key.",
		Query: `
        CREATE UNIQUE INDEX IF NOT EXISTS attendance_record_key_idx
            ON attendance_record (tenant_id, subject_type, subject_id, (COALESCE(batch_id, 0)), date);`,
	},
	{
		Index:       9,
		Description: "Create indexes: attendance_record history and pending approvals.",
		Query: `
        CREATE INDEX IF NOT EXISTS attendance_record_subject_idx
            ON attendance_record (tenant_id, subject_type, subject_id, date);
        CREATE INDEX IF NOT EXISTS attendance_record_pending_idx
            ON attendance_record (tenant_id, branch_id) WHERE approval_state = 'Pending';`,
	},
}

// MigrateUP applies every scheme above the recorded version. A scheme that
// failed earlier (dirty) is retried first.
func MigrateUP(ctx context.Context, db *postgresql.Database, log *zap.SugaredLogger) error {
	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version int not null, dirty bool not null, error text)`); err != nil {
		return errors.Wrap(err, "creating schema_migrations")
	}

	var (
		version int
		dirty   bool
		er      *string
	)
	err := db.QueryRowContext(ctx, "SELECT version, dirty, error FROM schema_migrations").Scan(&version, &dirty, &er)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (0, false)`); err != nil {
			return errors.Wrap(err, "initializing schema_migrations")
		}
	} else if err != nil {
		return errors.Wrap(err, "reading schema_migrations")
	}

	if dirty {
		log.Warnw("retrying dirty migration", "version", version, "error", er)
		version--
	}

	for _, s := range scheme {
		if s.Index <= version {
			continue
		}

		if _, err := db.ExecContext(ctx, s.Query); err != nil {
			if _, uerr := db.ExecContext(ctx,
				`UPDATE schema_migrations SET error = ?, version = ?, dirty = true`, err.Error(), s.Index); uerr != nil {
				log.Errorw("recording migration failure", "version", s.Index, "error", uerr)
			}
			return errors.Wrapf(err, "migrate version %d (%s)", s.Index, s.Description)
		}

		if _, err := db.ExecContext(ctx,
			`UPDATE schema_migrations SET version = ?, dirty = false, error = null`, s.Index); err != nil {
			return errors.Wrapf(err, "recording version %d", s.Index)
		}
		log.Infow("migrated", "version", s.Index, "description", s.Description)
	}

	return nil
}
