// Package postgres reads participation records from Postgres.
package postgres

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/sahakari/internal/domain"
	"example.com/sahakari/internal/source"
)

// Repository provides Postgres-backed access to participation records.
type Repository struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, logger: log.New(log.Writer(), "[source] ", log.LstdFlags|log.Lshortfile)}
}

var _ source.RecordFetcher = (*Repository)(nil)

const selectRecords = `SELECT p.participation_id, p.master_activity_id, COALESCE(m.activity_name, ''), COALESCE(p.activity_name, ''),
        COALESCE(k.activity_id, ''),
        p.full_name, p.age, p.gender, p.address, p.membership_number, p.phone_number, p.participated_on, p.recorded_by, p.branch
    FROM participations p
    LEFT JOIN master_activities m ON m.activity_id = p.master_activity_id
    LEFT JOIN master_activities k ON k.activity_id = $4 AND p.master_activity_id IS NULL AND k.activity_name = p.activity_name
    WHERE p.participated_on >= $1 AND p.participated_on < $2
      AND ($3 = '' OR p.branch = $3)
      AND ($4 = '' OR p.master_activity_id = $4
           OR (p.master_activity_id IS NULL AND (p.activity_name = $4 OR k.activity_id IS NOT NULL)))
    ORDER BY p.created_at, p.participation_id`

// FetchRecords implements source.RecordFetcher. The branch is also set as the
// transaction's app.branch so row-level security applies.
func (r *Repository) FetchRecords(ctx context.Context, filter domain.ReportFilter) ([]domain.ParticipationRecord, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.branch', $1, true)", filter.Branch); err != nil {
		return nil, err
	}

	from, to := filter.Window()
	rows, err := tx.Query(ctx, selectRecords, from, to, filter.Branch, filter.Activity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ParticipationRecord
	for rows.Next() {
		var (
			rec          domain.ParticipationRecord
			masterID     *string
			masterName   string
			activityName string
			keyID        string
			gender       string
			date         *time.Time
		)
		if err := rows.Scan(&rec.ID, &masterID, &masterName, &activityName, &keyID, &rec.FullName, &rec.Age, &gender,
			&rec.Address, &rec.MembershipNumber, &rec.PhoneNumber, &date, &rec.RecordedBy, &rec.Branch); err != nil {
			return nil, err
		}
		switch {
		case masterID != nil:
			rec.Activity = domain.ActivityByID(*masterID, masterName)
		case activityName != "":
			rec.Activity = domain.ActivityByName(activityName).WithMasterID(keyID)
		}
		rec.Gender = domain.ParseGender(gender)
		if date != nil {
			d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
			rec.Date = &d
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return source.Sanitize("postgres", r.logger, records), nil
}

// UpsertMasterActivity stores or renames a master activity.
func (r *Repository) UpsertMasterActivity(ctx context.Context, id, name string) error {
	const stmt = `INSERT INTO master_activities (activity_id, activity_name) VALUES ($1, $2)
        ON CONFLICT (activity_id) DO UPDATE SET activity_name = EXCLUDED.activity_name`
	_, err := r.pool.Exec(ctx, stmt, id, name)
	return err
}

// Insert stores a participation record.
func (r *Repository) Insert(ctx context.Context, rec domain.ParticipationRecord) error {
	if err := domain.ValidateRecord(rec); err != nil {
		return err
	}

	var masterID, activityName *string
	switch rec.Activity.Kind {
	case domain.ActivityRefByID:
		masterID = &rec.Activity.ID
	case domain.ActivityRefByName:
		activityName = &rec.Activity.Name
	}

	const stmt = `INSERT INTO participations (participation_id, master_activity_id, activity_name, full_name, age, gender,
        address, membership_number, phone_number, participated_on, recorded_by, branch)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err := r.pool.Exec(ctx, stmt,
		rec.ID,
		masterID,
		activityName,
		rec.FullName,
		rec.Age,
		string(rec.Gender),
		rec.Address,
		rec.MembershipNumber,
		rec.PhoneNumber,
		rec.Date,
		rec.RecordedBy,
		rec.Branch,
	)
	return err
}
