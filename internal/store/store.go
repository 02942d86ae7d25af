package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"collegenet-backend/internal/components/assert"
	"collegenet-backend/internal/components/chrono"
	"collegenet-backend/internal/scrapers/r25"

	_ "embed"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Store keeps the results of export runs in sqlite, one row per reservation per run.
type Store struct {
	db   *sql.DB
	time chrono.TimeAPI
}

// Open opens (or creates) the database at path and makes sure the schema exists.
func Open(path string, clock chrono.TimeAPI) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection so ":memory:" databases are not split between connections
	db.SetMaxOpenConns(1)

	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return NewStore(db, clock), nil
}

func NewStore(db *sql.DB, clock chrono.TimeAPI) *Store {
	assert.NotNil(db)
	if clock == nil {
		clock = chrono.NewStandardTime(nil)
	}
	return &Store{db: db, time: clock}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one stored export.
type Run struct {
	ID               string
	WindowStart      string
	WindowEnd        string
	CreatedAt        time.Time
	ReservationCount int
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

const dateLayout = "2006-01-02"

// SaveRun stores the reservations of a window under a new run id. Either the whole run is
// written or nothing is.
func (s *Store) SaveRun(ctx context.Context, window r25.DateWindow, reservations []r25.Reservation) (string, error) {
	runId := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`insert into export_run(id, window_start, window_end, created_at, reservation_count)
		values (?, ?, ?, ?, ?)`,
		runId,
		window.Start.Format(dateLayout),
		window.End.Format(dateLayout),
		s.time.Now().Unix(),
		len(reservations),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	insert, err := tx.PrepareContext(ctx, `insert or replace into reservation(
		run_id, position, reservation_id, event_id, reservation_id_friendly, name,
		event_type, reservation_state, organization, expected_attendance,
		location_full, location_abbr, start_local, end_local, start_timestamp, end_timestamp,
		start_date_friendly, end_date_friendly, last_updated_friendly, last_updated_timestamp
	) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer insert.Close()

	for i, r := range reservations {
		_, err = insert.ExecContext(
			ctx,
			runId, i, r.ReservationID, r.EventID, r.ReservationIDFriendly, r.Name,
			r.EventType, r.ReservationState, r.Organization, nullInt(r.ExpectedAttendance),
			r.LocationFull, r.LocationAbbr, r.Start, r.End,
			nullInt64(r.StartTimestamp), nullInt64(r.EndTimestamp),
			r.StartDateFriendly, r.EndDateFriendly,
			r.LastUpdatedFriendly, nullInt64(r.LastUpdatedTimestamp),
		)
		if err != nil {
			return "", fmt.Errorf("insert reservation %s: %w", r.ReservationID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return "", err
	}
	return runId, nil
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

// ListRun returns the reservations of a run in the order they were saved.
func (s *Store) ListRun(ctx context.Context, runId string) ([]r25.Reservation, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select
			reservation_id, event_id, reservation_id_friendly, name,
			event_type, reservation_state, organization, expected_attendance,
			location_full, location_abbr, start_local, end_local, start_timestamp, end_timestamp,
			start_date_friendly, end_date_friendly, last_updated_friendly, last_updated_timestamp
		from reservation where run_id = ? order by position`,
		runId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []r25.Reservation
	for rows.Next() {
		var r r25.Reservation
		var attendance, start, end, lastUpdated sql.NullInt64
		err = rows.Scan(
			&r.ReservationID, &r.EventID, &r.ReservationIDFriendly, &r.Name,
			&r.EventType, &r.ReservationState, &r.Organization, &attendance,
			&r.LocationFull, &r.LocationAbbr, &r.Start, &r.End, &start, &end,
			&r.StartDateFriendly, &r.EndDateFriendly, &r.LastUpdatedFriendly, &lastUpdated,
		)
		if err != nil {
			return nil, err
		}
		if attendance.Valid {
			count := int(attendance.Int64)
			r.ExpectedAttendance = &count
		}
		r.StartTimestamp = int64Ptr(start)
		r.EndTimestamp = int64Ptr(end)
		r.LastUpdatedTimestamp = int64Ptr(lastUpdated)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select id, window_start, window_end, created_at, reservation_count
		from export_run order by created_at desc, rowid desc`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var createdAt int64
		err = rows.Scan(&run.ID, &run.WindowStart, &run.WindowEnd, &createdAt, &run.ReservationCount)
		if err != nil {
			return nil, err
		}
		run.CreatedAt = time.Unix(createdAt, 0).In(s.time.Location())
		out = append(out, run)
	}
	return out, rows.Err()
}
