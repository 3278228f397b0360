/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package repo

import (
    "context"
    "errors"
    "time"

    "github.com/HamedShams/effort-pulse/internal/config"
    "github.com/HamedShams/effort-pulse/internal/effort"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/rs/zerolog"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
    if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

// StartReportRun records the beginning of a report generation run.
// kind is "weekly" or "monthly"; scope describes the bucket span.
func (r *Repository) StartReportRun(ctx context.Context, kind, scope string) (int64, error) {
    const q = `INSERT INTO report_runs(started_at, kind, scope, success) VALUES(now(), $1, $2, false) RETURNING id`
    var id int64
    if err := r.db.Pool.QueryRow(ctx, q, kind, scope).Scan(&id); err != nil { return 0, err }
    return id, nil
}

func (r *Repository) FinishReportRun(ctx context.Context, id int64, issuesScanned, rowCount, warningCount int, success bool, errStr string) error {
    const q = `UPDATE report_runs SET finished_at=now(), issues_scanned=$2, effort_rows=$3, warnings=$4, success=$5, error=$6 WHERE id=$1`
    _, err := r.db.Pool.Exec(ctx, q, id, issuesScanned, rowCount, warningCount, success, errStr)
    return err
}

type LastRun struct {
    StartedAt     time.Time  `json:"started_at"`
    FinishedAt    *time.Time `json:"finished_at"`
    Kind          string     `json:"kind"`
    Scope         string     `json:"scope"`
    IssuesScanned int        `json:"issues_scanned"`
    EffortRows    int        `json:"effort_rows"`
    Warnings      int        `json:"warnings"`
    Success       bool       `json:"success"`
    Error         string     `json:"error"`
}

func (r *Repository) GetLastRun(ctx context.Context) (*LastRun, error) {
    const q = `SELECT started_at, finished_at, kind, scope,
        coalesce(issues_scanned,0), coalesce(effort_rows,0), coalesce(warnings,0),
        coalesce(success,false), coalesce(error,'')
        FROM report_runs ORDER BY id DESC LIMIT 1`
    row := r.db.Pool.QueryRow(ctx, q)
    lr := &LastRun{}
    if err := row.Scan(&lr.StartedAt, &lr.FinishedAt, &lr.Kind, &lr.Scope, &lr.IssuesScanned, &lr.EffortRows, &lr.Warnings, &lr.Success, &lr.Error); err != nil {
        return nil, err
    }
    return lr, nil
}

// BulkInsertEffortRows snapshots the flattened attribution rows for one
// bucket of a run. Rows are run-scoped history, not engine state; every
// run writes its own set.
func (r *Repository) BulkInsertEffortRows(ctx context.Context, runID int64, bucketStart time.Time, rows []effort.Row) error {
    if len(rows) == 0 { return nil }
    batch := &pgx.Batch{}
    const q = `INSERT INTO effort_rows(run_id, bucket_start, program, ticket, author, seconds)
        VALUES($1,$2,$3,$4,$5,$6)`
    for _, row := range rows {
        batch.Queue(q, runID, bucketStart, row.Program, row.Ticket, row.User, row.Seconds)
    }
    br := r.db.Pool.SendBatch(ctx, batch)
    defer br.Close()
    for range rows { if _, err := br.Exec(); err != nil { return err } }
    return nil
}
