/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	applog "github.com/MylesManT/Producer-s-toolkit/internal/log"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists pushed schedules in the shared office Postgres.
type Store struct {
	db *sql.DB
}

// OpenStore connects to Postgres with the given DSN, verifies the
// connection and applies pending migrations.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(pctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSchedule upserts the production and records the pushed schedule.
// It returns the new push's row ID.
func (s *Store) SaveSchedule(ctx context.Context, p SchedulePayload) (int64, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO productions(id, name) VALUES($1, $2)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()`,
		p.ProductionID, p.ProductionName); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("upsert production: %w", err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO schedule_pushes(production_id, generated_at, total_scene_seconds, wrap_clock, payload)
		 VALUES($1, $2, $3, $4, $5) RETURNING id`,
		p.ProductionID, p.GeneratedAt, p.TotalSceneSeconds, p.Wrap, payload).Scan(&id); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert schedule push: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// LatestSchedule returns the most recently received schedule for the
// production, or nil when none has been pushed.
func (s *Store) LatestSchedule(ctx context.Context, productionID uuid.UUID) (*SchedulePayload, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM schedule_pushes WHERE production_id = $1 ORDER BY received_at DESC, id DESC LIMIT 1`,
		productionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select latest schedule: %w", err)
	}
	var p SchedulePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}

// PushSummary is one row of a production's push history.
type PushSummary struct {
	ID                int64
	GeneratedAt       time.Time
	ReceivedAt        time.Time
	TotalSceneSeconds int
	Wrap              string
}

// ListSchedules returns the push history for a production, newest first.
func (s *Store) ListSchedules(ctx context.Context, productionID uuid.UUID, limit int) ([]PushSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generated_at, received_at, total_scene_seconds, wrap_clock
		 FROM schedule_pushes WHERE production_id = $1 ORDER BY received_at DESC, id DESC LIMIT $2`,
		productionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()
	var out []PushSummary
	for rows.Next() {
		var ps PushSummary
		if err := rows.Scan(&ps.ID, &ps.GeneratedAt, &ps.ReceivedAt, &ps.TotalSceneSeconds, &ps.Wrap); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// applyMigrations applies embedded SQL migrations in filename order,
// tracking applied versions in schema_migrations.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	l := applog.WithComponent("backend")
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// dialect=PostgreSQL
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, fname := range files {
		version, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[version] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		sqlText := string(b)
		if strings.TrimSpace(sqlText) == "" {
			continue
		}
		l.Info("applying migration", slog.String("file", fname))
		if _, err := db.ExecContext(ctx, sqlText); err != nil {
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO schema_migrations(version, name) VALUES($1, $2) ON CONFLICT DO NOTHING`,
			version, fname); err != nil {
			return fmt.Errorf("record %s: %w", fname, err)
		}
	}
	return nil
}

func parseVersion(name string) (int64, error) {
	base := path.Base(name)
	parts := strings.SplitN(base, "_", 2)
	if len(parts) == 0 || parts[0] == "" {
		return 0, errors.New("invalid migration filename: " + name)
	}
	v, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid migration version in %s: %w", name, err)
	}
	return v, nil
}
