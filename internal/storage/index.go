/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/MylesManT/Producer-s-toolkit/internal/fountain"
	applog "github.com/MylesManT/Producer-s-toolkit/internal/log"
	"github.com/MylesManT/Producer-s-toolkit/internal/schedule"
	"github.com/MylesManT/Producer-s-toolkit/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores per-production ephemeral data under the
	// production root. The index is derived from the screenplay and can
	// always be rebuilt.
	IndexDirName  = ".ptk"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the embedded index schema. Bump on breaking
	// changes and add a migration step.
	schemaVersion = 2
)

// IndexPath returns the path of the production's embedded index database.
func IndexPath(productionRoot string) string {
	return filepath.Join(productionRoot, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures the per-production SQLite index exists at
// .ptk/index.sqlite, opens it in WAL mode and brings the schema up to
// date. The returned *sql.DB is ready for use; callers close it.
func InitOrOpenIndex(productionRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", productionRoot),
	)
	if strings.TrimSpace(productionRoot) == "" {
		return nil, errors.New("production root is required")
	}
	if err := os.MkdirAll(filepath.Join(productionRoot, IndexDirName), 0o755); err != nil {
		l.Error("create .ptk dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .ptk dir: %w", err)
	}

	path := IndexPath(productionRoot)
	// URI with shared cache and busy timeout; forward slashes for SQLite.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Embedded usage: a single connection avoids writer contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureSceneSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure scene schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; migrations own the schema field.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Never downgrade a newer index.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			// Interior and length lookups for breakdown filters.
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_scenes_interior ON scenes(interior);`,
				`CREATE INDEX IF NOT EXISTS idx_scenes_words ON scenes(words);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
			// Best-effort FTS optimize (outside the tx).
			if _, err := db.ExecContext(ctx, `INSERT INTO fts_scenes(fts_scenes) VALUES('optimize')`); err != nil {
				// ignore
			}
		default:
			// Unknown future step; stop.
		}
		cur = next
	}
	return nil
}

// ensureSceneSchema creates the scene table and FTS structures.
func ensureSceneSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS scenes (
			scene_idx INTEGER PRIMARY KEY,
			line_no   INTEGER NOT NULL,
			slugline  TEXT    NOT NULL,
			interior  INTEGER NOT NULL,
			words     INTEGER NOT NULL,
			body      TEXT    NOT NULL
		);`,

		// External-content FTS5 over slugline and body, kept in step
		// with the scenes table via triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_scenes USING fts5(
			slugline,
			body,
			content='scenes',
			content_rowid='scene_idx',
			tokenize = 'unicode61'
		);`,

		// History of computed schedules (JSON blobs).
		`CREATE TABLE IF NOT EXISTS schedule_snapshots (
			id        INTEGER PRIMARY KEY,
			ts        TEXT NOT NULL,
			note      TEXT,
			data_blob BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_schedule_snapshots_ts ON schedule_snapshots(ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure scene schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS scenes_ai AFTER INSERT ON scenes BEGIN
			INSERT INTO fts_scenes(rowid, slugline, body) VALUES (new.scene_idx, new.slugline, new.body);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS scenes_ad AFTER DELETE ON scenes BEGIN
			INSERT INTO fts_scenes(fts_scenes, rowid, slugline, body) VALUES ('delete', old.scene_idx, old.slugline, old.body);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS scenes_au AFTER UPDATE OF slugline, body ON scenes BEGIN
			INSERT INTO fts_scenes(fts_scenes, rowid, slugline, body) VALUES ('delete', old.scene_idx, old.slugline, old.body);
			INSERT INTO fts_scenes(rowid, slugline, body) VALUES (new.scene_idx, new.slugline, new.body);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// DetectAndRebuildIndex checks for corruption or missing schema and
// rebuilds the index from the given scenes when needed. It reports
// whether a rebuild was performed.
func DetectAndRebuildIndex(ctx context.Context, productionRoot string, scenes []fountain.Scene) (bool, error) {
	path := IndexPath(productionRoot)
	db, err := InitOrOpenIndex(productionRoot)
	if err != nil {
		backupIndexFile(path)
		_ = os.Remove(path)
		if rbErr := RebuildIndex(ctx, productionRoot, scenes); rbErr != nil {
			return false, fmt.Errorf("rebuild after open failure: %w (open err: %v)", rbErr, err)
		}
		return true, nil
	}
	defer db.Close()
	needs := false
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM scenes LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if !needs {
		return false, nil
	}
	backupIndexFile(path)
	_ = os.Remove(path)
	if err := RebuildIndex(ctx, productionRoot, scenes); err != nil {
		return false, err
	}
	return true, nil
}

// backupIndexFile copies the current index file into a timestamped
// backup under .ptk/backups.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// BuildIndexIfEmpty populates the scene table from the parsed
// screenplay when the index holds no scenes yet.
func BuildIndexIfEmpty(ctx context.Context, productionRoot string, scenes []fountain.Scene) error {
	db, err := InitOrOpenIndex(productionRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scenes;").Scan(&cnt); err != nil {
		return fmt.Errorf("check scene count: %w", err)
	}
	if cnt > 0 {
		return nil
	}
	return replaceScenes(ctx, db, scenes)
}

// UpdateIndex replaces the indexed scenes with a fresh parse.
func UpdateIndex(ctx context.Context, productionRoot string, scenes []fountain.Scene) error {
	db, err := InitOrOpenIndex(productionRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	return replaceScenes(ctx, db, scenes)
}

// RebuildIndex drops and recreates the scene tables, then repopulates
// them. meta/version are preserved; the index is derived data.
func RebuildIndex(ctx context.Context, productionRoot string, scenes []fountain.Scene) error {
	db, err := InitOrOpenIndex(productionRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	drops := []string{
		"DROP TRIGGER IF EXISTS scenes_ai;",
		"DROP TRIGGER IF EXISTS scenes_ad;",
		"DROP TRIGGER IF EXISTS scenes_au;",
		"DROP TABLE IF EXISTS scenes;",
		"DROP TABLE IF EXISTS fts_scenes;",
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ensureSceneSchema(ctx, db); err != nil {
		return err
	}
	return replaceScenes(ctx, db, scenes)
}

// replaceScenes clears the scene table and inserts the given parse in a
// single transaction. The FTS triggers keep fts_scenes in step.
func replaceScenes(ctx context.Context, db *sql.DB, scenes []fountain.Scene) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM scenes;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear scenes: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO scenes(scene_idx, line_no, slugline, interior, words, body) VALUES(?,?,?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for i, sc := range scenes {
		interior := 0
		if sc.Interior() {
			interior = 1
		}
		body := strings.Join(sc.BodyLines, "\n")
		words := schedule.WordCount(sc.BodyLines)
		if _, err := ins.ExecContext(ctx, i, sc.LineNo, sc.Heading, interior, words, body); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert scene: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
