/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// language=SQL
// dialect=SQLite
const insertScheduleSnapshotSQL = `INSERT INTO schedule_snapshots(ts, note, data_blob) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestScheduleSnapshotSQL = `SELECT ts, data_blob FROM schedule_snapshots ORDER BY ts DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listScheduleSnapshotsSQL = `SELECT ts, note, data_blob FROM schedule_snapshots ORDER BY ts DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneScheduleSnapshotsSQL = `DELETE FROM schedule_snapshots WHERE id NOT IN (
	SELECT id FROM schedule_snapshots ORDER BY ts DESC LIMIT ?
)`

// ScheduleSnapshot is one stored computation: the serialized breakdown
// plus when it was taken and an optional note.
type ScheduleSnapshot struct {
	TS   time.Time
	Note string
	Blob []byte
}

// SaveScheduleSnapshot records a computed schedule blob with a
// timestamp in the production's index database.
func SaveScheduleSnapshot(ctx context.Context, ph *ProductionHandle, data []byte, note string, ts time.Time) error {
	if ph == nil {
		return errors.New("nil ProductionHandle")
	}
	db, err := InitOrOpenIndex(ph.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, insertScheduleSnapshotSQL, ts.UTC().Format(time.RFC3339Nano), note, data)
	return err
}

// LatestScheduleSnapshot returns the most recent stored schedule, or a
// nil blob when none exists.
func LatestScheduleSnapshot(ctx context.Context, ph *ProductionHandle) ([]byte, time.Time, error) {
	if ph == nil {
		return nil, time.Time{}, errors.New("nil ProductionHandle")
	}
	db, err := InitOrOpenIndex(ph.Root)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = db.Close() }()
	var tsStr string
	var blob []byte
	err = db.QueryRowContext(ctx, selectLatestScheduleSnapshotSQL).Scan(&tsStr, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, tsStr)
	if err != nil {
		return blob, time.Time{}, nil // return blob even if ts parse fails
	}
	return blob, ts, nil
}

// ListScheduleSnapshots returns up to limit most recent schedules.
func ListScheduleSnapshots(ctx context.Context, ph *ProductionHandle, limit int) ([]ScheduleSnapshot, error) {
	if ph == nil {
		return nil, errors.New("nil ProductionHandle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(ph.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listScheduleSnapshotsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []ScheduleSnapshot
	for rows.Next() {
		var tsStr string
		var note sql.NullString
		var blob []byte
		if err := rows.Scan(&tsStr, &note, &blob); err != nil {
			return nil, err
		}
		ts, _ := time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, ScheduleSnapshot{TS: ts, Note: note.String, Blob: blob})
	}
	return out, rows.Err()
}

// PruneScheduleSnapshots keeps at most keepLast schedules and deletes
// older ones, returning the number removed.
func PruneScheduleSnapshots(ctx context.Context, ph *ProductionHandle, keepLast int) (int64, error) {
	if ph == nil {
		return 0, errors.New("nil ProductionHandle")
	}
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := InitOrOpenIndex(ph.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneScheduleSnapshotsSQL, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
