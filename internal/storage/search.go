/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SceneQuery describes a scene search over the embedded index.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes,
// AND/OR/NOT) against sluglines and body text. Filters are optional;
// Interior is a tri-state (nil means both). MinWords/MaxWords bound the
// scene's word count, 0 means unset. Limit/Offset paginate with
// defaults applied when zero.
type SceneQuery struct {
	Text     string
	Interior *bool
	MinWords int
	MaxWords int
	Limit    int
	Offset   int
}

// SceneHit is a single matching scene. Snippet is a highlighted body
// excerpt using [ ] markers when FTS text was given.
type SceneHit struct {
	SceneIdx int
	LineNo   int
	Slugline string
	Interior bool
	Words    int
	Snippet  string
}

// SearchScenes runs full-text search with optional filters over the
// production's scene index. With empty Text it falls back to a plain
// filtered scan.
func SearchScenes(ctx context.Context, productionRoot string, q SceneQuery) ([]SceneHit, error) {
	if strings.TrimSpace(productionRoot) == "" {
		return nil, errors.New("production root is required")
	}
	db, err := InitOrOpenIndex(productionRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchScenesDB(ctx, db, q)
}

func searchScenesDB(ctx context.Context, db *sql.DB, q SceneQuery) ([]SceneHit, error) {
	var args []any
	var sb strings.Builder
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		sb.WriteString("SELECT s.scene_idx, s.line_no, s.slugline, s.interior, s.words, snippet(fts_scenes, 1, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_scenes JOIN scenes s ON fts_scenes.rowid = s.scene_idx\n")
		sb.WriteString("WHERE fts_scenes MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT s.scene_idx, s.line_no, s.slugline, s.interior, s.words, ''\n")
		sb.WriteString("FROM scenes s\nWHERE 1=1\n")
	}
	if q.Interior != nil {
		sb.WriteString(" AND s.interior = ?\n")
		v := 0
		if *q.Interior {
			v = 1
		}
		args = append(args, v)
	}
	if q.MinWords > 0 {
		sb.WriteString(" AND s.words >= ?\n")
		args = append(args, q.MinWords)
	}
	if q.MaxWords > 0 {
		sb.WriteString(" AND s.words <= ?\n")
		args = append(args, q.MaxWords)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY s.scene_idx\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("scene search query: %w", err)
	}
	defer rows.Close()
	var out []SceneHit
	for rows.Next() {
		var h SceneHit
		var interior int
		var sn sql.NullString
		if err := rows.Scan(&h.SceneIdx, &h.LineNo, &h.Slugline, &interior, &h.Words, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		h.Interior = interior == 1
		if sn.Valid {
			h.Snippet = sn.String
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
