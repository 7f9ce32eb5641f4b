/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package breakdown joins the screenplay parser and the scheduling
// engine into a flat, renderer-agnostic table: one row per scene with
// its derived timing, interleaved with the lunch and day-total rows at
// their display positions. Renderers (terminal, HTTP preview, backend
// push) consume rows verbatim and never recompute.
package breakdown

import (
	"fmt"

	"github.com/MylesManT/Producer-s-toolkit/internal/fountain"
	"github.com/MylesManT/Producer-s-toolkit/internal/schedule"
)

// RowKind distinguishes scene rows from interleaved summary rows.
type RowKind int

const (
	RowScene RowKind = iota
	RowSummary
)

// Row is one display row. Scene rows carry the timing columns; summary
// rows carry only Label, pre-formatted by the engine.
type Row struct {
	Kind RowKind

	SceneNumber int    // 1-based, scene rows only
	Slugline    string
	Pages       string // pages-and-eighths form, e.g. "1 3/8"
	Setups      int
	ScreenTime  string // MM:SS
	ShootTime   string // HH:MM:SS
	Start       string // HH:MM
	End         string // HH:MM

	Label string // summary rows only
}

// Table is the assembled breakdown plus the engine result it was built
// from, for callers that need totals or the raw lunch placement.
type Table struct {
	Rows   []Row
	Result schedule.Result
}

// SetupOverride is a per-scene setup count override, keyed by 0-based
// scene index. Absent scenes fall back to the INT/EXT default.
type SetupOverride map[int]int

// Build estimates every scene, runs the day schedule and flattens the
// outcome into display rows. Summary rows land immediately after the
// scene their AfterScene index names; an index of -1 places the row
// before the first scene.
func Build(scenes []fountain.Scene, cfg schedule.DayConfig, overrides SetupOverride) Table {
	durations := make([]schedule.Duration, len(scenes))
	totals := make([]int, len(scenes))
	for i, sc := range scenes {
		setups := schedule.DefaultSetups(sc.Interior())
		if n, ok := overrides[i]; ok {
			setups = n
		}
		durations[i] = schedule.Estimate(sc.BodyLines, cfg.WordsPerPage, setups, cfg.SetupMinutes)
		totals[i] = durations[i].TotalSeconds
	}

	res := schedule.Build(totals, cfg)
	summaries := schedule.Assemble(res, cfg)

	byIndex := make(map[int][]schedule.SummaryEntry)
	for _, e := range summaries {
		byIndex[e.AfterScene] = append(byIndex[e.AfterScene], e)
	}

	var rows []Row
	appendSummaries := func(idx int) {
		for _, e := range byIndex[idx] {
			rows = append(rows, Row{Kind: RowSummary, Label: e.Label})
		}
	}

	appendSummaries(-1)
	for i, sc := range scenes {
		d := durations[i]
		st := res.SceneTimes[i]
		rows = append(rows, Row{
			Kind:        RowScene,
			SceneNumber: i + 1,
			Slugline:    sc.Heading,
			Pages:       d.Length.String(),
			Setups:      d.Setups,
			ScreenTime:  formatMS(d.BaseSeconds),
			ShootTime:   formatHMS(d.TotalSeconds),
			Start:       st.Start.String(),
			End:         st.End.String(),
		})
		appendSummaries(i)
	}

	return Table{Rows: rows, Result: res}
}

func formatMS(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func formatHMS(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
