/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package schedule

import "fmt"

// SummaryKind tags the non-scene rows a renderer interleaves into the
// breakdown table.
type SummaryKind int

const (
	SummaryLunch SummaryKind = iota
	SummaryTotal
	SummaryWrap
)

// SummaryEntry is one presentational summary row. AfterScene is the
// scene index the row follows in display order; -1 places it before the
// first scene. Label is the final display string; renderers must not
// reformat it.
type SummaryEntry struct {
	Kind       SummaryKind
	AfterScene int
	Label      string
}

// formatHM renders a duration in seconds as compact hours and minutes,
// e.g. "7h30m". Sub-minute remainders are truncated.
func formatHM(seconds int) string {
	return fmt.Sprintf("%dh%dm", seconds/3600, (seconds%3600)/60)
}

// Assemble produces the summary rows for a built schedule, ordered for
// interleaving into the breakdown: the lunch row at its insertion point,
// then total shoot length and estimated wrap after the last scene.
//
// The lunch row appears only when the result carries a lunch break. The
// total row reports scene time only; lunch and company moves show up in
// the wrap time, not in the total.
func Assemble(res Result, cfg DayConfig) []SummaryEntry {
	var entries []SummaryEntry
	if res.Lunch != nil {
		entries = append(entries, SummaryEntry{
			Kind:       SummaryLunch,
			AfterScene: res.Lunch.AfterScene,
			Label:      fmt.Sprintf("LUNCH — Starts at %s (%d min)", res.Lunch.Start, cfg.LunchDurationMin),
		})
	}
	last := len(res.SceneTimes) - 1
	entries = append(entries,
		SummaryEntry{
			Kind:       SummaryTotal,
			AfterScene: last,
			Label:      fmt.Sprintf("TOTAL SHOOT LENGTH — %s", formatHM(res.TotalSceneSeconds)),
		},
		SummaryEntry{
			Kind:       SummaryWrap,
			AfterScene: last,
			Label:      fmt.Sprintf("ESTIMATED WRAP — %s", res.Wrap),
		},
	)
	return entries
}
