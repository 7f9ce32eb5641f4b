/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package breakdown

import (
	"strings"
	"testing"

	"github.com/MylesManT/Producer-s-toolkit/internal/fountain"
	"github.com/MylesManT/Producer-s-toolkit/internal/schedule"
)

func testConfig() schedule.DayConfig {
	return schedule.DayConfig{
		Start:            schedule.MustClock("08:00"),
		WordsPerPage:     150,
		SetupMinutes:     5,
		LunchMode:        schedule.LunchAuto,
		LunchDurationMin: 60,
		IncludeExtras:    true,
	}
}

const twoSceneScript = `INT. OFFICE - DAY
He walks in. He sits down.
EXT. STREET - NIGHT
She waits outside under the awning.`

func TestBuildTableRows(t *testing.T) {
	scenes := fountain.Parse(twoSceneScript)
	tbl := Build(scenes, testConfig(), nil)

	var sceneRows, summaryRows []Row
	for _, r := range tbl.Rows {
		switch r.Kind {
		case RowScene:
			sceneRows = append(sceneRows, r)
		case RowSummary:
			summaryRows = append(summaryRows, r)
		}
	}
	if len(sceneRows) != 2 {
		t.Fatalf("expected 2 scene rows, got %d", len(sceneRows))
	}
	if len(summaryRows) != 3 {
		t.Fatalf("expected 3 summary rows, got %d", len(summaryRows))
	}

	r0 := sceneRows[0]
	if r0.SceneNumber != 1 || r0.Slugline != "INT. OFFICE - DAY" {
		t.Fatalf("scene row 0: %+v", r0)
	}
	if r0.Setups != 3 {
		t.Fatalf("interior default setups: %d", r0.Setups)
	}
	if r0.Start != "08:00" {
		t.Fatalf("scene 0 start: %q", r0.Start)
	}
	if r0.Pages != "0" || r0.ScreenTime != "00:02" || r0.ShootTime != "00:15:02" {
		t.Fatalf("scene 0 timing: pages=%q screen=%q shoot=%q", r0.Pages, r0.ScreenTime, r0.ShootTime)
	}
	if sceneRows[1].Setups != 5 {
		t.Fatalf("exterior default setups: %d", sceneRows[1].Setups)
	}
	// Scenes run back to back.
	if sceneRows[1].Start != r0.End {
		t.Fatalf("scene 1 start %q != scene 0 end %q", sceneRows[1].Start, r0.End)
	}
}

func TestBuildSummaryPlacement(t *testing.T) {
	scenes := fountain.Parse(twoSceneScript)
	tbl := Build(scenes, testConfig(), nil)

	// Both scenes cost the same shooting time within seconds of each
	// other; lunch lands after scene 1, then total and wrap close out
	// the table.
	var order []string
	for _, r := range tbl.Rows {
		if r.Kind == RowSummary {
			order = append(order, r.Label[:strings.Index(r.Label, " ")])
		}
	}
	if len(order) != 3 || order[0] != "LUNCH" || order[1] != "TOTAL" || order[2] != "ESTIMATED" {
		t.Fatalf("summary order: %v", order)
	}
	last := tbl.Rows[len(tbl.Rows)-1]
	if last.Kind != RowSummary || !strings.HasPrefix(last.Label, "ESTIMATED WRAP") {
		t.Fatalf("table must end with the wrap row: %+v", last)
	}
}

func TestBuildSetupOverrides(t *testing.T) {
	scenes := fountain.Parse(twoSceneScript)
	tbl := Build(scenes, testConfig(), SetupOverride{0: 10, 1: 99})

	var sceneRows []Row
	for _, r := range tbl.Rows {
		if r.Kind == RowScene {
			sceneRows = append(sceneRows, r)
		}
	}
	if sceneRows[0].Setups != 10 {
		t.Fatalf("override ignored: %d", sceneRows[0].Setups)
	}
	if sceneRows[1].Setups != 20 {
		t.Fatalf("override not clamped: %d", sceneRows[1].Setups)
	}
}

func TestBuildEmptyScript(t *testing.T) {
	tbl := Build(nil, testConfig(), nil)
	// No scenes: lunch opens the table, then totals.
	if len(tbl.Rows) != 3 {
		t.Fatalf("expected 3 summary rows, got %d: %+v", len(tbl.Rows), tbl.Rows)
	}
	if !strings.HasPrefix(tbl.Rows[0].Label, "LUNCH") {
		t.Fatalf("first row: %+v", tbl.Rows[0])
	}
	if tbl.Result.TotalSceneSeconds != 0 {
		t.Fatalf("total scene seconds = %d", tbl.Result.TotalSceneSeconds)
	}
}
