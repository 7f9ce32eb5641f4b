/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package preview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MylesManT/Producer-s-toolkit/internal/breakdown"
	"github.com/MylesManT/Producer-s-toolkit/internal/fountain"
	"github.com/MylesManT/Producer-s-toolkit/internal/schedule"
)

func testTable(t *testing.T) breakdown.Table {
	t.Helper()
	scenes := fountain.Parse("INT. LAB - DAY\nBeakers bubble.\nEXT. ROOF - NIGHT\nThey argue about the antenna.")
	cfg := schedule.DayConfig{
		Start:            schedule.MustClock("08:00"),
		WordsPerPage:     150,
		SetupMinutes:     5,
		LunchMode:        schedule.LunchAuto,
		LunchDurationMin: 60,
		IncludeExtras:    true,
	}
	return breakdown.Build(scenes, cfg, nil)
}

func TestServerHealthz(t *testing.T) {
	srv := New("Health", testTable(t))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestServerScheduleJSON(t *testing.T) {
	tbl := testTable(t)
	srv := New("Pilot", tbl)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedule", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Production        string          `json:"production"`
		Rows              []breakdown.Row `json:"rows"`
		TotalSceneSeconds int             `json:"total_scene_seconds"`
		Wrap              string          `json:"wrap"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Production != "Pilot" {
		t.Fatalf("production = %q", resp.Production)
	}
	if len(resp.Rows) != len(tbl.Rows) {
		t.Fatalf("rows = %d, want %d", len(resp.Rows), len(tbl.Rows))
	}
	if resp.TotalSceneSeconds != tbl.Result.TotalSceneSeconds {
		t.Fatalf("total = %d", resp.TotalSceneSeconds)
	}
	if resp.Wrap != tbl.Result.Wrap.String() {
		t.Fatalf("wrap = %q", resp.Wrap)
	}
}

func TestServerIndexHTML(t *testing.T) {
	srv := New("Pilot", testTable(t))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"INT. LAB - DAY", "EXT. ROOF - NIGHT", "LUNCH", "TOTAL SHOOT LENGTH", "ESTIMATED WRAP"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q:\n%s", want, body)
		}
	}
}
