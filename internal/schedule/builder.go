/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package schedule is the scheduling and duration engine: per-scene
// page-length and shooting-time estimation, and assembly of a one-day
// shoot timeline with lunch placement, company moves and wrap time.
//
// Everything in this package is a pure computation over immutable
// inputs. Rebuilding with identical inputs yields identical results;
// there is no I/O, no clock reads, and nothing here ever panics on
// well-formed configuration.
package schedule

// LunchMode selects how the lunch break is placed into the day.
type LunchMode int

const (
	// LunchAuto places lunch at the midpoint of total scene time.
	LunchAuto LunchMode = iota
	// LunchFixedAfterHours places lunch a fixed number of hours after
	// the day start, regardless of how much scene time that covers.
	LunchFixedAfterHours
)

// DayConfig is the caller-supplied configuration snapshot for one
// computation. Values are read, never mutated; the engine holds no
// state between calls.
type DayConfig struct {
	Start            Clock
	WordsPerPage     int
	SetupMinutes     int
	LunchMode        LunchMode
	FixedLunchHours  int // used only when LunchMode == LunchFixedAfterHours
	LunchDurationMin int
	IncludeExtras    bool // whether lunch and moves count toward totals and wrap
	MoveCount        int
	MoveDurationMin  int
}

// SceneTime is the projected start and end clock time of one scene.
type SceneTime struct {
	Index int
	Start Clock
	End   Clock
}

// Lunch describes the placed lunch break. AfterScene is the index of
// the scene the break follows; -1 means the break opens the day (no
// scenes precede it). In fixed mode with a target beyond the last
// scene, Start reflects the user's requested absolute offset even
// though the insertion point is after the last scene.
type Lunch struct {
	AfterScene int
	Start      Clock
	End        Clock
}

// Result is the engine's output for one computation pass. All fields
// are plain values; callers own them outright.
type Result struct {
	SceneTimes        []SceneTime
	TotalSceneSeconds int // scene time only, excludes lunch and moves
	Lunch             *Lunch
	TotalDaySeconds   int // scene time plus extras when included
	Wrap              Clock
}

// Build assembles the day schedule from ordered per-scene shooting
// durations (seconds) and the day configuration.
//
// Build is total: zero scenes, zero or negative durations and odd
// configurations all propagate arithmetically instead of failing.
func Build(durations []int, cfg DayConfig) Result {
	res := Result{}
	running := 0
	for i, d := range durations {
		start := cfg.Start.Add(running)
		running += d
		res.SceneTimes = append(res.SceneTimes, SceneTime{Index: i, Start: start, End: cfg.Start.Add(running)})
	}
	res.TotalSceneSeconds = running

	if cfg.IncludeExtras {
		res.Lunch = placeLunch(durations, res.TotalSceneSeconds, cfg)
	}

	res.TotalDaySeconds = res.TotalSceneSeconds
	if cfg.IncludeExtras {
		res.TotalDaySeconds += cfg.LunchDurationMin*60 + cfg.MoveCount*cfg.MoveDurationMin*60
	}
	res.Wrap = cfg.Start.Add(res.TotalDaySeconds)
	return res
}

// placeLunch scans scenes in order and inserts the break after the
// first scene whose cumulative time reaches the target: the midpoint of
// total scene time in auto mode, a fixed offset from day start in fixed
// mode.
func placeLunch(durations []int, totalSceneSeconds int, cfg DayConfig) *Lunch {
	target := totalSceneSeconds / 2
	if cfg.LunchMode == LunchFixedAfterHours {
		target = cfg.FixedLunchHours * 3600
	}

	elapsed := 0
	for i, d := range durations {
		elapsed += d
		if elapsed >= target {
			start := cfg.Start.Add(elapsed)
			return &Lunch{AfterScene: i, Start: start, End: start.Add(cfg.LunchDurationMin * 60)}
		}
	}

	// No scene reached the target: the break goes after the last scene
	// (or opens an empty day). In fixed mode the displayed start stays
	// at the requested offset rather than the scene-completion clock.
	start := cfg.Start.Add(totalSceneSeconds)
	if cfg.LunchMode == LunchFixedAfterHours {
		start = cfg.Start.Add(cfg.FixedLunchHours * 3600)
	}
	return &Lunch{AfterScene: len(durations) - 1, Start: start, End: start.Add(cfg.LunchDurationMin * 60)}
}
