/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain defines the production data model. A production is the
// unit of work: one screenplay, one shoot-day plan and the per-scene
// adjustments a first AD makes on top of the defaults. It serializes to
// a human-readable JSON manifest.
package domain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/MylesManT/Producer-s-toolkit/internal/schedule"
)

// Lunch placement modes as stored in the manifest.
const (
	LunchModeAuto  = "auto"
	LunchModeFixed = "fixed"
)

// Production is the manifest root.
type Production struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Metadata   Metadata    `json:"metadata,omitempty"`
	Screenplay string      `json:"screenplay,omitempty"` // path relative to the production dir
	Day        DayPlan     `json:"day"`
	Scenes     []ScenePlan `json:"scenes,omitempty"`
}

// Metadata contains optional descriptive metadata for a production.
type Metadata struct {
	Company  string `json:"company,omitempty"`
	Director string `json:"director,omitempty"`
	FirstAD  string `json:"firstAD,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// DayPlan captures the shoot-day configuration the engine runs with.
type DayPlan struct {
	StartTime        string `json:"startTime"` // 24h "HH:MM"
	WordsPerPage     int    `json:"wordsPerPage"`
	SetupMinutes     int    `json:"setupMinutes"`
	LunchMode        string `json:"lunchMode"` // auto or fixed
	FixedLunchHours  int    `json:"fixedLunchHours,omitempty"`
	LunchDurationMin int    `json:"lunchDurationMinutes"`
	IncludeExtras    bool   `json:"includeExtras"`
	MoveCount        int    `json:"moveCount,omitempty"`
	MoveDurationMin  int    `json:"moveDurationMinutes,omitempty"`
}

// ScenePlan is a per-scene override, keyed by the scene's 0-based
// position in the parsed screenplay.
type ScenePlan struct {
	Index  int    `json:"index"`
	Setups int    `json:"setups,omitempty"` // 0 means use the INT/EXT default
	Notes  string `json:"notes,omitempty"`
}

// DefaultDayPlan returns the plan a fresh production starts with.
func DefaultDayPlan() DayPlan {
	return DayPlan{
		StartTime:        "08:00",
		WordsPerPage:     150,
		SetupMinutes:     5,
		LunchMode:        LunchModeAuto,
		LunchDurationMin: 60,
		IncludeExtras:    true,
		MoveDurationMin:  10,
	}
}

// EngineConfig converts the plan into the engine's configuration value.
// It fails on a malformed start time or an unknown lunch mode; numeric
// oddities are left to the engine, which is total over them.
func (p DayPlan) EngineConfig() (schedule.DayConfig, error) {
	start, err := schedule.ParseClock(p.StartTime)
	if err != nil {
		return schedule.DayConfig{}, fmt.Errorf("day plan: %w", err)
	}
	var mode schedule.LunchMode
	switch p.LunchMode {
	case LunchModeAuto, "":
		mode = schedule.LunchAuto
	case LunchModeFixed:
		mode = schedule.LunchFixedAfterHours
	default:
		return schedule.DayConfig{}, fmt.Errorf("day plan: unknown lunch mode %q", p.LunchMode)
	}
	return schedule.DayConfig{
		Start:            start,
		WordsPerPage:     p.WordsPerPage,
		SetupMinutes:     p.SetupMinutes,
		LunchMode:        mode,
		FixedLunchHours:  p.FixedLunchHours,
		LunchDurationMin: p.LunchDurationMin,
		IncludeExtras:    p.IncludeExtras,
		MoveCount:        p.MoveCount,
		MoveDurationMin:  p.MoveDurationMin,
	}, nil
}

// SetupOverrides flattens the scene plans into the breakdown's override
// map. Plans with a zero setup count contribute nothing.
func (p Production) SetupOverrides() map[int]int {
	m := make(map[int]int, len(p.Scenes))
	for _, sp := range p.Scenes {
		if sp.Setups > 0 {
			m[sp.Index] = sp.Setups
		}
	}
	return m
}
