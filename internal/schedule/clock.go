/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

const secondsPerDay = 24 * 60 * 60

// Clock is a wall-clock time of day, stored as seconds from midnight.
// Arithmetic wraps modulo 24 hours, so a shoot running past midnight
// still renders a sensible wrap time.
type Clock int

// ParseClock parses a 24h "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q: out of range", s)
	}
	return Clock(h*3600 + m*60), nil
}

// MustClock parses s and panics on error. For tests and literals only.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Add returns the clock time the given number of seconds later
// (or earlier, when negative), wrapped to the 24h day.
func (c Clock) Add(seconds int) Clock {
	v := (int(c) + seconds) % secondsPerDay
	if v < 0 {
		v += secondsPerDay
	}
	return Clock(v)
}

// String renders the clock as "HH:MM". Seconds are truncated.
func (c Clock) String() string {
	v := int(c.Add(0))
	return fmt.Sprintf("%02d:%02d", v/3600, (v%3600)/60)
}
