/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package schedule

import "testing"

func TestParseClock(t *testing.T) {
	c, err := ParseClock("08:30")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if int(c) != 8*3600+30*60 {
		t.Fatalf("unexpected seconds: %d", int(c))
	}
	if got := c.String(); got != "08:30" {
		t.Fatalf("round trip: %q", got)
	}

	for _, bad := range []string{"", "8", "24:00", "12:60", "-1:00", "aa:bb", "12.30"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestClockAddWraps(t *testing.T) {
	c := MustClock("23:00")
	if got := c.Add(2 * 3600).String(); got != "01:00" {
		t.Fatalf("forward wrap: %q", got)
	}
	if got := MustClock("00:30").Add(-3600).String(); got != "23:30" {
		t.Fatalf("backward wrap: %q", got)
	}
	if got := MustClock("08:00").Add(0).String(); got != "08:00" {
		t.Fatalf("identity: %q", got)
	}
}

func TestClockStringTruncatesSeconds(t *testing.T) {
	c := MustClock("09:00").Add(90) // 09:01:30
	if got := c.String(); got != "09:01" {
		t.Fatalf("expected truncation to minutes, got %q", got)
	}
}
