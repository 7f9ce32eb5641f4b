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
	"math"
	"regexp"
	"strings"
)

// Setup-count bounds and INT/EXT defaults. A setup is one camera and
// lighting position; every setup charges SetupMinutes of crew time.
const (
	MinSetups             = 1
	MaxSetups             = 20
	DefaultInteriorSetups = 3
	DefaultExteriorSetups = 5
)

// secondsPerPage is the screen-time rule of thumb: one script page runs
// about one minute. Deliberately a constant, not configuration.
const secondsPerPage = 60

var reWord = regexp.MustCompile(`\w+`)

// WordCount counts maximal runs of word characters across the body
// lines joined by a single space. Punctuation does not split tokens
// beyond whitespace.
func WordCount(bodyLines []string) int {
	return len(reWord.FindAllString(strings.Join(bodyLines, " "), -1))
}

// Pages converts a word count to fractional script pages.
// Returns 0 when wordsPerPage is not positive.
func Pages(wordCount, wordsPerPage int) float64 {
	if wordsPerPage <= 0 {
		return 0
	}
	return float64(wordCount) / float64(wordsPerPage)
}

// PageLength is a script length in the screenplay convention of whole
// pages plus eighths. Eighths is always in [0,7]; rounding that lands
// on 8/8 carries into a full page.
type PageLength struct {
	Full    int
	Eighths int
}

// PageLengthOf rounds fractional pages into the pages-plus-eighths form.
func PageLengthOf(pages float64) PageLength {
	full := int(pages)
	eighths := int(math.Round((pages - float64(full)) * 8))
	if eighths == 8 {
		full++
		eighths = 0
	}
	return PageLength{Full: full, Eighths: eighths}
}

// String renders the conventional page string: "1 3/8", "3/8", "2".
// An all-zero length renders as "0".
func (p PageLength) String() string {
	switch {
	case p.Full == 0 && p.Eighths > 0:
		return fmt.Sprintf("%d/8", p.Eighths)
	case p.Eighths > 0:
		return fmt.Sprintf("%d %d/8", p.Full, p.Eighths)
	default:
		return fmt.Sprintf("%d", p.Full)
	}
}

// BaseSeconds estimates screen time for the given fractional pages.
func BaseSeconds(pages float64) int {
	return int(math.Round(pages * secondsPerPage))
}

// ShootSeconds is the full shooting-time estimate for a scene: screen
// time plus the per-setup charge. Setups only ever add time.
func ShootSeconds(baseSeconds, setups, setupMinutes int) int {
	return baseSeconds + setups*setupMinutes*60
}

// ClampSetups forces a user-supplied setup count into [MinSetups, MaxSetups].
func ClampSetups(n int) int {
	if n < MinSetups {
		return MinSetups
	}
	if n > MaxSetups {
		return MaxSetups
	}
	return n
}

// DefaultSetups returns the conventional setup count for a scene:
// 3 for interiors, 5 for exteriors.
func DefaultSetups(interior bool) int {
	if interior {
		return DefaultInteriorSetups
	}
	return DefaultExteriorSetups
}

// Duration is the derived timing for one scene. It is recomputed from
// scratch whenever the configuration or the scene's setup count changes.
type Duration struct {
	Words        int
	Pages        float64
	Length       PageLength
	BaseSeconds  int
	Setups       int
	TotalSeconds int
}

// Estimate derives a scene's Duration from its body text. setups is
// clamped into the allowed range; wordsPerPage <= 0 yields zero pages.
func Estimate(bodyLines []string, wordsPerPage, setups, setupMinutes int) Duration {
	words := WordCount(bodyLines)
	pages := Pages(words, wordsPerPage)
	base := BaseSeconds(pages)
	n := ClampSetups(setups)
	return Duration{
		Words:        words,
		Pages:        pages,
		Length:       PageLengthOf(pages),
		BaseSeconds:  base,
		Setups:       n,
		TotalSeconds: ShootSeconds(base, n, setupMinutes),
	}
}
